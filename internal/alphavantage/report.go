package alphavantage

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

const (
	maxReportRows = 10
	maxAlertPairs = 10
)

// DefaultThreshold is the alert threshold in percent.
const DefaultThreshold = 5.0

// Series fetches a series and renders the ten most recent bars.
func (c *Client) Series(ctx context.Context, symbol, interval, outputSize string) (string, error) {
	if outputSize == "" {
		outputSize = Compact
	}
	series, err := c.FetchSeries(ctx, symbol, interval, outputSize)
	if err != nil {
		return "", err
	}
	return FormatSeries(series, symbol, interval), nil
}

// FormatSeries renders up to ten bars, most recent first, and notes how
// many were left out.
func FormatSeries(series Series, symbol, interval string) string {
	label := interval
	if interval == Daily {
		label = "Daily"
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Stock data for %s (%s intervals):\n\n", strings.ToUpper(symbol), label)

	dates := series.Dates()
	for i, date := range dates {
		if i == maxReportRows {
			break
		}
		bar := series[date]
		fmt.Fprintf(&b, "%s:\n", date)
		fmt.Fprintf(&b, "  Open: %s\n", bar.Open)
		fmt.Fprintf(&b, "  High: %s\n", bar.High)
		fmt.Fprintf(&b, "  Low: %s\n", bar.Low)
		fmt.Fprintf(&b, "  Close: %s\n", bar.Close)
		fmt.Fprintf(&b, "  Volume: %s\n\n", bar.Volume)
	}
	if len(dates) > maxReportRows {
		fmt.Fprintf(&b, "... and %d more data points available.\n", len(dates)-maxReportRows)
	}
	return b.String()
}

// Alerts fetches the compact daily series and reports day-over-day close
// moves of at least threshold percent.
func (c *Client) Alerts(ctx context.Context, symbol string, threshold float64) (string, error) {
	series, err := c.FetchSeries(ctx, symbol, Daily, Compact)
	if err != nil {
		return "", err
	}
	return FormatAlerts(series, symbol, threshold), nil
}

// FormatAlerts scans up to ten consecutive day pairs, most recent first.
// Pairs whose closes do not parse, or whose earlier close is zero, are
// skipped.
func FormatAlerts(series Series, symbol string, threshold float64) string {
	dates := series.Dates()
	if len(dates) < 2 {
		return fmt.Sprintf("Not enough historical data available for %s to generate alerts.", symbol)
	}

	thresholdText := strconv.FormatFloat(threshold, 'f', -1, 64)
	limit := decimal.NewFromFloat(threshold)
	hundred := decimal.NewFromInt(100)

	var b strings.Builder
	fmt.Fprintf(&b, "Stock Alerts for %s (%s%% threshold):\n\n", strings.ToUpper(symbol), thresholdText)

	pairs := min(maxAlertPairs, len(dates)-1)
	alerts := 0
	for i := 0; i < pairs; i++ {
		current, err := decimal.NewFromString(series[dates[i]].Close)
		if err != nil {
			continue
		}
		previous, err := decimal.NewFromString(series[dates[i+1]].Close)
		if err != nil || previous.IsZero() {
			continue
		}

		change := current.Sub(previous).Div(previous).Mul(hundred)
		if change.Abs().LessThan(limit) {
			continue
		}

		direction := "increased"
		if change.IsNegative() {
			direction = "decreased"
		}
		fmt.Fprintf(&b, "%s: Price %s by %s%% from %s to %s\n",
			dates[i], direction, change.Abs().StringFixed(2), previous.String(), current.String())
		alerts++
	}

	if alerts == 0 {
		fmt.Fprintf(&b, "No significant price movements (>=%s%%) detected in the last %d trading days.\n", thresholdText, pairs)
	}
	return b.String()
}
