// Package stockserver exposes Alpha Vantage market data as tools and a
// stock://{symbol}/{interval} resource.
package stockserver

import (
	"context"
	"fmt"
	"slices"
	"strings"

	"github.com/felixgeelhaar/mcp-adapters/internal/alphavantage"
	"github.com/felixgeelhaar/mcp-adapters/internal/apperr"
	"github.com/felixgeelhaar/mcp-adapters/schema"
	"github.com/felixgeelhaar/mcp-adapters/server"
)

// Name and Version identify the server in the initialize handshake.
const (
	Name    = "stock-data-mcp"
	Version = "1.0.0"
)

// Market is the market-data client the tools call.
type Market interface {
	Series(ctx context.Context, symbol, interval, outputSize string) (string, error)
	Alerts(ctx context.Context, symbol string, threshold float64) (string, error)
}

var _ Market = (*alphavantage.Client)(nil)

type stockDataInput struct {
	Symbol     schema.StringOrList `json:"symbol" jsonschema:"required,description=Stock symbol (e.g., IBM, AAPL)"`
	Interval   string              `json:"interval,omitempty" jsonschema:"enum=1min|5min|15min|30min|60min,default=5min,description=Time interval between data points (default: 5min)"`
	OutputSize string              `json:"outputsize,omitempty" jsonschema:"enum=compact|full,default=compact,description=Amount of data to return (compact: latest 100 data points, full: up to 20 years of data)"`
}

type dailyInput struct {
	Symbol     schema.StringOrList `json:"symbol" jsonschema:"required,description=Stock symbol (e.g., IBM, AAPL)"`
	OutputSize string              `json:"outputsize,omitempty" jsonschema:"enum=compact|full,default=compact,description=Amount of data to return (compact: latest 100 data points, full: up to 20 years of data)"`
}

type alertsInput struct {
	Symbol    schema.StringOrList `json:"symbol" jsonschema:"required,description=Stock symbol (e.g., IBM, AAPL)"`
	Threshold schema.NumberOrList `json:"threshold,omitempty" jsonschema:"default=5,description=Percentage threshold for price movement alerts (default: 5)"`
}

type stockParams struct {
	Symbol   string `uri:"symbol"`
	Interval string `uri:"interval"`
}

// New registers the market-data tools and resource on a new server.
func New(market Market) *server.Server {
	srv := server.New(server.Info{Name: Name, Version: Version})
	h := &handlers{market: market}

	srv.Tool("get-stock-data").
		Title("Intraday stock data").
		Description("Get intraday stock data for a symbol").
		ReadOnly().
		OpenWorld().
		Handler(h.stockData)

	srv.Tool("get-daily-stock-data").
		Title("Daily stock data").
		Description("Get daily stock data for a symbol").
		ReadOnly().
		OpenWorld().
		Handler(h.dailyData)

	srv.Tool("get-stock-alerts").
		Title("Price movement alerts").
		Description("Report daily closing price moves beyond a percentage threshold").
		ReadOnly().
		OpenWorld().
		Handler(h.alerts)

	srv.Resource("stock://{symbol}/{interval}").
		Name("stock-data").
		Description("Recent price bars for a symbol at an interval (daily or 1min..60min)").
		MimeType("text/plain").
		Handler(h.readStock)

	return srv
}

type handlers struct {
	market Market
}

func (h *handlers) stockData(ctx context.Context, in stockDataInput) (*server.ToolResult, error) {
	symbol, err := symbolOf(in.Symbol)
	if err != nil {
		return server.Errorf("Error fetching stock data: %v", err), nil
	}
	data, err := h.market.Series(ctx, symbol, in.Interval, in.OutputSize)
	if err != nil {
		return server.Errorf("Error fetching stock data: %v", err), nil
	}
	return server.TextResult(data), nil
}

func (h *handlers) dailyData(ctx context.Context, in dailyInput) (*server.ToolResult, error) {
	symbol, err := symbolOf(in.Symbol)
	if err != nil {
		return server.Errorf("Error fetching daily stock data: %v", err), nil
	}
	data, err := h.market.Series(ctx, symbol, alphavantage.Daily, in.OutputSize)
	if err != nil {
		return server.Errorf("Error fetching daily stock data: %v", err), nil
	}
	return server.TextResult(data), nil
}

func (h *handlers) alerts(ctx context.Context, in alertsInput) (*server.ToolResult, error) {
	symbol, err := symbolOf(in.Symbol)
	if err != nil {
		return server.Errorf("Error generating stock alerts: %v", err), nil
	}
	report, err := h.market.Alerts(ctx, symbol, in.Threshold.Float64())
	if err != nil {
		return server.Errorf("Error generating stock alerts: %v", err), nil
	}
	return server.TextResult(report), nil
}

func (h *handlers) readStock(ctx context.Context, uri string, params map[string]string) (*server.ResourceContent, error) {
	p, err := server.ExtractParams[stockParams](params)
	if err != nil {
		return nil, fmt.Errorf("Failed to fetch stock data: %w", err)
	}
	if p.Interval != alphavantage.Daily && !slices.Contains(alphavantage.Intervals, p.Interval) {
		return nil, fmt.Errorf("Failed to fetch stock data: unsupported interval %q", p.Interval)
	}

	data, err := h.market.Series(ctx, p.Symbol, p.Interval, alphavantage.Compact)
	if err != nil {
		return nil, fmt.Errorf("Failed to fetch stock data: %w", err)
	}
	return &server.ResourceContent{URI: uri, MimeType: "text/plain", Text: data}, nil
}

func symbolOf(v schema.StringOrList) (string, error) {
	s := strings.TrimSpace(v.String())
	if s == "" {
		return "", &apperr.ValidationError{Field: "symbol"}
	}
	return s, nil
}
