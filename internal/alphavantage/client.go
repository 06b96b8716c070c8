// Package alphavantage fetches time series from the Alpha Vantage query API
// and renders them as plain-text reports.
package alphavantage

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sort"

	"github.com/tidwall/gjson"
	"go.uber.org/zap"

	"github.com/felixgeelhaar/mcp-adapters/internal/apperr"
	"github.com/felixgeelhaar/mcp-adapters/internal/logging"
)

// DefaultBaseURL is the public query endpoint.
const DefaultBaseURL = "https://www.alphavantage.co/query"

// Daily selects the daily series instead of an intraday one.
const Daily = "daily"

// Output sizes.
const (
	Compact = "compact"
	Full    = "full"
)

// Intervals lists the intraday granularities the API accepts.
var Intervals = []string{"1min", "5min", "15min", "30min", "60min"}

const errNoSeries = "No time series data found in the response"

// Client talks to the query API. The zero value is not usable; call New.
type Client struct {
	apiKey  string
	baseURL string
	http    *http.Client
	log     *zap.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithBaseURL points the client at another endpoint.
func WithBaseURL(u string) Option {
	return func(c *Client) {
		if u != "" {
			c.baseURL = u
		}
	}
}

// WithHTTPClient sets the HTTP client used for requests.
func WithHTTPClient(h *http.Client) Option {
	return func(c *Client) {
		c.http = h
	}
}

// WithLogger sets the logger for usage advisories.
func WithLogger(l *zap.Logger) Option {
	return func(c *Client) {
		c.log = logging.OrNop(l)
	}
}

// New creates a client authenticated with apiKey.
func New(apiKey string, opts ...Option) *Client {
	c := &Client{
		apiKey:  apiKey,
		baseURL: DefaultBaseURL,
		http:    http.DefaultClient,
		log:     zap.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Bar is one OHLCV record, kept as the provider's decimal strings.
type Bar struct {
	Open   string
	High   string
	Low    string
	Close  string
	Volume string
}

// Series maps dates to bars. Dates sorts them most recent first.
type Series map[string]Bar

// Dates returns the series dates in descending order.
func (s Series) Dates() []string {
	dates := make([]string, 0, len(s))
	for d := range s {
		dates = append(dates, d)
	}
	sort.Sort(sort.Reverse(sort.StringSlice(dates)))
	return dates
}

// FetchSeries retrieves the daily series when interval is Daily and the
// intraday series for interval otherwise.
func (c *Client) FetchSeries(ctx context.Context, symbol, interval, outputSize string) (Series, error) {
	params := url.Values{}
	params.Set("symbol", symbol)
	params.Set("outputsize", outputSize)

	key := "Time Series (Daily)"
	if interval == Daily {
		params.Set("function", "TIME_SERIES_DAILY")
	} else {
		params.Set("function", "TIME_SERIES_INTRADAY")
		params.Set("interval", interval)
		key = "Time Series (" + interval + ")"
	}

	root, err := c.query(ctx, params)
	if err != nil {
		return nil, err
	}
	return c.parseSeries(root, key, symbol)
}

func (c *Client) query(ctx context.Context, params url.Values) (gjson.Result, error) {
	params.Set("apikey", c.apiKey)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"?"+params.Encode(), nil)
	if err != nil {
		return gjson.Result{}, &apperr.RequestError{Err: err}
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return gjson.Result{}, &apperr.RequestError{Err: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return gjson.Result{}, &apperr.RequestError{Err: err}
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return gjson.Result{}, &apperr.RequestError{
			Err: fmt.Errorf("request failed with status code %d", resp.StatusCode),
		}
	}
	return gjson.ParseBytes(body), nil
}

func (c *Client) parseSeries(root gjson.Result, key, symbol string) (Series, error) {
	if msg := member(root, "Error Message"); msg.Exists() && msg.String() != "" {
		return nil, &apperr.UpstreamError{Message: msg.String()}
	}
	if note := member(root, "Note"); note.Exists() && note.String() != "" {
		c.log.Warn("API usage note", zap.String("symbol", symbol), zap.String("note", note.String()))
	}

	raw := member(root, key)
	if !raw.IsObject() {
		return nil, &apperr.NoDataError{Message: errNoSeries}
	}

	series := make(Series)
	raw.ForEach(func(date, bar gjson.Result) bool {
		series[date.String()] = Bar{
			Open:   member(bar, "1. open").String(),
			High:   member(bar, "2. high").String(),
			Low:    member(bar, "3. low").String(),
			Close:  member(bar, "4. close").String(),
			Volume: member(bar, "5. volume").String(),
		}
		return true
	})
	return series, nil
}

// member returns the value stored under key in obj. Keys are matched
// literally, so dots and parentheses need no escaping.
func member(obj gjson.Result, key string) gjson.Result {
	var found gjson.Result
	obj.ForEach(func(k, v gjson.Result) bool {
		if k.String() == key {
			found = v
			return false
		}
		return true
	})
	return found
}
