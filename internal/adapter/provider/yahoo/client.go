// Package yahoo implements the quote provider and equity search over
// the public Yahoo Finance chart/search endpoints (no API key needed).
package yahoo

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/PaesslerAG/jsonpath"
	"github.com/shopspring/decimal"

	"github.com/BthnIsler/finoria/internal/domain"
)

const (
	// DefaultChartURL serves the v8 chart endpoint
	DefaultChartURL = "https://query1.finance.yahoo.com"
	// DefaultSearchURL serves the v1 search endpoint
	DefaultSearchURL = "https://query2.finance.yahoo.com"

	// Yahoo rejects requests without a browser-looking user agent
	userAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36"
)

// Client talks to Yahoo Finance. It implements domain.QuoteProvider and
// domain.EquitySearcher.
type Client struct {
	httpc     *http.Client
	chartURL  string
	searchURL string
	logger    *slog.Logger
}

// New creates a Yahoo Finance client. Empty URLs use the public hosts.
func New(chartURL, searchURL string, logger *slog.Logger) *Client {
	if chartURL == "" {
		chartURL = DefaultChartURL
	}
	if searchURL == "" {
		searchURL = DefaultSearchURL
	}
	return &Client{
		httpc:     &http.Client{Timeout: 15 * time.Second},
		chartURL:  chartURL,
		searchURL: searchURL,
		logger:    logger,
	}
}

// LatestQuote returns the latest market price and day change for one
// Yahoo symbol
func (c *Client) LatestQuote(ctx context.Context, symbol string) (domain.Quote, error) {
	addr := fmt.Sprintf("%s/v8/finance/chart/%s?interval=1d&range=1d", c.chartURL, url.PathEscape(symbol))

	var jobj any
	if err := c.jwget(ctx, addr, &jobj); err != nil {
		return domain.Quote{}, err
	}

	price, err := jsonFloat(jobj, "$.chart.result[0].meta.regularMarketPrice")
	if err != nil {
		return domain.Quote{}, fmt.Errorf("no market price for %q: %w", symbol, err)
	}
	quote := domain.Quote{Price: decimal.NewFromFloat(price)}

	// Day change against the previous close, when the payload has one.
	prev, err := jsonFloat(jobj, "$.chart.result[0].meta.chartPreviousClose")
	if err != nil {
		prev, err = jsonFloat(jobj, "$.chart.result[0].meta.previousClose")
	}
	if err == nil && prev > 0 {
		quote.Change24h = decimal.NewFromFloat((price - prev) / prev * 100)
		quote.HasChange = true
	}
	return quote, nil
}

// DailyCloses returns the daily close series for a symbol over a Yahoo
// range token ("3mo", "1y", "3y", ...). Days with a null or non-positive
// close are dropped.
func (c *Client) DailyCloses(ctx context.Context, symbol, rng string) ([]domain.PricePoint, error) {
	addr := fmt.Sprintf("%s/v8/finance/chart/%s?interval=1d&range=%s",
		c.chartURL, url.PathEscape(symbol), url.QueryEscape(rng))

	var jobj any
	if err := c.jwget(ctx, addr, &jobj); err != nil {
		return nil, err
	}

	timestamps, err := jsonList(jobj, "$.chart.result[0].timestamp")
	if err != nil {
		return nil, fmt.Errorf("no series for %q: %w", symbol, err)
	}
	closes, err := jsonList(jobj, "$.chart.result[0].indicators.quote[0].close")
	if err != nil {
		return nil, fmt.Errorf("no closes for %q: %w", symbol, err)
	}

	n := len(timestamps)
	if len(closes) < n {
		n = len(closes)
	}
	points := make([]domain.PricePoint, 0, n)
	for i := 0; i < n; i++ {
		ts, tsOK := timestamps[i].(float64)
		price, priceOK := closes[i].(float64)
		if !tsOK || !priceOK || price <= 0 {
			continue
		}
		points = append(points, domain.PricePoint{
			Date:  time.Unix(int64(ts), 0).UTC().Format("2006-01-02"),
			Price: decimal.NewFromFloat(price),
		})
	}
	return points, nil
}

// SearchEquities resolves free text into equity symbols, tagging BIST
// listings (Yahoo's ".IS" suffix) against foreign ones
func (c *Client) SearchEquities(ctx context.Context, query string) ([]domain.EquityMatch, error) {
	addr := fmt.Sprintf("%s/v1/finance/search?q=%s&quotesCount=20&newsCount=0&listsCount=0",
		c.searchURL, url.QueryEscape(query))

	var payload struct {
		Quotes []struct {
			Symbol    string `json:"symbol"`
			ShortName string `json:"shortname"`
			LongName  string `json:"longname"`
			QuoteType string `json:"quoteType"`
			Exchange  string `json:"exchange"`
		} `json:"quotes"`
	}
	if err := c.jwget(ctx, addr, &payload); err != nil {
		return nil, err
	}

	matches := make([]domain.EquityMatch, 0, len(payload.Quotes))
	for _, q := range payload.Quotes {
		if q.QuoteType != "EQUITY" || q.Symbol == "" {
			continue
		}
		match := domain.EquityMatch{
			Symbol:   q.Symbol,
			Market:   "NASDAQ",
			Exchange: q.Exchange,
		}
		if cut, ok := strings.CutSuffix(q.Symbol, ".IS"); ok {
			match.Symbol = cut
			match.Market = "BIST"
		}
		match.Name = q.ShortName
		if match.Name == "" {
			match.Name = q.LongName
		}
		if match.Name == "" {
			match.Name = match.Symbol
		}
		matches = append(matches, match)
	}
	return matches, nil
}

// jwget performs an HTTP GET and unmarshals the JSON response into data
func (c *Client) jwget(ctx context.Context, addr string, data any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, addr, nil)
	if err != nil {
		return err
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := c.httpc.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("cannot http GET %v%v: %v", req.URL.Host, req.URL.Path, resp.Status)
	}
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}
	return json.Unmarshal(body, data)
}

// jsonFloat extracts a single float from a decoded JSON document
func jsonFloat(jobj any, path string) (float64, error) {
	jval, err := jsonpath.Get(path, jobj)
	if err != nil {
		return 0, err
	}
	// jsonpath sometimes wraps a single answer in a one-element list
	if jlist, ok := jval.([]any); ok && len(jlist) > 0 {
		jval = jlist[0]
	}
	val, ok := jval.(float64)
	if !ok {
		return 0, fmt.Errorf("%q is not a number: %v", path, jval)
	}
	return val, nil
}

// jsonList extracts an array from a decoded JSON document
func jsonList(jobj any, path string) ([]any, error) {
	jval, err := jsonpath.Get(path, jobj)
	if err != nil {
		return nil, err
	}
	jlist, ok := jval.([]any)
	if !ok {
		return nil, fmt.Errorf("%q is not a list: %v", path, jval)
	}
	return jlist, nil
}
