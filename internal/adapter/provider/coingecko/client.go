// Package coingecko implements the crypto provider over the public
// CoinGecko v3 API (free tier, no key needed).
package coingecko

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

	"github.com/shopspring/decimal"

	"github.com/BthnIsler/finoria/internal/domain"
)

// DefaultBaseURL is the public CoinGecko API host
const DefaultBaseURL = "https://api.coingecko.com"

// Client talks to CoinGecko. It implements domain.CryptoProvider.
type Client struct {
	httpc   *http.Client
	baseURL string
	logger  *slog.Logger
}

// New creates a CoinGecko client. An empty URL uses the public host.
func New(baseURL string, logger *slog.Logger) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &Client{
		httpc:   &http.Client{Timeout: 15 * time.Second},
		baseURL: baseURL,
		logger:  logger,
	}
}

// SimplePrices returns current prices and 24h change for the given coin
// ids in currency vs. Coins CoinGecko does not know are absent from the
// result.
func (c *Client) SimplePrices(ctx context.Context, ids []string, vs string) (map[string]domain.Quote, error) {
	addr := fmt.Sprintf("%s/api/v3/simple/price?ids=%s&vs_currencies=%s&include_24hr_change=true",
		c.baseURL, url.QueryEscape(strings.Join(ids, ",")), url.QueryEscape(vs))

	// {"bitcoin": {"try": 1500000.0, "try_24h_change": -1.2}, ...}
	var payload map[string]map[string]float64
	if err := c.jwget(ctx, addr, &payload); err != nil {
		return nil, err
	}

	quotes := make(map[string]domain.Quote, len(payload))
	for _, id := range ids {
		fields, ok := payload[id]
		if !ok {
			continue
		}
		price, ok := fields[vs]
		if !ok {
			continue
		}
		quote := domain.Quote{Price: decimal.NewFromFloat(price)}
		if change, ok := fields[vs+"_24h_change"]; ok {
			quote.Change24h = decimal.NewFromFloat(change)
			quote.HasChange = true
		}
		quotes[id] = quote
	}
	return quotes, nil
}

// MarketChart returns the daily close series of one coin in currency vs
// over the last days days
func (c *Client) MarketChart(ctx context.Context, id, vs string, days int) ([]domain.PricePoint, error) {
	addr := fmt.Sprintf("%s/api/v3/coins/%s/market_chart?vs_currency=%s&days=%d&interval=daily",
		c.baseURL, url.PathEscape(id), url.QueryEscape(vs), days)

	var payload struct {
		Prices [][]float64 `json:"prices"` // [epochMillis, price] pairs
	}
	if err := c.jwget(ctx, addr, &payload); err != nil {
		return nil, err
	}

	points := make([]domain.PricePoint, 0, len(payload.Prices))
	for _, pair := range payload.Prices {
		if len(pair) < 2 {
			continue
		}
		points = append(points, domain.PricePoint{
			Date:  time.UnixMilli(int64(pair[0])).UTC().Format("2006-01-02"),
			Price: decimal.NewFromFloat(pair[1]),
		})
	}
	return points, nil
}

// jwget performs an HTTP GET and unmarshals the JSON response into data
func (c *Client) jwget(ctx context.Context, addr string, data any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, addr, nil)
	if err != nil {
		return err
	}

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
