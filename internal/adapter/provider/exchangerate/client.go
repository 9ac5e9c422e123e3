// Package exchangerate implements the spot FX rate provider over the
// free exchangerate-api.com v4 endpoint.
package exchangerate

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/shopspring/decimal"
)

// DefaultBaseURL is the public exchangerate-api host
const DefaultBaseURL = "https://api.exchangerate-api.com"

// Client serves base->currency rate tables. It implements
// domain.FxRateProvider.
type Client struct {
	httpc   *http.Client
	baseURL string
}

// New creates an exchange rate client. An empty URL uses the public host.
func New(baseURL string) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &Client{
		httpc:   &http.Client{Timeout: 15 * time.Second},
		baseURL: baseURL,
	}
}

// Rates returns the base->currency conversion table
func (c *Client) Rates(ctx context.Context, base string) (map[string]decimal.Decimal, error) {
	addr := fmt.Sprintf("%s/v4/latest/%s", c.baseURL, url.PathEscape(base))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, addr, nil)
	if err != nil {
		return nil, err
	}
	resp, err := c.httpc.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("cannot http GET %v%v: %v", req.URL.Host, req.URL.Path, resp.Status)
	}

	var payload struct {
		Rates map[string]float64 `json:"rates"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, err
	}
	if len(payload.Rates) == 0 {
		return nil, fmt.Errorf("empty rate table for %q", base)
	}

	rates := make(map[string]decimal.Decimal, len(payload.Rates))
	for currency, rate := range payload.Rates {
		rates[currency] = decimal.NewFromFloat(rate)
	}
	return rates, nil
}
