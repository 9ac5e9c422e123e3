// Package metalprice implements the fallback metals-rate provider over
// metalpriceapi.com, used when the primary gold reference is down.
package metalprice

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/shopspring/decimal"
)

// DefaultBaseURL is the public metalpriceapi host
const DefaultBaseURL = "https://api.metalpriceapi.com"

// Client serves spot metal rates. It implements domain.MetalRateProvider.
type Client struct {
	httpc   *http.Client
	baseURL string
	apiKey  string
}

// New creates a metal price client. An empty URL uses the public host;
// the free "demo" key works for low-volume use.
func New(baseURL, apiKey string) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if apiKey == "" {
		apiKey = "demo"
	}
	return &Client{
		httpc:   &http.Client{Timeout: 15 * time.Second},
		baseURL: baseURL,
		apiKey:  apiKey,
	}
}

// Rate returns the price of one unit of base (e.g. "XAU" per troy
// ounce) in the given currency
func (c *Client) Rate(ctx context.Context, base, currency string) (decimal.Decimal, error) {
	addr := fmt.Sprintf("%s/v1/latest?api_key=%s&base=%s&currencies=%s",
		c.baseURL, url.QueryEscape(c.apiKey), url.QueryEscape(base), url.QueryEscape(currency))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, addr, nil)
	if err != nil {
		return decimal.Decimal{}, err
	}
	resp, err := c.httpc.Do(req)
	if err != nil {
		return decimal.Decimal{}, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return decimal.Decimal{}, fmt.Errorf("cannot http GET %v%v: %v", req.URL.Host, req.URL.Path, resp.Status)
	}

	var payload struct {
		Rates map[string]float64 `json:"rates"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return decimal.Decimal{}, err
	}
	rate, ok := payload.Rates[currency]
	if !ok {
		return decimal.Decimal{}, fmt.Errorf("no %s rate in %s response", currency, base)
	}
	return decimal.NewFromFloat(rate), nil
}
