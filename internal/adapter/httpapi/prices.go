package httpapi

import (
	"net/http"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/BthnIsler/finoria/internal/domain"
	"github.com/BthnIsler/finoria/internal/usecase/history"
	"github.com/BthnIsler/finoria/internal/usecase/pricing"
)

// handlePrices runs one on-demand fetch cycle for the identifiers in
// the query string and returns the settled price map
func (s *Server) handlePrices(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	req := pricing.FetchRequest{
		CryptoIDs:       splitParam(q.Get("crypto")),
		ForexCurrencies: splitParam(q.Get("forex")),
		StockSymbols:    splitParam(q.Get("stocks")),
		MetalIDs:        splitParam(q.Get("metals")),
		HasGold:         q.Get("gold") == "true",
	}

	prices := s.svc.Pricing.FetchAll(r.Context(), req)
	writeJSON(w, http.StatusOK, prices)
}

type stockQuoteResponse struct {
	Price  decimal.Decimal  `json:"price"`
	Change *decimal.Decimal `json:"change,omitempty"`
}

func (s *Server) handleStockPrices(w http.ResponseWriter, r *http.Request) {
	symbols := splitParam(r.URL.Query().Get("symbols"))
	if len(symbols) == 0 {
		writeError(w, http.StatusBadRequest, "symbols parameter is required")
		return
	}

	quotes := s.svc.Pricing.StockQuotes(r.Context(), symbols)

	resp := make(map[string]stockQuoteResponse, len(quotes))
	for symbol, quote := range quotes {
		entry := stockQuoteResponse{Price: quote.Price}
		if quote.HasChange {
			change := quote.Change24h
			entry.Change = &change
		}
		resp[symbol] = entry
	}
	writeJSON(w, http.StatusOK, resp)
}

type historicalAsset struct {
	ProviderID string          `json:"providerId"`
	Category   domain.Category `json:"category"`
	Quantity   decimal.Decimal `json:"quantity"`
}

type historicalPricesRequest struct {
	Assets []historicalAsset `json:"assets"`
	Period string            `json:"period"`

	// single-instrument mode, used when Assets is empty
	ProviderID string          `json:"providerId"`
	Category   domain.Category `json:"category"`
}

type seriesResponse struct {
	Points []seriesPoint `json:"points"`
}

type seriesPoint struct {
	Date  string          `json:"date"`
	Value decimal.Decimal `json:"value"`
}

// handleHistoricalPrices aggregates per-asset history into one series.
// With no asset list it charts a single instrument at quantity 1.
func (s *Server) handleHistoricalPrices(w http.ResponseWriter, r *http.Request) {
	var req historicalPricesRequest
	if !decodeBody(w, r, &req) {
		return
	}

	var points []domain.SeriesPoint
	if len(req.Assets) == 0 {
		if req.ProviderID == "" {
			writeError(w, http.StatusBadRequest, "assets or providerId is required")
			return
		}
		points = s.svc.History.InstrumentSeries(r.Context(), req.ProviderID, req.Category, req.Period)
	} else {
		inputs := make([]history.HoldingInput, 0, len(req.Assets))
		for _, a := range req.Assets {
			inputs = append(inputs, history.HoldingInput{
				ProviderID: a.ProviderID,
				Category:   a.Category,
				Quantity:   a.Quantity,
			})
		}
		points = s.svc.History.Aggregate(r.Context(), inputs, req.Period)
	}

	resp := seriesResponse{Points: make([]seriesPoint, 0, len(points))}
	for _, p := range points {
		resp.Points = append(resp.Points, seriesPoint{Date: p.Date, Value: p.Value})
	}
	writeJSON(w, http.StatusOK, resp)
}

func splitParam(raw string) []string {
	if raw == "" {
		return nil
	}
	parts := strings.Split(raw, ",")
	out := parts[:0]
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
