package domain

import (
	"context"

	"github.com/shopspring/decimal"
)

// QuoteProvider serves equity, metal-futures and FX-pair quotes and
// their historical daily close series, addressed by exchange symbol.
type QuoteProvider interface {
	// LatestQuote returns the latest market price for one symbol
	LatestQuote(ctx context.Context, symbol string) (Quote, error)

	// DailyCloses returns the daily close series for a symbol over a
	// provider range token such as "3mo", "1y" or "3y"
	DailyCloses(ctx context.Context, symbol, rng string) ([]PricePoint, error)
}

// CryptoProvider serves crypto quotes and history, addressed by coin
// identifier, priced directly in the requested currency.
type CryptoProvider interface {
	// SimplePrices returns current prices (and 24h change where
	// available) for the given coin ids in currency vs.
	// Unknown ids are absent from the result.
	SimplePrices(ctx context.Context, ids []string, vs string) (map[string]Quote, error)

	// MarketChart returns the daily close series of one coin in
	// currency vs over the last days days
	MarketChart(ctx context.Context, id, vs string, days int) ([]PricePoint, error)
}

// FxRateProvider serves a spot conversion-rate table for one base currency
type FxRateProvider interface {
	// Rates returns base->currency rates keyed by currency code
	Rates(ctx context.Context, base string) (map[string]decimal.Decimal, error)
}

// MetalRateProvider serves spot metal rates, used as the fallback gold
// reference when the primary instrument is unavailable.
type MetalRateProvider interface {
	// Rate returns the price of one unit of base (e.g. "XAU", per troy
	// ounce) in the given currency
	Rate(ctx context.Context, base, currency string) (decimal.Decimal, error)
}

// NewsProvider serves market news for a free-text query
type NewsProvider interface {
	Search(ctx context.Context, query string) ([]Article, error)
}

// EquitySearcher resolves free text into tradeable equity symbols
type EquitySearcher interface {
	SearchEquities(ctx context.Context, query string) ([]EquityMatch, error)
}
