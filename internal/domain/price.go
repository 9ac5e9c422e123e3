package domain

import "github.com/shopspring/decimal"

// Quote is a provider's latest price for one instrument.
// Change24h is a percentage and is absent for providers that only
// report a price.
type Quote struct {
	Price     decimal.Decimal
	Change24h decimal.Decimal
	HasChange bool
}

// PricePoint is one day of a provider's historical close series.
// Date is a calendar day in YYYY-MM-DD form; series from different
// providers are joined by exact date-string match.
type PricePoint struct {
	Date  string
	Price decimal.Decimal
}

// SeriesPoint is one day of an aggregated portfolio value series
type SeriesPoint struct {
	Date  string
	Value decimal.Decimal
}

// Article is one news item about an instrument or market
type Article struct {
	Title       string
	Link        string
	PublishedAt string
	Source      string
}

// EquityMatch is one result of a free-text equity search
type EquityMatch struct {
	Symbol   string // provider identifier without exchange suffix
	Name     string
	Market   string // "BIST" for local listings, "NASDAQ" otherwise
	Exchange string
}
