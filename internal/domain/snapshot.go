package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// WealthSnapshot is one calendar day's aggregate portfolio state.
// At most one exists per (user, date); a later write for the same day
// replaces the earlier one.
type WealthSnapshot struct {
	Date      string // YYYY-MM-DD
	Total     decimal.Decimal
	Breakdown map[Category]decimal.Decimal
}

// HourlySnapshot is an open/high/low/close aggregate of total wealth
// for one calendar hour. Total mirrors Close and is what period queries
// read.
type HourlySnapshot struct {
	Timestamp time.Time
	Total     decimal.Decimal
	Open      decimal.Decimal
	High      decimal.Decimal
	Low       decimal.Decimal
	Close     decimal.Decimal
}

// AssetPricePoint is one hour-bucketed entry of a holding's own price
// series: the unit price at that instant and the position value
// (quantity x price).
type AssetPricePoint struct {
	Timestamp time.Time
	Price     decimal.Decimal
	Value     decimal.Decimal
}
