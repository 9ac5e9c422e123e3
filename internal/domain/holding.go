package domain

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Category classifies a holding into one of the fixed asset categories
type Category string

const (
	CategoryCrypto        Category = "crypto"
	CategoryGold          Category = "gold"
	CategoryPreciousMetal Category = "preciousMetal"
	CategoryForex         Category = "forex"
	CategoryStock         Category = "stock"
	CategoryRealEstate    Category = "realEstate"
	CategorySavings       Category = "savings"
	CategoryOther         Category = "other"
)

// Categories lists every valid category, in display order
var Categories = []Category{
	CategoryCrypto,
	CategoryGold,
	CategoryPreciousMetal,
	CategoryForex,
	CategoryStock,
	CategoryRealEstate,
	CategorySavings,
	CategoryOther,
}

// Valid reports whether c is one of the known categories
func (c Category) Valid() bool {
	for _, known := range Categories {
		if c == known {
			return true
		}
	}
	return false
}

// DustThreshold is the residual quantity below which a holding is
// considered fully sold and removed instead of kept around
var DustThreshold = decimal.RequireFromString("0.0001")

// UnitPrice is a tagged "priced or unpriced" value. The zero value is
// unpriced, so an absent live/manual price needs no pointer or sentinel.
type UnitPrice struct {
	value  decimal.Decimal
	priced bool
}

// PriceOf returns a priced UnitPrice holding v
func PriceOf(v decimal.Decimal) UnitPrice {
	return UnitPrice{value: v, priced: true}
}

// Unpriced returns the unpriced sentinel
func Unpriced() UnitPrice {
	return UnitPrice{}
}

// Priced reports whether a price is present
func (p UnitPrice) Priced() bool { return p.priced }

// Value returns the price and whether it is present
func (p UnitPrice) Value() (decimal.Decimal, bool) {
	return p.value, p.priced
}

// Or returns p if priced, otherwise fallback.
// Chaining Or calls implements the ordered price lookup.
func (p UnitPrice) Or(fallback UnitPrice) UnitPrice {
	if p.priced {
		return p
	}
	return fallback
}

// Holding represents a user's position in one trackable instrument
type Holding struct {
	ID               uuid.UUID
	UserID           uuid.UUID
	Name             string
	Category         Category
	ProviderID       string // external price lookup key, empty for manually priced holdings
	Quantity         decimal.Decimal
	PurchasePrice    decimal.Decimal // per unit, in PurchaseCurrency
	PurchaseCurrency string          // defaults to the reporting currency
	LivePrice        UnitPrice       // last automatically fetched unit price
	ManualPrice      UnitPrice       // user-entered fallback when no feed exists
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

// EffectivePrice resolves the current unit price with the fixed fallback
// order live -> manual -> purchase. The purchase price is always set, so
// the result is never unpriced.
func (h *Holding) EffectivePrice() decimal.Decimal {
	p := h.LivePrice.Or(h.ManualPrice).Or(PriceOf(h.PurchasePrice))
	v, _ := p.Value()
	return v
}

// CurrentValue returns quantity times effective unit price
func (h *Holding) CurrentValue() decimal.Decimal {
	return h.Quantity.Mul(h.EffectivePrice())
}

// CostBasis returns quantity times purchase unit price
func (h *Holding) CostBasis() decimal.Decimal {
	return h.Quantity.Mul(h.PurchasePrice)
}

// ErrValidation marks domain rule violations. Every validation failure
// wraps it so callers classify with errors.Is instead of matching
// messages.
var ErrValidation = errors.New("validation failed")

// Validate ensures the holding adheres to domain rules
// Returns an error if validation fails
func (h *Holding) Validate() error {
	if h.Name == "" {
		return fmt.Errorf("holding name cannot be empty: %w", ErrValidation)
	}
	if !h.Category.Valid() {
		return fmt.Errorf("unknown holding category: %w", ErrValidation)
	}
	if h.Quantity.LessThanOrEqual(decimal.Zero) {
		return fmt.Errorf("holding quantity must be positive: %w", ErrValidation)
	}
	if h.PurchasePrice.IsNegative() {
		return fmt.Errorf("purchase price cannot be negative: %w", ErrValidation)
	}
	return nil
}
