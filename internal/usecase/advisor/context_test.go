package advisor

import (
	"strings"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"github.com/BthnIsler/finoria/internal/domain"
)

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func TestPortfolioContext_EmptyPortfolio(t *testing.T) {
	got := PortfolioContext(nil, "TRY")
	assert.Equal(t, "The portfolio is currently empty.", got)
}

func TestPortfolioContext_ListsHoldingsAndTotal(t *testing.T) {
	holdings := []*domain.Holding{
		{
			Name:          "Bitcoin",
			Category:      domain.CategoryCrypto,
			Quantity:      dec("0.5"),
			PurchasePrice: dec("2000000"),
			LivePrice:     domain.PriceOf(dec("2400000")),
		},
		{
			Name:          "Gram Gold",
			Category:      domain.CategoryGold,
			Quantity:      dec("10"),
			PurchasePrice: dec("2400"),
		},
	}

	got := PortfolioContext(holdings, "USD")

	assert.Contains(t, got, "Bitcoin")
	assert.Contains(t, got, "Gram Gold")
	assert.Contains(t, got, "0.5 units")
	assert.Contains(t, got, "Total portfolio value:")
	// 0.5 x 2400000 + 10 x 2400 = 1224000
	assert.Contains(t, got, "$1,224,000.00")
}

func TestPortfolioContext_IncludesAllocationShares(t *testing.T) {
	holdings := []*domain.Holding{
		{Name: "A", Category: domain.CategoryCrypto, Quantity: dec("1"), PurchasePrice: dec("750")},
		{Name: "B", Category: domain.CategoryGold, Quantity: dec("1"), PurchasePrice: dec("250")},
	}

	got := PortfolioContext(holdings, "USD")

	assert.Contains(t, got, "Allocation:")
	assert.Contains(t, got, "crypto 75%")
	assert.Contains(t, got, "gold 25%")
}

func TestFormatMoney(t *testing.T) {
	assert.Equal(t, "$1,234.56", formatMoney(dec("1234.56"), "USD"))
	assert.Equal(t, "$0.00", formatMoney(decimal.Zero, "USD"))
}

func TestPortfolioContext_OneLinePerHolding(t *testing.T) {
	holdings := []*domain.Holding{
		{Name: "A", Category: domain.CategoryCrypto, Quantity: dec("1"), PurchasePrice: dec("1")},
		{Name: "B", Category: domain.CategoryStock, Quantity: dec("1"), PurchasePrice: dec("1")},
		{Name: "C", Category: domain.CategorySavings, Quantity: dec("1"), PurchasePrice: dec("1")},
	}

	got := PortfolioContext(holdings, "USD")

	bullets := 0
	for _, line := range strings.Split(got, "\n") {
		if strings.HasPrefix(line, "- ") {
			bullets++
		}
	}
	assert.Equal(t, 3, bullets)
}
