package allocator

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/BthnIsler/finoria/internal/domain"
)

func holding(category domain.Category, quantity, price string) *domain.Holding {
	return &domain.Holding{
		Category:      category,
		Quantity:      decimal.RequireFromString(quantity),
		PurchasePrice: decimal.RequireFromString(price),
	}
}

func TestCategoryShares_SumsToExactlyHundred(t *testing.T) {
	// 1/3 splits produce infinite decimals, the leftover must land on
	// exactly one category so the total stays 100
	holdings := []*domain.Holding{
		holding(domain.CategoryCrypto, "1", "1000"),
		holding(domain.CategoryGold, "1", "1000"),
		holding(domain.CategoryStock, "1", "1000"),
	}

	shares := CategoryShares(holdings)
	require.Len(t, shares, 3)

	total := decimal.Zero
	for _, share := range shares {
		total = total.Add(share)
	}
	assert.True(t, total.Equal(decimal.NewFromInt(100)), "shares should sum to 100, got %s", total)
}

func TestCategoryShares_ProportionalSplit(t *testing.T) {
	holdings := []*domain.Holding{
		holding(domain.CategoryCrypto, "1", "750"),
		holding(domain.CategoryGold, "1", "250"),
	}

	shares := CategoryShares(holdings)
	require.Len(t, shares, 2)
	assert.True(t, shares[domain.CategoryCrypto].Equal(decimal.NewFromInt(75)))
	assert.True(t, shares[domain.CategoryGold].Equal(decimal.NewFromInt(25)))
}

func TestCategoryShares_LeftoverGoesToLargest(t *testing.T) {
	// 2000/3000 and 1000/3000 both round down, the largest category
	// absorbs the difference
	holdings := []*domain.Holding{
		holding(domain.CategoryStock, "2", "1000"),
		holding(domain.CategoryForex, "1", "1000"),
	}

	shares := CategoryShares(holdings)
	require.Len(t, shares, 2)
	assert.True(t, shares[domain.CategoryForex].Equal(decimal.RequireFromString("33.33")))
	assert.True(t, shares[domain.CategoryStock].Equal(decimal.RequireFromString("66.67")))
}

func TestCategoryShares_MergesHoldingsOfSameCategory(t *testing.T) {
	holdings := []*domain.Holding{
		holding(domain.CategoryCrypto, "1", "300"),
		holding(domain.CategoryCrypto, "1", "200"),
		holding(domain.CategorySavings, "1", "500"),
	}

	shares := CategoryShares(holdings)
	require.Len(t, shares, 2)
	assert.True(t, shares[domain.CategoryCrypto].Equal(decimal.NewFromInt(50)))
	assert.True(t, shares[domain.CategorySavings].Equal(decimal.NewFromInt(50)))
}

func TestCategoryShares_EmptyPortfolio(t *testing.T) {
	assert.Nil(t, CategoryShares(nil))
	assert.Nil(t, CategoryShares([]*domain.Holding{}))
}
