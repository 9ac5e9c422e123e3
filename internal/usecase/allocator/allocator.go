package allocator

import (
	"sort"

	"github.com/shopspring/decimal"

	"github.com/BthnIsler/finoria/internal/domain"
)

var hundred = decimal.NewFromInt(100)

// CategoryShares calculates each category's share of the total
// portfolio value as a percentage with two decimal places.
// Logic:
//  1. Sum the current value per category
//  2. Round each share down to two decimals
//  3. Assign the rounding leftover to the largest category
//
// Safety: Ensures the shares add up to exactly 100 (no point lost)
func CategoryShares(holdings []*domain.Holding) map[domain.Category]decimal.Decimal {
	totals := make(map[domain.Category]decimal.Decimal)
	grand := decimal.Zero
	for _, h := range holdings {
		value := h.CurrentValue()
		totals[h.Category] = totals[h.Category].Add(value)
		grand = grand.Add(value)
	}
	if !grand.IsPositive() {
		return nil
	}

	shares := make(map[domain.Category]decimal.Decimal, len(totals))
	allocated := decimal.Zero
	for category, value := range totals {
		share := value.Mul(hundred).Div(grand).RoundDown(2)
		shares[category] = share
		allocated = allocated.Add(share)
	}

	// Assign the final leftover to the largest share
	leftover := hundred.Sub(allocated)
	if !leftover.IsZero() {
		largest := largestCategory(totals)
		shares[largest] = shares[largest].Add(leftover)
	}

	return shares
}

// largestCategory picks the category with the highest value, breaking
// ties by category name so the result is deterministic
func largestCategory(totals map[domain.Category]decimal.Decimal) domain.Category {
	categories := make([]domain.Category, 0, len(totals))
	for category := range totals {
		categories = append(categories, category)
	}
	sort.Slice(categories, func(i, j int) bool {
		a, b := totals[categories[i]], totals[categories[j]]
		if !a.Equal(b) {
			return a.GreaterThan(b)
		}
		return categories[i] < categories[j]
	})
	return categories[0]
}
