package advisor

import (
	"fmt"
	"strings"

	"github.com/Rhymond/go-money"
	"github.com/shopspring/decimal"

	"github.com/BthnIsler/finoria/internal/domain"
	"github.com/BthnIsler/finoria/internal/usecase/allocator"
)

// PortfolioContext renders the holdings into the plain-text summary the
// chat system prompt embeds: one line per holding plus the grand total,
// with amounts formatted in the reporting currency.
func PortfolioContext(holdings []*domain.Holding, currency string) string {
	if len(holdings) == 0 {
		return "The portfolio is currently empty."
	}

	var b strings.Builder
	total := decimal.Zero
	for _, h := range holdings {
		value := h.CurrentValue()
		total = total.Add(value)
		fmt.Fprintf(&b, "- %s (%s): %s units, current value %s, purchased at %s/unit\n",
			h.Name,
			h.Category,
			h.Quantity.String(),
			formatMoney(value, currency),
			formatMoney(h.PurchasePrice, currency),
		)
	}
	fmt.Fprintf(&b, "Total portfolio value: %s\n", formatMoney(total, currency))

	shares := allocator.CategoryShares(holdings)
	if len(shares) > 0 {
		b.WriteString("Allocation:")
		for _, category := range domain.Categories {
			if share, ok := shares[category]; ok {
				fmt.Fprintf(&b, " %s %s%%", category, share.String())
			}
		}
		b.WriteString("\n")
	}
	return b.String()
}

// formatMoney renders a decimal amount with the currency's own symbol
// and digit grouping
func formatMoney(v decimal.Decimal, currency string) string {
	cur := *money.New(0, currency).Currency()
	minor := v.Shift(int32(cur.Fraction))
	return cur.Formatter().Format(minor.IntPart())
}
