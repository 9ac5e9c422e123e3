package domain

import "strings"

// Stock provider identifiers carry an exchange prefix: "BIST:THYAO"
// marks a Borsa Istanbul listing (quoted in the local currency), while
// "NASDAQ:AAPL" or a bare symbol marks a foreign listing quoted in USD.

// IsForeignListing reports whether the identifier names a non-local
// exchange listing whose price needs USD conversion
func IsForeignListing(providerID string) bool {
	return !strings.HasPrefix(providerID, "BIST:")
}

// ExchangeSymbol maps a stock provider identifier to the quote
// provider's symbol: BIST listings get the ".IS" suffix, foreign ones
// lose their market prefix.
func ExchangeSymbol(providerID string) string {
	if after, ok := strings.CutPrefix(providerID, "BIST:"); ok {
		return after + ".IS"
	}
	return strings.TrimPrefix(providerID, "NASDAQ:")
}
