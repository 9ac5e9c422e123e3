package history

import (
	"context"
	"log/slog"
	"sort"
	"strings"
	"sync"

	"github.com/shopspring/decimal"

	"github.com/BthnIsler/finoria/internal/domain"
)

// Period tokens accepted by Aggregate, mapped to the quote provider's
// range parameter and the crypto provider's day count. Unknown tokens
// fall back to one year.
var (
	periodRanges = map[string]string{"3m": "3mo", "1y": "1y", "3y": "3y"}
	periodDays   = map[string]int{"3m": 90, "1y": 365, "3y": 1095}
)

// HoldingInput is one holding's contribution request: what to fetch and
// how many units to weight it by
type HoldingInput struct {
	ProviderID string
	Category   domain.Category
	Quantity   decimal.Decimal
}

// Service builds a single chronological series of portfolio value by
// summing per-holding historical series that may come from different
// providers in different currencies
type Service struct {
	Crypto domain.CryptoProvider
	Quotes domain.QuoteProvider

	base   string
	logger *slog.Logger
}

// NewService creates a new historical aggregation service
func NewService(crypto domain.CryptoProvider, quotes domain.QuoteProvider, base string, logger *slog.Logger) *Service {
	return &Service{Crypto: crypto, Quotes: quotes, base: base, logger: logger}
}

// Aggregate returns the date-ascending portfolio value series over the
// requested period. Each date's value sums quantity x price over the
// holdings that have data for that date; holdings with no data for a
// date contribute nothing there, and a holding whose fetch fails
// contributes nothing at all. The join itself never fails.
func (s *Service) Aggregate(ctx context.Context, holdings []HoldingInput, period string) []domain.SeriesPoint {
	if len(holdings) == 0 {
		return []domain.SeriesPoint{}
	}

	rng, ok := periodRanges[period]
	if !ok {
		rng = "1y"
	}
	days, ok := periodDays[period]
	if !ok {
		days = 365
	}

	// One USD->base series shared by every foreign equity in the
	// request, fetched before the per-holding fan-out.
	var fxSeries map[string]decimal.Decimal
	if hasForeignEquity(holdings) {
		fxSeries = s.usdSeries(ctx, rng)
	}

	series := make([][]domain.PricePoint, len(holdings))

	var wg sync.WaitGroup
	for i, h := range holdings {
		wg.Add(1)
		go func() {
			defer wg.Done()
			series[i] = s.holdingSeries(ctx, h, rng, days, fxSeries)
		}()
	}
	wg.Wait()

	// Fold all series into one date -> cumulative value map. No
	// interpolation: a date absent from a holding's series gets no
	// contribution from that holding.
	totals := make(map[string]decimal.Decimal)
	for i, h := range holdings {
		for _, p := range series[i] {
			totals[p.Date] = totals[p.Date].Add(h.Quantity.Mul(p.Price))
		}
	}

	dates := make([]string, 0, len(totals))
	for date := range totals {
		dates = append(dates, date)
	}
	sort.Strings(dates)

	points := make([]domain.SeriesPoint, 0, len(dates))
	for _, date := range dates {
		points = append(points, domain.SeriesPoint{Date: date, Value: totals[date]})
	}
	return points
}

// InstrumentSeries returns a single instrument's historical price chart
// in the base currency, using the same machinery with a quantity of one
func (s *Service) InstrumentSeries(ctx context.Context, providerID string, category domain.Category, period string) []domain.SeriesPoint {
	return s.Aggregate(ctx, []HoldingInput{{
		ProviderID: providerID,
		Category:   category,
		Quantity:   decimal.NewFromInt(1),
	}}, period)
}

func hasForeignEquity(holdings []HoldingInput) bool {
	for _, h := range holdings {
		if h.Category == domain.CategoryStock && h.ProviderID != "" && domain.IsForeignListing(h.ProviderID) {
			return true
		}
	}
	return false
}

// holdingSeries fetches one holding's native series and normalizes it
// into the base currency. Any failure degrades to an empty series.
func (s *Service) holdingSeries(ctx context.Context, h HoldingInput, rng string, days int, fxSeries map[string]decimal.Decimal) []domain.PricePoint {
	if h.ProviderID == "" {
		return nil
	}

	switch h.Category {
	case domain.CategoryCrypto:
		points, err := s.Crypto.MarketChart(ctx, h.ProviderID, strings.ToLower(s.base), days)
		if err != nil {
			s.logger.Warn("crypto history fetch failed", "id", h.ProviderID, "error", err)
			return nil
		}
		return points

	case domain.CategoryStock:
		points, err := s.Quotes.DailyCloses(ctx, domain.ExchangeSymbol(h.ProviderID), rng)
		if err != nil {
			s.logger.Warn("stock history fetch failed", "symbol", h.ProviderID, "error", err)
			return nil
		}
		if domain.IsForeignListing(h.ProviderID) {
			points = convertDaily(points, fxSeries)
		}
		return points

	default:
		// Other categories have no historical feed and contribute nothing.
		return nil
	}
}

// usdSeries fetches the historical USD->base daily close series for the
// window, keyed by date string
func (s *Service) usdSeries(ctx context.Context, rng string) map[string]decimal.Decimal {
	points, err := s.Quotes.DailyCloses(ctx, "USD"+s.base+"=X", rng)
	if err != nil {
		s.logger.Warn("usd series fetch failed", "error", err)
		return nil
	}
	rates := make(map[string]decimal.Decimal, len(points))
	for _, p := range points {
		rates[p.Date] = p.Price
	}
	return rates
}

// convertDaily multiplies each day's USD price by the same day's FX
// rate, joined by exact date string. A date with no FX entry keeps its
// native price: gaps stay unconverted rather than estimated.
func convertDaily(points []domain.PricePoint, fxSeries map[string]decimal.Decimal) []domain.PricePoint {
	converted := make([]domain.PricePoint, len(points))
	for i, p := range points {
		if rate, ok := fxSeries[p.Date]; ok {
			p.Price = p.Price.Mul(rate)
		}
		converted[i] = p
	}
	return converted
}
