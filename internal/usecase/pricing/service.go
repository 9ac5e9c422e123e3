package pricing

import (
	"context"
	"log/slog"
	"strings"
	"sync"

	"github.com/shopspring/decimal"

	"github.com/BthnIsler/finoria/internal/domain"
)

// gramsPerTroyOunce converts troy-ounce metal quotes to per-gram prices
var gramsPerTroyOunce = decimal.RequireFromString("31.1035")

// goldReferenceID is the USD-denominated gold-backed instrument used to
// derive the gram gold price (one token is roughly one troy ounce)
const goldReferenceID = "tether-gold"

// metalSymbols maps metal identifiers to the quote provider's futures
// symbols (USD per troy ounce)
var metalSymbols = map[string]string{
	"silver":    "SI=F",
	"platinum":  "PL=F",
	"palladium": "PA=F",
}

// FetchRequest lists the provider identifiers to price, partitioned by
// category. Empty lists skip that provider entirely.
type FetchRequest struct {
	CryptoIDs       []string
	ForexCurrencies []string
	StockSymbols    []string
	MetalIDs        []string
	HasGold         bool
}

// Service fetches current unit prices from the category providers
// concurrently and normalizes everything into the base currency.
// Provider failures degrade to missing map keys, never to an error.
type Service struct {
	Crypto domain.CryptoProvider
	Quotes domain.QuoteProvider
	Fx     domain.FxRateProvider
	Metals domain.MetalRateProvider

	base   string
	cache  *Cache
	logger *slog.Logger
}

// NewService creates a new price fetching service. base is the
// reporting currency code (e.g. "TRY").
func NewService(
	crypto domain.CryptoProvider,
	quotes domain.QuoteProvider,
	fx domain.FxRateProvider,
	metals domain.MetalRateProvider,
	base string,
	cache *Cache,
	logger *slog.Logger,
) *Service {
	return &Service{
		Crypto: crypto,
		Quotes: quotes,
		Fx:     fx,
		Metals: metals,
		base:   base,
		cache:  cache,
		logger: logger,
	}
}

// RequestFor partitions the holdings' provider identifiers into a
// FetchRequest. Holdings without an identifier are manually priced and
// contribute nothing.
func RequestFor(holdings []*domain.Holding) FetchRequest {
	var req FetchRequest
	seen := make(map[string]bool)
	for _, h := range holdings {
		if h.Category == domain.CategoryGold {
			req.HasGold = true
			continue
		}
		if h.ProviderID == "" || seen[h.ProviderID] {
			continue
		}
		seen[h.ProviderID] = true

		switch h.Category {
		case domain.CategoryCrypto:
			req.CryptoIDs = append(req.CryptoIDs, h.ProviderID)
		case domain.CategoryForex:
			req.ForexCurrencies = append(req.ForexCurrencies, h.ProviderID)
		case domain.CategoryStock:
			req.StockSymbols = append(req.StockSymbols, h.ProviderID)
		case domain.CategoryPreciousMetal:
			req.MetalIDs = append(req.MetalIDs, strings.TrimPrefix(h.ProviderID, "metal_"))
		}
	}
	return req
}

// FetchAll fetches all five categories concurrently and returns a flat
// identifier -> unit price map in the base currency. Identifiers whose
// provider call failed or returned nothing are simply absent; callers
// treat a missing key as "price unknown, keep the previous value".
func (s *Service) FetchAll(ctx context.Context, req FetchRequest) map[string]decimal.Decimal {
	prices := make(map[string]decimal.Decimal)

	var mu sync.Mutex
	var wg sync.WaitGroup

	merge := func(part map[string]decimal.Decimal) {
		mu.Lock()
		defer mu.Unlock()
		for k, v := range part {
			prices[k] = v
		}
	}

	wg.Add(5)
	go func() {
		defer wg.Done()
		merge(s.cryptoPrices(ctx, req.CryptoIDs))
	}()
	go func() {
		defer wg.Done()
		merge(s.forexRates(ctx, req.ForexCurrencies))
	}()
	go func() {
		defer wg.Done()
		merge(s.stockPrices(ctx, req.StockSymbols))
	}()
	go func() {
		defer wg.Done()
		merge(s.metalPrices(ctx, req.MetalIDs))
	}()
	go func() {
		defer wg.Done()
		if !req.HasGold {
			return
		}
		if price, ok := s.goldGramPrice(ctx); ok {
			merge(map[string]decimal.Decimal{"gold_gram": price})
		}
	}()
	wg.Wait()

	return prices
}

// cryptoPrices returns base-currency prices keyed by coin id
func (s *Service) cryptoPrices(ctx context.Context, ids []string) map[string]decimal.Decimal {
	if len(ids) == 0 {
		return nil
	}

	results, misses := s.cache.split("crypto", ids)
	if len(misses) == 0 {
		return results
	}

	quotes, err := s.Crypto.SimplePrices(ctx, misses, strings.ToLower(s.base))
	if err != nil {
		s.logger.Warn("crypto price fetch failed", "error", err)
		return results
	}
	for id, q := range quotes {
		results[id] = q.Price
		s.cache.Put("crypto_"+id, q.Price)
	}
	return results
}

// forexRates returns the base-currency price of one unit of each
// requested currency
func (s *Service) forexRates(ctx context.Context, currencies []string) map[string]decimal.Decimal {
	if len(currencies) == 0 {
		return nil
	}

	results, misses := s.cache.split("forex", currencies)
	if len(misses) == 0 {
		return results
	}

	// The provider serves base->X rates; invert to price X in base.
	table, err := s.Fx.Rates(ctx, s.base)
	if err != nil {
		s.logger.Warn("forex rate fetch failed", "error", err)
		return results
	}
	for _, currency := range misses {
		rate, ok := table[currency]
		if !ok || rate.IsZero() {
			continue
		}
		price := decimal.NewFromInt(1).Div(rate)
		results[currency] = price
		s.cache.Put("forex_"+currency, price)
	}
	return results
}

// stockPrices returns base-currency prices keyed by the original stock
// provider identifier. Foreign listings are quoted in USD and converted
// with a freshly fetched USD->base rate; local listings pass through.
func (s *Service) stockPrices(ctx context.Context, symbols []string) map[string]decimal.Decimal {
	if len(symbols) == 0 {
		return nil
	}

	results, misses := s.cache.split("stock", symbols)
	if len(misses) == 0 {
		return results
	}

	usdRate := s.usdRate(ctx, misses)

	var mu sync.Mutex
	var wg sync.WaitGroup
	for _, symbol := range misses {
		wg.Add(1)
		go func() {
			defer wg.Done()

			quote, err := s.Quotes.LatestQuote(ctx, domain.ExchangeSymbol(symbol))
			if err != nil {
				s.logger.Warn("stock quote fetch failed", "symbol", symbol, "error", err)
				return
			}

			price := quote.Price
			if domain.IsForeignListing(symbol) && !usdRate.IsZero() {
				price = price.Mul(usdRate)
			}

			mu.Lock()
			results[symbol] = price
			mu.Unlock()
			s.cache.Put("stock_"+symbol, price)
		}()
	}
	wg.Wait()

	return results
}

// StockQuotes returns base-currency price plus day change for each
// requested symbol. Unlike FetchAll it keeps the 24h change, so it
// bypasses the price cache. Symbols whose fetch fails are absent.
func (s *Service) StockQuotes(ctx context.Context, symbols []string) map[string]domain.Quote {
	if len(symbols) == 0 {
		return nil
	}

	usdRate := s.usdRate(ctx, symbols)

	results := make(map[string]domain.Quote, len(symbols))
	var mu sync.Mutex
	var wg sync.WaitGroup
	for _, symbol := range symbols {
		wg.Add(1)
		go func() {
			defer wg.Done()

			quote, err := s.Quotes.LatestQuote(ctx, domain.ExchangeSymbol(symbol))
			if err != nil {
				s.logger.Warn("stock quote fetch failed", "symbol", symbol, "error", err)
				return
			}

			if domain.IsForeignListing(symbol) && !usdRate.IsZero() {
				quote.Price = quote.Price.Mul(usdRate)
			}

			mu.Lock()
			results[symbol] = quote
			mu.Unlock()
		}()
	}
	wg.Wait()

	return results
}

// usdRate fetches the USD->base rate when any of the symbols is a
// foreign listing, zero otherwise (or when the rate fetch fails, in
// which case foreign prices pass through unconverted).
func (s *Service) usdRate(ctx context.Context, symbols []string) decimal.Decimal {
	needed := false
	for _, symbol := range symbols {
		if domain.IsForeignListing(symbol) {
			needed = true
			break
		}
	}
	if !needed {
		return decimal.Decimal{}
	}

	quote, err := s.Quotes.LatestQuote(ctx, "USD"+s.base+"=X")
	if err != nil {
		s.logger.Warn("usd rate fetch failed", "error", err)
		return decimal.Decimal{}
	}
	return quote.Price
}

// metalPrices converts USD-per-troy-ounce futures quotes into
// base-currency-per-gram prices, keyed "metal_<id>"
func (s *Service) metalPrices(ctx context.Context, ids []string) map[string]decimal.Decimal {
	if len(ids) == 0 {
		return nil
	}

	cached, misses := s.cache.split("metal", ids)
	results := make(map[string]decimal.Decimal, len(cached))
	for id, price := range cached {
		results["metal_"+id] = price
	}
	if len(misses) == 0 {
		return results
	}

	table, err := s.Fx.Rates(ctx, "USD")
	if err != nil {
		s.logger.Warn("usd rate table fetch failed", "error", err)
		return results
	}
	usdToBase, ok := table[s.base]
	if !ok || usdToBase.IsZero() {
		return results
	}

	for _, id := range misses {
		symbol, known := metalSymbols[id]
		if !known {
			continue
		}
		quote, err := s.Quotes.LatestQuote(ctx, symbol)
		if err != nil {
			s.logger.Warn("metal quote fetch failed", "metal", id, "error", err)
			continue
		}
		gramPrice := quote.Price.Mul(usdToBase).Div(gramsPerTroyOunce)
		results["metal_"+id] = gramPrice
		s.cache.Put("metal_"+id, gramPrice)
	}
	return results
}

// goldGramPrice derives the base-currency gram gold price from the
// gold-backed reference instrument, falling back to the metals-rate
// provider when the reference is unavailable
func (s *Service) goldGramPrice(ctx context.Context) (decimal.Decimal, bool) {
	if price, ok := s.cache.Get("gold_gram"); ok {
		return price, true
	}

	quotes, err := s.Crypto.SimplePrices(ctx, []string{goldReferenceID}, strings.ToLower(s.base))
	if err == nil {
		if q, ok := quotes[goldReferenceID]; ok && !q.Price.IsZero() {
			gram := q.Price.Div(gramsPerTroyOunce)
			s.cache.Put("gold_gram", gram)
			return gram, true
		}
	} else {
		s.logger.Warn("gold reference fetch failed", "error", err)
	}

	ouncePrice, err := s.Metals.Rate(ctx, "XAU", s.base)
	if err != nil {
		s.logger.Warn("gold fallback fetch failed", "error", err)
		return decimal.Decimal{}, false
	}
	gram := ouncePrice.Div(gramsPerTroyOunce)
	s.cache.Put("gold_gram", gram)
	return gram, true
}
