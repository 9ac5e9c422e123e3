package snapshot

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/BthnIsler/finoria/internal/domain"
)

const (
	// DailyRetention keeps about one year of daily snapshots
	DailyRetention = 365
	// HourlyRetention keeps about 30 days of hourly entries, for both
	// the wealth OHLC series and each holding's price series
	HourlyRetention = 720
)

// Store maintains three parallel upsert time series of portfolio state:
// daily totals (bucketed by calendar day), hourly OHLC (bucketed by
// calendar hour) and per-holding price points (hourly). Every refresh
// cycle appends to all three; retention is FIFO trimming at the caps.
//
// Daily aggregates are additionally upserted into the durable store,
// which serves the daily chart across restarts; the in-memory series
// answer the hourly and per-holding charts and the period-based
// profit/loss queries.
type Store struct {
	mu     sync.Mutex
	clock  func() time.Time
	daily  *ring[domain.WealthSnapshot]
	hourly *ring[domain.HourlySnapshot]
	assets map[uuid.UUID]*ring[domain.AssetPricePoint]

	snapshots domain.SnapshotRepository
	logger    *slog.Logger
}

// NewStore creates an empty snapshot store backed by the given
// repository for daily persistence
func NewStore(snapshots domain.SnapshotRepository, logger *slog.Logger) *Store {
	return &Store{
		clock:     time.Now,
		daily:     newRing[domain.WealthSnapshot](DailyRetention),
		hourly:    newRing[domain.HourlySnapshot](HourlyRetention),
		assets:    make(map[uuid.UUID]*ring[domain.AssetPricePoint]),
		snapshots: snapshots,
		logger:    logger,
	}
}

// Record computes the current total and category breakdown from the
// holdings' effective prices and upserts all three series. Calling it
// again within the same day/hour replaces the bucket's entry instead of
// appending. The daily aggregate is also upserted into the durable
// store; a persistence failure is logged, not propagated, so a refresh
// cycle never fails on it.
func (s *Store) Record(ctx context.Context, userID uuid.UUID, holdings []*domain.Holding) domain.WealthSnapshot {
	now := s.clock().UTC()

	total := decimal.Zero
	breakdown := make(map[domain.Category]decimal.Decimal)
	for _, h := range holdings {
		value := h.CurrentValue()
		total = total.Add(value)
		breakdown[h.Category] = breakdown[h.Category].Add(value)
	}

	snap := domain.WealthSnapshot{
		Date:      now.Format("2006-01-02"),
		Total:     total,
		Breakdown: breakdown,
	}

	s.mu.Lock()
	s.upsertDaily(snap)
	s.upsertHourly(now, total)
	for _, h := range holdings {
		s.upsertAssetPoint(now, h)
	}
	s.mu.Unlock()

	if err := s.snapshots.Upsert(ctx, userID, &snap); err != nil {
		s.logger.Warn("daily snapshot persist failed", "user", userID, "error", err)
	}

	return snap
}

// upsertDaily replaces today's entry if present, appends otherwise
func (s *Store) upsertDaily(snap domain.WealthSnapshot) {
	for i := s.daily.len() - 1; i >= 0; i-- {
		if s.daily.at(i).Date == snap.Date {
			s.daily.set(i, snap)
			return
		}
	}
	s.daily.push(snap)
}

// upsertHourly merges the total into the current hour's OHLC entry
func (s *Store) upsertHourly(now time.Time, total decimal.Decimal) {
	hour := now.Truncate(time.Hour)
	for i := s.hourly.len() - 1; i >= 0; i-- {
		entry := s.hourly.at(i)
		if entry.Timestamp.Truncate(time.Hour).Equal(hour) {
			entry.Close = total
			entry.Total = total
			if total.GreaterThan(entry.High) {
				entry.High = total
			}
			if total.LessThan(entry.Low) {
				entry.Low = total
			}
			s.hourly.set(i, entry)
			return
		}
	}
	s.hourly.push(domain.HourlySnapshot{
		Timestamp: now,
		Total:     total,
		Open:      total,
		High:      total,
		Low:       total,
		Close:     total,
	})
}

// upsertAssetPoint records one holding's effective price for the
// current hour
func (s *Store) upsertAssetPoint(now time.Time, h *domain.Holding) {
	series, ok := s.assets[h.ID]
	if !ok {
		series = newRing[domain.AssetPricePoint](HourlyRetention)
		s.assets[h.ID] = series
	}

	point := domain.AssetPricePoint{
		Timestamp: now,
		Price:     h.EffectivePrice(),
		Value:     h.CurrentValue(),
	}

	hour := now.Truncate(time.Hour)
	for i := series.len() - 1; i >= 0; i-- {
		if series.at(i).Timestamp.Truncate(time.Hour).Equal(hour) {
			series.set(i, point)
			return
		}
	}
	series.push(point)
}

// Daily returns the retained in-memory daily snapshots, oldest first
func (s *Store) Daily() []domain.WealthSnapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.daily.values()
}

// DailyFor returns one user's daily history, oldest first. Record
// upserts every daily aggregate into the durable store as it happens,
// so the repository is the authoritative series and answers across
// process restarts; if it cannot be read, the in-memory ring answers
// instead. Retention applies here too: only the newest DailyRetention
// entries are returned.
func (s *Store) DailyFor(ctx context.Context, userID uuid.UUID) []domain.WealthSnapshot {
	snaps, err := s.snapshots.ListByUser(ctx, userID)
	if err != nil {
		s.logger.Warn("daily history read failed, serving in-memory series", "user", userID, "error", err)
		return s.Daily()
	}

	if len(snaps) > DailyRetention {
		snaps = snaps[len(snaps)-DailyRetention:]
	}
	out := make([]domain.WealthSnapshot, 0, len(snaps))
	for _, snap := range snaps {
		out = append(out, *snap)
	}
	return out
}

// Hourly returns the retained hourly OHLC entries, oldest first
func (s *Store) Hourly() []domain.HourlySnapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.hourly.values()
}

// AssetSeries returns one holding's retained price points, oldest first
func (s *Store) AssetSeries(holdingID uuid.UUID) []domain.AssetPricePoint {
	s.mu.Lock()
	defer s.mu.Unlock()
	series, ok := s.assets[holdingID]
	if !ok {
		return []domain.AssetPricePoint{}
	}
	return series.values()
}

// PriceAtOrBefore returns the holding's price from the latest recorded
// point whose timestamp is at or before target, or the unpriced
// sentinel when the series is empty or entirely after target. It is a
// last-known-value query, not interpolation.
func (s *Store) PriceAtOrBefore(holdingID uuid.UUID, target time.Time) domain.UnitPrice {
	s.mu.Lock()
	defer s.mu.Unlock()

	series, ok := s.assets[holdingID]
	if !ok {
		return domain.Unpriced()
	}
	for i := series.len() - 1; i >= 0; i-- {
		point := series.at(i)
		if !point.Timestamp.After(target) {
			return domain.PriceOf(point.Price)
		}
	}
	return domain.Unpriced()
}

// TotalAtOrBefore answers the same last-known-value query against the
// daily wealth series, for period-based profit/loss on the whole
// portfolio
func (s *Store) TotalAtOrBefore(date string) (decimal.Decimal, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := s.daily.len() - 1; i >= 0; i-- {
		snap := s.daily.at(i)
		if snap.Date <= date {
			return snap.Total, true
		}
	}
	return decimal.Decimal{}, false
}

// Reset clears all three series at once and deletes the user's
// persisted daily history
func (s *Store) Reset(ctx context.Context, userID uuid.UUID) error {
	s.mu.Lock()
	s.daily.clear()
	s.hourly.clear()
	s.assets = make(map[uuid.UUID]*ring[domain.AssetPricePoint])
	s.mu.Unlock()

	return s.snapshots.DeleteByUser(ctx, userID)
}
