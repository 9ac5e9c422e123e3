package snapshot

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/BthnIsler/finoria/internal/domain"
)

// MockSnapshotRepository is a mock implementation of SnapshotRepository for testing
type MockSnapshotRepository struct {
	mock.Mock
}

func (m *MockSnapshotRepository) Upsert(ctx context.Context, userID uuid.UUID, snap *domain.WealthSnapshot) error {
	args := m.Called(ctx, userID, snap)
	return args.Error(0)
}

func (m *MockSnapshotRepository) ListByUser(ctx context.Context, userID uuid.UUID) ([]*domain.WealthSnapshot, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.WealthSnapshot), args.Error(1)
}

func (m *MockSnapshotRepository) DeleteByUser(ctx context.Context, userID uuid.UUID) error {
	args := m.Called(ctx, userID)
	return args.Error(0)
}

type storeFixture struct {
	repo  *MockSnapshotRepository
	store *Store
	now   time.Time
}

func newStoreFixture() *storeFixture {
	f := &storeFixture{
		repo: new(MockSnapshotRepository),
		now:  time.Date(2024, 6, 1, 10, 30, 0, 0, time.UTC),
	}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	f.store = NewStore(f.repo, logger)
	f.store.clock = func() time.Time { return f.now }
	return f
}

func (f *storeFixture) advance(d time.Duration) { f.now = f.now.Add(d) }

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func holding(id uuid.UUID, category domain.Category, quantity, price string) *domain.Holding {
	return &domain.Holding{
		ID:            id,
		Category:      category,
		Quantity:      dec(quantity),
		PurchasePrice: dec(price),
	}
}

func TestRecord_ComputesTotalAndBreakdown(t *testing.T) {
	f := newStoreFixture()
	ctx := context.Background()
	userID := uuid.New()

	f.repo.On("Upsert", ctx, userID, mock.Anything).Return(nil)

	snap := f.store.Record(ctx, userID, []*domain.Holding{
		holding(uuid.New(), domain.CategoryCrypto, "2", "100"),
		holding(uuid.New(), domain.CategoryCrypto, "1", "50"),
		holding(uuid.New(), domain.CategoryGold, "10", "30"),
	})

	assert.Equal(t, "2024-06-01", snap.Date)
	assert.True(t, snap.Total.Equal(dec("550")))
	assert.True(t, snap.Breakdown[domain.CategoryCrypto].Equal(dec("250")))
	assert.True(t, snap.Breakdown[domain.CategoryGold].Equal(dec("300")))
	f.repo.AssertExpectations(t)
}

func TestRecord_SameDayReplacesDailyEntry(t *testing.T) {
	f := newStoreFixture()
	ctx := context.Background()
	userID := uuid.New()
	id := uuid.New()

	f.repo.On("Upsert", ctx, userID, mock.Anything).Return(nil)

	f.store.Record(ctx, userID, []*domain.Holding{holding(id, domain.CategoryCrypto, "1", "100")})
	f.advance(2 * time.Hour)
	f.store.Record(ctx, userID, []*domain.Holding{holding(id, domain.CategoryCrypto, "1", "120")})

	daily := f.store.Daily()
	require.Len(t, daily, 1, "same calendar day upserts")
	assert.True(t, daily[0].Total.Equal(dec("120")))
}

func TestRecord_NewDayAppendsDailyEntry(t *testing.T) {
	f := newStoreFixture()
	ctx := context.Background()
	userID := uuid.New()
	id := uuid.New()

	f.repo.On("Upsert", ctx, userID, mock.Anything).Return(nil)

	f.store.Record(ctx, userID, []*domain.Holding{holding(id, domain.CategoryCrypto, "1", "100")})
	f.advance(24 * time.Hour)
	f.store.Record(ctx, userID, []*domain.Holding{holding(id, domain.CategoryCrypto, "1", "120")})

	daily := f.store.Daily()
	require.Len(t, daily, 2)
	assert.Equal(t, "2024-06-01", daily[0].Date)
	assert.Equal(t, "2024-06-02", daily[1].Date)
}

func TestRecord_HourlyOHLCMerge(t *testing.T) {
	f := newStoreFixture()
	ctx := context.Background()
	userID := uuid.New()
	id := uuid.New()

	f.repo.On("Upsert", ctx, userID, mock.Anything).Return(nil)

	// three refreshes inside the same hour: down then up
	f.store.Record(ctx, userID, []*domain.Holding{holding(id, domain.CategoryCrypto, "1", "100")})
	f.advance(10 * time.Minute)
	f.store.Record(ctx, userID, []*domain.Holding{holding(id, domain.CategoryCrypto, "1", "80")})
	f.advance(10 * time.Minute)
	f.store.Record(ctx, userID, []*domain.Holding{holding(id, domain.CategoryCrypto, "1", "130")})

	hourly := f.store.Hourly()
	require.Len(t, hourly, 1)
	assert.True(t, hourly[0].Open.Equal(dec("100")))
	assert.True(t, hourly[0].High.Equal(dec("130")))
	assert.True(t, hourly[0].Low.Equal(dec("80")))
	assert.True(t, hourly[0].Close.Equal(dec("130")))
	assert.True(t, hourly[0].Total.Equal(dec("130")))
}

func TestRecord_NewHourOpensNewOHLCEntry(t *testing.T) {
	f := newStoreFixture()
	ctx := context.Background()
	userID := uuid.New()
	id := uuid.New()

	f.repo.On("Upsert", ctx, userID, mock.Anything).Return(nil)

	f.store.Record(ctx, userID, []*domain.Holding{holding(id, domain.CategoryCrypto, "1", "100")})
	f.advance(time.Hour)
	f.store.Record(ctx, userID, []*domain.Holding{holding(id, domain.CategoryCrypto, "1", "90")})

	hourly := f.store.Hourly()
	require.Len(t, hourly, 2)
	assert.True(t, hourly[1].Open.Equal(dec("90")))
}

func TestRecord_PersistFailureDoesNotFailTheCycle(t *testing.T) {
	f := newStoreFixture()
	ctx := context.Background()
	userID := uuid.New()

	f.repo.On("Upsert", ctx, userID, mock.Anything).Return(errors.New("db down"))

	snap := f.store.Record(ctx, userID, []*domain.Holding{
		holding(uuid.New(), domain.CategoryCrypto, "1", "100"),
	})

	assert.True(t, snap.Total.Equal(dec("100")))
	assert.Len(t, f.store.Daily(), 1, "in-memory series still updated")
}

func TestDailyRetention_FIFOTrimAtCap(t *testing.T) {
	f := newStoreFixture()
	ctx := context.Background()
	userID := uuid.New()
	id := uuid.New()

	f.repo.On("Upsert", ctx, userID, mock.Anything).Return(nil)

	for i := 0; i < DailyRetention+5; i++ {
		f.store.Record(ctx, userID, []*domain.Holding{holding(id, domain.CategoryCrypto, "1", "100")})
		f.advance(24 * time.Hour)
	}

	daily := f.store.Daily()
	require.Len(t, daily, DailyRetention)
	assert.Equal(t, "2024-06-06", daily[0].Date, "the five oldest days were evicted")
}

func TestHourlyRetention_FIFOTrimAtCap(t *testing.T) {
	f := newStoreFixture()
	ctx := context.Background()
	userID := uuid.New()
	id := uuid.New()

	f.repo.On("Upsert", ctx, userID, mock.Anything).Return(nil)

	for i := 0; i < HourlyRetention+3; i++ {
		f.store.Record(ctx, userID, []*domain.Holding{holding(id, domain.CategoryCrypto, "1", "100")})
		f.advance(time.Hour)
	}

	assert.Len(t, f.store.Hourly(), HourlyRetention)
	assert.Len(t, f.store.AssetSeries(id), HourlyRetention)
}

func TestPriceAtOrBefore(t *testing.T) {
	f := newStoreFixture()
	ctx := context.Background()
	userID := uuid.New()
	id := uuid.New()

	f.repo.On("Upsert", ctx, userID, mock.Anything).Return(nil)

	start := f.now
	f.store.Record(ctx, userID, []*domain.Holding{holding(id, domain.CategoryCrypto, "1", "100")})
	f.advance(time.Hour)
	f.store.Record(ctx, userID, []*domain.Holding{holding(id, domain.CategoryCrypto, "1", "110")})

	// exactly at the first point
	price := f.store.PriceAtOrBefore(id, start)
	v, ok := price.Value()
	require.True(t, ok)
	assert.True(t, v.Equal(dec("100")))

	// between the two points: the earlier one wins
	v, ok = f.store.PriceAtOrBefore(id, start.Add(30*time.Minute)).Value()
	require.True(t, ok)
	assert.True(t, v.Equal(dec("100")))

	// after both: the latest wins
	v, ok = f.store.PriceAtOrBefore(id, start.Add(2*time.Hour)).Value()
	require.True(t, ok)
	assert.True(t, v.Equal(dec("110")))

	// before everything: unpriced
	_, ok = f.store.PriceAtOrBefore(id, start.Add(-time.Minute)).Value()
	assert.False(t, ok)

	// unknown holding: unpriced
	_, ok = f.store.PriceAtOrBefore(uuid.New(), start).Value()
	assert.False(t, ok)
}

func TestTotalAtOrBefore(t *testing.T) {
	f := newStoreFixture()
	ctx := context.Background()
	userID := uuid.New()
	id := uuid.New()

	f.repo.On("Upsert", ctx, userID, mock.Anything).Return(nil)

	f.store.Record(ctx, userID, []*domain.Holding{holding(id, domain.CategoryCrypto, "1", "100")})
	f.advance(48 * time.Hour)
	f.store.Record(ctx, userID, []*domain.Holding{holding(id, domain.CategoryCrypto, "1", "130")})

	total, ok := f.store.TotalAtOrBefore("2024-06-02")
	require.True(t, ok)
	assert.True(t, total.Equal(dec("100")), "gap dates answer with the last known total")

	_, ok = f.store.TotalAtOrBefore("2024-05-31")
	assert.False(t, ok)
}

func TestDailyFor_ReadsDurableHistory(t *testing.T) {
	f := newStoreFixture()
	ctx := context.Background()
	userID := uuid.New()

	persisted := []*domain.WealthSnapshot{
		{Date: "2024-05-30", Total: dec("100")},
		{Date: "2024-05-31", Total: dec("120")},
	}
	f.repo.On("ListByUser", ctx, userID).Return(persisted, nil)

	daily := f.store.DailyFor(ctx, userID)

	require.Len(t, daily, 2, "a fresh process serves the persisted history")
	assert.Equal(t, "2024-05-30", daily[0].Date)
	assert.True(t, daily[1].Total.Equal(dec("120")))
	f.repo.AssertExpectations(t)
}

func TestDailyFor_ScopesToRequestingUser(t *testing.T) {
	f := newStoreFixture()
	ctx := context.Background()
	recorder := uuid.New()
	other := uuid.New()
	id := uuid.New()

	f.repo.On("Upsert", ctx, recorder, mock.Anything).Return(nil)
	f.repo.On("ListByUser", ctx, other).Return([]*domain.WealthSnapshot{}, nil)

	f.store.Record(ctx, recorder, []*domain.Holding{holding(id, domain.CategoryCrypto, "1", "100")})

	daily := f.store.DailyFor(ctx, other)

	assert.Empty(t, daily, "another user's recordings stay invisible")
	f.repo.AssertExpectations(t)
}

func TestDailyFor_TrimsToRetention(t *testing.T) {
	f := newStoreFixture()
	ctx := context.Background()
	userID := uuid.New()

	persisted := make([]*domain.WealthSnapshot, DailyRetention+5)
	start := time.Date(2023, 6, 1, 0, 0, 0, 0, time.UTC)
	for i := range persisted {
		persisted[i] = &domain.WealthSnapshot{
			Date:  start.AddDate(0, 0, i).Format("2006-01-02"),
			Total: dec("100"),
		}
	}
	f.repo.On("ListByUser", ctx, userID).Return(persisted, nil)

	daily := f.store.DailyFor(ctx, userID)

	require.Len(t, daily, DailyRetention)
	assert.Equal(t, "2023-06-06", daily[0].Date, "oldest surplus entries are dropped")
}

func TestDailyFor_RepositoryFailureFallsBackToMemory(t *testing.T) {
	f := newStoreFixture()
	ctx := context.Background()
	userID := uuid.New()
	id := uuid.New()

	f.repo.On("Upsert", ctx, userID, mock.Anything).Return(nil)
	f.repo.On("ListByUser", ctx, userID).Return(nil, errors.New("connection refused"))

	f.store.Record(ctx, userID, []*domain.Holding{holding(id, domain.CategoryCrypto, "1", "100")})

	daily := f.store.DailyFor(ctx, userID)

	require.Len(t, daily, 1)
	assert.True(t, daily[0].Total.Equal(dec("100")))
}

func TestReset_ClearsAllSeriesAndDurableHistory(t *testing.T) {
	f := newStoreFixture()
	ctx := context.Background()
	userID := uuid.New()
	id := uuid.New()

	f.repo.On("Upsert", ctx, userID, mock.Anything).Return(nil)
	f.repo.On("DeleteByUser", ctx, userID).Return(nil)

	f.store.Record(ctx, userID, []*domain.Holding{holding(id, domain.CategoryCrypto, "1", "100")})

	err := f.store.Reset(ctx, userID)

	require.NoError(t, err)
	assert.Empty(t, f.store.Daily())
	assert.Empty(t, f.store.Hourly())
	assert.Empty(t, f.store.AssetSeries(id))
	f.repo.AssertExpectations(t)
}
