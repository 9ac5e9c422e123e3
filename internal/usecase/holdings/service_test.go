package holdings

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/BthnIsler/finoria/internal/domain"
)

// MockHoldingRepository is a mock implementation of HoldingRepository for testing
type MockHoldingRepository struct {
	mock.Mock
}

func (m *MockHoldingRepository) Create(ctx context.Context, h *domain.Holding) error {
	args := m.Called(ctx, h)
	return args.Error(0)
}

func (m *MockHoldingRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Holding, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Holding), args.Error(1)
}

func (m *MockHoldingRepository) ListByUser(ctx context.Context, userID uuid.UUID) ([]*domain.Holding, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.Holding), args.Error(1)
}

func (m *MockHoldingRepository) Update(ctx context.Context, h *domain.Holding) error {
	args := m.Called(ctx, h)
	return args.Error(0)
}

func (m *MockHoldingRepository) Delete(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockHoldingRepository) UpdateLivePrices(ctx context.Context, userID uuid.UUID, prices map[uuid.UUID]decimal.Decimal) error {
	args := m.Called(ctx, userID, prices)
	return args.Error(0)
}

// MockTransactionRepository is a mock implementation of TransactionRepository for testing
type MockTransactionRepository struct {
	mock.Mock
}

func (m *MockTransactionRepository) Create(ctx context.Context, tx *domain.Transaction) error {
	args := m.Called(ctx, tx)
	return args.Error(0)
}

func (m *MockTransactionRepository) ListByUser(ctx context.Context, userID uuid.UUID) ([]*domain.Transaction, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.Transaction), args.Error(1)
}

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func newTestService() (*Service, *MockHoldingRepository, *MockTransactionRepository) {
	holdingRepo := new(MockHoldingRepository)
	txRepo := new(MockTransactionRepository)
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return NewService(holdingRepo, txRepo, logger), holdingRepo, txRepo
}

func TestCreate_PersistsValidHolding(t *testing.T) {
	svc, holdingRepo, _ := newTestService()
	ctx := context.Background()
	userID := uuid.New()

	holdingRepo.On("Create", ctx, mock.Anything).Return(nil)

	h, err := svc.Create(ctx, CreateInput{
		UserID:           userID,
		Name:             "Bitcoin",
		Category:         domain.CategoryCrypto,
		ProviderID:       "bitcoin",
		Quantity:         dec("0.5"),
		PurchasePrice:    dec("2000000"),
		PurchaseCurrency: "TRY",
	})

	require.NoError(t, err)
	assert.NotEqual(t, uuid.Nil, h.ID)
	assert.Equal(t, userID, h.UserID)
	holdingRepo.AssertExpectations(t)
}

func TestCreate_RejectsInvalidHolding(t *testing.T) {
	svc, holdingRepo, _ := newTestService()

	_, err := svc.Create(context.Background(), CreateInput{
		Name:     "Bad",
		Category: domain.CategoryCrypto,
		Quantity: dec("0"), // must be positive
	})

	require.Error(t, err)
	holdingRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestUpdate_AppliesOnlyProvidedFields(t *testing.T) {
	svc, holdingRepo, _ := newTestService()
	ctx := context.Background()
	id := uuid.New()

	existing := &domain.Holding{
		ID:            id,
		Name:          "Gold stash",
		Category:      domain.CategoryGold,
		Quantity:      dec("10"),
		PurchasePrice: dec("2400"),
	}
	holdingRepo.On("GetByID", ctx, id).Return(existing, nil)
	holdingRepo.On("Update", ctx, mock.Anything).Return(nil)

	quantity := dec("12")
	h, err := svc.Update(ctx, id, UpdateInput{Quantity: &quantity})

	require.NoError(t, err)
	assert.True(t, h.Quantity.Equal(dec("12")))
	assert.Equal(t, "Gold stash", h.Name, "name untouched")
	holdingRepo.AssertExpectations(t)
}

func TestUpdate_NotFoundPropagates(t *testing.T) {
	svc, holdingRepo, _ := newTestService()
	ctx := context.Background()
	id := uuid.New()

	holdingRepo.On("GetByID", ctx, id).Return(nil, domain.ErrNotFound)

	_, err := svc.Update(ctx, id, UpdateInput{})

	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestApplyPrices_SetsLivePriceForMatchedProviders(t *testing.T) {
	svc, holdingRepo, _ := newTestService()
	ctx := context.Background()
	userID := uuid.New()

	btc := &domain.Holding{ID: uuid.New(), Category: domain.CategoryCrypto, ProviderID: "bitcoin",
		Quantity: dec("1"), PurchasePrice: dec("2000000")}
	gold := &domain.Holding{ID: uuid.New(), Category: domain.CategoryGold, ProviderID: "gold_gram",
		Quantity: dec("10"), PurchasePrice: dec("2400"), LivePrice: domain.PriceOf(dec("3900"))}
	flat := &domain.Holding{ID: uuid.New(), Category: domain.CategoryRealEstate,
		Quantity: dec("1"), PurchasePrice: dec("5000000")}

	holdingRepo.On("ListByUser", ctx, userID).Return([]*domain.Holding{btc, gold, flat}, nil)
	holdingRepo.On("UpdateLivePrices", ctx, userID, map[uuid.UUID]decimal.Decimal{
		btc.ID: dec("2500000"),
	}).Return(nil)

	// the fetch cycle only settled a bitcoin price this time
	list, err := svc.ApplyPrices(ctx, userID, map[string]decimal.Decimal{"bitcoin": dec("2500000")})

	require.NoError(t, err)
	require.Len(t, list, 3)
	assert.True(t, btc.EffectivePrice().Equal(dec("2500000")))
	assert.True(t, gold.EffectivePrice().Equal(dec("3900")), "missing key keeps the previous live price")
	assert.True(t, flat.EffectivePrice().Equal(dec("5000000")), "manual holdings fall back to purchase price")
	holdingRepo.AssertExpectations(t)
}

func TestApplyPrices_PersistFailureIsNotFatal(t *testing.T) {
	svc, holdingRepo, _ := newTestService()
	ctx := context.Background()
	userID := uuid.New()

	btc := &domain.Holding{ID: uuid.New(), Category: domain.CategoryCrypto, ProviderID: "bitcoin",
		Quantity: dec("1"), PurchasePrice: dec("2000000")}

	holdingRepo.On("ListByUser", ctx, userID).Return([]*domain.Holding{btc}, nil)
	holdingRepo.On("UpdateLivePrices", ctx, userID, mock.Anything).Return(errors.New("db down"))

	list, err := svc.ApplyPrices(ctx, userID, map[string]decimal.Decimal{"bitcoin": dec("2500000")})

	require.NoError(t, err)
	assert.True(t, list[0].EffectivePrice().Equal(dec("2500000")), "in-memory price still applied")
}

func TestSell_PartialSellDecrementsQuantity(t *testing.T) {
	svc, holdingRepo, txRepo := newTestService()
	ctx := context.Background()
	id := uuid.New()

	h := &domain.Holding{ID: id, UserID: uuid.New(), Name: "Bitcoin", Category: domain.CategoryCrypto,
		Quantity: dec("2"), PurchasePrice: dec("2000000")}

	holdingRepo.On("GetByID", ctx, id).Return(h, nil)
	txRepo.On("Create", ctx, mock.Anything).Return(nil)
	holdingRepo.On("Update", ctx, mock.Anything).Return(nil)

	result, err := svc.Sell(ctx, id, dec("0.5"), dec("2500000"))

	require.NoError(t, err)
	require.NotNil(t, result.Holding)
	assert.True(t, result.Holding.Quantity.Equal(dec("1.5")))
	assert.True(t, result.Transaction.Quantity.Equal(dec("0.5")))
	assert.True(t, result.Transaction.TotalValue.Equal(dec("1250000")))
	assert.Equal(t, domain.TransactionTypeSell, result.Transaction.Type)
	holdingRepo.AssertExpectations(t)
	txRepo.AssertExpectations(t)
}

func TestSell_FullSellDeletesHolding(t *testing.T) {
	svc, holdingRepo, txRepo := newTestService()
	ctx := context.Background()
	id := uuid.New()

	h := &domain.Holding{ID: id, UserID: uuid.New(), Name: "Bitcoin", Category: domain.CategoryCrypto,
		Quantity: dec("2"), PurchasePrice: dec("2000000")}

	holdingRepo.On("GetByID", ctx, id).Return(h, nil)
	txRepo.On("Create", ctx, mock.Anything).Return(nil)
	holdingRepo.On("Delete", ctx, id).Return(nil)

	result, err := svc.Sell(ctx, id, dec("2"), dec("2500000"))

	require.NoError(t, err)
	assert.Nil(t, result.Holding, "position closed")
	holdingRepo.AssertExpectations(t)
}

func TestSell_DustRemainderDeletesHolding(t *testing.T) {
	svc, holdingRepo, txRepo := newTestService()
	ctx := context.Background()
	id := uuid.New()

	h := &domain.Holding{ID: id, UserID: uuid.New(), Name: "Bitcoin", Category: domain.CategoryCrypto,
		Quantity: dec("1.00005"), PurchasePrice: dec("2000000")}

	holdingRepo.On("GetByID", ctx, id).Return(h, nil)
	txRepo.On("Create", ctx, mock.Anything).Return(nil)
	holdingRepo.On("Delete", ctx, id).Return(nil)

	result, err := svc.Sell(ctx, id, dec("1"), dec("2500000"))

	require.NoError(t, err)
	assert.Nil(t, result.Holding, "0.00005 units left is dust")
	holdingRepo.AssertExpectations(t)
}

func TestSell_QuantityClampedToHeldAmount(t *testing.T) {
	svc, holdingRepo, txRepo := newTestService()
	ctx := context.Background()
	id := uuid.New()

	h := &domain.Holding{ID: id, UserID: uuid.New(), Name: "Bitcoin", Category: domain.CategoryCrypto,
		Quantity: dec("1"), PurchasePrice: dec("2000000")}

	holdingRepo.On("GetByID", ctx, id).Return(h, nil)
	txRepo.On("Create", ctx, mock.Anything).Return(nil)
	holdingRepo.On("Delete", ctx, id).Return(nil)

	result, err := svc.Sell(ctx, id, dec("5"), dec("2500000"))

	require.NoError(t, err)
	assert.True(t, result.Transaction.Quantity.Equal(dec("1")), "sold at most what was held")
	assert.True(t, result.Transaction.TotalValue.Equal(dec("2500000")))
}

func TestSell_RejectsNonPositiveQuantity(t *testing.T) {
	svc, holdingRepo, txRepo := newTestService()
	ctx := context.Background()
	id := uuid.New()

	h := &domain.Holding{ID: id, UserID: uuid.New(), Name: "Bitcoin", Category: domain.CategoryCrypto,
		Quantity: dec("1"), PurchasePrice: dec("2000000")}

	holdingRepo.On("GetByID", ctx, id).Return(h, nil)

	_, err := svc.Sell(ctx, id, dec("0"), dec("2500000"))

	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrValidation)
	txRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestProfitLoss(t *testing.T) {
	h := &domain.Holding{
		Quantity:      dec("2"),
		PurchasePrice: dec("100"),
		LivePrice:     domain.PriceOf(dec("150")),
	}

	value, percent := ProfitLoss(h)

	assert.True(t, value.Equal(dec("100")), "300 current - 200 cost")
	assert.True(t, percent.Equal(dec("50")))
}

func TestProfitLoss_ZeroCostBasis(t *testing.T) {
	h := &domain.Holding{
		Quantity:      dec("2"),
		PurchasePrice: dec("0"),
		LivePrice:     domain.PriceOf(dec("150")),
	}

	value, percent := ProfitLoss(h)

	assert.True(t, value.Equal(dec("300")))
	assert.True(t, percent.IsZero(), "percent undefined without cost, reported as zero")
}
