package holdings

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/BthnIsler/finoria/internal/domain"
)

// Service handles holding lifecycle operations: CRUD, applying fetched
// prices after a refresh cycle, and selling
type Service struct {
	Holdings     domain.HoldingRepository
	Transactions domain.TransactionRepository

	logger *slog.Logger
}

// NewService creates a new holdings service
func NewService(holdingRepo domain.HoldingRepository, txRepo domain.TransactionRepository, logger *slog.Logger) *Service {
	return &Service{Holdings: holdingRepo, Transactions: txRepo, logger: logger}
}

// CreateInput carries the user-supplied fields of a new holding
type CreateInput struct {
	UserID           uuid.UUID
	Name             string
	Category         domain.Category
	ProviderID       string
	Quantity         decimal.Decimal
	PurchasePrice    decimal.Decimal
	PurchaseCurrency string
	ManualPrice      domain.UnitPrice
}

// Create validates and persists a new holding
func (s *Service) Create(ctx context.Context, input CreateInput) (*domain.Holding, error) {
	now := time.Now().UTC()
	h := &domain.Holding{
		ID:               uuid.New(),
		UserID:           input.UserID,
		Name:             input.Name,
		Category:         input.Category,
		ProviderID:       input.ProviderID,
		Quantity:         input.Quantity,
		PurchasePrice:    input.PurchasePrice,
		PurchaseCurrency: input.PurchaseCurrency,
		ManualPrice:      input.ManualPrice,
		CreatedAt:        now,
		UpdatedAt:        now,
	}
	if err := h.Validate(); err != nil {
		return nil, err
	}
	if err := s.Holdings.Create(ctx, h); err != nil {
		return nil, fmt.Errorf("failed to create holding: %w", err)
	}
	return h, nil
}

// List returns all holdings of one user
func (s *Service) List(ctx context.Context, userID uuid.UUID) ([]*domain.Holding, error) {
	return s.Holdings.ListByUser(ctx, userID)
}

// UpdateInput carries the editable fields of a holding; nil fields are
// left unchanged
type UpdateInput struct {
	Name          *string
	Quantity      *decimal.Decimal
	PurchasePrice *decimal.Decimal
	ManualPrice   *domain.UnitPrice
}

// Update applies the given changes to an existing holding
func (s *Service) Update(ctx context.Context, id uuid.UUID, input UpdateInput) (*domain.Holding, error) {
	h, err := s.Holdings.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if input.Name != nil {
		h.Name = *input.Name
	}
	if input.Quantity != nil {
		h.Quantity = *input.Quantity
	}
	if input.PurchasePrice != nil {
		h.PurchasePrice = *input.PurchasePrice
	}
	if input.ManualPrice != nil {
		h.ManualPrice = *input.ManualPrice
	}
	h.UpdatedAt = time.Now().UTC()

	if err := h.Validate(); err != nil {
		return nil, err
	}
	if err := s.Holdings.Update(ctx, h); err != nil {
		return nil, fmt.Errorf("failed to update holding: %w", err)
	}
	return h, nil
}

// Delete removes a holding
func (s *Service) Delete(ctx context.Context, id uuid.UUID) error {
	return s.Holdings.Delete(ctx, id)
}

// ApplyPrices sets the live unit price of every holding whose provider
// identifier has an entry in the fetched price map, then persists the
// changes in one pass. Holdings with no entry keep their previous
// value, so a partial fetch never half-prices the portfolio mid-cycle.
// The updated holdings are returned.
func (s *Service) ApplyPrices(ctx context.Context, userID uuid.UUID, prices map[string]decimal.Decimal) ([]*domain.Holding, error) {
	list, err := s.Holdings.ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	changed := make(map[uuid.UUID]decimal.Decimal)
	for _, h := range list {
		if h.ProviderID == "" {
			continue
		}
		price, ok := prices[h.ProviderID]
		if !ok {
			continue
		}
		h.LivePrice = domain.PriceOf(price)
		changed[h.ID] = price
	}

	if len(changed) > 0 {
		if err := s.Holdings.UpdateLivePrices(ctx, userID, changed); err != nil {
			// The in-memory prices are already applied; losing the
			// persisted copy only costs the next process start one
			// fetch cycle.
			s.logger.Warn("live price persist failed", "user", userID, "error", err)
		}
	}
	return list, nil
}

// SellResult reports the outcome of a sell: the logged transaction and
// the holding as it remains, nil when the position was closed
type SellResult struct {
	Transaction *domain.Transaction
	Holding     *domain.Holding
}

// Sell records a sell transaction and decrements the holding's
// quantity. The sell quantity is clamped to the held quantity; when
// the remainder drops to dust (<= 0.0001 units) the holding is deleted.
func (s *Service) Sell(ctx context.Context, holdingID uuid.UUID, quantity, pricePerUnit decimal.Decimal) (*SellResult, error) {
	h, err := s.Holdings.GetByID(ctx, holdingID)
	if err != nil {
		return nil, err
	}

	sellQty := quantity
	if sellQty.GreaterThan(h.Quantity) {
		sellQty = h.Quantity
	}
	if sellQty.LessThanOrEqual(decimal.Zero) {
		return nil, fmt.Errorf("sell quantity must be positive: %w", domain.ErrValidation)
	}

	now := time.Now().UTC()
	tx := &domain.Transaction{
		ID:           uuid.New(),
		UserID:       h.UserID,
		HoldingID:    h.ID,
		HoldingName:  h.Name,
		Category:     h.Category,
		Type:         domain.TransactionTypeSell,
		Quantity:     sellQty,
		PricePerUnit: pricePerUnit,
		TotalValue:   sellQty.Mul(pricePerUnit),
		Date:         now,
		CreatedAt:    now,
	}
	if err := tx.Validate(); err != nil {
		return nil, err
	}
	if err := s.Transactions.Create(ctx, tx); err != nil {
		return nil, fmt.Errorf("failed to log sell transaction: %w", err)
	}

	h.Quantity = h.Quantity.Sub(sellQty)
	h.UpdatedAt = now

	if h.Quantity.LessThanOrEqual(domain.DustThreshold) {
		if err := s.Holdings.Delete(ctx, h.ID); err != nil {
			return nil, fmt.Errorf("failed to remove sold-out holding: %w", err)
		}
		return &SellResult{Transaction: tx}, nil
	}

	if err := s.Holdings.Update(ctx, h); err != nil {
		return nil, fmt.Errorf("failed to update holding after sell: %w", err)
	}
	return &SellResult{Transaction: tx, Holding: h}, nil
}

// Get retrieves a single holding
func (s *Service) Get(ctx context.Context, id uuid.UUID) (*domain.Holding, error) {
	return s.Holdings.GetByID(ctx, id)
}

// ListTransactions returns a user's sell log, newest first
func (s *Service) ListTransactions(ctx context.Context, userID uuid.UUID) ([]*domain.Transaction, error) {
	return s.Transactions.ListByUser(ctx, userID)
}

// ProfitLoss returns the holding's absolute and percentage gain over
// its cost basis. The percentage is zero when the cost basis is zero.
func ProfitLoss(h *domain.Holding) (value, percent decimal.Decimal) {
	cost := h.CostBasis()
	value = h.CurrentValue().Sub(cost)
	if cost.IsPositive() {
		percent = value.Div(cost).Mul(decimal.NewFromInt(100))
	}
	return value, percent
}
