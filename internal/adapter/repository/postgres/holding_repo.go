package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/shopspring/decimal"

	"github.com/BthnIsler/finoria/internal/domain"
)

var holdingColumns = []string{
	"id", "user_id", "name", "category", "provider_id",
	"quantity", "purchase_price", "purchase_currency",
	"live_price", "manual_price", "created_at", "updated_at",
}

// holdingRepository implements domain.HoldingRepository
type holdingRepository struct {
	db *DB
}

// NewHoldingRepository creates a new holding repository
func NewHoldingRepository(db *DB) domain.HoldingRepository {
	return &holdingRepository{db: db}
}

// Create creates a new holding
func (r *holdingRepository) Create(ctx context.Context, h *domain.Holding) error {
	query, args, err := r.db.builder.
		Insert("holdings").
		Columns(holdingColumns...).
		Values(
			h.ID,
			h.UserID,
			h.Name,
			string(h.Category),
			h.ProviderID,
			h.Quantity.String(),
			h.PurchasePrice.String(),
			h.PurchaseCurrency,
			nullablePrice(h.LivePrice),
			nullablePrice(h.ManualPrice),
			h.CreatedAt,
			h.UpdatedAt,
		).
		ToSql()
	if err != nil {
		return fmt.Errorf("build insert holding: %w", err)
	}

	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("exec insert holding: %w", err)
	}
	return nil
}

// GetByID retrieves a holding by its ID
func (r *holdingRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Holding, error) {
	query, args, err := r.db.builder.
		Select(holdingColumns...).
		From("holdings").
		Where(sq.Eq{"id": id}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build select holding: %w", err)
	}

	h, err := scanHolding(r.db.QueryRowContext(ctx, query, args...))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("get holding by id: %w", err)
	}
	return h, nil
}

// ListByUser retrieves all holdings of one user, oldest first
func (r *holdingRepository) ListByUser(ctx context.Context, userID uuid.UUID) ([]*domain.Holding, error) {
	query, args, err := r.db.builder.
		Select(holdingColumns...).
		From("holdings").
		Where(sq.Eq{"user_id": userID}).
		OrderBy("created_at ASC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build list holdings: %w", err)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("exec list holdings: %w", err)
	}
	defer rows.Close()

	var holdings []*domain.Holding
	for rows.Next() {
		h, err := scanHolding(rows)
		if err != nil {
			return nil, fmt.Errorf("scan holding row: %w", err)
		}
		holdings = append(holdings, h)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate holding rows: %w", err)
	}
	return holdings, nil
}

// Update persists changes to an existing holding
func (r *holdingRepository) Update(ctx context.Context, h *domain.Holding) error {
	query, args, err := r.db.builder.
		Update("holdings").
		Set("name", h.Name).
		Set("category", string(h.Category)).
		Set("provider_id", h.ProviderID).
		Set("quantity", h.Quantity.String()).
		Set("purchase_price", h.PurchasePrice.String()).
		Set("purchase_currency", h.PurchaseCurrency).
		Set("live_price", nullablePrice(h.LivePrice)).
		Set("manual_price", nullablePrice(h.ManualPrice)).
		Set("updated_at", time.Now().UTC()).
		Where(sq.Eq{"id": h.ID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build update holding: %w", err)
	}

	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("exec update holding: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update holding rows affected: %w", err)
	}
	if affected == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// Delete removes a holding
func (r *holdingRepository) Delete(ctx context.Context, id uuid.UUID) error {
	query, args, err := r.db.builder.
		Delete("holdings").
		Where(sq.Eq{"id": id}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build delete holding: %w", err)
	}

	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("exec delete holding: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete holding rows affected: %w", err)
	}
	if affected == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// UpdateLivePrices sets the live unit price for the given holdings in
// one transaction so a partial refresh never hits readers
func (r *holdingRepository) UpdateLivePrices(ctx context.Context, userID uuid.UUID, prices map[uuid.UUID]decimal.Decimal) error {
	if len(prices) == 0 {
		return nil
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin live price update: %w", err)
	}
	defer tx.Rollback()

	now := time.Now().UTC()
	for id, price := range prices {
		query, args, err := r.db.builder.
			Update("holdings").
			Set("live_price", price.String()).
			Set("updated_at", now).
			Where(sq.Eq{"id": id, "user_id": userID}).
			ToSql()
		if err != nil {
			return fmt.Errorf("build live price update: %w", err)
		}
		if _, err := tx.ExecContext(ctx, query, args...); err != nil {
			return fmt.Errorf("exec live price update: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit live price update: %w", err)
	}
	return nil
}

// rowScanner covers both *sql.Row and *sql.Rows
type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanHolding(row rowScanner) (*domain.Holding, error) {
	var (
		h           domain.Holding
		category    string
		quantity    string
		purchase    string
		livePrice   sql.NullString
		manualPrice sql.NullString
	)

	err := row.Scan(
		&h.ID,
		&h.UserID,
		&h.Name,
		&category,
		&h.ProviderID,
		&quantity,
		&purchase,
		&h.PurchaseCurrency,
		&livePrice,
		&manualPrice,
		&h.CreatedAt,
		&h.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	h.Category = domain.Category(category)

	if h.Quantity, err = decimal.NewFromString(quantity); err != nil {
		return nil, errors.Wrap(err, "parse quantity")
	}
	if h.PurchasePrice, err = decimal.NewFromString(purchase); err != nil {
		return nil, errors.Wrap(err, "parse purchase_price")
	}
	if h.LivePrice, err = parseNullablePrice(livePrice); err != nil {
		return nil, errors.Wrap(err, "parse live_price")
	}
	if h.ManualPrice, err = parseNullablePrice(manualPrice); err != nil {
		return nil, errors.Wrap(err, "parse manual_price")
	}
	return &h, nil
}

func nullablePrice(p domain.UnitPrice) interface{} {
	if v, ok := p.Value(); ok {
		return v.String()
	}
	return nil
}

func parseNullablePrice(s sql.NullString) (domain.UnitPrice, error) {
	if !s.Valid {
		return domain.Unpriced(), nil
	}
	v, err := decimal.NewFromString(s.String)
	if err != nil {
		return domain.Unpriced(), err
	}
	return domain.PriceOf(v), nil
}
