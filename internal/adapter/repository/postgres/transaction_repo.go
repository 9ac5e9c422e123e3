package postgres

import (
	"context"
	"fmt"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/shopspring/decimal"

	"github.com/BthnIsler/finoria/internal/domain"
)

// transactionRepository implements domain.TransactionRepository
type transactionRepository struct {
	db *DB
}

// NewTransactionRepository creates a new transaction repository
func NewTransactionRepository(db *DB) domain.TransactionRepository {
	return &transactionRepository{db: db}
}

// Create creates a new transaction entry
func (r *transactionRepository) Create(ctx context.Context, tx *domain.Transaction) error {
	query, args, err := r.db.builder.
		Insert("transactions").
		Columns(
			"id", "user_id", "holding_id", "holding_name", "category",
			"type", "quantity", "price_per_unit", "total_value", "date", "created_at",
		).
		Values(
			tx.ID,
			tx.UserID,
			tx.HoldingID,
			tx.HoldingName,
			string(tx.Category),
			string(tx.Type),
			tx.Quantity.String(),
			tx.PricePerUnit.String(),
			tx.TotalValue.String(),
			tx.Date,
			tx.CreatedAt,
		).
		ToSql()
	if err != nil {
		return fmt.Errorf("build insert transaction: %w", err)
	}

	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("exec insert transaction: %w", err)
	}
	return nil
}

// ListByUser retrieves a user's transactions, newest first
func (r *transactionRepository) ListByUser(ctx context.Context, userID uuid.UUID) ([]*domain.Transaction, error) {
	query, args, err := r.db.builder.
		Select(
			"id", "user_id", "holding_id", "holding_name", "category",
			"type", "quantity", "price_per_unit", "total_value", "date", "created_at",
		).
		From("transactions").
		Where(sq.Eq{"user_id": userID}).
		OrderBy("date DESC", "created_at DESC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build list transactions: %w", err)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("exec list transactions: %w", err)
	}
	defer rows.Close()

	var txs []*domain.Transaction
	for rows.Next() {
		var (
			tx       domain.Transaction
			category string
			txType   string
			quantity string
			price    string
			total    string
		)
		err := rows.Scan(
			&tx.ID,
			&tx.UserID,
			&tx.HoldingID,
			&tx.HoldingName,
			&category,
			&txType,
			&quantity,
			&price,
			&total,
			&tx.Date,
			&tx.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("scan transaction row: %w", err)
		}

		tx.Category = domain.Category(category)
		tx.Type = domain.TransactionType(txType)

		if tx.Quantity, err = decimal.NewFromString(quantity); err != nil {
			return nil, errors.Wrap(err, "parse quantity")
		}
		if tx.PricePerUnit, err = decimal.NewFromString(price); err != nil {
			return nil, errors.Wrap(err, "parse price_per_unit")
		}
		if tx.TotalValue, err = decimal.NewFromString(total); err != nil {
			return nil, errors.Wrap(err, "parse total_value")
		}
		txs = append(txs, &tx)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate transaction rows: %w", err)
	}
	return txs, nil
}
