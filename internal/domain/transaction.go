package domain

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// TransactionType represents the type of portfolio transaction
type TransactionType string

const (
	// TransactionTypeSell records a partial or full disposal of a holding
	TransactionTypeSell TransactionType = "SELL"
)

// Transaction is one entry of the sell log. The holding name and
// category are denormalized so the log stays readable after the holding
// itself has been deleted.
type Transaction struct {
	ID           uuid.UUID
	UserID       uuid.UUID
	HoldingID    uuid.UUID
	HoldingName  string
	Category     Category
	Type         TransactionType
	Quantity     decimal.Decimal
	PricePerUnit decimal.Decimal
	TotalValue   decimal.Decimal
	Date         time.Time
	CreatedAt    time.Time
}

// Validate ensures the transaction adheres to domain rules
// Returns an error if validation fails
func (t *Transaction) Validate() error {
	if t.Type != TransactionTypeSell {
		return fmt.Errorf("unknown transaction type: %w", ErrValidation)
	}
	if t.Quantity.LessThanOrEqual(decimal.Zero) {
		return fmt.Errorf("transaction quantity must be positive: %w", ErrValidation)
	}
	if t.PricePerUnit.IsNegative() {
		return fmt.Errorf("price per unit cannot be negative: %w", ErrValidation)
	}
	return nil
}
