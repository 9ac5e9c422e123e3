package postgres

import (
	"context"
	"encoding/json"
	"fmt"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/shopspring/decimal"

	"github.com/BthnIsler/finoria/internal/domain"
)

// snapshotRepository implements domain.SnapshotRepository
type snapshotRepository struct {
	db *DB
}

// NewSnapshotRepository creates a new snapshot repository
func NewSnapshotRepository(db *DB) domain.SnapshotRepository {
	return &snapshotRepository{db: db}
}

// Upsert inserts the snapshot or overwrites the existing entry for the
// same (user, date)
func (r *snapshotRepository) Upsert(ctx context.Context, userID uuid.UUID, snap *domain.WealthSnapshot) error {
	breakdown, err := marshalBreakdown(snap.Breakdown)
	if err != nil {
		return errors.Wrap(err, "marshal breakdown")
	}

	query, args, err := r.db.builder.
		Insert("wealth_snapshots").
		Columns("user_id", "date", "total", "breakdown").
		Values(userID, snap.Date, snap.Total.String(), breakdown).
		Suffix("ON CONFLICT (user_id, date) DO UPDATE SET total = EXCLUDED.total, breakdown = EXCLUDED.breakdown").
		ToSql()
	if err != nil {
		return fmt.Errorf("build upsert snapshot: %w", err)
	}

	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("exec upsert snapshot: %w", err)
	}
	return nil
}

// ListByUser retrieves a user's snapshots ordered by date ascending
func (r *snapshotRepository) ListByUser(ctx context.Context, userID uuid.UUID) ([]*domain.WealthSnapshot, error) {
	query, args, err := r.db.builder.
		Select("date", "total", "breakdown").
		From("wealth_snapshots").
		Where(sq.Eq{"user_id": userID}).
		OrderBy("date ASC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build list snapshots: %w", err)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("exec list snapshots: %w", err)
	}
	defer rows.Close()

	var snaps []*domain.WealthSnapshot
	for rows.Next() {
		var (
			snap      domain.WealthSnapshot
			total     string
			breakdown []byte
		)
		if err := rows.Scan(&snap.Date, &total, &breakdown); err != nil {
			return nil, fmt.Errorf("scan snapshot row: %w", err)
		}
		if snap.Total, err = decimal.NewFromString(total); err != nil {
			return nil, errors.Wrap(err, "parse total")
		}
		if snap.Breakdown, err = unmarshalBreakdown(breakdown); err != nil {
			return nil, errors.Wrap(err, "parse breakdown")
		}
		snaps = append(snaps, &snap)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate snapshot rows: %w", err)
	}
	return snaps, nil
}

// DeleteByUser removes all snapshots of one user
func (r *snapshotRepository) DeleteByUser(ctx context.Context, userID uuid.UUID) error {
	query, args, err := r.db.builder.
		Delete("wealth_snapshots").
		Where(sq.Eq{"user_id": userID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build delete snapshots: %w", err)
	}

	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("exec delete snapshots: %w", err)
	}
	return nil
}

// marshalBreakdown stores category totals as a JSON object of decimal
// strings so the database never rounds them
func marshalBreakdown(b map[domain.Category]decimal.Decimal) ([]byte, error) {
	plain := make(map[string]string, len(b))
	for category, value := range b {
		plain[string(category)] = value.String()
	}
	return json.Marshal(plain)
}

func unmarshalBreakdown(data []byte) (map[domain.Category]decimal.Decimal, error) {
	var plain map[string]string
	if err := json.Unmarshal(data, &plain); err != nil {
		return nil, err
	}
	breakdown := make(map[domain.Category]decimal.Decimal, len(plain))
	for category, value := range plain {
		v, err := decimal.NewFromString(value)
		if err != nil {
			return nil, err
		}
		breakdown[domain.Category(category)] = v
	}
	return breakdown, nil
}
