package postgres

import (
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	sq "github.com/Masterminds/squirrel"
	_ "github.com/lib/pq" // PostgreSQL driver
)

// DB wraps the database connection together with the shared query builder
type DB struct {
	*sql.DB
	builder sq.StatementBuilderType
}

// NewDB creates a new database connection
// connectionString should be in the format: "host=localhost port=5432 user=postgres password=postgres dbname=finoria sslmode=disable"
func NewDB(connectionString string, logger *slog.Logger) (*DB, error) {
	db, err := sql.Open("postgres", connectionString)
	if err != nil {
		return nil, fmt.Errorf("failed to open database connection: %w", err)
	}

	// the database container may still be starting up
	for i := 0; i < 5; i++ {
		err = db.Ping()
		if err == nil {
			break
		}
		logger.Warn("database not ready yet, retrying in 2s", "attempt", i+1)
		time.Sleep(2 * time.Second)
	}
	if err != nil {
		return nil, fmt.Errorf("cannot connect to database after retries: %w", err)
	}

	return &DB{
		DB:      db,
		builder: sq.StatementBuilder.PlaceholderFormat(sq.Dollar),
	}, nil
}

// Close closes the database connection
func (db *DB) Close() error {
	return db.DB.Close()
}
