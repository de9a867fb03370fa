package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/lib/pq"
)

// DialPostgres returns a Dialer for PostgreSQL using lib/pq. The ping is
// bounded by timeout.
func DialPostgres(timeout time.Duration) Dialer[*sql.DB] {
	return func(ctx context.Context, uri string) (*sql.DB, error) {
		db, err := sql.Open("postgres", uri)
		if err != nil {
			return nil, fmt.Errorf("open postgres: %w", err)
		}
		db.SetMaxOpenConns(10)
		db.SetConnMaxIdleTime(5 * time.Minute)

		pingCtx, cancel := context.WithTimeout(ctx, timeout)
		defer cancel()
		if err := db.PingContext(pingCtx); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("ping postgres: %w", err)
		}
		return db, nil
	}
}

// ClosePostgres closes the pool.
func ClosePostgres(_ context.Context, db *sql.DB) error {
	return db.Close()
}
