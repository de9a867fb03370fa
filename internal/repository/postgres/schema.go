// Package postgres stores events and bookings in PostgreSQL.
package postgres

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"regexp"
	"sort"
	"strings"

	"github.com/lib/pq"

	"devevents/internal/database"
	"devevents/internal/domain"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// EnsureSchema runs the embedded migrations in file name order. Every
// statement is idempotent.
func EnsureSchema(ctx context.Context, dbs database.Provider[*sql.DB]) error {
	db, err := dbs.EnsureConnected(ctx)
	if err != nil {
		return err
	}
	entries, err := migrationsFS.ReadDir("migrations")
	if err != nil {
		return fmt.Errorf("read migrations dir: %w", err)
	}
	var names []string
	for _, e := range entries {
		if !e.IsDir() && strings.HasSuffix(e.Name(), ".sql") {
			names = append(names, e.Name())
		}
	}
	sort.Strings(names)
	for _, name := range names {
		stmt, err := migrationsFS.ReadFile("migrations/" + name)
		if err != nil {
			return fmt.Errorf("read migration %s: %w", name, err)
		}
		if _, err := db.ExecContext(ctx, string(stmt)); err != nil {
			return fmt.Errorf("execute migration %s: %w", name, err)
		}
	}
	return nil
}

const uniqueViolation = "23505"

// keyDetailPattern matches the detail of a unique violation,
// e.g. `Key (slug)=(cloud-next-2026) already exists.`
var keyDetailPattern = regexp.MustCompile(`Key \(([^)]+)\)=\((.*)\) already exists`)

// mapWriteError converts a unique violation into *domain.ConflictError.
func mapWriteError(err error) error {
	var pqErr *pq.Error
	if !errors.As(err, &pqErr) || pqErr.Code != uniqueViolation {
		return err
	}
	if m := keyDetailPattern.FindStringSubmatch(pqErr.Detail); m != nil {
		return domain.NewConflictError(m[1], m[2], err)
	}
	field := strings.TrimSuffix(strings.TrimPrefix(pqErr.Constraint, pqErr.Table+"_"), "_key")
	if field == "" {
		field = "unknown"
	}
	return domain.NewConflictError(field, "", err)
}

type store struct {
	dbs database.Provider[*sql.DB]
}

func (s *store) db(ctx context.Context) (*sql.DB, error) {
	return s.dbs.EnsureConnected(ctx)
}
