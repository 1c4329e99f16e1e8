package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	_ "github.com/lib/pq"
	_ "github.com/mattn/go-sqlite3"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/dialect/sqlitedialect"

	"github.com/goliatone/go-cms-collections/internal/collections"
	"github.com/goliatone/go-cms-collections/internal/documents"
)

const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

var (
	ErrDriverUnknown = errors.New("storage: unknown driver")
	ErrDSNRequired   = errors.New("storage: dsn required")
)

// Config captures how the engine connects to its database.
type Config struct {
	Driver string
	DSN    string
	// MaxOpenConns caps the pool. SQLite in-memory databases need 1.
	MaxOpenConns int
}

// NormalizeDriver maps driver aliases onto the supported driver names.
func NormalizeDriver(driver string) string {
	switch strings.ToLower(strings.TrimSpace(driver)) {
	case "sqlite", "sqlite3":
		return DriverSQLite
	case "postgres", "postgresql", "pg":
		return DriverPostgres
	default:
		return strings.ToLower(strings.TrimSpace(driver))
	}
}

// Open connects to the configured database and wraps it in a bun.DB with the
// matching dialect.
func Open(cfg Config) (*bun.DB, error) {
	if strings.TrimSpace(cfg.DSN) == "" {
		return nil, ErrDSNRequired
	}

	var (
		sqlDB *sql.DB
		err   error
	)
	driver := NormalizeDriver(cfg.Driver)
	switch driver {
	case DriverSQLite:
		sqlDB, err = sql.Open("sqlite3", cfg.DSN)
	case DriverPostgres:
		sqlDB, err = sql.Open("postgres", cfg.DSN)
	default:
		return nil, fmt.Errorf("%w: %q", ErrDriverUnknown, cfg.Driver)
	}
	if err != nil {
		return nil, fmt.Errorf("storage: open %s: %w", driver, err)
	}
	if cfg.MaxOpenConns > 0 {
		sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
	}

	if driver == DriverPostgres {
		return bun.NewDB(sqlDB, pgdialect.New()), nil
	}
	return bun.NewDB(sqlDB, sqlitedialect.New()), nil
}

// Migrate creates the engine tables when they do not exist yet.
func Migrate(ctx context.Context, db *bun.DB) error {
	if db == nil {
		return errors.New("storage: database required")
	}
	models := []any{
		(*collections.Collection)(nil),
		(*collections.Field)(nil),
		(*documents.Document)(nil),
	}
	for _, model := range models {
		if _, err := db.NewCreateTable().Model(model).IfNotExists().Exec(ctx); err != nil {
			return fmt.Errorf("storage: create table for %T: %w", model, err)
		}
	}
	return nil
}
