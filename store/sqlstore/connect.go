package sqlstore

import (
	"database/sql"
	"fmt"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/dialect/sqlitedialect"

	_ "modernc.org/sqlite"
)

// NewSQLiteDB opens whirr's embedded store at path and wraps it in a
// bun.DB. A single connection is used deliberately: SQLite serializes
// writers regardless, and holding the pool to one connection makes that
// serialization the claim primitive itself (spec §9) instead of relying
// on a BEGIN EXCLUSIVE that modernc.org/sqlite does not expose cleanly.
func NewSQLiteDB(path string) (*bun.DB, error) {
	dsn := fmt.Sprintf("file:%s?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)", path)
	sqlDB, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	sqlDB.SetMaxOpenConns(1)
	return bun.NewDB(sqlDB, sqlitedialect.New()), nil
}

// NewPostgresDB opens whirr's networked store against dsn. Concurrent
// pollers are expected; claims rely on SELECT ... FOR UPDATE SKIP LOCKED
// rather than connection serialization, so the pool is left to pgx's
// usual defaults.
func NewPostgresDB(dsn string) (*bun.DB, error) {
	sqlDB, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	return bun.NewDB(sqlDB, pgdialect.New()), nil
}
