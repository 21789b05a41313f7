// Package database centralises sqlx connection helpers for the local
// collector.  The driver is go-sql-driver/mysql, which also works with
// MariaDB.
//
// Public entry points:
//
//	Open(ctx, dsn)          – pool with conservative sizes, pinged before return.
//	Migrate(ctx, db, stmts) – apply idempotent DDL shipped by components.
package database

import (
	"context"
	"fmt"
	"time"

	"github.com/go-sql-driver/mysql"
	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"
)

// Open returns a *sqlx.DB with 10 max open, 5 idle, and a 30-minute
// connection lifetime.  parseTime is forced on so DATETIME columns scan into
// time.Time.
func Open(ctx context.Context, dsn string) (*sqlx.DB, error) {
	cfg, err := mysql.ParseDSN(dsn)
	if err != nil {
		return nil, fmt.Errorf("parse dsn: %w", err)
	}
	cfg.ParseTime = true
	cfg.Loc = time.UTC

	db, err := sqlx.Open("mysql", cfg.FormatDSN())
	if err != nil {
		return nil, err
	}

	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(30 * time.Minute)

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping %s@%s: %w", cfg.DBName, cfg.Addr, err)
	}
	zap.S().Infow("database online", "addr", cfg.Addr, "db", cfg.DBName)
	return db, nil
}

// Migrate executes each statement in order.  Statements must be idempotent
// (CREATE TABLE IF NOT EXISTS …) because they run on every start.
func Migrate(ctx context.Context, db *sqlx.DB, stmts []string) error {
	for i, s := range stmts {
		if _, err := db.ExecContext(ctx, s); err != nil {
			return fmt.Errorf("migration %d: %w", i, err)
		}
	}
	return nil
}
