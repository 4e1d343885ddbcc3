// Package pg provides core PostgreSQL database primitives for storage layers.
//
// Core Components:
//   - Querier: Interface for transaction-agnostic database operations
//   - WithTx: Helper for managing database transactions
//   - Connect: Configurable database connection establishment
package pg

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/lib/pq" // Registers the PostgreSQL driver
	"github.com/newsletter-dev/newsletter/shared/config"
)

// =========================================================================
// Core Interfaces
// =========================================================================

// Querier is satisfied by both *sql.DB (single statements on the pool) and
// *sql.Tx (statements within a transaction), so storage code can be written
// once and composed into transactions by the caller.
type Querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

var (
	_ Querier = (*sql.DB)(nil)
	_ Querier = (*sql.Tx)(nil)
)

// =========================================================================
// Connection Management
// =========================================================================

// ConnectionConfig holds database connection pool settings.
type ConnectionConfig struct {
	MaxOpenConns    int           // Maximum number of open connections to the database
	MaxIdleConns    int           // Maximum number of idle connections in the pool
	ConnMaxLifetime time.Duration // Maximum amount of time a connection may be reused
	ConnMaxIdleTime time.Duration // Maximum amount of time a connection may be idle
}

// DefaultConnectionConfig returns sensible defaults for connection pooling.
func DefaultConnectionConfig() ConnectionConfig {
	return ConnectionConfig{
		MaxOpenConns:    25,
		MaxIdleConns:    10,
		ConnMaxLifetime: 5 * time.Minute,
		ConnMaxIdleTime: 1 * time.Minute,
	}
}

// DSN builds a lib/pq connection string.
func DSN(cfg config.Pg) string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=disable",
		cfg.Host, cfg.Port, cfg.User, cfg.Password, cfg.Dbname)
}

// Connect establishes and verifies a connection to the PostgreSQL database.
//
// Example:
//
//	cfg := config.MustLoad("config")
//	db, err := pg.Connect(ctx, cfg.Private.Pg, pg.DefaultConnectionConfig())
//	if err != nil {
//	    log.Fatalf("Failed to connect: %v", err)
//	}
//	defer db.Close()
func Connect(ctx context.Context, cfg config.Pg, connCfg ConnectionConfig) (*sql.DB, error) {
	db, err := sql.Open("postgres", DSN(cfg))
	if err != nil {
		return nil, fmt.Errorf("failed to open database connection: %w", err)
	}

	// Configure connection pool
	db.SetMaxOpenConns(connCfg.MaxOpenConns)
	db.SetMaxIdleConns(connCfg.MaxIdleConns)
	db.SetConnMaxLifetime(connCfg.ConnMaxLifetime)
	db.SetConnMaxIdleTime(connCfg.ConnMaxIdleTime)

	// Verify connection
	if err = db.PingContext(ctx); err != nil {
		db.Close() // Close the connection if ping fails
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return db, nil
}

// =========================================================================
// Transaction Helpers
// =========================================================================

// WithTx executes fn within a database transaction. If fn returns an error
// the transaction is rolled back, otherwise it is committed.
//
// Usage:
//
//	err := pg.WithTx(ctx, db, func(tx *sql.Tx) error {
//	    if err := someOperation(ctx, tx, data); err != nil {
//	        return err // Triggers rollback
//	    }
//	    return nil // Triggers commit
//	})
func WithTx(ctx context.Context, db *sql.DB, fn func(*sql.Tx) error) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback() // No-op if transaction is already committed

	if err := fn(tx); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}
