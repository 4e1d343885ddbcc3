package pg

import (
	"context"
	"database/sql"
	_ "embed"
	"time"

	"github.com/newsletter-dev/newsletter/shared/config"
	"github.com/newsletter-dev/newsletter/shared/errors"
	"github.com/newsletter-dev/newsletter/shared/logger"
	sharedpg "github.com/newsletter-dev/newsletter/shared/storage/pg"
)

//go:embed migrations/init.sql
var schema string

const queryTimeout = 5 * time.Second

type Storage struct {
	db *sql.DB
}

func New(ctx context.Context, cfg config.Pg) (*Storage, error) {
	logger.Log.Info("connecting to database", "host", cfg.Host, "port", cfg.Port, "dbname", cfg.Dbname)
	db, err := sharedpg.Connect(ctx, cfg, sharedpg.DefaultConnectionConfig())
	if err != nil {
		return nil, errors.Storage("connect to database", err)
	}
	logger.Log.Info("successfully connected to database")
	return &Storage{db: db}, nil
}

// NewWithDB wraps an already opened pool.
func NewWithDB(db *sql.DB) *Storage {
	return &Storage{db: db}
}

func (s *Storage) Cleanup() error {
	return s.db.Close()
}

func (s *Storage) Ping(ctx context.Context) error {
	if err := s.db.PingContext(ctx); err != nil {
		return errors.Storage("ping database", err)
	}
	return nil
}

// Migrate applies the embedded schema. Every statement is idempotent.
func (s *Storage) Migrate(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, schema); err != nil {
		return errors.Storage("apply schema", err)
	}
	return nil
}

func (s *Storage) withTx(ctx context.Context, fn func(tx *sql.Tx) error) error {
	return sharedpg.WithTx(ctx, s.db, fn)
}
