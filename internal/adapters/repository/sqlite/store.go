// Package sqlite provides the SQLite-backed engine store.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	_ "modernc.org/sqlite" // registers the "sqlite" driver

	"github.com/okian/mercwork/internal/adapters/repository"
	"github.com/okian/mercwork/internal/adapters/repository/sqlite/migrations"
	"github.com/okian/mercwork/pkg/logger"
	"github.com/okian/mercwork/pkg/metrics"
)

// MemoryPath opens a private in-memory database.
const MemoryPath = ":memory:"

// Store persists engine state in SQLite. Writes are serialized through a
// single connection, which also keeps an in-memory database alive.
type Store struct {
	sqlDB *sql.DB
	log   logger.Logger
}

var _ repository.Store = (*Store)(nil)

func toMillis(value time.Time) int64 {
	return value.UTC().UnixMilli()
}

func fromMillis(value int64) time.Time {
	return time.UnixMilli(value).UTC()
}

func toNullMillis(value time.Time) sql.NullInt64 {
	if value.IsZero() {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: toMillis(value), Valid: true}
}

func fromNullMillis(value sql.NullInt64) time.Time {
	if !value.Valid {
		return time.Time{}
	}
	return fromMillis(value.Int64)
}

// Open opens the database at path and applies embedded migrations.
func Open(ctx context.Context, path string, opts ...Option) (*Store, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return nil, ErrPathRequired
	}
	dsn := path + "?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)"
	if path != MemoryPath {
		dsn += "&_pragma=journal_mode(WAL)&_pragma=synchronous(NORMAL)"
	}

	sqlDB, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}
	sqlDB.SetMaxOpenConns(1)
	sqlDB.SetMaxIdleConns(1)
	sqlDB.SetConnMaxLifetime(0)

	if err := sqlDB.PingContext(ctx); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("ping sqlite db: %w", err)
	}
	if err := applyMigrations(ctx, sqlDB, migrations.FS); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	s := &Store{sqlDB: sqlDB, log: logger.Nop()}
	for _, opt := range opts {
		opt(s)
	}
	s.log.Info(ctx, "sqlite store opened", logger.String("path", path))
	return s, nil
}

// Atomic implements repository.Store.
func (s *Store) Atomic(ctx context.Context, fn func(tx repository.Tx) error) (err error) {
	if err := ctx.Err(); err != nil {
		return err
	}
	start := time.Now()
	sqlTx, err := s.sqlDB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer func() {
		op := "commit"
		if err != nil {
			op = "rollback"
		}
		metrics.RecordStoreTx(op, float64(time.Since(start).Milliseconds()))
	}()

	if err = fn(&tx{tx: sqlTx}); err != nil {
		_ = sqlTx.Rollback()
		return err
	}
	if err = sqlTx.Commit(); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}
	return nil
}

// Ping implements repository.Store.
func (s *Store) Ping(ctx context.Context) error {
	return s.sqlDB.PingContext(ctx)
}

// Close closes the SQLite handle.
func (s *Store) Close() error {
	if s == nil || s.sqlDB == nil {
		return nil
	}
	return s.sqlDB.Close()
}

// tx implements repository.Tx over one *sql.Tx.
type tx struct {
	tx *sql.Tx
}
