package kvstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	sq "github.com/Masterminds/squirrel"
	"github.com/dmitrijs2005/dragoncontacts/internal/dbx"
)

var psq = sq.StatementBuilder.PlaceholderFormat(sq.Dollar)

const tableName = "local_storage"

// PostgresStore keeps values in the local_storage table of a PostgreSQL
// database, which lets several clients share one account store.
type PostgresStore struct {
	db     dbx.DBTX
	closer func() error
}

// NewPostgresStore wraps db. The caller keeps ownership of db; Close is a no-op.
func NewPostgresStore(db dbx.DBTX) *PostgresStore {
	return &PostgresStore{db: db, closer: func() error { return nil }}
}

func (s *PostgresStore) Get(ctx context.Context, key string) ([]byte, error) {
	query, args, err := psq.Select("value").From(tableName).Where(sq.Eq{"key": key}).ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var value []byte
	err = s.db.QueryRowContext(ctx, query, args...).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	if value == nil {
		value = []byte{}
	}
	return value, nil
}

func (s *PostgresStore) Set(ctx context.Context, key string, value []byte) error {
	if value == nil {
		value = []byte{}
	}
	query, args, err := psq.Insert(tableName).
		Columns("key", "value").
		Values(key, value).
		Suffix("ON CONFLICT (key) DO UPDATE SET value = EXCLUDED.value").
		ToSql()
	if err != nil {
		return fmt.Errorf("build query: %w", err)
	}

	if _, err := s.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

func (s *PostgresStore) Delete(ctx context.Context, key string) error {
	query, args, err := psq.Delete(tableName).Where(sq.Eq{"key": key}).ToSql()
	if err != nil {
		return fmt.Errorf("build query: %w", err)
	}

	if _, err := s.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

// Batch runs fn inside a database transaction. When the store already wraps
// a transaction fn runs on it directly.
func (s *PostgresStore) Batch(ctx context.Context, fn func(ctx context.Context, tx Store) error) error {
	db, ok := s.db.(*sql.DB)
	if !ok {
		return fn(ctx, s)
	}
	return dbx.WithTx(ctx, db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		return fn(ctx, NewPostgresStore(tx))
	})
}

func (s *PostgresStore) Close() error {
	return s.closer()
}
