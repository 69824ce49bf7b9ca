package kvstore

import (
	"context"
	"database/sql"
	"fmt"
	"io/fs"

	"github.com/dmitrijs2005/dragoncontacts/internal/client/kvstore/migrations"
	"github.com/dmitrijs2005/dragoncontacts/internal/filex"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"
	_ "modernc.org/sqlite"
)

// Backend names accepted by Open.
const (
	BackendMemory   = "memory"
	BackendSQLite   = "sqlite"
	BackendPostgres = "postgres"
)

// Options selects and addresses a backend.
type Options struct {
	Backend string
	// DSN is a file path (or ":memory:") for SQLite and a connection
	// string for PostgreSQL. Unused by the memory backend.
	DSN string
}

// gooseUp is a seam for testing goose.UpContext.
var gooseUp = func(ctx context.Context, db *sql.DB, dialect string, fsys fs.FS, dir string) error {
	goose.SetBaseFS(fsys)
	if err := goose.SetDialect(dialect); err != nil {
		return fmt.Errorf("failed to set goose dialect: %w", err)
	}
	return goose.UpContext(ctx, db, dir)
}

// Migrate applies the embedded migrations for dialect ("sqlite3" or "pgx").
func Migrate(ctx context.Context, db *sql.DB, dialect string) error {
	dir := migrations.SQLiteDir
	if dialect == "pgx" || dialect == "postgres" {
		dir = migrations.PostgresDir
	}
	if err := gooseUp(ctx, db, dialect, migrations.Migrations, dir); err != nil {
		return fmt.Errorf("migrate %s: %w", dialect, err)
	}
	return nil
}

// Open builds the Store described by opts, creating and migrating the
// schema for SQL backends. The returned Store owns the connection.
func Open(ctx context.Context, opts Options) (Store, error) {
	switch opts.Backend {
	case BackendMemory:
		return NewMemoryStore(), nil

	case BackendSQLite, "":
		if opts.DSN != ":memory:" {
			if err := filex.EnsureParentDir(opts.DSN); err != nil {
				return nil, err
			}
		}
		db, err := sql.Open("sqlite", opts.DSN)
		if err != nil {
			return nil, err
		}
		// one connection keeps ":memory:" databases coherent and serializes writers
		db.SetMaxOpenConns(1)
		if err := Migrate(ctx, db, "sqlite3"); err != nil {
			_ = db.Close()
			return nil, err
		}
		s := NewSQLiteStore(db)
		s.closer = db.Close
		return s, nil

	case BackendPostgres:
		db, err := sql.Open("pgx", opts.DSN)
		if err != nil {
			return nil, err
		}
		if err := db.PingContext(ctx); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("connect postgres: %w", err)
		}
		if err := Migrate(ctx, db, "pgx"); err != nil {
			_ = db.Close()
			return nil, err
		}
		s := NewPostgresStore(db)
		s.closer = db.Close
		return s, nil

	default:
		return nil, fmt.Errorf("unknown storage backend %q", opts.Backend)
	}
}
