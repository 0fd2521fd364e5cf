// Package sqlstore implements book storage on database/sql, backed by SQLite
// (modernc.org/sqlite) by default or PostgreSQL (pgx) when configured.
package sqlstore

import (
	"context"
	"database/sql"
	_ "embed"
	"fmt"
	"log/slog"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
	_ "modernc.org/sqlite"

	"github.com/listenupapp/bookshelf/internal/store"
)

var (
	//go:embed schema_sqlite.sql
	sqliteSchema string

	//go:embed schema_postgres.sql
	postgresSchema string
)

// Store owns the process-wide connection pool.
type Store struct {
	db      *sql.DB
	dialect Dialect
	logger  *slog.Logger
}

var _ store.BookStore = (*Store)(nil)

// Open connects to the database named by databaseURL and creates the schema
// if it does not exist yet.
func Open(databaseURL string, logger *slog.Logger) (*Store, error) {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	t, err := parseDatabaseURL(databaseURL)
	if err != nil {
		return nil, err
	}

	db, err := sql.Open(t.driver, t.dataSource)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", t.dialect, err)
	}

	configurePool(db, t)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	schema := sqliteSchema
	if t.dialect == DialectPostgres {
		schema = postgresSchema
	}
	if _, err := db.ExecContext(ctx, schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("exec schema: %w", err)
	}

	logger.Debug("Book store opened", "dialect", t.dialect)

	return &Store{db: db, dialect: t.dialect, logger: logger}, nil
}

// connMaxLifetime bounds how long file and PostgreSQL connections are reused.
var connMaxLifetime = time.Hour

// configurePool sizes the pool for the backend. Every SQLite connection to
// :memory: is a separate database, so the in-memory store pins exactly one
// connection for the life of the process; recycling it would drop the table.
func configurePool(db *sql.DB, t target) {
	switch {
	case t.memory:
		db.SetMaxOpenConns(1)
		db.SetMaxIdleConns(1)
		db.SetConnMaxLifetime(0)
		db.SetConnMaxIdleTime(0)
	case t.dialect == DialectSQLite:
		db.SetMaxOpenConns(4)
		db.SetMaxIdleConns(2)
		db.SetConnMaxLifetime(connMaxLifetime)
	default:
		db.SetMaxOpenConns(10)
		db.SetMaxIdleConns(5)
		db.SetConnMaxLifetime(connMaxLifetime)
	}
}

// Dialect reports which backend the store talks to.
func (s *Store) Dialect() Dialect {
	return s.dialect
}

// Close closes the connection pool.
func (s *Store) Close() error {
	return s.db.Close()
}

// Ping verifies the database is reachable.
func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// Session acquires a dedicated connection from the pool.
func (s *Store) Session(ctx context.Context) (store.BookSession, error) {
	conn, err := s.db.Conn(ctx)
	if err != nil {
		return nil, fmt.Errorf("acquire connection: %w", err)
	}
	return &Session{conn: conn, dialect: s.dialect, logger: s.logger}, nil
}
