package sqlstore

import (
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/listenupapp/bookshelf/internal/store"
)

// Dialect identifies the SQL backend behind a store.
type Dialect string

// Supported dialects.
const (
	DialectSQLite   Dialect = "sqlite"
	DialectPostgres Dialect = "postgres"
)

// sqlitePragmas are applied to every pooled SQLite connection.
var sqlitePragmas = []string{
	"journal_mode(WAL)",
	"synchronous(NORMAL)",
	"foreign_keys(ON)",
	"busy_timeout(5000)",
}

// target is a parsed database URL ready for sql.Open.
type target struct {
	dialect    Dialect
	driver     string
	dataSource string
	memory     bool
}

// parseDatabaseURL maps a database URL onto a driver and data source.
//
//	sqlite:///database.db        relative file
//	sqlite:////var/lib/books.db  absolute file
//	sqlite:///:memory:           in-memory database
//	file:books.db?mode=rwc       passed to the SQLite driver as is
//	postgresql://user@host/db    PostgreSQL through pgx
func parseDatabaseURL(raw string) (target, error) {
	switch {
	case strings.HasPrefix(raw, "sqlite://"):
		path := strings.TrimPrefix(raw, "sqlite://")
		path = strings.TrimPrefix(path, "/")
		if path == "" {
			return target{}, store.ErrUnsupportedDatabase.WithCause(errors.New("sqlite url has no path"))
		}
		return sqliteTarget(path), nil

	case strings.HasPrefix(raw, "file:"):
		return sqliteTarget(raw), nil

	case strings.HasPrefix(raw, "postgresql://"), strings.HasPrefix(raw, "postgres://"):
		if _, err := url.Parse(raw); err != nil {
			return target{}, store.ErrUnsupportedDatabase.WithCause(err)
		}
		return target{dialect: DialectPostgres, driver: "pgx", dataSource: raw}, nil

	default:
		scheme, _, _ := strings.Cut(raw, ":")
		return target{}, store.ErrUnsupportedDatabase.WithCause(fmt.Errorf("scheme %q", scheme))
	}
}

func sqliteTarget(path string) target {
	memory := path == ":memory:" || strings.Contains(path, "mode=memory")

	var b strings.Builder
	b.WriteString(path)
	sep := "?"
	if strings.Contains(path, "?") {
		sep = "&"
	}
	for _, pragma := range sqlitePragmas {
		if memory && strings.HasPrefix(pragma, "journal_mode") {
			continue
		}
		b.WriteString(sep)
		b.WriteString("_pragma=")
		b.WriteString(url.QueryEscape(pragma))
		sep = "&"
	}

	return target{dialect: DialectSQLite, driver: "sqlite", dataSource: b.String(), memory: memory}
}

// rebind rewrites ? placeholders to $1..$n for PostgreSQL.
func rebind(dialect Dialect, query string) string {
	if dialect != DialectPostgres {
		return query
	}

	var b strings.Builder
	b.Grow(len(query) + 8)
	n := 0
	for _, r := range query {
		if r == '?' {
			n++
			fmt.Fprintf(&b, "$%d", n)
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}
