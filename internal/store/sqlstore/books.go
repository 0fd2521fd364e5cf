package sqlstore

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/listenupapp/bookshelf/internal/domain"
	"github.com/listenupapp/bookshelf/internal/store"
)

// bookColumns is the ordered list of columns selected in book queries.
// Must match the scan order in scanBook.
const bookColumns = `id, title, author, tags`

const insertBookSQL = `INSERT INTO book (title, author, tags) VALUES (?, ?, ?) RETURNING id`

// queryer is satisfied by *sql.Conn and *sql.Tx.
type queryer interface {
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// Session is a store handle pinned to one pooled connection.
type Session struct {
	conn    *sql.Conn
	dialect Dialect
	logger  *slog.Logger
}

var _ store.BookSession = (*Session)(nil)

// Close returns the connection to the pool. It is safe to call more than once.
func (s *Session) Close() error {
	if s.conn == nil {
		return nil
	}
	err := s.conn.Close()
	s.conn = nil
	if err == sql.ErrConnDone {
		return nil
	}
	return err
}

// scanBook scans a sql.Row (or sql.Rows via its Scan method) into a domain.Book.
func scanBook(scanner interface{ Scan(dest ...any) error }) (*domain.Book, error) {
	var (
		b        domain.Book
		tagsJSON string
	)

	if err := scanner.Scan(&b.ID, &b.Title, &b.Author, &tagsJSON); err != nil {
		return nil, err
	}

	if err := json.Unmarshal([]byte(tagsJSON), &b.Tags); err != nil {
		return nil, fmt.Errorf("decode tags of book %d: %w", b.ID, err)
	}
	b.NormalizeTags()

	return &b, nil
}

// ListBooks returns every book ordered by id.
func (s *Session) ListBooks(ctx context.Context) ([]*domain.Book, error) {
	if s.conn == nil {
		return nil, store.ErrSessionClosed
	}

	rows, err := s.conn.QueryContext(ctx, `SELECT `+bookColumns+` FROM book ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("list books: %w", err)
	}
	defer rows.Close()

	books := []*domain.Book{}
	for rows.Next() {
		b, err := scanBook(rows)
		if err != nil {
			return nil, err
		}
		books = append(books, b)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list books: %w", err)
	}
	return books, nil
}

// CountBooks returns the number of stored books.
func (s *Session) CountBooks(ctx context.Context) (int, error) {
	if s.conn == nil {
		return 0, store.ErrSessionClosed
	}

	var n int
	if err := s.conn.QueryRowContext(ctx, `SELECT COUNT(*) FROM book`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count books: %w", err)
	}
	return n, nil
}

// CreateBook inserts a book and sets its ID.
func (s *Session) CreateBook(ctx context.Context, book *domain.Book) error {
	if s.conn == nil {
		return store.ErrSessionClosed
	}
	return s.insertBook(ctx, s.conn, book)
}

// CreateBooks inserts books in a single transaction. Either all rows are
// stored or none are; IDs are only assigned after a successful commit.
func (s *Session) CreateBooks(ctx context.Context, books []*domain.Book) error {
	if s.conn == nil {
		return store.ErrSessionClosed
	}

	tx, err := s.conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	staged := make([]domain.Book, len(books))
	for i, book := range books {
		if book == nil {
			return store.ErrInvalidInput.WithCause(fmt.Errorf("book %d is nil", i))
		}
		staged[i] = *book
		if err := s.insertBook(ctx, tx, &staged[i]); err != nil {
			return err
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}

	for i, book := range books {
		book.ID = staged[i].ID
		book.Tags = staged[i].Tags
	}
	return nil
}

func (s *Session) insertBook(ctx context.Context, q queryer, book *domain.Book) error {
	if book == nil {
		return store.ErrInvalidInput.WithCause(fmt.Errorf("book is nil"))
	}

	book.NormalizeTags()
	tagsJSON, err := json.Marshal(book.Tags)
	if err != nil {
		return fmt.Errorf("marshal tags: %w", err)
	}

	var id int64
	err = q.QueryRowContext(ctx, rebind(s.dialect, insertBookSQL),
		book.Title,
		book.Author,
		string(tagsJSON),
	).Scan(&id)
	if err != nil {
		return fmt.Errorf("insert book %q: %w", book.Title, err)
	}

	book.ID = id
	return nil
}
