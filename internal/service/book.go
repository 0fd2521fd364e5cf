// Package service provides the catalog business logic: listing and adding
// books, first-run bootstrap and recommendations.
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/listenupapp/bookshelf/internal/catalog"
	"github.com/listenupapp/bookshelf/internal/domain"
	domainerrors "github.com/listenupapp/bookshelf/internal/errors"
	"github.com/listenupapp/bookshelf/internal/metrics"
	"github.com/listenupapp/bookshelf/internal/recommend"
	"github.com/listenupapp/bookshelf/internal/store"
	"github.com/listenupapp/bookshelf/internal/validation"
)

// BookService orchestrates book operations. Every call acquires its own
// storage session and releases it before returning.
type BookService struct {
	store     store.BookStore
	validator *validation.Validator
	logger    *slog.Logger
}

// NewBookService creates a new book service.
func NewBookService(store store.BookStore, logger *slog.Logger) *BookService {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &BookService{
		store:     store,
		validator: validation.New(),
		logger:    logger,
	}
}

// Recommendation is the outcome of a recommendation request.
type Recommendation struct {
	Query string
	Books []*domain.Book
	Match *domain.Book // nil when nothing scored
	Score int
}

// NothingFound reports whether a non-blank query produced no match.
func (r *Recommendation) NothingFound() bool {
	return r.Match == nil && !recommend.IsBlank(r.Query)
}

// withSession runs fn inside a scoped session and records the operation.
func (s *BookService) withSession(ctx context.Context, op string, fn func(store.BookSession) error) error {
	start := time.Now()

	sess, err := s.store.Session(ctx)
	if err != nil {
		metrics.RecordDBOperation(op, time.Since(start), err)
		return fmt.Errorf("acquire session: %w", err)
	}
	defer func() {
		if cerr := sess.Close(); cerr != nil {
			s.logger.Warn("failed to release session", "op", op, "error", cerr)
		}
	}()

	err = fn(sess)
	metrics.RecordDBOperation(op, time.Since(start), err)
	return err
}

// ListBooks returns every book in insertion order. Never nil.
func (s *BookService) ListBooks(ctx context.Context) ([]*domain.Book, error) {
	var books []*domain.Book
	err := s.withSession(ctx, "list_books", func(sess store.BookSession) error {
		var err error
		books, err = sess.ListBooks(ctx)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("list books: %w", err)
	}
	if books == nil {
		books = []*domain.Book{}
	}
	return books, nil
}

// CreateBook validates and stores a book submitted through the JSON API.
func (s *BookService) CreateBook(ctx context.Context, book *domain.Book) (*domain.Book, error) {
	return s.create(ctx, book, metrics.SourceAPI)
}

// CreateFromForm stores a book submitted through the HTML form. rawTags is
// the comma-separated tag field.
func (s *BookService) CreateFromForm(ctx context.Context, title, author, rawTags string) (*domain.Book, error) {
	book := &domain.Book{
		Title:  title,
		Author: author,
		Tags:   catalog.ParseTags(rawTags),
	}
	return s.create(ctx, book, metrics.SourceForm)
}

func (s *BookService) create(ctx context.Context, book *domain.Book, source string) (*domain.Book, error) {
	if err := s.validator.Validate(book); err != nil {
		if errors.Is(err, domainerrors.ErrValidation) {
			s.logger.Debug("book rejected", "source", source, "error", err)
		}
		return nil, err
	}

	// Storage assigns identity.
	book.ID = 0
	book.NormalizeTags()

	err := s.withSession(ctx, "create_book", func(sess store.BookSession) error {
		return sess.CreateBook(ctx, book)
	})
	if err != nil {
		return nil, fmt.Errorf("create book: %w", err)
	}

	metrics.RecordBooksCreated(source, 1)
	s.logger.Info("book created", "id", book.ID, "title", book.Title, "source", source)
	return book, nil
}

// Recommend loads the catalog and picks the book whose tags best match query.
// Listing failures are returned; an unmatched query is not an error.
func (s *BookService) Recommend(ctx context.Context, query string) (*Recommendation, error) {
	books, err := s.ListBooks(ctx)
	if err != nil {
		return nil, err
	}

	rec := &Recommendation{Query: query, Books: books}
	rec.Match, rec.Score = recommend.Best(query, books)

	result := metrics.ResultMatch
	switch {
	case recommend.IsBlank(query):
		result = metrics.ResultEmpty
	case rec.Match == nil:
		result = metrics.ResultNoMatch
	}
	metrics.RecordRecommendation(result, rec.Score)

	if rec.Match != nil {
		s.logger.Debug("recommendation", "tokens", recommend.Tokenize(query), "book_id", rec.Match.ID, "score", rec.Score)
	} else {
		s.logger.Debug("recommendation", "tokens", recommend.Tokenize(query), "result", result)
	}

	return rec, nil
}

// Bootstrap inserts the starter books when the catalog is empty and returns
// how many were inserted (7 on first run, 0 afterwards). The count check and
// the insert are not atomic across processes.
func (s *BookService) Bootstrap(ctx context.Context) (int, error) {
	var inserted int
	err := s.withSession(ctx, "bootstrap", func(sess store.BookSession) error {
		count, err := sess.CountBooks(ctx)
		if err != nil {
			return err
		}
		if count > 0 {
			return nil
		}

		books := catalog.SeedBooks()
		if err := sess.CreateBooks(ctx, books); err != nil {
			return err
		}
		inserted = len(books)
		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("bootstrap catalog: %w", err)
	}

	metrics.RecordBooksCreated(metrics.SourceSeed, inserted)
	if inserted > 0 {
		s.logger.Info("catalog seeded", "inserted", inserted)
	} else {
		s.logger.Info("catalog already populated, skipping seed")
	}
	return inserted, nil
}

// CountBooks returns the number of stored books.
func (s *BookService) CountBooks(ctx context.Context) (int, error) {
	var n int
	err := s.withSession(ctx, "count_books", func(sess store.BookSession) error {
		var err error
		n, err = sess.CountBooks(ctx)
		return err
	})
	if err != nil {
		return 0, fmt.Errorf("count books: %w", err)
	}
	return n, nil
}

// Ping checks that storage is reachable. Failures match ErrUnavailable.
func (s *BookService) Ping(ctx context.Context) error {
	if err := s.store.Ping(ctx); err != nil {
		return domainerrors.ErrUnavailable.WithCause(err)
	}
	return nil
}
