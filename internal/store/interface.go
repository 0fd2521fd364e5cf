// Package store defines the persistence contract for the bookshelf catalog.
package store

import (
	"context"

	"github.com/listenupapp/bookshelf/internal/domain"
)

// BookStore is the process-wide handle to book storage.
type BookStore interface {
	// Session acquires a scoped session. Callers must Close it on every path.
	Session(ctx context.Context) (BookSession, error)
	Ping(ctx context.Context) error
	Close() error
}

// BookSession is a storage handle bound to a single request or operation.
type BookSession interface {
	// ListBooks returns all books in insertion order.
	ListBooks(ctx context.Context) ([]*domain.Book, error)
	// CreateBook inserts book and sets its ID.
	CreateBook(ctx context.Context, book *domain.Book) error
	// CreateBooks inserts all books in one transaction and sets their IDs.
	CreateBooks(ctx context.Context, books []*domain.Book) error
	CountBooks(ctx context.Context) (int, error)
	Close() error
}
