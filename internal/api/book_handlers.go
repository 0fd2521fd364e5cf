package api

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/listenupapp/bookshelf/internal/domain"
)

func (s *Server) registerBookRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "listBooks",
		Method:      http.MethodGet,
		Path:        "/books",
		Summary:     "List books",
		Description: "Returns every book in insertion order",
		Tags:        []string{"Books"},
	}, s.handleListBooks)

	huma.Register(s.api, huma.Operation{
		OperationID:   "createBook",
		Method:        http.MethodPost,
		Path:          "/books",
		Summary:       "Create book",
		Description:   "Stores a book and returns it with its assigned id",
		Tags:          []string{"Books"},
		DefaultStatus: http.StatusOK,
	}, s.handleCreateBook)
}

// === DTOs ===

// BookRequest is the JSON body accepted by POST /books. Any id sent by the
// client is ignored.
type BookRequest struct {
	_      struct{} `additionalProperties:"true"`
	ID     int64    `json:"id,omitempty" doc:"Ignored; storage assigns the id"`
	Title  string   `json:"title" doc:"Book title"`
	Author string   `json:"author" doc:"Book author"`
	Tags   []string `json:"tags,omitempty" doc:"Free-text tags" required:"false"`
}

// CreateBookInput wraps the create request for Huma.
type CreateBookInput struct {
	Body BookRequest
}

// BookOutput wraps a single book for Huma.
type BookOutput struct {
	Body *domain.Book
}

// ListBooksOutput wraps the book list for Huma.
type ListBooksOutput struct {
	Body []*domain.Book
}

// === Handlers ===

func (s *Server) handleListBooks(ctx context.Context, _ *struct{}) (*ListBooksOutput, error) {
	books, err := s.services.Book.ListBooks(ctx)
	if err != nil {
		return nil, s.apiError(err)
	}
	return &ListBooksOutput{Body: books}, nil
}

func (s *Server) handleCreateBook(ctx context.Context, input *CreateBookInput) (*BookOutput, error) {
	book, err := s.services.Book.CreateBook(ctx, &domain.Book{
		Title:  input.Body.Title,
		Author: input.Body.Author,
		Tags:   input.Body.Tags,
	})
	if err != nil {
		return nil, s.apiError(err)
	}
	return &BookOutput{Body: book}, nil
}

// apiError converts a service error into a huma status error, logging
// anything that surfaces as a server failure.
func (s *Server) apiError(err error) error {
	se := huma.NewError(http.StatusInternalServerError, "unexpected error occurred", err)
	if se.GetStatus() >= http.StatusInternalServerError {
		s.logger.Error("request failed", "error", err)
	}
	return se
}
