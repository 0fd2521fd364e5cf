package api

import (
	"embed"
	"html/template"
	"net/http"

	"github.com/listenupapp/bookshelf/internal/domain"
	"github.com/listenupapp/bookshelf/internal/http/response"
)

//go:embed templates/*.html
var templates embed.FS

var pages = template.Must(template.ParseFS(templates, "templates/*.html"))

// libraryPageData contains data for the library page template.
type libraryPageData struct {
	Books        []*domain.Book
	Query        string
	Recommended  *domain.Book
	NothingFound bool
}

// handleRoot sends visitors to the library page.
// GET /
func (s *Server) handleRoot(w http.ResponseWriter, _ *http.Request) {
	response.Redirect(w, "/library", http.StatusTemporaryRedirect)
}

// handleLibrary renders every book.
// GET /library
func (s *Server) handleLibrary(w http.ResponseWriter, r *http.Request) {
	books, err := s.services.Book.ListBooks(r.Context())
	if err != nil {
		response.HandleError(w, err, s.logger)
		return
	}

	response.HTML(w, http.StatusOK, pages, "index.html", libraryPageData{Books: books}, s.logger)
}

// handleCreateFromForm stores a book from the add form and returns to the list.
// POST /  (title, author required; tags comma-separated)
func (s *Server) handleCreateFromForm(w http.ResponseWriter, r *http.Request) {
	_, err := s.services.Book.CreateFromForm(r.Context(),
		r.PostFormValue("title"),
		r.PostFormValue("author"),
		r.PostFormValue("tags"),
	)
	if err != nil {
		response.HandleError(w, err, s.logger)
		return
	}

	response.Redirect(w, "/library", http.StatusSeeOther)
}

// handleRecommend renders the library page with the best match for the query.
// POST /recommend  (user_query optional)
func (s *Server) handleRecommend(w http.ResponseWriter, r *http.Request) {
	rec, err := s.services.Book.Recommend(r.Context(), r.PostFormValue("user_query"))
	if err != nil {
		response.HandleError(w, err, s.logger)
		return
	}

	response.HTML(w, http.StatusOK, pages, "index.html", libraryPageData{
		Books:        rec.Books,
		Query:        rec.Query,
		Recommended:  rec.Match,
		NothingFound: rec.NothingFound(),
	}, s.logger)
}
