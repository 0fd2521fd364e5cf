package metrics

import (
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecordBooksCreated(t *testing.T) {
	before := testutil.ToFloat64(BooksCreated.WithLabelValues(SourceSeed))

	RecordBooksCreated(SourceSeed, 7)
	RecordBooksCreated(SourceSeed, 0)

	after := testutil.ToFloat64(BooksCreated.WithLabelValues(SourceSeed))
	assert.InDelta(t, 7, after-before, 0)
}

func TestRecordRecommendation(t *testing.T) {
	tests := []struct {
		result string
		score  int
	}{
		{ResultMatch, 2},
		{ResultNoMatch, 0},
		{ResultEmpty, 0},
	}

	for _, tt := range tests {
		t.Run(tt.result, func(t *testing.T) {
			before := testutil.ToFloat64(Recommendations.WithLabelValues(tt.result))
			RecordRecommendation(tt.result, tt.score)
			after := testutil.ToFloat64(Recommendations.WithLabelValues(tt.result))
			assert.InDelta(t, 1, after-before, 0)
		})
	}
}

func TestRecordDBOperation(t *testing.T) {
	before := testutil.ToFloat64(DBOperationErrors.WithLabelValues("list_books"))

	RecordDBOperation("list_books", time.Millisecond, nil)
	RecordDBOperation("list_books", time.Millisecond, errors.New("database is locked"))

	after := testutil.ToFloat64(DBOperationErrors.WithLabelValues("list_books"))
	assert.InDelta(t, 1, after-before, 0)
}

func TestMiddleware_LabelsByRoutePattern(t *testing.T) {
	r := chi.NewRouter()
	r.Use(Middleware)
	r.Get("/books/{id}", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	})

	counter := HTTPRequestsTotal.WithLabelValues(http.MethodGet, "/books/{id}", "418")
	before := testutil.ToFloat64(counter)

	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/books/1", nil))
	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/books/2", nil))

	assert.InDelta(t, 2, testutil.ToFloat64(counter)-before, 0)
}

func TestHandler_Exposition(t *testing.T) {
	RecordBooksCreated(SourceAPI, 1)

	rec := httptest.NewRecorder()
	Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	body, err := io.ReadAll(rec.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), `bookshelf_books_created_total{source="api"}`)
}
