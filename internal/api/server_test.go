package api

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"net/url"
	"path/filepath"
	"strings"
	"testing"

	"github.com/danielgtaylor/huma/v2/humatest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/listenupapp/bookshelf/internal/domain"
	"github.com/listenupapp/bookshelf/internal/service"
	"github.com/listenupapp/bookshelf/internal/store/sqlstore"
)

// testServer wraps the API server with its backing store.
type testServer struct {
	*Server
	store *sqlstore.Store
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestServices(t *testing.T) (*Services, *sqlstore.Store) {
	t.Helper()

	st, err := sqlstore.Open("sqlite:///"+filepath.Join(t.TempDir(), "test.db"), testLogger())
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })

	return &Services{Book: service.NewBookService(st, testLogger())}, st
}

// setupTestServer creates a full server over a fresh SQLite database.
func setupTestServer(t *testing.T, opts Options) *testServer {
	t.Helper()

	services, st := newTestServices(t)
	s := NewServer(services, opts, testLogger())
	t.Cleanup(s.Close)

	return &testServer{Server: s, store: st}
}

// setupHumaTestServer registers the JSON operations on a humatest API.
func setupHumaTestServer(t *testing.T) (humatest.TestAPI, *Services, *sqlstore.Store) {
	t.Helper()

	services, st := newTestServices(t)
	_, api := humatest.New(t)
	RegisterErrorHandler()

	s := &Server{
		services: services,
		api:      api,
		logger:   testLogger(),
	}
	s.registerHealthRoutes()
	s.registerBookRoutes()

	return api, services, st
}

func (ts *testServer) seed(t *testing.T) {
	t.Helper()
	n, err := ts.services.Book.Bootstrap(context.Background())
	require.NoError(t, err)
	require.Equal(t, 7, n)
}

func (ts *testServer) get(path string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	ts.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))
	return w
}

func (ts *testServer) postForm(path string, form url.Values) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	w := httptest.NewRecorder()
	ts.ServeHTTP(w, req)
	return w
}

func (ts *testServer) listBooks(t *testing.T) []domain.Book {
	t.Helper()
	w := ts.get("/books")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var books []domain.Book
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &books))
	return books
}

func TestRoot_RedirectsToLibrary(t *testing.T) {
	ts := setupTestServer(t, Options{})

	for range 2 {
		w := ts.get("/")
		assert.Equal(t, http.StatusTemporaryRedirect, w.Code)
		assert.Equal(t, "/library", w.Header().Get("Location"))
		assert.Empty(t, w.Body.String())
	}
}

func TestLibrary_RendersBooks(t *testing.T) {
	ts := setupTestServer(t, Options{})
	ts.seed(t)

	w := ts.get("/library")

	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Header().Get("Content-Type"), "text/html")
	body := w.Body.String()
	assert.Contains(t, body, "Изучаем Python")
	assert.Contains(t, body, "Антуан де Сент-Экзюпери")
	assert.Contains(t, body, "добро и зло")
	assert.NotContains(t, body, `id="recommendation"`)
}

func TestLibrary_Head(t *testing.T) {
	ts := setupTestServer(t, Options{})

	w := httptest.NewRecorder()
	ts.ServeHTTP(w, httptest.NewRequest(http.MethodHead, "/library", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Header().Get("Content-Type"), "text/html")
}

func TestLibrary_Empty(t *testing.T) {
	ts := setupTestServer(t, Options{})

	w := ts.get("/library")

	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "Библиотека пуста")
}

func TestLibrary_EscapesBookFields(t *testing.T) {
	ts := setupTestServer(t, Options{})
	_, err := ts.services.Book.CreateFromForm(context.Background(), "<script>x</script>", "A", "")
	require.NoError(t, err)

	body := ts.get("/library").Body.String()
	assert.NotContains(t, body, "<script>x</script>")
	assert.Contains(t, body, "&lt;script&gt;")
}

func TestCreateFromForm(t *testing.T) {
	tests := []struct {
		name     string
		tags     string
		wantTags []string
	}{
		{name: "tags are split and trimmed", tags: "x, y ,  z", wantTags: []string{"x", "y", "z"}},
		{name: "empty tags field", tags: "", wantTags: []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ts := setupTestServer(t, Options{})

			w := ts.postForm("/", url.Values{
				"title":  {"T"},
				"author": {"A"},
				"tags":   {tt.tags},
			})

			assert.Equal(t, http.StatusSeeOther, w.Code)
			assert.Equal(t, "/library", w.Header().Get("Location"))

			books := ts.listBooks(t)
			require.Len(t, books, 1)
			assert.NotZero(t, books[0].ID)
			assert.Equal(t, "T", books[0].Title)
			assert.Equal(t, tt.wantTags, books[0].Tags)
		})
	}
}

func TestCreateFromForm_MissingTagsField(t *testing.T) {
	ts := setupTestServer(t, Options{})

	w := ts.postForm("/", url.Values{"title": {"T"}, "author": {"A"}})
	require.Equal(t, http.StatusSeeOther, w.Code)

	books := ts.listBooks(t)
	require.Len(t, books, 1)
	assert.Equal(t, []string{}, books[0].Tags)
}

func TestCreateFromForm_MissingRequiredFields(t *testing.T) {
	ts := setupTestServer(t, Options{})

	w := ts.postForm("/", url.Values{"tags": {"x"}})

	require.Equal(t, http.StatusUnprocessableEntity, w.Code)
	var body struct {
		Code    string            `json:"code"`
		Details map[string]string `json:"details"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "VALIDATION", body.Code)
	assert.Equal(t, map[string]string{"title": "is required", "author": "is required"}, body.Details)

	assert.Empty(t, ts.listBooks(t), "nothing is stored")
}

func TestRecommend_RendersMatch(t *testing.T) {
	ts := setupTestServer(t, Options{})
	ts.seed(t)

	w := ts.postForm("/recommend", url.Values{"user_query": {"юмор абсурд"}})

	require.Equal(t, http.StatusOK, w.Code)
	body := w.Body.String()
	assert.Contains(t, body, `id="recommendation"`)
	assert.Contains(t, body, "<strong>Автостопом по галактике</strong>")
	assert.Contains(t, body, `value="юмор абсурд"`)
	assert.Contains(t, body, "Маленький принц", "the full list is still shown")
}

func TestRecommend_SeededMotivationQuery(t *testing.T) {
	ts := setupTestServer(t, Options{})
	ts.seed(t)

	w := ts.postForm("/recommend", url.Values{"user_query": {"хочу мотивацию и практику"}})

	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "<strong>Изучаем Python</strong> (Марк Лутц)")
}

func TestRecommend_NothingFound(t *testing.T) {
	ts := setupTestServer(t, Options{})
	ts.seed(t)

	w := ts.postForm("/recommend", url.Values{"user_query": {"квант"}})

	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "ничего не найдено")
}

func TestRecommend_BlankQuery(t *testing.T) {
	ts := setupTestServer(t, Options{})
	ts.seed(t)

	w := ts.postForm("/recommend", url.Values{})

	require.Equal(t, http.StatusOK, w.Code)
	body := w.Body.String()
	assert.NotContains(t, body, `id="recommendation"`)
	assert.Contains(t, body, "Изучаем Python")
}

func TestRecommend_StorageFailure(t *testing.T) {
	ts := setupTestServer(t, Options{})
	require.NoError(t, ts.store.Close())

	w := ts.postForm("/recommend", url.Values{"user_query": {"дружба"}})

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.NotContains(t, w.Body.String(), "database is closed")
}

func TestRateLimit_WriteEndpoints(t *testing.T) {
	ts := setupTestServer(t, Options{RateLimitPerMinute: 2})
	form := url.Values{"title": {"T"}, "author": {"A"}}

	assert.Equal(t, http.StatusSeeOther, ts.postForm("/", form).Code)
	assert.Equal(t, http.StatusSeeOther, ts.postForm("/", form).Code)

	w := ts.postForm("/", form)
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.JSONEq(t, `{"code":"TOO_MANY_REQUESTS","message":"too many requests, try again later"}`, w.Body.String())

	req := httptest.NewRequest(http.MethodPost, "/books", strings.NewReader(`{"title":"T","author":"A"}`))
	req.Header.Set("Content-Type", "application/json")
	w = httptest.NewRecorder()
	ts.ServeHTTP(w, req)
	assert.Equal(t, http.StatusTooManyRequests, w.Code, "the JSON API shares the per-client quota")

	assert.Equal(t, http.StatusOK, ts.get("/library").Code, "reads are not limited")
	assert.Len(t, ts.listBooks(t), 2)
}

func TestRateLimit_DisabledByDefault(t *testing.T) {
	ts := setupTestServer(t, Options{})
	form := url.Values{"title": {"T"}, "author": {"A"}}

	for range 5 {
		require.Equal(t, http.StatusSeeOther, ts.postForm("/", form).Code)
	}
}

func TestCORS_Preflight(t *testing.T) {
	ts := setupTestServer(t, Options{CORSOrigins: []string{"https://books.example"}})

	req := httptest.NewRequest(http.MethodOptions, "/books", nil)
	req.Header.Set("Origin", "https://books.example")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	w := httptest.NewRecorder()
	ts.ServeHTTP(w, req)

	assert.Equal(t, "https://books.example", w.Header().Get("Access-Control-Allow-Origin"))
}

func TestBooks_EmptyListThroughRouter(t *testing.T) {
	ts := setupTestServer(t, Options{})

	w := ts.get("/books")

	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `[]`, w.Body.String())
}

func TestMetricsEndpoint(t *testing.T) {
	ts := setupTestServer(t, Options{})
	ts.get("/library")

	w := ts.get("/metrics")

	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "bookshelf_http_requests_total")
}

func TestOpenAPIDocument(t *testing.T) {
	ts := setupTestServer(t, Options{Version: "2.0.0"})

	w := ts.get("/openapi.json")

	require.Equal(t, http.StatusOK, w.Code)
	var doc struct {
		Info struct {
			Title   string `json:"title"`
			Version string `json:"version"`
		} `json:"info"`
		Paths map[string]any `json:"paths"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &doc))
	assert.Equal(t, "Bookshelf API", doc.Info.Title)
	assert.Equal(t, "2.0.0", doc.Info.Version)
	assert.Contains(t, doc.Paths, "/books")
	assert.Contains(t, doc.Paths, "/health")
}
