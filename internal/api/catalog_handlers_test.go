package api

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bookprepper/bookprepper-server/internal/domain"
	"github.com/bookprepper/bookprepper-server/internal/scoring"
	"github.com/bookprepper/bookprepper-server/internal/search"
	"github.com/bookprepper/bookprepper-server/internal/service"
	"github.com/bookprepper/bookprepper-server/internal/store"
)

// seedCatalog creates a genre, a book, and a prep through the admin API.
func (ts *testServer) seedCatalog(t *testing.T) (genre domain.Genre, book domain.Book, prep domain.Prep) {
	t.Helper()
	admin := ts.adminAuth(t)

	resp := ts.api.Post("/api/v1/admin/genres", admin, map[string]any{"name": "Horror"})
	require.Equal(t, http.StatusCreated, resp.Code, resp.Body.String())
	genre = decode[domain.Genre](t, resp).Data

	resp = ts.api.Post("/api/v1/admin/books", admin, map[string]any{
		"title":          "Frankenstein",
		"author_name":    "Mary Shelley",
		"published_year": 1818,
		"genre_ids":      []string{genre.ID},
	})
	require.Equal(t, http.StatusCreated, resp.Code, resp.Body.String())
	book = decode[domain.Book](t, resp).Data

	resp = ts.api.Post("/api/v1/admin/books/"+book.ID+"/preps", admin, map[string]any{
		"heading":  "Nested narrators",
		"summary":  "Three voices tell the story in layers.",
		"keywords": []string{"Frame story"},
	})
	require.Equal(t, http.StatusCreated, resp.Code, resp.Body.String())
	prep = decode[domain.Prep](t, resp).Data

	return genre, book, prep
}

func TestListAndGetBooks(t *testing.T) {
	ts := setupTestServer(t)
	genre, book, prep := ts.seedCatalog(t)

	resp := ts.api.Get("/api/v1/books")
	require.Equal(t, http.StatusOK, resp.Code)
	list := decode[store.PaginatedResult[domain.Book]](t, resp)
	assert.True(t, list.Success)
	assert.Equal(t, 1, list.Data.Total)
	require.Len(t, list.Data.Items, 1)
	assert.Equal(t, "frankenstein", list.Data.Items[0].Slug)

	resp = ts.api.Get("/api/v1/books?genre=" + genre.Slug + "&limit=10")
	assert.Equal(t, 1, decode[store.PaginatedResult[domain.Book]](t, resp).Data.Total)

	resp = ts.api.Get("/api/v1/books?genre=romance")
	assert.Zero(t, decode[store.PaginatedResult[domain.Book]](t, resp).Data.Total)

	resp = ts.api.Get("/api/v1/books/frankenstein")
	require.Equal(t, http.StatusOK, resp.Code)
	detail := decode[service.BookDetail](t, resp).Data
	require.NotNil(t, detail.Book)
	assert.Equal(t, book.ID, detail.ID)
	require.Len(t, detail.Preps, 1)
	assert.Equal(t, prep.ID, detail.Preps[0].ID)
	assert.Len(t, detail.Preps[0].Score.Dimensions, len(domain.Dimensions))
}

func TestGetBook_NotFound(t *testing.T) {
	ts := setupTestServer(t)

	resp := ts.api.Get("/api/v1/books/missing")
	require.Equal(t, http.StatusNotFound, resp.Code)

	env := decode[any](t, resp)
	assert.False(t, env.Success)
	assert.Equal(t, "NOT_FOUND", env.Code)
	assert.NotEmpty(t, env.Error)
}

func TestListBooks_InvalidCursor(t *testing.T) {
	ts := setupTestServer(t)

	resp := ts.api.Get("/api/v1/books?cursor=%25%25%25")
	require.Equal(t, http.StatusBadRequest, resp.Code)
	env := decode[any](t, resp)
	assert.Equal(t, "VALIDATION", env.Code)
	assert.Equal(t, "is invalid", env.Details["cursor"])
}

func TestGenresAndStats(t *testing.T) {
	ts := setupTestServer(t)

	env := decode[domain.CatalogStats](t, ts.api.Get("/api/v1/stats"))
	assert.Zero(t, env.Data.Books)

	ts.seedCatalog(t)

	genres := decode[GenreListResponse](t, ts.api.Get("/api/v1/genres"))
	require.Len(t, genres.Data.Genres, 1)
	assert.Equal(t, "horror", genres.Data.Genres[0].Slug)

	stats := decode[domain.CatalogStats](t, ts.api.Get("/api/v1/stats")).Data
	assert.Equal(t, 1, stats.Books)
	assert.Equal(t, 1, stats.Genres)
	assert.Equal(t, 1, stats.Preps)
}

func TestCreateGenre_Conflict(t *testing.T) {
	ts := setupTestServer(t)
	ts.seedCatalog(t)

	resp := ts.api.Post("/api/v1/admin/genres", ts.adminAuth(t), map[string]any{"name": "HORROR"})
	require.Equal(t, http.StatusConflict, resp.Code)
	assert.Equal(t, "CONFLICT", decode[any](t, resp).Code)
}

func TestCreateBook_UnknownGenres(t *testing.T) {
	ts := setupTestServer(t)

	resp := ts.api.Post("/api/v1/admin/books", ts.adminAuth(t), map[string]any{
		"title":       "Dracula",
		"author_name": "Bram Stoker",
		"genre_ids":   []string{"genre-missing"},
	})
	require.Equal(t, http.StatusBadRequest, resp.Code)
	env := decode[any](t, resp)
	assert.Equal(t, "VALIDATION", env.Code)
	assert.Contains(t, env.Details, "genre_ids")
}

func TestCreateBook_SchemaValidation(t *testing.T) {
	ts := setupTestServer(t)

	resp := ts.api.Post("/api/v1/admin/books", ts.adminAuth(t), map[string]any{"author_name": "Nobody"})
	require.Equal(t, http.StatusBadRequest, resp.Code)
	assert.Equal(t, "VALIDATION", decode[any](t, resp).Code)
}

func TestUpdateBookAndGenres(t *testing.T) {
	ts := setupTestServer(t)
	_, book, _ := ts.seedCatalog(t)
	admin := ts.adminAuth(t)

	resp := ts.api.Patch("/api/v1/admin/books/"+book.ID, admin, map[string]any{
		"synopsis": "A scientist builds a creature.",
	})
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())
	updated := decode[domain.Book](t, resp).Data
	assert.Equal(t, "A scientist builds a creature.", updated.Synopsis)
	assert.Equal(t, "frankenstein", updated.Slug)

	resp = ts.api.Post("/api/v1/admin/genres", admin, map[string]any{"name": "Gothic"})
	gothic := decode[domain.Genre](t, resp).Data

	resp = ts.api.Put("/api/v1/admin/books/"+book.ID+"/genres", admin, map[string]any{
		"genre_ids": []string{gothic.ID},
	})
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())
	withGenres := decode[domain.Book](t, resp).Data
	require.Len(t, withGenres.Genres, 1)
	assert.Equal(t, "gothic", withGenres.Genres[0].Slug)

	resp = ts.api.Patch("/api/v1/admin/books/book-missing", admin, map[string]any{"title": "x"})
	assert.Equal(t, http.StatusNotFound, resp.Code)
}

func TestPrepLifecycle(t *testing.T) {
	ts := setupTestServer(t)
	_, _, prep := ts.seedCatalog(t)
	admin := ts.adminAuth(t)

	resp := ts.api.Patch("/api/v1/admin/preps/"+prep.ID, admin, map[string]any{
		"watch_for": "Who is telling this part?",
	})
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())
	updated := decode[domain.Prep](t, resp).Data
	require.NotNil(t, updated.WatchFor)
	assert.Equal(t, "Nested narrators", updated.Heading)

	resp = ts.api.Delete("/api/v1/admin/preps/"+prep.ID, admin)
	require.Equal(t, http.StatusNoContent, resp.Code, resp.Body.String())

	resp = ts.api.Get("/api/v1/preps/" + prep.ID + "/score")
	assert.Equal(t, http.StatusNotFound, resp.Code)

	resp = ts.api.Delete("/api/v1/admin/preps/"+prep.ID, admin)
	assert.Equal(t, http.StatusNotFound, resp.Code)
}

func TestSearch(t *testing.T) {
	ts := setupTestServer(t)
	_, book, prep := ts.seedCatalog(t)

	resp := ts.api.Get("/api/v1/search?q=frankenstein")
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())
	result := decode[search.SearchResult](t, resp).Data
	require.NotEmpty(t, result.Hits)
	assert.Equal(t, book.ID, result.Hits[0].ID)

	resp = ts.api.Get("/api/v1/search?types=prep&keywords=frame-story")
	result = decode[search.SearchResult](t, resp).Data
	require.Len(t, result.Hits, 1)
	assert.Equal(t, prep.ID, result.Hits[0].ID)
	assert.Equal(t, "Frankenstein", result.Hits[0].BookTitle)

	resp = ts.api.Get("/api/v1/search?sort=popular")
	assert.Equal(t, http.StatusBadRequest, resp.Code)

	ts.services.Search = nil
	resp = ts.api.Get("/api/v1/search?q=frankenstein")
	assert.Equal(t, http.StatusServiceUnavailable, resp.Code)
}

func TestFeedbackAndScores(t *testing.T) {
	ts := setupTestServer(t)
	_, _, prep := ts.seedCatalog(t)
	reader := ts.readerAuth(t)

	resp := ts.api.Post("/api/v1/preps/"+prep.ID+"/feedback", reader, map[string]any{
		"dimension": "CORRECT",
		"value":     "AGREE",
	})
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())
	score := decode[scoring.Payload](t, resp).Data
	assert.Equal(t, 1, score.Agree)
	assert.Equal(t, 1, score.Total)

	resp = ts.api.Post("/api/v1/preps/"+prep.ID+"/feedback", reader, map[string]any{
		"dimension": "CONFUSING",
		"value":     "DISAGREE",
	})
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())

	public := decode[scoring.Payload](t, ts.api.Get("/api/v1/preps/"+prep.ID+"/score")).Data
	assert.Equal(t, 2, public.Total)
	assert.Equal(t, 1, public.Disagree)

	resp = ts.api.Post("/api/v1/preps/"+prep.ID+"/feedback", reader, map[string]any{
		"dimension": "TASTY",
		"value":     "AGREE",
	})
	require.Equal(t, http.StatusBadRequest, resp.Code)
	assert.Equal(t, "VALIDATION", decode[any](t, resp).Code)

	resp = ts.api.Post("/api/v1/preps/prep-missing/feedback", reader, map[string]any{
		"dimension": "CORRECT",
		"value":     "AGREE",
	})
	assert.Equal(t, http.StatusNotFound, resp.Code)

	resp = ts.api.Get("/api/v1/admin/preps/scores?min_total=1", ts.adminAuth(t))
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())
	scores := decode[store.PaginatedResult[service.ScoredPrep]](t, resp).Data
	require.Len(t, scores.Items, 1)
	assert.Equal(t, prep.ID, scores.Items[0].PrepID)
}

func TestCastVote(t *testing.T) {
	ts := setupTestServer(t)
	_, _, prep := ts.seedCatalog(t)
	reader := ts.readerAuth(t)

	resp := ts.api.Put("/api/v1/preps/"+prep.ID+"/vote", reader, map[string]any{"value": "AGREE"})
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())

	resp = ts.api.Put("/api/v1/preps/"+prep.ID+"/vote", reader, map[string]any{
		"value": "DISAGREE",
		"note":  "Gives away the ending",
	})
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())
	vote := decode[domain.LegacyVote](t, resp).Data
	assert.Equal(t, domain.VoteValue("DISAGREE"), vote.Value)
	assert.Equal(t, "reader-1", vote.UserID)
	require.NotNil(t, vote.Note)
}
