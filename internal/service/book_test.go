package service

import (
	"context"
	"strings"
	"testing"

	"github.com/bookprepper/bookprepper-server/internal/domain"
	domainerrors "github.com/bookprepper/bookprepper-server/internal/errors"
	"github.com/bookprepper/bookprepper-server/internal/search"
	"github.com/bookprepper/bookprepper-server/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateBook(t *testing.T) {
	env := setupTestEnv(t)
	ctx := context.Background()

	book, genre := env.seedBook(t)
	assert.Equal(t, "frankenstein", book.Slug)
	require.NotNil(t, book.Author)
	assert.Equal(t, "Mary Shelley", book.Author.Name)
	require.Len(t, book.Genres, 1)
	assert.Equal(t, genre.ID, book.Genres[0].ID)

	again, err := env.books.CreateBook(ctx, CreateBookRequest{
		Title:      "Frankenstein",
		AuthorName: "mary shelley",
		ISBN:       ptr("0-486-28211-x"),
		Synopsis:   ptr(strings.Repeat("a", 2000)),
	})
	require.NoError(t, err)
	assert.Equal(t, "frankenstein-2", again.Slug)
	assert.Equal(t, book.AuthorID, again.AuthorID)
	require.NotNil(t, again.ISBN)
	assert.Equal(t, "048628211X", *again.ISBN)
	assert.Len(t, []rune(again.Synopsis), domain.MaxSynopsisLength)
}

func TestCreateBook_StrictGenres(t *testing.T) {
	env := setupTestEnv(t)

	_, err := env.books.CreateBook(context.Background(), CreateBookRequest{
		Title:      "Dracula",
		AuthorName: "Bram Stoker",
		GenreIDs:   []string{"genre-b", "genre-a"},
	})
	var derr *domainerrors.Error
	require.ErrorAs(t, err, &derr)
	assert.Equal(t, domainerrors.CodeValidation, derr.Code)
	assert.Equal(t, map[string]string{"genre_ids": "unknown: genre-a, genre-b"}, derr.Details)

	// Nothing was written, not even the author.
	_, err = env.store.FindAuthorByName(context.Background(), "Bram Stoker")
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestCreateBook_RequiresAuthor(t *testing.T) {
	env := setupTestEnv(t)

	_, err := env.books.CreateBook(context.Background(), CreateBookRequest{Title: "Anonymous"})
	assert.ErrorIs(t, err, domainerrors.ErrValidation)

	_, err = env.books.CreateBook(context.Background(), CreateBookRequest{Title: "Anonymous", AuthorID: "author-missing"})
	assert.ErrorIs(t, err, domainerrors.ErrNotFound)
}

func TestUpdateBook(t *testing.T) {
	env := setupTestEnv(t)
	ctx := context.Background()
	book, _ := env.seedBook(t)

	updated, err := env.books.UpdateBook(ctx, book.ID, UpdateBookRequest{
		Title:    ptr("Frankenstein; or, The Modern Prometheus"),
		Synopsis: ptr("<b>Bold</b> claims."),
		ISBN:     ptr(""),
	})
	require.NoError(t, err)
	assert.Equal(t, "frankenstein", updated.Slug)
	assert.Equal(t, "**Bold** claims.", updated.Synopsis)
	assert.Nil(t, updated.ISBN)
	assert.Equal(t, 1818, updated.PublishedYear)

	params := search.DefaultSearchParams()
	params.Query = "prometheus"
	found, err := env.search.Search(ctx, params)
	require.NoError(t, err)
	require.NotEmpty(t, found.Hits)
	assert.Equal(t, book.ID, found.Hits[0].ID)

	_, err = env.books.UpdateBook(ctx, "book-missing", UpdateBookRequest{Title: ptr("x")})
	assert.ErrorIs(t, err, domainerrors.ErrNotFound)
}

func TestReplaceGenres(t *testing.T) {
	env := setupTestEnv(t)
	ctx := context.Background()
	book, _ := env.seedBook(t)
	gothic, err := env.genres.CreateGenre(ctx, CreateGenreRequest{Name: "Gothic"})
	require.NoError(t, err)

	updated, err := env.books.ReplaceGenres(ctx, book.ID, ReplaceGenresRequest{GenreIDs: []string{gothic.ID}})
	require.NoError(t, err)
	require.Len(t, updated.Genres, 1)
	assert.Equal(t, "gothic", updated.Genres[0].Slug)

	_, err = env.books.ReplaceGenres(ctx, book.ID, ReplaceGenresRequest{GenreIDs: []string{gothic.ID, "genre-missing"}})
	assert.ErrorIs(t, err, domainerrors.ErrValidation)

	got, err := env.store.GetBook(ctx, book.ID)
	require.NoError(t, err)
	require.Len(t, got.Genres, 1)
	assert.Equal(t, gothic.ID, got.Genres[0].ID)

	cleared, err := env.books.ReplaceGenres(ctx, book.ID, ReplaceGenresRequest{})
	require.NoError(t, err)
	assert.Empty(t, cleared.Genres)

	_, err = env.books.ReplaceGenres(ctx, "book-missing", ReplaceGenresRequest{})
	assert.ErrorIs(t, err, domainerrors.ErrNotFound)
}

func TestListBooks(t *testing.T) {
	env := setupTestEnv(t)
	ctx := context.Background()
	_, genre := env.seedBook(t)
	_, err := env.books.CreateBook(ctx, CreateBookRequest{Title: "Dracula", AuthorName: "Bram Stoker"})
	require.NoError(t, err)

	all, err := env.books.ListBooks(ctx, "", store.PaginationParams{})
	require.NoError(t, err)
	assert.Equal(t, 2, all.Total)
	assert.Equal(t, "Dracula", all.Items[0].Title)

	horror, err := env.books.ListBooks(ctx, genre.Slug, store.PaginationParams{})
	require.NoError(t, err)
	require.Len(t, horror.Items, 1)
	assert.Equal(t, "Frankenstein", horror.Items[0].Title)

	_, err = env.books.ListBooks(ctx, "", store.PaginationParams{Cursor: "%%%"})
	assert.ErrorIs(t, err, domainerrors.ErrValidation)
}

func TestGetBookBySlug_WithScoredPreps(t *testing.T) {
	env := setupTestEnv(t)
	ctx := context.Background()
	book, _ := env.seedBook(t)
	scored := env.seedPrep(t, book)
	unscored := env.seedPrep(t, book)

	_, err := env.feedback.SubmitFeedback(ctx, "user-1", scored.ID, SubmitFeedbackRequest{Dimension: "CORRECT", Value: "AGREE"})
	require.NoError(t, err)

	detail, err := env.books.GetBookBySlug(ctx, "frankenstein")
	require.NoError(t, err)
	assert.Equal(t, book.ID, detail.ID)
	require.Len(t, detail.Preps, 2)

	byID := map[string]ScoredPrepDetail{}
	for _, p := range detail.Preps {
		byID[p.ID] = p
	}
	assert.Equal(t, 1, byID[scored.ID].Score.Total)
	assert.Zero(t, byID[unscored.ID].Score.Total)
	assert.Len(t, byID[unscored.ID].Score.Dimensions, len(domain.Dimensions))
	assert.Equal(t, []string{"Frame story"}, byID[scored.ID].KeywordNames())

	_, err = env.books.GetBookBySlug(ctx, "missing")
	assert.ErrorIs(t, err, domainerrors.ErrNotFound)
}

func TestPrepLifecycle(t *testing.T) {
	env := setupTestEnv(t)
	ctx := context.Background()
	book, _ := env.seedBook(t)
	prep := env.seedPrep(t, book)

	updated, err := env.preps.UpdatePrep(ctx, prep.ID, UpdatePrepRequest{
		Summary:  ptr("Walton, Victor and the creature each narrate."),
		WatchFor: ptr("Who is telling this part?"),
		Keywords: ptr([]string{"Unreliable narrator", "frame story"}),
	})
	require.NoError(t, err)
	assert.Equal(t, "Nested narrators", updated.Heading)
	require.NotNil(t, updated.WatchFor)
	assert.Len(t, updated.Keywords, 2)

	_, err = env.feedback.SubmitFeedback(ctx, "user-1", prep.ID, SubmitFeedbackRequest{Dimension: "FUN", Value: "AGREE"})
	require.NoError(t, err)

	require.NoError(t, env.preps.DeletePrep(ctx, prep.ID))

	_, err = env.store.GetPromptScore(ctx, prep.ID)
	assert.ErrorIs(t, err, store.ErrNotFound)

	params := search.DefaultSearchParams()
	params.Types = []search.DocType{search.DocTypePrep}
	found, err := env.search.Search(ctx, params)
	require.NoError(t, err)
	assert.Zero(t, found.Total)

	assert.ErrorIs(t, env.preps.DeletePrep(ctx, prep.ID), domainerrors.ErrNotFound)
	_, err = env.preps.CreatePrep(ctx, "book-missing", CreatePrepRequest{Heading: "h", Summary: "s"})
	assert.ErrorIs(t, err, domainerrors.ErrNotFound)
}

func TestCreatePrep_Validation(t *testing.T) {
	env := setupTestEnv(t)
	book, _ := env.seedBook(t)

	_, err := env.preps.CreatePrep(context.Background(), book.ID, CreatePrepRequest{
		Heading: strings.Repeat("h", domain.MaxHeadingLength+1),
		Summary: "s",
	})
	assert.ErrorIs(t, err, domainerrors.ErrValidation)
}

func TestCreateGenre_Conflict(t *testing.T) {
	env := setupTestEnv(t)
	ctx := context.Background()

	g, err := env.genres.CreateGenre(ctx, CreateGenreRequest{Name: "Science Fiction"})
	require.NoError(t, err)
	assert.Equal(t, "science-fiction", g.Slug)

	_, err = env.genres.CreateGenre(ctx, CreateGenreRequest{Name: "science fiction!"})
	assert.ErrorIs(t, err, domainerrors.ErrConflict)

	genres, err := env.genres.ListGenres(ctx)
	require.NoError(t, err)
	assert.Len(t, genres, 1)
}

func TestCatalogStats_CachedAndInvalidated(t *testing.T) {
	env := setupTestEnv(t)
	ctx := context.Background()

	first, err := env.stats.CatalogStats(ctx)
	require.NoError(t, err)
	assert.Zero(t, first.Books)

	_, err = env.stats.CatalogStats(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, env.metrics.cacheHits)
	assert.Equal(t, 1, env.metrics.cacheMisses)

	// Writes through the services invalidate the cached counts.
	book, _ := env.seedBook(t)
	env.seedPrep(t, book)

	after, err := env.stats.CatalogStats(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, after.Books)
	assert.Equal(t, 1, after.Authors)
	assert.Equal(t, 1, after.Genres)
	assert.Equal(t, 1, after.Preps)

	// Callers cannot corrupt the cached value.
	after.Books = 99
	again, err := env.stats.CatalogStats(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, again.Books)
}

func TestEnsureUser(t *testing.T) {
	env := setupTestEnv(t)
	ctx := context.Background()

	_, err := env.users.EnsureUser(ctx, "user-1", "new@example.com", "")
	require.NoError(t, err)

	u, err := env.users.GetUser(ctx, "user-1")
	require.NoError(t, err)
	assert.Equal(t, "new@example.com", u.Email)
	assert.Equal(t, "Reader", u.DisplayName)

	_, err = env.users.EnsureUser(ctx, " ", "", "")
	assert.ErrorIs(t, err, domainerrors.ErrUnauthorized)
}

func TestReindexAll(t *testing.T) {
	env := setupTestEnv(t)
	ctx := context.Background()
	book, _ := env.seedBook(t)
	env.seedPrep(t, book)

	require.NoError(t, env.search.ReindexAll(ctx))

	count, err := env.search.DocumentCount()
	require.NoError(t, err)
	assert.Equal(t, uint64(2), count)
}
