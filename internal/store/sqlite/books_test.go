package sqlite

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bookprepper/bookprepper-server/internal/domain"
	"github.com/bookprepper/bookprepper-server/internal/store"
)

func TestCreateBook_WithGenres(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	a := createTestAuthor(t, s, "Frank Herbert")
	sf := createTestGenre(t, s, "science-fiction", "Science Fiction")
	cl := createTestGenre(t, s, "classics", "Classics")

	isbn := "9780441013593"
	b := &domain.Book{
		Entity:        domain.Entity{ID: "book-dune"},
		Slug:          "dune",
		Title:         "Dune",
		AuthorID:      a.ID,
		ISBN:          &isbn,
		Synopsis:      "A desert planet.",
		PublishedYear: 1965,
		Genres:        []domain.Genre{*sf, *cl},
	}
	b.InitTimestamps()
	require.NoError(t, s.CreateBook(ctx, b))

	got, err := s.GetBookBySlug(ctx, "dune")
	require.NoError(t, err)
	assert.Equal(t, "Dune", got.Title)
	require.NotNil(t, got.ISBN)
	assert.Equal(t, isbn, *got.ISBN)
	assert.Equal(t, 1965, got.PublishedYear)
	require.NotNil(t, got.Author)
	assert.Equal(t, "Frank Herbert", got.Author.Name)
	assert.Equal(t, []string{"Classics", "Science Fiction"}, got.GenreNames())
}

func TestCreateBook_DuplicateSlug(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	a := createTestAuthor(t, s, "Someone")

	b1 := &domain.Book{Entity: domain.Entity{ID: "book-1"}, Slug: "same", Title: "One", AuthorID: a.ID}
	b1.InitTimestamps()
	require.NoError(t, s.CreateBook(ctx, b1))

	b2 := &domain.Book{Entity: domain.Entity{ID: "book-2"}, Slug: "same", Title: "Two", AuthorID: a.ID}
	b2.InitTimestamps()
	assert.ErrorIs(t, s.CreateBook(ctx, b2), store.ErrAlreadyExists)

	exists, err := s.SlugExists(ctx, store.SlugBooks, "same")
	require.NoError(t, err)
	assert.True(t, exists)

	exists, err = s.SlugExists(ctx, store.SlugBooks, "other")
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestSlugExists_RejectsUnknownTable(t *testing.T) {
	s := newTestStore(t)
	_, err := s.SlugExists(context.Background(), store.SlugTable("users; DROP TABLE books"), "x")
	assert.Error(t, err)
}

func TestUpdateBook(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	b := createTestBook(t, s, "Original")

	b.Title = "Renamed"
	b.Synopsis = "New synopsis"
	b.Touch()
	require.NoError(t, s.UpdateBook(ctx, b))

	got, err := s.GetBook(ctx, b.ID)
	require.NoError(t, err)
	assert.Equal(t, "Renamed", got.Title)
	assert.Equal(t, "New synopsis", got.Synopsis)

	missing := *b
	missing.ID = "book-missing"
	assert.ErrorIs(t, s.UpdateBook(ctx, &missing), store.ErrNotFound)
}

func TestFindAuthorByName_CaseInsensitive(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	a := createTestAuthor(t, s, "Ursula K. Le Guin")

	got, err := s.FindAuthorByName(ctx, "  ursula k.   LE GUIN ")
	require.NoError(t, err)
	assert.Equal(t, a.ID, got.ID)

	_, err = s.FindAuthorByName(ctx, "Nobody")
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestListBooks_FiltersAndPaginates(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	fantasy := createTestGenre(t, s, "fantasy", "Fantasy")

	titles := []string{"Alpha", "Bravo", "Charlie", "Delta", "Echo"}
	for i, title := range titles {
		b := createTestBook(t, s, title)
		if i%2 == 0 {
			require.NoError(t, s.SetBookGenres(ctx, b.ID, []string{fantasy.ID}))
		}
	}

	page, err := s.ListBooks(ctx, store.BookFilter{PaginationParams: store.PaginationParams{Limit: 2}})
	require.NoError(t, err)
	assert.Equal(t, 5, page.Total)
	require.Len(t, page.Items, 2)
	assert.Equal(t, "Alpha", page.Items[0].Title)
	assert.True(t, page.HasMore)

	page2, err := s.ListBooks(ctx, store.BookFilter{PaginationParams: store.PaginationParams{Limit: 2, Cursor: page.NextCursor}})
	require.NoError(t, err)
	require.Len(t, page2.Items, 2)
	assert.Equal(t, "Charlie", page2.Items[0].Title)

	filtered, err := s.ListBooks(ctx, store.BookFilter{GenreSlug: "fantasy"})
	require.NoError(t, err)
	assert.Equal(t, 3, filtered.Total)
	assert.False(t, filtered.HasMore)
	for _, b := range filtered.Items {
		assert.Equal(t, []string{"Fantasy"}, b.GenreNames())
	}
}

func TestListBooks_InvalidCursor(t *testing.T) {
	s := newTestStore(t)
	_, err := s.ListBooks(context.Background(), store.BookFilter{PaginationParams: store.PaginationParams{Cursor: "!!"}})
	assert.Error(t, err)
}

func TestGenres_LookupsSkipUnknown(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	horror := createTestGenre(t, s, "horror", "Horror")
	createTestGenre(t, s, "romance", "Romance")

	bySlug, err := s.GetGenresBySlugs(ctx, []string{"horror", "missing"})
	require.NoError(t, err)
	require.Len(t, bySlug, 1)
	assert.Equal(t, horror.ID, bySlug[0].ID)

	byID, err := s.GetGenresByIDs(ctx, []string{horror.ID, "genre-missing"})
	require.NoError(t, err)
	require.Len(t, byID, 1)

	all, err := s.ListGenres(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 2)

	_, err = s.GetGenreBySlug(ctx, "missing")
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestSetBookGenres_Replaces(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	b := createTestBook(t, s, "Book")
	g1 := createTestGenre(t, s, "one", "One")
	g2 := createTestGenre(t, s, "two", "Two")

	require.NoError(t, s.SetBookGenres(ctx, b.ID, []string{g1.ID}))
	require.NoError(t, s.SetBookGenres(ctx, b.ID, []string{g2.ID, g2.ID}))

	genres, err := s.GetBookGenres(ctx, b.ID)
	require.NoError(t, err)
	require.Len(t, genres, 1)
	assert.Equal(t, "Two", genres[0].Name)

	require.NoError(t, s.SetBookGenres(ctx, b.ID, nil))
	genres, err = s.GetBookGenres(ctx, b.ID)
	require.NoError(t, err)
	assert.Empty(t, genres)
}
