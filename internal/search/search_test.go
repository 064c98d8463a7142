package search

import (
	"context"
	"testing"
	"time"

	"github.com/bookprepper/bookprepper-server/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupTestIndex(t *testing.T) *SearchIndex {
	t.Helper()

	index, err := NewSearchIndex(Options{})
	require.NoError(t, err)
	t.Cleanup(func() { _ = index.Close() })

	return index
}

func seedCatalog(t *testing.T, index *SearchIndex) {
	t.Helper()

	created := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	watchFor := "The creature's narration frames the middle chapters."

	books := []*domain.Book{
		{
			Entity:        domain.Entity{ID: "book-1", CreatedAt: created, UpdatedAt: created},
			Slug:          "frankenstein",
			Title:         "Frankenstein",
			Synopsis:      "A young scientist creates a living being.",
			PublishedYear: 1818,
			Author:        &domain.Author{Name: "Mary Shelley"},
			Genres:        []domain.Genre{{Slug: "horror"}, {Slug: "gothic"}},
		},
		{
			Entity:        domain.Entity{ID: "book-2", CreatedAt: created.Add(time.Hour), UpdatedAt: created},
			Slug:          "dracula",
			Title:         "Dracula",
			Synopsis:      "An epistolary vampire novel.",
			PublishedYear: 1897,
			Author:        &domain.Author{Name: "Bram Stoker"},
			Genres:        []domain.Genre{{Slug: "horror"}},
		},
		{
			Entity:        domain.Entity{ID: "book-3", CreatedAt: created.Add(2 * time.Hour), UpdatedAt: created},
			Slug:          "persuasion",
			Title:         "Persuasion",
			PublishedYear: 1817,
			Author:        &domain.Author{Name: "Jane Austen"},
			Genres:        []domain.Genre{{Slug: "romance"}},
		},
	}

	prep := &domain.Prep{
		Entity:   domain.Entity{ID: "prep-1", CreatedAt: created, UpdatedAt: created},
		BookID:   "book-1",
		Heading:  "Nested narrators",
		Summary:  "Three voices tell the story in layers.",
		WatchFor: &watchFor,
		Keywords: []domain.Keyword{{Slug: "frame-story"}, {Slug: "unreliable-narrator"}},
	}

	docs := make([]*SearchDocument, 0, len(books)+1)
	for _, b := range books {
		docs = append(docs, BookToSearchDocument(b))
	}
	docs = append(docs, PrepToSearchDocument(prep, "Frankenstein"))

	require.NoError(t, index.IndexDocuments(docs))
}

func TestNewSearchIndex(t *testing.T) {
	index := setupTestIndex(t)

	count, err := index.DocumentCount()
	require.NoError(t, err)
	assert.Equal(t, uint64(0), count)
}

func TestSearchIndex_Reset(t *testing.T) {
	index := setupTestIndex(t)
	seedCatalog(t, index)

	count, err := index.DocumentCount()
	require.NoError(t, err)
	require.NotZero(t, count)

	require.NoError(t, index.Reset())
	count, err = index.DocumentCount()
	require.NoError(t, err)
	assert.Zero(t, count)

	require.NoError(t, index.IndexDocument(&SearchDocument{ID: "book-1", Type: DocTypeBook, Name: "Dracula"}))
	count, err = index.DocumentCount()
	require.NoError(t, err)
	assert.Equal(t, uint64(1), count)
}

func TestSearchIndex_DeleteDocument(t *testing.T) {
	index := setupTestIndex(t)
	seedCatalog(t, index)

	require.NoError(t, index.DeleteDocument("book-2"))

	count, err := index.DocumentCount()
	require.NoError(t, err)
	assert.Equal(t, uint64(3), count)
}

func TestSearch_TitleMatch(t *testing.T) {
	index := setupTestIndex(t)
	seedCatalog(t, index)

	params := DefaultSearchParams()
	params.Query = "dracula"

	result, err := index.Search(context.Background(), params)
	require.NoError(t, err)
	require.NotEmpty(t, result.Hits)

	top := result.Hits[0]
	assert.Equal(t, "book-2", top.ID)
	assert.Equal(t, DocTypeBook, top.Type)
	assert.Equal(t, "Dracula", top.Name)
	assert.Equal(t, "dracula", top.Slug)
	assert.Equal(t, "Bram Stoker", top.Author)
}

func TestSearch_AuthorMatch(t *testing.T) {
	index := setupTestIndex(t)
	seedCatalog(t, index)

	params := DefaultSearchParams()
	params.Query = "austen"

	result, err := index.Search(context.Background(), params)
	require.NoError(t, err)
	require.Len(t, result.Hits, 1)
	assert.Equal(t, "book-3", result.Hits[0].ID)
}

func TestSearch_FuzzyTitle(t *testing.T) {
	index := setupTestIndex(t)
	seedCatalog(t, index)

	params := DefaultSearchParams()
	params.Query = "drakula"

	result, err := index.Search(context.Background(), params)
	require.NoError(t, err)
	require.NotEmpty(t, result.Hits)
	assert.Equal(t, "book-2", result.Hits[0].ID)
}

func TestSearch_PrepByKeyword(t *testing.T) {
	index := setupTestIndex(t)
	seedCatalog(t, index)

	params := DefaultSearchParams()
	params.Types = []DocType{DocTypePrep}
	params.Keywords = []string{"frame-story"}

	result, err := index.Search(context.Background(), params)
	require.NoError(t, err)
	require.Len(t, result.Hits, 1)

	hit := result.Hits[0]
	assert.Equal(t, "prep-1", hit.ID)
	assert.Equal(t, DocTypePrep, hit.Type)
	assert.Equal(t, "book-1", hit.BookID)
	assert.Equal(t, "Frankenstein", hit.BookTitle)
}

func TestSearch_GenreFilter(t *testing.T) {
	index := setupTestIndex(t)
	seedCatalog(t, index)

	params := DefaultSearchParams()
	params.GenreSlugs = []string{"horror"}

	result, err := index.Search(context.Background(), params)
	require.NoError(t, err)
	assert.Equal(t, uint64(2), result.Total)
}

func TestSearch_YearRange(t *testing.T) {
	index := setupTestIndex(t)
	seedCatalog(t, index)

	params := DefaultSearchParams()
	params.MinYear = 1800
	params.MaxYear = 1850

	result, err := index.Search(context.Background(), params)
	require.NoError(t, err)

	ids := make([]string, 0, len(result.Hits))
	for _, h := range result.Hits {
		ids = append(ids, h.ID)
	}
	assert.ElementsMatch(t, []string{"book-1", "book-3"}, ids)
}

func TestSearch_Facets(t *testing.T) {
	index := setupTestIndex(t)
	seedCatalog(t, index)

	result, err := index.Search(context.Background(), DefaultSearchParams())
	require.NoError(t, err)
	assert.Equal(t, uint64(4), result.Total)

	types := make(map[string]int)
	for _, f := range result.Facets.Types {
		types[f.Value] = f.Count
	}
	assert.Equal(t, 3, types["book"])
	assert.Equal(t, 1, types["prep"])

	genres := make(map[string]int)
	for _, f := range result.Facets.Genres {
		genres[f.Value] = f.Count
	}
	assert.Equal(t, 2, genres["horror"])
	assert.Equal(t, 1, genres["romance"])
}

func TestSearch_SortRecent(t *testing.T) {
	index := setupTestIndex(t)
	seedCatalog(t, index)

	params := DefaultSearchParams()
	params.Types = []DocType{DocTypeBook}
	params.SortBy = "recent"

	result, err := index.Search(context.Background(), params)
	require.NoError(t, err)
	require.Len(t, result.Hits, 3)
	assert.Equal(t, "book-3", result.Hits[0].ID)
	assert.Equal(t, "book-1", result.Hits[2].ID)
}

func TestSearch_Pagination(t *testing.T) {
	index := setupTestIndex(t)
	seedCatalog(t, index)

	params := DefaultSearchParams()
	params.Types = []DocType{DocTypeBook}
	params.SortBy = "recent"
	params.Limit = 2
	params.Offset = 2

	result, err := index.Search(context.Background(), params)
	require.NoError(t, err)
	assert.Equal(t, uint64(3), result.Total)
	require.Len(t, result.Hits, 1)
	assert.Equal(t, "book-1", result.Hits[0].ID)
}

func TestPrepToSearchDocument(t *testing.T) {
	watch := "Watch the letters."
	p := &domain.Prep{
		Entity:   domain.Entity{ID: "prep-9"},
		BookID:   "book-9",
		Heading:  "Letters",
		Summary:  "Told in letters.",
		WatchFor: &watch,
		Keywords: []domain.Keyword{{Slug: "epistolary", Name: "Epistolary"}},
	}

	doc := PrepToSearchDocument(p, "Dracula")
	assert.Equal(t, DocTypePrep, doc.Type)
	assert.Equal(t, "Told in letters.\nWatch the letters.", doc.Description)
	assert.Equal(t, []string{"epistolary"}, doc.Keywords)

	m := doc.ToMap()
	assert.Equal(t, "Dracula", m["book_title"])
	assert.NotContains(t, m, "slug")
}
