package catalog

import (
	"context"
	"log/slog"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bookprepper/bookprepper-server/internal/domain"
	domainerrors "github.com/bookprepper/bookprepper-server/internal/errors"
	"github.com/bookprepper/bookprepper-server/internal/store"
	"github.com/bookprepper/bookprepper-server/internal/store/sqlite"
)

var testTime = time.Date(2024, 7, 1, 12, 0, 0, 0, time.UTC)

func newTestStore(t *testing.T) *sqlite.Store {
	t.Helper()
	s, err := sqlite.Open(filepath.Join(t.TempDir(), "test.db"), slog.New(slog.DiscardHandler))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func seedGenre(t *testing.T, s store.Store, name string) *domain.Genre {
	t.Helper()
	g, err := NewGenre(name, "", testTime)
	require.NoError(t, err)
	g.Slug, err = EnsureUniqueSlug(context.Background(), s, store.SlugGenres, name)
	require.NoError(t, err)
	require.NoError(t, s.CreateGenre(context.Background(), g))
	return g
}

func TestEnsureUniqueSlug_AppendsCounter(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	seedGenre(t, s, "Science Fiction")
	slug, err := EnsureUniqueSlug(ctx, s, store.SlugGenres, "Science Fiction")
	require.NoError(t, err)
	assert.Equal(t, "science-fiction-2", slug)

	seedGenre(t, s, "Science Fiction")
	slug, err = EnsureUniqueSlug(ctx, s, store.SlugGenres, "science fiction!")
	require.NoError(t, err)
	assert.Equal(t, "science-fiction-3", slug)

	slug, err = EnsureUniqueSlug(ctx, s, store.SlugGenres, "???")
	require.NoError(t, err)
	assert.Equal(t, "item", slug)
}

func TestResolveAuthor(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	created, err := ResolveAuthor(ctx, s, "", "  Ted   Chiang ", testTime)
	require.NoError(t, err)
	assert.Equal(t, "Ted Chiang", created.Name)
	assert.Equal(t, "ted-chiang", created.Slug)

	again, err := ResolveAuthor(ctx, s, "", "TED CHIANG", testTime)
	require.NoError(t, err)
	assert.Equal(t, created.ID, again.ID)

	byID, err := ResolveAuthor(ctx, s, created.ID, "ignored", testTime)
	require.NoError(t, err)
	assert.Equal(t, created.ID, byID.ID)

	_, err = ResolveAuthor(ctx, s, "author-missing", "", testTime)
	assert.ErrorIs(t, err, domainerrors.ErrNotFound)

	_, err = ResolveAuthor(ctx, s, "", "   ", testTime)
	assert.ErrorIs(t, err, domainerrors.ErrValidation)
}

func TestUpsertKeywords(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	first, err := UpsertKeywords(ctx, s, []string{"Time Travel", " ", "time travel", "Grief"}, testTime)
	require.NoError(t, err)
	require.Len(t, first, 2)
	assert.Equal(t, "time-travel", first[0].Slug)
	assert.Equal(t, "grief", first[1].Slug)

	later := testTime.Add(time.Hour)
	second, err := UpsertKeywords(ctx, s, []string{"TIME TRAVEL"}, later)
	require.NoError(t, err)
	require.Len(t, second, 1)
	assert.Equal(t, first[0].ID, second[0].ID)
	assert.Equal(t, "TIME TRAVEL", second[0].Name)

	stored, err := s.GetKeywordBySlug(ctx, "time-travel")
	require.NoError(t, err)
	assert.Equal(t, "TIME TRAVEL", stored.Name)
}

func TestUpsertKeywords_SkipsUnsluggable(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	got, err := UpsertKeywords(ctx, s, []string{"!!!", "--", "Grief"}, testTime)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "grief", got[0].Slug)

	_, err = s.GetKeywordBySlug(ctx, "item")
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestExistingGenresBySlugs_DropsUnknown(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	horror := seedGenre(t, s, "Horror")

	genres, err := ExistingGenresBySlugs(ctx, s, []string{"horror", "does-not-exist", ""})
	require.NoError(t, err)
	require.Len(t, genres, 1)
	assert.Equal(t, horror.ID, genres[0].ID)

	none, err := ExistingGenresBySlugs(ctx, s, []string{"nope"})
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestValidateGenreIDs_Strict(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	horror := seedGenre(t, s, "Horror")

	genres, err := ValidateGenreIDs(ctx, s, []string{horror.ID})
	require.NoError(t, err)
	require.Len(t, genres, 1)

	_, err = ValidateGenreIDs(ctx, s, []string{horror.ID, "genre-b", "genre-a"})
	require.ErrorIs(t, err, domainerrors.ErrValidation)

	var de *domainerrors.Error
	require.ErrorAs(t, err, &de)
	assert.Equal(t, map[string]string{"genre_ids": "unknown: genre-a, genre-b"}, de.Details)

	empty, err := ValidateGenreIDs(ctx, s, nil)
	require.NoError(t, err)
	assert.Empty(t, empty)
}

func TestResolveOrCreateGenres(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	horror := seedGenre(t, s, "Horror")

	genres, err := ResolveOrCreateGenres(ctx, s, []string{"horror", "Gothic Romance", "!!!", "gothic romance"}, testTime)
	require.NoError(t, err)
	require.Len(t, genres, 2)
	assert.Equal(t, horror.ID, genres[0].ID)
	assert.Equal(t, "gothic-romance", genres[1].Slug)
	assert.Equal(t, "Gothic Romance", genres[1].Name)

	all, err := s.ListGenres(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 2)
}

func TestResolveOrCreateGenres_Aliases(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	scifi := seedGenre(t, s, "Science Fiction")

	genres, err := ResolveOrCreateGenres(ctx, s, []string{"Sci-Fi", "YA"}, testTime)
	require.NoError(t, err)
	require.Len(t, genres, 2)
	assert.Equal(t, scifi.ID, genres[0].ID)
	assert.Equal(t, "young-adult", genres[1].Slug)
	assert.Equal(t, "Young Adult", genres[1].Name)
}

func TestIDHelpers(t *testing.T) {
	assert.Equal(t, []string{"g1", "g2"}, GenreIDs([]domain.Genre{{Entity: domain.Entity{ID: "g1"}}, {Entity: domain.Entity{ID: "g2"}}}))
	assert.Equal(t, []string{"k1"}, KeywordIDs([]domain.Keyword{{Entity: domain.Entity{ID: "k1"}}}))
	assert.Empty(t, GenreIDs(nil))
}
