package service

import (
	"context"
	"log/slog"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/bookprepper/bookprepper-server/internal/cache"
	"github.com/bookprepper/bookprepper-server/internal/domain"
	"github.com/bookprepper/bookprepper-server/internal/moderation"
	"github.com/bookprepper/bookprepper-server/internal/scoring"
	"github.com/bookprepper/bookprepper-server/internal/search"
	"github.com/bookprepper/bookprepper-server/internal/store/sqlite"
	"github.com/stretchr/testify/require"
)

// recorder collects metric calls in memory.
type recorder struct {
	mu          sync.Mutex
	feedback    map[domain.Dimension]int
	votes       map[domain.VoteValue]int
	cacheHits   int
	cacheMisses int
}

func newRecorder() *recorder {
	return &recorder{
		feedback: make(map[domain.Dimension]int),
		votes:    make(map[domain.VoteValue]int),
	}
}

func (r *recorder) RecordFeedback(d domain.Dimension, _ domain.VoteValue) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.feedback[d]++
}

func (r *recorder) RecordLegacyVote(v domain.VoteValue) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.votes[v]++
}

func (r *recorder) RecordStatsCacheLookup(hit bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if hit {
		r.cacheHits++
	} else {
		r.cacheMisses++
	}
}

// testEnv wires every service over one temporary database.
type testEnv struct {
	store       *sqlite.Store
	metrics     *recorder
	search      *SearchService
	stats       *StatsService
	books       *BookService
	preps       *PrepService
	genres      *GenreService
	feedback    *FeedbackService
	suggestions *SuggestionService
	users       *UserService
}

func setupTestEnv(t *testing.T) *testEnv {
	t.Helper()

	logger := slog.New(slog.DiscardHandler)

	s, err := sqlite.Open(filepath.Join(t.TempDir(), "test.db"), logger)
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })

	index, err := search.NewSearchIndex(search.Options{Logger: logger})
	require.NoError(t, err)
	t.Cleanup(func() { _ = index.Close() })

	rec := newRecorder()
	searchSvc := NewSearchService(index, s, logger)
	stats := NewStatsService(s, cache.NewTTL(time.Hour), rec, logger)
	engine := scoring.NewEngine(s, logger, nil)
	workflow := moderation.NewWorkflow(s, logger, nil)

	env := &testEnv{
		store:       s,
		metrics:     rec,
		search:      searchSvc,
		stats:       stats,
		books:       NewBookService(s, searchSvc, stats, logger),
		preps:       NewPrepService(s, searchSvc, stats, logger),
		genres:      NewGenreService(s, stats, logger),
		feedback:    NewFeedbackService(s, engine, rec, stats, logger),
		suggestions: NewSuggestionService(s, workflow, searchSvc, stats, logger),
		users:       NewUserService(s, logger),
	}

	_, err = env.users.EnsureUser(context.Background(), "user-1", "reader@example.com", "Reader")
	require.NoError(t, err)

	return env
}

// seedBook creates a genre and a book by Mary Shelley through the services.
func (e *testEnv) seedBook(t *testing.T) (*domain.Book, domain.Genre) {
	t.Helper()
	ctx := context.Background()

	g, err := e.genres.CreateGenre(ctx, CreateGenreRequest{Name: "Horror"})
	require.NoError(t, err)

	book, err := e.books.CreateBook(ctx, CreateBookRequest{
		Title:         "Frankenstein",
		AuthorName:    "Mary Shelley",
		PublishedYear: 1818,
		GenreIDs:      []string{g.ID},
	})
	require.NoError(t, err)
	return book, *g
}

// seedPrep attaches a prep to book.
func (e *testEnv) seedPrep(t *testing.T, book *domain.Book) *domain.Prep {
	t.Helper()

	p, err := e.preps.CreatePrep(context.Background(), book.ID, CreatePrepRequest{
		Heading:  "Nested narrators",
		Summary:  "Three voices tell the story in layers.",
		Keywords: []string{"Frame story"},
	})
	require.NoError(t, err)
	return p
}

func ptr[T any](v T) *T { return &v }
