// Package store defines the persistence contract for the BookPrepper catalog,
// feedback and moderation data.
package store

import (
	"context"
	"time"

	"github.com/bookprepper/bookprepper-server/internal/domain"
)

// SlugTable names a table whose rows carry a unique slug.
type SlugTable string

// Tables with unique slugs.
const (
	SlugAuthors  SlugTable = "authors"
	SlugBooks    SlugTable = "books"
	SlugGenres   SlugTable = "genres"
	SlugKeywords SlugTable = "keywords"
)

// BookFilter narrows book listings.
type BookFilter struct {
	GenreSlug string
	AuthorID  string
	PaginationParams
}

// SuggestionFilter narrows suggestion listings. Empty fields match all.
type SuggestionFilter struct {
	Kind   domain.SuggestionKind
	Status domain.SuggestionStatus
	UserID string
	PaginationParams
}

// ScoreFilter narrows prep score listings used for curator triage.
type ScoreFilter struct {
	MinTotal int
	PaginationParams
}

// Resolution is the terminal state written to a pending suggestion.
type Resolution struct {
	Status     domain.SuggestionStatus
	Note       *string
	ReviewedAt time.Time
}

// UserStore persists readers.
type UserStore interface {
	UpsertUser(ctx context.Context, u *domain.User) error
	GetUser(ctx context.Context, id string) (*domain.User, error)
}

// CatalogStore persists books, authors, genres and keywords.
type CatalogStore interface {
	SlugExists(ctx context.Context, table SlugTable, slug string) (bool, error)

	CreateAuthor(ctx context.Context, a *domain.Author) error
	GetAuthor(ctx context.Context, id string) (*domain.Author, error)
	// FindAuthorByName matches names case-insensitively.
	FindAuthorByName(ctx context.Context, name string) (*domain.Author, error)

	CreateBook(ctx context.Context, b *domain.Book) error
	UpdateBook(ctx context.Context, b *domain.Book) error
	GetBook(ctx context.Context, id string) (*domain.Book, error)
	GetBookBySlug(ctx context.Context, slug string) (*domain.Book, error)
	ListBooks(ctx context.Context, f BookFilter) (PaginatedResult[*domain.Book], error)
	ListAllBooks(ctx context.Context) ([]*domain.Book, error)
	SetBookGenres(ctx context.Context, bookID string, genreIDs []string) error
	GetBookGenres(ctx context.Context, bookID string) ([]domain.Genre, error)

	CreateGenre(ctx context.Context, g *domain.Genre) error
	GetGenreBySlug(ctx context.Context, slug string) (*domain.Genre, error)
	// GetGenresBySlugs returns the genres that exist; unknown slugs are skipped.
	GetGenresBySlugs(ctx context.Context, slugs []string) ([]domain.Genre, error)
	// GetGenresByIDs returns the genres that exist; unknown ids are skipped.
	GetGenresByIDs(ctx context.Context, ids []string) ([]domain.Genre, error)
	ListGenres(ctx context.Context) ([]domain.Genre, error)

	CreateKeyword(ctx context.Context, k *domain.Keyword) error
	GetKeywordBySlug(ctx context.Context, slug string) (*domain.Keyword, error)
	RenameKeyword(ctx context.Context, id, name string, at time.Time) error
}

// PrepStore persists preps.
type PrepStore interface {
	CreatePrep(ctx context.Context, p *domain.Prep) error
	UpdatePrep(ctx context.Context, p *domain.Prep) error
	DeletePrep(ctx context.Context, id string) error
	GetPrep(ctx context.Context, id string) (*domain.Prep, error)
	ListPrepsByBook(ctx context.Context, bookID string) ([]*domain.Prep, error)
	ListAllPreps(ctx context.Context) ([]*domain.Prep, error)
	ListPrepIDs(ctx context.Context) ([]string, error)
	SetPrepKeywords(ctx context.Context, prepID string, keywordIDs []string) error
}

// FeedbackStore persists feedback events, legacy votes and cached scores.
type FeedbackStore interface {
	CreateFeedbackEvent(ctx context.Context, e *domain.FeedbackEvent) error
	// AggregateFeedback counts a prep's events grouped by dimension and value.
	AggregateFeedback(ctx context.Context, prepID string) ([]domain.FeedbackAggregate, error)

	UpsertLegacyVote(ctx context.Context, v *domain.LegacyVote) error
	GetLegacyVote(ctx context.Context, prepID, userID string) (*domain.LegacyVote, error)

	UpsertPromptScore(ctx context.Context, s *domain.PromptScore) error
	GetPromptScore(ctx context.Context, prepID string) (*domain.PromptScore, error)
	// GetPromptScores returns cached rows keyed by prep id; never-scored preps are absent.
	GetPromptScores(ctx context.Context, prepIDs []string) (map[string]*domain.PromptScore, error)
	ListPromptScores(ctx context.Context, f ScoreFilter) (PaginatedResult[*domain.PromptScore], error)
}

// SuggestionStore persists suggestions of every kind.
type SuggestionStore interface {
	CreateSuggestion(ctx context.Context, s *domain.Suggestion) error
	GetSuggestion(ctx context.Context, kind domain.SuggestionKind, id string) (*domain.Suggestion, error)
	ListSuggestions(ctx context.Context, f SuggestionFilter) (PaginatedResult[*domain.Suggestion], error)
	// ResolveSuggestion moves a pending suggestion to a terminal state.
	// Returns ErrNotFound if absent and ErrNotPending if already resolved.
	ResolveSuggestion(ctx context.Context, kind domain.SuggestionKind, id string, r Resolution) error
}

// StatsStore computes catalog-wide counts.
type StatsStore interface {
	CatalogStats(ctx context.Context) (*domain.CatalogStats, error)
}

// Querier is every operation that can run either directly or inside a
// transaction.
type Querier interface {
	UserStore
	CatalogStore
	PrepStore
	FeedbackStore
	SuggestionStore
	StatsStore
}

// Store is a Querier that can also open transactions.
type Store interface {
	Querier
	// WithTx runs fn in a transaction. The transaction commits when fn
	// returns nil and rolls back otherwise.
	WithTx(ctx context.Context, fn func(q Querier) error) error
	Close() error
}
