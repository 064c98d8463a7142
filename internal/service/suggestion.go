package service

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/bookprepper/bookprepper-server/internal/domain"
	domainerrors "github.com/bookprepper/bookprepper-server/internal/errors"
	"github.com/bookprepper/bookprepper-server/internal/id"
	"github.com/bookprepper/bookprepper-server/internal/moderation"
	"github.com/bookprepper/bookprepper-server/internal/store"
	"github.com/bookprepper/bookprepper-server/internal/validation"
)

// SuggestionService accepts reader suggestions and hands admin decisions
// to the moderation workflow.
type SuggestionService struct {
	store     store.Store
	workflow  *moderation.Workflow
	search    *SearchService
	stats     *StatsService
	logger    *slog.Logger
	validator *validation.Validator
}

// NewSuggestionService creates a new suggestion service. search and stats may be nil.
func NewSuggestionService(
	s store.Store,
	workflow *moderation.Workflow,
	search *SearchService,
	stats *StatsService,
	logger *slog.Logger,
) *SuggestionService {
	return &SuggestionService{
		store:     s,
		workflow:  workflow,
		search:    search,
		stats:     stats,
		logger:    logger,
		validator: validation.New(),
	}
}

// BookSuggestionRequest proposes a new book.
type BookSuggestionRequest struct {
	Title      string   `json:"title" validate:"notblank,max=300"`
	AuthorName string   `json:"author_name" validate:"notblank,max=200"`
	ISBN       *string  `json:"isbn,omitempty" validate:"omitempty,max=32"`
	Synopsis   *string  `json:"synopsis,omitempty" validate:"omitempty,max=5000"`
	GenreIdeas []string `json:"genre_ideas,omitempty" validate:"max=10,dive,max=60"`
	Notes      *string  `json:"notes,omitempty" validate:"omitempty,max=1000"`
}

// MetadataSuggestionRequest proposes a new synopsis or genre set for a book.
type MetadataSuggestionRequest struct {
	BookID     string   `json:"book_id" validate:"notblank"`
	Synopsis   *string  `json:"synopsis,omitempty" validate:"omitempty,max=5000"`
	GenreSlugs []string `json:"genre_slugs,omitempty" validate:"max=10,dive,max=60"`
	Notes      *string  `json:"notes,omitempty" validate:"omitempty,max=1000"`
}

// PrepSuggestionRequest proposes a new prep for a book.
type PrepSuggestionRequest struct {
	BookID       string   `json:"book_id" validate:"notblank"`
	Title        string   `json:"title" validate:"notblank,max=160"`
	Description  string   `json:"description" validate:"notblank,max=2000"`
	KeywordHints []string `json:"keyword_hints,omitempty" validate:"max=10,dive,max=60"`
}

// SuggestBook files a new-book suggestion.
func (s *SuggestionService) SuggestBook(ctx context.Context, userID string, req BookSuggestionRequest) (*domain.Suggestion, error) {
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}
	return s.create(ctx, userID, domain.BookProposal{
		Title:      strings.TrimSpace(req.Title),
		AuthorName: strings.TrimSpace(req.AuthorName),
		ISBN:       trimmedNote(req.ISBN),
		Synopsis:   trimmedNote(req.Synopsis),
		GenreIdeas: compact(req.GenreIdeas),
		Notes:      trimmedNote(req.Notes),
	})
}

// SuggestMetadata files a metadata suggestion for an existing book. At
// least one of synopsis and genre slugs must be given.
func (s *SuggestionService) SuggestMetadata(ctx context.Context, userID string, req MetadataSuggestionRequest) (*domain.Suggestion, error) {
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}
	synopsis := trimmedNote(req.Synopsis)
	slugs := compact(req.GenreSlugs)
	if synopsis == nil && len(slugs) == 0 {
		return nil, domainerrors.ValidationWithDetails("nothing to change", map[string]string{
			"synopsis": "synopsis or genre_slugs is required",
		})
	}
	if err := s.requireBook(ctx, req.BookID); err != nil {
		return nil, err
	}
	return s.create(ctx, userID, domain.MetadataProposal{
		BookID:     strings.TrimSpace(req.BookID),
		Synopsis:   synopsis,
		GenreSlugs: slugs,
		Notes:      trimmedNote(req.Notes),
	})
}

// SuggestPrep files a new-prep suggestion for an existing book.
func (s *SuggestionService) SuggestPrep(ctx context.Context, userID string, req PrepSuggestionRequest) (*domain.Suggestion, error) {
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}
	if err := s.requireBook(ctx, req.BookID); err != nil {
		return nil, err
	}
	return s.create(ctx, userID, domain.PrepProposal{
		BookID:       strings.TrimSpace(req.BookID),
		Title:        strings.TrimSpace(req.Title),
		Description:  strings.TrimSpace(req.Description),
		KeywordHints: compact(req.KeywordHints),
	})
}

func (s *SuggestionService) create(ctx context.Context, userID string, p domain.Proposal) (*domain.Suggestion, error) {
	suggestionID, err := id.Generate(id.PrefixSuggestion)
	if err != nil {
		return nil, err
	}
	sug := &domain.Suggestion{
		ID:        suggestionID,
		UserID:    userID,
		Status:    domain.StatusPending,
		CreatedAt: time.Now().UTC(),
		Proposal:  p,
	}
	if err := s.store.CreateSuggestion(ctx, sug); err != nil {
		return nil, err
	}

	s.stats.Invalidate()
	s.logger.Info("suggestion submitted", "kind", sug.Kind(), "id", sug.ID, "user_id", userID)
	return sug, nil
}

// ListMine returns the reader's own suggestions of every kind, newest first.
func (s *SuggestionService) ListMine(ctx context.Context, userID string, page store.PaginationParams) (store.PaginatedResult[*domain.Suggestion], error) {
	res, err := s.store.ListSuggestions(ctx, store.SuggestionFilter{UserID: userID, PaginationParams: page})
	if err != nil {
		return store.PaginatedResult[*domain.Suggestion]{}, invalidCursor(err)
	}
	return res, nil
}

// List returns suggestions of one kind for moderators, optionally narrowed
// to one status.
func (s *SuggestionService) List(
	ctx context.Context,
	kind domain.SuggestionKind,
	status domain.SuggestionStatus,
	page store.PaginationParams,
) (store.PaginatedResult[*domain.Suggestion], error) {
	if _, err := domain.ParseSuggestionKind(string(kind)); err != nil {
		return store.PaginatedResult[*domain.Suggestion]{}, domainerrors.ValidationWithDetails(err.Error(), map[string]string{
			"kind": "must be one of book, metadata, prep",
		})
	}
	switch status {
	case "", domain.StatusPending, domain.StatusApproved, domain.StatusRejected:
	default:
		return store.PaginatedResult[*domain.Suggestion]{}, domainerrors.ValidationWithDetails("unknown status", map[string]string{
			"status": "must be one of PENDING, APPROVED, REJECTED",
		})
	}

	res, err := s.store.ListSuggestions(ctx, store.SuggestionFilter{Kind: kind, Status: status, PaginationParams: page})
	if err != nil {
		return store.PaginatedResult[*domain.Suggestion]{}, invalidCursor(err)
	}
	return res, nil
}

// ModerationRequest carries an optional note to the submitter.
type ModerationRequest struct {
	Note *string `json:"note,omitempty" validate:"omitempty,max=1000"`
}

// Approve accepts a pending suggestion and applies its catalog change.
func (s *SuggestionService) Approve(ctx context.Context, kind domain.SuggestionKind, suggestionID string, req ModerationRequest) (*moderation.Result, error) {
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}
	res, err := s.workflow.Approve(ctx, kind, suggestionID, trimmedNote(req.Note))
	if err != nil {
		return nil, err
	}

	s.stats.Invalidate()
	s.search.indexEffect(ctx, res.Book, res.Prep)
	return res, nil
}

// Reject declines a pending suggestion.
func (s *SuggestionService) Reject(ctx context.Context, kind domain.SuggestionKind, suggestionID string, req ModerationRequest) (*moderation.Result, error) {
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}
	res, err := s.workflow.Reject(ctx, kind, suggestionID, trimmedNote(req.Note))
	if err != nil {
		return nil, err
	}

	s.stats.Invalidate()
	return res, nil
}

func (s *SuggestionService) requireBook(ctx context.Context, bookID string) error {
	bookID = strings.TrimSpace(bookID)
	_, err := s.store.GetBook(ctx, bookID)
	return notFound(err, "book", bookID)
}

// compact trims values and drops empty ones.
func compact(values []string) []string {
	var out []string
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	return out
}
