package service

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/bookprepper/bookprepper-server/internal/catalog"
	"github.com/bookprepper/bookprepper-server/internal/domain"
	"github.com/bookprepper/bookprepper-server/internal/id"
	"github.com/bookprepper/bookprepper-server/internal/store"
	"github.com/bookprepper/bookprepper-server/internal/validation"
)

// PrepService orchestrates admin prep edits.
type PrepService struct {
	store     store.Store
	search    *SearchService
	stats     *StatsService
	logger    *slog.Logger
	validator *validation.Validator
}

// NewPrepService creates a new prep service. search and stats may be nil.
func NewPrepService(s store.Store, search *SearchService, stats *StatsService, logger *slog.Logger) *PrepService {
	return &PrepService{
		store:     s,
		search:    search,
		stats:     stats,
		logger:    logger,
		validator: validation.New(),
	}
}

// CreatePrepRequest contains fields for a new prep.
type CreatePrepRequest struct {
	Heading   string   `json:"heading" validate:"notblank,max=160"`
	Summary   string   `json:"summary" validate:"notblank,max=2000"`
	WatchFor  *string  `json:"watch_for,omitempty" validate:"omitempty,max=2000"`
	ColorHint *string  `json:"color_hint,omitempty" validate:"omitempty,max=32"`
	Keywords  []string `json:"keywords,omitempty" validate:"max=20,dive,max=60"`
}

// CreatePrep attaches a prep to a book, upserting its keywords.
func (s *PrepService) CreatePrep(ctx context.Context, bookID string, req CreatePrepRequest) (*domain.Prep, error) {
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	var (
		prep *domain.Prep
		book *domain.Book
	)
	err := s.store.WithTx(ctx, func(q store.Querier) error {
		b, err := q.GetBook(ctx, bookID)
		if err != nil {
			return notFound(err, "book", bookID)
		}
		keywords, err := catalog.UpsertKeywords(ctx, q, req.Keywords, now)
		if err != nil {
			return err
		}
		prepID, err := id.Generate(id.PrefixPrep)
		if err != nil {
			return err
		}
		prep = &domain.Prep{
			Entity:    domain.Entity{ID: prepID, CreatedAt: now, UpdatedAt: now},
			BookID:    b.ID,
			Heading:   strings.TrimSpace(req.Heading),
			Summary:   strings.TrimSpace(req.Summary),
			WatchFor:  trimmedNote(req.WatchFor),
			ColorHint: trimmedNote(req.ColorHint),
			Keywords:  keywords,
		}
		book = b
		return q.CreatePrep(ctx, prep)
	})
	if err != nil {
		return nil, err
	}

	s.stats.Invalidate()
	s.search.indexEffect(ctx, book, prep)
	s.logger.Info("prep created", "id", prep.ID, "book_id", prep.BookID)
	return prep, nil
}

// UpdatePrepRequest contains the prep fields an admin may change. Nil
// fields are left alone; Keywords, when set, replaces the keyword set.
type UpdatePrepRequest struct {
	Heading   *string   `json:"heading,omitempty" validate:"omitempty,notblank,max=160"`
	Summary   *string   `json:"summary,omitempty" validate:"omitempty,notblank,max=2000"`
	WatchFor  *string   `json:"watch_for,omitempty" validate:"omitempty,max=2000"`
	ColorHint *string   `json:"color_hint,omitempty" validate:"omitempty,max=32"`
	Keywords  *[]string `json:"keywords,omitempty" validate:"omitempty,max=20,dive,max=60"`
}

// UpdatePrep changes a prep's text and optionally its keywords.
func (s *PrepService) UpdatePrep(ctx context.Context, prepID string, req UpdatePrepRequest) (*domain.Prep, error) {
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	var prep *domain.Prep
	err := s.store.WithTx(ctx, func(q store.Querier) error {
		p, err := q.GetPrep(ctx, prepID)
		if err != nil {
			return notFound(err, "prep", prepID)
		}

		if req.Heading != nil {
			p.Heading = strings.TrimSpace(*req.Heading)
		}
		if req.Summary != nil {
			p.Summary = strings.TrimSpace(*req.Summary)
		}
		if req.WatchFor != nil {
			p.WatchFor = trimmedNote(req.WatchFor)
		}
		if req.ColorHint != nil {
			p.ColorHint = trimmedNote(req.ColorHint)
		}
		p.UpdatedAt = now
		if err := q.UpdatePrep(ctx, p); err != nil {
			return notFound(err, "prep", prepID)
		}

		if req.Keywords != nil {
			keywords, err := catalog.UpsertKeywords(ctx, q, *req.Keywords, now)
			if err != nil {
				return err
			}
			if err := q.SetPrepKeywords(ctx, p.ID, catalog.KeywordIDs(keywords)); err != nil {
				return err
			}
			p.Keywords = keywords
		}
		prep = p
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.search.indexEffect(ctx, nil, prep)
	s.logger.Info("prep updated", "id", prep.ID)
	return prep, nil
}

// DeletePrep removes a prep together with its feedback, votes and score.
func (s *PrepService) DeletePrep(ctx context.Context, prepID string) error {
	if err := s.store.DeletePrep(ctx, prepID); err != nil {
		return notFound(err, "prep", prepID)
	}

	s.stats.Invalidate()
	if s.search != nil {
		if err := s.search.DeletePrep(ctx, prepID); err != nil {
			s.logger.Warn("failed to remove prep from index", "id", prepID, "error", err)
		}
	}
	s.logger.Info("prep deleted", "id", prepID)
	return nil
}
