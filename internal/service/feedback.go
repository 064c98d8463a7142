package service

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/bookprepper/bookprepper-server/internal/domain"
	"github.com/bookprepper/bookprepper-server/internal/id"
	"github.com/bookprepper/bookprepper-server/internal/scoring"
	"github.com/bookprepper/bookprepper-server/internal/store"
	"github.com/bookprepper/bookprepper-server/internal/validation"
)

// FeedbackMetrics records reader feedback.
type FeedbackMetrics interface {
	RecordFeedback(d domain.Dimension, v domain.VoteValue)
	RecordLegacyVote(v domain.VoteValue)
}

// FeedbackService records reader feedback on preps and keeps their cached
// scores current.
type FeedbackService struct {
	store     store.Store
	engine    *scoring.Engine
	metrics   FeedbackMetrics
	stats     *StatsService
	logger    *slog.Logger
	validator *validation.Validator
}

// NewFeedbackService creates a new feedback service. metrics and stats may be nil.
func NewFeedbackService(
	s store.Store,
	engine *scoring.Engine,
	metrics FeedbackMetrics,
	stats *StatsService,
	logger *slog.Logger,
) *FeedbackService {
	return &FeedbackService{
		store:     s,
		engine:    engine,
		metrics:   metrics,
		stats:     stats,
		logger:    logger,
		validator: validation.New(),
	}
}

// SubmitFeedbackRequest is one reader's judgement along one dimension.
type SubmitFeedbackRequest struct {
	Dimension string  `json:"dimension" validate:"required,dimension"`
	Value     string  `json:"value" validate:"required,vote"`
	Note      *string `json:"note,omitempty" validate:"omitempty,max=500"`
}

// SubmitFeedback appends a feedback event and returns the prep's fresh score.
func (s *FeedbackService) SubmitFeedback(ctx context.Context, userID, prepID string, req SubmitFeedbackRequest) (scoring.Payload, error) {
	if err := s.validator.Validate(req); err != nil {
		return scoring.Payload{}, err
	}
	if err := s.requirePrep(ctx, prepID); err != nil {
		return scoring.Payload{}, err
	}

	dimension, _ := domain.ParseDimension(req.Dimension)
	value, _ := domain.ParseVoteValue(req.Value)

	eventID, err := id.Generate(id.PrefixFeedback)
	if err != nil {
		return scoring.Payload{}, err
	}
	now := time.Now().UTC()
	event := &domain.FeedbackEvent{
		ID:        eventID,
		PrepID:    prepID,
		UserID:    userID,
		Dimension: dimension,
		Value:     value,
		Note:      trimmedNote(req.Note),
		CreatedAt: now,
	}
	if err := s.store.CreateFeedbackEvent(ctx, event); err != nil {
		return scoring.Payload{}, err
	}

	summary, err := s.engine.Recompute(ctx, prepID, &now)
	if err != nil {
		return scoring.Payload{}, err
	}

	if s.metrics != nil {
		s.metrics.RecordFeedback(dimension, value)
	}
	s.stats.Invalidate()

	s.logger.Info("feedback recorded",
		"prep_id", prepID,
		"user_id", userID,
		"dimension", dimension,
		"value", value,
	)
	return scoring.ToPayload(summary), nil
}

// CastVoteRequest is a reader's single undimensioned vote on a prep.
type CastVoteRequest struct {
	Value string  `json:"value" validate:"required,vote"`
	Note  *string `json:"note,omitempty" validate:"omitempty,max=500"`
}

// CastLegacyVote creates or replaces the reader's vote on a prep.
func (s *FeedbackService) CastLegacyVote(ctx context.Context, userID, prepID string, req CastVoteRequest) (*domain.LegacyVote, error) {
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}
	if err := s.requirePrep(ctx, prepID); err != nil {
		return nil, err
	}

	value, _ := domain.ParseVoteValue(req.Value)
	now := time.Now().UTC()
	vote := &domain.LegacyVote{
		PrepID:    prepID,
		UserID:    userID,
		Value:     value,
		Note:      trimmedNote(req.Note),
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.store.UpsertLegacyVote(ctx, vote); err != nil {
		return nil, err
	}

	if s.metrics != nil {
		s.metrics.RecordLegacyVote(value)
	}
	s.logger.Info("legacy vote cast", "prep_id", prepID, "user_id", userID, "value", value)

	return s.store.GetLegacyVote(ctx, prepID, userID)
}

// GetScore returns the cached score of a prep. Preps without feedback get
// an all-zero payload.
func (s *FeedbackService) GetScore(ctx context.Context, prepID string) (scoring.Payload, error) {
	if err := s.requirePrep(ctx, prepID); err != nil {
		return scoring.Payload{}, err
	}
	rec, err := s.store.GetPromptScore(ctx, prepID)
	if err != nil && !errors.Is(err, store.ErrNotFound) {
		return scoring.Payload{}, err
	}
	return scoring.PayloadFromRecord(rec), nil
}

// RebuildAllScores recomputes the cached score of every prep from its
// feedback events. Returns the number of preps rescored.
func (s *FeedbackService) RebuildAllScores(ctx context.Context) (int, error) {
	prepIDs, err := s.store.ListPrepIDs(ctx)
	if err != nil {
		return 0, err
	}
	for _, prepID := range prepIDs {
		if err := ctx.Err(); err != nil {
			return 0, err
		}
		if _, err := s.engine.Recompute(ctx, prepID, nil); err != nil {
			return 0, err
		}
	}
	s.logger.Info("rebuilt prep scores", "count", len(prepIDs))
	return len(prepIDs), nil
}

// ScoredPrep is a cache row flattened for curator triage.
type ScoredPrep struct {
	PrepID         string          `json:"prep_id"`
	LastFeedbackAt *time.Time      `json:"last_feedback_at,omitempty"`
	Score          scoring.Payload `json:"score"`
}

// ListScores returns cached scores lowest first so curators see the preps
// readers disagree with most. minTotal skips preps with too few votes.
func (s *FeedbackService) ListScores(ctx context.Context, minTotal int, page store.PaginationParams) (store.PaginatedResult[ScoredPrep], error) {
	res, err := s.store.ListPromptScores(ctx, store.ScoreFilter{MinTotal: minTotal, PaginationParams: page})
	if err != nil {
		return store.PaginatedResult[ScoredPrep]{}, invalidCursor(err)
	}

	out := store.PaginatedResult[ScoredPrep]{
		Items:      make([]ScoredPrep, len(res.Items)),
		NextCursor: res.NextCursor,
		HasMore:    res.HasMore,
		Total:      res.Total,
	}
	for i, rec := range res.Items {
		out.Items[i] = ScoredPrep{
			PrepID:         rec.PrepID,
			LastFeedbackAt: rec.LastFeedbackAt,
			Score:          scoring.PayloadFromRecord(rec),
		}
	}
	return out, nil
}

func (s *FeedbackService) requirePrep(ctx context.Context, prepID string) error {
	_, err := s.store.GetPrep(ctx, prepID)
	return notFound(err, "prep", prepID)
}

func trimmedNote(note *string) *string {
	if note == nil {
		return nil
	}
	v := strings.TrimSpace(*note)
	if v == "" {
		return nil
	}
	return &v
}
