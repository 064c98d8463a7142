package scoring

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/bookprepper/bookprepper-server/internal/domain"
)

// Store is the persistence the engine needs.
type Store interface {
	AggregateFeedback(ctx context.Context, prepID string) ([]domain.FeedbackAggregate, error)
	UpsertPromptScore(ctx context.Context, score *domain.PromptScore) error
}

// Observer is notified after each successful recompute.
type Observer interface {
	ScoreRecomputed(s Summary)
}

// Engine recomputes cached prep scores from feedback events.
//
// Concurrent recomputes for the same prep are last-write-wins. Each write is
// derived from a full read of the feedback rows, so the cache is never
// inconsistent with itself and the next recompute repairs any lost update.
type Engine struct {
	store    Store
	logger   *slog.Logger
	observer Observer
	now      func() time.Time
}

// NewEngine creates an engine. observer may be nil.
func NewEngine(store Store, logger *slog.Logger, observer Observer) *Engine {
	return &Engine{
		store:    store,
		logger:   logger,
		observer: observer,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

// Recompute aggregates every feedback event for prepID, writes the cache
// row and returns the computed summary. at stamps LastFeedbackAt and
// defaults to now. Prep existence is the caller's concern; a prep without
// feedback produces an all-zero row. Store errors are returned unchanged.
func (e *Engine) Recompute(ctx context.Context, prepID string, at *time.Time) (Summary, error) {
	rows, err := e.store.AggregateFeedback(ctx, prepID)
	if err != nil {
		return Summary{}, err
	}

	summary := SummarizeAggregates(rows)

	now := e.now()
	stamp := now
	if at != nil {
		stamp = at.UTC()
	}

	rec, err := summary.Record(prepID, stamp)
	if err != nil {
		return Summary{}, fmt.Errorf("encode dimensions: %w", err)
	}
	rec.UpdatedAt = now
	if err := e.store.UpsertPromptScore(ctx, rec); err != nil {
		return Summary{}, err
	}

	e.logger.Debug("prep score recomputed",
		"prep_id", prepID,
		"total", summary.Total,
		"score", summary.Score,
	)
	if e.observer != nil {
		e.observer.ScoreRecomputed(summary)
	}

	return summary, nil
}
