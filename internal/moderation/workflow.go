// Package moderation runs the suggestion state machine. A suggestion starts
// PENDING and moves exactly once to APPROVED or REJECTED. Approval applies
// the proposed catalog change in the same transaction as the status write.
package moderation

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/bookprepper/bookprepper-server/internal/domain"
	domainerrors "github.com/bookprepper/bookprepper-server/internal/errors"
	"github.com/bookprepper/bookprepper-server/internal/store"
)

// Effect describes the catalog change an approval made.
type Effect struct {
	// EntityID is the id of the created or updated book or prep.
	EntityID string
	Book     *domain.Book
	Prep     *domain.Prep
}

// Applier performs the catalog change for one suggestion kind. It runs
// inside the approval transaction and must only use q.
type Applier func(ctx context.Context, q store.Querier, s *domain.Suggestion, at time.Time) (Effect, error)

// Result is the outcome of a moderation decision.
type Result struct {
	Suggestion *domain.Suggestion
	Effect
}

// Observer is notified after each committed decision.
type Observer interface {
	SuggestionResolved(kind domain.SuggestionKind, status domain.SuggestionStatus)
}

// Workflow approves and rejects suggestions of every kind.
type Workflow struct {
	store    store.Store
	appliers map[domain.SuggestionKind]Applier
	logger   *slog.Logger
	observer Observer
	now      func() time.Time
}

// NewWorkflow creates a workflow with the built-in appliers for book,
// metadata and prep suggestions. observer may be nil.
func NewWorkflow(s store.Store, logger *slog.Logger, observer Observer) *Workflow {
	return &Workflow{
		store: s,
		appliers: map[domain.SuggestionKind]Applier{
			domain.SuggestionBook:     ApplyBook,
			domain.SuggestionMetadata: ApplyMetadata,
			domain.SuggestionPrep:     ApplyPrep,
		},
		logger:   logger,
		observer: observer,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

// Approve moves a pending suggestion to APPROVED and applies its change.
// Fails with NotFound when the suggestion does not exist and with Conflict
// when it was already processed. Nothing is written when the change fails.
func (w *Workflow) Approve(ctx context.Context, kind domain.SuggestionKind, id string, note *string) (*Result, error) {
	apply, ok := w.appliers[kind]
	if !ok {
		return nil, unknownKind(kind)
	}
	return w.transition(ctx, kind, id, domain.StatusApproved, note, apply)
}

// Reject moves a pending suggestion to REJECTED. The catalog is untouched.
func (w *Workflow) Reject(ctx context.Context, kind domain.SuggestionKind, id string, note *string) (*Result, error) {
	if _, ok := w.appliers[kind]; !ok {
		return nil, unknownKind(kind)
	}
	return w.transition(ctx, kind, id, domain.StatusRejected, note, nil)
}

func (w *Workflow) transition(
	ctx context.Context,
	kind domain.SuggestionKind,
	id string,
	to domain.SuggestionStatus,
	note *string,
	apply Applier,
) (*Result, error) {
	at := w.now()
	var result Result

	err := w.store.WithTx(ctx, func(q store.Querier) error {
		s, err := q.GetSuggestion(ctx, kind, id)
		if errors.Is(err, store.ErrNotFound) {
			return domainerrors.NotFoundf("%s suggestion %s not found", kind, id)
		}
		if err != nil {
			return err
		}
		if s.Status != domain.StatusPending {
			return domainerrors.AlreadyProcessed("suggestion", id)
		}

		// The conditional write settles races with a concurrent moderator.
		err = q.ResolveSuggestion(ctx, kind, id, store.Resolution{Status: to, Note: note, ReviewedAt: at})
		switch {
		case errors.Is(err, store.ErrNotPending):
			return domainerrors.AlreadyProcessed("suggestion", id)
		case errors.Is(err, store.ErrNotFound):
			return domainerrors.NotFoundf("%s suggestion %s not found", kind, id)
		case err != nil:
			return err
		}

		if apply != nil {
			effect, err := apply(ctx, q, s, at)
			if err != nil {
				return err
			}
			result.Effect = effect
		}

		s.Status = to
		s.ModeratorNote = note
		s.ReviewedAt = &at
		result.Suggestion = s
		return nil
	})
	if err != nil {
		w.logger.Warn("suggestion transition failed",
			"kind", kind,
			"id", id,
			"to", to,
			"error", err,
		)
		return nil, err
	}

	w.logger.Info("suggestion resolved",
		"kind", kind,
		"id", id,
		"status", to,
		"entity_id", result.EntityID,
	)
	if w.observer != nil {
		w.observer.SuggestionResolved(kind, to)
	}
	return &result, nil
}

func unknownKind(kind domain.SuggestionKind) error {
	return domainerrors.ValidationWithDetails(
		fmt.Sprintf("unknown suggestion kind %q", kind),
		map[string]string{"kind": "must be one of book, metadata, prep"},
	)
}
