package api

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/bookprepper/bookprepper-server/internal/domain"
	"github.com/bookprepper/bookprepper-server/internal/service"
)

func (s *Server) registerFeedbackRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "submitFeedback",
		Method:      http.MethodPost,
		Path:        "/api/v1/preps/{id}/feedback",
		Summary:     "Submit feedback",
		Description: "Records agree/disagree feedback on one dimension of a prep and returns the new score",
		Tags:        []string{"Feedback"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleSubmitFeedback)

	huma.Register(s.api, huma.Operation{
		OperationID: "castVote",
		Method:      http.MethodPut,
		Path:        "/api/v1/preps/{id}/vote",
		Summary:     "Cast vote",
		Description: "Sets the caller's single agree/disagree vote on a prep",
		Tags:        []string{"Feedback"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleCastVote)
}

// === DTOs ===

// SubmitFeedbackInput carries one feedback event.
type SubmitFeedbackInput struct {
	ID   string `path:"id" doc:"Prep ID"`
	Body service.SubmitFeedbackRequest
}

// CastVoteInput carries a legacy vote.
type CastVoteInput struct {
	ID   string `path:"id" doc:"Prep ID"`
	Body service.CastVoteRequest
}

// VoteOutput wraps the stored vote.
type VoteOutput struct {
	Body *domain.LegacyVote
}

// === Handlers ===

func (s *Server) handleSubmitFeedback(ctx context.Context, input *SubmitFeedbackInput) (*ScoreOutput, error) {
	id, err := s.RequireUser(ctx)
	if err != nil {
		return nil, err
	}

	score, err := s.services.Feedback.SubmitFeedback(ctx, id.UserID, input.ID, input.Body)
	if err != nil {
		return nil, err
	}
	return &ScoreOutput{Body: score}, nil
}

func (s *Server) handleCastVote(ctx context.Context, input *CastVoteInput) (*VoteOutput, error) {
	id, err := s.RequireUser(ctx)
	if err != nil {
		return nil, err
	}

	vote, err := s.services.Feedback.CastLegacyVote(ctx, id.UserID, input.ID, input.Body)
	if err != nil {
		return nil, err
	}
	return &VoteOutput{Body: vote}, nil
}
