package api

import (
	"context"
	"net/http"
	"strings"

	"github.com/danielgtaylor/huma/v2"

	"github.com/bookprepper/bookprepper-server/internal/domain"
	"github.com/bookprepper/bookprepper-server/internal/moderation"
	"github.com/bookprepper/bookprepper-server/internal/service"
	"github.com/bookprepper/bookprepper-server/internal/store"
)

func (s *Server) registerModerationRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "adminListSuggestions",
		Method:      http.MethodGet,
		Path:        "/api/v1/admin/suggestions/{kind}",
		Summary:     "List suggestions",
		Description: "Returns suggestions of one kind, optionally filtered by status (admin only)",
		Tags:        []string{"Moderation"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleListSuggestions)

	huma.Register(s.api, huma.Operation{
		OperationID: "adminApproveSuggestion",
		Method:      http.MethodPost,
		Path:        "/api/v1/admin/suggestions/{kind}/{id}/approve",
		Summary:     "Approve suggestion",
		Description: "Approves a pending suggestion and applies its change to the catalog (admin only)",
		Tags:        []string{"Moderation"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleApproveSuggestion)

	huma.Register(s.api, huma.Operation{
		OperationID: "adminRejectSuggestion",
		Method:      http.MethodPost,
		Path:        "/api/v1/admin/suggestions/{kind}/{id}/reject",
		Summary:     "Reject suggestion",
		Description: "Rejects a pending suggestion (admin only)",
		Tags:        []string{"Moderation"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleRejectSuggestion)
}

// === DTOs ===

// ListSuggestionsInput holds moderation queue filters.
type ListSuggestionsInput struct {
	Kind   string `path:"kind" enum:"book,metadata,prep" doc:"Suggestion kind"`
	Status string `query:"status" doc:"PENDING, APPROVED, or REJECTED"`
	Cursor string `query:"cursor" doc:"Pagination cursor"`
	Limit  int    `query:"limit" default:"50" minimum:"1" maximum:"200" doc:"Items per page"`
}

// ModerateInput identifies a suggestion and carries the moderator note.
type ModerateInput struct {
	Kind string                     `path:"kind" enum:"book,metadata,prep" doc:"Suggestion kind"`
	ID   string                     `path:"id" doc:"Suggestion ID"`
	Body *service.ModerationRequest `required:"false"`
}

// ModerationResponse is the resolved suggestion and the entity it touched.
type ModerationResponse struct {
	Suggestion SuggestionResponse `json:"suggestion"`
	EntityID   string             `json:"entity_id,omitempty" doc:"Created or updated book or prep"`
	Book       *domain.Book       `json:"book,omitempty"`
	Prep       *domain.Prep       `json:"prep,omitempty"`
}

// ModerationOutput wraps a moderation decision.
type ModerationOutput struct {
	Body ModerationResponse
}

func toModerationOutput(res *moderation.Result) *ModerationOutput {
	return &ModerationOutput{Body: ModerationResponse{
		Suggestion: toSuggestionResponse(res.Suggestion),
		EntityID:   res.EntityID,
		Book:       res.Book,
		Prep:       res.Prep,
	}}
}

func (in *ModerateInput) request() service.ModerationRequest {
	if in.Body == nil {
		return service.ModerationRequest{}
	}
	return *in.Body
}

// === Handlers ===

func (s *Server) handleListSuggestions(ctx context.Context, input *ListSuggestionsInput) (*SuggestionListOutput, error) {
	if _, err := s.RequireAdmin(ctx); err != nil {
		return nil, err
	}

	page, err := s.services.Suggestion.List(ctx,
		domain.SuggestionKind(input.Kind),
		domain.SuggestionStatus(strings.ToUpper(strings.TrimSpace(input.Status))),
		store.PaginationParams{Cursor: input.Cursor, Limit: input.Limit},
	)
	if err != nil {
		return nil, err
	}
	return &SuggestionListOutput{Body: toSuggestionPage(page)}, nil
}

func (s *Server) handleApproveSuggestion(ctx context.Context, input *ModerateInput) (*ModerationOutput, error) {
	admin, err := s.RequireAdmin(ctx)
	if err != nil {
		return nil, err
	}

	res, err := s.services.Suggestion.Approve(ctx, domain.SuggestionKind(input.Kind), input.ID, input.request())
	if err != nil {
		return nil, err
	}
	s.logger.Info("suggestion approved", "kind", input.Kind, "id", input.ID, "moderator", admin.UserID)
	return toModerationOutput(res), nil
}

func (s *Server) handleRejectSuggestion(ctx context.Context, input *ModerateInput) (*ModerationOutput, error) {
	admin, err := s.RequireAdmin(ctx)
	if err != nil {
		return nil, err
	}

	res, err := s.services.Suggestion.Reject(ctx, domain.SuggestionKind(input.Kind), input.ID, input.request())
	if err != nil {
		return nil, err
	}
	s.logger.Info("suggestion rejected", "kind", input.Kind, "id", input.ID, "moderator", admin.UserID)
	return toModerationOutput(res), nil
}
