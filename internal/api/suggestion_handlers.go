package api

import (
	"context"
	"net/http"
	"time"

	"github.com/danielgtaylor/huma/v2"

	"github.com/bookprepper/bookprepper-server/internal/domain"
	"github.com/bookprepper/bookprepper-server/internal/service"
	"github.com/bookprepper/bookprepper-server/internal/store"
)

func (s *Server) registerSuggestionRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID:   "suggestBook",
		Method:        http.MethodPost,
		Path:          "/api/v1/suggestions/books",
		Summary:       "Suggest book",
		Description:   "Proposes a new book for the catalog",
		Tags:          []string{"Suggestions"},
		DefaultStatus: http.StatusCreated,
		Security:      []map[string][]string{{"bearer": {}}},
	}, s.handleSuggestBook)

	huma.Register(s.api, huma.Operation{
		OperationID:   "suggestMetadata",
		Method:        http.MethodPost,
		Path:          "/api/v1/suggestions/metadata",
		Summary:       "Suggest metadata",
		Description:   "Proposes a synopsis or genre change for an existing book",
		Tags:          []string{"Suggestions"},
		DefaultStatus: http.StatusCreated,
		Security:      []map[string][]string{{"bearer": {}}},
	}, s.handleSuggestMetadata)

	huma.Register(s.api, huma.Operation{
		OperationID:   "suggestPrep",
		Method:        http.MethodPost,
		Path:          "/api/v1/suggestions/preps",
		Summary:       "Suggest prep",
		Description:   "Proposes a new prep for an existing book",
		Tags:          []string{"Suggestions"},
		DefaultStatus: http.StatusCreated,
		Security:      []map[string][]string{{"bearer": {}}},
	}, s.handleSuggestPrep)

	huma.Register(s.api, huma.Operation{
		OperationID: "listMySuggestions",
		Method:      http.MethodGet,
		Path:        "/api/v1/me/suggestions",
		Summary:     "List my suggestions",
		Description: "Returns the caller's suggestions of every kind, newest first",
		Tags:        []string{"Suggestions"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleListMySuggestions)
}

// === DTOs ===

// SuggestionResponse is a suggestion with its kind spelled out.
type SuggestionResponse struct {
	ID            string                  `json:"id" doc:"Suggestion ID"`
	Kind          domain.SuggestionKind   `json:"kind" doc:"book, metadata, or prep"`
	UserID        string                  `json:"user_id" doc:"Submitter"`
	Status        domain.SuggestionStatus `json:"status" doc:"PENDING, APPROVED, or REJECTED"`
	ModeratorNote *string                 `json:"moderator_note,omitempty" doc:"Note left by the moderator"`
	ReviewedAt    *time.Time              `json:"reviewed_at,omitempty" doc:"When the suggestion was resolved"`
	CreatedAt     time.Time               `json:"created_at" doc:"When the suggestion was submitted"`
	Proposal      any                     `json:"proposal" doc:"Kind-specific proposed change"`
}

// SuggestionOutput wraps one suggestion.
type SuggestionOutput struct {
	Body SuggestionResponse
}

// SuggestionListOutput wraps a page of suggestions.
type SuggestionListOutput struct {
	Body store.PaginatedResult[SuggestionResponse]
}

// SuggestBookInput carries a book proposal.
type SuggestBookInput struct {
	Body service.BookSuggestionRequest
}

// SuggestMetadataInput carries a metadata proposal.
type SuggestMetadataInput struct {
	Body service.MetadataSuggestionRequest
}

// SuggestPrepInput carries a prep proposal.
type SuggestPrepInput struct {
	Body service.PrepSuggestionRequest
}

// ListMySuggestionsInput holds pagination for the caller's suggestions.
type ListMySuggestionsInput struct {
	Cursor string `query:"cursor" doc:"Pagination cursor"`
	Limit  int    `query:"limit" default:"50" minimum:"1" maximum:"200" doc:"Items per page"`
}

func toSuggestionResponse(sug *domain.Suggestion) SuggestionResponse {
	return SuggestionResponse{
		ID:            sug.ID,
		Kind:          sug.Kind(),
		UserID:        sug.UserID,
		Status:        sug.Status,
		ModeratorNote: sug.ModeratorNote,
		ReviewedAt:    sug.ReviewedAt,
		CreatedAt:     sug.CreatedAt,
		Proposal:      sug.Proposal,
	}
}

func toSuggestionPage(page store.PaginatedResult[*domain.Suggestion]) store.PaginatedResult[SuggestionResponse] {
	out := store.PaginatedResult[SuggestionResponse]{
		Items:      make([]SuggestionResponse, len(page.Items)),
		NextCursor: page.NextCursor,
		HasMore:    page.HasMore,
		Total:      page.Total,
	}
	for i, sug := range page.Items {
		out.Items[i] = toSuggestionResponse(sug)
	}
	return out
}

// === Handlers ===

func (s *Server) handleSuggestBook(ctx context.Context, input *SuggestBookInput) (*SuggestionOutput, error) {
	id, err := s.RequireUser(ctx)
	if err != nil {
		return nil, err
	}

	sug, err := s.services.Suggestion.SuggestBook(ctx, id.UserID, input.Body)
	if err != nil {
		return nil, err
	}
	return &SuggestionOutput{Body: toSuggestionResponse(sug)}, nil
}

func (s *Server) handleSuggestMetadata(ctx context.Context, input *SuggestMetadataInput) (*SuggestionOutput, error) {
	id, err := s.RequireUser(ctx)
	if err != nil {
		return nil, err
	}

	sug, err := s.services.Suggestion.SuggestMetadata(ctx, id.UserID, input.Body)
	if err != nil {
		return nil, err
	}
	return &SuggestionOutput{Body: toSuggestionResponse(sug)}, nil
}

func (s *Server) handleSuggestPrep(ctx context.Context, input *SuggestPrepInput) (*SuggestionOutput, error) {
	id, err := s.RequireUser(ctx)
	if err != nil {
		return nil, err
	}

	sug, err := s.services.Suggestion.SuggestPrep(ctx, id.UserID, input.Body)
	if err != nil {
		return nil, err
	}
	return &SuggestionOutput{Body: toSuggestionResponse(sug)}, nil
}

func (s *Server) handleListMySuggestions(ctx context.Context, input *ListMySuggestionsInput) (*SuggestionListOutput, error) {
	id, err := GetIdentity(ctx)
	if err != nil {
		return nil, err
	}

	page, err := s.services.Suggestion.ListMine(ctx, id.UserID, store.PaginationParams{
		Cursor: input.Cursor,
		Limit:  input.Limit,
	})
	if err != nil {
		return nil, err
	}
	return &SuggestionListOutput{Body: toSuggestionPage(page)}, nil
}
