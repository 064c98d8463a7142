package api

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/bookprepper/bookprepper-server/internal/domain"
	"github.com/bookprepper/bookprepper-server/internal/service"
	"github.com/bookprepper/bookprepper-server/internal/store"
)

func (s *Server) registerAdminCatalogRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID:   "adminCreateBook",
		Method:        http.MethodPost,
		Path:          "/api/v1/admin/books",
		Summary:       "Create book",
		Description:   "Creates a book, resolving or creating its author (admin only)",
		Tags:          []string{"Admin"},
		DefaultStatus: http.StatusCreated,
		Security:      []map[string][]string{{"bearer": {}}},
	}, s.handleAdminCreateBook)

	huma.Register(s.api, huma.Operation{
		OperationID: "adminUpdateBook",
		Method:      http.MethodPatch,
		Path:        "/api/v1/admin/books/{id}",
		Summary:     "Update book",
		Description: "Updates book metadata (admin only)",
		Tags:        []string{"Admin"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleAdminUpdateBook)

	huma.Register(s.api, huma.Operation{
		OperationID: "adminReplaceBookGenres",
		Method:      http.MethodPut,
		Path:        "/api/v1/admin/books/{id}/genres",
		Summary:     "Replace book genres",
		Description: "Replaces the genre set of a book. Unknown genre IDs reject the whole request (admin only)",
		Tags:        []string{"Admin"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleAdminReplaceGenres)

	huma.Register(s.api, huma.Operation{
		OperationID:   "adminCreateGenre",
		Method:        http.MethodPost,
		Path:          "/api/v1/admin/genres",
		Summary:       "Create genre",
		Description:   "Creates a genre (admin only)",
		Tags:          []string{"Admin"},
		DefaultStatus: http.StatusCreated,
		Security:      []map[string][]string{{"bearer": {}}},
	}, s.handleAdminCreateGenre)

	huma.Register(s.api, huma.Operation{
		OperationID:   "adminCreatePrep",
		Method:        http.MethodPost,
		Path:          "/api/v1/admin/books/{id}/preps",
		Summary:       "Create prep",
		Description:   "Adds a prep to a book (admin only)",
		Tags:          []string{"Admin"},
		DefaultStatus: http.StatusCreated,
		Security:      []map[string][]string{{"bearer": {}}},
	}, s.handleAdminCreatePrep)

	huma.Register(s.api, huma.Operation{
		OperationID: "adminUpdatePrep",
		Method:      http.MethodPatch,
		Path:        "/api/v1/admin/preps/{id}",
		Summary:     "Update prep",
		Description: "Updates a prep (admin only)",
		Tags:        []string{"Admin"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleAdminUpdatePrep)

	huma.Register(s.api, huma.Operation{
		OperationID:   "adminDeletePrep",
		Method:        http.MethodDelete,
		Path:          "/api/v1/admin/preps/{id}",
		Summary:       "Delete prep",
		Description:   "Deletes a prep with its feedback and score (admin only)",
		Tags:          []string{"Admin"},
		DefaultStatus: http.StatusNoContent,
		Security:      []map[string][]string{{"bearer": {}}},
	}, s.handleAdminDeletePrep)

	huma.Register(s.api, huma.Operation{
		OperationID: "adminListPrepScores",
		Method:      http.MethodGet,
		Path:        "/api/v1/admin/preps/scores",
		Summary:     "List prep scores",
		Description: "Returns cached prep scores lowest first for triage (admin only)",
		Tags:        []string{"Admin"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleAdminListScores)
}

// === DTOs ===

// BookIDInput identifies a book.
type BookIDInput struct {
	ID string `path:"id" doc:"Book ID"`
}

// CreateBookInput carries a new book.
type CreateBookInput struct {
	Body service.CreateBookRequest
}

// UpdateBookInput carries a partial book update.
type UpdateBookInput struct {
	ID   string `path:"id" doc:"Book ID"`
	Body service.UpdateBookRequest
}

// ReplaceGenresInput carries a book's new genre set.
type ReplaceGenresInput struct {
	ID   string `path:"id" doc:"Book ID"`
	Body service.ReplaceGenresRequest
}

// BookOutput wraps one book.
type BookOutput struct {
	Body *domain.Book
}

// CreateGenreInput carries a new genre.
type CreateGenreInput struct {
	Body service.CreateGenreRequest
}

// GenreOutput wraps one genre.
type GenreOutput struct {
	Body *domain.Genre
}

// CreatePrepInput carries a new prep for a book.
type CreatePrepInput struct {
	ID   string `path:"id" doc:"Book ID"`
	Body service.CreatePrepRequest
}

// UpdatePrepInput carries a partial prep update.
type UpdatePrepInput struct {
	ID   string `path:"id" doc:"Prep ID"`
	Body service.UpdatePrepRequest
}

// PrepOutput wraps one prep.
type PrepOutput struct {
	Body *domain.Prep
}

// ListScoresInput holds triage filters.
type ListScoresInput struct {
	MinTotal int    `query:"min_total" minimum:"0" doc:"Skip preps with fewer feedback events"`
	Cursor   string `query:"cursor" doc:"Pagination cursor"`
	Limit    int    `query:"limit" default:"50" minimum:"1" maximum:"200" doc:"Items per page"`
}

// ScoreListOutput wraps a page of prep scores.
type ScoreListOutput struct {
	Body store.PaginatedResult[service.ScoredPrep]
}

// === Handlers ===

func (s *Server) handleAdminCreateBook(ctx context.Context, input *CreateBookInput) (*BookOutput, error) {
	if _, err := s.RequireAdmin(ctx); err != nil {
		return nil, err
	}

	book, err := s.services.Book.CreateBook(ctx, input.Body)
	if err != nil {
		return nil, err
	}
	return &BookOutput{Body: book}, nil
}

func (s *Server) handleAdminUpdateBook(ctx context.Context, input *UpdateBookInput) (*BookOutput, error) {
	if _, err := s.RequireAdmin(ctx); err != nil {
		return nil, err
	}

	book, err := s.services.Book.UpdateBook(ctx, input.ID, input.Body)
	if err != nil {
		return nil, err
	}
	return &BookOutput{Body: book}, nil
}

func (s *Server) handleAdminReplaceGenres(ctx context.Context, input *ReplaceGenresInput) (*BookOutput, error) {
	if _, err := s.RequireAdmin(ctx); err != nil {
		return nil, err
	}

	book, err := s.services.Book.ReplaceGenres(ctx, input.ID, input.Body)
	if err != nil {
		return nil, err
	}
	return &BookOutput{Body: book}, nil
}

func (s *Server) handleAdminCreateGenre(ctx context.Context, input *CreateGenreInput) (*GenreOutput, error) {
	if _, err := s.RequireAdmin(ctx); err != nil {
		return nil, err
	}

	genre, err := s.services.Genre.CreateGenre(ctx, input.Body)
	if err != nil {
		return nil, err
	}
	return &GenreOutput{Body: genre}, nil
}

func (s *Server) handleAdminCreatePrep(ctx context.Context, input *CreatePrepInput) (*PrepOutput, error) {
	if _, err := s.RequireAdmin(ctx); err != nil {
		return nil, err
	}

	prep, err := s.services.Prep.CreatePrep(ctx, input.ID, input.Body)
	if err != nil {
		return nil, err
	}
	return &PrepOutput{Body: prep}, nil
}

func (s *Server) handleAdminUpdatePrep(ctx context.Context, input *UpdatePrepInput) (*PrepOutput, error) {
	if _, err := s.RequireAdmin(ctx); err != nil {
		return nil, err
	}

	prep, err := s.services.Prep.UpdatePrep(ctx, input.ID, input.Body)
	if err != nil {
		return nil, err
	}
	return &PrepOutput{Body: prep}, nil
}

func (s *Server) handleAdminDeletePrep(ctx context.Context, input *PrepIDInput) (*struct{}, error) {
	if _, err := s.RequireAdmin(ctx); err != nil {
		return nil, err
	}

	if err := s.services.Prep.DeletePrep(ctx, input.ID); err != nil {
		return nil, err
	}
	return nil, nil
}

func (s *Server) handleAdminListScores(ctx context.Context, input *ListScoresInput) (*ScoreListOutput, error) {
	if _, err := s.RequireAdmin(ctx); err != nil {
		return nil, err
	}

	page, err := s.services.Feedback.ListScores(ctx, input.MinTotal, store.PaginationParams{
		Cursor: input.Cursor,
		Limit:  input.Limit,
	})
	if err != nil {
		return nil, err
	}
	return &ScoreListOutput{Body: page}, nil
}
