package api

import (
	"context"
	"net/http"
	"strings"

	"github.com/danielgtaylor/huma/v2"

	"github.com/bookprepper/bookprepper-server/internal/domain"
	"github.com/bookprepper/bookprepper-server/internal/scoring"
	"github.com/bookprepper/bookprepper-server/internal/search"
	"github.com/bookprepper/bookprepper-server/internal/service"
	"github.com/bookprepper/bookprepper-server/internal/store"
)

func (s *Server) registerCatalogRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "listBooks",
		Method:      http.MethodGet,
		Path:        "/api/v1/books",
		Summary:     "List books",
		Description: "Returns books ordered by title, optionally narrowed to one genre",
		Tags:        []string{"Books"},
	}, s.handleListBooks)

	huma.Register(s.api, huma.Operation{
		OperationID: "getBook",
		Method:      http.MethodGet,
		Path:        "/api/v1/books/{slug}",
		Summary:     "Get book",
		Description: "Returns a book with its preps and their scores",
		Tags:        []string{"Books"},
	}, s.handleGetBook)

	huma.Register(s.api, huma.Operation{
		OperationID: "listGenres",
		Method:      http.MethodGet,
		Path:        "/api/v1/genres",
		Summary:     "List genres",
		Description: "Returns all genres ordered by name",
		Tags:        []string{"Genres"},
	}, s.handleListGenres)

	huma.Register(s.api, huma.Operation{
		OperationID: "getCatalogStats",
		Method:      http.MethodGet,
		Path:        "/api/v1/stats",
		Summary:     "Catalog stats",
		Description: "Returns aggregate catalog counts",
		Tags:        []string{"Stats"},
	}, s.handleGetStats)

	huma.Register(s.api, huma.Operation{
		OperationID: "search",
		Method:      http.MethodGet,
		Path:        "/api/v1/search",
		Summary:     "Search catalog",
		Description: "Full-text search over books and preps with genre, keyword, and year filters",
		Tags:        []string{"Search"},
	}, s.handleSearch)

	huma.Register(s.api, huma.Operation{
		OperationID: "getPrepScore",
		Method:      http.MethodGet,
		Path:        "/api/v1/preps/{id}/score",
		Summary:     "Get prep score",
		Description: "Returns the feedback score of a prep",
		Tags:        []string{"Feedback"},
	}, s.handleGetPrepScore)
}

// === DTOs ===

// ListBooksInput holds filters for listing books.
type ListBooksInput struct {
	Genre  string `query:"genre" doc:"Genre slug filter"`
	Cursor string `query:"cursor" doc:"Pagination cursor"`
	Limit  int    `query:"limit" default:"50" minimum:"1" maximum:"200" doc:"Items per page"`
}

// BookListOutput wraps a page of books.
type BookListOutput struct {
	Body store.PaginatedResult[*domain.Book]
}

// GetBookInput identifies a book by slug.
type GetBookInput struct {
	Slug string `path:"slug" doc:"Book slug"`
}

// BookDetailOutput wraps a book with its scored preps.
type BookDetailOutput struct {
	Body *service.BookDetail
}

// GenreListResponse lists genres.
type GenreListResponse struct {
	Genres []domain.Genre `json:"genres"`
}

// GenreListOutput wraps the genre list.
type GenreListOutput struct {
	Body GenreListResponse
}

// StatsOutput wraps catalog counts.
type StatsOutput struct {
	Body *domain.CatalogStats
}

// SearchInput holds search query parameters.
type SearchInput struct {
	Query    string `query:"q" doc:"Search text"`
	Types    string `query:"types" doc:"Comma separated document types (book, prep)"`
	Genres   string `query:"genres" doc:"Comma separated genre slugs"`
	Keywords string `query:"keywords" doc:"Comma separated keyword slugs"`
	MinYear  int    `query:"min_year" doc:"Earliest publication year"`
	MaxYear  int    `query:"max_year" doc:"Latest publication year"`
	Sort     string `query:"sort" default:"relevance" enum:"relevance,title,recent" doc:"Sort field"`
	Order    string `query:"order" default:"desc" enum:"asc,desc" doc:"Sort order"`
	Limit    int    `query:"limit" default:"20" minimum:"1" maximum:"100" doc:"Max results"`
	Offset   int    `query:"offset" minimum:"0" doc:"Results to skip"`
	Facets   bool   `query:"facets" default:"true" doc:"Include facet counts"`
}

// SearchOutput wraps search results.
type SearchOutput struct {
	Body *search.SearchResult
}

// PrepIDInput identifies a prep.
type PrepIDInput struct {
	ID string `path:"id" doc:"Prep ID"`
}

// ScoreOutput wraps a prep score.
type ScoreOutput struct {
	Body scoring.Payload
}

// === Handlers ===

func (s *Server) handleListBooks(ctx context.Context, input *ListBooksInput) (*BookListOutput, error) {
	page, err := s.services.Book.ListBooks(ctx, input.Genre, store.PaginationParams{
		Cursor: input.Cursor,
		Limit:  input.Limit,
	})
	if err != nil {
		return nil, err
	}
	return &BookListOutput{Body: page}, nil
}

func (s *Server) handleGetBook(ctx context.Context, input *GetBookInput) (*BookDetailOutput, error) {
	detail, err := s.services.Book.GetBookBySlug(ctx, input.Slug)
	if err != nil {
		return nil, err
	}
	return &BookDetailOutput{Body: detail}, nil
}

func (s *Server) handleListGenres(ctx context.Context, _ *struct{}) (*GenreListOutput, error) {
	genres, err := s.services.Genre.ListGenres(ctx)
	if err != nil {
		return nil, err
	}
	if genres == nil {
		genres = []domain.Genre{}
	}
	return &GenreListOutput{Body: GenreListResponse{Genres: genres}}, nil
}

func (s *Server) handleGetStats(ctx context.Context, _ *struct{}) (*StatsOutput, error) {
	stats, err := s.services.Stats.CatalogStats(ctx)
	if err != nil {
		return nil, err
	}
	return &StatsOutput{Body: stats}, nil
}

func (s *Server) handleSearch(ctx context.Context, input *SearchInput) (*SearchOutput, error) {
	if s.services.Search == nil {
		return nil, huma.Error503ServiceUnavailable("Search is disabled")
	}

	params := search.DefaultSearchParams()
	params.Query = strings.TrimSpace(input.Query)
	for _, t := range splitCSV(input.Types) {
		params.Types = append(params.Types, search.DocType(t))
	}
	params.GenreSlugs = splitCSV(input.Genres)
	params.Keywords = splitCSV(input.Keywords)
	params.MinYear = input.MinYear
	params.MaxYear = input.MaxYear
	params.SortBy = input.Sort
	params.SortOrder = input.Order
	params.Limit = input.Limit
	params.Offset = input.Offset
	params.IncludeFacets = input.Facets

	result, err := s.services.Search.Search(ctx, params)
	if err != nil {
		return nil, err
	}
	return &SearchOutput{Body: result}, nil
}

func (s *Server) handleGetPrepScore(ctx context.Context, input *PrepIDInput) (*ScoreOutput, error) {
	score, err := s.services.Feedback.GetScore(ctx, input.ID)
	if err != nil {
		return nil, err
	}
	return &ScoreOutput{Body: score}, nil
}

// splitCSV splits a comma separated query value, dropping blanks.
func splitCSV(raw string) []string {
	var out []string
	for part := range strings.SplitSeq(raw, ",") {
		if part = strings.TrimSpace(strings.ToLower(part)); part != "" {
			out = append(out, part)
		}
	}
	return out
}
