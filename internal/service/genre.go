package service

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/bookprepper/bookprepper-server/internal/catalog"
	"github.com/bookprepper/bookprepper-server/internal/domain"
	domainerrors "github.com/bookprepper/bookprepper-server/internal/errors"
	"github.com/bookprepper/bookprepper-server/internal/normalize"
	"github.com/bookprepper/bookprepper-server/internal/store"
	"github.com/bookprepper/bookprepper-server/internal/validation"
)

// GenreService orchestrates genre operations.
type GenreService struct {
	store     store.CatalogStore
	stats     *StatsService
	logger    *slog.Logger
	validator *validation.Validator
}

// NewGenreService creates a new genre service. stats may be nil.
func NewGenreService(s store.CatalogStore, stats *StatsService, logger *slog.Logger) *GenreService {
	return &GenreService{
		store:     s,
		stats:     stats,
		logger:    logger,
		validator: validation.New(),
	}
}

// ListGenres returns every genre ordered by name.
func (s *GenreService) ListGenres(ctx context.Context) ([]domain.Genre, error) {
	return s.store.ListGenres(ctx)
}

// CreateGenreRequest contains fields for creating a genre.
type CreateGenreRequest struct {
	Name string `json:"name" validate:"notblank,max=100"`
}

// CreateGenre creates a new genre. The slug derives from the name and must
// not be taken.
func (s *GenreService) CreateGenre(ctx context.Context, req CreateGenreRequest) (*domain.Genre, error) {
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}

	name := normalize.Name(req.Name)
	slug := normalize.Slugify(name)

	existing, err := s.store.GetGenreBySlug(ctx, slug)
	if err == nil && existing != nil {
		return nil, domainerrors.Conflictf("genre with slug %q already exists", slug)
	}
	if err != nil && !errors.Is(err, store.ErrNotFound) {
		return nil, err
	}

	g, err := catalog.NewGenre(name, slug, time.Now().UTC())
	if err != nil {
		return nil, err
	}
	if err := s.store.CreateGenre(ctx, g); err != nil {
		if errors.Is(err, store.ErrAlreadyExists) {
			return nil, domainerrors.Conflictf("genre with slug %q already exists", slug)
		}
		return nil, err
	}

	s.stats.Invalidate()
	s.logger.Info("genre created", "id", g.ID, "name", g.Name, "slug", g.Slug)
	return g, nil
}
