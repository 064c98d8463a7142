package service

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/bookprepper/bookprepper-server/internal/catalog"
	"github.com/bookprepper/bookprepper-server/internal/domain"
	"github.com/bookprepper/bookprepper-server/internal/id"
	"github.com/bookprepper/bookprepper-server/internal/normalize"
	"github.com/bookprepper/bookprepper-server/internal/scoring"
	"github.com/bookprepper/bookprepper-server/internal/store"
	"github.com/bookprepper/bookprepper-server/internal/validation"
)

// BookService orchestrates catalog reads and admin book edits.
type BookService struct {
	store     store.Store
	search    *SearchService
	stats     *StatsService
	logger    *slog.Logger
	validator *validation.Validator
}

// NewBookService creates a new book service. search and stats may be nil.
func NewBookService(s store.Store, search *SearchService, stats *StatsService, logger *slog.Logger) *BookService {
	return &BookService{
		store:     s,
		search:    search,
		stats:     stats,
		logger:    logger,
		validator: validation.New(),
	}
}

// ScoredPrepDetail is a prep together with its cached score.
type ScoredPrepDetail struct {
	*domain.Prep
	Score scoring.Payload `json:"score"`
}

// BookDetail is a book with its author, genres and scored preps.
type BookDetail struct {
	*domain.Book
	Preps []ScoredPrepDetail `json:"preps"`
}

// ListBooks returns a page of books ordered by title, optionally narrowed
// to one genre.
func (s *BookService) ListBooks(ctx context.Context, genreSlug string, page store.PaginationParams) (store.PaginatedResult[*domain.Book], error) {
	res, err := s.store.ListBooks(ctx, store.BookFilter{
		GenreSlug:        strings.TrimSpace(genreSlug),
		PaginationParams: page,
	})
	if err != nil {
		return store.PaginatedResult[*domain.Book]{}, invalidCursor(err)
	}
	return res, nil
}

// GetBookBySlug returns a book with its preps, each carrying its score.
// Preps that were never scored get an all-zero score.
func (s *BookService) GetBookBySlug(ctx context.Context, slug string) (*BookDetail, error) {
	book, err := s.store.GetBookBySlug(ctx, slug)
	if err != nil {
		return nil, notFound(err, "book", slug)
	}

	preps, err := s.store.ListPrepsByBook(ctx, book.ID)
	if err != nil {
		return nil, err
	}

	prepIDs := make([]string, len(preps))
	for i, p := range preps {
		prepIDs[i] = p.ID
	}
	scores, err := s.store.GetPromptScores(ctx, prepIDs)
	if err != nil {
		return nil, err
	}

	detail := &BookDetail{Book: book, Preps: make([]ScoredPrepDetail, len(preps))}
	for i, p := range preps {
		detail.Preps[i] = ScoredPrepDetail{Prep: p, Score: scoring.PayloadFromRecord(scores[p.ID])}
	}
	return detail, nil
}

// CreateBookRequest contains fields for an admin-created book.
// The author is taken from AuthorID when set, otherwise resolved by name.
type CreateBookRequest struct {
	Title         string   `json:"title" validate:"notblank,max=300"`
	AuthorID      string   `json:"author_id,omitempty"`
	AuthorName    string   `json:"author_name,omitempty" validate:"max=200"`
	ISBN          *string  `json:"isbn,omitempty" validate:"omitempty,max=32"`
	Synopsis      *string  `json:"synopsis,omitempty"`
	CoverURL      string   `json:"cover_url,omitempty" validate:"omitempty,url"`
	PublishedYear int      `json:"published_year,omitempty" validate:"omitempty,min=1,max=3000"`
	GenreIDs      []string `json:"genre_ids,omitempty" validate:"max=20"`
}

// CreateBook adds a book to the catalog. Every genre id must exist.
func (s *BookService) CreateBook(ctx context.Context, req CreateBookRequest) (*domain.Book, error) {
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	var book *domain.Book

	err := s.store.WithTx(ctx, func(q store.Querier) error {
		genres, err := catalog.ValidateGenreIDs(ctx, q, req.GenreIDs)
		if err != nil {
			return err
		}
		author, err := catalog.ResolveAuthor(ctx, q, strings.TrimSpace(req.AuthorID), req.AuthorName, now)
		if err != nil {
			return err
		}

		title := normalize.Name(req.Title)
		slug, err := catalog.EnsureUniqueSlug(ctx, q, store.SlugBooks, title)
		if err != nil {
			return err
		}
		bookID, err := id.Generate(id.PrefixBook)
		if err != nil {
			return err
		}

		book = &domain.Book{
			Entity:        domain.Entity{ID: bookID, CreatedAt: now, UpdatedAt: now},
			Slug:          slug,
			Title:         title,
			AuthorID:      author.ID,
			ISBN:          normalize.ISBNPtr(req.ISBN),
			CoverURL:      strings.TrimSpace(req.CoverURL),
			PublishedYear: req.PublishedYear,
			Author:        author,
			Genres:        genres,
		}
		if req.Synopsis != nil {
			book.Synopsis = normalize.Synopsis(*req.Synopsis, domain.MaxSynopsisLength)
		}
		return q.CreateBook(ctx, book)
	})
	if err != nil {
		return nil, err
	}

	s.stats.Invalidate()
	s.search.indexEffect(ctx, book, nil)
	s.logger.Info("book created", "id", book.ID, "slug", book.Slug, "author_id", book.AuthorID)
	return book, nil
}

// UpdateBookRequest contains the book fields an admin may change. Nil
// fields are left alone; an empty ISBN clears it. The slug never changes.
type UpdateBookRequest struct {
	Title         *string `json:"title,omitempty" validate:"omitempty,notblank,max=300"`
	ISBN          *string `json:"isbn,omitempty" validate:"omitempty,max=32"`
	Synopsis      *string `json:"synopsis,omitempty"`
	CoverURL      *string `json:"cover_url,omitempty" validate:"omitempty,url"`
	PublishedYear *int    `json:"published_year,omitempty" validate:"omitempty,min=1,max=3000"`
}

// UpdateBook changes a book's scalar fields.
func (s *BookService) UpdateBook(ctx context.Context, bookID string, req UpdateBookRequest) (*domain.Book, error) {
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}

	book, err := s.store.GetBook(ctx, bookID)
	if err != nil {
		return nil, notFound(err, "book", bookID)
	}

	if req.Title != nil {
		book.Title = normalize.Name(*req.Title)
	}
	if req.ISBN != nil {
		book.ISBN = normalize.ISBNPtr(req.ISBN)
	}
	if req.Synopsis != nil {
		book.Synopsis = normalize.Synopsis(*req.Synopsis, domain.MaxSynopsisLength)
	}
	if req.CoverURL != nil {
		book.CoverURL = strings.TrimSpace(*req.CoverURL)
	}
	if req.PublishedYear != nil {
		book.PublishedYear = *req.PublishedYear
	}
	book.UpdatedAt = time.Now().UTC()

	if err := s.store.UpdateBook(ctx, book); err != nil {
		return nil, notFound(err, "book", bookID)
	}

	s.search.indexEffect(ctx, book, nil)
	s.logger.Info("book updated", "id", book.ID)
	return book, nil
}

// ReplaceGenresRequest is the complete new genre set of a book.
type ReplaceGenresRequest struct {
	GenreIDs []string `json:"genre_ids" validate:"max=20"`
}

// ReplaceGenres sets a book's genres to exactly the given ids, all of which
// must exist. An empty list clears the book's genres.
func (s *BookService) ReplaceGenres(ctx context.Context, bookID string, req ReplaceGenresRequest) (*domain.Book, error) {
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}

	var book *domain.Book
	err := s.store.WithTx(ctx, func(q store.Querier) error {
		b, err := q.GetBook(ctx, bookID)
		if err != nil {
			return notFound(err, "book", bookID)
		}
		genres, err := catalog.ValidateGenreIDs(ctx, q, req.GenreIDs)
		if err != nil {
			return err
		}
		if err := q.SetBookGenres(ctx, b.ID, catalog.GenreIDs(genres)); err != nil {
			return err
		}
		b.Genres = genres
		book = b
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.search.indexEffect(ctx, book, nil)
	s.logger.Info("book genres replaced", "id", book.ID, "genres", len(book.Genres))
	return book, nil
}
