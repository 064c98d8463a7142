package moderation

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/bookprepper/bookprepper-server/internal/catalog"
	"github.com/bookprepper/bookprepper-server/internal/domain"
	domainerrors "github.com/bookprepper/bookprepper-server/internal/errors"
	"github.com/bookprepper/bookprepper-server/internal/id"
	"github.com/bookprepper/bookprepper-server/internal/normalize"
	"github.com/bookprepper/bookprepper-server/internal/store"
)

// ApplyMetadata overwrites the target book's synopsis when one is proposed
// and replaces its genres with the proposed slugs that exist.
func ApplyMetadata(ctx context.Context, q store.Querier, s *domain.Suggestion, at time.Time) (Effect, error) {
	p, ok := s.Proposal.(domain.MetadataProposal)
	if !ok {
		return Effect{}, mismatchedProposal(s)
	}

	book, err := getBook(ctx, q, p.BookID)
	if err != nil {
		return Effect{}, err
	}

	if p.Synopsis != nil && strings.TrimSpace(*p.Synopsis) != "" {
		book.Synopsis = normalize.Synopsis(*p.Synopsis, domain.MaxSynopsisLength)
	}
	book.UpdatedAt = at
	if err := q.UpdateBook(ctx, book); err != nil {
		return Effect{}, err
	}

	if len(p.GenreSlugs) > 0 {
		genres, err := catalog.ExistingGenresBySlugs(ctx, q, p.GenreSlugs)
		if err != nil {
			return Effect{}, err
		}
		if err := q.SetBookGenres(ctx, book.ID, catalog.GenreIDs(genres)); err != nil {
			return Effect{}, err
		}
		book.Genres = genres
	}

	return Effect{EntityID: book.ID, Book: book}, nil
}

// ApplyPrep creates a prep under the target book from the proposal's title
// and description, tagging it with the keyword hints.
func ApplyPrep(ctx context.Context, q store.Querier, s *domain.Suggestion, at time.Time) (Effect, error) {
	p, ok := s.Proposal.(domain.PrepProposal)
	if !ok {
		return Effect{}, mismatchedProposal(s)
	}

	book, err := getBook(ctx, q, p.BookID)
	if err != nil {
		return Effect{}, err
	}

	keywords, err := catalog.UpsertKeywords(ctx, q, p.KeywordHints, at)
	if err != nil {
		return Effect{}, err
	}

	prepID, err := id.Generate(id.PrefixPrep)
	if err != nil {
		return Effect{}, err
	}
	prep := &domain.Prep{
		Entity:   domain.Entity{ID: prepID, CreatedAt: at, UpdatedAt: at},
		BookID:   book.ID,
		Heading:  normalize.Truncate(strings.TrimSpace(p.Title), domain.MaxHeadingLength),
		Summary:  normalize.Truncate(strings.TrimSpace(p.Description), domain.MaxSummaryLength),
		Keywords: keywords,
	}
	if err := q.CreatePrep(ctx, prep); err != nil {
		return Effect{}, err
	}

	return Effect{EntityID: prep.ID, Book: book, Prep: prep}, nil
}

// ApplyBook creates the proposed book, resolving or creating its author and
// creating any genre that does not exist yet.
func ApplyBook(ctx context.Context, q store.Querier, s *domain.Suggestion, at time.Time) (Effect, error) {
	p, ok := s.Proposal.(domain.BookProposal)
	if !ok {
		return Effect{}, mismatchedProposal(s)
	}

	author, err := catalog.ResolveAuthor(ctx, q, "", p.AuthorName, at)
	if err != nil {
		return Effect{}, err
	}

	title := normalize.Name(p.Title)
	slug, err := catalog.EnsureUniqueSlug(ctx, q, store.SlugBooks, title)
	if err != nil {
		return Effect{}, err
	}

	genres, err := catalog.ResolveOrCreateGenres(ctx, q, p.GenreIdeas, at)
	if err != nil {
		return Effect{}, err
	}

	bookID, err := id.Generate(id.PrefixBook)
	if err != nil {
		return Effect{}, err
	}
	book := &domain.Book{
		Entity:   domain.Entity{ID: bookID, CreatedAt: at, UpdatedAt: at},
		Slug:     slug,
		Title:    title,
		AuthorID: author.ID,
		ISBN:     normalize.ISBNPtr(p.ISBN),
		Author:   author,
		Genres:   genres,
	}
	if p.Synopsis != nil {
		book.Synopsis = normalize.Synopsis(*p.Synopsis, domain.MaxSynopsisLength)
	}
	if err := q.CreateBook(ctx, book); err != nil {
		return Effect{}, err
	}

	return Effect{EntityID: book.ID, Book: book}, nil
}

func getBook(ctx context.Context, q store.Querier, bookID string) (*domain.Book, error) {
	book, err := q.GetBook(ctx, bookID)
	if errors.Is(err, store.ErrNotFound) {
		return nil, domainerrors.NotFoundf("book %s not found", bookID)
	}
	return book, err
}

func mismatchedProposal(s *domain.Suggestion) error {
	return domainerrors.Validationf("suggestion %s carries a %s proposal", s.ID, s.Kind())
}
