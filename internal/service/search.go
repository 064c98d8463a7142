package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/bookprepper/bookprepper-server/internal/domain"
	"github.com/bookprepper/bookprepper-server/internal/search"
	"github.com/bookprepper/bookprepper-server/internal/store"
)

// SearchService keeps the search index in step with the catalog and runs
// queries against it.
type SearchService struct {
	index  *search.SearchIndex
	store  store.Store
	logger *slog.Logger
}

// NewSearchService creates a new search service.
func NewSearchService(index *search.SearchIndex, store store.Store, logger *slog.Logger) *SearchService {
	return &SearchService{
		index:  index,
		store:  store,
		logger: logger,
	}
}

// Search runs a query over books and preps.
func (s *SearchService) Search(ctx context.Context, params search.SearchParams) (*search.SearchResult, error) {
	return s.index.Search(ctx, params)
}

// IndexBook indexes a single book. The book must carry its author and genres.
func (s *SearchService) IndexBook(_ context.Context, book *domain.Book) error {
	if err := s.index.IndexDocument(search.BookToSearchDocument(book)); err != nil {
		return fmt.Errorf("index book: %w", err)
	}
	s.logger.Debug("indexed book", "id", book.ID, "title", book.Title)
	return nil
}

// IndexPrep indexes a single prep. bookTitle is looked up when empty.
func (s *SearchService) IndexPrep(ctx context.Context, p *domain.Prep, bookTitle string) error {
	if bookTitle == "" {
		if book, err := s.store.GetBook(ctx, p.BookID); err == nil {
			bookTitle = book.Title
		}
	}
	if err := s.index.IndexDocument(search.PrepToSearchDocument(p, bookTitle)); err != nil {
		return fmt.Errorf("index prep: %w", err)
	}
	s.logger.Debug("indexed prep", "id", p.ID, "book_id", p.BookID)
	return nil
}

// DeletePrep removes a prep from the index.
func (s *SearchService) DeletePrep(_ context.Context, prepID string) error {
	return s.index.DeleteDocument(prepID)
}

// DocumentCount returns the number of indexed documents.
func (s *SearchService) DocumentCount() (uint64, error) {
	return s.index.DocumentCount()
}

// ReindexAll drops the index and rebuilds it from every book and prep.
func (s *SearchService) ReindexAll(ctx context.Context) error {
	s.logger.Info("starting full reindex")

	if err := s.index.Reset(); err != nil {
		return fmt.Errorf("reset index: %w", err)
	}

	books, err := s.store.ListAllBooks(ctx)
	if err != nil {
		return fmt.Errorf("list books: %w", err)
	}
	titles := make(map[string]string, len(books))
	docs := make([]*search.SearchDocument, 0, len(books))
	for _, book := range books {
		titles[book.ID] = book.Title
		docs = append(docs, search.BookToSearchDocument(book))
	}

	preps, err := s.store.ListAllPreps(ctx)
	if err != nil {
		return fmt.Errorf("list preps: %w", err)
	}
	for _, p := range preps {
		docs = append(docs, search.PrepToSearchDocument(p, titles[p.BookID]))
	}

	if len(docs) > 0 {
		if err := s.index.IndexDocuments(docs); err != nil {
			return fmt.Errorf("index documents: %w", err)
		}
	}

	s.logger.Info("full reindex complete", "books", len(books), "preps", len(preps))
	return nil
}

// indexEffect pushes a created or updated book or prep into the index.
// Index failures are logged; the catalog write has already committed.
func (s *SearchService) indexEffect(ctx context.Context, book *domain.Book, prep *domain.Prep) {
	if s == nil {
		return
	}
	if prep != nil {
		title := ""
		if book != nil {
			title = book.Title
		}
		if err := s.IndexPrep(ctx, prep, title); err != nil {
			s.logger.Warn("failed to index prep", "id", prep.ID, "error", err)
		}
		return
	}
	if book != nil {
		if err := s.IndexBook(ctx, book); err != nil {
			s.logger.Warn("failed to index book", "id", book.ID, "error", err)
		}
	}
}
