package search

import (
	"fmt"
	"log/slog"
	"sync"

	"github.com/blevesearch/bleve/v2"
)

// batchSize bounds the number of documents committed per bleve batch.
const batchSize = 500

// SearchIndex holds books and preps in an in-memory bleve index. The store
// is the source of truth; the index is refilled from it at startup.
//
// All methods are safe for concurrent use. Reset takes the write lock so
// no reader sees a closed index.
type SearchIndex struct {
	mu     sync.RWMutex
	index  bleve.Index
	logger *slog.Logger
}

// Options configures the search index.
type Options struct {
	Logger *slog.Logger // discards when nil
}

// NewSearchIndex creates an empty index.
func NewSearchIndex(opts Options) (*SearchIndex, error) {
	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	index, err := newMemIndex()
	if err != nil {
		return nil, err
	}
	return &SearchIndex{index: index, logger: logger}, nil
}

func newMemIndex() (bleve.Index, error) {
	index, err := bleve.NewMemOnly(buildIndexMapping())
	if err != nil {
		return nil, fmt.Errorf("create search index: %w", err)
	}
	return index, nil
}

// Close releases the index.
func (s *SearchIndex) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.index.Close()
}

// IndexDocument adds or replaces a single document.
func (s *SearchIndex) IndexDocument(doc *SearchDocument) error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.index.Index(doc.ID, doc.ToMap())
}

// IndexDocuments adds or replaces docs, committing batchSize at a time.
func (s *SearchIndex) IndexDocuments(docs []*SearchDocument) error {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for start := 0; start < len(docs); start += batchSize {
		end := min(start+batchSize, len(docs))

		batch := s.index.NewBatch()
		for _, doc := range docs[start:end] {
			if err := batch.Index(doc.ID, doc.ToMap()); err != nil {
				return fmt.Errorf("batch index %s: %w", doc.ID, err)
			}
		}
		if err := s.index.Batch(batch); err != nil {
			return fmt.Errorf("commit documents %d-%d: %w", start, end, err)
		}
	}
	return nil
}

// DeleteDocument removes a document. Unknown ids are not an error.
func (s *SearchIndex) DeleteDocument(id string) error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.index.Delete(id)
}

// DocumentCount returns the number of indexed documents.
func (s *SearchIndex) DocumentCount() (uint64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.index.DocCount()
}

// Reset swaps in an empty index before a full refill.
func (s *SearchIndex) Reset() error {
	fresh, err := newMemIndex()
	if err != nil {
		return err
	}

	s.mu.Lock()
	old := s.index
	s.index = fresh
	s.mu.Unlock()

	if err := old.Close(); err != nil {
		s.logger.Warn("close replaced search index", "error", err)
	}
	return nil
}
