package sqlite

import (
	"context"
	"fmt"

	"github.com/bookprepper/bookprepper-server/internal/domain"
)

// CatalogStats counts catalog rows in one statement.
func (q *queries) CatalogStats(ctx context.Context) (*domain.CatalogStats, error) {
	var s domain.CatalogStats
	err := q.db.QueryRowContext(ctx, `
		SELECT
			(SELECT COUNT(*) FROM books),
			(SELECT COUNT(*) FROM authors),
			(SELECT COUNT(*) FROM genres),
			(SELECT COUNT(*) FROM preps),
			(SELECT COUNT(*) FROM prep_feedback),
			(SELECT COUNT(*) FROM book_suggestions WHERE status = 'PENDING') +
			(SELECT COUNT(*) FROM book_metadata_suggestions WHERE status = 'PENDING') +
			(SELECT COUNT(*) FROM prep_suggestions WHERE status = 'PENDING')`,
	).Scan(&s.Books, &s.Authors, &s.Genres, &s.Preps, &s.FeedbackEvents, &s.PendingSuggestions)
	if err != nil {
		return nil, fmt.Errorf("catalog stats: %w", err)
	}
	return &s, nil
}
