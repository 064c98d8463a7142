package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/bookprepper/bookprepper-server/internal/domain"
	"github.com/bookprepper/bookprepper-server/internal/store"
)

func scanKeyword(scanner interface{ Scan(dest ...any) error }) (*domain.Keyword, error) {
	var (
		k                    domain.Keyword
		createdAt, updatedAt string
	)
	if err := scanner.Scan(&k.ID, &createdAt, &updatedAt, &k.Slug, &k.Name); err != nil {
		return nil, err
	}
	var err error
	if k.CreatedAt, err = parseTime(createdAt); err != nil {
		return nil, err
	}
	if k.UpdatedAt, err = parseTime(updatedAt); err != nil {
		return nil, err
	}
	return &k, nil
}

// CreateKeyword inserts a keyword.
func (q *queries) CreateKeyword(ctx context.Context, k *domain.Keyword) error {
	_, err := q.db.ExecContext(ctx, `
		INSERT INTO keywords (id, created_at, updated_at, slug, name) VALUES (?, ?, ?, ?, ?)`,
		k.ID, formatTime(k.CreatedAt), formatTime(k.UpdatedAt), k.Slug, k.Name,
	)
	return mapWriteErr(err)
}

// GetKeywordBySlug retrieves a keyword by slug.
func (q *queries) GetKeywordBySlug(ctx context.Context, slug string) (*domain.Keyword, error) {
	row := q.db.QueryRowContext(ctx,
		`SELECT id, created_at, updated_at, slug, name FROM keywords WHERE slug = ?`, slug)
	k, err := scanKeyword(row)
	if err != nil {
		return nil, mapReadErr(err)
	}
	return k, nil
}

// RenameKeyword updates a keyword's display name.
func (q *queries) RenameKeyword(ctx context.Context, id, name string, at time.Time) error {
	res, err := q.db.ExecContext(ctx,
		`UPDATE keywords SET name = ?, updated_at = ? WHERE id = ?`, name, formatTime(at), id)
	if err != nil {
		return fmt.Errorf("rename keyword: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return store.ErrNotFound
	}
	return nil
}

// prepColumns must match the scan order in scanPrep.
const prepColumns = `id, created_at, updated_at, book_id, heading, summary, watch_for, color_hint`

func scanPrep(scanner interface{ Scan(dest ...any) error }) (*domain.Prep, error) {
	var (
		p                    domain.Prep
		createdAt, updatedAt string
		watchFor, colorHint  sql.NullString
	)
	err := scanner.Scan(&p.ID, &createdAt, &updatedAt, &p.BookID, &p.Heading, &p.Summary, &watchFor, &colorHint)
	if err != nil {
		return nil, err
	}
	if p.CreatedAt, err = parseTime(createdAt); err != nil {
		return nil, err
	}
	if p.UpdatedAt, err = parseTime(updatedAt); err != nil {
		return nil, err
	}
	p.WatchFor = stringPtr(watchFor)
	p.ColorHint = stringPtr(colorHint)
	return &p, nil
}

// CreatePrep inserts a prep and links its keywords.
func (q *queries) CreatePrep(ctx context.Context, p *domain.Prep) error {
	_, err := q.db.ExecContext(ctx, `
		INSERT INTO preps (`+prepColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		p.ID,
		formatTime(p.CreatedAt),
		formatTime(p.UpdatedAt),
		p.BookID,
		p.Heading,
		p.Summary,
		nullableString(p.WatchFor),
		nullableString(p.ColorHint),
	)
	if err != nil {
		return mapWriteErr(err)
	}
	if len(p.Keywords) == 0 {
		return nil
	}
	ids := make([]string, len(p.Keywords))
	for i, k := range p.Keywords {
		ids[i] = k.ID
	}
	return q.SetPrepKeywords(ctx, p.ID, ids)
}

// UpdatePrep overwrites a prep's text fields.
func (q *queries) UpdatePrep(ctx context.Context, p *domain.Prep) error {
	res, err := q.db.ExecContext(ctx, `
		UPDATE preps SET updated_at = ?, heading = ?, summary = ?, watch_for = ?, color_hint = ?
		WHERE id = ?`,
		formatTime(p.UpdatedAt),
		p.Heading,
		p.Summary,
		nullableString(p.WatchFor),
		nullableString(p.ColorHint),
		p.ID,
	)
	if err != nil {
		return fmt.Errorf("update prep: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return store.ErrNotFound
	}
	return nil
}

// DeletePrep removes a prep. Feedback, votes and the cached score cascade.
func (q *queries) DeletePrep(ctx context.Context, id string) error {
	res, err := q.db.ExecContext(ctx, `DELETE FROM preps WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete prep: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return store.ErrNotFound
	}
	return nil
}

// GetPrep retrieves a prep with its keywords.
func (q *queries) GetPrep(ctx context.Context, id string) (*domain.Prep, error) {
	row := q.db.QueryRowContext(ctx, `SELECT `+prepColumns+` FROM preps WHERE id = ?`, id)
	p, err := scanPrep(row)
	if err != nil {
		return nil, mapReadErr(err)
	}
	if p.Keywords, err = q.prepKeywords(ctx, p.ID); err != nil {
		return nil, err
	}
	return p, nil
}

func (q *queries) queryPreps(ctx context.Context, query string, args ...any) ([]*domain.Prep, error) {
	rows, err := q.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query preps: %w", err)
	}
	defer rows.Close()

	var preps []*domain.Prep
	for rows.Next() {
		p, err := scanPrep(rows)
		if err != nil {
			return nil, fmt.Errorf("scan prep: %w", err)
		}
		preps = append(preps, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration: %w", err)
	}
	rows.Close()

	for _, p := range preps {
		if p.Keywords, err = q.prepKeywords(ctx, p.ID); err != nil {
			return nil, err
		}
	}
	return preps, nil
}

// ListPrepsByBook returns a book's preps, oldest first.
func (q *queries) ListPrepsByBook(ctx context.Context, bookID string) ([]*domain.Prep, error) {
	return q.queryPreps(ctx,
		`SELECT `+prepColumns+` FROM preps WHERE book_id = ? ORDER BY created_at, id`, bookID)
}

// ListAllPreps returns every prep. Used to build the search index.
func (q *queries) ListAllPreps(ctx context.Context) ([]*domain.Prep, error) {
	return q.queryPreps(ctx, `SELECT `+prepColumns+` FROM preps ORDER BY created_at, id`)
}

// ListPrepIDs returns every prep id.
func (q *queries) ListPrepIDs(ctx context.Context) ([]string, error) {
	rows, err := q.db.QueryContext(ctx, `SELECT id FROM preps ORDER BY created_at, id`)
	if err != nil {
		return nil, fmt.Errorf("query prep ids: %w", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan prep id: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// SetPrepKeywords replaces the prep's keyword set.
func (q *queries) SetPrepKeywords(ctx context.Context, prepID string, keywordIDs []string) error {
	if _, err := q.db.ExecContext(ctx, `DELETE FROM prep_keywords WHERE prep_id = ?`, prepID); err != nil {
		return fmt.Errorf("delete prep_keywords: %w", err)
	}
	for _, kwID := range keywordIDs {
		_, err := q.db.ExecContext(ctx,
			`INSERT OR IGNORE INTO prep_keywords (prep_id, keyword_id) VALUES (?, ?)`, prepID, kwID)
		if err != nil {
			return fmt.Errorf("insert prep_keyword: %w", err)
		}
	}
	return nil
}

func (q *queries) prepKeywords(ctx context.Context, prepID string) ([]domain.Keyword, error) {
	rows, err := q.db.QueryContext(ctx, `
		SELECT k.id, k.created_at, k.updated_at, k.slug, k.name
		FROM keywords k
		JOIN prep_keywords pk ON pk.keyword_id = k.id
		WHERE pk.prep_id = ?
		ORDER BY k.name`, prepID)
	if err != nil {
		return nil, fmt.Errorf("query prep keywords: %w", err)
	}
	defer rows.Close()

	var keywords []domain.Keyword
	for rows.Next() {
		k, err := scanKeyword(rows)
		if err != nil {
			return nil, fmt.Errorf("scan keyword: %w", err)
		}
		keywords = append(keywords, *k)
	}
	return keywords, rows.Err()
}
