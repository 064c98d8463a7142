package sqlite

import (
	"context"
	"fmt"

	"github.com/bookprepper/bookprepper-server/internal/domain"
	"github.com/bookprepper/bookprepper-server/internal/store"
)

// SlugExists reports whether table already holds slug.
func (q *queries) SlugExists(ctx context.Context, table store.SlugTable, slug string) (bool, error) {
	switch table {
	case store.SlugAuthors, store.SlugBooks, store.SlugGenres, store.SlugKeywords:
	default:
		return false, fmt.Errorf("unknown slug table %q", table)
	}
	var exists int
	err := q.db.QueryRowContext(ctx,
		`SELECT EXISTS(SELECT 1 FROM `+string(table)+` WHERE slug = ?)`, slug).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("check slug: %w", err)
	}
	return exists == 1, nil
}

// genreColumns must match the scan order in scanGenre.
const genreColumns = `id, created_at, updated_at, slug, name`

// scanGenre scans a sql.Row (or sql.Rows via its Scan method) into a domain.Genre.
func scanGenre(scanner interface{ Scan(dest ...any) error }) (*domain.Genre, error) {
	var (
		g                    domain.Genre
		createdAt, updatedAt string
	)
	if err := scanner.Scan(&g.ID, &createdAt, &updatedAt, &g.Slug, &g.Name); err != nil {
		return nil, err
	}
	var err error
	if g.CreatedAt, err = parseTime(createdAt); err != nil {
		return nil, err
	}
	if g.UpdatedAt, err = parseTime(updatedAt); err != nil {
		return nil, err
	}
	return &g, nil
}

func (q *queries) queryGenres(ctx context.Context, query string, args ...any) ([]domain.Genre, error) {
	rows, err := q.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query genres: %w", err)
	}
	defer rows.Close()

	var genres []domain.Genre
	for rows.Next() {
		g, err := scanGenre(rows)
		if err != nil {
			return nil, fmt.Errorf("scan genre: %w", err)
		}
		genres = append(genres, *g)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration: %w", err)
	}
	return genres, nil
}

// CreateGenre inserts a genre.
// Returns store.ErrAlreadyExists if the id or slug is taken.
func (q *queries) CreateGenre(ctx context.Context, g *domain.Genre) error {
	_, err := q.db.ExecContext(ctx, `
		INSERT INTO genres (id, created_at, updated_at, slug, name)
		VALUES (?, ?, ?, ?, ?)`,
		g.ID, formatTime(g.CreatedAt), formatTime(g.UpdatedAt), g.Slug, g.Name,
	)
	return mapWriteErr(err)
}

// GetGenreBySlug retrieves a genre by slug.
func (q *queries) GetGenreBySlug(ctx context.Context, slug string) (*domain.Genre, error) {
	row := q.db.QueryRowContext(ctx, `SELECT `+genreColumns+` FROM genres WHERE slug = ?`, slug)
	g, err := scanGenre(row)
	if err != nil {
		return nil, mapReadErr(err)
	}
	return g, nil
}

// GetGenresBySlugs returns existing genres matching slugs, ordered by name.
func (q *queries) GetGenresBySlugs(ctx context.Context, slugs []string) ([]domain.Genre, error) {
	if len(slugs) == 0 {
		return nil, nil
	}
	return q.queryGenres(ctx,
		`SELECT `+genreColumns+` FROM genres WHERE slug IN (`+placeholders(len(slugs))+`) ORDER BY name`,
		anyArgs(slugs)...)
}

// GetGenresByIDs returns existing genres matching ids, ordered by name.
func (q *queries) GetGenresByIDs(ctx context.Context, ids []string) ([]domain.Genre, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	return q.queryGenres(ctx,
		`SELECT `+genreColumns+` FROM genres WHERE id IN (`+placeholders(len(ids))+`) ORDER BY name`,
		anyArgs(ids)...)
}

// ListGenres returns every genre ordered by name.
func (q *queries) ListGenres(ctx context.Context) ([]domain.Genre, error) {
	return q.queryGenres(ctx, `SELECT `+genreColumns+` FROM genres ORDER BY name`)
}

// SetBookGenres replaces the book's genre set.
func (q *queries) SetBookGenres(ctx context.Context, bookID string, genreIDs []string) error {
	if _, err := q.db.ExecContext(ctx, `DELETE FROM book_genres WHERE book_id = ?`, bookID); err != nil {
		return fmt.Errorf("delete book_genres: %w", err)
	}
	for _, genreID := range genreIDs {
		_, err := q.db.ExecContext(ctx, `
			INSERT OR IGNORE INTO book_genres (book_id, genre_id) VALUES (?, ?)`,
			bookID, genreID)
		if err != nil {
			return fmt.Errorf("insert book_genre: %w", err)
		}
	}
	return nil
}

// GetBookGenres returns the genres attached to a book, ordered by name.
func (q *queries) GetBookGenres(ctx context.Context, bookID string) ([]domain.Genre, error) {
	return q.queryGenres(ctx, `
		SELECT g.id, g.created_at, g.updated_at, g.slug, g.name
		FROM genres g
		JOIN book_genres bg ON bg.genre_id = g.id
		WHERE bg.book_id = ?
		ORDER BY g.name`, bookID)
}
