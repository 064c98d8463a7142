package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/bookprepper/bookprepper-server/internal/domain"
	"github.com/bookprepper/bookprepper-server/internal/normalize"
	"github.com/bookprepper/bookprepper-server/internal/store"
)

// CreateAuthor inserts an author.
func (q *queries) CreateAuthor(ctx context.Context, a *domain.Author) error {
	_, err := q.db.ExecContext(ctx, `
		INSERT INTO authors (id, created_at, updated_at, slug, name, name_key)
		VALUES (?, ?, ?, ?, ?, ?)`,
		a.ID, formatTime(a.CreatedAt), formatTime(a.UpdatedAt), a.Slug, a.Name, normalize.NameKey(a.Name),
	)
	return mapWriteErr(err)
}

func scanAuthor(scanner interface{ Scan(dest ...any) error }) (*domain.Author, error) {
	var (
		a                    domain.Author
		createdAt, updatedAt string
	)
	if err := scanner.Scan(&a.ID, &createdAt, &updatedAt, &a.Slug, &a.Name); err != nil {
		return nil, err
	}
	var err error
	if a.CreatedAt, err = parseTime(createdAt); err != nil {
		return nil, err
	}
	if a.UpdatedAt, err = parseTime(updatedAt); err != nil {
		return nil, err
	}
	return &a, nil
}

// GetAuthor retrieves an author by id.
func (q *queries) GetAuthor(ctx context.Context, id string) (*domain.Author, error) {
	row := q.db.QueryRowContext(ctx,
		`SELECT id, created_at, updated_at, slug, name FROM authors WHERE id = ?`, id)
	a, err := scanAuthor(row)
	if err != nil {
		return nil, mapReadErr(err)
	}
	return a, nil
}

// FindAuthorByName matches on the normalized, lowercased name. The oldest
// author wins if duplicates exist.
func (q *queries) FindAuthorByName(ctx context.Context, name string) (*domain.Author, error) {
	row := q.db.QueryRowContext(ctx, `
		SELECT id, created_at, updated_at, slug, name FROM authors
		WHERE name_key = ? ORDER BY created_at LIMIT 1`, normalize.NameKey(name))
	a, err := scanAuthor(row)
	if err != nil {
		return nil, mapReadErr(err)
	}
	return a, nil
}

// bookColumns must match the scan order in scanBook. The author is joined.
const bookColumns = `b.id, b.created_at, b.updated_at, b.slug, b.title, b.author_id,
	b.isbn, b.synopsis, b.cover_url, b.published_year,
	a.id, a.created_at, a.updated_at, a.slug, a.name`

const bookFrom = ` FROM books b JOIN authors a ON a.id = b.author_id`

func scanBook(scanner interface{ Scan(dest ...any) error }) (*domain.Book, error) {
	var (
		b                     domain.Book
		a                     domain.Author
		createdAt, updatedAt  string
		aCreated, aUpdated    string
		isbn, synopsis, cover sql.NullString
		publishedYear         sql.NullInt64
	)
	err := scanner.Scan(
		&b.ID, &createdAt, &updatedAt, &b.Slug, &b.Title, &b.AuthorID,
		&isbn, &synopsis, &cover, &publishedYear,
		&a.ID, &aCreated, &aUpdated, &a.Slug, &a.Name,
	)
	if err != nil {
		return nil, err
	}

	if b.CreatedAt, err = parseTime(createdAt); err != nil {
		return nil, err
	}
	if b.UpdatedAt, err = parseTime(updatedAt); err != nil {
		return nil, err
	}
	if a.CreatedAt, err = parseTime(aCreated); err != nil {
		return nil, err
	}
	if a.UpdatedAt, err = parseTime(aUpdated); err != nil {
		return nil, err
	}

	b.ISBN = stringPtr(isbn)
	b.Synopsis = synopsis.String
	b.CoverURL = cover.String
	b.PublishedYear = int(publishedYear.Int64)
	b.Author = &a
	return &b, nil
}

// CreateBook inserts a book and its genre links.
// Returns store.ErrAlreadyExists if the slug is taken.
func (q *queries) CreateBook(ctx context.Context, b *domain.Book) error {
	_, err := q.db.ExecContext(ctx, `
		INSERT INTO books (
			id, created_at, updated_at, slug, title, author_id,
			isbn, synopsis, cover_url, published_year
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		b.ID,
		formatTime(b.CreatedAt),
		formatTime(b.UpdatedAt),
		b.Slug,
		b.Title,
		b.AuthorID,
		nullableString(b.ISBN),
		nullString(b.Synopsis),
		nullString(b.CoverURL),
		nullInt64(int64(b.PublishedYear)),
	)
	if err != nil {
		return mapWriteErr(err)
	}
	if len(b.Genres) == 0 {
		return nil
	}
	ids := make([]string, len(b.Genres))
	for i, g := range b.Genres {
		ids[i] = g.ID
	}
	return q.SetBookGenres(ctx, b.ID, ids)
}

// UpdateBook overwrites the book's scalar fields. Genres are left alone.
func (q *queries) UpdateBook(ctx context.Context, b *domain.Book) error {
	res, err := q.db.ExecContext(ctx, `
		UPDATE books SET
			updated_at = ?, slug = ?, title = ?, author_id = ?,
			isbn = ?, synopsis = ?, cover_url = ?, published_year = ?
		WHERE id = ?`,
		formatTime(b.UpdatedAt),
		b.Slug,
		b.Title,
		b.AuthorID,
		nullableString(b.ISBN),
		nullString(b.Synopsis),
		nullString(b.CoverURL),
		nullInt64(int64(b.PublishedYear)),
		b.ID,
	)
	if err != nil {
		return mapWriteErr(err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if n == 0 {
		return store.ErrNotFound
	}
	return nil
}

func (q *queries) getBookWhere(ctx context.Context, where string, arg string) (*domain.Book, error) {
	row := q.db.QueryRowContext(ctx, `SELECT `+bookColumns+bookFrom+` WHERE `+where, arg)
	b, err := scanBook(row)
	if err != nil {
		return nil, mapReadErr(err)
	}
	if b.Genres, err = q.GetBookGenres(ctx, b.ID); err != nil {
		return nil, err
	}
	return b, nil
}

// GetBook retrieves a book with author and genres by id.
func (q *queries) GetBook(ctx context.Context, id string) (*domain.Book, error) {
	return q.getBookWhere(ctx, `b.id = ?`, id)
}

// GetBookBySlug retrieves a book with author and genres by slug.
func (q *queries) GetBookBySlug(ctx context.Context, slug string) (*domain.Book, error) {
	return q.getBookWhere(ctx, `b.slug = ?`, slug)
}

func (q *queries) queryBooks(ctx context.Context, query string, args ...any) ([]*domain.Book, error) {
	rows, err := q.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query books: %w", err)
	}
	defer rows.Close()

	var books []*domain.Book
	for rows.Next() {
		b, err := scanBook(rows)
		if err != nil {
			return nil, fmt.Errorf("scan book: %w", err)
		}
		books = append(books, b)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration: %w", err)
	}

	// Genres are loaded after the cursor closes; a single pooled
	// connection cannot serve a nested query.
	rows.Close()
	for _, b := range books {
		if b.Genres, err = q.GetBookGenres(ctx, b.ID); err != nil {
			return nil, err
		}
	}
	return books, nil
}

// ListBooks returns a page of books ordered by title.
func (q *queries) ListBooks(ctx context.Context, f store.BookFilter) (store.PaginatedResult[*domain.Book], error) {
	f.Validate()
	offset, err := f.Offset()
	if err != nil {
		return store.PaginatedResult[*domain.Book]{}, err
	}

	var (
		conds []string
		args  []any
	)
	if f.GenreSlug != "" {
		conds = append(conds, `EXISTS (SELECT 1 FROM book_genres bg JOIN genres g ON g.id = bg.genre_id
			WHERE bg.book_id = b.id AND g.slug = ?)`)
		args = append(args, f.GenreSlug)
	}
	if f.AuthorID != "" {
		conds = append(conds, `b.author_id = ?`)
		args = append(args, f.AuthorID)
	}
	where := ""
	if len(conds) > 0 {
		where = ` WHERE ` + strings.Join(conds, ` AND `)
	}

	var total int
	if err := q.db.QueryRowContext(ctx, `SELECT COUNT(*)`+bookFrom+where, args...).Scan(&total); err != nil {
		return store.PaginatedResult[*domain.Book]{}, fmt.Errorf("count books: %w", err)
	}

	pageArgs := append(append([]any{}, args...), f.Limit+1, offset)
	books, err := q.queryBooks(ctx,
		`SELECT `+bookColumns+bookFrom+where+` ORDER BY b.title COLLATE NOCASE, b.id LIMIT ? OFFSET ?`,
		pageArgs...)
	if err != nil {
		return store.PaginatedResult[*domain.Book]{}, err
	}
	return store.NewPage(books, f.PaginationParams, offset, total), nil
}

// ListAllBooks returns every book. Used to build the search index.
func (q *queries) ListAllBooks(ctx context.Context) ([]*domain.Book, error) {
	return q.queryBooks(ctx, `SELECT `+bookColumns+bookFrom+` ORDER BY b.created_at`)
}
