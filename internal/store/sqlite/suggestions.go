package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"sort"
	"strings"

	"github.com/bookprepper/bookprepper-server/internal/domain"
	"github.com/bookprepper/bookprepper-server/internal/store"
)

// Every suggestion table starts with the same moderation columns; the
// kind-specific proposal columns follow.
const suggestionBaseColumns = `id, user_id, status, moderator_note, reviewed_at, created_at`

var suggestionTables = map[domain.SuggestionKind]struct {
	table    string
	proposal string
}{
	domain.SuggestionBook:     {"book_suggestions", "title, author_name, isbn, synopsis, genre_ideas, notes"},
	domain.SuggestionMetadata: {"book_metadata_suggestions", "book_id, synopsis, genre_slugs, notes"},
	domain.SuggestionPrep:     {"prep_suggestions", "book_id, title, description, keyword_hints"},
}

func suggestionTable(kind domain.SuggestionKind) (table, columns string, err error) {
	t, ok := suggestionTables[kind]
	if !ok {
		return "", "", fmt.Errorf("unknown suggestion kind %q", kind)
	}
	return t.table, suggestionBaseColumns + ", " + t.proposal, nil
}

// CreateSuggestion inserts a suggestion into the table for its kind.
func (q *queries) CreateSuggestion(ctx context.Context, s *domain.Suggestion) error {
	table, columns, err := suggestionTable(s.Kind())
	if err != nil {
		return err
	}

	base := []any{
		s.ID,
		s.UserID,
		string(s.Status),
		nullableString(s.ModeratorNote),
		nullTimeString(s.ReviewedAt),
		formatTime(s.CreatedAt),
	}

	var proposal []any
	switch p := s.Proposal.(type) {
	case domain.BookProposal:
		ideas, err := encodeList(p.GenreIdeas)
		if err != nil {
			return err
		}
		proposal = []any{p.Title, p.AuthorName, nullableString(p.ISBN), nullableString(p.Synopsis), ideas, nullableString(p.Notes)}
	case domain.MetadataProposal:
		slugs, err := encodeList(p.GenreSlugs)
		if err != nil {
			return err
		}
		proposal = []any{p.BookID, nullableString(p.Synopsis), slugs, nullableString(p.Notes)}
	case domain.PrepProposal:
		hints, err := encodeList(p.KeywordHints)
		if err != nil {
			return err
		}
		proposal = []any{p.BookID, p.Title, p.Description, hints}
	}

	args := append(base, proposal...)
	_, err = q.db.ExecContext(ctx,
		`INSERT INTO `+table+` (`+columns+`) VALUES (`+placeholders(len(args))+`)`, args...)
	return mapWriteErr(err)
}

func scanSuggestion(kind domain.SuggestionKind, scanner interface{ Scan(dest ...any) error }) (*domain.Suggestion, error) {
	var (
		s          domain.Suggestion
		status     string
		note       sql.NullString
		reviewedAt sql.NullString
		createdAt  string
	)
	dest := []any{&s.ID, &s.UserID, &status, &note, &reviewedAt, &createdAt}

	var (
		book     domain.BookProposal
		meta     domain.MetadataProposal
		prep     domain.PrepProposal
		opt1     sql.NullString
		opt2     sql.NullString
		opt3     sql.NullString
		listJSON string
	)
	switch kind {
	case domain.SuggestionBook:
		dest = append(dest, &book.Title, &book.AuthorName, &opt1, &opt2, &listJSON, &opt3)
	case domain.SuggestionMetadata:
		dest = append(dest, &meta.BookID, &opt1, &listJSON, &opt2)
	case domain.SuggestionPrep:
		dest = append(dest, &prep.BookID, &prep.Title, &prep.Description, &listJSON)
	default:
		return nil, fmt.Errorf("unknown suggestion kind %q", kind)
	}

	if err := scanner.Scan(dest...); err != nil {
		return nil, err
	}

	switch kind {
	case domain.SuggestionBook:
		book.ISBN = stringPtr(opt1)
		book.Synopsis = stringPtr(opt2)
		book.GenreIdeas = decodeList(listJSON)
		book.Notes = stringPtr(opt3)
		s.Proposal = book
	case domain.SuggestionMetadata:
		meta.Synopsis = stringPtr(opt1)
		meta.GenreSlugs = decodeList(listJSON)
		meta.Notes = stringPtr(opt2)
		s.Proposal = meta
	case domain.SuggestionPrep:
		prep.KeywordHints = decodeList(listJSON)
		s.Proposal = prep
	}

	s.Status = domain.SuggestionStatus(status)
	s.ModeratorNote = stringPtr(note)
	var err error
	if s.ReviewedAt, err = parseNullableTime(reviewedAt); err != nil {
		return nil, err
	}
	if s.CreatedAt, err = parseTime(createdAt); err != nil {
		return nil, err
	}
	return &s, nil
}

// GetSuggestion retrieves a suggestion of the given kind.
func (q *queries) GetSuggestion(ctx context.Context, kind domain.SuggestionKind, id string) (*domain.Suggestion, error) {
	table, columns, err := suggestionTable(kind)
	if err != nil {
		return nil, err
	}
	row := q.db.QueryRowContext(ctx, `SELECT `+columns+` FROM `+table+` WHERE id = ?`, id)
	s, err := scanSuggestion(kind, row)
	if err != nil {
		return nil, mapReadErr(err)
	}
	return s, nil
}

func (q *queries) listSuggestionsOfKind(ctx context.Context, kind domain.SuggestionKind, f store.SuggestionFilter) ([]*domain.Suggestion, error) {
	table, columns, err := suggestionTable(kind)
	if err != nil {
		return nil, err
	}

	var (
		conds []string
		args  []any
	)
	if f.Status != "" {
		conds = append(conds, "status = ?")
		args = append(args, string(f.Status))
	}
	if f.UserID != "" {
		conds = append(conds, "user_id = ?")
		args = append(args, f.UserID)
	}
	query := `SELECT ` + columns + ` FROM ` + table
	if len(conds) > 0 {
		query += ` WHERE ` + strings.Join(conds, ` AND `)
	}

	rows, err := q.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query %s: %w", table, err)
	}
	defer rows.Close()

	var out []*domain.Suggestion
	for rows.Next() {
		s, err := scanSuggestion(kind, rows)
		if err != nil {
			return nil, fmt.Errorf("scan suggestion: %w", err)
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

// ListSuggestions returns suggestions newest first. With no kind in the
// filter all three tables are merged.
func (q *queries) ListSuggestions(ctx context.Context, f store.SuggestionFilter) (store.PaginatedResult[*domain.Suggestion], error) {
	f.Validate()
	offset, err := f.Offset()
	if err != nil {
		return store.PaginatedResult[*domain.Suggestion]{}, err
	}

	kinds := domain.SuggestionKinds
	if f.Kind != "" {
		kinds = []domain.SuggestionKind{f.Kind}
	}

	var all []*domain.Suggestion
	for _, kind := range kinds {
		items, err := q.listSuggestionsOfKind(ctx, kind, f)
		if err != nil {
			return store.PaginatedResult[*domain.Suggestion]{}, err
		}
		all = append(all, items...)
	}

	sort.SliceStable(all, func(i, j int) bool {
		if !all[i].CreatedAt.Equal(all[j].CreatedAt) {
			return all[i].CreatedAt.After(all[j].CreatedAt)
		}
		return all[i].ID < all[j].ID
	})

	total := len(all)
	if offset > total {
		offset = total
	}
	end := min(offset+f.Limit+1, total)
	return store.NewPage(all[offset:end], f.PaginationParams, offset, total), nil
}

// ResolveSuggestion writes a terminal status only while the row is still
// pending. The first resolver wins; later ones get store.ErrNotPending.
func (q *queries) ResolveSuggestion(ctx context.Context, kind domain.SuggestionKind, id string, r store.Resolution) error {
	table, _, err := suggestionTable(kind)
	if err != nil {
		return err
	}

	res, err := q.db.ExecContext(ctx, `
		UPDATE `+table+` SET status = ?, moderator_note = ?, reviewed_at = ?
		WHERE id = ? AND status = ?`,
		string(r.Status),
		nullableString(r.Note),
		formatTime(r.ReviewedAt),
		id,
		string(domain.StatusPending),
	)
	if err != nil {
		return fmt.Errorf("resolve suggestion: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if n == 1 {
		return nil
	}

	var exists int
	if err := q.db.QueryRowContext(ctx,
		`SELECT EXISTS(SELECT 1 FROM `+table+` WHERE id = ?)`, id).Scan(&exists); err != nil {
		return fmt.Errorf("check suggestion: %w", err)
	}
	if exists == 0 {
		return store.ErrNotFound
	}
	return store.ErrNotPending
}
