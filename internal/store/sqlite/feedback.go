package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/bookprepper/bookprepper-server/internal/domain"
	"github.com/bookprepper/bookprepper-server/internal/store"
)

// CreateFeedbackEvent appends a feedback event.
func (q *queries) CreateFeedbackEvent(ctx context.Context, e *domain.FeedbackEvent) error {
	_, err := q.db.ExecContext(ctx, `
		INSERT INTO prep_feedback (id, prep_id, user_id, dimension, value, note, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		e.ID,
		e.PrepID,
		e.UserID,
		string(e.Dimension),
		string(e.Value),
		nullableString(e.Note),
		formatTime(e.CreatedAt),
	)
	return mapWriteErr(err)
}

// AggregateFeedback counts events grouped by dimension and value.
func (q *queries) AggregateFeedback(ctx context.Context, prepID string) ([]domain.FeedbackAggregate, error) {
	rows, err := q.db.QueryContext(ctx, `
		SELECT dimension, value, COUNT(*)
		FROM prep_feedback
		WHERE prep_id = ?
		GROUP BY dimension, value`, prepID)
	if err != nil {
		return nil, fmt.Errorf("aggregate feedback: %w", err)
	}
	defer rows.Close()

	var out []domain.FeedbackAggregate
	for rows.Next() {
		var (
			agg              domain.FeedbackAggregate
			dimension, value string
		)
		if err := rows.Scan(&dimension, &value, &agg.Count); err != nil {
			return nil, fmt.Errorf("scan aggregate: %w", err)
		}
		agg.Dimension = domain.Dimension(dimension)
		agg.Value = domain.VoteValue(value)
		out = append(out, agg)
	}
	return out, rows.Err()
}

// UpsertLegacyVote stores the single vote a user holds for a prep,
// replacing any earlier value and note.
func (q *queries) UpsertLegacyVote(ctx context.Context, v *domain.LegacyVote) error {
	_, err := q.db.ExecContext(ctx, `
		INSERT INTO prep_votes (prep_id, user_id, value, note, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(prep_id, user_id) DO UPDATE SET
			value = excluded.value,
			note = excluded.note,
			updated_at = excluded.updated_at`,
		v.PrepID,
		v.UserID,
		string(v.Value),
		nullableString(v.Note),
		formatTime(v.CreatedAt),
		formatTime(v.UpdatedAt),
	)
	if err != nil {
		return fmt.Errorf("upsert vote: %w", err)
	}
	return nil
}

// GetLegacyVote retrieves a user's vote for a prep.
func (q *queries) GetLegacyVote(ctx context.Context, prepID, userID string) (*domain.LegacyVote, error) {
	var (
		v                    domain.LegacyVote
		value                string
		note                 sql.NullString
		createdAt, updatedAt string
	)
	err := q.db.QueryRowContext(ctx, `
		SELECT prep_id, user_id, value, note, created_at, updated_at
		FROM prep_votes WHERE prep_id = ? AND user_id = ?`, prepID, userID,
	).Scan(&v.PrepID, &v.UserID, &value, &note, &createdAt, &updatedAt)
	if err != nil {
		return nil, mapReadErr(err)
	}
	v.Value = domain.VoteValue(value)
	v.Note = stringPtr(note)
	if v.CreatedAt, err = parseTime(createdAt); err != nil {
		return nil, err
	}
	if v.UpdatedAt, err = parseTime(updatedAt); err != nil {
		return nil, err
	}
	return &v, nil
}

// scoreColumns must match the scan order in scanScore.
const scoreColumns = `prep_id, agree_count, disagree_count, total_count, score,
	dimensions, last_feedback_at, updated_at`

func scanScore(scanner interface{ Scan(dest ...any) error }) (*domain.PromptScore, error) {
	var (
		s            domain.PromptScore
		dimensions   sql.NullString
		lastFeedback sql.NullString
		updatedAt    string
	)
	err := scanner.Scan(&s.PrepID, &s.AgreeCount, &s.DisagreeCount, &s.TotalCount, &s.Score,
		&dimensions, &lastFeedback, &updatedAt)
	if err != nil {
		return nil, err
	}
	if dimensions.Valid {
		s.Dimensions = []byte(dimensions.String)
	}
	if s.LastFeedbackAt, err = parseNullableTime(lastFeedback); err != nil {
		return nil, err
	}
	if s.UpdatedAt, err = parseTime(updatedAt); err != nil {
		return nil, err
	}
	return &s, nil
}

// UpsertPromptScore writes the cached score for a prep.
func (q *queries) UpsertPromptScore(ctx context.Context, s *domain.PromptScore) error {
	var dims sql.NullString
	if len(s.Dimensions) > 0 {
		dims = sql.NullString{String: string(s.Dimensions), Valid: true}
	}
	_, err := q.db.ExecContext(ctx, `
		INSERT INTO prompt_scores (`+scoreColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(prep_id) DO UPDATE SET
			agree_count = excluded.agree_count,
			disagree_count = excluded.disagree_count,
			total_count = excluded.total_count,
			score = excluded.score,
			dimensions = excluded.dimensions,
			last_feedback_at = excluded.last_feedback_at,
			updated_at = excluded.updated_at`,
		s.PrepID,
		s.AgreeCount,
		s.DisagreeCount,
		s.TotalCount,
		s.Score,
		dims,
		nullTimeString(s.LastFeedbackAt),
		formatTime(s.UpdatedAt),
	)
	if err != nil {
		return fmt.Errorf("upsert prompt score: %w", err)
	}
	return nil
}

// GetPromptScore retrieves the cached score for a prep.
// Returns store.ErrNotFound if the prep was never scored.
func (q *queries) GetPromptScore(ctx context.Context, prepID string) (*domain.PromptScore, error) {
	row := q.db.QueryRowContext(ctx, `SELECT `+scoreColumns+` FROM prompt_scores WHERE prep_id = ?`, prepID)
	s, err := scanScore(row)
	if err != nil {
		return nil, mapReadErr(err)
	}
	return s, nil
}

// GetPromptScores loads cached scores for many preps at once.
func (q *queries) GetPromptScores(ctx context.Context, prepIDs []string) (map[string]*domain.PromptScore, error) {
	out := make(map[string]*domain.PromptScore, len(prepIDs))
	if len(prepIDs) == 0 {
		return out, nil
	}
	rows, err := q.db.QueryContext(ctx,
		`SELECT `+scoreColumns+` FROM prompt_scores WHERE prep_id IN (`+placeholders(len(prepIDs))+`)`,
		anyArgs(prepIDs)...)
	if err != nil {
		return nil, fmt.Errorf("query prompt scores: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		s, err := scanScore(rows)
		if err != nil {
			return nil, fmt.Errorf("scan prompt score: %w", err)
		}
		out[s.PrepID] = s
	}
	return out, rows.Err()
}

// ListPromptScores returns cached scores lowest first, so curators see the
// preps readers disagree with most.
func (q *queries) ListPromptScores(ctx context.Context, f store.ScoreFilter) (store.PaginatedResult[*domain.PromptScore], error) {
	f.Validate()
	offset, err := f.Offset()
	if err != nil {
		return store.PaginatedResult[*domain.PromptScore]{}, err
	}

	const cond = ` WHERE total_count >= ?`
	args := []any{f.MinTotal}

	var total int
	if err := q.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM prompt_scores`+cond, args...).Scan(&total); err != nil {
		return store.PaginatedResult[*domain.PromptScore]{}, fmt.Errorf("count prompt scores: %w", err)
	}

	rows, err := q.db.QueryContext(ctx,
		`SELECT `+scoreColumns+` FROM prompt_scores`+cond+` ORDER BY score, total_count DESC, prep_id LIMIT ? OFFSET ?`,
		append(args, f.Limit+1, offset)...)
	if err != nil {
		return store.PaginatedResult[*domain.PromptScore]{}, fmt.Errorf("query prompt scores: %w", err)
	}
	defer rows.Close()

	var scores []*domain.PromptScore
	for rows.Next() {
		s, err := scanScore(rows)
		if err != nil {
			return store.PaginatedResult[*domain.PromptScore]{}, fmt.Errorf("scan prompt score: %w", err)
		}
		scores = append(scores, s)
	}
	if err := rows.Err(); err != nil {
		return store.PaginatedResult[*domain.PromptScore]{}, err
	}
	return store.NewPage(scores, f.PaginationParams, offset, total), nil
}
