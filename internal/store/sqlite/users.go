package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/bookprepper/bookprepper-server/internal/domain"
)

// UpsertUser records the reader behind an identity token. Email and display
// name are refreshed on every call; created_at is kept from the first.
func (q *queries) UpsertUser(ctx context.Context, u *domain.User) error {
	_, err := q.db.ExecContext(ctx, `
		INSERT INTO users (id, created_at, updated_at, email, display_name)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			updated_at = excluded.updated_at,
			email = COALESCE(excluded.email, users.email),
			display_name = COALESCE(excluded.display_name, users.display_name)`,
		u.ID,
		formatTime(u.CreatedAt),
		formatTime(u.UpdatedAt),
		nullString(u.Email),
		nullString(u.DisplayName),
	)
	if err != nil {
		return fmt.Errorf("upsert user: %w", err)
	}
	return nil
}

// GetUser retrieves a user by id.
func (q *queries) GetUser(ctx context.Context, id string) (*domain.User, error) {
	var (
		u                    domain.User
		createdAt, updatedAt string
		email, displayName   sql.NullString
	)
	err := q.db.QueryRowContext(ctx, `
		SELECT id, created_at, updated_at, email, display_name FROM users WHERE id = ?`, id,
	).Scan(&u.ID, &createdAt, &updatedAt, &email, &displayName)
	if err != nil {
		return nil, mapReadErr(err)
	}
	if u.CreatedAt, err = parseTime(createdAt); err != nil {
		return nil, err
	}
	if u.UpdatedAt, err = parseTime(updatedAt); err != nil {
		return nil, err
	}
	u.Email = email.String
	u.DisplayName = displayName.String
	return &u, nil
}
