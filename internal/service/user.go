package service

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/bookprepper/bookprepper-server/internal/domain"
	domainerrors "github.com/bookprepper/bookprepper-server/internal/errors"
	"github.com/bookprepper/bookprepper-server/internal/store"
)

// UserService records the readers behind verified identity tokens.
type UserService struct {
	store  store.UserStore
	logger *slog.Logger
}

// NewUserService creates a new user service.
func NewUserService(s store.UserStore, logger *slog.Logger) *UserService {
	return &UserService{store: s, logger: logger}
}

// EnsureUser upserts the reader so writes attributed to them satisfy
// foreign keys. Email and display name are refreshed when present.
func (s *UserService) EnsureUser(ctx context.Context, userID, email, displayName string) (*domain.User, error) {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return nil, domainerrors.Unauthorized("token has no subject")
	}

	now := time.Now().UTC()
	u := &domain.User{
		Entity:      domain.Entity{ID: userID, CreatedAt: now, UpdatedAt: now},
		Email:       strings.TrimSpace(email),
		DisplayName: strings.TrimSpace(displayName),
	}
	if err := s.store.UpsertUser(ctx, u); err != nil {
		return nil, err
	}
	return u, nil
}

// GetUser returns a known reader.
func (s *UserService) GetUser(ctx context.Context, userID string) (*domain.User, error) {
	return s.store.GetUser(ctx, userID)
}
