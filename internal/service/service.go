// Package service implements the BookPrepper use cases on top of the store:
// catalog reads and admin edits, reader feedback, suggestions and their
// moderation, catalog stats and search.
package service

import (
	"errors"

	domainerrors "github.com/bookprepper/bookprepper-server/internal/errors"
	"github.com/bookprepper/bookprepper-server/internal/store"
)

// invalidCursor turns an undecodable pagination cursor into a validation
// error and passes every other error through.
func invalidCursor(err error) error {
	if errors.Is(err, store.ErrInvalidCursor) {
		return domainerrors.ValidationWithDetails("invalid cursor", map[string]string{
			"cursor": "is invalid",
		})
	}
	return err
}

// notFound maps store.ErrNotFound to a domain not found error for entity.
func notFound(err error, entity, key string) error {
	if errors.Is(err, store.ErrNotFound) {
		return domainerrors.NotFoundf("%s %s not found", entity, key)
	}
	return err
}
