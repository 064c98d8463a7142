// Package catalog holds the catalog mutation primitives shared by admin
// edits and suggestion approval. Every function takes the querier it runs
// against so callers can compose them inside one transaction.
package catalog

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/bookprepper/bookprepper-server/internal/domain"
	domainerrors "github.com/bookprepper/bookprepper-server/internal/errors"
	"github.com/bookprepper/bookprepper-server/internal/genre"
	"github.com/bookprepper/bookprepper-server/internal/id"
	"github.com/bookprepper/bookprepper-server/internal/normalize"
	"github.com/bookprepper/bookprepper-server/internal/store"
)

// maxSlugAttempts bounds the suffix probe in EnsureUniqueSlug.
const maxSlugAttempts = 1000

// EnsureUniqueSlug slugifies raw and appends -2, -3, ... until the slug is
// free in table.
func EnsureUniqueSlug(ctx context.Context, q store.CatalogStore, table store.SlugTable, raw string) (string, error) {
	base := normalize.Slugify(raw)
	candidate := base
	for n := 2; n <= maxSlugAttempts+1; n++ {
		taken, err := q.SlugExists(ctx, table, candidate)
		if err != nil {
			return "", err
		}
		if !taken {
			return candidate, nil
		}
		candidate = fmt.Sprintf("%s-%d", base, n)
	}
	return "", domainerrors.Conflictf("no free slug for %q", base)
}

// ResolveAuthor returns the author with authorID when given. Otherwise it
// matches name case-insensitively and creates the author when no match
// exists.
func ResolveAuthor(ctx context.Context, q store.CatalogStore, authorID, name string, at time.Time) (*domain.Author, error) {
	if authorID != "" {
		a, err := q.GetAuthor(ctx, authorID)
		if errors.Is(err, store.ErrNotFound) {
			return nil, domainerrors.NotFoundf("author %s not found", authorID)
		}
		return a, err
	}

	name = normalize.Name(name)
	if name == "" {
		return nil, domainerrors.ValidationWithDetails("author is required", map[string]string{
			"author_name": "is required",
		})
	}

	existing, err := q.FindAuthorByName(ctx, name)
	if err == nil {
		return existing, nil
	}
	if !errors.Is(err, store.ErrNotFound) {
		return nil, err
	}

	slug, err := EnsureUniqueSlug(ctx, q, store.SlugAuthors, name)
	if err != nil {
		return nil, err
	}
	authorIDNew, err := id.Generate(id.PrefixAuthor)
	if err != nil {
		return nil, err
	}
	a := &domain.Author{
		Entity: domain.Entity{ID: authorIDNew, CreatedAt: at, UpdatedAt: at},
		Slug:   slug,
		Name:   name,
	}
	if err := q.CreateAuthor(ctx, a); err != nil {
		return nil, err
	}
	return a, nil
}

// UpsertKeywords resolves each name to a keyword by slug, creating missing
// ones and refreshing the display name of existing ones. Duplicates and
// names without a letter or digit are skipped.
func UpsertKeywords(ctx context.Context, q store.CatalogStore, names []string, at time.Time) ([]domain.Keyword, error) {
	cleaned := normalize.Keywords(names)
	out := make([]domain.Keyword, 0, len(cleaned))
	for _, name := range cleaned {
		slug := normalize.Slugify(name)

		existing, err := q.GetKeywordBySlug(ctx, slug)
		switch {
		case err == nil:
			if existing.Name != name {
				if err := q.RenameKeyword(ctx, existing.ID, name, at); err != nil {
					return nil, err
				}
				existing.Name = name
				existing.UpdatedAt = at
			}
			out = append(out, *existing)
			continue
		case !errors.Is(err, store.ErrNotFound):
			return nil, err
		}

		kwID, err := id.Generate(id.PrefixKeyword)
		if err != nil {
			return nil, err
		}
		k := domain.Keyword{
			Entity: domain.Entity{ID: kwID, CreatedAt: at, UpdatedAt: at},
			Slug:   slug,
			Name:   name,
		}
		if err := q.CreateKeyword(ctx, &k); err != nil {
			return nil, err
		}
		out = append(out, k)
	}
	return out, nil
}

// ExistingGenresBySlugs returns the genres whose slugs exist. Unknown slugs
// are dropped without error; suggestion approval must not fail because a
// genre was renamed or removed after the suggestion was filed.
func ExistingGenresBySlugs(ctx context.Context, q store.CatalogStore, slugs []string) ([]domain.Genre, error) {
	wanted := make([]string, 0, len(slugs))
	for _, s := range slugs {
		if s = strings.TrimSpace(s); s != "" {
			wanted = append(wanted, normalize.Slugify(s))
		}
	}
	if len(wanted) == 0 {
		return nil, nil
	}
	return q.GetGenresBySlugs(ctx, wanted)
}

// ValidateGenreIDs returns the genres for ids, failing with a validation
// error that lists every id that does not exist.
func ValidateGenreIDs(ctx context.Context, q store.CatalogStore, ids []string) ([]domain.Genre, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	genres, err := q.GetGenresByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}

	found := make(map[string]struct{}, len(genres))
	for _, g := range genres {
		found[g.ID] = struct{}{}
	}
	var missing []string
	for _, gid := range ids {
		if _, ok := found[gid]; !ok {
			missing = append(missing, gid)
		}
	}
	if len(missing) > 0 {
		sort.Strings(missing)
		return nil, domainerrors.ValidationWithDetails("unknown genre ids", map[string]string{
			"genre_ids": "unknown: " + strings.Join(missing, ", "),
		})
	}
	return genres, nil
}

// ResolveOrCreateGenres maps free-text genre ideas to genres by canonical
// slug, creating the ones that do not exist yet. Known aliases such as
// "sci-fi" land on their canonical genre.
func ResolveOrCreateGenres(ctx context.Context, q store.CatalogStore, names []string, at time.Time) ([]domain.Genre, error) {
	resolved := genre.ResolveAll(names)
	out := make([]domain.Genre, 0, len(resolved))
	for _, c := range resolved {
		existing, err := q.GetGenreBySlug(ctx, c.Slug)
		if err == nil {
			out = append(out, *existing)
			continue
		}
		if !errors.Is(err, store.ErrNotFound) {
			return nil, err
		}

		g, err := NewGenre(c.Name, c.Slug, at)
		if err != nil {
			return nil, err
		}
		if err := q.CreateGenre(ctx, g); err != nil {
			return nil, err
		}
		out = append(out, *g)
	}
	return out, nil
}

// NewGenre builds an unsaved genre.
func NewGenre(name, slug string, at time.Time) (*domain.Genre, error) {
	genreID, err := id.Generate(id.PrefixGenre)
	if err != nil {
		return nil, fmt.Errorf("generate genre ID: %w", err)
	}
	return &domain.Genre{
		Entity: domain.Entity{ID: genreID, CreatedAt: at, UpdatedAt: at},
		Slug:   slug,
		Name:   name,
	}, nil
}

// GenreIDs returns the ids of genres in order.
func GenreIDs(genres []domain.Genre) []string {
	ids := make([]string, len(genres))
	for i, g := range genres {
		ids[i] = g.ID
	}
	return ids
}

// KeywordIDs returns the ids of keywords in order.
func KeywordIDs(keywords []domain.Keyword) []string {
	ids := make([]string, len(keywords))
	for i, k := range keywords {
		ids[i] = k.ID
	}
	return ids
}
