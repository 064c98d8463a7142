// Package id generates prefixed, URL-safe entity identifiers.
package id

import (
	"fmt"

	gonanoid "github.com/matoous/go-nanoid/v2"
)

// Prefixes for each persisted entity.
const (
	PrefixBook       = "book"
	PrefixAuthor     = "author"
	PrefixGenre      = "genre"
	PrefixKeyword    = "kw"
	PrefixPrep       = "prep"
	PrefixFeedback   = "fb"
	PrefixSuggestion = "sug"
)

// Generate returns prefix-<21 char nanoid>, e.g. "prep-V1StGXR8_Z5jdHi6B-myT".
// It fails only when the system entropy source does.
func Generate(prefix string) (string, error) {
	nid, err := gonanoid.New()
	if err != nil {
		return "", fmt.Errorf("generate nanoid: %w", err)
	}
	return prefix + "-" + nid, nil
}

// MustGenerate is like Generate but panics on failure.
func MustGenerate(prefix string) string {
	v, err := Generate(prefix)
	if err != nil {
		panic(fmt.Sprintf("failed to generate ID: %v", err))
	}
	return v
}
