package domain

import (
	"fmt"
	"time"
)

// SuggestionKind identifies which catalog change a suggestion proposes.
type SuggestionKind string

// Suggestion kinds.
const (
	SuggestionBook     SuggestionKind = "book"
	SuggestionMetadata SuggestionKind = "metadata"
	SuggestionPrep     SuggestionKind = "prep"
)

// SuggestionKinds lists every kind.
var SuggestionKinds = []SuggestionKind{SuggestionBook, SuggestionMetadata, SuggestionPrep}

// ParseSuggestionKind validates a kind from a path or flag.
func ParseSuggestionKind(s string) (SuggestionKind, error) {
	switch k := SuggestionKind(s); k {
	case SuggestionBook, SuggestionMetadata, SuggestionPrep:
		return k, nil
	default:
		return "", fmt.Errorf("unknown suggestion kind %q", s)
	}
}

// SuggestionStatus is the moderation state. PENDING is the only initial
// state; APPROVED and REJECTED are terminal.
type SuggestionStatus string

// Suggestion statuses.
const (
	StatusPending  SuggestionStatus = "PENDING"
	StatusApproved SuggestionStatus = "APPROVED"
	StatusRejected SuggestionStatus = "REJECTED"
)

// IsTerminal reports whether no further transition is allowed.
func (s SuggestionStatus) IsTerminal() bool {
	return s == StatusApproved || s == StatusRejected
}

// Proposal is the kind-specific payload of a suggestion.
// Implementations are BookProposal, MetadataProposal and PrepProposal.
type Proposal interface {
	Kind() SuggestionKind
}

// BookProposal asks for a new book to be added to the catalog.
type BookProposal struct {
	Title      string   `json:"title"`
	AuthorName string   `json:"author_name"`
	ISBN       *string  `json:"isbn,omitempty"`
	Synopsis   *string  `json:"synopsis,omitempty"`
	GenreIdeas []string `json:"genre_ideas,omitempty"`
	Notes      *string  `json:"notes,omitempty"`
}

// Kind implements Proposal.
func (BookProposal) Kind() SuggestionKind { return SuggestionBook }

// MetadataProposal asks for an existing book's synopsis or genres to change.
type MetadataProposal struct {
	BookID     string   `json:"book_id"`
	Synopsis   *string  `json:"synopsis,omitempty"`
	GenreSlugs []string `json:"genre_slugs,omitempty"`
	Notes      *string  `json:"notes,omitempty"`
}

// Kind implements Proposal.
func (MetadataProposal) Kind() SuggestionKind { return SuggestionMetadata }

// PrepProposal asks for a new prep on an existing book.
type PrepProposal struct {
	BookID       string   `json:"book_id"`
	Title        string   `json:"title"`
	Description  string   `json:"description"`
	KeywordHints []string `json:"keyword_hints,omitempty"`
}

// Kind implements Proposal.
func (PrepProposal) Kind() SuggestionKind { return SuggestionPrep }

// Suggestion is a user-submitted catalog change awaiting moderation.
type Suggestion struct {
	ID            string           `json:"id"`
	UserID        string           `json:"user_id"`
	Status        SuggestionStatus `json:"status"`
	ModeratorNote *string          `json:"moderator_note,omitempty"`
	ReviewedAt    *time.Time       `json:"reviewed_at,omitempty"`
	CreatedAt     time.Time        `json:"created_at"`
	Proposal      Proposal         `json:"proposal"`
}

// Kind returns the kind of the carried proposal.
func (s *Suggestion) Kind() SuggestionKind {
	if s.Proposal == nil {
		return ""
	}
	return s.Proposal.Kind()
}
