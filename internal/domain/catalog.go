// Package domain defines the BookPrepper catalog, feedback and suggestion
// entities shared by the store, services and API.
package domain

// Field limits enforced on catalog content.
const (
	MaxHeadingLength  = 160
	MaxSummaryLength  = 2000
	MaxSynopsisLength = 1024
	MaxNoteLength     = 500
)

// Author wrote one or more books. Names are matched case-insensitively.
type Author struct {
	Entity
	Slug string `json:"slug"`
	Name string `json:"name"`
}

// Genre classifies books. Books may belong to many genres.
type Genre struct {
	Entity
	Slug string `json:"slug"`
	Name string `json:"name"`
}

// Keyword tags preps. The slug is the identity; the name is display only.
type Keyword struct {
	Entity
	Slug string `json:"slug"`
	Name string `json:"name"`
}

// Book is a catalog entry.
type Book struct {
	Entity
	Slug          string  `json:"slug"`
	Title         string  `json:"title"`
	AuthorID      string  `json:"author_id"`
	ISBN          *string `json:"isbn,omitempty"`
	Synopsis      string  `json:"synopsis,omitempty"`
	CoverURL      string  `json:"cover_url,omitempty"`
	PublishedYear int     `json:"published_year,omitempty"`

	// Populated by reads that join related rows.
	Author *Author `json:"author,omitempty"`
	Genres []Genre `json:"genres,omitempty"`
}

// Prep is a spoiler-free reading note attached to a book.
type Prep struct {
	Entity
	BookID    string    `json:"book_id"`
	Heading   string    `json:"heading"`
	Summary   string    `json:"summary"`
	WatchFor  *string   `json:"watch_for,omitempty"`
	ColorHint *string   `json:"color_hint,omitempty"`
	Keywords  []Keyword `json:"keywords,omitempty"`
}

// KeywordNames returns the display names of the prep's keywords.
func (p *Prep) KeywordNames() []string {
	names := make([]string, len(p.Keywords))
	for i, k := range p.Keywords {
		names[i] = k.Name
	}
	return names
}

// GenreNames returns the display names of the book's genres.
func (b *Book) GenreNames() []string {
	names := make([]string, len(b.Genres))
	for i, g := range b.Genres {
		names[i] = g.Name
	}
	return names
}

// User is a reader known by the subject of their identity token.
type User struct {
	Entity
	Email       string `json:"email,omitempty"`
	DisplayName string `json:"display_name,omitempty"`
}

// CatalogStats are aggregate counts shown on the landing page.
type CatalogStats struct {
	Books              int `json:"books"`
	Authors            int `json:"authors"`
	Genres             int `json:"genres"`
	Preps              int `json:"preps"`
	FeedbackEvents     int `json:"feedback_events"`
	PendingSuggestions int `json:"pending_suggestions"`
}
