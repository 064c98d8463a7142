// Package search provides full-text search over books and preps using
// Bleve. Both entity types live in one index discriminated by type.
package search

import (
	"github.com/bookprepper/bookprepper-server/internal/domain"
)

// DocType represents the type of document in the unified index.
type DocType string

// Document types for the search index.
const (
	DocTypeBook DocType = "book"
	DocTypePrep DocType = "prep"
)

// SearchDocument is the unified document structure for the Bleve index.
//
// Author, genre and book title are denormalized into the document so a
// single query can rank a book or prep without joins.
type SearchDocument struct {
	// Identity
	ID   string  `json:"id"`
	Type DocType `json:"type"`

	// Book: title, Prep: heading
	Name string `json:"name"`

	// Book: synopsis, Prep: summary plus watch-for text
	Description string `json:"description,omitempty"`

	// Book-specific fields
	Slug        string   `json:"slug,omitempty"`
	Author      string   `json:"author,omitempty"`
	GenreSlugs  []string `json:"genre_slugs,omitempty"`
	PublishYear int      `json:"publish_year,omitempty"`

	// Prep-specific fields
	BookID    string   `json:"book_id,omitempty"`
	BookTitle string   `json:"book_title,omitempty"`
	Keywords  []string `json:"keywords,omitempty"`

	// Timestamps for sorting
	CreatedAt int64 `json:"created_at"` // Unix millis
	UpdatedAt int64 `json:"updated_at"` // Unix millis
}

// ToMap converts the document to a map with lowercase field names
// matching the index mapping.
func (d *SearchDocument) ToMap() map[string]any {
	m := map[string]any{
		"id":         d.ID,
		"type":       string(d.Type),
		"name":       d.Name,
		"created_at": d.CreatedAt,
		"updated_at": d.UpdatedAt,
	}

	if d.Description != "" {
		m["description"] = d.Description
	}
	if d.Slug != "" {
		m["slug"] = d.Slug
	}
	if d.Author != "" {
		m["author"] = d.Author
	}
	if len(d.GenreSlugs) > 0 {
		m["genre_slugs"] = d.GenreSlugs
	}
	if d.PublishYear > 0 {
		m["publish_year"] = d.PublishYear
	}
	if d.BookID != "" {
		m["book_id"] = d.BookID
	}
	if d.BookTitle != "" {
		m["book_title"] = d.BookTitle
	}
	if len(d.Keywords) > 0 {
		m["keywords"] = d.Keywords
	}

	return m
}

// BookToSearchDocument converts a book with its author and genres loaded.
func BookToSearchDocument(book *domain.Book) *SearchDocument {
	doc := &SearchDocument{
		ID:          book.ID,
		Type:        DocTypeBook,
		Name:        book.Title,
		Description: book.Synopsis,
		Slug:        book.Slug,
		PublishYear: book.PublishedYear,
		CreatedAt:   book.CreatedAt.UnixMilli(),
		UpdatedAt:   book.UpdatedAt.UnixMilli(),
	}
	if book.Author != nil {
		doc.Author = book.Author.Name
	}
	for _, g := range book.Genres {
		doc.GenreSlugs = append(doc.GenreSlugs, g.Slug)
	}
	return doc
}

// PrepToSearchDocument converts a prep. bookTitle is denormalized for
// display and may be empty.
func PrepToSearchDocument(p *domain.Prep, bookTitle string) *SearchDocument {
	desc := p.Summary
	if p.WatchFor != nil && *p.WatchFor != "" {
		desc += "\n" + *p.WatchFor
	}
	doc := &SearchDocument{
		ID:          p.ID,
		Type:        DocTypePrep,
		Name:        p.Heading,
		Description: desc,
		BookID:      p.BookID,
		BookTitle:   bookTitle,
		CreatedAt:   p.CreatedAt.UnixMilli(),
		UpdatedAt:   p.UpdatedAt.UnixMilli(),
	}
	for _, k := range p.Keywords {
		doc.Keywords = append(doc.Keywords, k.Slug)
	}
	return doc
}
