package store

import (
	"encoding/base64"
	"errors"
	"fmt"
	"strconv"
)

// ErrInvalidCursor is returned when a pagination cursor cannot be decoded.
var ErrInvalidCursor = errors.New("invalid cursor")

// PaginationParams contains pagination request parameters.
type PaginationParams struct {
	Limit  int    // Items per page (defaults to 50, maximum 200)
	Cursor string // Opaque cursor for the next page (empty for first page)
}

// PaginatedResult contains paginated data and metadata.
type PaginatedResult[T any] struct {
	Items      []T    `json:"items"`
	NextCursor string `json:"next_cursor,omitempty"`
	HasMore    bool   `json:"has_more"`
	Total      int    `json:"total"`
}

const (
	defaultLimit = 50
	maxLimit     = 200
)

// Validate clamps the limit into range.
func (p *PaginationParams) Validate() {
	if p.Limit <= 0 {
		p.Limit = defaultLimit
	}
	if p.Limit > maxLimit {
		p.Limit = maxLimit
	}
}

// Offset decodes the cursor into a row offset.
func (p PaginationParams) Offset() (int, error) {
	if p.Cursor == "" {
		return 0, nil
	}
	raw, err := base64.URLEncoding.DecodeString(p.Cursor)
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrInvalidCursor, err)
	}
	offset, err := strconv.Atoi(string(raw))
	if err != nil || offset < 0 {
		return 0, fmt.Errorf("%w %q", ErrInvalidCursor, p.Cursor)
	}
	return offset, nil
}

// EncodeCursor creates an opaque cursor for the given offset.
func EncodeCursor(offset int) string {
	return base64.URLEncoding.EncodeToString([]byte(strconv.Itoa(offset)))
}

// NewPage builds a result from one page of items. The caller queried
// limit+1 rows so HasMore can be detected without a second count.
func NewPage[T any](items []T, p PaginationParams, offset, total int) PaginatedResult[T] {
	res := PaginatedResult[T]{Items: items, Total: total}
	if len(items) > p.Limit {
		res.Items = items[:p.Limit]
		res.HasMore = true
		res.NextCursor = EncodeCursor(offset + p.Limit)
	}
	if res.Items == nil {
		res.Items = []T{}
	}
	return res
}
