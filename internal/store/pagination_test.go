package store

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPaginationParams_Validate(t *testing.T) {
	tests := []struct {
		name  string
		limit int
		want  int
	}{
		{"valid", 20, 20},
		{"zero defaults", 0, 50},
		{"negative defaults", -3, 50},
		{"capped", 5000, 200},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := PaginationParams{Limit: tt.limit}
			p.Validate()
			assert.Equal(t, tt.want, p.Limit)
		})
	}
}

func TestCursorRoundTrip(t *testing.T) {
	p := PaginationParams{Cursor: EncodeCursor(150)}
	offset, err := p.Offset()
	require.NoError(t, err)
	assert.Equal(t, 150, offset)

	offset, err = PaginationParams{}.Offset()
	require.NoError(t, err)
	assert.Zero(t, offset)

	_, err = PaginationParams{Cursor: "!!not-base64"}.Offset()
	assert.ErrorIs(t, err, ErrInvalidCursor)

	_, err = PaginationParams{Cursor: EncodeCursor(-1)}.Offset()
	assert.ErrorIs(t, err, ErrInvalidCursor)
}

func TestNewPage(t *testing.T) {
	p := PaginationParams{Limit: 2}

	page := NewPage([]string{"a", "b", "c"}, p, 4, 10)
	assert.Equal(t, []string{"a", "b"}, page.Items)
	assert.True(t, page.HasMore)
	assert.Equal(t, 10, page.Total)
	next, err := PaginationParams{Cursor: page.NextCursor}.Offset()
	require.NoError(t, err)
	assert.Equal(t, 6, next)

	last := NewPage([]string{"z"}, p, 8, 9)
	assert.False(t, last.HasMore)
	assert.Empty(t, last.NextCursor)

	empty := NewPage[string](nil, p, 0, 0)
	assert.NotNil(t, empty.Items)
}
