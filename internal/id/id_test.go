package id

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerate_Uniqueness(t *testing.T) {
	seen := make(map[string]bool)
	for range 1000 {
		v, err := Generate(PrefixFeedback)
		require.NoError(t, err)
		assert.False(t, seen[v], "ID should be unique: %s", v)
		seen[v] = true
	}
}

func TestGenerate_Format(t *testing.T) {
	prefixes := []string{PrefixBook, PrefixAuthor, PrefixGenre, PrefixKeyword, PrefixPrep, PrefixFeedback, PrefixSuggestion}

	for _, prefix := range prefixes {
		t.Run(prefix, func(t *testing.T) {
			v, err := Generate(prefix)
			require.NoError(t, err)
			require.True(t, strings.HasPrefix(v, prefix+"-"))

			nid := strings.TrimPrefix(v, prefix+"-")
			assert.Len(t, nid, 21)
			for _, c := range nid {
				assert.True(t,
					(c >= 'A' && c <= 'Z') || (c >= 'a' && c <= 'z') ||
						(c >= '0' && c <= '9') || c == '_' || c == '-',
					"character %c should be URL-safe", c)
			}
		})
	}
}

func TestMustGenerate(t *testing.T) {
	v := MustGenerate(PrefixSuggestion)
	assert.True(t, strings.HasPrefix(v, "sug-"))
	assert.Len(t, v, len("sug-")+21)
}

func BenchmarkGenerate(b *testing.B) {
	for b.Loop() {
		_, _ = Generate(PrefixFeedback)
	}
}
