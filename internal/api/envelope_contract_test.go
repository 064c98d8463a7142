package api

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Fixtures under testdata/envelope are shared with web clients, which parse
// the same files. Go runs tests from the package directory.
const fixtureDir = "../../testdata/envelope"

func readFixture(t *testing.T, name string) map[string]any {
	t.Helper()
	raw, err := os.ReadFile(filepath.Join(fixtureDir, name))
	require.NoError(t, err, "contract tests need the shared fixtures")

	var out map[string]any
	require.NoError(t, json.Unmarshal(raw, &out))
	return out
}

func transform(t *testing.T, status string, v any) map[string]any {
	t.Helper()
	result, err := EnvelopeTransformer(nil, status, v)
	require.NoError(t, err)

	raw, err := json.Marshal(result)
	require.NoError(t, err)

	var out map[string]any
	require.NoError(t, json.Unmarshal(raw, &out))
	return out
}

func TestEnvelopeContract_MatchesFixtures(t *testing.T) {
	tests := []struct {
		fixture string
		status  string
		value   any
	}{
		{"success.json", "200", map[string]string{"id": "book-V1StGXR8_Z5jdHi6B", "slug": "frankenstein"}},
		{"success_null_data.json", "204", nil},
		{"error_simple.json", "404", &APIError{Message: "book not found"}},
		{"error_detailed.json", "409", &APIError{
			Code:    "CONFLICT",
			Message: "suggestion already processed",
			Details: map[string]string{"status": "APPROVED"},
		}},
	}

	for _, tt := range tests {
		t.Run(tt.fixture, func(t *testing.T) {
			expected := readFixture(t, tt.fixture)
			got := transform(t, tt.status, tt.value)

			// Exact equality: an added or renamed field breaks clients silently.
			assert.Equal(t, expected, got)
		})
	}
}

func TestEnvelopeContract_VersionFieldName(t *testing.T) {
	got := transform(t, "200", nil)

	assert.Contains(t, got, "v")
	assert.NotContains(t, got, "version")
	assert.NotContains(t, got, "Version")
}
