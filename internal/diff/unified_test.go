package diff_test

import (
	"strings"
	"testing"

	"github.com/nicolagi/procdiff/internal/diff"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func lines(s ...string) string {
	return strings.Join(s, "\n")
}

func TestUnifiedEqualCodeNoDiff(t *testing.T) {
	got, err := diff.Unified("data.x = 1", "data.x = 1", 3)
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestUnified(t *testing.T) {
	old := lines("a", "b", "c", "d", "e", "f", "g", "h", "i", "j")
	testCases := []struct {
		name    string
		new     string
		context int
		want    string
	}{
		{
			name:    "single change",
			new:     lines("a", "b", "c", "D", "e", "f", "g", "h", "i", "j"),
			context: 1,
			want:    "@@ -3,3 +3,3 @@\n c\n-d\n+D\n e\n",
		},
		{
			name:    "changes far apart split hunks",
			new:     lines("a", "B", "c", "d", "e", "f", "g", "h", "I", "j"),
			context: 1,
			want:    "@@ -1,3 +1,3 @@\n a\n-b\n+B\n c\n@@ -8,3 +8,3 @@\n h\n-i\n+I\n j\n",
		},
		{
			name:    "changes close together share a hunk",
			new:     lines("a", "B", "c", "d", "e", "F", "g", "h", "i", "j"),
			context: 2,
			want:    "@@ -1,8 +1,8 @@\n a\n-b\n+B\n c\n d\n e\n-f\n+F\n g\n h\n",
		},
		{
			name:    "no context",
			new:     lines("a", "b", "c", "D", "e", "f", "g", "h", "i", "j"),
			context: 0,
			want:    "@@ -4 +4 @@\n-d\n+D\n",
		},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := diff.Unified(old, tc.new, tc.context)
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}
