package sym

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestName_KnownGlyphs(t *testing.T) {
	require.Equal(t, "schema", Name(Schema))
	require.Equal(t, "import", Name(Import))
	require.Equal(t, "db", Name(DB))
	require.Equal(t, "config", Name(Config))
}

func TestName_UnknownGlyph(t *testing.T) {
	require.Empty(t, Name("?"))
}

func TestAll_GlyphsAreDistinct(t *testing.T) {
	all := All()
	require.Len(t, all, 8)

	seen := make(map[string]bool)
	for _, name := range all {
		require.False(t, seen[name], "duplicate identifier %s", name)
		seen[name] = true
	}
}
