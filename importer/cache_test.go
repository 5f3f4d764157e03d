package importer

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/trellisdb/trellis/graph"
	"github.com/trellisdb/trellis/internal/testutil"
	"github.com/trellisdb/trellis/schema"
)

func newTestSchema(t *testing.T) *schema.Model {
	t.Helper()
	return schema.NewModel(graph.NewStore(testutil.SetupTestDB(t), nil), nil)
}

func TestCache_MemoizesDirectProperties(t *testing.T) {
	m := newTestSchema(t)

	id, err := m.CreateClass("Person", schema.ClassOptions{Strict: true})
	require.NoError(t, err)
	require.NoError(t, m.DeclareProperties(id, "name"))

	cache := NewCache(m)

	props, err := cache.DirectProperties(id)
	require.NoError(t, err)
	require.Equal(t, []string{"name"}, props)

	// Schema mutation after first access is invisible to the cache: the
	// memo is import-scoped and assumes an immutable schema.
	require.NoError(t, m.DeclareProperties(id, "age"))

	props, err = cache.DirectProperties(id)
	require.NoError(t, err)
	require.Equal(t, []string{"name"}, props)
}

func TestCache_MemoizesRelationships(t *testing.T) {
	m := newTestSchema(t)

	a, err := m.CreateClass("A", schema.ClassOptions{})
	require.NoError(t, err)
	b, err := m.CreateClass("B", schema.ClassOptions{})
	require.NoError(t, err)
	require.NoError(t, m.DeclareRelationship(a, "points_to", b))

	cache := NewCache(m)

	rels, err := cache.OutboundRelationships(a)
	require.NoError(t, err)
	require.Equal(t, map[string]string{"points_to": "B"}, rels)

	require.NoError(t, m.DeclareRelationship(a, "owns", b))

	rels, err = cache.OutboundRelationships(a)
	require.NoError(t, err)
	require.NotContains(t, rels, "owns")
}

func TestCache_PropertyAllowed(t *testing.T) {
	m := newTestSchema(t)

	strict, err := m.CreateClass("Strict", schema.ClassOptions{Strict: true})
	require.NoError(t, err)
	require.NoError(t, m.DeclareProperties(strict, "name"))
	lenient, err := m.CreateClass("Lenient", schema.ClassOptions{})
	require.NoError(t, err)

	cache := NewCache(m)

	ok, err := cache.PropertyAllowed(strict, "name")
	require.NoError(t, err)
	require.True(t, ok)

	ok, err = cache.PropertyAllowed(strict, "other")
	require.NoError(t, err)
	require.False(t, ok)

	// Lenient classes allow anything
	ok, err = cache.PropertyAllowed(lenient, "anything")
	require.NoError(t, err)
	require.True(t, ok)
}

func TestCache_ClassIDByName(t *testing.T) {
	m := newTestSchema(t)

	id, err := m.CreateClass("Person", schema.ClassOptions{})
	require.NoError(t, err)

	cache := NewCache(m)

	got, err := cache.ClassIDByName("Person")
	require.NoError(t, err)
	require.Equal(t, id, got)

	_, err = cache.ClassIDByName("Ghost")
	require.ErrorIs(t, err, schema.ErrUnknownClass)
}
