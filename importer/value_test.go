package importer

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func mappingKeys(t *testing.T, v *Value) []string {
	t.Helper()
	require.NotNil(t, v)
	require.Equal(t, KindMapping, v.Kind())
	keys := make([]string, 0, len(v.Pairs()))
	for _, p := range v.Pairs() {
		keys = append(keys, p.Key)
	}
	return keys
}

func TestFromYAML_PreservesKeyOrder(t *testing.T) {
	v, err := FromYAML([]byte("zebra: 1\napple: 2\nmiddle: 3\n"))
	require.NoError(t, err)
	require.Equal(t, []string{"zebra", "apple", "middle"}, mappingKeys(t, v))
}

func TestFromYAML_Scalars(t *testing.T) {
	v, err := FromYAML([]byte("name: Ada\nage: 36\nratio: 0.5\nactive: true\n"))
	require.NoError(t, err)

	pairs := v.Pairs()
	require.Equal(t, "Ada", pairs[0].Value.Scalar())
	require.Equal(t, 36, pairs[1].Value.Scalar())
	require.Equal(t, 0.5, pairs[2].Value.Scalar())
	require.Equal(t, true, pairs[3].Value.Scalar())
}

func TestFromYAML_NullsAreAbsent(t *testing.T) {
	v, err := FromYAML([]byte("present: 1\nmissing: null\nalso: ~\n"))
	require.NoError(t, err)

	pairs := v.Pairs()
	require.Len(t, pairs, 3)
	require.NotNil(t, pairs[0].Value)
	require.Nil(t, pairs[1].Value)
	require.Nil(t, pairs[2].Value)
}

func TestFromYAML_Nested(t *testing.T) {
	doc := `
title: library
books:
  - title: Dune
  - title: Hyperion
owner:
  name: Ada
`
	v, err := FromYAML([]byte(doc))
	require.NoError(t, err)

	pairs := v.Pairs()
	require.Equal(t, KindScalar, pairs[0].Value.Kind())
	require.Equal(t, KindSequence, pairs[1].Value.Kind())
	require.Len(t, pairs[1].Value.Items(), 2)
	require.Equal(t, KindMapping, pairs[2].Value.Kind())
}

func TestFromYAML_EmptyDocument(t *testing.T) {
	v, err := FromYAML([]byte(""))
	require.NoError(t, err)
	require.Nil(t, v)
}

func TestFromYAML_Anchors(t *testing.T) {
	doc := `
base: &shared
  kind: common
copy: *shared
`
	v, err := FromYAML([]byte(doc))
	require.NoError(t, err)

	pairs := v.Pairs()
	require.Equal(t, KindMapping, pairs[1].Value.Kind())
	require.Equal(t, "common", pairs[1].Value.Pairs()[0].Value.Scalar())
}

func TestFromYAML_Malformed(t *testing.T) {
	_, err := FromYAML([]byte("a: [unclosed"))
	require.ErrorIs(t, err, ErrInvalidInput)
}

func TestFromJSON_PreservesKeyOrder(t *testing.T) {
	v, err := FromJSON([]byte(`{"zebra": 1, "apple": 2, "middle": 3}`))
	require.NoError(t, err)
	require.Equal(t, []string{"zebra", "apple", "middle"}, mappingKeys(t, v))
}

func TestFromJSON_Scalars(t *testing.T) {
	v, err := FromJSON([]byte(`{"name": "Ada", "age": 36, "ratio": 0.5, "active": true, "gone": null}`))
	require.NoError(t, err)

	pairs := v.Pairs()
	require.Equal(t, "Ada", pairs[0].Value.Scalar())
	require.Equal(t, int64(36), pairs[1].Value.Scalar())
	require.Equal(t, 0.5, pairs[2].Value.Scalar())
	require.Equal(t, true, pairs[3].Value.Scalar())
	require.Nil(t, pairs[4].Value)
}

func TestFromJSON_TopLevelArray(t *testing.T) {
	v, err := FromJSON([]byte(`[{"a": 1}, {"b": 2}, 3]`))
	require.NoError(t, err)

	require.Equal(t, KindSequence, v.Kind())
	require.Len(t, v.Items(), 3)
	require.Equal(t, KindScalar, v.Items()[2].Kind())
}

func TestFromJSON_NullDocument(t *testing.T) {
	v, err := FromJSON([]byte(`null`))
	require.NoError(t, err)
	require.Nil(t, v)
}

func TestFromJSON_TrailingData(t *testing.T) {
	_, err := FromJSON([]byte(`{"a": 1} {"b": 2}`))
	require.ErrorIs(t, err, ErrInvalidInput)
}

func TestFromJSON_Malformed(t *testing.T) {
	_, err := FromJSON([]byte(`{"a": `))
	require.ErrorIs(t, err, ErrInvalidInput)
}

func TestKindString(t *testing.T) {
	require.Equal(t, "scalar", KindScalar.String())
	require.Equal(t, "mapping", KindMapping.String())
	require.Equal(t, "sequence", KindSequence.String())
}
