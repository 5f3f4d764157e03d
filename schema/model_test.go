package schema

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/trellisdb/trellis/errors"
	"github.com/trellisdb/trellis/graph"
	"github.com/trellisdb/trellis/internal/testutil"
)

func newTestModel(t *testing.T) *Model {
	t.Helper()
	return NewModel(graph.NewStore(testutil.SetupTestDB(t), nil), nil)
}

func TestCreateClass_AttributesRoundTrip(t *testing.T) {
	m := newTestModel(t)

	id, err := m.CreateClass("Person", ClassOptions{Strict: true, Code: "PER"})
	require.NoError(t, err)

	attrs, err := m.ClassAttributes(id)
	require.NoError(t, err)

	require.Equal(t, "Person", attrs.Name)
	require.True(t, attrs.Strict)
	require.Equal(t, "PER", attrs.Code)
	require.False(t, attrs.NoDatanodes)
	require.Equal(t, int64(1), attrs.SchemaID)
}

func TestCreateClass_DuplicateName(t *testing.T) {
	m := newTestModel(t)

	_, err := m.CreateClass("Person", ClassOptions{})
	require.NoError(t, err)

	_, err = m.CreateClass("Person", ClassOptions{})
	require.ErrorIs(t, err, ErrDuplicateClass)
}

func TestCreateClass_EmptyName(t *testing.T) {
	m := newTestModel(t)

	_, err := m.CreateClass("", ClassOptions{})
	require.Error(t, err)
}

func TestClassByName_Unknown(t *testing.T) {
	m := newTestModel(t)

	_, err := m.ClassByName("Ghost")
	require.ErrorIs(t, err, ErrUnknownClass)
}

func TestClassAttributes_NotAClass(t *testing.T) {
	m := newTestModel(t)

	// A plain data node is not a class
	id, err := m.Store().CreateNode([]string{"Book"}, nil)
	require.NoError(t, err)

	_, err = m.ClassAttributes(ClassID(id))
	require.ErrorIs(t, err, ErrUnknownClass)
}

func TestDeclareProperties_DeclarationOrder(t *testing.T) {
	m := newTestModel(t)

	id, err := m.CreateClass("Person", ClassOptions{})
	require.NoError(t, err)

	require.NoError(t, m.DeclareProperties(id, "name", "age"))
	require.NoError(t, m.DeclareProperties(id, "email"))

	props, err := m.DirectProperties(id)
	require.NoError(t, err)
	require.Equal(t, []string{"name", "age", "email"}, props)
}

func TestDeclareProperties_RedeclarationIsNoop(t *testing.T) {
	m := newTestModel(t)

	id, err := m.CreateClass("Person", ClassOptions{})
	require.NoError(t, err)

	require.NoError(t, m.DeclareProperties(id, "name"))
	require.NoError(t, m.DeclareProperties(id, "name", "age"))

	props, err := m.DirectProperties(id)
	require.NoError(t, err)
	require.Equal(t, []string{"name", "age"}, props)
}

func TestDeclareRelationship_ReservedNameRejected(t *testing.T) {
	m := newTestModel(t)

	a, err := m.CreateClass("A", ClassOptions{})
	require.NoError(t, err)
	b, err := m.CreateClass("B", ClassOptions{})
	require.NoError(t, err)

	require.Error(t, m.DeclareRelationship(a, graph.EdgeInstanceOf, b))
	require.Error(t, m.DeclareRelationship(a, graph.EdgeClassifiedAs, b))
}

func TestDirectOutboundRelationships_OmitsGeneralization(t *testing.T) {
	m := newTestModel(t)

	child, err := m.CreateClass("Child", ClassOptions{})
	require.NoError(t, err)
	parent, err := m.CreateClass("Parent", ClassOptions{})
	require.NoError(t, err)
	other, err := m.CreateClass("Other", ClassOptions{})
	require.NoError(t, err)

	require.NoError(t, m.AddGeneralization(child, parent))
	require.NoError(t, m.DeclareRelationship(child, "points_to", other))

	rels, err := m.DirectOutboundRelationships(child, true)
	require.NoError(t, err)
	require.Equal(t, map[string]string{"points_to": "Other"}, rels)

	withGen, err := m.DirectOutboundRelationships(child, false)
	require.NoError(t, err)
	require.Equal(t, "Parent", withGen[graph.EdgeInstanceOf])
}

func TestDirectOutboundRelationships_Ambiguity(t *testing.T) {
	m := newTestModel(t)

	a, err := m.CreateClass("A", ClassOptions{})
	require.NoError(t, err)
	x, err := m.CreateClass("X", ClassOptions{})
	require.NoError(t, err)
	y, err := m.CreateClass("Y", ClassOptions{})
	require.NoError(t, err)

	// Two class-relationships named "owns" from A to different targets
	require.NoError(t, m.DeclareRelationship(a, "owns", x))
	require.NoError(t, m.DeclareRelationship(a, "owns", y))

	_, err = m.DirectOutboundRelationships(a, true)
	require.ErrorIs(t, err, ErrAmbiguousRelationship)

	_, err = m.ResolveOutboundRelationships(a)
	require.ErrorIs(t, err, ErrAmbiguousRelationship)
}

func TestAddGeneralization_CycleRejected(t *testing.T) {
	m := newTestModel(t)

	a, err := m.CreateClass("A", ClassOptions{})
	require.NoError(t, err)
	b, err := m.CreateClass("B", ClassOptions{})
	require.NoError(t, err)
	c, err := m.CreateClass("C", ClassOptions{})
	require.NoError(t, err)

	require.NoError(t, m.AddGeneralization(a, b))
	require.NoError(t, m.AddGeneralization(b, c))

	require.ErrorIs(t, m.AddGeneralization(c, a), ErrGeneralizationCycle)
	require.ErrorIs(t, m.AddGeneralization(a, a), ErrGeneralizationCycle)
}

func TestAddGeneralization_MultipleParents(t *testing.T) {
	m := newTestModel(t)

	child, err := m.CreateClass("Child", ClassOptions{})
	require.NoError(t, err)
	left, err := m.CreateClass("Left", ClassOptions{})
	require.NoError(t, err)
	right, err := m.CreateClass("Right", ClassOptions{})
	require.NoError(t, err)

	require.NoError(t, m.AddGeneralization(child, left))
	require.NoError(t, m.AddGeneralization(child, right))
	// Duplicate is a no-op
	require.NoError(t, m.AddGeneralization(child, left))

	parents, err := m.GeneralizationParents(child)
	require.NoError(t, err)
	require.Equal(t, []ClassID{left, right}, parents)
}

func TestDeleteClass_RefusedWhileRecordsAttached(t *testing.T) {
	m := newTestModel(t)

	id, err := m.CreateClass("Person", ClassOptions{})
	require.NoError(t, err)
	_, err = m.CreateRecord(id, map[string]any{"name": "Ada"}, PolicyDrop)
	require.NoError(t, err)

	require.ErrorIs(t, m.DeleteClass(id, false), ErrClassInUse)

	// Forced deletion succeeds
	require.NoError(t, m.DeleteClass(id, true))
	_, err = m.ClassByName("Person")
	require.ErrorIs(t, err, ErrUnknownClass)
}

func TestDeleteClass_RemovesPropertyNodes(t *testing.T) {
	m := newTestModel(t)

	id, err := m.CreateClass("Person", ClassOptions{})
	require.NoError(t, err)
	require.NoError(t, m.DeclareProperties(id, "name", "age"))

	require.NoError(t, m.DeleteClass(id, false))

	count, err := m.Store().CountNodesByLabel(graph.LabelProperty)
	require.NoError(t, err)
	require.Zero(t, count)
}

func TestEnsureClass(t *testing.T) {
	m := newTestModel(t)

	first, err := m.EnsureClass("Import", ClassOptions{})
	require.NoError(t, err)
	second, err := m.EnsureClass("Import", ClassOptions{Strict: true})
	require.NoError(t, err)

	require.Equal(t, first, second)

	// Options of a later Ensure do not mutate the existing class
	attrs, err := m.ClassAttributes(second)
	require.NoError(t, err)
	require.False(t, attrs.Strict)
}

func TestListClasses(t *testing.T) {
	m := newTestModel(t)

	_, err := m.CreateClass("Zebra", ClassOptions{})
	require.NoError(t, err)
	_, err = m.CreateClass("Aardvark", ClassOptions{})
	require.NoError(t, err)

	classes, err := m.ListClasses()
	require.NoError(t, err)
	require.Len(t, classes, 2)
	require.Equal(t, "Aardvark", classes[0].Name)
	require.Equal(t, "Zebra", classes[1].Name)
}

func TestErrorsAreMatchable(t *testing.T) {
	m := newTestModel(t)

	_, err := m.ClassByName("Ghost")
	require.True(t, errors.Is(err, ErrUnknownClass))
	require.False(t, errors.Is(err, ErrAmbiguousRelationship))
}
