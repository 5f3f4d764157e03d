package schema

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestCreateRecord_StrictFiltersProperties(t *testing.T) {
	m := newTestModel(t)

	id, err := m.CreateClass("Person", ClassOptions{Strict: true})
	require.NoError(t, err)
	require.NoError(t, m.DeclareProperties(id, "name"))

	record, err := m.CreateRecord(id, map[string]any{
		"name":    "Ada",
		"unknown": "dropped",
	}, PolicyDrop)
	require.NoError(t, err)

	node, err := m.Store().GetNode(record)
	require.NoError(t, err)
	require.Equal(t, "Ada", node.StringProperty("name"))
	require.NotContains(t, node.Properties, "unknown")
	require.True(t, node.HasLabel("Person"))
}

func TestCreateRecord_NoDatanodesRefused(t *testing.T) {
	m := newTestModel(t)

	id, err := m.CreateClass("Abstract", ClassOptions{NoDatanodes: true})
	require.NoError(t, err)

	_, err = m.CreateRecord(id, map[string]any{"x": 1}, PolicyDrop)
	require.ErrorIs(t, err, ErrNoDataRecords)
}

func TestClassOfRecord(t *testing.T) {
	m := newTestModel(t)

	id, err := m.CreateClass("Person", ClassOptions{})
	require.NoError(t, err)
	record, err := m.CreateRecord(id, map[string]any{"name": "Ada"}, PolicyDrop)
	require.NoError(t, err)

	got, err := m.ClassOfRecord(record)
	require.NoError(t, err)
	require.Equal(t, id, got)
}

func TestLinkRecords_Authorized(t *testing.T) {
	m := newTestModel(t)

	person, err := m.CreateClass("Person", ClassOptions{})
	require.NoError(t, err)
	book, err := m.CreateClass("Book", ClassOptions{})
	require.NoError(t, err)
	require.NoError(t, m.DeclareRelationship(person, "wrote", book))

	author, err := m.CreateRecord(person, map[string]any{"name": "Herbert"}, PolicyDrop)
	require.NoError(t, err)
	novel, err := m.CreateRecord(book, map[string]any{"title": "Dune"}, PolicyDrop)
	require.NoError(t, err)

	require.NoError(t, m.LinkRecords(author, novel, "wrote"))

	edges, err := m.Store().OutgoingEdges(author, "wrote")
	require.NoError(t, err)
	require.Len(t, edges, 1)
	require.Equal(t, novel, edges[0].Target)
}

func TestLinkRecords_UndeclaredNameRefused(t *testing.T) {
	m := newTestModel(t)

	person, err := m.CreateClass("Person", ClassOptions{})
	require.NoError(t, err)
	book, err := m.CreateClass("Book", ClassOptions{})
	require.NoError(t, err)

	author, err := m.CreateRecord(person, nil, PolicyDrop)
	require.NoError(t, err)
	novel, err := m.CreateRecord(book, nil, PolicyDrop)
	require.NoError(t, err)

	require.ErrorIs(t, m.LinkRecords(author, novel, "wrote"), ErrUnauthorizedEdge)
}

func TestLinkRecords_WrongTargetClassRefused(t *testing.T) {
	m := newTestModel(t)

	person, err := m.CreateClass("Person", ClassOptions{})
	require.NoError(t, err)
	book, err := m.CreateClass("Book", ClassOptions{})
	require.NoError(t, err)
	car, err := m.CreateClass("Car", ClassOptions{})
	require.NoError(t, err)
	require.NoError(t, m.DeclareRelationship(person, "wrote", book))

	author, err := m.CreateRecord(person, nil, PolicyDrop)
	require.NoError(t, err)
	vehicle, err := m.CreateRecord(car, nil, PolicyDrop)
	require.NoError(t, err)

	require.ErrorIs(t, m.LinkRecords(author, vehicle, "wrote"), ErrUnauthorizedEdge)
}

func TestLinkRecords_SubclassTargetAccepted(t *testing.T) {
	m := newTestModel(t)

	person, err := m.CreateClass("Person", ClassOptions{})
	require.NoError(t, err)
	book, err := m.CreateClass("Book", ClassOptions{})
	require.NoError(t, err)
	novelClass, err := m.CreateClass("Novel", ClassOptions{})
	require.NoError(t, err)

	require.NoError(t, m.AddGeneralization(novelClass, book))
	require.NoError(t, m.DeclareRelationship(person, "wrote", book))

	author, err := m.CreateRecord(person, nil, PolicyDrop)
	require.NoError(t, err)
	novel, err := m.CreateRecord(novelClass, nil, PolicyDrop)
	require.NoError(t, err)

	// Novel generalizes to Book, so a "wrote" edge targeting Book accepts it
	require.NoError(t, m.LinkRecords(author, novel, "wrote"))
}

func TestLinkRecords_InheritedRelationship(t *testing.T) {
	m := newTestModel(t)

	creator, err := m.CreateClass("Creator", ClassOptions{})
	require.NoError(t, err)
	person, err := m.CreateClass("Person", ClassOptions{})
	require.NoError(t, err)
	book, err := m.CreateClass("Book", ClassOptions{})
	require.NoError(t, err)

	require.NoError(t, m.AddGeneralization(person, creator))
	require.NoError(t, m.DeclareRelationship(creator, "wrote", book))

	author, err := m.CreateRecord(person, nil, PolicyDrop)
	require.NoError(t, err)
	novel, err := m.CreateRecord(book, nil, PolicyDrop)
	require.NoError(t, err)

	// "wrote" is declared on Creator; Person inherits it
	require.NoError(t, m.LinkRecords(author, novel, "wrote"))
}
