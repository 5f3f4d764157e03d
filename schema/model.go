// Package schema implements the class/property type system layered on the
// property graph: class declaration, property inheritance across
// generalization edges, and the strictness checks that decide what a data
// record may carry.
package schema

import (
	"database/sql"

	"go.uber.org/zap"

	"github.com/trellisdb/trellis/errors"
	"github.com/trellisdb/trellis/graph"
)

// ClassID identifies a Class node in the graph.
type ClassID int64

// Class node property names.
const (
	propName        = "name"
	propSchemaID    = "schema_id"
	propStrict      = "strict"
	propCode        = "code"
	propNoDatanodes = "no_datanodes"
)

// ClassAttributes holds the declared attributes of a Class.
type ClassAttributes struct {
	ID          ClassID `json:"id"`
	Name        string  `json:"name"`
	SchemaID    int64   `json:"schema_id"`
	Strict      bool    `json:"strict"`
	NoDatanodes bool    `json:"no_datanodes"`
	Code        string  `json:"code,omitempty"`
}

// Model is the query surface over the schema graph. All reads go through
// here; the importer's cache memoizes these per import invocation.
type Model struct {
	store  *graph.Store
	logger *zap.SugaredLogger
}

// NewModel creates a schema model over the given graph store. logger may be nil.
func NewModel(store *graph.Store, logger *zap.SugaredLogger) *Model {
	return &Model{store: store, logger: logger}
}

// Store exposes the underlying graph store.
func (m *Model) Store() *graph.Store {
	return m.store
}

// Query constants
const (
	classByNameQuery = `
		SELECT id FROM nodes
		WHERE EXISTS (
			SELECT 1 FROM json_each(nodes.labels)
			WHERE value = ?
		) AND json_extract(nodes.properties, '$.name') = ?`

	directPropertiesQuery = `
		SELECT json_extract(p.properties, '$.name')
		FROM edges e
		JOIN nodes p ON p.id = e.target
		WHERE e.source = ? AND e.name = ?
		ORDER BY CAST(json_extract(e.properties, '$.index') AS INTEGER)`

	outboundRelationshipsQuery = `
		SELECT e.name, json_extract(t.properties, '$.name')
		FROM edges e
		JOIN nodes t ON t.id = e.target
		WHERE e.source = ?
		  AND e.name != ?
		  AND EXISTS (
			SELECT 1 FROM json_each(t.labels)
			WHERE value = ?
		  )`

	classifiedRecordCountQuery = `
		SELECT COUNT(*) FROM edges WHERE target = ? AND name = ?`

	listClassesQuery = `
		SELECT id FROM nodes
		WHERE EXISTS (
			SELECT 1 FROM json_each(nodes.labels)
			WHERE value = ?
		)
		ORDER BY json_extract(nodes.properties, '$.name')`
)

// ClassByName resolves a class name to its id. Returns ErrUnknownClass if no
// class with that name exists.
func (m *Model) ClassByName(name string) (ClassID, error) {
	var id int64
	err := m.store.DB().QueryRow(classByNameQuery, graph.LabelClass, name).Scan(&id)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, errors.Mark(errors.Newf("class %q not found", name), ErrUnknownClass)
	}
	if err != nil {
		return 0, errors.Wrapf(err, "failed to look up class %q", name)
	}
	return ClassID(id), nil
}

// ClassAttributes loads the declared attributes of the class.
func (m *Model) ClassAttributes(id ClassID) (*ClassAttributes, error) {
	node, err := m.store.GetNode(int64(id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, errors.Mark(errors.Newf("class %d not found", id), ErrUnknownClass)
		}
		return nil, err
	}
	if !node.HasLabel(graph.LabelClass) {
		return nil, errors.Mark(errors.Newf("node %d is not a class", id), ErrUnknownClass)
	}

	attrs := &ClassAttributes{
		ID:          id,
		Name:        node.StringProperty(propName),
		Strict:      node.BoolProperty(propStrict),
		NoDatanodes: node.BoolProperty(propNoDatanodes),
		Code:        node.StringProperty(propCode),
	}
	if v, ok := node.Properties[propSchemaID].(float64); ok {
		attrs.SchemaID = int64(v)
	}
	return attrs, nil
}

// DirectProperties returns the class's own declared property names in
// declaration-index order, without ancestors.
func (m *Model) DirectProperties(id ClassID) ([]string, error) {
	rows, err := m.store.DB().Query(directPropertiesQuery, int64(id), graph.EdgeDeclaresProperty)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to query properties of class %d", id)
	}
	defer rows.Close()

	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, errors.Wrap(err, "failed to scan property name")
		}
		names = append(names, name)
	}
	return names, rows.Err()
}

// DirectOutboundRelationships returns the class's own named relationships as
// a relationship-name -> target-class-name mapping. The generalization edge
// is excluded when omitGeneralization is true. The same relationship name
// pointing at two different target classes from this class is a modeling
// error and fails with ErrAmbiguousRelationship.
func (m *Model) DirectOutboundRelationships(id ClassID, omitGeneralization bool) (map[string]string, error) {
	rows, err := m.store.DB().Query(outboundRelationshipsQuery,
		int64(id), graph.EdgeDeclaresProperty, graph.LabelClass)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to query relationships of class %d", id)
	}
	defer rows.Close()

	rels := make(map[string]string)
	for rows.Next() {
		var relName, targetClass string
		if err := rows.Scan(&relName, &targetClass); err != nil {
			return nil, errors.Wrap(err, "failed to scan relationship row")
		}
		if omitGeneralization && relName == graph.EdgeInstanceOf {
			continue
		}
		if existing, ok := rels[relName]; ok && existing != targetClass {
			return nil, errors.Mark(
				errors.Newf("class %d declares relationship %q to both %q and %q",
					id, relName, existing, targetClass),
				ErrAmbiguousRelationship)
		}
		rels[relName] = targetClass
	}
	return rels, rows.Err()
}

// GeneralizationParents returns the classes this class generalizes to
// (one hop), in edge creation order.
func (m *Model) GeneralizationParents(id ClassID) ([]ClassID, error) {
	edges, err := m.store.OutgoingEdges(int64(id), graph.EdgeInstanceOf)
	if err != nil {
		return nil, err
	}
	parents := make([]ClassID, 0, len(edges))
	for _, e := range edges {
		parents = append(parents, ClassID(e.Target))
	}
	return parents, nil
}

// ClassifiedRecordCount counts the data records classified directly against
// the class.
func (m *Model) ClassifiedRecordCount(id ClassID) (int64, error) {
	return m.store.QueryScalarInt(classifiedRecordCountQuery, int64(id), graph.EdgeClassifiedAs)
}

// ListClasses returns the attributes of every declared class, ordered by name.
func (m *Model) ListClasses() ([]*ClassAttributes, error) {
	rows, err := m.store.DB().Query(listClassesQuery, graph.LabelClass)
	if err != nil {
		return nil, errors.Wrap(err, "failed to list classes")
	}
	defer rows.Close()

	var ids []ClassID
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, errors.Wrap(err, "failed to scan class id")
		}
		ids = append(ids, ClassID(id))
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	classes := make([]*ClassAttributes, 0, len(ids))
	for _, id := range ids {
		attrs, err := m.ClassAttributes(id)
		if err != nil {
			return nil, err
		}
		classes = append(classes, attrs)
	}
	return classes, nil
}
