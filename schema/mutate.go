package schema

import (
	"github.com/trellisdb/trellis/allocator"
	"github.com/trellisdb/trellis/errors"
	"github.com/trellisdb/trellis/graph"
	"github.com/trellisdb/trellis/logger"
)

// ClassOptions configures class creation.
type ClassOptions struct {
	// Strict restricts records of this class to its resolved declared
	// properties; lenient classes accept anything.
	Strict bool

	// Code is an optional short string used by presentation layers.
	Code string

	// NoDatanodes forbids records from classifying directly against this
	// class (abstract classes in a hierarchy).
	NoDatanodes bool
}

// reservedEdgeNames cannot be declared as class relationships.
var reservedEdgeNames = map[string]bool{
	graph.EdgeDeclaresProperty: true,
	graph.EdgeInstanceOf:       true,
	graph.EdgeClassifiedAs:     true,
	graph.EdgeImported:         true,
}

// CreateClass declares a new class. Class names are unique; a second
// declaration under the same name fails with ErrDuplicateClass.
func (m *Model) CreateClass(name string, opts ClassOptions) (ClassID, error) {
	if name == "" {
		return 0, errors.New("class name must not be empty")
	}

	if _, err := m.ClassByName(name); err == nil {
		return 0, errors.Mark(errors.Newf("class %q already exists", name), ErrDuplicateClass)
	} else if !errors.Is(err, ErrUnknownClass) {
		return 0, err
	}

	schemaID, err := m.store.Allocator().Next(allocator.NamespaceSchemaNode)
	if err != nil {
		return 0, err
	}

	props := map[string]any{
		propName:     name,
		propSchemaID: schemaID,
	}
	if opts.Strict {
		props[propStrict] = true
	}
	if opts.Code != "" {
		props[propCode] = opts.Code
	}
	if opts.NoDatanodes {
		props[propNoDatanodes] = true
	}

	id, err := m.store.CreateNode([]string{graph.LabelClass}, props)
	if err != nil {
		return 0, err
	}

	if m.logger != nil {
		m.logger.Infow("Created class",
			logger.FieldClass, name,
			logger.FieldClassID, id,
			"schema_id", schemaID,
			"strict", opts.Strict,
		)
	}
	return ClassID(id), nil
}

// EnsureClass returns the id of the named class, creating it with the given
// options if it does not exist yet.
func (m *Model) EnsureClass(name string, opts ClassOptions) (ClassID, error) {
	id, err := m.ClassByName(name)
	if err == nil {
		return id, nil
	}
	if !errors.Is(err, ErrUnknownClass) {
		return 0, err
	}
	return m.CreateClass(name, opts)
}

// DeclareProperties declares additional properties on the class, appending
// to its declaration order. Redeclaring an already-declared name is a no-op.
func (m *Model) DeclareProperties(id ClassID, names ...string) error {
	if _, err := m.ClassAttributes(id); err != nil {
		return err
	}

	existing, err := m.DirectProperties(id)
	if err != nil {
		return err
	}
	declared := make(map[string]bool, len(existing))
	for _, name := range existing {
		declared[name] = true
	}

	index := len(existing)
	for _, name := range names {
		if name == "" {
			return errors.New("property name must not be empty")
		}
		if declared[name] {
			continue
		}

		schemaID, err := m.store.Allocator().Next(allocator.NamespaceSchemaNode)
		if err != nil {
			return err
		}
		propNode, err := m.store.CreateNode([]string{graph.LabelProperty}, map[string]any{
			propName:     name,
			propSchemaID: schemaID,
		})
		if err != nil {
			return err
		}
		err = m.store.CreateEdge(int64(id), propNode, graph.EdgeDeclaresProperty, map[string]any{
			graph.PropDeclarationIndex: index,
		})
		if err != nil {
			return err
		}

		declared[name] = true
		index++
	}
	return nil
}

// DeclareRelationship authorizes records of the from class to carry a
// same-named edge to records of the to class. Declaring the same name twice
// with different targets is permitted here; the ambiguity surfaces as
// ErrAmbiguousRelationship during resolution.
func (m *Model) DeclareRelationship(from ClassID, name string, to ClassID) error {
	if name == "" {
		return errors.New("relationship name must not be empty")
	}
	if reservedEdgeNames[name] {
		return errors.Newf("relationship name %q is reserved", name)
	}
	if _, err := m.ClassAttributes(from); err != nil {
		return err
	}
	if _, err := m.ClassAttributes(to); err != nil {
		return err
	}

	// Identical redeclaration is a no-op
	existing, err := m.store.OutgoingEdges(int64(from), name)
	if err != nil {
		return err
	}
	for _, e := range existing {
		if e.Target == int64(to) {
			return nil
		}
	}

	return m.store.CreateEdge(int64(from), int64(to), name, nil)
}

// AddGeneralization declares that child generalizes to parent. The
// hierarchy is a DAG; an edge that would close a cycle fails with
// ErrGeneralizationCycle.
func (m *Model) AddGeneralization(child, parent ClassID) error {
	if child == parent {
		return errors.Mark(errors.Newf("class %d cannot generalize to itself", child), ErrGeneralizationCycle)
	}
	if _, err := m.ClassAttributes(child); err != nil {
		return err
	}
	if _, err := m.ClassAttributes(parent); err != nil {
		return err
	}

	// Reject an edge that would make child reachable from parent
	reachable := false
	err := m.walkGeneralizations(parent, func(class ClassID) error {
		if class == child {
			reachable = true
		}
		return nil
	})
	if err != nil {
		return err
	}
	if reachable {
		return errors.Mark(
			errors.Newf("generalizing class %d to %d would create a cycle", child, parent),
			ErrGeneralizationCycle)
	}

	// Duplicate edge is a no-op
	parents, err := m.GeneralizationParents(child)
	if err != nil {
		return err
	}
	for _, p := range parents {
		if p == parent {
			return nil
		}
	}

	return m.store.CreateEdge(int64(child), int64(parent), graph.EdgeInstanceOf, nil)
}

// DeleteClass removes a class, its property nodes, and all schema edges
// touching it. By default deletion is refused while data records classify
// against the class; force overrides that (the records keep their properties
// but lose their classification).
func (m *Model) DeleteClass(id ClassID, force bool) error {
	attrs, err := m.ClassAttributes(id)
	if err != nil {
		return err
	}

	if !force {
		count, err := m.ClassifiedRecordCount(id)
		if err != nil {
			return err
		}
		if count > 0 {
			return errors.Mark(
				errors.Newf("class %q has %d data records", attrs.Name, count),
				ErrClassInUse)
		}
	}

	// Property nodes are owned by the class; delete them with it
	propEdges, err := m.store.OutgoingEdges(int64(id), graph.EdgeDeclaresProperty)
	if err != nil {
		return err
	}

	tx, err := m.store.DB().Begin()
	if err != nil {
		return errors.Wrap(err, "failed to begin delete transaction")
	}

	// Edges first: nodes referenced by edges cannot be deleted under
	// foreign key enforcement.
	if _, err := tx.Exec("DELETE FROM edges WHERE source = ? OR target = ?", int64(id), int64(id)); err != nil {
		tx.Rollback()
		return errors.Wrapf(err, "failed to delete edges of class %d", id)
	}
	for _, e := range propEdges {
		if _, err := tx.Exec("DELETE FROM nodes WHERE id = ?", e.Target); err != nil {
			tx.Rollback()
			return errors.Wrapf(err, "failed to delete property node %d", e.Target)
		}
	}
	if _, err := tx.Exec("DELETE FROM nodes WHERE id = ?", int64(id)); err != nil {
		tx.Rollback()
		return errors.Wrapf(err, "failed to delete class node %d", id)
	}

	if err := tx.Commit(); err != nil {
		return errors.Wrap(err, "failed to commit class deletion")
	}

	if m.logger != nil {
		m.logger.Infow("Deleted class",
			logger.FieldClass, attrs.Name,
			logger.FieldClassID, id,
			"forced", force,
		)
	}
	return nil
}
