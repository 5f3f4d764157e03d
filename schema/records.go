package schema

import (
	"github.com/trellisdb/trellis/errors"
	"github.com/trellisdb/trellis/graph"
)

// CreateRecord creates a data record classified under the given class. The
// requested properties pass through AllowedProperties first, so a strict
// class never stores unsanctioned property names on this path. Classes
// marked no_datanodes refuse records.
func (m *Model) CreateRecord(id ClassID, properties map[string]any, policy ViolationPolicy) (int64, error) {
	attrs, err := m.ClassAttributes(id)
	if err != nil {
		return 0, err
	}
	if attrs.NoDatanodes {
		return 0, errors.Mark(
			errors.Newf("class %q does not allow data records", attrs.Name),
			ErrNoDataRecords)
	}

	filtered, err := m.AllowedProperties(id, properties, policy)
	if err != nil {
		return 0, err
	}

	record, err := m.store.CreateNode([]string{attrs.Name}, filtered)
	if err != nil {
		return 0, err
	}
	if err := m.store.CreateEdge(record, int64(id), graph.EdgeClassifiedAs, nil); err != nil {
		return 0, err
	}
	return record, nil
}

// ClassOfRecord returns the class the record classifies against.
func (m *Model) ClassOfRecord(recordID int64) (ClassID, error) {
	edges, err := m.store.OutgoingEdges(recordID, graph.EdgeClassifiedAs)
	if err != nil {
		return 0, err
	}
	if len(edges) == 0 {
		return 0, errors.Newf("record %d has no classification", recordID)
	}
	return ClassID(edges[0].Target), nil
}

// LinkRecords creates a named data edge between two records, failing with
// ErrUnauthorizedEdge unless a same-named class relationship is resolvable
// (including inheritance) from the source record's class to the target
// record's class or one of its generalizations.
func (m *Model) LinkRecords(from, to int64, name string) error {
	fromClass, err := m.ClassOfRecord(from)
	if err != nil {
		return err
	}
	toClass, err := m.ClassOfRecord(to)
	if err != nil {
		return err
	}

	rels, err := m.ResolveOutboundRelationships(fromClass)
	if err != nil {
		return err
	}
	targetName, ok := rels[name]
	if !ok {
		fromAttrs, attrErr := m.ClassAttributes(fromClass)
		if attrErr != nil {
			return attrErr
		}
		return errors.Mark(
			errors.Newf("class %q declares no relationship %q", fromAttrs.Name, name),
			ErrUnauthorizedEdge)
	}

	matches, err := m.classOrAncestorNamed(toClass, targetName)
	if err != nil {
		return err
	}
	if !matches {
		toAttrs, attrErr := m.ClassAttributes(toClass)
		if attrErr != nil {
			return attrErr
		}
		return errors.Mark(
			errors.Newf("relationship %q targets class %q, record is %q",
				name, targetName, toAttrs.Name),
			ErrUnauthorizedEdge)
	}

	return m.store.CreateEdge(from, to, name, nil)
}

// classOrAncestorNamed reports whether the class or any of its
// generalizations carries the given name.
func (m *Model) classOrAncestorNamed(id ClassID, name string) (bool, error) {
	found := false
	err := m.walkGeneralizations(id, func(class ClassID) error {
		if found {
			return nil
		}
		attrs, err := m.ClassAttributes(class)
		if err != nil {
			return err
		}
		if attrs.Name == name {
			found = true
		}
		return nil
	})
	return found, err
}
