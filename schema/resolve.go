package schema

import (
	"github.com/trellisdb/trellis/errors"
)

// Order controls how ancestor-inclusive property resolution sequences its
// result: ascending places the class's own properties before inherited ones,
// descending reverses the whole sequence.
type Order int

const (
	OrderAscending Order = iota
	OrderDescending
)

// ViolationPolicy decides what AllowedProperties does with a property a
// strict class does not sanction.
type ViolationPolicy int

const (
	// PolicyDrop silently omits unsanctioned properties.
	PolicyDrop ViolationPolicy = iota
	// PolicyReject fails with ErrSchemaViolation on the first unsanctioned
	// property.
	PolicyReject
)

// ResolveProperties computes the class's declared property names. Without
// ancestors: the class's own properties in declaration-index order. With
// ancestors: the union across the class and every class reachable by
// generalization hops, ordered first by hop distance then by declaration
// index, deduplicated on first occurrence.
func (m *Model) ResolveProperties(id ClassID, includeAncestors bool, order Order) ([]string, error) {
	if !includeAncestors {
		names, err := m.DirectProperties(id)
		if err != nil {
			return nil, err
		}
		if order == OrderDescending {
			reverse(names)
		}
		return names, nil
	}

	var (
		result []string
		seen   = make(map[string]bool)
	)
	err := m.walkGeneralizations(id, func(class ClassID) error {
		names, err := m.DirectProperties(class)
		if err != nil {
			return err
		}
		for _, name := range names {
			if !seen[name] {
				seen[name] = true
				result = append(result, name)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if order == OrderDescending {
		reverse(result)
	}
	return result, nil
}

// ResolveOutboundRelationships computes the relationship-name -> target-class
// mapping for the class including inherited relationships. A relationship
// redeclared closer to the class shadows the inherited one; two differently
// targeted declarations on a single class fail with ErrAmbiguousRelationship.
// The generalization relationship itself is excluded.
func (m *Model) ResolveOutboundRelationships(id ClassID) (map[string]string, error) {
	resolved := make(map[string]string)
	err := m.walkGeneralizations(id, func(class ClassID) error {
		rels, err := m.DirectOutboundRelationships(class, true)
		if err != nil {
			return err
		}
		for name, target := range rels {
			if _, ok := resolved[name]; !ok {
				resolved[name] = target
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return resolved, nil
}

// AllowedProperties is the sole gate for what survives into a strict-class
// record. For a lenient class it returns requested unchanged. For a strict
// class it filters requested down to the ancestor-inclusive resolved
// property set, either dropping offenders silently or rejecting on the
// first one depending on policy.
func (m *Model) AllowedProperties(id ClassID, requested map[string]any, policy ViolationPolicy) (map[string]any, error) {
	attrs, err := m.ClassAttributes(id)
	if err != nil {
		return nil, err
	}
	if !attrs.Strict {
		return requested, nil
	}

	allowed, err := m.ResolveProperties(id, true, OrderAscending)
	if err != nil {
		return nil, err
	}
	allowedSet := make(map[string]bool, len(allowed))
	for _, name := range allowed {
		allowedSet[name] = true
	}

	filtered := make(map[string]any, len(requested))
	for name, value := range requested {
		if allowedSet[name] {
			filtered[name] = value
			continue
		}
		if policy == PolicyReject {
			return nil, errors.Mark(
				errors.Newf("property %q is not declared on strict class %q", name, attrs.Name),
				ErrSchemaViolation)
		}
	}
	return filtered, nil
}

// AllowsRecords reports whether data records may classify directly against
// the class.
func (m *Model) AllowsRecords(id ClassID) (bool, error) {
	attrs, err := m.ClassAttributes(id)
	if err != nil {
		return false, err
	}
	return !attrs.NoDatanodes, nil
}

// walkGeneralizations visits the class and every class reachable over
// generalization edges, breadth-first by hop distance. Each class is visited
// once even when the hierarchy converges.
func (m *Model) walkGeneralizations(id ClassID, visit func(ClassID) error) error {
	var (
		queue   = []ClassID{id}
		visited = map[ClassID]bool{id: true}
	)
	for len(queue) > 0 {
		class := queue[0]
		queue = queue[1:]

		if err := visit(class); err != nil {
			return err
		}

		parents, err := m.GeneralizationParents(class)
		if err != nil {
			return err
		}
		for _, parent := range parents {
			if !visited[parent] {
				visited[parent] = true
				queue = append(queue, parent)
			}
		}
	}
	return nil
}

func reverse(s []string) {
	for i, j := 0, len(s)-1; i < j; i, j = i+1, j-1 {
		s[i], s[j] = s[j], s[i]
	}
}
