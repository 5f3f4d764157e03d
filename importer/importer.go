// Package importer converts externally supplied hierarchical data (ordered
// mappings, sequences, scalars) into typed graph records, keeping only what
// the declared schema sanctions and linking every created root to an import
// metadata record.
package importer

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/trellisdb/trellis/errors"
	"github.com/trellisdb/trellis/graph"
	"github.com/trellisdb/trellis/logger"
	"github.com/trellisdb/trellis/schema"
)

// DefaultMaxDepth bounds recursion when Options does not override it.
const DefaultMaxDepth = 64

// DefaultScalarProperty is the reserved property name used to wrap bare
// scalars into one-key mappings.
const DefaultScalarProperty = "value"

// Options configures an Importer.
type Options struct {
	// MaxDepth bounds input nesting; deeper input aborts with
	// ErrInvalidInput instead of exhausting the call stack. Zero means
	// DefaultMaxDepth.
	MaxDepth int

	// ScalarProperty overrides the reserved wrapping property name. Empty
	// means DefaultScalarProperty.
	ScalarProperty string

	// RejectViolations turns silent drops of unsanctioned property names on
	// strict classes into fatal schema violations.
	RejectViolations bool
}

// Drop records one silently discarded key or subtree, for callers that want
// to audit what the schema filtered out.
type Drop struct {
	Path   string `json:"path"`
	Key    string `json:"key"`
	Reason string `json:"reason"`
}

// Result reports a completed import.
type Result struct {
	// ImportID is the unique identifier of this invocation.
	ImportID string `json:"import_id"`

	// MetadataNode is the id of the import metadata record, 0 when the
	// import produced no records at all.
	MetadataNode int64 `json:"metadata_node,omitempty"`

	// Roots are the independently-created root records, in input order.
	Roots []int64 `json:"roots"`

	// Dropped lists keys and subtrees discarded by schema filtering.
	Dropped []Drop `json:"dropped,omitempty"`
}

// Importer drives schema-constrained hierarchical imports. One Importer may
// serve many invocations; each invocation gets its own schema cache.
type Importer struct {
	model          *schema.Model
	logger         *zap.SugaredLogger
	maxDepth       int
	scalarProperty string
	policy         schema.ViolationPolicy
}

// New creates an Importer over the given schema model. logger may be nil.
func New(model *schema.Model, logger *zap.SugaredLogger, opts Options) *Importer {
	maxDepth := opts.MaxDepth
	if maxDepth <= 0 {
		maxDepth = DefaultMaxDepth
	}
	scalarProp := opts.ScalarProperty
	if scalarProp == "" {
		scalarProp = DefaultScalarProperty
	}
	policy := schema.PolicyDrop
	if opts.RejectViolations {
		policy = schema.PolicyReject
	}
	return &Importer{
		model:          model,
		logger:         logger,
		maxDepth:       maxDepth,
		scalarProperty: scalarProp,
		policy:         policy,
	}
}

// run holds the state of one import invocation.
type run struct {
	imp     *Importer
	cache   *Cache
	dropped []Drop
}

// link is a pending parent-to-child edge accumulated during postorder
// construction.
type link struct {
	child int64
	name  string
}

// Import materializes the hierarchical value as a typed subgraph rooted at
// records of the named class. A mapping input produces at most one root; a
// sequence input produces zero or more. On success the created roots are
// connected to a fresh import metadata record via "imported" edges (unless
// the whole input was vacuous, in which case nothing is written at all).
//
// An unknown root class name or malformed input is fatal before any write.
// Schema mismatches below the root are not errors: the offending key or
// subtree is dropped and recorded in Result.Dropped.
func (imp *Importer) Import(data *Value, rootClassName string, provenance string) (*Result, error) {
	started := time.Now()

	result := &Result{ImportID: uuid.NewString()}
	if data == nil {
		return result, nil
	}

	rootClass, err := imp.model.ClassByName(rootClassName)
	if err != nil {
		return nil, err
	}
	allowed, err := imp.model.AllowsRecords(rootClass)
	if err != nil {
		return nil, err
	}
	if !allowed {
		return nil, errors.Mark(
			errors.Newf("root class %q does not allow data records", rootClassName),
			schema.ErrNoDataRecords)
	}

	r := &run{imp: imp, cache: NewCache(imp.model)}

	switch data.Kind() {
	case KindMapping:
		ref, created, err := r.importNode(data, rootClass, 0, "$")
		if err != nil {
			return nil, err
		}
		if created {
			result.Roots = append(result.Roots, ref)
		}

	case KindSequence:
		roots, err := r.importSequence(data.Items(), rootClass, 0, "$")
		if err != nil {
			return nil, err
		}
		result.Roots = roots

	case KindScalar:
		wrapped := Mapping(Pair{Key: imp.scalarProperty, Value: data})
		ref, created, err := r.importNode(wrapped, rootClass, 0, "$")
		if err != nil {
			return nil, err
		}
		if created {
			result.Roots = append(result.Roots, ref)
		}

	default:
		return nil, errors.Mark(
			errors.Newf("unsupported input kind %v", data.Kind()),
			ErrInvalidInput)
	}

	result.Dropped = r.dropped

	// A vacuous input produces no records at all, not even metadata
	if len(result.Roots) == 0 {
		return result, nil
	}

	metadata, err := imp.createMetadata(result.ImportID, provenance)
	if err != nil {
		return nil, err
	}
	result.MetadataNode = metadata

	for _, root := range result.Roots {
		if err := imp.model.Store().CreateEdge(metadata, root, graph.EdgeImported, nil); err != nil {
			return nil, err
		}
	}

	if imp.logger != nil {
		imp.logger.Infow("Import complete",
			logger.FieldImportID, result.ImportID,
			logger.FieldClass, rootClassName,
			logger.FieldProvenance, provenance,
			logger.FieldRoots, len(result.Roots),
			logger.FieldDropped, len(result.Dropped),
			logger.FieldDurationMS, time.Since(started).Milliseconds(),
		)
	}
	return result, nil
}

// importNode converts one mapping into one record of the given class,
// postorder: children first, then the record, then its outbound edges.
// Returns created=false without writing anything when the mapping
// contributes neither properties nor child links.
func (r *run) importNode(v *Value, class schema.ClassID, depth int, path string) (int64, bool, error) {
	if depth > r.imp.maxDepth {
		return 0, false, errors.Mark(
			errors.Newf("input exceeds maximum nesting depth %d at %s", r.imp.maxDepth, path),
			ErrInvalidInput)
	}
	if v.Kind() != KindMapping {
		return 0, false, errors.Mark(
			errors.Newf("expected mapping at %s, got %v", path, v.Kind()),
			ErrInvalidInput)
	}

	props := make(map[string]any)
	var links []link

	for _, pair := range v.Pairs() {
		key, child := pair.Key, pair.Value
		childPath := path + "." + key

		// Absent values are discarded without comment
		if child == nil {
			continue
		}

		switch child.Kind() {
		case KindScalar:
			if child.Scalar() == nil {
				continue
			}
			ok, err := r.cache.PropertyAllowed(class, key)
			if err != nil {
				return 0, false, err
			}
			if !ok {
				if r.imp.policy == schema.PolicyReject {
					attrs, attrErr := r.cache.Attributes(class)
					if attrErr != nil {
						return 0, false, attrErr
					}
					return 0, false, errors.Mark(
						errors.Newf("property %q is not declared on strict class %q", key, attrs.Name),
						schema.ErrSchemaViolation)
				}
				r.drop(childPath, key, "property not declared on strict class")
				continue
			}
			props[key] = child.Scalar()

		case KindMapping:
			target, ok, err := r.relationshipTarget(class, key)
			if err != nil {
				return 0, false, err
			}
			if !ok {
				r.drop(childPath, key, "relationship not declared for class")
				continue
			}
			targetClass, ok, err := r.nestedClass(target, childPath, key)
			if err != nil {
				return 0, false, err
			}
			if !ok {
				continue
			}
			ref, created, err := r.importNode(child, targetClass, depth+1, childPath)
			if err != nil {
				return 0, false, err
			}
			if created {
				links = append(links, link{child: ref, name: key})
			}

		case KindSequence:
			target, ok, err := r.relationshipTarget(class, key)
			if err != nil {
				return 0, false, err
			}
			if !ok {
				r.drop(childPath, key, "relationship not declared for class")
				continue
			}
			targetClass, ok, err := r.nestedClass(target, childPath, key)
			if err != nil {
				return 0, false, err
			}
			if !ok {
				continue
			}
			refs, err := r.importSequence(child.Items(), targetClass, depth+1, childPath)
			if err != nil {
				return 0, false, err
			}
			for _, ref := range refs {
				links = append(links, link{child: ref, name: key})
			}

		default:
			return 0, false, errors.Mark(
				errors.Newf("unsupported value kind %v at %s", child.Kind(), childPath),
				ErrInvalidInput)
		}
	}

	// Vacuous subtrees never produce orphan nodes
	if len(props) == 0 && len(links) == 0 {
		return 0, false, nil
	}

	record, err := r.imp.model.CreateRecord(class, props, r.imp.policy)
	if err != nil {
		return 0, false, err
	}
	for _, l := range links {
		if err := r.imp.model.Store().CreateEdge(record, l.child, l.name, nil); err != nil {
			return 0, false, err
		}
	}
	return record, true, nil
}

// importSequence imports each element of a sequence as its own subtree
// against the same class, collecting the created references in order. A
// scalar element is wrapped as a one-key mapping with the reserved default
// property name; a nested sequence element is flattened recursively.
func (r *run) importSequence(items []*Value, class schema.ClassID, depth int, path string) ([]int64, error) {
	if depth > r.imp.maxDepth {
		return nil, errors.Mark(
			errors.Newf("input exceeds maximum nesting depth %d at %s", r.imp.maxDepth, path),
			ErrInvalidInput)
	}

	var refs []int64
	for i, item := range items {
		itemPath := fmt.Sprintf("%s[%d]", path, i)

		if item == nil {
			continue
		}

		switch item.Kind() {
		case KindScalar:
			if item.Scalar() == nil {
				continue
			}
			item = Mapping(Pair{Key: r.imp.scalarProperty, Value: item})
			fallthrough

		case KindMapping:
			ref, created, err := r.importNode(item, class, depth, itemPath)
			if err != nil {
				return nil, err
			}
			if created {
				refs = append(refs, ref)
			}

		case KindSequence:
			nested, err := r.importSequence(item.Items(), class, depth+1, itemPath)
			if err != nil {
				return nil, err
			}
			refs = append(refs, nested...)

		default:
			return nil, errors.Mark(
				errors.Newf("unsupported value kind %v at %s", item.Kind(), itemPath),
				ErrInvalidInput)
		}
	}
	return refs, nil
}

// relationshipTarget looks up the authorized target class name for a
// relationship key. Ambiguity in the schema is fatal; an undeclared name is
// a normal miss.
func (r *run) relationshipTarget(class schema.ClassID, key string) (string, bool, error) {
	rels, err := r.cache.OutboundRelationships(class)
	if err != nil {
		return "", false, err
	}
	target, ok := rels[key]
	return target, ok, nil
}

// nestedClass resolves a nested relationship's target class name. Resolution
// failures below the root are non-fatal: the subtree is dropped and the rest
// of the import proceeds.
func (r *run) nestedClass(targetName, path, key string) (schema.ClassID, bool, error) {
	id, err := r.cache.ClassIDByName(targetName)
	if err != nil {
		if errors.Is(err, schema.ErrUnknownClass) {
			r.drop(path, key, fmt.Sprintf("target class %q not found", targetName))
			return 0, false, nil
		}
		return 0, false, err
	}

	allowed, err := r.cache.Attributes(id)
	if err != nil {
		return 0, false, err
	}
	if allowed.NoDatanodes {
		r.drop(path, key, fmt.Sprintf("target class %q does not allow data records", targetName))
		return 0, false, nil
	}
	return id, true, nil
}

func (r *run) drop(path, key, reason string) {
	r.dropped = append(r.dropped, Drop{Path: path, Key: key, Reason: reason})
	if r.imp.logger != nil {
		r.imp.logger.Debugw("Dropped unsanctioned input",
			logger.FieldPath, path,
			"key", key,
			"reason", reason,
		)
	}
}

// createMetadata creates the import metadata record carrying provenance and
// the invocation timestamp. The distinguished Import class is created
// lazily (lenient) on first use.
func (imp *Importer) createMetadata(importID, provenance string) (int64, error) {
	class, err := imp.model.EnsureClass(graph.LabelImport, schema.ClassOptions{})
	if err != nil {
		return 0, err
	}

	props := map[string]any{
		"import_id": importID,
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	}
	if provenance != "" {
		props["file"] = provenance
	}
	return imp.model.CreateRecord(class, props, schema.PolicyDrop)
}
