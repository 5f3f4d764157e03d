package schema

import (
	"github.com/trellisdb/trellis/errors"
)

// Sentinel errors for the schema layer. Concrete errors are marked with
// these via errors.Mark so callers can match with errors.Is while still
// seeing the offending class/property in the message.
var (
	// ErrUnknownClass indicates a class name or id that does not exist in
	// the schema graph.
	ErrUnknownClass = errors.New("unknown class")

	// ErrDuplicateClass indicates an attempt to create a class whose name
	// is already taken.
	ErrDuplicateClass = errors.New("class already exists")

	// ErrAmbiguousRelationship indicates a class exposes two relationships
	// under the same name pointing at different target classes.
	ErrAmbiguousRelationship = errors.New("ambiguous relationship")

	// ErrSchemaViolation indicates a property or edge not sanctioned by a
	// strict class, surfaced only under the reject policy.
	ErrSchemaViolation = errors.New("schema violation")

	// ErrGeneralizationCycle indicates a generalization edge that would
	// make the class hierarchy cyclic.
	ErrGeneralizationCycle = errors.New("generalization cycle")

	// ErrClassInUse indicates a class deletion blocked by attached data
	// records.
	ErrClassInUse = errors.New("class has data records")

	// ErrNoDataRecords indicates a class marked no_datanodes cannot
	// classify data records directly.
	ErrNoDataRecords = errors.New("class does not allow data records")

	// ErrUnauthorizedEdge indicates a data edge with no backing class
	// relationship between the two records' classes.
	ErrUnauthorizedEdge = errors.New("edge not authorized by schema")
)
