package logger

// Standard field names for consistent structured logging across Trellis.
// Use these constants instead of raw strings to ensure consistency.
const (
	// Schema
	FieldClass     = "class"
	FieldClassID   = "class_id"
	FieldNamespace = "namespace"

	// Graph records
	FieldNodeID = "node_id"
	FieldEdge   = "edge"
	FieldLabels = "labels"

	// Import
	FieldImportID   = "import_id"
	FieldProvenance = "provenance"
	FieldDropped    = "dropped"
	FieldRoots      = "roots"

	// Counts and timing
	FieldCount      = "count"
	FieldDurationMS = "duration_ms"

	// Errors and files
	FieldError = "error"
	FieldFile  = "file"
	FieldPath  = "path"
)
