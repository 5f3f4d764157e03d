package graph

// Node labels for schema nodes. Data records carry their Class name as a
// label plus whatever labels the writer supplies.
const (
	LabelClass    = "Class"
	LabelProperty = "Property"
	LabelImport   = "Import"
)

// Reserved edge names. Everything else in the edges table is either a
// schema-level class relationship or a data-level edge mirroring one.
const (
	// EdgeDeclaresProperty connects a Class to one of its Property nodes.
	// Carries an "index" property recording declaration order.
	EdgeDeclaresProperty = "declares_property"

	// EdgeInstanceOf is the generalization edge from a more specific Class
	// to a more general one.
	EdgeInstanceOf = "instance_of"

	// EdgeClassifiedAs links a data record to its Class.
	EdgeClassifiedAs = "classified_as"

	// EdgeImported links an import metadata record to each root record the
	// import produced.
	EdgeImported = "imported"
)

// PropDeclarationIndex is the edge property holding a Property's declaration
// order on its declares_property edge.
const PropDeclarationIndex = "index"
