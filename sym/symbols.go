// Package sym defines canonical glyphs for Trellis surfaces and system
// markers. These symbols are stable across CLI output and documentation.
package sym

// Primary surface glyphs, one per top-level command.
const (
	Schema = "⌘" // schema — class/property declarations
	Import = "⨳" // import — ingest external hierarchical data
	DB     = "◫" // db — database operations
	Config = "≡" // config — configuration and system settings
)

// Structural markers used in graph-shaped output.
const (
	Class    = "◉" // a class node
	Property = "·" // a property declaration
	Record   = "○" // a data record
	Edge     = "⟶" // a named edge
)

// names maps each glyph to its stable identifier.
var names = map[string]string{
	Schema:   "schema",
	Import:   "import",
	DB:       "db",
	Config:   "config",
	Class:    "class",
	Property: "property",
	Record:   "record",
	Edge:     "edge",
}

// Name returns the stable identifier for a glyph, or "" if the glyph is not
// one of the canonical symbols.
func Name(glyph string) string {
	return names[glyph]
}

// All returns every canonical glyph with its identifier.
func All() map[string]string {
	out := make(map[string]string, len(names))
	for glyph, name := range names {
		out[glyph] = name
	}
	return out
}
