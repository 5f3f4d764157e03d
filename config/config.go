// Package config manages Trellis configuration: a TOML file under
// ~/.trellis, environment overrides, and live reload.
package config

// Config represents the core Trellis configuration
type Config struct {
	Database DatabaseConfig `mapstructure:"database"`
	Import   ImportConfig   `mapstructure:"import"`
	Logging  LoggingConfig  `mapstructure:"logging"`
}

// DatabaseConfig configures the SQLite graph database
type DatabaseConfig struct {
	Path string `mapstructure:"path"`
}

// ImportConfig configures the hierarchical importer
type ImportConfig struct {
	// MaxDepth bounds importer recursion. Inputs nested deeper than this
	// abort with an invalid-input error instead of exhausting the stack.
	MaxDepth int `mapstructure:"max_depth"`

	// ScalarProperty is the reserved property name used when a bare scalar
	// has to be wrapped as a one-key mapping (scalar sequence elements,
	// scalar top-level input).
	ScalarProperty string `mapstructure:"scalar_property"`

	// RejectViolations switches strict-class property filtering from
	// silent drop to a hard schema-violation error.
	RejectViolations bool `mapstructure:"reject_violations"`
}

// LoggingConfig configures log output
type LoggingConfig struct {
	JSON    bool `mapstructure:"json"`
	Verbose bool `mapstructure:"verbose"`
}
