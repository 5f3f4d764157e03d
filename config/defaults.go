package config

import (
	"github.com/spf13/viper"
)

// SetDefaults configures default values for all configuration options
func SetDefaults(v *viper.Viper) {
	// Database defaults
	v.SetDefault("database.path", "trellis.db")

	// Importer defaults
	v.SetDefault("import.max_depth", 64)
	v.SetDefault("import.scalar_property", "value")
	v.SetDefault("import.reject_violations", false)

	// Logging defaults
	v.SetDefault("logging.json", false)
	v.SetDefault("logging.verbose", false)
}
