package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/trellisdb/trellis/cmd/trellis/commands"
	"github.com/trellisdb/trellis/config"
	"github.com/trellisdb/trellis/logger"
)

var rootCmd = &cobra.Command{
	Use:   "trellis",
	Short: "Trellis - Schema-constrained graph importer",
	Long: `Trellis - Schema-constrained hierarchical data importer.

Trellis maintains a class/property schema inside a SQLite property graph
and imports hierarchical documents (YAML, JSON) as typed, linked records,
keeping only what the declared schema sanctions.

Available commands:
  schema  - Manage the class/property schema graph
  import  - Import a hierarchical document as typed records
  config  - Manage Trellis configuration
  db      - Manage database operations
  version - Show version information

Examples:
  trellis schema class create Book --strict   # Declare a strict class
  trellis schema show Book                    # Show resolved schema for a class
  trellis import books.yaml --class Library   # Import a document
  trellis db stats                            # Show database statistics`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if skipLoggerInit(cmd) {
			return nil
		}
		cfg, err := config.Load()
		if err != nil {
			return fmt.Errorf("failed to load configuration: %w", err)
		}
		verbose, _ := cmd.Flags().GetBool("verbose")
		if err := logger.Initialize(cfg.Logging.JSON, verbose || cfg.Logging.Verbose); err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}
		return nil
	},
}

// skipLoggerInit reports whether the command's stdout is the payload itself,
// so log lines must not be mixed in. Only 'trellis config show' qualifies;
// 'schema show' shares the name but wants logging like every other command.
func skipLoggerInit(cmd *cobra.Command) bool {
	return cmd.Name() == "show" && cmd.Parent() != nil && cmd.Parent().Name() == "config"
}

func init() {
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "Enable debug-level log output")

	rootCmd.AddCommand(commands.SchemaCmd)
	rootCmd.AddCommand(commands.ImportCmd)
	rootCmd.AddCommand(commands.ConfigCmd)
	rootCmd.AddCommand(commands.DbCmd)
	rootCmd.AddCommand(commands.VersionCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
