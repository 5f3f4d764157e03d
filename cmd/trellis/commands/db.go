package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/trellisdb/trellis/config"
	"github.com/trellisdb/trellis/graph"
	"github.com/trellisdb/trellis/logger"
	"github.com/trellisdb/trellis/sym"
)

// DbCmd represents the db (database) command
var DbCmd = &cobra.Command{
	Use:   "db",
	Short: sym.DB + " Manage Trellis database",
	Long: sym.DB + ` db — Manage Trellis database operations

Examples:
  trellis db stats                # Show graph statistics`,
}

var dbStatsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show graph database statistics",
	Long:  "Display node, edge, and record counts for the configured database",
	RunE:  runDbStats,
}

func init() {
	DbCmd.AddCommand(dbStatsCmd)
}

func runDbStats(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	database, err := openDatabase("")
	if err != nil {
		return err
	}
	defer database.Close()

	stats, err := graph.NewStore(database, logger.Logger).GetStats()
	if err != nil {
		return fmt.Errorf("failed to query graph stats: %w", err)
	}

	fmt.Printf("%s Database Statistics\n", sym.DB)
	fmt.Printf("━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━\n\n")
	fmt.Printf("Database Path:  %s\n", cfg.Database.Path)
	fmt.Printf("Total Nodes:    %d\n", stats.TotalNodes)
	fmt.Printf("Total Edges:    %d\n", stats.TotalEdges)
	fmt.Printf("Class Nodes:    %d\n", stats.ClassNodes)
	fmt.Printf("Property Nodes: %d\n", stats.PropNodes)
	fmt.Printf("Data Records:   %d\n", stats.DataRecords)
	return nil
}
