package commands

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"github.com/trellisdb/trellis/config"
	"github.com/trellisdb/trellis/errors"
	"github.com/trellisdb/trellis/importer"
	"github.com/trellisdb/trellis/logger"
	"github.com/trellisdb/trellis/sym"
)

// ImportCmd represents the import command
var ImportCmd = &cobra.Command{
	Use:   "import <file>",
	Short: sym.Import + " Import a hierarchical document as typed records",
	Long: sym.Import + ` import — Import a hierarchical document as typed records

Reads a YAML or JSON document (by file extension) and materializes it as
data records classified against the schema, rooted at the given class.
Keys the schema does not sanction are dropped and reported; use --reject
to fail the import on the first violation instead.

Examples:
  trellis import books.yaml --class Library
  trellis import export.json --class Catalog --reject
  trellis import tags.yaml --class Tag --dropped`,
	Args: cobra.ExactArgs(1),
	RunE: runImport,
}

var (
	importClassFlag   string
	importRejectFlag  bool
	importDroppedFlag bool
)

func init() {
	ImportCmd.Flags().StringVarP(&importClassFlag, "class", "c", "", "Root class for the imported records (required)")
	ImportCmd.Flags().BoolVar(&importRejectFlag, "reject", false, "Fail on schema violations instead of dropping")
	ImportCmd.Flags().BoolVar(&importDroppedFlag, "dropped", false, "List every dropped key and subtree")
	ImportCmd.MarkFlagRequired("class")
}

func runImport(cmd *cobra.Command, args []string) error {
	path := args[0]

	data, err := os.ReadFile(path)
	if err != nil {
		return errors.Wrapf(err, "failed to read %s", path)
	}

	value, err := decodeByExtension(path, data)
	if err != nil {
		return err
	}

	cfg, err := config.Load()
	if err != nil {
		return errors.Wrap(err, "failed to load configuration")
	}

	model, database, err := openModel("")
	if err != nil {
		return err
	}
	defer database.Close()

	imp := importer.New(model, logger.Logger, importer.Options{
		MaxDepth:         cfg.Import.MaxDepth,
		ScalarProperty:   cfg.Import.ScalarProperty,
		RejectViolations: importRejectFlag || cfg.Import.RejectViolations,
	})

	result, err := imp.Import(value, importClassFlag, filepath.Base(path))
	if err != nil {
		return errors.Wrapf(err, "import of %s failed", path)
	}

	if len(result.Roots) == 0 {
		pterm.Warning.Println("Input was vacuous: no records created")
		return nil
	}

	pterm.Success.Printf("Imported %d root records as %s\n", len(result.Roots), importClassFlag)
	pterm.Printf("  Import ID: %s\n", result.ImportID)
	pterm.Printf("  Metadata:  node %d\n", result.MetadataNode)
	if len(result.Dropped) > 0 {
		pterm.Warning.Printf("Dropped %d unsanctioned keys\n", len(result.Dropped))
		if importDroppedFlag {
			for _, d := range result.Dropped {
				pterm.Printf("  %s: %s\n", d.Path, d.Reason)
			}
		} else {
			pterm.Info.Println("Re-run with --dropped to list them")
		}
	}
	return nil
}

// decodeByExtension picks the decoder from the file extension. YAML is the
// default for unrecognized extensions.
func decodeByExtension(path string, data []byte) (*importer.Value, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		v, err := importer.FromJSON(data)
		if err != nil {
			return nil, errors.Wrapf(err, "failed to parse %s as JSON", path)
		}
		return v, nil
	default:
		v, err := importer.FromYAML(data)
		if err != nil {
			return nil, errors.Wrapf(err, "failed to parse %s as YAML", path)
		}
		return v, nil
	}
}
