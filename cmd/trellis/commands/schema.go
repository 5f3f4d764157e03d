package commands

import (
	"fmt"
	"sort"

	"github.com/spf13/cobra"

	"github.com/trellisdb/trellis/errors"
	"github.com/trellisdb/trellis/schema"
	"github.com/trellisdb/trellis/sym"
)

// SchemaCmd represents the schema command
var SchemaCmd = &cobra.Command{
	Use:   "schema",
	Short: sym.Schema + " Manage the class/property schema graph",
	Long: sym.Schema + ` schema — Manage the class/property schema graph

Declare classes, their properties, named relationships between classes,
and generalization (inheritance) links. The schema decides what the
importer will keep.

Examples:
  trellis schema class create Book --strict        # Declare a strict class
  trellis schema props Book title pages            # Declare properties in order
  trellis schema rel Library books Book            # Authorize Library -books-> Book
  trellis schema extends Novel Book                # Novel inherits Book's schema
  trellis schema show Novel                        # Show resolved schema
  trellis schema ls                                # List all classes`,
}

var schemaClassCmd = &cobra.Command{
	Use:   "class",
	Short: "Manage class declarations",
}

var schemaClassCreateCmd = &cobra.Command{
	Use:   "create <name>",
	Short: "Declare a new class",
	Long: `Declare a new class in the schema graph.

A strict class only accepts properties it (or an ancestor) declares;
a lenient class accepts anything. A no-datanodes class is purely
abstract and never classifies data records.`,
	Args: cobra.ExactArgs(1),
	RunE: runSchemaClassCreate,
}

var schemaPropsCmd = &cobra.Command{
	Use:   "props <class> <property>...",
	Short: "Declare properties on a class",
	Long: `Declare one or more properties on a class, in declaration order.

Declaration order is preserved and determines resolved property order.
Redeclaring an existing property is a no-op.`,
	Args: cobra.MinimumNArgs(2),
	RunE: runSchemaProps,
}

var schemaRelCmd = &cobra.Command{
	Use:   "rel <class> <name> <target>",
	Short: "Declare a named relationship between two classes",
	Args:  cobra.ExactArgs(3),
	RunE:  runSchemaRel,
}

var schemaExtendsCmd = &cobra.Command{
	Use:   "extends <class> <parent>",
	Short: "Add a generalization link (class inherits parent's schema)",
	Args:  cobra.ExactArgs(2),
	RunE:  runSchemaExtends,
}

var schemaShowCmd = &cobra.Command{
	Use:   "show <class>",
	Short: "Show the resolved schema of a class",
	Long:  "Display a class's attributes, its own and inherited properties, and its outbound relationships.",
	Args:  cobra.ExactArgs(1),
	RunE:  runSchemaShow,
}

var schemaLsCmd = &cobra.Command{
	Use:   "ls",
	Short: "List all declared classes",
	RunE:  runSchemaLs,
}

var schemaRmCmd = &cobra.Command{
	Use:   "rm <class>",
	Short: "Delete a class and its property declarations",
	Args:  cobra.ExactArgs(1),
	RunE:  runSchemaRm,
}

var (
	classStrictFlag      bool
	classCodeFlag        string
	classNoDatanodesFlag bool
	rmForceFlag          bool
)

func init() {
	schemaClassCreateCmd.Flags().BoolVar(&classStrictFlag, "strict", false, "Only accept declared properties")
	schemaClassCreateCmd.Flags().StringVar(&classCodeFlag, "code", "", "Optional short code for the class")
	schemaClassCreateCmd.Flags().BoolVar(&classNoDatanodesFlag, "no-datanodes", false, "Class never classifies data records")
	schemaRmCmd.Flags().BoolVarP(&rmForceFlag, "force", "f", false, "Delete even if records are classified against the class")

	schemaClassCmd.AddCommand(schemaClassCreateCmd)
	SchemaCmd.AddCommand(schemaClassCmd)
	SchemaCmd.AddCommand(schemaPropsCmd)
	SchemaCmd.AddCommand(schemaRelCmd)
	SchemaCmd.AddCommand(schemaExtendsCmd)
	SchemaCmd.AddCommand(schemaShowCmd)
	SchemaCmd.AddCommand(schemaLsCmd)
	SchemaCmd.AddCommand(schemaRmCmd)
}

func runSchemaClassCreate(cmd *cobra.Command, args []string) error {
	model, database, err := openModel("")
	if err != nil {
		return err
	}
	defer database.Close()

	id, err := model.CreateClass(args[0], schema.ClassOptions{
		Strict:      classStrictFlag,
		Code:        classCodeFlag,
		NoDatanodes: classNoDatanodesFlag,
	})
	if err != nil {
		return errors.Wrapf(err, "failed to create class %q", args[0])
	}

	fmt.Printf("Created class %s (node %d)\n", args[0], id)
	return nil
}

func runSchemaProps(cmd *cobra.Command, args []string) error {
	model, database, err := openModel("")
	if err != nil {
		return err
	}
	defer database.Close()

	id, err := model.ClassByName(args[0])
	if err != nil {
		return err
	}
	if err := model.DeclareProperties(id, args[1:]...); err != nil {
		return errors.Wrapf(err, "failed to declare properties on %q", args[0])
	}

	fmt.Printf("Declared %d properties on %s\n", len(args)-1, args[0])
	return nil
}

func runSchemaRel(cmd *cobra.Command, args []string) error {
	model, database, err := openModel("")
	if err != nil {
		return err
	}
	defer database.Close()

	from, err := model.ClassByName(args[0])
	if err != nil {
		return err
	}
	to, err := model.ClassByName(args[2])
	if err != nil {
		return err
	}
	if err := model.DeclareRelationship(from, args[1], to); err != nil {
		return errors.Wrapf(err, "failed to declare relationship %q", args[1])
	}

	fmt.Printf("Declared %s -%s-> %s\n", args[0], args[1], args[2])
	return nil
}

func runSchemaExtends(cmd *cobra.Command, args []string) error {
	model, database, err := openModel("")
	if err != nil {
		return err
	}
	defer database.Close()

	child, err := model.ClassByName(args[0])
	if err != nil {
		return err
	}
	parent, err := model.ClassByName(args[1])
	if err != nil {
		return err
	}
	if err := model.AddGeneralization(child, parent); err != nil {
		return errors.Wrapf(err, "failed to add generalization %s -> %s", args[0], args[1])
	}

	fmt.Printf("%s now inherits from %s\n", args[0], args[1])
	return nil
}

func runSchemaShow(cmd *cobra.Command, args []string) error {
	model, database, err := openModel("")
	if err != nil {
		return err
	}
	defer database.Close()

	id, err := model.ClassByName(args[0])
	if err != nil {
		return err
	}
	attrs, err := model.ClassAttributes(id)
	if err != nil {
		return err
	}

	fmt.Printf("%s Class: %s\n", sym.Class, attrs.Name)
	fmt.Printf("━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━\n")
	fmt.Printf("Node ID:      %d\n", attrs.ID)
	fmt.Printf("Schema ID:    %d\n", attrs.SchemaID)
	fmt.Printf("Strict:       %t\n", attrs.Strict)
	fmt.Printf("No Datanodes: %t\n", attrs.NoDatanodes)
	if attrs.Code != "" {
		fmt.Printf("Code:         %s\n", attrs.Code)
	}
	fmt.Println()

	own, err := model.DirectProperties(id)
	if err != nil {
		return err
	}
	resolved, err := model.ResolveProperties(id, true, schema.OrderAscending)
	if err != nil {
		return err
	}
	fmt.Printf("Own Properties:      %v\n", own)
	fmt.Printf("Resolved Properties: %v\n", resolved)
	fmt.Println()

	rels, err := model.ResolveOutboundRelationships(id)
	if err != nil {
		return err
	}
	if len(rels) > 0 {
		names := make([]string, 0, len(rels))
		for name := range rels {
			names = append(names, name)
		}
		sort.Strings(names)
		fmt.Println("Relationships:")
		for _, name := range names {
			fmt.Printf("  %s %s %s\n", sym.Edge, name, rels[name])
		}
		fmt.Println()
	}

	records, err := model.ClassifiedRecordCount(id)
	if err != nil {
		return err
	}
	fmt.Printf("Classified Records: %d\n", records)
	return nil
}

func runSchemaLs(cmd *cobra.Command, args []string) error {
	model, database, err := openModel("")
	if err != nil {
		return err
	}
	defer database.Close()

	classes, err := model.ListClasses()
	if err != nil {
		return err
	}
	if len(classes) == 0 {
		fmt.Println("No classes declared yet")
		return nil
	}

	fmt.Printf("%-24s %-10s %-8s %s\n", "NAME", "SCHEMA ID", "STRICT", "FLAGS")
	for _, c := range classes {
		flags := ""
		if c.NoDatanodes {
			flags = "no-datanodes"
		}
		fmt.Printf("%-24s %-10d %-8t %s\n", c.Name, c.SchemaID, c.Strict, flags)
	}
	return nil
}

func runSchemaRm(cmd *cobra.Command, args []string) error {
	model, database, err := openModel("")
	if err != nil {
		return err
	}
	defer database.Close()

	id, err := model.ClassByName(args[0])
	if err != nil {
		return err
	}
	if err := model.DeleteClass(id, rmForceFlag); err != nil {
		if errors.Is(err, schema.ErrClassInUse) {
			return errors.WithHint(err, "use --force to delete anyway")
		}
		return err
	}

	fmt.Printf("Deleted class %s\n", args[0])
	return nil
}
