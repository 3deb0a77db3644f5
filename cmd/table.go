package cmd

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/schemato/schemato/spec"
)

var tableCmd = &cobra.Command{
	Use:   "table",
	Short: "Edit table specification files",
	Long: `Edit table specification files through the consistency-preserving
mutation API. Every edit re-saves the file in canonical form.

Examples:
  schemato table create tables/posts.js
  schemato table add-column tables/posts.js --name title --type string
  schemato table add-index tables/posts.js --name ix_posts_title --columns "title"
  schemato table remove-column tables/posts.js --name title
  schemato table show tables/posts.js
`,
}

var (
	tableName string

	colName          string
	colType          string
	colLength        string
	colLengthSpecify int
	colNullable      bool
	colDefault       string
	colDefaultValue  string

	idxName    string
	idxUnique  bool
	idxColumns string
)

func init() {
	tableCreateCmd.Flags().StringVar(&tableName, "table", "", "Table name (default: file name without extension)")

	tableAddColumnCmd.Flags().StringVar(&colName, "name", "", "Column name (required)")
	tableAddColumnCmd.Flags().StringVar(&colType, "type", "", "Column type: string, binary, integer, float, currency, boolean, record, date, datetime, json, uuid (required)")
	tableAddColumnCmd.Flags().StringVar(&colLength, "length", "", "Length mode for string/binary: default, long, specify")
	tableAddColumnCmd.Flags().IntVar(&colLengthSpecify, "length-specify", 0, "Explicit length when --length=specify")
	tableAddColumnCmd.Flags().BoolVar(&colNullable, "nullable", false, "Allow NULL values")
	tableAddColumnCmd.Flags().StringVar(&colDefault, "default", "", "Server default mode: none, null, specify")
	tableAddColumnCmd.Flags().StringVar(&colDefaultValue, "default-value", "", "Server default literal when --default=specify")
	tableAddColumnCmd.MarkFlagRequired("name")
	tableAddColumnCmd.MarkFlagRequired("type")

	tableRemoveColumnCmd.Flags().StringVar(&colName, "name", "", "Column name (required)")
	tableRemoveColumnCmd.MarkFlagRequired("name")

	tableAddIndexCmd.Flags().StringVar(&idxName, "name", "", "Index name (required)")
	tableAddIndexCmd.Flags().BoolVar(&idxUnique, "unique", false, "Create a unique index")
	tableAddIndexCmd.Flags().StringVar(&idxColumns, "columns", "", `Comma-separated column list, each "name" or "name(size)" (required)`)
	tableAddIndexCmd.MarkFlagRequired("name")
	tableAddIndexCmd.MarkFlagRequired("columns")

	tableRemoveIndexCmd.Flags().StringVar(&idxName, "name", "", "Index name (required)")
	tableRemoveIndexCmd.MarkFlagRequired("name")

	tableCmd.AddCommand(tableCreateCmd)
	tableCmd.AddCommand(tableShowCmd)
	tableCmd.AddCommand(tableAddColumnCmd)
	tableCmd.AddCommand(tableRemoveColumnCmd)
	tableCmd.AddCommand(tableAddIndexCmd)
	tableCmd.AddCommand(tableRemoveIndexCmd)
}

var tableCreateCmd = &cobra.Command{
	Use:   "create <file>",
	Short: "Create an empty table specification file",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		path := args[0]
		if _, err := os.Stat(path); err == nil {
			fmt.Printf("❌ %s already exists!\n", path)
			os.Exit(1)
		}
		name := tableName
		if name == "" {
			name = strings.TrimSuffix(filepath.Base(path), spec.FileExt)
		}
		if err := spec.NewTable(name).Save(path); err != nil {
			fmt.Println("❌ Creating table spec:", err)
			os.Exit(1)
		}
		fmt.Printf("✅ Created table spec %s (table %q).\n", path, name)
	},
}

var tableShowCmd = &cobra.Command{
	Use:   "show <file>",
	Short: "Show the columns and indexes of a table specification",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		t := loadTable(args[0])

		color.Cyan("Table: %s", t.Name)
		fmt.Println("\nColumns:")
		for _, c := range t.Columns() {
			line := fmt.Sprintf("   - %s %s", c.Name, c.Type)
			if c.Length != "" {
				line += fmt.Sprintf(" (length: %s", c.Length)
				if c.Length == spec.LengthSpecify {
					line += fmt.Sprintf("=%d", c.LengthSpecify)
				}
				line += ")"
			}
			if c.Nullable {
				line += " nullable"
			}
			if c.Default == spec.DefaultNull {
				line += " default NULL"
			} else if c.Default == spec.DefaultSpecify {
				line += " default " + c.DefaultLiteral()
			}
			if len(c.Indexes) > 0 {
				line += " [indexes: " + strings.Join(c.Indexes, ", ") + "]"
			}
			fmt.Println(line)
		}
		fmt.Println("\nIndexes:")
		for _, ix := range t.Indexes() {
			def := ix.Compile(spec.DefaultEngine)
			kind := "index"
			if def.Unique {
				kind = "unique"
			}
			fmt.Printf("   - %s (%s) on %s\n", ix.Name, kind, strings.Join(def.Columns, ", "))
		}
	},
}

var tableAddColumnCmd = &cobra.Command{
	Use:   "add-column <file>",
	Short: "Add a column to a table specification",
	Run:   withTable(addColumn),
	Args:  cobra.ExactArgs(1),
}

var tableRemoveColumnCmd = &cobra.Command{
	Use:   "remove-column <file>",
	Short: "Remove a column (and any indexes over it) from a table specification",
	Run:   withTable(removeColumn),
	Args:  cobra.ExactArgs(1),
}

var tableAddIndexCmd = &cobra.Command{
	Use:   "add-index <file>",
	Short: "Add an index to a table specification",
	Run:   withTable(addIndex),
	Args:  cobra.ExactArgs(1),
}

var tableRemoveIndexCmd = &cobra.Command{
	Use:   "remove-index <file>",
	Short: "Remove an index from a table specification",
	Run:   withTable(removeIndex),
	Args:  cobra.ExactArgs(1),
}

func loadTable(path string) *spec.Table {
	t, err := spec.Load(path)
	if err != nil {
		fmt.Println("❌ Loading table spec:", err)
		os.Exit(1)
	}
	return t
}

// withTable wraps an edit: load, mutate, save canonically.
func withTable(edit func(*spec.Table) error) func(*cobra.Command, []string) {
	return func(cmd *cobra.Command, args []string) {
		path := args[0]
		t := loadTable(path)
		if err := edit(t); err != nil {
			fmt.Println("❌", err)
			os.Exit(1)
		}
		if err := t.Save(path); err != nil {
			fmt.Println("❌ Saving table spec:", err)
			os.Exit(1)
		}
		color.Green("✅ Updated %s", path)
	}
}

func addColumn(t *spec.Table) error {
	col := &spec.Column{
		Name:          colName,
		Type:          spec.ColumnType(colType),
		Length:        spec.LengthMode(colLength),
		LengthSpecify: colLengthSpecify,
		Nullable:      colNullable,
		Default:       spec.DefaultMode(colDefault),
	}
	if colDefaultValue != "" {
		raw, err := json.Marshal(colDefaultValue)
		if err != nil {
			return err
		}
		col.DefaultValue = raw
	}
	return t.AddColumn(col)
}

func removeColumn(t *spec.Table) error {
	return t.RemoveColumn(colName)
}

func addIndex(t *spec.Table) error {
	cols, err := t.CheckIndexColumns(idxColumns)
	if err != nil {
		return err
	}
	kind := spec.KindIndex
	if idxUnique {
		kind = spec.KindUnique
	}
	return t.AddIndex(&spec.Index{Name: idxName, Kind: kind, Columns: cols})
}

func removeIndex(t *spec.Table) error {
	return t.RemoveIndex(idxName)
}
