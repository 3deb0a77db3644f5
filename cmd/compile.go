package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/schemato/schemato/compiler"
	"github.com/schemato/schemato/generator"
)

var compileCmd = &cobra.Command{
	Use:   "compile",
	Short: "Compile table specifications and print the full schema SQL",
	Long: `Compile every table specification in the spec directory for the target
engine and print the resulting CREATE TABLE / CREATE INDEX statements.

Examples:
  schemato compile                  # mysql (default engine)
  schemato compile -e postgresql
  schemato compile -e sqlite -t db/tables
`,
	Run: func(cmd *cobra.Command, args []string) {
		cfg, engine, err := projectConfig()
		if err != nil {
			fmt.Println("❌", err)
			os.Exit(1)
		}

		c := compiler.New()
		compiled, err := c.CompileDir(cfg.SpecDir, engine)
		if err != nil {
			fmt.Println("❌ Compiling table specs:", err)
			os.Exit(1)
		}
		if len(compiled) == 0 {
			fmt.Printf("✅ No table specifications found in %s.\n", cfg.SpecDir)
			return
		}

		for _, ct := range compiled {
			fmt.Printf("-- %s\n", ct.Source)
			fmt.Println(generator.CreateTableSQL(engine, ct.Table))
			for i := range ct.Table.Indexes {
				fmt.Println(generator.CreateIndexSQL(engine, ct.Table.Name, &ct.Table.Indexes[i]))
			}
			fmt.Println()
		}
	},
}
