package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/schemato/schemato/compiler"
	"github.com/schemato/schemato/database"
	"github.com/schemato/schemato/diff"
	"github.com/schemato/schemato/generator"
	"github.com/schemato/schemato/introspect"
	"github.com/schemato/schemato/utils"
)

var dryRunGenerate bool

func init() {
	generateCmd.Flags().BoolVar(&dryRunGenerate, "dry-run", false, "Preview the SQL that would be generated without writing files")
}

var generateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Generate a migration file from the table specifications",
	Long: `Compile the table specifications, introspect the database, and write a
timestamped migration file for the detected changes.

Examples:
  schemato generate                  # diff against DATABASE_URL, write migration
  schemato generate --dry-run        # print the SQL without writing files
`,
	Run: func(cmd *cobra.Command, args []string) {
		cfg, engine, err := projectConfig()
		if err != nil {
			fmt.Println("❌", err)
			os.Exit(1)
		}

		c := compiler.New()
		if _, err := c.CompileDir(cfg.SpecDir, engine); err != nil {
			fmt.Println("❌ Compiling table specs:", err)
			os.Exit(1)
		}

		utils.LoadEnv()
		url, err := utils.DatabaseURL(cfg.DatabaseURL)
		if err != nil {
			fmt.Println("❌", err)
			os.Exit(1)
		}

		ctx := context.Background()
		db, err := database.Open(ctx, engine, url)
		if err != nil {
			fmt.Println("❌ Connecting to database:", err)
			os.Exit(1)
		}
		defer db.Close()

		existing, err := introspect.Database(ctx, db, engine)
		if err != nil {
			fmt.Println("❌ Introspecting database:", err)
			os.Exit(1)
		}

		ops := diff.DiffSchemas(c.Metadata, existing)
		if len(ops) == 0 {
			fmt.Println("✅ No changes detected.")
			return
		}

		sqls, err := generator.GenerateSQL(engine, ops)
		if err != nil {
			fmt.Println("❌ Generating SQL:", err)
			os.Exit(1)
		}
		rollbackSqls, err := generator.GenerateRollbackSQL(engine, ops)
		if err != nil {
			fmt.Println("❌ Generating rollback SQL:", err)
			os.Exit(1)
		}

		if dryRunGenerate {
			fmt.Println("\n================ DRY RUN: Migration Preview ================")
			fmt.Println("-- Up Migration SQL --")
			for _, stmt := range sqls {
				fmt.Println(stmt)
			}
			fmt.Println("\n-- Down Migration (Rollback) SQL --")
			for _, stmt := range rollbackSqls {
				fmt.Println(stmt)
			}
			fmt.Println("============================================================")
			fmt.Println("(Dry run only. No files were written.)")
			return
		}

		filename, err := generator.WriteMigrationFile(cfg.MigrationsDir, sqls, rollbackSqls)
		if err != nil {
			fmt.Println("❌ Writing migration file:", err)
			os.Exit(1)
		}

		fmt.Println("✅ Migration generated:", filename)
	},
}
