package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/schemato/schemato/database"
	"github.com/schemato/schemato/runner"
	"github.com/schemato/schemato/utils"
)

var dryRunMigrate bool

func init() {
	migrateCmd.Flags().BoolVar(&dryRunMigrate, "dry-run", false, "Preview the SQL that would be executed without applying migrations")
}

// openRunner wires the shared config/connection setup for the migration
// commands.
func openRunner(ctx context.Context) (*runner.Runner, func(), error) {
	cfg, engine, err := projectConfig()
	if err != nil {
		return nil, nil, err
	}

	utils.LoadEnv()
	url, err := utils.DatabaseURL(cfg.DatabaseURL)
	if err != nil {
		return nil, nil, err
	}

	db, err := database.Open(ctx, engine, url)
	if err != nil {
		return nil, nil, err
	}
	return runner.New(db, engine, cfg.MigrationsDir), func() { db.Close() }, nil
}

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Apply pending migrations",
	Run: func(cmd *cobra.Command, args []string) {
		ctx := context.Background()
		r, closeDB, err := openRunner(ctx)
		if err != nil {
			fmt.Println("❌", err)
			os.Exit(1)
		}
		defer closeDB()

		if dryRunMigrate {
			if err := r.Preview(ctx); err != nil {
				fmt.Println("❌ Dry run failed:", err)
				os.Exit(1)
			}
			return
		}

		if err := r.Apply(ctx); err != nil {
			fmt.Println("❌ Migration failed:", err)
			os.Exit(1)
		}
	},
}
