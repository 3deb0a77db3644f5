package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var steps int

func init() {
	rollbackCmd.Flags().IntVarP(&steps, "steps", "s", 1, "Number of migrations to rollback")
}

var rollbackCmd = &cobra.Command{
	Use:   "rollback",
	Short: "Rollback migrations",
	Long: `Rollback the last migration or multiple migrations.

Examples:
  schemato rollback           # Rollback the last migration
  schemato rollback --steps=3 # Rollback the last 3 migrations
`,
	Run: func(cmd *cobra.Command, args []string) {
		if steps < 1 {
			fmt.Println("❌ Steps must be at least 1")
			os.Exit(1)
		}

		ctx := context.Background()
		r, closeDB, err := openRunner(ctx)
		if err != nil {
			fmt.Println("❌", err)
			os.Exit(1)
		}
		defer closeDB()

		if err := r.Rollback(ctx, steps); err != nil {
			fmt.Println("❌ Rollback failed:", err)
			os.Exit(1)
		}
	},
}
