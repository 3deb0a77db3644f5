package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/schemato/schemato/config"
	"github.com/schemato/schemato/spec"
)

var (
	cfgFile           string
	engineFlag        string
	specDirFlag       string
	migrationsDirFlag string
)

var rootCmd = &cobra.Command{
	Use:   "schemato",
	Short: "Compile JSON table specifications into SQL schemas and migrations",
	Long: `schemato turns a directory of JSON table specifications into a
relational schema for mysql, postgresql or sqlite, and drives the
migration workflow against a live database.

Examples:

  schemato init
  schemato compile -e postgresql
  schemato generate
  schemato migrate
`,
}

// Execute runs the CLI
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Println("❌", err)
		os.Exit(1)
	}
}

// Register subcommands
func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", config.DefaultFile, "Project config file")
	rootCmd.PersistentFlags().StringVarP(&engineFlag, "engine", "e", "", "Target engine: mysql, postgresql, sqlite (default from config, then mysql)")
	rootCmd.PersistentFlags().StringVarP(&migrationsDirFlag, "directory", "d", "", "Migration script directory (default \"migrations\")")
	rootCmd.PersistentFlags().StringVarP(&specDirFlag, "tables", "t", "", "Table specification directory (default \"tables\")")

	rootCmd.AddCommand(initCmd)
	rootCmd.AddCommand(compileCmd)
	rootCmd.AddCommand(generateCmd)
	rootCmd.AddCommand(migrateCmd)
	rootCmd.AddCommand(rollbackCmd)
	rootCmd.AddCommand(statusCmd)
	rootCmd.AddCommand(tableCmd)
}

// projectConfig resolves the effective configuration: config file values
// overridden by command-line flags.
func projectConfig() (*config.Config, spec.Engine, error) {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return nil, "", err
	}
	if specDirFlag != "" {
		cfg.SpecDir = specDirFlag
	}
	if migrationsDirFlag != "" {
		cfg.MigrationsDir = migrationsDirFlag
	}
	if engineFlag != "" {
		cfg.Engine = engineFlag
	}
	engine, err := spec.ParseEngine(cfg.Engine)
	if err != nil {
		return nil, "", err
	}
	return cfg, engine, nil
}
