package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// DefaultFile is the project configuration file looked up in the working
// directory.
const DefaultFile = "schemato.yaml"

type Config struct {
	SpecDir       string `yaml:"spec_dir"`
	Engine        string `yaml:"engine"`
	MigrationsDir string `yaml:"migrations_dir"`
	DatabaseURL   string `yaml:"database_url"`
}

// Load reads the project file if present and fills in defaults. A missing
// file is not an error: every setting has a flag or environment fallback.
func Load(path string) (*Config, error) {
	cfg := &Config{
		SpecDir:       "tables",
		Engine:        "mysql",
		MigrationsDir: "migrations",
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("unmarshalling %s: %w", path, err)
	}
	if cfg.SpecDir == "" {
		cfg.SpecDir = "tables"
	}
	if cfg.Engine == "" {
		cfg.Engine = "mysql"
	}
	if cfg.MigrationsDir == "" {
		cfg.MigrationsDir = "migrations"
	}
	return cfg, nil
}
