package main

import (
	"os"

	"github.com/cristalhq/aconfig"
	"github.com/cristalhq/aconfig/aconfigyaml"
	"github.com/go-faster/errors"
)

// Config holds the seed tool configuration, loadable from environment
// variables (ORDERDESK_ prefix), flags, or a YAML config file.
type Config struct {
	DatabaseURL string `usage:"PostgreSQL connection URL (ORDERDESK_DATABASE_URL or DATABASE_URL)" flag:"database-url"`
	SeedFile    string `default:"db/seed/catalog.json" usage:"path to the seed JSON file" flag:"seed-file"`
}

// LoadConfig loads configuration from environment variables, flags, and an
// optional YAML config file, with a DATABASE_URL platform fallback.
func LoadConfig() (*Config, error) {
	var cfg Config
	loader := aconfig.LoaderFor(&cfg, aconfig.Config{
		EnvPrefix: "ORDERDESK",
		Files:     []string{"config.yaml"},
		FileDecoders: map[string]aconfig.FileDecoder{
			".yaml": aconfigyaml.New(),
		},
	})
	if err := loader.Load(); err != nil {
		return nil, errors.Wrap(err, "load config")
	}

	if cfg.DatabaseURL == "" {
		if v := os.Getenv("DATABASE_URL"); v != "" {
			cfg.DatabaseURL = v
		}
	}
	if cfg.DatabaseURL == "" {
		return nil, errors.New("database URL is required: set ORDERDESK_DATABASE_URL or DATABASE_URL")
	}

	return &cfg, nil
}
