package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// EnvPrefix is prepended to every variable name in Config's env tags.
var EnvPrefix = strings.ToUpper(AppName) + "_"

// loadDotenv exports the variables of a dotenv file. Variables already in
// the environment win. A missing file is not an error.
func loadDotenv(path string) error {
	if path == "" {
		return nil
	}
	if _, err := os.Stat(path); errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	if err := godotenv.Load(path); err != nil {
		return fmt.Errorf("load %s: %w", path, err)
	}
	return nil
}

// parseEnv overlays cfg with LOGINFLOW_* variables. Unset variables leave
// the current values alone.
func parseEnv(cfg *Config) error {
	if err := env.ParseWithOptions(cfg, env.Options{Prefix: EnvPrefix}); err != nil {
		return fmt.Errorf("parse environment: %w", err)
	}
	return nil
}
