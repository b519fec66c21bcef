package config

import (
	"os"
	"path/filepath"
	"time"
)

// AppName names the config directory and the env prefix.
const AppName = "loginflow"

// Config holds runtime settings for the loginflow CLI.
type Config struct {
	// APIURL is the base URL of the authentication API.
	APIURL string `env:"API_URL"`
	// StorePath is the SQLite file holding the session.
	StorePath string `env:"STORE"`
	// Ephemeral keeps the session in memory only.
	Ephemeral bool `env:"EPHEMERAL"`
	// RequestTimeout bounds each API request. Zero disables the bound.
	RequestTimeout time.Duration `env:"TIMEOUT"`
	// LogLevel is one of debug, info, warn, error.
	LogLevel string `env:"LOG_LEVEL"`
	// LogFile receives diagnostic logs. Empty means stderr.
	LogFile string `env:"LOG_FILE"`
	// ClearOnProfileFailure logs the user out when the profile cannot be
	// fetched right after login.
	ClearOnProfileFailure bool `env:"CLEAR_ON_PROFILE_FAILURE"`
}

// LoadDefaults populates c with sensible defaults.
func (c *Config) LoadDefaults() {
	c.APIURL = "http://localhost:8000"
	c.StorePath = filepath.Join(DefaultConfigDir(), "session.db")
	c.Ephemeral = false
	c.RequestTimeout = 30 * time.Second
	c.LogLevel = "warn"
	c.LogFile = ""
	c.ClearOnProfileFailure = false
}

// Options selects the files LoadConfig reads.
type Options struct {
	// ConfigFile is an optional JSON file.
	ConfigFile string
	// EnvFile is an optional dotenv file; missing files are skipped.
	EnvFile string
}

// LoadConfig constructs a Config, applies defaults, then overlays values from
// the JSON file, the dotenv file and the environment. Later sources take
// precedence over earlier ones.
func LoadConfig(opts Options) (*Config, error) {
	cfg := &Config{}
	cfg.LoadDefaults()

	if err := parseJSON(cfg, opts.ConfigFile); err != nil {
		return nil, err
	}
	if err := loadDotenv(opts.EnvFile); err != nil {
		return nil, err
	}
	if err := parseEnv(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// DefaultConfigDir returns the config directory following the XDG layout.
func DefaultConfigDir() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, AppName)
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "."
	}
	return filepath.Join(home, ".config", AppName)
}
