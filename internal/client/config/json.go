package config

import (
	"encoding/json"
	"fmt"
	"os"
	"time"
)

// Duration accepts either a duration string ("15s") or integer nanoseconds.
type Duration time.Duration

func (d *Duration) UnmarshalJSON(b []byte) error {
	var v any
	if err := json.Unmarshal(b, &v); err != nil {
		return err
	}
	switch value := v.(type) {
	case float64:
		*d = Duration(time.Duration(value))
		return nil
	case string:
		parsed, err := time.ParseDuration(value)
		if err != nil {
			return err
		}
		*d = Duration(parsed)
		return nil
	default:
		return fmt.Errorf("invalid duration %s", string(b))
	}
}

// JSONConfig is a DTO used exclusively for JSON unmarshalling. Pointer fields
// tell "absent" apart from "set to the zero value".
type JSONConfig struct {
	APIURL                *string   `json:"api_url"`
	StorePath             *string   `json:"store_path"`
	Ephemeral             *bool     `json:"ephemeral"`
	RequestTimeout        *Duration `json:"request_timeout"`
	LogLevel              *string   `json:"log_level"`
	LogFile               *string   `json:"log_file"`
	ClearOnProfileFailure *bool     `json:"clear_on_profile_failure"`
}

// parseJSON overlays cfg with the fields present in the JSON file at path.
// An empty path is a no-op.
func parseJSON(cfg *Config, path string) error {
	if path == "" {
		return nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config %s: %w", path, err)
	}

	var jc JSONConfig
	if err := json.Unmarshal(data, &jc); err != nil {
		return fmt.Errorf("parse config %s: %w", path, err)
	}

	if jc.APIURL != nil {
		cfg.APIURL = *jc.APIURL
	}
	if jc.StorePath != nil {
		cfg.StorePath = *jc.StorePath
	}
	if jc.Ephemeral != nil {
		cfg.Ephemeral = *jc.Ephemeral
	}
	if jc.RequestTimeout != nil {
		cfg.RequestTimeout = time.Duration(*jc.RequestTimeout)
	}
	if jc.LogLevel != nil {
		cfg.LogLevel = *jc.LogLevel
	}
	if jc.LogFile != nil {
		cfg.LogFile = *jc.LogFile
	}
	if jc.ClearOnProfileFailure != nil {
		cfg.ClearOnProfileFailure = *jc.ClearOnProfileFailure
	}
	return nil
}
