// Package config loads runtime configuration for the loginflow CLI.
//
// Sources & precedence
//
//  1. Built-in defaults (see (*Config).LoadDefaults).
//  2. Optional JSON file (see parseJSON), selected with --config.
//  3. Optional dotenv file (default ".env"), loaded into the process
//     environment without overriding variables that are already set.
//  4. Environment variables prefixed with LOGINFLOW_ (see parseEnv).
//  5. Command-line flags, applied by the cli package on top of the result.
//
// # JSON schema
//
// Durations can be strings like "15s" or integer nanoseconds:
//
//	{
//	  "api_url": "https://api.example.com",
//	  "store_path": "/home/me/.config/loginflow/session.db",
//	  "request_timeout": "15s",
//	  "log_level": "debug",
//	  "log_file": "/tmp/loginflow.log",
//	  "clear_on_profile_failure": false
//	}
//
// # Environment
//
//	LOGINFLOW_API_URL, LOGINFLOW_STORE, LOGINFLOW_EPHEMERAL, LOGINFLOW_TIMEOUT,
//	LOGINFLOW_LOG_LEVEL, LOGINFLOW_LOG_FILE, LOGINFLOW_CLEAR_ON_PROFILE_FAILURE
package config
