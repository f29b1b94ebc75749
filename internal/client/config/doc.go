// Package config loads runtime configuration for the profilekeeper CLI.
//
// Sources & precedence
//
//  1. Built-in defaults (see (*Config).LoadDefaults).
//  2. Optional JSON file (see parseJson) selected via flags: -c or -config.
//  3. PROFILEKEEPER_CLIENT_* environment variables.
//  4. Command-line flags (see parseFlags), which override earlier values.
//
// Supported flags
//
//	-a string     base URL of the HTTP API
//	-db string    path of the local session database
//	-t duration   per-request timeout
//
// # JSON schema
//
//	{
//	  "server_url": "http://127.0.0.1:8000",
//	  "session_db": "session.db",
//	  "request_timeout": "10s"
//	}
package config
