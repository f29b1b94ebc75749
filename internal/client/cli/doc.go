// Package cli provides the interactive profilekeeper command-line client.
//
// It wires configuration, the local session database, the HTTP API client and
// an interactive REPL. Commands: register, login, refresh, whoami, logout,
// help and exit.
//
// The REPL is started via App.Run(ctx), which blocks until the user exits.
package cli
