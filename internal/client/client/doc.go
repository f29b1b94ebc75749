// Package client contains client-side building blocks for profilekeeper.
//
// # Overview
//
//  1. The Client interface: the profile API as seen by the CLI (Register,
//     Login, Refresh, Logout, CurrentUser, Ping).
//  2. HTTPClient, its implementation over the JSON/multipart HTTP API. It
//     unwraps the response envelope and maps failures to errors.
//  3. OpenDatabase and RunMigrations, which prepare the local SQLite session
//     store with embedded goose migrations.
//
// # Error Handling
//
// ErrUnauthorized is returned for 401 responses and ErrUnavailable when the
// server cannot be reached. Any other non-2xx response is an *APIError
// carrying the server's message.
package client
