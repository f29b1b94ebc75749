// Package session stores the CLI's login state (username and tokens) in the
// local SQLite database.
package session

import "context"

const (
	KeyUsername     = "username"
	KeyAccessToken  = "accessToken"
	KeyRefreshToken = "refreshToken"
)

// Repository is a small key/value store. Get returns "" for a missing key.
type Repository interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, value string) error
	Delete(ctx context.Context, key string) error
	Clear(ctx context.Context) error
}
