// Package repomanager opens the configured storage backend and vends the
// repositories built on it.
package repomanager

import (
	"context"

	"github.com/dmitrijs2005/profilekeeper/internal/server/repositories/users"
)

type RepositoryManager interface {
	// Users returns the credential store with password hashing applied.
	Users() users.Repository
	// RunMigrations brings the schema (or indexes) up to date.
	RunMigrations(ctx context.Context) error
	Close(ctx context.Context) error
}
