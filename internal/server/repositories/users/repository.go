// Package users is the credential store: user records keyed by id, unique by
// username and by email.
package users

import (
	"context"

	"github.com/dmitrijs2005/profilekeeper/internal/server/models"
)

// Repository returns common.ErrorNotFound for absent records and
// common.ErrorAlreadyExists when a unique username or email is violated.
type Repository interface {
	FindByID(ctx context.Context, id string) (*models.User, error)
	// FindPublicByID omits the password hash and refresh token.
	FindPublicByID(ctx context.Context, id string) (*models.User, error)
	// FindOne matches username OR email; empty criteria are ignored.
	FindOne(ctx context.Context, username, email string) (*models.User, error)
	// Create assigns ID and timestamps.
	Create(ctx context.Context, user *models.User) (*models.User, error)
	Save(ctx context.Context, user *models.User) error
	// UpdateRefreshToken stores token ("" clears it) and returns the updated user.
	UpdateRefreshToken(ctx context.Context, id, token string) (*models.User, error)
}
