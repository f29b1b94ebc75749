package users

import (
	"context"
	"fmt"

	"github.com/dmitrijs2005/profilekeeper/internal/cryptox"
	"github.com/dmitrijs2005/profilekeeper/internal/server/models"
)

// PasswordHashingRepository hashes User.Password with bcrypt before it
// reaches the wrapped store: always on Create, and on Save only when the
// value is not already a hash.
type PasswordHashingRepository struct {
	Repository
	hash func(string) (string, error)
}

func NewPasswordHashingRepository(next Repository) *PasswordHashingRepository {
	return &PasswordHashingRepository{Repository: next, hash: cryptox.HashPassword}
}

func (r *PasswordHashingRepository) Create(ctx context.Context, user *models.User) (*models.User, error) {
	hashed, err := r.hash(user.Password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	cp := *user
	cp.Password = hashed
	return r.Repository.Create(ctx, &cp)
}

func (r *PasswordHashingRepository) Save(ctx context.Context, user *models.User) error {
	if !cryptox.IsHashed(user.Password) {
		hashed, err := r.hash(user.Password)
		if err != nil {
			return fmt.Errorf("hash password: %w", err)
		}
		user.Password = hashed
	}
	return r.Repository.Save(ctx, user)
}
