package client

import (
	"context"

	"github.com/dmitrijs2005/profilekeeper/internal/client/models"
)

type Client interface {
	Register(ctx context.Context, req models.RegisterRequest) (*models.User, error)
	Login(ctx context.Context, username, email, password string) (*models.Session, error)
	Refresh(ctx context.Context, refreshToken string) (*models.Tokens, error)
	Logout(ctx context.Context, accessToken string) error
	CurrentUser(ctx context.Context, accessToken string) (*models.User, error)
	Ping(ctx context.Context) error
}
