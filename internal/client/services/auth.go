// Package services contains application services for the profilekeeper CLI.
// This file defines the authentication service: register, login, token
// rotation, logout and the current-user lookup, with the session kept in the
// local database.
package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/dmitrijs2005/profilekeeper/internal/client/client"
	"github.com/dmitrijs2005/profilekeeper/internal/client/models"
	"github.com/dmitrijs2005/profilekeeper/internal/client/repositories/session"
	"github.com/dmitrijs2005/profilekeeper/internal/dbx"
)

// ErrNotLoggedIn is returned when an operation needs a stored session and
// there is none.
var ErrNotLoggedIn = errors.New("not logged in")

// AuthService defines authentication operations for the CLI.
//
// All methods must honor context cancellation/timeouts.
type AuthService interface {
	Register(ctx context.Context, req models.RegisterRequest) (*models.User, error)
	Login(ctx context.Context, identifier, password string) (*models.User, error)
	Refresh(ctx context.Context) error
	Logout(ctx context.Context) error
	WhoAmI(ctx context.Context) (*models.User, error)
	CurrentUsername(ctx context.Context) (string, error)
	Ping(ctx context.Context) error
}

// authService is the concrete AuthService backed by a remote Client
// and the local session database.
type authService struct {
	client client.Client
	db     *sql.DB
}

// NewAuthService constructs an AuthService bound to the given API client and DB.
func NewAuthService(client client.Client, db *sql.DB) AuthService {
	return &authService{client: client, db: db}
}

func (a *authService) sessionRepo() session.Repository {
	return session.NewSQLiteRepository(a.db)
}

func (a *authService) Register(ctx context.Context, req models.RegisterRequest) (*models.User, error) {
	return a.client.Register(ctx, req)
}

// Login treats an identifier containing "@" as an email, anything else as a
// username. On success the username and both tokens are stored.
func (a *authService) Login(ctx context.Context, identifier, password string) (*models.User, error) {
	var username, email string
	if strings.Contains(identifier, "@") {
		email = identifier
	} else {
		username = identifier
	}

	s, err := a.client.Login(ctx, username, email, password)
	if err != nil {
		return nil, fmt.Errorf("login error: %w", err)
	}

	name := identifier
	if s.User != nil && s.User.Username != "" {
		name = s.User.Username
	}
	if err := a.saveSession(ctx, name, s.Tokens); err != nil {
		return nil, fmt.Errorf("session saving error: %w", err)
	}
	return s.User, nil
}

// saveSession writes the username and token pair in a single transaction.
func (a *authService) saveSession(ctx context.Context, username string, t models.Tokens) error {
	return dbx.WithTx(ctx, a.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		repo := session.NewSQLiteRepository(tx)
		if username != "" {
			if err := repo.Set(ctx, session.KeyUsername, username); err != nil {
				return err
			}
		}
		if err := repo.Set(ctx, session.KeyAccessToken, t.AccessToken); err != nil {
			return err
		}
		return repo.Set(ctx, session.KeyRefreshToken, t.RefreshToken)
	})
}

// Refresh exchanges the stored refresh token for a new pair and stores it.
// A rejected refresh token clears the local session.
func (a *authService) Refresh(ctx context.Context) error {
	rt, err := a.sessionRepo().Get(ctx, session.KeyRefreshToken)
	if err != nil {
		return err
	}
	if rt == "" {
		return ErrNotLoggedIn
	}

	t, err := a.client.Refresh(ctx, rt)
	if err != nil {
		if errors.Is(err, client.ErrUnauthorized) {
			_ = a.sessionRepo().Clear(ctx)
		}
		return fmt.Errorf("refresh error: %w", err)
	}

	return a.saveSession(ctx, "", *t)
}

// Logout revokes the session on the server and always clears it locally.
// An already invalid access token is not reported.
func (a *authService) Logout(ctx context.Context) error {
	repo := a.sessionRepo()

	at, err := repo.Get(ctx, session.KeyAccessToken)
	if err != nil {
		return err
	}
	if at == "" {
		return ErrNotLoggedIn
	}

	serverErr := a.client.Logout(ctx, at)
	if errors.Is(serverErr, client.ErrUnauthorized) {
		serverErr = nil
	}

	if err := repo.Clear(ctx); err != nil {
		return err
	}
	if serverErr != nil {
		return fmt.Errorf("logout error: %w", serverErr)
	}
	return nil
}

// WhoAmI fetches the current user, refreshing the tokens once if the access
// token was rejected.
func (a *authService) WhoAmI(ctx context.Context) (*models.User, error) {
	at, err := a.sessionRepo().Get(ctx, session.KeyAccessToken)
	if err != nil {
		return nil, err
	}
	if at == "" {
		return nil, ErrNotLoggedIn
	}

	u, err := a.client.CurrentUser(ctx, at)
	if !errors.Is(err, client.ErrUnauthorized) {
		return u, err
	}

	if err := a.Refresh(ctx); err != nil {
		return nil, err
	}
	at, err = a.sessionRepo().Get(ctx, session.KeyAccessToken)
	if err != nil {
		return nil, err
	}
	return a.client.CurrentUser(ctx, at)
}

func (a *authService) CurrentUsername(ctx context.Context) (string, error) {
	return a.sessionRepo().Get(ctx, session.KeyUsername)
}

// Ping proxies a liveness check to the underlying client.
func (a *authService) Ping(ctx context.Context) error {
	return a.client.Ping(ctx)
}
