// Package services contains the server-side business logic. UserService
// drives the credential/session lifecycle: registration, login, logout and
// refresh-token rotation.
//
// Session state is implicit in the refresh token stored on the user record:
// none means logged out, a value means the holder of exactly that token may
// rotate it once.
package services

import (
	"context"
	"errors"
	"strings"

	"github.com/dmitrijs2005/profilekeeper/internal/common"
	"github.com/dmitrijs2005/profilekeeper/internal/cryptox"
	"github.com/dmitrijs2005/profilekeeper/internal/filex"
	"github.com/dmitrijs2005/profilekeeper/internal/logging"
	"github.com/dmitrijs2005/profilekeeper/internal/server/auth"
	"github.com/dmitrijs2005/profilekeeper/internal/server/media"
	"github.com/dmitrijs2005/profilekeeper/internal/server/models"
	"github.com/dmitrijs2005/profilekeeper/internal/server/repositories/users"
)

const (
	msgAllFieldsRequired    = "All fields are required"
	msgAvatarRequired       = "Avatar file is required"
	msgPasswordTooLong      = "Password must be at most 72 bytes"
	msgUserExists           = "User with email or username already exists"
	msgRegisterFailed       = "Something went wrong while registering the user"
	msgLoginIdentRequired   = "Username or Email is required"
	msgUserNotFound         = "User does not exist"
	msgInvalidCredentials   = "Invalid user credentials"
	msgTokenGenFailed       = "Something went wrong while generating refresh and access tokens"
	msgUnauthorized         = "Unauthorized request"
	msgInvalidRefreshToken  = "Invalid refresh token"
	msgRefreshTokenReplayed = "Refresh token is expired or used"
	msgInternal             = "Internal server error"
)

// TokenPair is returned by login and refresh. Only RefreshToken is persisted.
type TokenPair struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
}

// TokenIssuer is implemented by *auth.TokenService.
type TokenIssuer interface {
	IssueAccessToken(user *models.User) (string, error)
	IssueRefreshToken(user *models.User) (string, error)
	VerifyRefreshToken(token string) (*auth.Claims, error)
}

// RegisterInput carries the raw registration form. Text fields are trimmed
// and email/username lowercased by Register.
type RegisterInput struct {
	FullName string
	Email    string
	Username string
	Password string
	// AvatarPath and CoverImagePath point at buffered temp files; "" means
	// no file was sent.
	AvatarPath     string
	CoverImagePath string
}

// LoginInput identifies the user by Username or Email. At least one is
// required.
type LoginInput struct {
	Username string
	Email    string
	Password string
}

// LoginResult is the public user plus a fresh token pair.
type LoginResult struct {
	User         *models.User `json:"user"`
	AccessToken  string       `json:"accessToken"`
	RefreshToken string       `json:"refreshToken"`
}

// UserService implements the account and session operations.
type UserService struct {
	users    users.Repository
	uploader media.Uploader
	tokens   TokenIssuer
	logger   logging.Logger
}

// NewUserService constructs a UserService backed by repo.
func NewUserService(repo users.Repository, uploader media.Uploader, tokens TokenIssuer, logger logging.Logger) *UserService {
	return &UserService{
		users:    repo,
		uploader: uploader,
		tokens:   tokens,
		logger:   logger.With("module", "users"),
	}
}

// Register creates an account. No user is stored unless the avatar upload
// succeeded; a failed cover upload is tolerated. Temp files are removed on
// every path, by the uploader once handed over and here otherwise.
func (s *UserService) Register(ctx context.Context, in RegisterInput) (*models.User, error) {
	pending := []string{in.AvatarPath, in.CoverImagePath}
	defer func() {
		for _, p := range pending {
			if err := filex.RemoveIfExists(p); err != nil {
				s.logger.Warn(ctx, "temp file cleanup failed", "path", p, "error", err)
			}
		}
	}()

	fullName := strings.TrimSpace(in.FullName)
	email := strings.ToLower(strings.TrimSpace(in.Email))
	username := strings.ToLower(strings.TrimSpace(in.Username))

	if fullName == "" || email == "" || username == "" || strings.TrimSpace(in.Password) == "" {
		return nil, common.NewValidationError(msgAllFieldsRequired)
	}
	if len(in.Password) > cryptox.MaxPasswordBytes {
		return nil, common.NewValidationError(msgPasswordTooLong)
	}
	if in.AvatarPath == "" {
		return nil, common.NewValidationError(msgAvatarRequired)
	}

	_, err := s.users.FindOne(ctx, username, email)
	switch {
	case err == nil:
		return nil, common.NewConflictError(msgUserExists)
	case !errors.Is(err, common.ErrorNotFound):
		return nil, common.NewInternalError(msgRegisterFailed, err)
	}

	pending[0] = ""
	avatar := s.uploader.Upload(ctx, in.AvatarPath)
	if avatar == nil {
		return nil, common.NewValidationError(msgAvatarRequired)
	}

	var coverURL string
	if in.CoverImagePath != "" {
		pending[1] = ""
		if cover := s.uploader.Upload(ctx, in.CoverImagePath); cover != nil {
			coverURL = cover.URL
		} else {
			s.logger.Warn(ctx, "cover image upload failed, continuing without it", "username", username)
		}
	}

	created, err := s.users.Create(ctx, &models.User{
		FullName:   fullName,
		Email:      email,
		Username:   username,
		Password:   in.Password,
		Avatar:     avatar.URL,
		CoverImage: coverURL,
	})
	if err != nil {
		if errors.Is(err, common.ErrorAlreadyExists) {
			return nil, common.NewConflictError(msgUserExists)
		}
		return nil, common.NewInternalError(msgRegisterFailed, err)
	}

	user, err := s.users.FindPublicByID(ctx, created.ID)
	if err != nil {
		return nil, common.NewInternalError(msgRegisterFailed, err)
	}

	s.logger.Info(ctx, "user registered", "user_id", user.ID)
	return user.Sanitized(), nil
}

// Login checks the credentials and starts a new session, replacing any
// refresh token issued before.
func (s *UserService) Login(ctx context.Context, in LoginInput) (*LoginResult, error) {
	username := strings.ToLower(strings.TrimSpace(in.Username))
	email := strings.ToLower(strings.TrimSpace(in.Email))

	if username == "" && email == "" {
		return nil, common.NewValidationError(msgLoginIdentRequired)
	}

	user, err := s.users.FindOne(ctx, username, email)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, common.NewNotFoundError(msgUserNotFound)
		}
		return nil, common.NewInternalError(msgInternal, err)
	}

	// Nothing longer than MaxPasswordBytes can have been registered.
	if len(in.Password) > cryptox.MaxPasswordBytes {
		return nil, common.NewAuthError(msgInvalidCredentials, nil)
	}

	ok, err := cryptox.ComparePassword(user.Password, in.Password)
	if err != nil {
		s.logger.Error(ctx, "stored password hash is unusable", "user_id", user.ID, "error", err)
		return nil, common.NewInternalError(msgInternal, err)
	}
	if !ok {
		return nil, common.NewAuthError(msgInvalidCredentials, nil)
	}

	pair, err := s.generateTokenPair(ctx, user)
	if err != nil {
		return nil, err
	}

	public, err := s.users.FindPublicByID(ctx, user.ID)
	if err != nil {
		return nil, common.NewInternalError(msgInternal, err)
	}

	s.logger.Info(ctx, "user logged in", "user_id", user.ID)
	return &LoginResult{
		User:         public.Sanitized(),
		AccessToken:  pair.AccessToken,
		RefreshToken: pair.RefreshToken,
	}, nil
}

// Logout clears the stored refresh token, so no outstanding refresh token
// can be rotated any more. Access tokens stay valid until they expire.
func (s *UserService) Logout(ctx context.Context, userID string) error {
	_, err := s.users.UpdateRefreshToken(ctx, userID, "")
	if err != nil && !errors.Is(err, common.ErrorNotFound) {
		return common.NewInternalError(msgInternal, err)
	}
	s.logger.Info(ctx, "user logged out", "user_id", userID)
	return nil
}

// RefreshAccessToken rotates the session: the incoming token must verify and
// equal the stored one; it is then replaced and the new pair returned.
// Replaying an already rotated token fails.
func (s *UserService) RefreshAccessToken(ctx context.Context, incoming string) (*TokenPair, error) {
	if incoming == "" {
		return nil, common.NewAuthError(msgUnauthorized, nil)
	}

	claims, err := s.tokens.VerifyRefreshToken(incoming)
	if err != nil {
		return nil, common.NewAuthError(msgInvalidRefreshToken, err)
	}

	user, err := s.users.FindByID(ctx, claims.UserID)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, common.NewAuthError(msgInvalidRefreshToken, err)
		}
		return nil, common.NewInternalError(msgInternal, err)
	}

	if !cryptox.ConstantTimeEqual(incoming, user.RefreshToken) {
		s.logger.Warn(ctx, "refresh token mismatch", "user_id", user.ID)
		return nil, common.NewAuthError(msgRefreshTokenReplayed, nil)
	}

	return s.generateTokenPair(ctx, user)
}

// CurrentUser returns the public view of an authenticated user.
func (s *UserService) CurrentUser(ctx context.Context, userID string) (*models.User, error) {
	user, err := s.users.FindPublicByID(ctx, userID)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, common.NewNotFoundError(msgUserNotFound)
		}
		return nil, common.NewInternalError(msgInternal, err)
	}
	return user.Sanitized(), nil
}

// generateTokenPair issues both tokens and persists the refresh token,
// replacing the previous one.
func (s *UserService) generateTokenPair(ctx context.Context, user *models.User) (*TokenPair, error) {
	access, err := s.tokens.IssueAccessToken(user)
	if err != nil {
		return nil, common.NewInternalError(msgTokenGenFailed, err)
	}
	refresh, err := s.tokens.IssueRefreshToken(user)
	if err != nil {
		return nil, common.NewInternalError(msgTokenGenFailed, err)
	}
	if _, err := s.users.UpdateRefreshToken(ctx, user.ID, refresh); err != nil {
		return nil, common.NewInternalError(msgTokenGenFailed, err)
	}
	return &TokenPair{AccessToken: access, RefreshToken: refresh}, nil
}
