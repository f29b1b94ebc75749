// Package auth issues and verifies the HS256 access and refresh tokens.
//
// Access and refresh tokens are signed with different secrets and carry a
// token_type claim, so one can never be accepted in place of the other.
package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/profilekeeper/internal/common"
	"github.com/dmitrijs2005/profilekeeper/internal/server/models"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const (
	TokenTypeAccess  = "access"
	TokenTypeRefresh = "refresh"
)

// Claims is the payload of both token kinds. Username and Email are only
// set on access tokens.
type Claims struct {
	jwt.RegisteredClaims
	UserID    string `json:"_id"`
	Username  string `json:"username,omitempty"`
	Email     string `json:"email,omitempty"`
	TokenType string `json:"token_type"`
}

// TokenConfig is read once at startup.
type TokenConfig struct {
	AccessSecret    string
	RefreshSecret   string
	AccessLifetime  time.Duration
	RefreshLifetime time.Duration
}

func (c TokenConfig) validate() error {
	switch {
	case c.AccessSecret == "":
		return errors.New("access token secret is required")
	case c.RefreshSecret == "":
		return errors.New("refresh token secret is required")
	case c.AccessSecret == c.RefreshSecret:
		return errors.New("access and refresh token secrets must differ")
	case c.AccessLifetime <= 0:
		return errors.New("access token lifetime must be positive")
	case c.RefreshLifetime <= 0:
		return errors.New("refresh token lifetime must be positive")
	}
	return nil
}

// TokenService signs and verifies HS256 access and refresh tokens.
type TokenService struct {
	accessSecret    []byte
	refreshSecret   []byte
	accessLifetime  time.Duration
	refreshLifetime time.Duration
	parser          *jwt.Parser
	now             func() time.Time
}

// NewTokenService validates cfg before building the service.
func NewTokenService(cfg TokenConfig) (*TokenService, error) {
	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("token config: %w", err)
	}
	return &TokenService{
		accessSecret:    []byte(cfg.AccessSecret),
		refreshSecret:   []byte(cfg.RefreshSecret),
		accessLifetime:  cfg.AccessLifetime,
		refreshLifetime: cfg.RefreshLifetime,
		parser: jwt.NewParser(
			jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
			jwt.WithExpirationRequired(),
		),
		now: time.Now,
	}, nil
}

// AccessLifetime is used by the transport for the cookie Max-Age.
func (s *TokenService) AccessLifetime() time.Duration { return s.accessLifetime }

func (s *TokenService) RefreshLifetime() time.Duration { return s.refreshLifetime }

// IssueAccessToken carries the identity claims; refresh tokens carry only the id.
func (s *TokenService) IssueAccessToken(user *models.User) (string, error) {
	return s.sign(Claims{
		UserID:    user.ID,
		Username:  user.Username,
		Email:     user.Email,
		TokenType: TokenTypeAccess,
	}, s.accessSecret, s.accessLifetime)
}

func (s *TokenService) IssueRefreshToken(user *models.User) (string, error) {
	return s.sign(Claims{
		UserID:    user.ID,
		TokenType: TokenTypeRefresh,
	}, s.refreshSecret, s.refreshLifetime)
}

// VerifyAccessToken rejects refresh tokens and anything not signed with the
// access secret.
func (s *TokenService) VerifyAccessToken(token string) (*Claims, error) {
	return s.verify(token, s.accessSecret, TokenTypeAccess)
}

// VerifyRefreshToken errors match common.ErrInvalidToken, and also
// common.ErrTokenExpired when the token has expired.
func (s *TokenService) VerifyRefreshToken(token string) (*Claims, error) {
	return s.verify(token, s.refreshSecret, TokenTypeRefresh)
}

func (s *TokenService) sign(claims Claims, secret []byte, lifetime time.Duration) (string, error) {
	now := s.now()
	claims.RegisteredClaims = jwt.RegisteredClaims{
		ExpiresAt: jwt.NewNumericDate(now.Add(lifetime)),
		IssuedAt:  jwt.NewNumericDate(now),
		ID:        uuid.NewString(),
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(secret)
	if err != nil {
		return "", fmt.Errorf("sign %s token: %w", claims.TokenType, err)
	}
	return signed, nil
}

func (s *TokenService) verify(token string, secret []byte, tokenType string) (*Claims, error) {
	claims := &Claims{}

	parsed, err := s.parser.ParseWithClaims(token, claims, func(*jwt.Token) (any, error) {
		return secret, nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, fmt.Errorf("%w: %w", common.ErrInvalidToken, common.ErrTokenExpired)
		}
		return nil, fmt.Errorf("%w: %v", common.ErrInvalidToken, err)
	}

	if !parsed.Valid || claims.TokenType != tokenType || claims.UserID == "" {
		return nil, common.ErrInvalidToken
	}

	return claims, nil
}
