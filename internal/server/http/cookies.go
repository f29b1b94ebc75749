package http

import (
	"net/http"
	"time"

	"github.com/dmitrijs2005/profilekeeper/internal/common"
	"github.com/gin-gonic/gin"
)

// CookieConfig controls the auth cookies. Secure should only be disabled
// for local development over plain HTTP.
type CookieConfig struct {
	Secure          bool
	SameSite        http.SameSite
	Domain          string
	AccessLifetime  time.Duration
	RefreshLifetime time.Duration
}

// CookieManager sets and clears the accessToken / refreshToken cookies.
// Both are HttpOnly.
type CookieManager struct {
	cfg CookieConfig
}

func NewCookieManager(cfg CookieConfig) *CookieManager {
	return &CookieManager{cfg: cfg}
}

func (m *CookieManager) set(c *gin.Context, name, value string, maxAge int) {
	c.SetSameSite(m.cfg.SameSite)
	c.SetCookie(name, value, maxAge, "/", m.cfg.Domain, m.cfg.Secure, true)
}

// SetTokens writes both cookies with Max-Age equal to the token lifetimes.
func (m *CookieManager) SetTokens(c *gin.Context, accessToken, refreshToken string) {
	m.set(c, common.AccessTokenCookieName, accessToken, int(m.cfg.AccessLifetime.Seconds()))
	m.set(c, common.RefreshTokenCookieName, refreshToken, int(m.cfg.RefreshLifetime.Seconds()))
}

// Clear expires both cookies.
func (m *CookieManager) Clear(c *gin.Context) {
	m.set(c, common.AccessTokenCookieName, "", -1)
	m.set(c, common.RefreshTokenCookieName, "", -1)
}
