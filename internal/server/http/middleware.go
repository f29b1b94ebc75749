package http

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/dmitrijs2005/profilekeeper/internal/common"
	"github.com/dmitrijs2005/profilekeeper/internal/logging"
	"github.com/dmitrijs2005/profilekeeper/internal/server/auth"
	"github.com/gin-gonic/gin"
)

const userIDKey = "userID"

// AccessVerifier is implemented by *auth.TokenService.
type AccessVerifier interface {
	VerifyAccessToken(token string) (*auth.Claims, error)
}

// ErrorHandler turns the last error attached with c.Error into the error
// envelope. Errors that are not *common.APIError are reported as a bare 500.
func ErrorHandler(logger logging.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) == 0 || c.Writer.Written() {
			return
		}

		err := c.Errors.Last().Err
		var apiErr *common.APIError
		if !errors.As(err, &apiErr) {
			apiErr = common.NewInternalError("Internal server error", err)
		}

		status := apiErr.StatusCode()
		if status >= http.StatusInternalServerError {
			logger.Error(c.Request.Context(), "request failed", "path", c.Request.URL.Path, "error", err)
		} else {
			logger.Debug(c.Request.Context(), "request rejected", "path", c.Request.URL.Path, "error", err)
		}

		details := apiErr.Errors
		if details == nil {
			details = []string{}
		}

		c.JSON(status, ErrorResponse{
			StatusCode: status,
			Message:    apiErr.Message,
			Success:    false,
			Errors:     details,
		})
	}
}

// RequestLogger logs one line per request.
func RequestLogger(logger logging.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		logger.Info(c.Request.Context(), "http request",
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", c.Writer.Status(),
			"duration", time.Since(start),
		)
	}
}

// RequireAuth verifies the access token from the accessToken cookie or the
// "Authorization: Bearer" header and stores the user id in the context.
func RequireAuth(verifier AccessVerifier) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := accessTokenFrom(c)
		if token == "" {
			_ = c.Error(common.NewAuthError("Unauthorized request", nil))
			c.Abort()
			return
		}

		claims, err := verifier.VerifyAccessToken(token)
		if err != nil {
			_ = c.Error(common.NewAuthError("Invalid access token", err))
			c.Abort()
			return
		}

		c.Set(userIDKey, claims.UserID)
		c.Next()
	}
}

func accessTokenFrom(c *gin.Context) string {
	if v, err := c.Cookie(common.AccessTokenCookieName); err == nil && v != "" {
		return v
	}
	h := c.GetHeader(common.AuthorizationHeaderName)
	if token, ok := strings.CutPrefix(h, "Bearer "); ok {
		return strings.TrimSpace(token)
	}
	return ""
}

func userIDFrom(c *gin.Context) string {
	return c.GetString(userIDKey)
}
