package http

import (
	"github.com/dmitrijs2005/profilekeeper/internal/logging"
	"github.com/gin-gonic/gin"
)

const apiPrefix = "/api/v1/users"

// NewRouter wires the middleware chain and the routes.
func NewRouter(h *Handler, verifier AccessVerifier, logger logging.Logger) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), RequestLogger(logger), ErrorHandler(logger))

	r.GET("/healthz", h.Healthz)

	users := r.Group(apiPrefix)
	users.POST("/register", h.Register)
	users.POST("/login", h.Login)
	users.POST("/refresh-token", h.RefreshToken)

	secured := users.Group("", RequireAuth(verifier))
	secured.POST("/logout", h.Logout)
	secured.GET("/current-user", h.CurrentUser)

	return r
}
