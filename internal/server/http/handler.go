// Package http exposes the user/session API over HTTP with gin.
package http

import (
	"context"
	"errors"
	"fmt"
	"mime/multipart"
	"net/http"

	"github.com/dmitrijs2005/profilekeeper/internal/common"
	"github.com/dmitrijs2005/profilekeeper/internal/filex"
	"github.com/dmitrijs2005/profilekeeper/internal/logging"
	"github.com/dmitrijs2005/profilekeeper/internal/server/models"
	"github.com/dmitrijs2005/profilekeeper/internal/server/services"
	"github.com/gin-gonic/gin"
)

// UserService is implemented by *services.UserService.
type UserService interface {
	Register(ctx context.Context, in services.RegisterInput) (*models.User, error)
	Login(ctx context.Context, in services.LoginInput) (*services.LoginResult, error)
	Logout(ctx context.Context, userID string) error
	RefreshAccessToken(ctx context.Context, token string) (*services.TokenPair, error)
	CurrentUser(ctx context.Context, userID string) (*models.User, error)
}

// Handler serves the /api/v1/users routes.
type Handler struct {
	users         UserService
	cookies       *CookieManager
	uploadDir     string
	maxUploadSize int64
	logger        logging.Logger
}

// NewHandler buffers uploaded files under uploadDir. Bodies larger than
// maxUploadSize are rejected before parsing.
func NewHandler(users UserService, cookies *CookieManager, uploadDir string, maxUploadSize int64, logger logging.Logger) *Handler {
	return &Handler{
		users:         users,
		cookies:       cookies,
		uploadDir:     uploadDir,
		maxUploadSize: maxUploadSize,
		logger:        logger.With("module", "http"),
	}
}

type loginRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type refreshRequest struct {
	RefreshToken string `json:"refreshToken"`
}

// Register accepts a multipart form with an optional avatar and coverImage.
func (h *Handler) Register(c *gin.Context) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.maxUploadSize)

	form, err := c.MultipartForm()
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			_ = c.Error(common.NewValidationError("Request body too large"))
			return
		}
		h.logger.Debug(c.Request.Context(), "multipart parse failed", "error", err)
		_ = c.Error(common.NewValidationError("Invalid multipart form"))
		return
	}
	defer func() { _ = form.RemoveAll() }()

	avatarPath, err := h.bufferFile(c, form, "avatar")
	if err != nil {
		_ = c.Error(err)
		return
	}
	coverPath, err := h.bufferFile(c, form, "coverImage")
	if err != nil {
		_ = filex.RemoveIfExists(avatarPath)
		_ = c.Error(err)
		return
	}

	user, err := h.users.Register(c.Request.Context(), services.RegisterInput{
		FullName:       formValue(form, "fullName"),
		Email:          formValue(form, "email"),
		Username:       formValue(form, "username"),
		Password:       formValue(form, "password"),
		AvatarPath:     avatarPath,
		CoverImagePath: coverPath,
	})
	if err != nil {
		_ = c.Error(err)
		return
	}

	c.JSON(http.StatusCreated, NewApiResponse(http.StatusOK, user, "User registered Successfully"))
}

func (h *Handler) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Debug(c.Request.Context(), "login body rejected", "error", err)
		_ = c.Error(common.NewValidationError("Invalid request body"))
		return
	}

	res, err := h.users.Login(c.Request.Context(), services.LoginInput{
		Username: req.Username,
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		_ = c.Error(err)
		return
	}

	h.cookies.SetTokens(c, res.AccessToken, res.RefreshToken)
	c.JSON(http.StatusOK, NewApiResponse(http.StatusOK, res, "User logged in Successfully"))
}

func (h *Handler) Logout(c *gin.Context) {
	if err := h.users.Logout(c.Request.Context(), userIDFrom(c)); err != nil {
		_ = c.Error(err)
		return
	}

	h.cookies.Clear(c)
	c.JSON(http.StatusOK, NewApiResponse(http.StatusOK, gin.H{}, "User logged Out"))
}

// RefreshToken reads the refresh token from the cookie, falling back to the
// JSON body.
func (h *Handler) RefreshToken(c *gin.Context) {
	token, _ := c.Cookie(common.RefreshTokenCookieName)
	if token == "" {
		var req refreshRequest
		if c.Request.ContentLength != 0 {
			_ = c.ShouldBindJSON(&req)
		}
		token = req.RefreshToken
	}

	pair, err := h.users.RefreshAccessToken(c.Request.Context(), token)
	if err != nil {
		_ = c.Error(err)
		return
	}

	h.cookies.SetTokens(c, pair.AccessToken, pair.RefreshToken)
	c.JSON(http.StatusOK, NewApiResponse(http.StatusOK, pair, "Access token refreshed"))
}

func (h *Handler) CurrentUser(c *gin.Context) {
	user, err := h.users.CurrentUser(c.Request.Context(), userIDFrom(c))
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, NewApiResponse(http.StatusOK, user, "Current user fetched successfully"))
}

func (h *Handler) Healthz(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// bufferFile copies the single file sent under field into the upload dir and
// returns its path, or "" when the field is absent.
func (h *Handler) bufferFile(c *gin.Context, form *multipart.Form, field string) (string, error) {
	files := form.File[field]
	switch len(files) {
	case 0:
		return "", nil
	case 1:
	default:
		return "", common.NewValidationError("Unexpected field", fmt.Sprintf("%s: at most one file is accepted", field))
	}

	fh := files[0]
	dst := filex.TempName(h.uploadDir, fh.Filename)
	if err := c.SaveUploadedFile(fh, dst); err != nil {
		return "", common.NewInternalError("Could not store the uploaded file", err)
	}
	return dst, nil
}

func formValue(form *multipart.Form, key string) string {
	if v := form.Value[key]; len(v) > 0 {
		return v[0]
	}
	return ""
}
