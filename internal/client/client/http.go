package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/dmitrijs2005/profilekeeper/internal/client/models"
	"github.com/dmitrijs2005/profilekeeper/internal/common"
)

const apiPrefix = "/api/v1/users"

// envelope matches both the success and the error response of the server.
type envelope struct {
	StatusCode int             `json:"statusCode"`
	Data       json.RawMessage `json:"data"`
	Message    string          `json:"message"`
	Success    bool            `json:"success"`
	Errors     []string        `json:"errors"`
}

// HTTPClient talks to the server REST API and implements Client.
type HTTPClient struct {
	baseURL string
	http    *http.Client
}

func NewHTTPClient(baseURL string, timeout time.Duration) *HTTPClient {
	return &HTTPClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: timeout},
	}
}

func (c *HTTPClient) Register(ctx context.Context, r models.RegisterRequest) (*models.User, error) {
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)

	fields := [][2]string{
		{"fullName", r.FullName},
		{"email", r.Email},
		{"username", r.Username},
		{"password", r.Password},
	}
	for _, f := range fields {
		if err := mw.WriteField(f[0], f[1]); err != nil {
			return nil, err
		}
	}
	if err := attachFile(mw, "avatar", r.AvatarPath); err != nil {
		return nil, err
	}
	if err := attachFile(mw, "coverImage", r.CoverImagePath); err != nil {
		return nil, err
	}
	if err := mw.Close(); err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+apiPrefix+"/register", &body)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())

	var user models.User
	if err := c.do(req, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

// attachFile adds the file at path under field; an empty path is skipped.
func attachFile(mw *multipart.Writer, field, path string) error {
	if path == "" {
		return nil
	}
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("open %s: %w", field, err)
	}
	defer f.Close()

	w, err := mw.CreateFormFile(field, filepath.Base(path))
	if err != nil {
		return err
	}
	_, err = io.Copy(w, f)
	return err
}

func (c *HTTPClient) Login(ctx context.Context, username, email, password string) (*models.Session, error) {
	payload := map[string]string{"password": password}
	if username != "" {
		payload["username"] = username
	}
	if email != "" {
		payload["email"] = email
	}

	req, err := c.jsonRequest(ctx, http.MethodPost, "/login", payload)
	if err != nil {
		return nil, err
	}

	var s models.Session
	if err := c.do(req, &s); err != nil {
		return nil, err
	}
	return &s, nil
}

func (c *HTTPClient) Refresh(ctx context.Context, refreshToken string) (*models.Tokens, error) {
	req, err := c.jsonRequest(ctx, http.MethodPost, "/refresh-token", map[string]string{"refreshToken": refreshToken})
	if err != nil {
		return nil, err
	}

	var t models.Tokens
	if err := c.do(req, &t); err != nil {
		return nil, err
	}
	return &t, nil
}

func (c *HTTPClient) Logout(ctx context.Context, accessToken string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+apiPrefix+"/logout", nil)
	if err != nil {
		return err
	}
	setBearer(req, accessToken)
	return c.do(req, nil)
}

func (c *HTTPClient) CurrentUser(ctx context.Context, accessToken string) (*models.User, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+apiPrefix+"/current-user", nil)
	if err != nil {
		return nil, err
	}
	setBearer(req, accessToken)

	var user models.User
	if err := c.do(req, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

func (c *HTTPClient) Ping(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/healthz", nil)
	if err != nil {
		return err
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return ErrUnavailable
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)

	if resp.StatusCode != http.StatusOK {
		return ErrUnavailable
	}
	return nil
}

func (c *HTTPClient) jsonRequest(ctx context.Context, method, path string, payload any) (*http.Request, error) {
	b, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+apiPrefix+path, bytes.NewReader(b))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	return req, nil
}

func setBearer(req *http.Request, token string) {
	req.Header.Set(common.AuthorizationHeaderName, "Bearer "+token)
}

// do sends req and decodes the envelope's data into out (skipped when nil).
func (c *HTTPClient) do(req *http.Request, out any) error {
	resp, err := c.http.Do(req)
	if err != nil {
		return mapTransportError(err)
	}
	defer resp.Body.Close()

	var env envelope
	decodeErr := json.NewDecoder(resp.Body).Decode(&env)

	switch {
	case resp.StatusCode == http.StatusUnauthorized:
		return ErrUnauthorized
	case resp.StatusCode >= 300:
		if decodeErr != nil {
			return &APIError{StatusCode: resp.StatusCode, Message: http.StatusText(resp.StatusCode)}
		}
		return &APIError{StatusCode: resp.StatusCode, Message: env.Message, Errors: env.Errors}
	}

	if decodeErr != nil {
		return fmt.Errorf("decode response: %w", decodeErr)
	}
	if out == nil || len(env.Data) == 0 {
		return nil
	}
	if err := json.Unmarshal(env.Data, out); err != nil {
		return fmt.Errorf("decode response data: %w", err)
	}
	return nil
}

// mapTransportError reports everything except caller cancellation as
// ErrUnavailable.
func mapTransportError(err error) error {
	if errors.Is(err, context.Canceled) {
		return err
	}
	return fmt.Errorf("%w: %v", ErrUnavailable, err)
}
