package services

import (
	"context"
	"os"
	"path/filepath"
	"strconv"
	"sync"
	"testing"
	"time"

	"github.com/dmitrijs2005/profilekeeper/internal/common"
	"github.com/dmitrijs2005/profilekeeper/internal/cryptox"
	"github.com/dmitrijs2005/profilekeeper/internal/filex"
	"github.com/dmitrijs2005/profilekeeper/internal/logging"
	"github.com/dmitrijs2005/profilekeeper/internal/server/auth"
	"github.com/dmitrijs2005/profilekeeper/internal/server/media"
	"github.com/dmitrijs2005/profilekeeper/internal/server/models"
)

// memUsers is an in-memory users.Repository that hashes on Create like the
// production decorator.
type memUsers struct {
	mu      sync.Mutex
	byID    map[string]*models.User
	seq     int
	creates int

	findOneErr error
	createErr  error
	publicErr  error
	updateErr  error
}

func newMemUsers() *memUsers {
	return &memUsers{byID: map[string]*models.User{}}
}

func (m *memUsers) FindByID(_ context.Context, id string) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.byID[id]
	if !ok {
		return nil, common.ErrorNotFound
	}
	c := *u
	return &c, nil
}

func (m *memUsers) FindPublicByID(ctx context.Context, id string) (*models.User, error) {
	if m.publicErr != nil {
		return nil, m.publicErr
	}
	u, err := m.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return u.Sanitized(), nil
}

func (m *memUsers) FindOne(_ context.Context, username, email string) (*models.User, error) {
	if m.findOneErr != nil {
		return nil, m.findOneErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.byID {
		if (username != "" && u.Username == username) || (email != "" && u.Email == email) {
			c := *u
			return &c, nil
		}
	}
	return nil, common.ErrorNotFound
}

func (m *memUsers) Create(_ context.Context, u *models.User) (*models.User, error) {
	if m.createErr != nil {
		return nil, m.createErr
	}
	hash, err := cryptox.HashPassword(u.Password)
	if err != nil {
		return nil, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.seq++
	m.creates++
	c := *u
	c.ID = "u-" + strconv.Itoa(m.seq)
	c.Password = hash
	c.CreatedAt = time.Now()
	c.UpdatedAt = c.CreatedAt
	m.byID[c.ID] = &c
	out := c
	return &out, nil
}

func (m *memUsers) Save(_ context.Context, u *models.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.byID[u.ID]; !ok {
		return common.ErrorNotFound
	}
	c := *u
	m.byID[u.ID] = &c
	return nil
}

func (m *memUsers) UpdateRefreshToken(_ context.Context, id, token string) (*models.User, error) {
	if m.updateErr != nil {
		return nil, m.updateErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.byID[id]
	if !ok {
		return nil, common.ErrorNotFound
	}
	u.RefreshToken = token
	c := *u
	return &c, nil
}

func (m *memUsers) stored(id string) *models.User {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.byID[id]
}

// fakeUploader fails for paths listed in fail and always removes the file.
type fakeUploader struct {
	mu    sync.Mutex
	calls []string
	fail  map[string]bool
}

func (f *fakeUploader) Upload(_ context.Context, localPath string) *media.UploadResult {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, localPath)
	_ = filex.RemoveIfExists(localPath)
	if localPath == "" || f.fail[localPath] {
		return nil
	}
	name := filepath.Base(localPath)
	return &media.UploadResult{URL: "http://cdn.local/media/" + name, Key: name}
}

func newTokenService(t *testing.T) *auth.TokenService {
	t.Helper()
	ts, err := auth.NewTokenService(auth.TokenConfig{
		AccessSecret:    "access-secret",
		RefreshSecret:   "refresh-secret",
		AccessLifetime:  time.Minute,
		RefreshLifetime: time.Hour,
	})
	if err != nil {
		t.Fatalf("NewTokenService: %v", err)
	}
	return ts
}

type fixture struct {
	svc      *UserService
	repo     *memUsers
	uploader *fakeUploader
	tokens   *auth.TokenService
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	repo := newMemUsers()
	up := &fakeUploader{fail: map[string]bool{}}
	ts := newTokenService(t)
	return &fixture{
		svc:      NewUserService(repo, up, ts, logging.Discard()),
		repo:     repo,
		uploader: up,
		tokens:   ts,
	}
}

func tempUpload(t *testing.T, name string) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(p, []byte("img"), 0o600); err != nil {
		t.Fatalf("write temp upload: %v", err)
	}
	return p
}

func fileGone(t *testing.T, p string) bool {
	t.Helper()
	_, err := os.Stat(p)
	return os.IsNotExist(err)
}
