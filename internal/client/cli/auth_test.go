package cli

import (
	"bufio"
	"context"
	"errors"
	"io"
	"testing"

	"github.com/dmitrijs2005/profilekeeper/internal/client/client"
	"github.com/dmitrijs2005/profilekeeper/internal/client/models"
)

func stubInputs(t *testing.T, answers []string, password []byte) {
	t.Helper()
	origST, origGP := getSimpleText, getPassword
	i := 0
	getSimpleText = func(_ *bufio.Reader, _ string, _ io.Writer) (string, error) {
		if i >= len(answers) {
			return "", io.EOF
		}
		i++
		return answers[i-1], nil
	}
	getPassword = func(_ io.Writer) ([]byte, error) { return password, nil }
	t.Cleanup(func() {
		getSimpleText = origST
		getPassword = origGP
	})
}

type fakeAuth struct {
	regReq models.RegisterRequest
	regErr error

	loginID   string
	loginPass string
	loginErr  error

	refreshErr error
	logoutErr  error
	who        *models.User
	whoErr     error
	username   string
}

func (f *fakeAuth) Register(_ context.Context, req models.RegisterRequest) (*models.User, error) {
	f.regReq = req
	if f.regErr != nil {
		return nil, f.regErr
	}
	return &models.User{ID: "u-1", Username: req.Username}, nil
}
func (f *fakeAuth) Login(_ context.Context, id, pw string) (*models.User, error) {
	f.loginID, f.loginPass = id, pw
	if f.loginErr != nil {
		return nil, f.loginErr
	}
	f.username = id
	return &models.User{Username: id}, nil
}
func (f *fakeAuth) Refresh(context.Context) error { return f.refreshErr }
func (f *fakeAuth) Logout(context.Context) error {
	f.username = ""
	return f.logoutErr
}
func (f *fakeAuth) WhoAmI(context.Context) (*models.User, error) { return f.who, f.whoErr }
func (f *fakeAuth) CurrentUsername(context.Context) (string, error) {
	return f.username, nil
}
func (f *fakeAuth) Ping(context.Context) error { return nil }

func TestRegister_CollectsFields(t *testing.T) {
	capturePrint(t)
	f := &fakeAuth{}
	a := &App{authService: f}
	stubInputs(t, []string{"Alice L", "alice@example.org", "alice", "/tmp/a.png", ""}, []byte("secret"))

	if err := a.Register(context.Background()); err != nil {
		t.Fatalf("Register err: %v", err)
	}

	want := models.RegisterRequest{
		FullName: "Alice L", Email: "alice@example.org", Username: "alice",
		Password: "secret", AvatarPath: "/tmp/a.png",
	}
	if f.regReq != want {
		t.Fatalf("request = %+v, want %+v", f.regReq, want)
	}
}

func TestRegister_PropagatesError(t *testing.T) {
	capturePrint(t)
	boom := &client.APIError{StatusCode: 409, Message: "User with email or username already exists"}
	a := &App{authService: &fakeAuth{regErr: boom}}
	stubInputs(t, []string{"A", "a@x.io", "a", "/tmp/a.png", ""}, []byte("pw"))

	if err := a.Register(context.Background()); !errors.Is(err, boom) {
		t.Fatalf("want %v, got %v", boom, err)
	}
}

func TestLogin_AndStatus(t *testing.T) {
	capturePrint(t)
	f := &fakeAuth{}
	a := &App{authService: f}
	stubInputs(t, []string{"alice"}, []byte("pw"))

	if a.isLoggedIn() || a.status() != "guest" {
		t.Fatal("expected guest before login")
	}
	if err := a.Login(context.Background()); err != nil {
		t.Fatalf("Login err: %v", err)
	}
	if f.loginID != "alice" || f.loginPass != "pw" {
		t.Fatalf("login called with %q/%q", f.loginID, f.loginPass)
	}
	if !a.isLoggedIn() || a.status() != "alice" {
		t.Fatalf("status = %q", a.status())
	}
}

func TestLogin_InvalidCredentials(t *testing.T) {
	capturePrint(t)
	a := &App{authService: &fakeAuth{loginErr: client.ErrUnauthorized}}
	stubInputs(t, []string{"alice"}, []byte("bad"))

	err := a.Login(context.Background())
	if err == nil || err.Error() != "invalid credentials" {
		t.Fatalf("got %v", err)
	}
}

func TestWhoAmIRefreshLogout(t *testing.T) {
	out := capturePrint(t)
	f := &fakeAuth{who: &models.User{Username: "alice", Email: "a@x.io"}, username: "alice"}
	a := &App{authService: f}

	if err := a.WhoAmI(context.Background()); err != nil {
		t.Fatal(err)
	}
	if err := a.Refresh(context.Background()); err != nil {
		t.Fatal(err)
	}
	if err := a.Logout(context.Background()); err != nil {
		t.Fatal(err)
	}
	if a.isLoggedIn() {
		t.Fatal("still logged in after logout")
	}
	if len(*out) != 3 {
		t.Fatalf("output = %v", *out)
	}

	f.whoErr = errors.New("boom")
	if err := a.WhoAmI(context.Background()); err == nil {
		t.Fatal("expected error")
	}
}
