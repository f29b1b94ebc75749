package cli

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/dmitrijs2005/profilekeeper/internal/client/client"
	"github.com/dmitrijs2005/profilekeeper/internal/client/models"
)

// getSimpleText and getPassword are indirections used to facilitate testing.
var getSimpleText = GetSimpleText
var getPassword = GetPassword

// Register prompts for the profile fields and the local image paths and
// creates the account. The cover image is optional.
func (a *App) Register(ctx context.Context) error {
	var req models.RegisterRequest
	fields := []struct {
		label string
		dst   *string
	}{
		{"Full name", &req.FullName},
		{"Email", &req.Email},
		{"Username", &req.Username},
	}
	for _, f := range fields {
		v, err := getSimpleText(a.reader, f.label, os.Stdout)
		if err != nil {
			return err
		}
		*f.dst = v
	}

	password, err := getPassword(os.Stdout)
	if err != nil {
		return err
	}
	defer wipe(password)
	req.Password = string(password)

	if req.AvatarPath, err = getSimpleText(a.reader, "Avatar image path", os.Stdout); err != nil {
		return err
	}
	if req.CoverImagePath, err = getSimpleText(a.reader, "Cover image path (optional)", os.Stdout); err != nil {
		return err
	}

	u, err := a.authService.Register(ctx, req)
	if err != nil {
		return err
	}

	printlnFn(fmt.Sprintf("Registered %s (%s). You can login now.", u.Username, u.ID))
	return nil
}

// Login prompts for a username or email and a password.
func (a *App) Login(ctx context.Context) error {
	identifier, err := getSimpleText(a.reader, "Enter username or email", os.Stdout)
	if err != nil {
		return err
	}

	password, err := getPassword(os.Stdout)
	if err != nil {
		return err
	}
	defer wipe(password)

	u, err := a.authService.Login(ctx, identifier, string(password))
	if err != nil {
		if errors.Is(err, client.ErrUnauthorized) {
			return errors.New("invalid credentials")
		}
		return err
	}

	printlnFn("Logged in as", u.Username)
	return nil
}

func (a *App) Refresh(ctx context.Context) error {
	if err := a.authService.Refresh(ctx); err != nil {
		return err
	}
	printlnFn("Tokens refreshed")
	return nil
}

func (a *App) WhoAmI(ctx context.Context) error {
	u, err := a.authService.WhoAmI(ctx)
	if err != nil {
		return err
	}

	printlnFn(fmt.Sprintf("%s <%s>\n  name:   %s\n  avatar: %s\n  cover:  %s", u.Username, u.Email, u.FullName, u.Avatar, u.CoverImage))
	return nil
}

func (a *App) Logout(ctx context.Context) error {
	if err := a.authService.Logout(ctx); err != nil {
		return err
	}
	printlnFn("Logged out")
	return nil
}
