// Package models holds the client-side view of API payloads.
package models

import "time"

// User is the sanitized user returned by the server.
type User struct {
	ID         string    `json:"_id"`
	Username   string    `json:"username"`
	Email      string    `json:"email"`
	FullName   string    `json:"fullName"`
	Avatar     string    `json:"avatar"`
	CoverImage string    `json:"coverImage"`
	CreatedAt  time.Time `json:"createdAt"`
	UpdatedAt  time.Time `json:"updatedAt"`
}

// Tokens is an access/refresh pair as issued by login or refresh.
type Tokens struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
}

// Session is the login response payload.
type Session struct {
	User *User `json:"user"`
	Tokens
}

// RegisterRequest carries the form fields and local file paths for sign-up.
// CoverImagePath may be empty.
type RegisterRequest struct {
	FullName       string
	Email          string
	Username       string
	Password       string
	AvatarPath     string
	CoverImagePath string
}
