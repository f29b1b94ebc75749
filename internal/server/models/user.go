// Package models holds the server-side domain records.
package models

import "time"

// User is a registered account. Username and Email are unique and stored
// lowercase. Password holds the bcrypt hash once persisted; it and
// RefreshToken are never serialized to clients.
type User struct {
	ID           string    `json:"_id" bson:"_id"`
	Username     string    `json:"username" bson:"username"`
	Email        string    `json:"email" bson:"email"`
	FullName     string    `json:"fullName" bson:"fullName"`
	Avatar       string    `json:"avatar" bson:"avatar"`
	CoverImage   string    `json:"coverImage" bson:"coverImage"`
	Password     string    `json:"-" bson:"password,omitempty"`
	RefreshToken string    `json:"-" bson:"refreshToken,omitempty"`
	CreatedAt    time.Time `json:"createdAt" bson:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt" bson:"updatedAt"`
}

// Sanitized returns a copy without the password hash and refresh token.
func (u *User) Sanitized() *User {
	if u == nil {
		return nil
	}
	c := *u
	c.Password = ""
	c.RefreshToken = ""
	return &c
}
