package models

import (
	"strings"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Validate checks if the user meets all validation requirements
func (u *User) Validate() error {
	return validate.Struct(u)
}

// BeforeCreate normalizes the email and assigns the id and timestamps.
func (u *User) BeforeCreate() {
	u.Username = strings.TrimSpace(u.Username)
	u.Email = NormalizeEmail(u.Email)
	if u.ID.IsZero() {
		u.ID = primitive.NewObjectID()
	}
	if u.CreatedAt.IsZero() {
		u.CreatedAt = Now()
	}
	u.UpdatedAt = u.CreatedAt
}

// NormalizeEmail lowercases and trims an email address.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// UsernameKey is the case-insensitive form used for uniqueness checks.
func UsernameKey(username string) string {
	return strings.ToLower(strings.TrimSpace(username))
}
