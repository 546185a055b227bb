package models

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUserValidation(t *testing.T) {
	valid := func() *User {
		return &User{Username: "jane_doe", Email: "jane@example.com", PasswordHash: "hash"}
	}

	tests := []struct {
		name      string
		mutate    func(u *User)
		wantField string
	}{
		{"valid user", func(u *User) {}, ""},
		{"short username", func(u *User) { u.Username = "ab" }, "username"},
		{"long username", func(u *User) { u.Username = strings.Repeat("a", 31) }, "username"},
		{"bad characters", func(u *User) { u.Username = "jane doe" }, "username"},
		{"bad email", func(u *User) { u.Email = "not-an-email" }, "email"},
		{"long bio", func(u *User) { u.Bio = strings.Repeat("b", 501) }, "bio"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			u := valid()
			tt.mutate(u)
			err := u.Validate()
			if tt.wantField == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			field, msg, ok := Describe(err)
			assert.True(t, ok)
			assert.Equal(t, tt.wantField, field)
			assert.NotEmpty(t, msg)
		})
	}
}

func TestUserBeforeCreate(t *testing.T) {
	u := &User{Username: " Jane ", Email: "  Jane@Example.COM "}
	u.BeforeCreate()

	assert.Equal(t, "Jane", u.Username)
	assert.Equal(t, "jane@example.com", u.Email)
	assert.False(t, u.ID.IsZero())
	assert.Equal(t, "jane", UsernameKey(u.Username))
}

func TestDescribe(t *testing.T) {
	err := Validate(&RegisterRequest{Username: "jane", Email: "jane@example.com", Password: "123"})
	field, msg, ok := Describe(err)
	assert.True(t, ok)
	assert.Equal(t, "password", field)
	assert.Equal(t, "password must be at least 6 characters", msg)

	_, _, ok = Describe(errors.New("plain"))
	assert.False(t, ok)
}

func TestUserViewHidesHash(t *testing.T) {
	u := &User{Username: "jane", Email: "jane@example.com", PasswordHash: "secret"}
	u.BeforeCreate()

	v := u.View()
	assert.Equal(t, u.ID, v.ID)
	assert.Nil(t, v.PostCount)
	assert.Equal(t, AuthorView{ID: u.ID, Username: "jane"}, u.Author())
}
