package services

import (
	"context"
	"strings"
	"testing"

	"microsocial/app/models"
	"microsocial/app/pagination"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func strptr(s string) *string { return &s }

func TestUserServiceRegister(t *testing.T) {
	f, _ := newMockFixture(t)
	ctx := context.Background()

	t.Run("success", func(t *testing.T) {
		res, err := f.userService.Register(ctx, &models.RegisterRequest{
			Username: "jane",
			Email:    "Jane@Example.com",
			Password: "secret1",
		})
		require.NoError(t, err)
		assert.NotEmpty(t, res.Token)
		assert.Equal(t, "jane", res.User.Username)
		assert.Equal(t, "jane@example.com", res.User.Email)
	})

	t.Run("validation errors", func(t *testing.T) {
		tests := []struct {
			name  string
			req   models.RegisterRequest
			field string
		}{
			{"missing username", models.RegisterRequest{Email: "a@b.co", Password: "secret1"}, "username"},
			{"short password", models.RegisterRequest{Username: "bob", Email: "bob@b.co", Password: "123"}, "password"},
			{"bad email", models.RegisterRequest{Username: "bob", Email: "bob", Password: "secret1"}, "email"},
			{"bad username", models.RegisterRequest{Username: "bob!", Email: "bob@b.co", Password: "secret1"}, "username"},
		}
		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				_, err := f.userService.Register(ctx, &tt.req)
				require.Error(t, err)
				assert.True(t, IsValidationError(err))
				var verr *ValidationError
				require.ErrorAs(t, err, &verr)
				assert.Equal(t, tt.field, verr.Field)
			})
		}
	})

	t.Run("duplicate username ignores case", func(t *testing.T) {
		_, err := f.userService.Register(ctx, &models.RegisterRequest{
			Username: "JANE",
			Email:    "other@example.com",
			Password: "secret1",
		})
		assert.True(t, IsConflict(err))
	})

	t.Run("duplicate email", func(t *testing.T) {
		_, err := f.userService.Register(ctx, &models.RegisterRequest{
			Username: "jane2",
			Email:    "jane@example.com",
			Password: "secret1",
		})
		var cerr *ConflictError
		require.ErrorAs(t, err, &cerr)
		assert.Equal(t, "email", cerr.Field)
	})
}

func TestUserServiceLogin(t *testing.T) {
	f, _ := newMockFixture(t)
	ctx := context.Background()
	id := f.createUser(t, "jane")

	t.Run("success", func(t *testing.T) {
		res, err := f.userService.Login(ctx, &models.LoginRequest{Email: "JANE@example.com", Password: "password123"})
		require.NoError(t, err)
		assert.Equal(t, id, res.User.ID)
		assert.NotEmpty(t, res.Token)
	})

	t.Run("wrong password", func(t *testing.T) {
		_, err := f.userService.Login(ctx, &models.LoginRequest{Email: "jane@example.com", Password: "nope"})
		assert.True(t, IsUnauthorized(err))
	})

	t.Run("unknown email", func(t *testing.T) {
		_, err := f.userService.Login(ctx, &models.LoginRequest{Email: "who@example.com", Password: "password123"})
		assert.True(t, IsUnauthorized(err))
	})

	t.Run("missing fields", func(t *testing.T) {
		_, err := f.userService.Login(ctx, &models.LoginRequest{})
		assert.True(t, IsValidationError(err))
	})
}

func TestUserServiceProfile(t *testing.T) {
	f, _ := newMockFixture(t)
	ctx := context.Background()
	jane := f.createUser(t, "jane")
	bob := f.createUser(t, "bob_b")
	f.createPost(t, jane, "one")
	f.createPost(t, jane, "two")

	t.Run("me", func(t *testing.T) {
		me, err := f.userService.Me(ctx, jane)
		require.NoError(t, err)
		assert.Equal(t, "jane", me.Username)
		assert.Nil(t, me.PostCount)

		_, err = f.userService.Me(ctx, primitive.NewObjectID())
		assert.True(t, IsNotFound(err))
	})

	t.Run("profile has post count", func(t *testing.T) {
		p, err := f.userService.Profile(ctx, jane)
		require.NoError(t, err)
		require.NotNil(t, p.PostCount)
		assert.Equal(t, 2, *p.PostCount)
	})

	t.Run("update profile refreshes author cache", func(t *testing.T) {
		a, err := f.authors.Get(ctx, jane)
		require.NoError(t, err)
		assert.Equal(t, "jane", a.Username)

		view, err := f.userService.UpdateProfile(ctx, jane, &models.ProfileUpdate{
			Username: strptr("jane_doe"),
			Bio:      strptr("  hello  "),
		})
		require.NoError(t, err)
		assert.Equal(t, "jane_doe", view.Username)
		assert.Equal(t, "hello", view.Bio)

		a, err = f.authors.Get(ctx, jane)
		require.NoError(t, err)
		assert.Equal(t, "jane_doe", a.Username)
	})

	t.Run("update to taken username", func(t *testing.T) {
		_, err := f.userService.UpdateProfile(ctx, bob, &models.ProfileUpdate{Username: strptr("JANE_DOE")})
		assert.True(t, IsConflict(err))
	})

	t.Run("bio too long", func(t *testing.T) {
		_, err := f.userService.UpdateProfile(ctx, bob, &models.ProfileUpdate{Bio: strptr(strings.Repeat("x", 501))})
		assert.True(t, IsValidationError(err))
	})
}

func TestUserServiceSearch(t *testing.T) {
	f, _ := newMockFixture(t)
	ctx := context.Background()
	for _, name := range []string{"alice", "alina", "bob_b", "malik"} {
		f.createUser(t, name)
	}

	t.Run("short query", func(t *testing.T) {
		_, err := f.userService.Search(ctx, " a ", pagination.New(1, 10))
		assert.True(t, IsValidationError(err))
	})

	t.Run("paginated matches", func(t *testing.T) {
		page, err := f.userService.Search(ctx, "LI", pagination.New(1, 2))
		require.NoError(t, err)
		assert.Len(t, page.Items, 2)
		assert.Equal(t, pagination.Meta{Page: 1, Limit: 2, Total: 3, Pages: 2}, page.Meta)

		page, err = f.userService.Search(ctx, "li", pagination.New(2, 2))
		require.NoError(t, err)
		assert.Len(t, page.Items, 1)
	})
}
