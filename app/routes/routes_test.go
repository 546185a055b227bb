package routes

import (
	"fmt"
	"net/http"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestPublicRoutes(t *testing.T) {
	s := setupTestServer(t)

	rr := s.do(http.MethodGet, "/health", "", nil)
	s.data(rr, http.StatusOK, nil)
	assert.Equal(t, "application/json", rr.Header().Get("Content-Type"))
	assert.NotEmpty(t, rr.Header().Get("X-Request-ID"))

	s.do(http.MethodGet, "/health", "", nil)
	rr = s.do(http.MethodGet, "/metrics", "", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), `microsocial_http_requests_total{code="200",method="GET",route="/health"}`)
}

func TestProtectedRoutesRequireToken(t *testing.T) {
	s := setupTestServer(t)
	id := primitive.NewObjectID().Hex()

	tests := []struct {
		method string
		path   string
	}{
		{http.MethodGet, "/auth/me"},
		{http.MethodPost, "/posts"},
		{http.MethodGet, "/posts/feed"},
		{http.MethodGet, "/posts/" + id},
		{http.MethodGet, "/posts/user/" + id},
		{http.MethodPut, "/posts/" + id},
		{http.MethodDelete, "/posts/" + id},
		{http.MethodPost, "/likes/" + id},
		{http.MethodPost, "/comments/" + id},
		{http.MethodGet, "/comments/" + id},
		{http.MethodDelete, "/comments/" + id},
		{http.MethodGet, "/users/" + id},
		{http.MethodPut, "/users/profile"},
		{http.MethodGet, "/users/search?query=al"},
	}

	for _, tt := range tests {
		t.Run(tt.method+" "+tt.path, func(t *testing.T) {
			rr := s.do(tt.method, tt.path, "", nil)
			assert.Equal(t, http.StatusUnauthorized, rr.Code)
			s.failure(rr)

			rr = s.do(tt.method, tt.path, "not-a-token", nil)
			assert.Equal(t, http.StatusUnauthorized, rr.Code)
		})
	}
}

func TestUnknownRoutes(t *testing.T) {
	s := setupTestServer(t)

	rr := s.do(http.MethodGet, "/nope", "", nil)
	assert.Equal(t, http.StatusNotFound, rr.Code)
	assert.Equal(t, "Route /nope not found", s.failure(rr).Message)
	assert.NotEmpty(t, rr.Header().Get("X-Request-ID"))

	rr = s.do(http.MethodPatch, "/health", "", nil)
	assert.Equal(t, http.StatusMethodNotAllowed, rr.Code)
	s.failure(rr)
}

func TestLikeToggleScenario(t *testing.T) {
	s := setupTestServer(t)
	token, _ := s.signup("alice")
	postID := s.createPost(token, "hello")

	type toggle struct {
		IsLiked   bool `json:"isLiked"`
		LikeCount int  `json:"likeCount"`
	}

	var first toggle
	s.data(s.do(http.MethodPost, "/likes/"+postID, token, nil), http.StatusOK, &first)
	assert.Equal(t, toggle{IsLiked: true, LikeCount: 1}, first)

	var detail struct {
		Post struct {
			LikesCount int  `json:"likesCount"`
			IsLiked    bool `json:"isLiked"`
		} `json:"post"`
	}
	s.data(s.do(http.MethodGet, "/posts/"+postID, token, nil), http.StatusOK, &detail)
	assert.Equal(t, 1, detail.Post.LikesCount)
	assert.True(t, detail.Post.IsLiked)

	var second toggle
	s.data(s.do(http.MethodPost, "/likes/"+postID, token, nil), http.StatusOK, &second)
	assert.Equal(t, toggle{IsLiked: false, LikeCount: 0}, second)
}

func TestCommentPaginationScenario(t *testing.T) {
	s := setupTestServer(t)
	token, _ := s.signup("alice")
	postID := s.createPost(token, "hello")

	for i := 0; i < 12; i++ {
		var res struct {
			CommentCount int `json:"commentCount"`
		}
		s.data(s.do(http.MethodPost, "/comments/"+postID, token, map[string]string{
			"content": fmt.Sprintf("comment %d", i),
		}), http.StatusCreated, &res)
		assert.Equal(t, i+1, res.CommentCount)
	}

	var page struct {
		Comments []struct {
			Content string `json:"content"`
		} `json:"comments"`
		Pagination struct {
			Total int `json:"total"`
			Pages int `json:"pages"`
		} `json:"pagination"`
	}
	s.data(s.do(http.MethodGet, "/comments/"+postID+"?page=2&limit=10", token, nil), http.StatusOK, &page)
	require.Len(t, page.Comments, 2)
	assert.Equal(t, "comment 10", page.Comments[0].Content)
	assert.Equal(t, 12, page.Pagination.Total)
	assert.Equal(t, 2, page.Pagination.Pages)
}

func TestPostOwnershipAndCascade(t *testing.T) {
	s := setupTestServer(t)
	alice, _ := s.signup("alice")
	bob, _ := s.signup("bob")
	postID := s.createPost(alice, "hello")

	s.data(s.do(http.MethodPost, "/likes/"+postID, bob, nil), http.StatusOK, nil)
	s.data(s.do(http.MethodPost, "/comments/"+postID, bob, map[string]string{"content": "hi"}), http.StatusCreated, nil)

	rr := s.do(http.MethodPut, "/posts/"+postID, bob, map[string]string{"content": "mine now"})
	assert.Equal(t, http.StatusNotFound, rr.Code)
	rr = s.do(http.MethodDelete, "/posts/"+postID, bob, nil)
	assert.Equal(t, http.StatusNotFound, rr.Code)

	s.data(s.do(http.MethodDelete, "/posts/"+postID, alice, nil), http.StatusOK, nil)
	assert.Equal(t, http.StatusNotFound, s.do(http.MethodGet, "/posts/"+postID, alice, nil).Code)

	var page struct {
		Pagination struct {
			Total int `json:"total"`
		} `json:"pagination"`
	}
	s.data(s.do(http.MethodGet, "/comments/"+postID, alice, nil), http.StatusOK, &page)
	assert.Zero(t, page.Pagination.Total)
}

func TestProfileAndSearch(t *testing.T) {
	s := setupTestServer(t)
	token, id := s.signup("alice")
	s.signup("bob")
	s.createPost(token, "one")

	var profile struct {
		Username  string `json:"username"`
		PostCount int    `json:"postCount"`
	}
	s.data(s.do(http.MethodGet, "/users/"+id, token, nil), http.StatusOK, &profile)
	assert.Equal(t, "alice", profile.Username)
	assert.Equal(t, 1, profile.PostCount)

	s.data(s.do(http.MethodPut, "/users/profile", token, map[string]string{"bio": "hello"}), http.StatusOK, nil)

	var found struct {
		Users []struct {
			Username string `json:"username"`
		} `json:"users"`
	}
	s.data(s.do(http.MethodGet, "/users/search?query=BO", token, nil), http.StatusOK, &found)
	require.Len(t, found.Users, 1)
	assert.Equal(t, "bob", found.Users[0].Username)

	rr := s.do(http.MethodGet, "/users/nope", token, nil)
	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.True(t, strings.HasPrefix(s.failure(rr).Message, "Invalid user"))
}

func TestMeReturnsCaller(t *testing.T) {
	s := setupTestServer(t)
	token, id := s.signup("alice")

	var me struct {
		ID string `json:"id"`
	}
	s.data(s.do(http.MethodGet, "/auth/me", token, nil), http.StatusOK, &me)
	assert.Equal(t, id, me.ID)

	var login struct {
		Token string `json:"token"`
	}
	s.data(s.do(http.MethodPost, "/auth/login", "", map[string]string{
		"email":    "ALICE@example.com",
		"password": "secret123",
	}), http.StatusOK, &login)
	assert.NotEmpty(t, login.Token)
}
