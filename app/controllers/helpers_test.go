package controllers

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"microsocial/app/auth"
	"microsocial/app/metrics"
	"microsocial/app/middleware"
	"microsocial/app/models"
	"microsocial/app/repositories/mock"
	"microsocial/app/services"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"golang.org/x/crypto/bcrypt"
)

type testEnv struct {
	posts *mock.PostRepository

	auth     *AuthController
	users    *UserController
	post     *PostController
	comments *CommentController
	likes    *LikeController

	userService *services.UserService
	postService *services.PostService
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	m := metrics.New()

	users := mock.NewUserRepository()
	posts := mock.NewPostRepository()
	comments := mock.NewCommentRepository()
	likes := mock.NewLikeRepository()

	tokens, err := auth.NewTokenManager("test-secret", time.Hour)
	require.NoError(t, err)
	authors, err := services.NewAuthorCache(users, 64)
	require.NoError(t, err)
	counter := services.NewCounterCoordinator(posts, logger, m)

	userService := services.NewUserService(users, posts, tokens, authors, bcrypt.MinCost)
	postService := services.NewPostService(posts, comments, likes, authors, logger)
	commentService := services.NewCommentService(comments, posts, counter, authors, m)
	likeService := services.NewLikeService(likes, posts, counter, m)

	return &testEnv{
		posts:       posts,
		auth:        NewAuthController(userService, logger),
		users:       NewUserController(userService, logger),
		post:        NewPostController(postService, logger),
		comments:    NewCommentController(commentService, logger),
		likes:       NewLikeController(likeService, logger),
		userService: userService,
		postService: postService,
	}
}

func (e *testEnv) signup(t *testing.T, username string) primitive.ObjectID {
	t.Helper()
	res, err := e.userService.Register(context.Background(), &models.RegisterRequest{
		Username: username,
		Email:    username + "@example.com",
		Password: "secret123",
	})
	require.NoError(t, err)
	return res.User.ID
}

func (e *testEnv) createPost(t *testing.T, userID primitive.ObjectID, content string) primitive.ObjectID {
	t.Helper()
	post, err := e.postService.Create(context.Background(), userID, content)
	require.NoError(t, err)
	return post.ID
}

// newRequest builds a request carrying route vars and, when userID is
// non-zero, an authenticated caller.
func newRequest(method, target, body string, userID primitive.ObjectID, vars map[string]string) *http.Request {
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, target, reader)
	if !userID.IsZero() {
		req = req.WithContext(middleware.WithUserID(req.Context(), userID))
	}
	if vars != nil {
		req = mux.SetURLVars(req, vars)
	}
	return req
}

func serve(h http.HandlerFunc, req *http.Request) *httptest.ResponseRecorder {
	rr := httptest.NewRecorder()
	h(rr, req)
	return rr
}

type decoded struct {
	Success    bool            `json:"success"`
	StatusCode int             `json:"statusCode"`
	Message    string          `json:"message"`
	Data       json.RawMessage `json:"data"`
}

func decode(t *testing.T, rr *httptest.ResponseRecorder) decoded {
	t.Helper()
	var d decoded
	require.NoError(t, json.NewDecoder(bytes.NewReader(rr.Body.Bytes())).Decode(&d), rr.Body.String())
	return d
}

func decodeData(t *testing.T, rr *httptest.ResponseRecorder, dst interface{}) {
	t.Helper()
	d := decode(t, rr)
	require.True(t, d.Success, rr.Body.String())
	require.NoError(t, json.Unmarshal(d.Data, dst))
}
