package routes

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"microsocial/app/config"
	"microsocial/app/metrics"
	"microsocial/app/repositories"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

type testServer struct {
	t      *testing.T
	router *mux.Router
	store  *repositories.Store
}

type envelope struct {
	Success    bool            `json:"success"`
	StatusCode int             `json:"statusCode"`
	Message    string          `json:"message"`
	Data       json.RawMessage `json:"data"`
}

func setupTestServer(t *testing.T) *testServer {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	store, err := repositories.Open("", logger)
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	cfg := &config.Config{
		JWTSecret:       "test-secret",
		JWTExpire:       time.Hour,
		AuthorCacheSize: 64,
		BcryptCost:      bcrypt.MinCost,
	}
	router, err := SetupRoutes(Options{Store: store, Config: cfg, Logger: logger, Metrics: metrics.New()})
	require.NoError(t, err)

	return &testServer{t: t, router: router, store: store}
}

func (s *testServer) do(method, path, token string, body interface{}) *httptest.ResponseRecorder {
	s.t.Helper()
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(s.t, err)
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, reader)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rr := httptest.NewRecorder()
	s.router.ServeHTTP(rr, req)
	return rr
}

// data asserts a successful envelope with the wanted status and decodes
// its data into dst.
func (s *testServer) data(rr *httptest.ResponseRecorder, status int, dst interface{}) {
	s.t.Helper()
	require.Equal(s.t, status, rr.Code, rr.Body.String())
	var env envelope
	require.NoError(s.t, json.Unmarshal(rr.Body.Bytes(), &env))
	require.True(s.t, env.Success)
	if dst != nil {
		require.NoError(s.t, json.Unmarshal(env.Data, dst))
	}
}

func (s *testServer) failure(rr *httptest.ResponseRecorder) envelope {
	s.t.Helper()
	var env envelope
	require.NoError(s.t, json.Unmarshal(rr.Body.Bytes(), &env), rr.Body.String())
	require.False(s.t, env.Success)
	require.Equal(s.t, rr.Code, env.StatusCode)
	return env
}

// signup registers username and returns its token and id.
func (s *testServer) signup(username string) (string, string) {
	s.t.Helper()
	var res struct {
		Token string `json:"token"`
		User  struct {
			ID string `json:"id"`
		} `json:"user"`
	}
	s.data(s.do(http.MethodPost, "/auth/signup", "", map[string]string{
		"username": username,
		"email":    username + "@example.com",
		"password": "secret123",
	}), http.StatusCreated, &res)
	return res.Token, res.User.ID
}

func (s *testServer) createPost(token, content string) string {
	s.t.Helper()
	var post struct {
		ID string `json:"id"`
	}
	s.data(s.do(http.MethodPost, "/posts", token, map[string]string{"content": content}), http.StatusCreated, &post)
	return post.ID
}
