package services

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"microsocial/app/auth"
	"microsocial/app/metrics"
	"microsocial/app/models"
	"microsocial/app/repositories"
	"microsocial/app/repositories/mock"

	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"golang.org/x/crypto/bcrypt"
)

type fixture struct {
	users    repositories.UserRepository
	posts    repositories.PostRepository
	comments repositories.CommentRepository
	likes    repositories.LikeRepository

	metrics *metrics.Metrics
	authors *AuthorCache

	userService    *UserService
	postService    *PostService
	commentService *CommentService
	likeService    *LikeService
	reconciler     *Reconciler
}

type mockRepos struct {
	users    *mock.UserRepository
	posts    *mock.PostRepository
	comments *mock.CommentRepository
	likes    *mock.LikeRepository
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newFixture(t *testing.T, users repositories.UserRepository, posts repositories.PostRepository, comments repositories.CommentRepository, likes repositories.LikeRepository) *fixture {
	t.Helper()
	logger := discardLogger()
	m := metrics.New()

	tokens, err := auth.NewTokenManager("test-secret", time.Hour)
	require.NoError(t, err)
	authors, err := NewAuthorCache(users, 64)
	require.NoError(t, err)
	counter := NewCounterCoordinator(posts, logger, m)

	return &fixture{
		users:          users,
		posts:          posts,
		comments:       comments,
		likes:          likes,
		metrics:        m,
		authors:        authors,
		userService:    NewUserService(users, posts, tokens, authors, bcrypt.MinCost),
		postService:    NewPostService(posts, comments, likes, authors, logger),
		commentService: NewCommentService(comments, posts, counter, authors, m),
		likeService:    NewLikeService(likes, posts, counter, m),
		reconciler:     NewReconciler(posts, comments, likes, logger, m),
	}
}

// newMockFixture wires the services to in-memory mocks whose failures can
// be injected.
func newMockFixture(t *testing.T) (*fixture, *mockRepos) {
	r := &mockRepos{
		users:    mock.NewUserRepository(),
		posts:    mock.NewPostRepository(),
		comments: mock.NewCommentRepository(),
		likes:    mock.NewLikeRepository(),
	}
	return newFixture(t, r.users, r.posts, r.comments, r.likes), r
}

// newBadgerFixture wires the services to an in-memory badger store.
func newBadgerFixture(t *testing.T) *fixture {
	store, err := repositories.Open("", nil)
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return newFixture(t, store.Users, store.Posts, store.Comments, store.Likes)
}

func (f *fixture) createUser(t *testing.T, username string) primitive.ObjectID {
	t.Helper()
	res, err := f.userService.Register(context.Background(), &models.RegisterRequest{
		Username: username,
		Email:    username + "@example.com",
		Password: "password123",
	})
	require.NoError(t, err)
	return res.User.ID
}

func (f *fixture) createPost(t *testing.T, userID primitive.ObjectID, content string) primitive.ObjectID {
	t.Helper()
	view, err := f.postService.Create(context.Background(), userID, content)
	require.NoError(t, err)
	return view.ID
}

func (f *fixture) storedPost(t *testing.T, postID primitive.ObjectID) *models.Post {
	t.Helper()
	post, err := f.posts.GetByID(context.Background(), postID)
	require.NoError(t, err)
	return post
}
