package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"microsocial/app/auth"
	"microsocial/app/models"
	"microsocial/app/pagination"
	"microsocial/app/repositories"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"golang.org/x/crypto/bcrypt"
)

const minSearchQuery = 2

// AuthResult is returned by signup and login.
type AuthResult struct {
	Token string           `json:"token"`
	User  *models.UserView `json:"user"`
}

// UserService handles accounts, credentials and profiles
type UserService struct {
	users      repositories.UserRepository
	posts      repositories.PostRepository
	tokens     *auth.TokenManager
	authors    *AuthorCache
	bcryptCost int
}

// NewUserService creates a new UserService
func NewUserService(users repositories.UserRepository, posts repositories.PostRepository, tokens *auth.TokenManager, authors *AuthorCache, bcryptCost int) *UserService {
	return &UserService{
		users:      users,
		posts:      posts,
		tokens:     tokens,
		authors:    authors,
		bcryptCost: bcryptCost,
	}
}

// Register creates an account and returns a token for it
func (s *UserService) Register(ctx context.Context, req *models.RegisterRequest) (*AuthResult, error) {
	req.Username = strings.TrimSpace(req.Username)
	req.Email = models.NormalizeEmail(req.Email)
	if err := models.Validate(req); err != nil {
		return nil, invalid(err)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), s.bcryptCost)
	if errors.Is(err, bcrypt.ErrPasswordTooLong) {
		return nil, NewValidationError("password", "password must be at most 72 bytes")
	}
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	user := &models.User{
		Username:     req.Username,
		Email:        req.Email,
		PasswordHash: string(hash),
	}
	user.BeforeCreate()
	if err := s.users.Create(ctx, user); err != nil {
		return nil, conflict(err)
	}

	return s.issue(user)
}

// Login checks credentials and returns a token. Unknown emails and wrong
// passwords produce the same error.
func (s *UserService) Login(ctx context.Context, req *models.LoginRequest) (*AuthResult, error) {
	req.Email = models.NormalizeEmail(req.Email)
	if err := models.Validate(req); err != nil {
		return nil, invalid(err)
	}

	user, err := s.users.GetByEmail(ctx, req.Email)
	if errors.Is(err, repositories.ErrNotFound) {
		return nil, fmt.Errorf("%w: invalid email or password", ErrUnauthorized)
	}
	if err != nil {
		return nil, err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		return nil, fmt.Errorf("%w: invalid email or password", ErrUnauthorized)
	}

	return s.issue(user)
}

func (s *UserService) issue(user *models.User) (*AuthResult, error) {
	token, err := s.tokens.Issue(user.ID, user.Email)
	if err != nil {
		return nil, err
	}
	return &AuthResult{Token: token, User: user.View()}, nil
}

// Me returns the caller's own account
func (s *UserService) Me(ctx context.Context, userID primitive.ObjectID) (*models.UserView, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, notFound(err, "user")
	}
	return user.View(), nil
}

// Profile returns a user's public profile with their post count
func (s *UserService) Profile(ctx context.Context, userID primitive.ObjectID) (*models.UserView, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, notFound(err, "user")
	}
	count, err := s.posts.CountByAuthor(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("count posts: %w", err)
	}
	view := user.View()
	view.PostCount = &count
	return view, nil
}

// UpdateProfile applies the non-nil fields of update to the caller's profile
func (s *UserService) UpdateProfile(ctx context.Context, userID primitive.ObjectID, update *models.ProfileUpdate) (*models.UserView, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, notFound(err, "user")
	}

	if update.Username != nil {
		user.Username = strings.TrimSpace(*update.Username)
	}
	if update.Bio != nil {
		user.Bio = strings.TrimSpace(*update.Bio)
	}
	if update.Avatar != nil {
		user.Avatar = strings.TrimSpace(*update.Avatar)
	}
	if err := user.Validate(); err != nil {
		return nil, invalid(err)
	}
	user.UpdatedAt = models.Now()

	if err := s.users.Update(ctx, user); err != nil {
		return nil, notFound(conflict(err), "user")
	}
	s.authors.Invalidate(userID)
	return user.View(), nil
}

// Search finds users whose username or email contains query
func (s *UserService) Search(ctx context.Context, query string, p pagination.Params) (*pagination.Page[*models.UserView], error) {
	query = strings.TrimSpace(query)
	if len([]rune(query)) < minSearchQuery {
		return nil, NewValidationError("query", fmt.Sprintf("query must be at least %d characters", minSearchQuery))
	}

	page, err := pagination.Fetch(ctx, p,
		func(ctx context.Context, skip, limit int) ([]*models.User, error) {
			return s.users.Search(ctx, query, skip, limit)
		},
		func(ctx context.Context) (int, error) {
			return s.users.CountSearch(ctx, query)
		},
	)
	if err != nil {
		return nil, fmt.Errorf("search users: %w", err)
	}

	views := make([]*models.UserView, len(page.Items))
	for i, u := range page.Items {
		views[i] = u.View()
	}
	return &pagination.Page[*models.UserView]{Items: views, Meta: page.Meta}, nil
}
