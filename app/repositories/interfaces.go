package repositories

import (
	"context"

	"microsocial/app/models"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// UserRepository defines the interface for user data access
type UserRepository interface {
	Create(ctx context.Context, user *models.User) error
	GetByID(ctx context.Context, id primitive.ObjectID) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	GetByUsername(ctx context.Context, username string) (*models.User, error)
	Update(ctx context.Context, user *models.User) error
	Search(ctx context.Context, query string, skip, limit int) ([]*models.User, error)
	CountSearch(ctx context.Context, query string) (int, error)
}

// PostRepository defines the interface for post data access.
// List and ListByAuthor return newest first.
type PostRepository interface {
	Create(ctx context.Context, post *models.Post) error
	GetByID(ctx context.Context, id primitive.ObjectID) (*models.Post, error)
	GetOwned(ctx context.Context, id, ownerID primitive.ObjectID) (*models.Post, error)
	List(ctx context.Context, skip, limit int) ([]*models.Post, error)
	Count(ctx context.Context) (int, error)
	ListByAuthor(ctx context.Context, userID primitive.ObjectID, skip, limit int) ([]*models.Post, error)
	CountByAuthor(ctx context.Context, userID primitive.ObjectID) (int, error)
	UpdateContent(ctx context.Context, id, ownerID primitive.ObjectID, content string) (*models.Post, error)
	AdjustCounter(ctx context.Context, id primitive.ObjectID, field models.CounterField, delta int) (int, error)
	SetCounters(ctx context.Context, id primitive.ObjectID, likes, comments int) error
	Each(ctx context.Context, fn func(*models.Post) error) error
	Delete(ctx context.Context, id primitive.ObjectID) error
}

// CommentRepository defines the interface for comment data access.
// ListByPost returns oldest first.
type CommentRepository interface {
	Create(ctx context.Context, comment *models.Comment) error
	GetOwned(ctx context.Context, id, ownerID primitive.ObjectID) (*models.Comment, error)
	ListByPost(ctx context.Context, postID primitive.ObjectID, skip, limit int) ([]*models.Comment, error)
	CountByPost(ctx context.Context, postID primitive.ObjectID) (int, error)
	Delete(ctx context.Context, comment *models.Comment) error
	DeleteByPost(ctx context.Context, postID primitive.ObjectID) (int, error)
}

// LikeRepository defines the interface for the like relation
type LikeRepository interface {
	Toggle(ctx context.Context, postID, userID primitive.ObjectID) (liked bool, err error)
	Exists(ctx context.Context, postID, userID primitive.ObjectID) (bool, error)
	CountByPost(ctx context.Context, postID primitive.ObjectID) (int, error)
	DeleteByPost(ctx context.Context, postID primitive.ObjectID) (int, error)
}
