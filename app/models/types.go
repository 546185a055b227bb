package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// User is a registered account.
type User struct {
	ID           primitive.ObjectID `bson:"_id" json:"id"`
	Username     string             `bson:"username" json:"username" validate:"required,min=3,max=30,handle"`
	Email        string             `bson:"email" json:"email" validate:"required,email,max=100"`
	PasswordHash string             `bson:"password_hash" json:"-" validate:"required"`
	Bio          string             `bson:"bio" json:"bio" validate:"max=500"`
	Avatar       string             `bson:"avatar" json:"avatar" validate:"max=2048"`
	CreatedAt    time.Time          `bson:"created_at" json:"createdAt"`
	UpdatedAt    time.Time          `bson:"updated_at" json:"updatedAt"`
}

// Post is a short text post. LikeCount and CommentCount are denormalized
// from the like and comment relations.
type Post struct {
	ID           primitive.ObjectID `bson:"_id" json:"id"`
	UserID       primitive.ObjectID `bson:"user_id" json:"userId"`
	Content      string             `bson:"content" json:"content" validate:"required,max=280"`
	LikeCount    int                `bson:"like_count" json:"likesCount" validate:"gte=0"`
	CommentCount int                `bson:"comment_count" json:"commentsCount" validate:"gte=0"`
	CreatedAt    time.Time          `bson:"created_at" json:"createdAt"`
	UpdatedAt    time.Time          `bson:"updated_at" json:"updatedAt"`
}

// Comment is a reply attached to a post.
type Comment struct {
	ID        primitive.ObjectID `bson:"_id" json:"id"`
	PostID    primitive.ObjectID `bson:"post_id" json:"postId"`
	UserID    primitive.ObjectID `bson:"user_id" json:"userId"`
	Content   string             `bson:"content" json:"content" validate:"required,max=300"`
	CreatedAt time.Time          `bson:"created_at" json:"createdAt"`
	UpdatedAt time.Time          `bson:"updated_at" json:"updatedAt"`
}

// Like records that a user likes a post. At most one exists per pair.
type Like struct {
	PostID    primitive.ObjectID `bson:"post_id" json:"postId"`
	UserID    primitive.ObjectID `bson:"user_id" json:"userId"`
	CreatedAt time.Time          `bson:"created_at" json:"createdAt"`
}

// CounterField names a denormalized counter on a post.
type CounterField string

const (
	LikeCounter    CounterField = "like_count"
	CommentCounter CounterField = "comment_count"
)

// Now returns the current time at the precision documents are stored with.
func Now() time.Time {
	return time.Now().UTC().Truncate(time.Millisecond)
}

// ParseID parses a 24 character hex object id.
func ParseID(s string) (primitive.ObjectID, error) {
	return primitive.ObjectIDFromHex(s)
}
