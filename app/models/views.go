package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// AuthorView is the author summary embedded in posts and comments.
type AuthorView struct {
	ID       primitive.ObjectID `json:"id"`
	Username string             `json:"username"`
	Avatar   string             `json:"avatar"`
}

// PostView is a post as returned to clients.
type PostView struct {
	ID            primitive.ObjectID `json:"id"`
	Content       string             `json:"content"`
	Author        AuthorView         `json:"author"`
	LikesCount    int                `json:"likesCount"`
	CommentsCount int                `json:"commentsCount"`
	IsLiked       bool               `json:"isLiked"`
	CreatedAt     time.Time          `json:"createdAt"`
	UpdatedAt     time.Time          `json:"updatedAt"`
}

// PostDetailView is a post with one page of its comments. Comments is
// always present, empty when the post has none.
type PostDetailView struct {
	*PostView
	Comments []*CommentView `json:"comments"`
}

// CommentView is a comment as returned to clients.
type CommentView struct {
	ID        primitive.ObjectID `json:"id"`
	PostID    primitive.ObjectID `json:"postId"`
	Content   string             `json:"content"`
	Author    AuthorView         `json:"author"`
	CreatedAt time.Time          `json:"createdAt"`
	UpdatedAt time.Time          `json:"updatedAt"`
}

// UserView is the public profile of a user. PostCount is only set on the
// profile endpoint.
type UserView struct {
	ID        primitive.ObjectID `json:"id"`
	Username  string             `json:"username"`
	Email     string             `json:"email"`
	Bio       string             `json:"bio"`
	Avatar    string             `json:"avatar"`
	CreatedAt time.Time          `json:"createdAt"`
	PostCount *int               `json:"postCount,omitempty"`
}

// Author summarizes u for embedding.
func (u *User) Author() AuthorView {
	return AuthorView{ID: u.ID, Username: u.Username, Avatar: u.Avatar}
}

// View returns the public profile of u.
func (u *User) View() *UserView {
	return &UserView{
		ID:        u.ID,
		Username:  u.Username,
		Email:     u.Email,
		Bio:       u.Bio,
		Avatar:    u.Avatar,
		CreatedAt: u.CreatedAt,
	}
}

// View renders p with the given author and liked flag.
func (p *Post) View(author AuthorView, liked bool) *PostView {
	return &PostView{
		ID:            p.ID,
		Content:       p.Content,
		Author:        author,
		LikesCount:    p.LikeCount,
		CommentsCount: p.CommentCount,
		IsLiked:       liked,
		CreatedAt:     p.CreatedAt,
		UpdatedAt:     p.UpdatedAt,
	}
}

// Detail attaches a page of comments to v.
func (v *PostView) Detail(comments []*CommentView) *PostDetailView {
	if comments == nil {
		comments = []*CommentView{}
	}
	return &PostDetailView{PostView: v, Comments: comments}
}

// View renders c with the given author.
func (c *Comment) View(author AuthorView) *CommentView {
	return &CommentView{
		ID:        c.ID,
		PostID:    c.PostID,
		Content:   c.Content,
		Author:    author,
		CreatedAt: c.CreatedAt,
		UpdatedAt: c.UpdatedAt,
	}
}
