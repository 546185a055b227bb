package models

import (
	"strings"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Validate checks if the post meets all validation requirements
func (p *Post) Validate() error {
	return validate.Struct(p)
}

// BeforeCreate trims the content and assigns the id and timestamps.
func (p *Post) BeforeCreate() {
	p.Content = strings.TrimSpace(p.Content)
	if p.ID.IsZero() {
		p.ID = primitive.NewObjectID()
	}
	if p.CreatedAt.IsZero() {
		p.CreatedAt = Now()
	}
	p.UpdatedAt = p.CreatedAt
}

// Counter returns the value of the named counter.
func (p *Post) Counter(field CounterField) int {
	switch field {
	case LikeCounter:
		return p.LikeCount
	case CommentCounter:
		return p.CommentCount
	}
	return 0
}

// SetCounter stores v in the named counter, flooring at zero.
func (p *Post) SetCounter(field CounterField, v int) {
	if v < 0 {
		v = 0
	}
	switch field {
	case LikeCounter:
		p.LikeCount = v
	case CommentCounter:
		p.CommentCount = v
	}
}

// OwnedBy reports whether userID authored the post.
func (p *Post) OwnedBy(userID primitive.ObjectID) bool {
	return p.UserID == userID
}
