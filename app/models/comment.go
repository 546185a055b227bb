package models

import (
	"strings"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Validate checks if the comment meets all validation requirements
func (c *Comment) Validate() error {
	return validate.Struct(c)
}

// BeforeCreate trims the content and assigns the id and timestamps.
func (c *Comment) BeforeCreate() {
	c.Content = strings.TrimSpace(c.Content)
	if c.ID.IsZero() {
		c.ID = primitive.NewObjectID()
	}
	if c.CreatedAt.IsZero() {
		c.CreatedAt = Now()
	}
	c.UpdatedAt = c.CreatedAt
}

// OwnedBy reports whether userID wrote the comment.
func (c *Comment) OwnedBy(userID primitive.ObjectID) bool {
	return c.UserID == userID
}
