package services

import (
	"context"
	"errors"
	"fmt"

	"microsocial/app/models"
	"microsocial/app/repositories"

	lru "github.com/hashicorp/golang-lru/v2"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// AuthorCache resolves user ids to the author summary embedded in posts and
// comments, keeping a bounded number of entries in memory.
type AuthorCache struct {
	users repositories.UserRepository
	cache *lru.Cache[primitive.ObjectID, models.AuthorView]
}

// NewAuthorCache creates a cache holding at most size authors.
func NewAuthorCache(users repositories.UserRepository, size int) (*AuthorCache, error) {
	cache, err := lru.New[primitive.ObjectID, models.AuthorView](size)
	if err != nil {
		return nil, fmt.Errorf("create author cache: %w", err)
	}
	return &AuthorCache{users: users, cache: cache}, nil
}

// Get returns the author summary for id. An unknown user yields a summary
// carrying only the id.
func (c *AuthorCache) Get(ctx context.Context, id primitive.ObjectID) (models.AuthorView, error) {
	if a, ok := c.cache.Get(id); ok {
		return a, nil
	}
	u, err := c.users.GetByID(ctx, id)
	if errors.Is(err, repositories.ErrNotFound) {
		return models.AuthorView{ID: id}, nil
	}
	if err != nil {
		return models.AuthorView{}, fmt.Errorf("load author %s: %w", id.Hex(), err)
	}
	a := u.Author()
	c.cache.Add(id, a)
	return a, nil
}

// Invalidate drops the cached entry for id.
func (c *AuthorCache) Invalidate(id primitive.ObjectID) {
	c.cache.Remove(id)
}

// Len reports the number of cached authors.
func (c *AuthorCache) Len() int {
	return c.cache.Len()
}
