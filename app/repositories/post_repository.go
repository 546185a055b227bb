package repositories

import (
	"context"
	"fmt"

	"microsocial/app/models"

	"github.com/dgraph-io/badger/v4"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// BadgerPostRepository implements PostRepository using BadgerDB
type BadgerPostRepository struct {
	db *badger.DB
}

// NewBadgerPostRepository creates a new BadgerPostRepository
func NewBadgerPostRepository(db *badger.DB) *BadgerPostRepository {
	return &BadgerPostRepository{db: db}
}

// Create stores a new post together with its author index entry
func (r *BadgerPostRepository) Create(ctx context.Context, post *models.Post) error {
	if post.ID.IsZero() {
		post.ID = primitive.NewObjectID()
	}
	return update(ctx, r.db, func(txn *badger.Txn) error {
		if err := setEntity(txn, postKey(post.ID), post); err != nil {
			return err
		}
		return txn.Set(authorIndexKey(post.UserID, post.ID), nil)
	})
}

// GetByID retrieves a post by ID
func (r *BadgerPostRepository) GetByID(ctx context.Context, id primitive.ObjectID) (*models.Post, error) {
	var post models.Post
	err := view(ctx, r.db, func(txn *badger.Txn) error {
		return getEntity(txn, postKey(id), &post)
	})
	if err != nil {
		return nil, err
	}
	return &post, nil
}

// GetOwned retrieves a post only if ownerID authored it. A post owned by
// someone else is reported as ErrNotFound.
func (r *BadgerPostRepository) GetOwned(ctx context.Context, id, ownerID primitive.ObjectID) (*models.Post, error) {
	post, err := r.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !post.OwnedBy(ownerID) {
		return nil, ErrNotFound
	}
	return post, nil
}

// List retrieves a page of posts, newest first
func (r *BadgerPostRepository) List(ctx context.Context, skip, limit int) ([]*models.Post, error) {
	posts := []*models.Post{}
	err := view(ctx, r.db, func(txn *badger.Txn) error {
		return scanPrefix(ctx, txn, []byte(PostKeyPrefix), true, skip, limit, func(item *badger.Item) error {
			var post models.Post
			if err := item.Value(func(val []byte) error {
				return unmarshalEntity(val, &post)
			}); err != nil {
				return fmt.Errorf("failed to read post %q: %w", item.Key(), err)
			}
			posts = append(posts, &post)
			return nil
		})
	})
	if err != nil {
		return nil, err
	}
	return posts, nil
}

// Count returns the number of posts
func (r *BadgerPostRepository) Count(ctx context.Context) (int, error) {
	var n int
	err := view(ctx, r.db, func(txn *badger.Txn) error {
		var err error
		n, err = countPrefix(ctx, txn, []byte(PostKeyPrefix))
		return err
	})
	return n, err
}

// ListByAuthor retrieves a page of one user's posts, newest first
func (r *BadgerPostRepository) ListByAuthor(ctx context.Context, userID primitive.ObjectID, skip, limit int) ([]*models.Post, error) {
	posts := []*models.Post{}
	prefix := authorIndexPrefix(userID)
	err := view(ctx, r.db, func(txn *badger.Txn) error {
		return scanPrefix(ctx, txn, prefix, true, skip, limit, func(item *badger.Item) error {
			id, err := idFromKeySuffix(item.Key(), prefix)
			if err != nil {
				return fmt.Errorf("corrupt author index %q: %w", item.Key(), err)
			}
			var post models.Post
			if err := getEntity(txn, postKey(id), &post); err != nil {
				return err
			}
			posts = append(posts, &post)
			return nil
		})
	})
	if err != nil {
		return nil, err
	}
	return posts, nil
}

// CountByAuthor returns the number of posts written by userID
func (r *BadgerPostRepository) CountByAuthor(ctx context.Context, userID primitive.ObjectID) (int, error) {
	var n int
	err := view(ctx, r.db, func(txn *badger.Txn) error {
		var err error
		n, err = countPrefix(ctx, txn, authorIndexPrefix(userID))
		return err
	})
	return n, err
}

// UpdateContent replaces the content of a post owned by ownerID. Counters are
// read and written in the same transaction so a concurrent adjustment is
// never overwritten.
func (r *BadgerPostRepository) UpdateContent(ctx context.Context, id, ownerID primitive.ObjectID, content string) (*models.Post, error) {
	var post models.Post
	err := update(ctx, r.db, func(txn *badger.Txn) error {
		if err := getEntity(txn, postKey(id), &post); err != nil {
			return err
		}
		if !post.OwnedBy(ownerID) {
			return ErrNotFound
		}
		post.Content = content
		post.UpdatedAt = models.Now()
		return setEntity(txn, postKey(id), &post)
	})
	if err != nil {
		return nil, err
	}
	return &post, nil
}

// AdjustCounter adds delta to the named counter and returns the new value.
// The result is floored at zero.
func (r *BadgerPostRepository) AdjustCounter(ctx context.Context, id primitive.ObjectID, field models.CounterField, delta int) (int, error) {
	var value int
	err := update(ctx, r.db, func(txn *badger.Txn) error {
		var post models.Post
		if err := getEntity(txn, postKey(id), &post); err != nil {
			return err
		}
		post.SetCounter(field, post.Counter(field)+delta)
		value = post.Counter(field)
		return setEntity(txn, postKey(id), &post)
	})
	if err != nil {
		return 0, err
	}
	return value, nil
}

// SetCounters overwrites both counters of a post
func (r *BadgerPostRepository) SetCounters(ctx context.Context, id primitive.ObjectID, likes, comments int) error {
	return update(ctx, r.db, func(txn *badger.Txn) error {
		var post models.Post
		if err := getEntity(txn, postKey(id), &post); err != nil {
			return err
		}
		post.SetCounter(models.LikeCounter, likes)
		post.SetCounter(models.CommentCounter, comments)
		return setEntity(txn, postKey(id), &post)
	})
}

// Each calls fn for every post in creation order
func (r *BadgerPostRepository) Each(ctx context.Context, fn func(*models.Post) error) error {
	return view(ctx, r.db, func(txn *badger.Txn) error {
		return scanPrefix(ctx, txn, []byte(PostKeyPrefix), false, 0, -1, func(item *badger.Item) error {
			var post models.Post
			if err := item.Value(func(val []byte) error {
				return unmarshalEntity(val, &post)
			}); err != nil {
				return err
			}
			return fn(&post)
		})
	})
}

// Delete deletes a post and its author index entry
func (r *BadgerPostRepository) Delete(ctx context.Context, id primitive.ObjectID) error {
	return update(ctx, r.db, func(txn *badger.Txn) error {
		var post models.Post
		if err := getEntity(txn, postKey(id), &post); err != nil {
			return err
		}
		if err := txn.Delete(authorIndexKey(post.UserID, id)); err != nil {
			return err
		}
		return txn.Delete(postKey(id))
	})
}
