package repositories

import (
	"context"
	"fmt"

	"microsocial/app/models"

	"github.com/dgraph-io/badger/v4"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// BadgerCommentRepository implements CommentRepository using BadgerDB.
// Comments live under their post's key prefix so a thread is one range scan.
type BadgerCommentRepository struct {
	db *badger.DB
}

// NewBadgerCommentRepository creates a new BadgerCommentRepository
func NewBadgerCommentRepository(db *badger.DB) *BadgerCommentRepository {
	return &BadgerCommentRepository{db: db}
}

// Create stores a new comment and its id index entry. It returns
// ErrNotFound when the post does not exist at commit time.
func (r *BadgerCommentRepository) Create(ctx context.Context, comment *models.Comment) error {
	if comment.ID.IsZero() {
		comment.ID = primitive.NewObjectID()
	}
	return update(ctx, r.db, func(txn *badger.Txn) error {
		if err := requirePost(txn, comment.PostID); err != nil {
			return err
		}
		if err := setEntity(txn, commentKey(comment.PostID, comment.ID), comment); err != nil {
			return err
		}
		return txn.Set(commentIndexKey(comment.ID), comment.PostID[:])
	})
}

// GetOwned retrieves a comment only if ownerID wrote it
func (r *BadgerCommentRepository) GetOwned(ctx context.Context, id, ownerID primitive.ObjectID) (*models.Comment, error) {
	var comment models.Comment
	err := view(ctx, r.db, func(txn *badger.Txn) error {
		postID, err := getID(txn, commentIndexKey(id))
		if err != nil {
			return err
		}
		return getEntity(txn, commentKey(postID, id), &comment)
	})
	if err != nil {
		return nil, err
	}
	if !comment.OwnedBy(ownerID) {
		return nil, ErrNotFound
	}
	return &comment, nil
}

// ListByPost retrieves a page of a post's comments, oldest first
func (r *BadgerCommentRepository) ListByPost(ctx context.Context, postID primitive.ObjectID, skip, limit int) ([]*models.Comment, error) {
	comments := []*models.Comment{}
	err := view(ctx, r.db, func(txn *badger.Txn) error {
		return scanPrefix(ctx, txn, commentPrefix(postID), false, skip, limit, func(item *badger.Item) error {
			var comment models.Comment
			if err := item.Value(func(val []byte) error {
				return unmarshalEntity(val, &comment)
			}); err != nil {
				return fmt.Errorf("failed to read comment %q: %w", item.Key(), err)
			}
			comments = append(comments, &comment)
			return nil
		})
	})
	if err != nil {
		return nil, err
	}
	return comments, nil
}

// CountByPost returns the number of comments on a post
func (r *BadgerCommentRepository) CountByPost(ctx context.Context, postID primitive.ObjectID) (int, error) {
	var n int
	err := view(ctx, r.db, func(txn *badger.Txn) error {
		var err error
		n, err = countPrefix(ctx, txn, commentPrefix(postID))
		return err
	})
	return n, err
}

// Delete removes a comment and its index entry
func (r *BadgerCommentRepository) Delete(ctx context.Context, comment *models.Comment) error {
	return update(ctx, r.db, func(txn *badger.Txn) error {
		key := commentKey(comment.PostID, comment.ID)
		ok, err := exists(txn, key)
		if err != nil {
			return err
		}
		if !ok {
			return ErrNotFound
		}
		if err := txn.Delete(commentIndexKey(comment.ID)); err != nil {
			return err
		}
		return txn.Delete(key)
	})
}

// DeleteByPost removes every comment on a post and returns how many were removed
func (r *BadgerCommentRepository) DeleteByPost(ctx context.Context, postID primitive.ObjectID) (int, error) {
	prefix := commentPrefix(postID)
	var keys [][]byte
	err := view(ctx, r.db, func(txn *badger.Txn) error {
		var err error
		keys, err = collectKeys(ctx, txn, prefix)
		return err
	})
	if err != nil {
		return 0, err
	}

	deletes := make([][]byte, 0, 2*len(keys))
	for _, key := range keys {
		id, err := idFromKeySuffix(key, prefix)
		if err != nil {
			return 0, fmt.Errorf("corrupt comment key %q: %w", key, err)
		}
		deletes = append(deletes, commentIndexKey(id), key)
	}
	if err := deleteKeys(r.db, deletes); err != nil {
		return 0, err
	}
	return len(keys), nil
}
