package repositories

import (
	"context"

	"microsocial/app/models"

	"github.com/dgraph-io/badger/v4"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// BadgerLikeRepository implements LikeRepository using BadgerDB. The key
// like:<post>:<user> makes each pair unique.
type BadgerLikeRepository struct {
	db *badger.DB
}

// NewBadgerLikeRepository creates a new BadgerLikeRepository
func NewBadgerLikeRepository(db *badger.DB) *BadgerLikeRepository {
	return &BadgerLikeRepository{db: db}
}

// Toggle inserts the like if absent or removes it if present, in a single
// transaction. It reports whether the like exists afterwards, and returns
// ErrNotFound when the post does not exist at commit time.
func (r *BadgerLikeRepository) Toggle(ctx context.Context, postID, userID primitive.ObjectID) (bool, error) {
	var liked bool
	err := update(ctx, r.db, func(txn *badger.Txn) error {
		if err := requirePost(txn, postID); err != nil {
			return err
		}
		key := likeKey(postID, userID)
		ok, err := exists(txn, key)
		if err != nil {
			return err
		}
		if ok {
			liked = false
			return txn.Delete(key)
		}
		liked = true
		return setEntity(txn, key, &models.Like{PostID: postID, UserID: userID, CreatedAt: models.Now()})
	})
	return liked, err
}

// Exists reports whether userID likes postID
func (r *BadgerLikeRepository) Exists(ctx context.Context, postID, userID primitive.ObjectID) (bool, error) {
	var ok bool
	err := view(ctx, r.db, func(txn *badger.Txn) error {
		var err error
		ok, err = exists(txn, likeKey(postID, userID))
		return err
	})
	return ok, err
}

// CountByPost returns the number of likes on a post
func (r *BadgerLikeRepository) CountByPost(ctx context.Context, postID primitive.ObjectID) (int, error) {
	var n int
	err := view(ctx, r.db, func(txn *badger.Txn) error {
		var err error
		n, err = countPrefix(ctx, txn, likePrefix(postID))
		return err
	})
	return n, err
}

// DeleteByPost removes every like on a post and returns how many were removed
func (r *BadgerLikeRepository) DeleteByPost(ctx context.Context, postID primitive.ObjectID) (int, error) {
	var keys [][]byte
	err := view(ctx, r.db, func(txn *badger.Txn) error {
		var err error
		keys, err = collectKeys(ctx, txn, likePrefix(postID))
		return err
	})
	if err != nil {
		return 0, err
	}

	if err := deleteKeys(r.db, keys); err != nil {
		return 0, err
	}
	return len(keys), nil
}
