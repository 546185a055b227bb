package repositories

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/sethvargo/go-retry"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

const (
	// Key prefixes for different entity types
	UserKeyPrefix    = "user:"
	PostKeyPrefix    = "post:"
	CommentKeyPrefix = "comment:"
	LikeKeyPrefix    = "like:"

	// Secondary index prefixes
	UsernameIndexPrefix = "idx:username:"
	EmailIndexPrefix    = "idx:email:"
	AuthorIndexPrefix   = "idx:author:"
	CommentIndexPrefix  = "idx:comment:"
)

var (
	ErrNotFound          = errors.New("record not found")
	ErrDuplicateUsername = errors.New("username already taken")
	ErrDuplicateEmail    = errors.New("email already registered")

	errStopScan = errors.New("stop scan")
)

const (
	maxConflictRetries = 16
	conflictBackoff    = time.Millisecond
	maxConflictBackoff = 50 * time.Millisecond
)

func userKey(id primitive.ObjectID) []byte {
	return []byte(UserKeyPrefix + id.Hex())
}

func postKey(id primitive.ObjectID) []byte {
	return []byte(PostKeyPrefix + id.Hex())
}

func authorIndexPrefix(userID primitive.ObjectID) []byte {
	return []byte(AuthorIndexPrefix + userID.Hex() + ":")
}

func authorIndexKey(userID, postID primitive.ObjectID) []byte {
	return append(authorIndexPrefix(userID), postID.Hex()...)
}

func commentPrefix(postID primitive.ObjectID) []byte {
	return []byte(CommentKeyPrefix + postID.Hex() + ":")
}

func commentKey(postID, commentID primitive.ObjectID) []byte {
	return append(commentPrefix(postID), commentID.Hex()...)
}

func commentIndexKey(commentID primitive.ObjectID) []byte {
	return []byte(CommentIndexPrefix + commentID.Hex())
}

func likePrefix(postID primitive.ObjectID) []byte {
	return []byte(LikeKeyPrefix + postID.Hex() + ":")
}

func likeKey(postID, userID primitive.ObjectID) []byte {
	return append(likePrefix(postID), userID.Hex()...)
}

// marshalEntity encodes an entity as a BSON document
func marshalEntity(entity interface{}) ([]byte, error) {
	data, err := bson.Marshal(entity)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal entity: %w", err)
	}
	return data, nil
}

// unmarshalEntity decodes a BSON document into an entity
func unmarshalEntity(data []byte, entity interface{}) error {
	if err := bson.Unmarshal(data, entity); err != nil {
		return fmt.Errorf("failed to unmarshal entity: %w", err)
	}
	return nil
}

// getEntity loads and decodes the document at key.
func getEntity(txn *badger.Txn, key []byte, entity interface{}) error {
	item, err := txn.Get(key)
	if errors.Is(err, badger.ErrKeyNotFound) {
		return ErrNotFound
	}
	if err != nil {
		return err
	}
	return item.Value(func(val []byte) error {
		return unmarshalEntity(val, entity)
	})
}

// setEntity encodes entity and stores it at key.
func setEntity(txn *badger.Txn, key []byte, entity interface{}) error {
	data, err := marshalEntity(entity)
	if err != nil {
		return err
	}
	return txn.Set(key, data)
}

// getID reads an object id stored as the value of an index key.
func getID(txn *badger.Txn, key []byte) (primitive.ObjectID, error) {
	var id primitive.ObjectID
	item, err := txn.Get(key)
	if errors.Is(err, badger.ErrKeyNotFound) {
		return id, ErrNotFound
	}
	if err != nil {
		return id, err
	}
	err = item.Value(func(val []byte) error {
		if len(val) != len(id) {
			return fmt.Errorf("corrupt index value at %q", key)
		}
		copy(id[:], val)
		return nil
	})
	return id, err
}

func idFromKeySuffix(key, prefix []byte) (primitive.ObjectID, error) {
	return primitive.ObjectIDFromHex(string(bytes.TrimPrefix(key, prefix)))
}

func exists(txn *badger.Txn, key []byte) (bool, error) {
	_, err := txn.Get(key)
	if errors.Is(err, badger.ErrKeyNotFound) {
		return false, nil
	}
	return err == nil, err
}

// requirePost fails with ErrNotFound unless the post exists. The read joins
// the transaction's conflict set, so a post deleted before commit aborts it.
func requirePost(txn *badger.Txn, postID primitive.ObjectID) error {
	ok, err := exists(txn, postKey(postID))
	if err != nil {
		return err
	}
	if !ok {
		return ErrNotFound
	}
	return nil
}

// scanPrefix visits the items under prefix in key order, or in reverse key
// order when reverse is set. The first skip items are passed over and at most
// limit items are handed to fn; a negative limit means no bound.
func scanPrefix(ctx context.Context, txn *badger.Txn, prefix []byte, reverse bool, skip, limit int, fn func(item *badger.Item) error) error {
	opts := badger.DefaultIteratorOptions
	opts.Prefix = prefix
	opts.Reverse = reverse
	opts.PrefetchValues = false
	it := txn.NewIterator(opts)
	defer it.Close()

	seek := prefix
	if reverse {
		seek = append(append([]byte{}, prefix...), 0xFF)
	}

	seen := 0
	for it.Seek(seek); it.ValidForPrefix(prefix); it.Next() {
		if err := ctx.Err(); err != nil {
			return err
		}
		if seen < skip {
			seen++
			continue
		}
		if limit >= 0 && seen >= skip+limit {
			break
		}
		if err := fn(it.Item()); err != nil {
			return err
		}
		seen++
	}
	return nil
}

// countPrefix counts the keys under prefix without reading values.
func countPrefix(ctx context.Context, txn *badger.Txn, prefix []byte) (int, error) {
	opts := badger.DefaultIteratorOptions
	opts.Prefix = prefix
	opts.PrefetchValues = false
	it := txn.NewIterator(opts)
	defer it.Close()

	n := 0
	for it.Rewind(); it.ValidForPrefix(prefix); it.Next() {
		if err := ctx.Err(); err != nil {
			return 0, err
		}
		n++
	}
	return n, nil
}

// collectKeys returns copies of every key under prefix.
func collectKeys(ctx context.Context, txn *badger.Txn, prefix []byte) ([][]byte, error) {
	var keys [][]byte
	err := scanPrefix(ctx, txn, prefix, false, 0, -1, func(item *badger.Item) error {
		keys = append(keys, item.KeyCopy(nil))
		return nil
	})
	return keys, err
}

// update runs fn in a read-write transaction, retrying with backoff when
// badger reports a conflict with a concurrent transaction.
func update(ctx context.Context, db *badger.DB, fn func(txn *badger.Txn) error) error {
	b := retry.NewExponential(conflictBackoff)
	b = retry.WithCappedDuration(maxConflictBackoff, b)
	b = retry.WithJitterPercent(20, b)
	b = retry.WithMaxRetries(maxConflictRetries, b)
	return retry.Do(ctx, b, func(ctx context.Context) error {
		err := db.Update(fn)
		if errors.Is(err, badger.ErrConflict) {
			return retry.RetryableError(err)
		}
		return err
	})
}

// view runs fn in a read-only transaction.
func view(ctx context.Context, db *badger.DB, fn func(txn *badger.Txn) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return db.View(fn)
}

// deleteKeys removes keys with a write batch. Batches are not transactional;
// a failure part way leaves the earlier deletes applied.
func deleteKeys(db *badger.DB, keys [][]byte) error {
	wb := db.NewWriteBatch()
	for _, key := range keys {
		if err := wb.Delete(key); err != nil {
			wb.Cancel()
			return err
		}
	}
	return wb.Flush()
}
