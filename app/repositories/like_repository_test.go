package repositories

import (
	"context"
	"testing"

	"microsocial/app/models"

	"github.com/dgraph-io/badger/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestBadgerLikeRepository(t *testing.T) {
	db := setupTestDB(t)
	repo := NewBadgerLikeRepository(db)
	posts := NewBadgerPostRepository(db)
	ctx := context.Background()
	alice := primitive.NewObjectID()
	bob := primitive.NewObjectID()
	postID := createTestPost(t, posts, alice, "liked").ID
	otherPost := createTestPost(t, posts, bob, "other").ID

	t.Run("toggle alternates", func(t *testing.T) {
		liked, err := repo.Toggle(ctx, postID, alice)
		require.NoError(t, err)
		assert.True(t, liked)

		ok, err := repo.Exists(ctx, postID, alice)
		require.NoError(t, err)
		assert.True(t, ok)

		liked, err = repo.Toggle(ctx, postID, alice)
		require.NoError(t, err)
		assert.False(t, liked)

		ok, err = repo.Exists(ctx, postID, alice)
		require.NoError(t, err)
		assert.False(t, ok)
	})

	t.Run("count and delete by post", func(t *testing.T) {
		_, err := repo.Toggle(ctx, postID, alice)
		require.NoError(t, err)
		_, err = repo.Toggle(ctx, postID, bob)
		require.NoError(t, err)
		_, err = repo.Toggle(ctx, otherPost, bob)
		require.NoError(t, err)

		n, err := repo.CountByPost(ctx, postID)
		require.NoError(t, err)
		assert.Equal(t, 2, n)

		removed, err := repo.DeleteByPost(ctx, postID)
		require.NoError(t, err)
		assert.Equal(t, 2, removed)

		n, err = repo.CountByPost(ctx, postID)
		require.NoError(t, err)
		assert.Zero(t, n)
	})

	t.Run("missing post", func(t *testing.T) {
		missing := primitive.NewObjectID()
		_, err := repo.Toggle(ctx, missing, alice)
		assert.ErrorIs(t, err, ErrNotFound)

		ok, err := repo.Exists(ctx, missing, alice)
		require.NoError(t, err)
		assert.False(t, ok)
	})

	t.Run("deleted post", func(t *testing.T) {
		require.NoError(t, posts.Delete(ctx, otherPost))

		_, err := repo.Toggle(ctx, otherPost, alice)
		assert.ErrorIs(t, err, ErrNotFound)

		ok, err := repo.Exists(ctx, otherPost, alice)
		require.NoError(t, err)
		assert.False(t, ok)
	})
}

func TestLikeToggleConflictsWithPostDelete(t *testing.T) {
	db := setupTestDB(t)
	posts := NewBadgerPostRepository(db)
	post := createTestPost(t, posts, primitive.NewObjectID(), "racing")
	fan := primitive.NewObjectID()

	// A toggle that saw the post must not commit once the post is gone.
	txn := db.NewTransaction(true)
	defer txn.Discard()
	require.NoError(t, requirePost(txn, post.ID))
	require.NoError(t, setEntity(txn, likeKey(post.ID, fan), &models.Like{PostID: post.ID, UserID: fan}))

	require.NoError(t, posts.Delete(context.Background(), post.ID))
	assert.ErrorIs(t, txn.Commit(), badger.ErrConflict)

	n, err := NewBadgerLikeRepository(db).CountByPost(context.Background(), post.ID)
	require.NoError(t, err)
	assert.Zero(t, n)
}
