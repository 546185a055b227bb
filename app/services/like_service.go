package services

import (
	"context"
	"fmt"

	"microsocial/app/metrics"
	"microsocial/app/models"
	"microsocial/app/repositories"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// ToggleResult is the state of a like after a toggle.
type ToggleResult struct {
	PostID    primitive.ObjectID `json:"postId"`
	IsLiked   bool               `json:"isLiked"`
	LikeCount int                `json:"likeCount"`
}

// LikeService toggles likes and keeps like counters in step
type LikeService struct {
	likes   repositories.LikeRepository
	posts   repositories.PostRepository
	counter *CounterCoordinator
	metrics *metrics.Metrics
}

// NewLikeService creates a new LikeService
func NewLikeService(likes repositories.LikeRepository, posts repositories.PostRepository, counter *CounterCoordinator, m *metrics.Metrics) *LikeService {
	return &LikeService{likes: likes, posts: posts, counter: counter, metrics: m}
}

// Toggle likes the post if userID has not liked it yet and unlikes it
// otherwise
func (s *LikeService) Toggle(ctx context.Context, userID, postID primitive.ObjectID) (*ToggleResult, error) {
	if _, err := s.posts.GetByID(ctx, postID); err != nil {
		return nil, notFound(err, "post")
	}

	liked, err := s.likes.Toggle(ctx, postID, userID)
	if err != nil {
		return nil, notFound(fmt.Errorf("toggle like: %w", err), "post")
	}

	delta, state := -1, "unliked"
	if liked {
		delta, state = 1, "liked"
	}
	s.metrics.LikeToggles.WithLabelValues(state).Inc()

	count, err := s.counter.Adjust(ctx, postID, models.LikeCounter, delta)
	if err != nil {
		return nil, err
	}
	return &ToggleResult{PostID: postID, IsLiked: liked, LikeCount: count}, nil
}
