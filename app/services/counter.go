package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"microsocial/app/metrics"
	"microsocial/app/models"
	"microsocial/app/repositories"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// CounterCoordinator adjusts a post's denormalized counters after the like or
// comment write they summarize has committed. It is the only writer of
// counter deltas.
type CounterCoordinator struct {
	posts   repositories.PostRepository
	logger  *slog.Logger
	metrics *metrics.Metrics
}

// NewCounterCoordinator creates a CounterCoordinator
func NewCounterCoordinator(posts repositories.PostRepository, logger *slog.Logger, m *metrics.Metrics) *CounterCoordinator {
	return &CounterCoordinator{posts: posts, logger: logger, metrics: m}
}

// Adjust applies delta to field and returns the new value. The relation write
// is already durable when this runs, so a failure here leaves the counter
// behind the relation until the next recount.
func (c *CounterCoordinator) Adjust(ctx context.Context, postID primitive.ObjectID, field models.CounterField, delta int) (int, error) {
	v, err := c.posts.AdjustCounter(ctx, postID, field, delta)
	if errors.Is(err, repositories.ErrNotFound) {
		// Deleted after the relation committed; the delete cascade removes it.
		c.logger.DebugContext(ctx, "post deleted before counter adjustment",
			"post_id", postID.Hex(),
			"field", string(field),
		)
		return 0, notFound(err, "post")
	}
	if err != nil {
		c.metrics.CounterFailures.WithLabelValues(string(field)).Inc()
		c.logger.ErrorContext(ctx, "counter adjustment failed, counter is stale",
			"post_id", postID.Hex(),
			"field", string(field),
			"delta", delta,
			"error", err,
		)
		return 0, fmt.Errorf("adjust %s on post %s: %w", field, postID.Hex(), err)
	}
	return v, nil
}
