package services

import (
	"context"
	"fmt"
	"log/slog"

	"microsocial/app/metrics"
	"microsocial/app/models"
	"microsocial/app/repositories"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// RecountReport summarizes a recount run.
type RecountReport struct {
	Scanned  int
	Repaired int
}

// Reconciler recomputes post counters from the like and comment relations.
type Reconciler struct {
	posts    repositories.PostRepository
	comments repositories.CommentRepository
	likes    repositories.LikeRepository
	logger   *slog.Logger
	metrics  *metrics.Metrics
}

// NewReconciler creates a new Reconciler
func NewReconciler(posts repositories.PostRepository, comments repositories.CommentRepository, likes repositories.LikeRepository, logger *slog.Logger, m *metrics.Metrics) *Reconciler {
	return &Reconciler{posts: posts, comments: comments, likes: likes, logger: logger, metrics: m}
}

// Recount walks every post and rewrites counters that disagree with the
// relations. Writes racing with a recount can leave a counter off until the
// next run.
func (r *Reconciler) Recount(ctx context.Context) (*RecountReport, error) {
	var ids []primitive.ObjectID
	err := r.posts.Each(ctx, func(p *models.Post) error {
		ids = append(ids, p.ID)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("scan posts: %w", err)
	}

	report := &RecountReport{}
	for _, id := range ids {
		if err := ctx.Err(); err != nil {
			return report, err
		}
		repaired, err := r.recountPost(ctx, id)
		if err != nil {
			return report, err
		}
		report.Scanned++
		if repaired {
			report.Repaired++
		}
	}

	r.logger.InfoContext(ctx, "recount finished", "scanned", report.Scanned, "repaired", report.Repaired)
	return report, nil
}

func (r *Reconciler) recountPost(ctx context.Context, id primitive.ObjectID) (bool, error) {
	post, err := r.posts.GetByID(ctx, id)
	if err != nil {
		// Deleted since the scan.
		if IsNotFound(notFound(err, "post")) {
			return false, nil
		}
		return false, err
	}
	likes, err := r.likes.CountByPost(ctx, id)
	if err != nil {
		return false, fmt.Errorf("count likes of post %s: %w", id.Hex(), err)
	}
	comments, err := r.comments.CountByPost(ctx, id)
	if err != nil {
		return false, fmt.Errorf("count comments of post %s: %w", id.Hex(), err)
	}
	if post.LikeCount == likes && post.CommentCount == comments {
		return false, nil
	}

	if err := r.posts.SetCounters(ctx, id, likes, comments); err != nil {
		return false, fmt.Errorf("set counters of post %s: %w", id.Hex(), err)
	}
	r.metrics.CounterRepairs.Inc()
	r.logger.WarnContext(ctx, "post counters repaired",
		"post_id", id.Hex(),
		"like_count", post.LikeCount, "likes", likes,
		"comment_count", post.CommentCount, "comments", comments,
	)
	return true, nil
}
