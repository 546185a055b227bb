package services

import (
	"context"
	"fmt"

	"microsocial/app/metrics"
	"microsocial/app/models"
	"microsocial/app/pagination"
	"microsocial/app/repositories"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// CommentService handles business logic for comments
type CommentService struct {
	comments repositories.CommentRepository
	posts    repositories.PostRepository
	counter  *CounterCoordinator
	authors  *AuthorCache
	metrics  *metrics.Metrics
}

// NewCommentService creates a new CommentService
func NewCommentService(comments repositories.CommentRepository, posts repositories.PostRepository, counter *CounterCoordinator, authors *AuthorCache, m *metrics.Metrics) *CommentService {
	return &CommentService{
		comments: comments,
		posts:    posts,
		counter:  counter,
		authors:  authors,
		metrics:  m,
	}
}

// Add attaches a comment by userID to a post and increments the post's
// comment counter. It returns the comment and the new counter value.
func (s *CommentService) Add(ctx context.Context, userID, postID primitive.ObjectID, content string) (*models.CommentView, int, error) {
	comment := &models.Comment{PostID: postID, UserID: userID, Content: content}
	comment.BeforeCreate()
	if err := comment.Validate(); err != nil {
		return nil, 0, invalid(err)
	}

	if _, err := s.posts.GetByID(ctx, postID); err != nil {
		return nil, 0, notFound(err, "post")
	}
	if err := s.comments.Create(ctx, comment); err != nil {
		return nil, 0, notFound(fmt.Errorf("create comment: %w", err), "post")
	}
	s.metrics.Comments.WithLabelValues("create").Inc()

	count, err := s.counter.Adjust(ctx, postID, models.CommentCounter, 1)
	if err != nil {
		return nil, 0, err
	}

	author, err := s.authors.Get(ctx, userID)
	if err != nil {
		return nil, 0, err
	}
	return comment.View(author), count, nil
}

// List returns a page of a post's comments, oldest first. A missing post
// yields an empty page.
func (s *CommentService) List(ctx context.Context, postID primitive.ObjectID, p pagination.Params) (*pagination.Page[*models.CommentView], error) {
	page, err := pagination.Fetch(ctx, p,
		func(ctx context.Context, skip, limit int) ([]*models.Comment, error) {
			return s.comments.ListByPost(ctx, postID, skip, limit)
		},
		func(ctx context.Context) (int, error) {
			return s.comments.CountByPost(ctx, postID)
		},
	)
	if err != nil {
		return nil, fmt.Errorf("list comments: %w", err)
	}
	views, err := renderComments(ctx, s.authors, page.Items)
	if err != nil {
		return nil, err
	}
	return &pagination.Page[*models.CommentView]{Items: views, Meta: page.Meta}, nil
}

// Delete removes a comment written by userID and decrements the post's
// comment counter. It returns the new counter value.
func (s *CommentService) Delete(ctx context.Context, userID, commentID primitive.ObjectID) (int, error) {
	comment, err := s.comments.GetOwned(ctx, commentID, userID)
	if err != nil {
		return 0, notFound(err, "comment")
	}
	if err := s.comments.Delete(ctx, comment); err != nil {
		return 0, notFound(err, "comment")
	}
	s.metrics.Comments.WithLabelValues("delete").Inc()

	return s.counter.Adjust(ctx, comment.PostID, models.CommentCounter, -1)
}

func renderComments(ctx context.Context, authors *AuthorCache, comments []*models.Comment) ([]*models.CommentView, error) {
	views := make([]*models.CommentView, len(comments))
	for i, c := range comments {
		author, err := authors.Get(ctx, c.UserID)
		if err != nil {
			return nil, err
		}
		views[i] = c.View(author)
	}
	return views, nil
}
