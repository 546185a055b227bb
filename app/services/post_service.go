package services

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"microsocial/app/models"
	"microsocial/app/pagination"
	"microsocial/app/repositories"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// PostDetail is a post with the requested page of its comments.
type PostDetail struct {
	Post     *models.PostDetailView
	Comments pagination.Meta
}

// PostService handles business logic for posts
type PostService struct {
	posts    repositories.PostRepository
	comments repositories.CommentRepository
	likes    repositories.LikeRepository
	authors  *AuthorCache
	logger   *slog.Logger
}

// NewPostService creates a new PostService
func NewPostService(posts repositories.PostRepository, comments repositories.CommentRepository, likes repositories.LikeRepository, authors *AuthorCache, logger *slog.Logger) *PostService {
	return &PostService{
		posts:    posts,
		comments: comments,
		likes:    likes,
		authors:  authors,
		logger:   logger,
	}
}

// Create validates and stores a new post authored by userID
func (s *PostService) Create(ctx context.Context, userID primitive.ObjectID, content string) (*models.PostView, error) {
	post := &models.Post{UserID: userID, Content: content}
	post.BeforeCreate()
	if err := post.Validate(); err != nil {
		return nil, invalid(err)
	}

	if err := s.posts.Create(ctx, post); err != nil {
		return nil, fmt.Errorf("create post: %w", err)
	}

	author, err := s.authors.Get(ctx, userID)
	if err != nil {
		return nil, err
	}
	return post.View(author, false), nil
}

// Get returns a post as seen by viewerID together with one page of comments
func (s *PostService) Get(ctx context.Context, viewerID, postID primitive.ObjectID, p pagination.Params) (*PostDetail, error) {
	post, err := s.posts.GetByID(ctx, postID)
	if err != nil {
		return nil, notFound(err, "post")
	}

	views, err := s.render(ctx, viewerID, []*models.Post{post})
	if err != nil {
		return nil, err
	}

	page, err := pagination.Fetch(ctx, p,
		func(ctx context.Context, skip, limit int) ([]*models.Comment, error) {
			return s.comments.ListByPost(ctx, postID, skip, limit)
		},
		func(ctx context.Context) (int, error) {
			return s.comments.CountByPost(ctx, postID)
		},
	)
	if err != nil {
		return nil, fmt.Errorf("load comments: %w", err)
	}
	comments, err := renderComments(ctx, s.authors, page.Items)
	if err != nil {
		return nil, err
	}

	return &PostDetail{Post: views[0].Detail(comments), Comments: page.Meta}, nil
}

// Feed returns every post, newest first
func (s *PostService) Feed(ctx context.Context, viewerID primitive.ObjectID, p pagination.Params) (*pagination.Page[*models.PostView], error) {
	return s.list(ctx, viewerID, p, s.posts.List, s.posts.Count)
}

// ListByAuthor returns one user's posts, newest first
func (s *PostService) ListByAuthor(ctx context.Context, viewerID, authorID primitive.ObjectID, p pagination.Params) (*pagination.Page[*models.PostView], error) {
	return s.list(ctx, viewerID, p,
		func(ctx context.Context, skip, limit int) ([]*models.Post, error) {
			return s.posts.ListByAuthor(ctx, authorID, skip, limit)
		},
		func(ctx context.Context) (int, error) {
			return s.posts.CountByAuthor(ctx, authorID)
		},
	)
}

func (s *PostService) list(ctx context.Context, viewerID primitive.ObjectID, p pagination.Params, list pagination.ListFunc[*models.Post], count pagination.CountFunc) (*pagination.Page[*models.PostView], error) {
	page, err := pagination.Fetch(ctx, p, list, count)
	if err != nil {
		return nil, fmt.Errorf("list posts: %w", err)
	}
	views, err := s.render(ctx, viewerID, page.Items)
	if err != nil {
		return nil, err
	}
	return &pagination.Page[*models.PostView]{Items: views, Meta: page.Meta}, nil
}

// Update replaces the content of a post owned by userID
func (s *PostService) Update(ctx context.Context, userID, postID primitive.ObjectID, content string) (*models.PostView, error) {
	check := &models.Post{Content: strings.TrimSpace(content)}
	if err := check.Validate(); err != nil {
		return nil, invalid(err)
	}

	post, err := s.posts.UpdateContent(ctx, postID, userID, check.Content)
	if err != nil {
		return nil, notFound(err, "post")
	}

	views, err := s.render(ctx, userID, []*models.Post{post})
	if err != nil {
		return nil, err
	}
	return views[0], nil
}

// Delete removes a post owned by userID along with its likes and comments
func (s *PostService) Delete(ctx context.Context, userID, postID primitive.ObjectID) error {
	if _, err := s.posts.GetOwned(ctx, postID, userID); err != nil {
		return notFound(err, "post")
	}

	// The post goes first so likes and comments racing the delete either
	// fail their post check or commit before the relation scans below.
	if err := s.posts.Delete(ctx, postID); err != nil {
		return notFound(err, "post")
	}
	likes, err := s.likes.DeleteByPost(ctx, postID)
	if err != nil {
		return fmt.Errorf("delete likes of post %s: %w", postID.Hex(), err)
	}
	comments, err := s.comments.DeleteByPost(ctx, postID)
	if err != nil {
		return fmt.Errorf("delete comments of post %s: %w", postID.Hex(), err)
	}

	s.logger.DebugContext(ctx, "post deleted",
		"post_id", postID.Hex(),
		"likes_removed", likes,
		"comments_removed", comments,
	)
	return nil
}

// render builds views for posts as seen by viewerID.
func (s *PostService) render(ctx context.Context, viewerID primitive.ObjectID, posts []*models.Post) ([]*models.PostView, error) {
	views := make([]*models.PostView, len(posts))
	for i, post := range posts {
		author, err := s.authors.Get(ctx, post.UserID)
		if err != nil {
			return nil, err
		}
		liked, err := s.likes.Exists(ctx, post.ID, viewerID)
		if err != nil {
			return nil, fmt.Errorf("check like on post %s: %w", post.ID.Hex(), err)
		}
		views[i] = post.View(author, liked)
	}
	return views, nil
}
