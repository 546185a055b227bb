package controllers

import (
	"log/slog"
	"net/http"

	"microsocial/app/models"
	"microsocial/app/pagination"
	"microsocial/app/services"
)

// CommentController handles HTTP requests for comments
type CommentController struct {
	responder
	comments *services.CommentService
}

// NewCommentController creates a new CommentController
func NewCommentController(comments *services.CommentService, logger *slog.Logger) *CommentController {
	return &CommentController{responder: responder{logger: logger}, comments: comments}
}

// Create adds a comment to a post
func (cc *CommentController) Create(w http.ResponseWriter, r *http.Request) {
	userID, ok := cc.caller(w, r)
	if !ok {
		return
	}
	postID, ok := cc.pathID(w, r, "postId", "post")
	if !ok {
		return
	}
	var req models.ContentRequest
	if !cc.decodeJSON(w, r, &req) {
		return
	}

	comment, count, err := cc.comments.Add(r.Context(), userID, postID, req.Content)
	if err != nil {
		cc.sendServiceError(w, r, err)
		return
	}
	cc.sendJSON(w, http.StatusCreated, "Comment added successfully", map[string]interface{}{
		"comment":      comment,
		"commentCount": count,
	})
}

// Index lists a post's comments, oldest first
func (cc *CommentController) Index(w http.ResponseWriter, r *http.Request) {
	postID, ok := cc.pathID(w, r, "postId", "post")
	if !ok {
		return
	}

	page, err := cc.comments.List(r.Context(), postID, pagination.FromQuery(r.URL.Query()))
	if err != nil {
		cc.sendServiceError(w, r, err)
		return
	}
	cc.sendJSON(w, http.StatusOK, "Comments retrieved successfully", map[string]interface{}{
		"comments":   page.Items,
		"pagination": page.Meta,
	})
}

// Delete removes one of the caller's comments
func (cc *CommentController) Delete(w http.ResponseWriter, r *http.Request) {
	userID, ok := cc.caller(w, r)
	if !ok {
		return
	}
	commentID, ok := cc.pathID(w, r, "id", "comment")
	if !ok {
		return
	}

	count, err := cc.comments.Delete(r.Context(), userID, commentID)
	if err != nil {
		cc.sendServiceError(w, r, err)
		return
	}
	cc.sendJSON(w, http.StatusOK, "Comment deleted successfully", map[string]interface{}{
		"commentCount": count,
	})
}
