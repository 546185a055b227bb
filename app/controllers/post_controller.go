package controllers

import (
	"log/slog"
	"net/http"

	"microsocial/app/models"
	"microsocial/app/pagination"
	"microsocial/app/services"
)

// PostController handles HTTP requests for posts
type PostController struct {
	responder
	posts *services.PostService
}

// NewPostController creates a new PostController
func NewPostController(posts *services.PostService, logger *slog.Logger) *PostController {
	return &PostController{responder: responder{logger: logger}, posts: posts}
}

// Create handles creating a new post
func (pc *PostController) Create(w http.ResponseWriter, r *http.Request) {
	userID, ok := pc.caller(w, r)
	if !ok {
		return
	}
	var req models.ContentRequest
	if !pc.decodeJSON(w, r, &req) {
		return
	}

	post, err := pc.posts.Create(r.Context(), userID, req.Content)
	if err != nil {
		pc.sendServiceError(w, r, err)
		return
	}
	pc.sendJSON(w, http.StatusCreated, "Post created successfully", post)
}

// Feed lists all posts, newest first
func (pc *PostController) Feed(w http.ResponseWriter, r *http.Request) {
	userID, ok := pc.caller(w, r)
	if !ok {
		return
	}

	page, err := pc.posts.Feed(r.Context(), userID, pagination.FromQuery(r.URL.Query()))
	if err != nil {
		pc.sendServiceError(w, r, err)
		return
	}
	pc.sendJSON(w, http.StatusOK, "Feed retrieved successfully", map[string]interface{}{
		"posts":      page.Items,
		"pagination": page.Meta,
	})
}

// ByUser lists one user's posts
func (pc *PostController) ByUser(w http.ResponseWriter, r *http.Request) {
	viewerID, ok := pc.caller(w, r)
	if !ok {
		return
	}
	authorID, ok := pc.pathID(w, r, "id", "user")
	if !ok {
		return
	}

	page, err := pc.posts.ListByAuthor(r.Context(), viewerID, authorID, pagination.FromQuery(r.URL.Query()))
	if err != nil {
		pc.sendServiceError(w, r, err)
		return
	}
	pc.sendJSON(w, http.StatusOK, "User posts retrieved successfully", map[string]interface{}{
		"posts":      page.Items,
		"pagination": page.Meta,
	})
}

// Show handles displaying a single post with a page of its comments
func (pc *PostController) Show(w http.ResponseWriter, r *http.Request) {
	viewerID, ok := pc.caller(w, r)
	if !ok {
		return
	}
	postID, ok := pc.pathID(w, r, "id", "post")
	if !ok {
		return
	}

	detail, err := pc.posts.Get(r.Context(), viewerID, postID, pagination.FromQuery(r.URL.Query()))
	if err != nil {
		pc.sendServiceError(w, r, err)
		return
	}
	pc.sendJSON(w, http.StatusOK, "Post retrieved successfully", map[string]interface{}{
		"post":       detail.Post,
		"pagination": detail.Comments,
	})
}

// Update handles editing an existing post
func (pc *PostController) Update(w http.ResponseWriter, r *http.Request) {
	userID, ok := pc.caller(w, r)
	if !ok {
		return
	}
	postID, ok := pc.pathID(w, r, "id", "post")
	if !ok {
		return
	}
	var req models.ContentRequest
	if !pc.decodeJSON(w, r, &req) {
		return
	}

	post, err := pc.posts.Update(r.Context(), userID, postID, req.Content)
	if err != nil {
		pc.sendServiceError(w, r, err)
		return
	}
	pc.sendJSON(w, http.StatusOK, "Post updated successfully", post)
}

// Delete handles deleting a post
func (pc *PostController) Delete(w http.ResponseWriter, r *http.Request) {
	userID, ok := pc.caller(w, r)
	if !ok {
		return
	}
	postID, ok := pc.pathID(w, r, "id", "post")
	if !ok {
		return
	}

	if err := pc.posts.Delete(r.Context(), userID, postID); err != nil {
		pc.sendServiceError(w, r, err)
		return
	}
	pc.sendJSON(w, http.StatusOK, "Post deleted successfully", nil)
}
