package controllers

import (
	"log/slog"
	"net/http"

	"microsocial/app/services"
)

// LikeController handles like toggles
type LikeController struct {
	responder
	likes *services.LikeService
}

// NewLikeController creates a new LikeController
func NewLikeController(likes *services.LikeService, logger *slog.Logger) *LikeController {
	return &LikeController{responder: responder{logger: logger}, likes: likes}
}

// Toggle likes or unlikes a post for the caller
func (lc *LikeController) Toggle(w http.ResponseWriter, r *http.Request) {
	userID, ok := lc.caller(w, r)
	if !ok {
		return
	}
	postID, ok := lc.pathID(w, r, "postId", "post")
	if !ok {
		return
	}

	res, err := lc.likes.Toggle(r.Context(), userID, postID)
	if err != nil {
		lc.sendServiceError(w, r, err)
		return
	}
	message := "Post unliked"
	if res.IsLiked {
		message = "Post liked"
	}
	lc.sendJSON(w, http.StatusOK, message, res)
}
