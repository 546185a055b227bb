package controllers

import (
	"log/slog"
	"net/http"

	"microsocial/app/models"
	"microsocial/app/pagination"
	"microsocial/app/services"
)

// UserController handles profiles and user search
type UserController struct {
	responder
	users *services.UserService
}

// NewUserController creates a new UserController
func NewUserController(users *services.UserService, logger *slog.Logger) *UserController {
	return &UserController{responder: responder{logger: logger}, users: users}
}

// Show returns a user's profile
func (c *UserController) Show(w http.ResponseWriter, r *http.Request) {
	userID, ok := c.pathID(w, r, "id", "user")
	if !ok {
		return
	}

	profile, err := c.users.Profile(r.Context(), userID)
	if err != nil {
		c.sendServiceError(w, r, err)
		return
	}
	c.sendJSON(w, http.StatusOK, "User profile retrieved successfully", profile)
}

// UpdateProfile edits the caller's profile
func (c *UserController) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	userID, ok := c.caller(w, r)
	if !ok {
		return
	}
	var update models.ProfileUpdate
	if !c.decodeJSON(w, r, &update) {
		return
	}

	user, err := c.users.UpdateProfile(r.Context(), userID, &update)
	if err != nil {
		c.sendServiceError(w, r, err)
		return
	}
	c.sendJSON(w, http.StatusOK, "Profile updated successfully", user)
}

// Search finds users by username or email
func (c *UserController) Search(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	page, err := c.users.Search(r.Context(), q.Get("query"), pagination.FromQuery(q))
	if err != nil {
		c.sendServiceError(w, r, err)
		return
	}
	c.sendJSON(w, http.StatusOK, "Users retrieved successfully", map[string]interface{}{
		"users":      page.Items,
		"pagination": page.Meta,
	})
}
