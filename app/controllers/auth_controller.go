package controllers

import (
	"log/slog"
	"net/http"

	"microsocial/app/models"
	"microsocial/app/services"
)

// AuthController handles signup, login and the current user
type AuthController struct {
	responder
	users *services.UserService
}

// NewAuthController creates a new AuthController
func NewAuthController(users *services.UserService, logger *slog.Logger) *AuthController {
	return &AuthController{responder: responder{logger: logger}, users: users}
}

// Signup registers a new account
func (c *AuthController) Signup(w http.ResponseWriter, r *http.Request) {
	var req models.RegisterRequest
	if !c.decodeJSON(w, r, &req) {
		return
	}

	res, err := c.users.Register(r.Context(), &req)
	if err != nil {
		c.sendServiceError(w, r, err)
		return
	}
	c.sendJSON(w, http.StatusCreated, "User registered successfully", res)
}

// Login exchanges credentials for a token
func (c *AuthController) Login(w http.ResponseWriter, r *http.Request) {
	var req models.LoginRequest
	if !c.decodeJSON(w, r, &req) {
		return
	}

	res, err := c.users.Login(r.Context(), &req)
	if err != nil {
		c.sendServiceError(w, r, err)
		return
	}
	c.sendJSON(w, http.StatusOK, "Login successful", res)
}

// Me returns the authenticated user
func (c *AuthController) Me(w http.ResponseWriter, r *http.Request) {
	userID, ok := c.caller(w, r)
	if !ok {
		return
	}

	user, err := c.users.Me(r.Context(), userID)
	if err != nil {
		c.sendServiceError(w, r, err)
		return
	}
	c.sendJSON(w, http.StatusOK, "User retrieved successfully", user)
}
