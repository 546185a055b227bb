package controllers

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"microsocial/app/middleware"
	"microsocial/app/models"
	"microsocial/app/services"

	"github.com/gorilla/mux"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

const maxBodyBytes = 1 << 20

// Envelope is the body of every successful response.
type Envelope struct {
	Success bool        `json:"success"`
	Message string      `json:"message"`
	Data    interface{} `json:"data"`
}

// ErrorEnvelope is the body of every failed response.
type ErrorEnvelope struct {
	Success    bool   `json:"success"`
	StatusCode int    `json:"statusCode"`
	Message    string `json:"message"`
}

// responder holds the helpers shared by every controller.
type responder struct {
	logger *slog.Logger
}

func (rs responder) sendJSON(w http.ResponseWriter, status int, message string, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(Envelope{Success: true, Message: message, Data: data}); err != nil {
		rs.logger.Error("failed to encode response", "error", err)
	}
}

func (rs responder) sendError(w http.ResponseWriter, status int, message string) {
	WriteError(w, status, message)
}

// sendServiceError maps a service error to its status code. Unexpected
// errors are logged and reported without detail.
func (rs responder) sendServiceError(w http.ResponseWriter, r *http.Request, err error) {
	var verr *services.ValidationError
	var nerr *services.NotFoundError
	switch {
	case errors.As(err, &verr):
		rs.sendError(w, http.StatusBadRequest, verr.Message)
	case services.IsConflict(err):
		rs.sendError(w, http.StatusBadRequest, err.Error())
	case services.IsValidationError(err):
		rs.sendError(w, http.StatusBadRequest, "Invalid request")
	case services.IsUnauthorized(err):
		rs.sendError(w, http.StatusUnauthorized, "Invalid email or password")
	case errors.As(err, &nerr):
		rs.sendError(w, http.StatusNotFound, capitalize(nerr.Error()))
	case services.IsNotFound(err):
		rs.sendError(w, http.StatusNotFound, "Not found")
	default:
		rs.logger.ErrorContext(r.Context(), "request failed",
			"error", err,
			"method", r.Method,
			"path", r.URL.Path,
			"request_id", middleware.GetRequestID(r),
		)
		rs.sendError(w, http.StatusInternalServerError, "Internal server error")
	}
}

// decodeJSON reads a bounded JSON body into dst, answering 400 itself on
// failure.
func (rs responder) decodeJSON(w http.ResponseWriter, r *http.Request, dst interface{}) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		var tooBig *http.MaxBytesError
		if errors.As(err, &tooBig) {
			rs.sendError(w, http.StatusRequestEntityTooLarge, "Request body too large")
			return false
		}
		rs.sendError(w, http.StatusBadRequest, "Invalid JSON body")
		return false
	}
	return true
}

// pathID parses the named route variable as an object id, answering 400
// itself on failure.
func (rs responder) pathID(w http.ResponseWriter, r *http.Request, name, label string) (primitive.ObjectID, bool) {
	id, err := models.ParseID(mux.Vars(r)[name])
	if err != nil {
		rs.sendError(w, http.StatusBadRequest, "Invalid "+label+" ID")
		return primitive.NilObjectID, false
	}
	return id, true
}

// caller returns the authenticated user, answering 401 itself when the
// route is not behind RequireAuth.
func (rs responder) caller(w http.ResponseWriter, r *http.Request) (primitive.ObjectID, bool) {
	id, ok := middleware.GetUserID(r)
	if !ok {
		rs.sendError(w, http.StatusUnauthorized, "Not authorized")
	}
	return id, ok
}

// WriteError writes a failure envelope with the given status.
func WriteError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(ErrorEnvelope{Success: false, StatusCode: status, Message: message})
}

// NotFound answers unknown routes.
func NotFound(w http.ResponseWriter, r *http.Request) {
	WriteError(w, http.StatusNotFound, "Route "+r.URL.Path+" not found")
}

// MethodNotAllowed answers known routes called with the wrong method.
func MethodNotAllowed(w http.ResponseWriter, r *http.Request) {
	WriteError(w, http.StatusMethodNotAllowed, "Method "+r.Method+" not allowed")
}

// Health reports that the process is serving.
func Health(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(Envelope{Success: true, Message: "Server is running", Data: map[string]string{"status": "ok"}})
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	b := []byte(s)
	if b[0] >= 'a' && b[0] <= 'z' {
		b[0] -= 'a' - 'A'
	}
	return string(b)
}
