package web

// errors.go provides unified error response handling for the web layer.
// Technical errors are logged server-side with the request ID; clients get a
// user-friendly message with an action suggestion and a support code.

import (
	"errors"
	"log/slog"
	"net/http"

	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/mkellner/credtrack/internal/roster"
)

// ErrorResponse is the JSON structure for API error responses.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
	Action  string `json:"action,omitempty"`
	Code    string `json:"code"`
}

// respondError logs the technical error and writes the mapped user message.
func (s *Server) respondError(w http.ResponseWriter, r *http.Request, err error, statusCode int) {
	userMsg := roster.MapError(err)

	slog.Error("request error",
		"path", r.URL.Path,
		"method", r.Method,
		"status", statusCode,
		"error", err.Error(),
		"code", userMsg.Code,
		"request_id", chimw.GetReqID(r.Context()),
	)

	writeJSON(w, statusCode, ErrorResponse{
		Error:   userMsg.Message,
		Message: userMsg.Message,
		Action:  userMsg.Action,
		Code:    userMsg.Code,
	})
}

// statusFor picks the HTTP status for a service error.
func statusFor(err error) int {
	switch {
	case errors.Is(err, roster.ErrSessionNotFound):
		return http.StatusNotFound
	case errors.Is(err, roster.ErrOutOfRange):
		return http.StatusNotFound
	case errors.Is(err, roster.ErrNoPreview),
		errors.Is(err, roster.ErrNameColumnUnset),
		errors.Is(err, roster.ErrNoHeaderRow):
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}
