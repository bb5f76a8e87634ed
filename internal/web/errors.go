package web

// errors.go maps service errors to JSON responses.
//
// Technical errors are logged with the request ID; clients receive the
// mapped user message and code from core.MapError, plus the accepted values
// when a request fails validation.

import (
	"errors"
	"net/http"

	"github.com/JonMunkholm/ferc1/internal/core"
	"github.com/JonMunkholm/ferc1/internal/logging"
	"github.com/JonMunkholm/ferc1/internal/store"
)

// ErrorResponse represents the JSON structure for API error responses.
type ErrorResponse struct {
	Error   string   `json:"error"`
	Message string   `json:"message"`
	Action  string   `json:"action,omitempty"`
	Code    string   `json:"code"`
	Valid   []string `json:"valid,omitempty"`
}

// respondError logs err and writes its user-facing form. A zero status is
// derived from the error.
func (s *Server) respondError(w http.ResponseWriter, r *http.Request, err error, status int) {
	if status == 0 {
		status = statusFor(err)
	}
	userMsg := core.MapError(err)

	logging.FromContext(r.Context()).Error("request error",
		"path", r.URL.Path,
		"method", r.Method,
		"status", status,
		"error", err.Error(),
		"code", userMsg.Code,
	)

	resp := ErrorResponse{
		Error:   userMsg.Message,
		Message: userMsg.Message,
		Action:  userMsg.Action,
		Code:    userMsg.Code,
	}
	var ve *core.ValidationError
	if errors.As(err, &ve) {
		resp.Error = ve.Error()
		resp.Valid = ve.Valid
	}
	writeJSON(w, status, resp)
}

func statusFor(err error) int {
	var ve *core.ValidationError
	switch {
	case errors.As(err, &ve):
		return http.StatusBadRequest
	case errors.Is(err, store.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, core.ErrStoreEmpty):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}
