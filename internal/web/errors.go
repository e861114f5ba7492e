package web

// errors.go renders every error response.
//
// The technical error is logged with the request ID; the client gets the
// mapped user message in the format it asked for (HTMX fragment or JSON).

import (
	"context"
	"errors"
	"net/http"

	"github.com/JonMunkholm/docimport/internal/catalog"
	"github.com/JonMunkholm/docimport/internal/core"
	"github.com/JonMunkholm/docimport/internal/logging"
	"github.com/JonMunkholm/docimport/internal/sheet"
	"github.com/JonMunkholm/docimport/internal/web/templates"
)

var errInvalidProject = errors.New("invalid project id")

// ErrorResponse is the JSON body of an error response.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
	Action  string `json:"action,omitempty"`
	Code    string `json:"code"`
}

// respondError logs err and writes the user-facing message.
func respondError(w http.ResponseWriter, r *http.Request, err error, statusCode int) {
	userMsg := core.MapError(err)

	logger := logging.FromContext(r.Context())
	args := []any{
		"path", r.URL.Path,
		"method", r.Method,
		"status", statusCode,
		"error", err.Error(),
		"code", userMsg.Code,
	}
	if statusCode >= http.StatusInternalServerError {
		logger.Error("request error", args...)
	} else {
		logger.Warn("request error", args...)
	}

	if isHTMX(r) {
		renderErrorPartial(w, r, userMsg, statusCode)
		return
	}
	writeJSON(w, statusCode, ErrorResponse{
		Error:   userMsg.Message,
		Message: userMsg.Message,
		Action:  userMsg.Action,
		Code:    userMsg.Code,
	})
}

// renderErrorPartial renders an HTMX error fragment. HTMX skips swapping
// non-2xx responses by default, so the status travels in a header.
func renderErrorPartial(w http.ResponseWriter, r *http.Request, msg core.UserMessage, statusCode int) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("HX-Reswap", "innerHTML")
	w.WriteHeader(statusCode)
	if err := templates.ErrorAlert(msg.Message, msg.Action, msg.Code).Render(r.Context(), w); err != nil {
		logging.FromContext(r.Context()).Error("render error alert", "error", err)
	}
}

// statusFor picks the HTTP status for an error returned by the service.
func statusFor(err error) int {
	var (
		parseErr   *sheet.ParseError
		missingErr *sheet.MissingColumnsError
		maxBytes   *http.MaxBytesError
	)
	switch {
	case errors.Is(err, core.ErrNoFile), errors.Is(err, errInvalidProject):
		return http.StatusBadRequest
	case errors.Is(err, core.ErrFileTooLarge), errors.As(err, &maxBytes):
		return http.StatusRequestEntityTooLarge
	case errors.Is(err, sheet.ErrTooManyRows):
		return http.StatusRequestEntityTooLarge
	case errors.As(err, &parseErr), errors.As(err, &missingErr):
		return http.StatusUnprocessableEntity
	case errors.Is(err, core.ErrRunNotFound):
		return http.StatusNotFound
	case errors.Is(err, core.ErrTooManyImports), errors.Is(err, catalog.ErrUnavailable):
		return http.StatusServiceUnavailable
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	default:
		return http.StatusInternalServerError
	}
}

// isHTMX checks if the request is an HTMX request.
func isHTMX(r *http.Request) bool {
	return r.Header.Get("HX-Request") == "true"
}
