package web

// errors.go maps import errors to HTTP responses.
//
// The technical error is logged with its support code and request id; the
// client only sees a short plain-text message.

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/JonMunkholm/bookimport/internal/core"
	"github.com/JonMunkholm/bookimport/internal/logging"
)

// Response bodies for failed uploads.
const (
	msgNoFile     = "No file uploaded"
	msgProcessing = "Error processing file"
	msgTooLarge   = "File too large"
	msgBusy       = "Server busy, please try again shortly"
)

// classify returns the status and body for an upload error.
func classify(err error) (int, string) {
	var tooLarge *http.MaxBytesError
	switch {
	case errors.Is(err, core.ErrMissingFile):
		return http.StatusBadRequest, msgNoFile
	case errors.As(err, &tooLarge):
		return http.StatusRequestEntityTooLarge, msgTooLarge
	case errors.Is(err, core.ErrTooManyUploads):
		return http.StatusServiceUnavailable, msgBusy
	case errors.Is(err, context.DeadlineExceeded) && !isProcessing(err):
		return http.StatusServiceUnavailable, msgBusy
	default:
		return http.StatusInternalServerError, msgProcessing
	}
}

func isProcessing(err error) bool {
	var perr *core.ProcessingError
	return errors.As(err, &perr)
}

// respondError logs err and writes the plain-text response for it.
func (s *Server) respondError(w http.ResponseWriter, r *http.Request, err error) {
	status, body := classify(err)
	userMsg := core.MapError(err)

	level := slog.LevelWarn
	if status >= http.StatusInternalServerError {
		level = slog.LevelError
	}
	logging.FromContext(r.Context()).Log(r.Context(), level, "request error",
		"path", r.URL.Path,
		"method", r.Method,
		"status", status,
		"error", err.Error(),
		"code", userMsg.Code,
	)

	if status == http.StatusServiceUnavailable {
		w.Header().Set("Retry-After", strconv.Itoa(5))
	}
	http.Error(w, body, status)
}
