package api

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/starford/newsdesk/internal/apperr"
	"github.com/starford/newsdesk/internal/document"
	"github.com/starford/newsdesk/internal/newsletter"
)

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("json encode failed", slog.String("error", err.Error()))
	}
}

type errResponse struct {
	Error string `json:"error"`
}

func errorBody(msg string) errResponse {
	return errResponse{Error: msg}
}

// statusOf maps service errors onto HTTP statuses. Anything unrecognized is a
// failing upstream source.
func statusOf(err error) int {
	var ioErr *document.IOError
	switch {
	case errors.Is(err, apperr.ErrNotFound), errors.Is(err, apperr.ErrUnknownSection):
		return http.StatusNotFound
	case errors.Is(err, apperr.ErrDuplicateSection):
		return http.StatusConflict
	case errors.Is(err, newsletter.ErrInvalidRelease):
		return http.StatusBadRequest
	case errors.Is(err, newsletter.ErrSourceUnavailable):
		return http.StatusServiceUnavailable
	case errors.As(err, &ioErr), errors.Is(err, apperr.ErrRecordKind):
		return http.StatusInternalServerError
	default:
		return http.StatusBadGateway
	}
}

func writeError(w http.ResponseWriter, op string, err error) {
	status := statusOf(err)
	msg := err.Error()
	if status == http.StatusInternalServerError {
		slog.Error(op+" failed", slog.String("error", msg))
		msg = "internal error"
	} else {
		slog.Warn(op+" failed", slog.Int("status", status), slog.String("error", msg))
	}
	writeJSON(w, status, errorBody(msg))
}
