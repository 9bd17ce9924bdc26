// Package apperr defines the error taxonomy shared by the store and handler
// layers and maps it onto HTTP responses.
package apperr

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
)

var (
	ErrUnauthenticated = errors.New("authentication required")
	ErrForbidden       = errors.New("permission denied")
	ErrNotFound        = errors.New("not found")
	ErrValidation      = errors.New("invalid request")
	ErrConflict        = errors.New("conflict")
)

type appError struct {
	kind error
	msg  string
}

func (e *appError) Error() string { return e.msg }

func (e *appError) Unwrap() error { return e.kind }

// E wraps one of the sentinel errors with a user-facing message.
func E(kind error, msg string) error {
	return &appError{kind: kind, msg: msg}
}

// Write sends err as a JSON error response. Sentinel kinds map to their
// status codes; anything else is a 500 with a generic message so storage
// internals never leak to clients.
func Write(w http.ResponseWriter, err error) {
	code := http.StatusInternalServerError
	msg := "internal server error"

	switch {
	case errors.Is(err, ErrUnauthenticated):
		code, msg = http.StatusUnauthorized, err.Error()
	case errors.Is(err, ErrForbidden):
		code, msg = http.StatusForbidden, err.Error()
	case errors.Is(err, ErrNotFound):
		code, msg = http.StatusNotFound, err.Error()
	case errors.Is(err, ErrValidation), errors.Is(err, ErrConflict):
		code, msg = http.StatusBadRequest, err.Error()
	default:
		slog.Error("internal error", "err", err)
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(map[string]string{"error": msg})
}
