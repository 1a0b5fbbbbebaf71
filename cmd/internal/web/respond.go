// Package web carries the JSON envelope and request helpers shared by the
// HTTP handler packages.
package web

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/anujp125/Drishya/cmd/identity"
)

// Envelope is the uniform response body. Success and failure share the
// shape; failures carry Errors, successes carry Data.
type Envelope struct {
	Status  int      `json:"status"`
	Success bool     `json:"success"`
	Message string   `json:"message"`
	Data    any      `json:"data,omitempty"`
	Errors  []string `json:"errors,omitempty"`
}

func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func WriteData(w http.ResponseWriter, status int, message string, data any) {
	WriteJSON(w, status, Envelope{
		Status:  status,
		Success: true,
		Message: message,
		Data:    data,
	})
}

func WriteFailure(w http.ResponseWriter, status int, message string, errs ...string) {
	WriteJSON(w, status, Envelope{
		Status:  status,
		Success: false,
		Message: message,
		Errors:  errs,
	})
}

// WriteDomainError maps identity error kinds onto HTTP statuses. Anything
// that is not a known kind is a 500 and gets logged; the client sees a
// generic message.
func WriteDomainError(w http.ResponseWriter, log *slog.Logger, op string, err error) {
	var vErr identity.ValidationError
	if errors.As(err, &vErr) {
		WriteFailure(w, http.StatusBadRequest, "validation failed", vErr.Fields...)
		return
	}

	switch {
	case identity.IsInvalidInput(err):
		WriteFailure(w, http.StatusBadRequest, "invalid request")
	case identity.IsUnauthorized(err):
		WriteFailure(w, http.StatusUnauthorized, "invalid credentials or token")
	case identity.IsNotFound(err):
		WriteFailure(w, http.StatusNotFound, "resource not found")
	case identity.IsConflict(err):
		var cErr identity.ConflictError
		if errors.As(err, &cErr) && cErr.Field != "" {
			WriteFailure(w, http.StatusConflict, cErr.Field+" already in use")
			return
		}
		WriteFailure(w, http.StatusConflict, "resource already exists")
	default:
		if log == nil {
			log = slog.Default()
		}
		log.Error(op, "err", err)
		WriteFailure(w, http.StatusInternalServerError, "internal error")
	}
}

// DecodeJSON reads one JSON value from the body, rejecting unknown fields
// and trailing garbage.
func DecodeJSON(w http.ResponseWriter, r *http.Request, maxBytes int64, dst any) error {
	if r.Body == nil {
		return errors.New("empty body")
	}
	defer func() { _ = r.Body.Close() }()

	body := http.MaxBytesReader(w, r.Body, maxBytes)
	dec := json.NewDecoder(body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		return err
	}
	// Ensure there is no extra data after the first JSON value.
	if err := dec.Decode(&struct{}{}); err != io.EOF {
		return errors.New("extra data after JSON object")
	}
	return nil
}
