// internal/app/system/httpjson/httpjson.go

// Package httpjson writes the JSON envelopes used by every API endpoint and
// decodes request bodies with consistent limits.
//
// Success bodies carry "success":true plus endpoint-specific keys. Error
// bodies are always
//
//	{ "success": false, "message": "...", "error": "...", "fields": {...} }
//
// where message and error hold the same text and fields is present only for
// validation failures.
package httpjson

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
)

// DefaultMaxBody caps request bodies when the caller passes a limit <= 0.
const DefaultMaxBody = 4 << 20

// ErrorBody is the error envelope.
type ErrorBody struct {
	Success bool              `json:"success"`
	Message string            `json:"message"`
	Error   string            `json:"error"`
	Fields  map[string]string `json:"fields,omitempty"`
}

// WriteJSON writes v with the given status.
func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// WriteError writes the error envelope with msg in both message and error.
func WriteError(w http.ResponseWriter, status int, msg string) {
	WriteJSON(w, status, ErrorBody{Message: msg, Error: msg})
}

// WriteValidation writes a 400 error envelope with per-field messages.
func WriteValidation(w http.ResponseWriter, msg string, fields map[string]string) {
	WriteJSON(w, http.StatusBadRequest, ErrorBody{Message: msg, Error: msg, Fields: fields})
}

// ErrBodyTooLarge is returned by Decode when the body exceeds the limit.
var ErrBodyTooLarge = errors.New("request body too large")

// Decode reads one JSON value from r.Body into dst. Unknown fields are
// accepted so older clients keep working; trailing data is rejected.
func Decode(r *http.Request, dst any, maxBytes int64) error {
	if maxBytes <= 0 {
		maxBytes = DefaultMaxBody
	}
	if ct := r.Header.Get("Content-Type"); ct != "" && !strings.HasPrefix(strings.ToLower(ct), "application/json") {
		return fmt.Errorf("unsupported content type %q", ct)
	}
	body := http.MaxBytesReader(nil, r.Body, maxBytes)
	dec := json.NewDecoder(body)
	if err := dec.Decode(dst); err != nil {
		var mbe *http.MaxBytesError
		if errors.As(err, &mbe) {
			return ErrBodyTooLarge
		}
		if errors.Is(err, io.EOF) {
			return errors.New("request body is empty")
		}
		return fmt.Errorf("malformed JSON: %w", err)
	}
	if dec.More() {
		return errors.New("malformed JSON: unexpected data after object")
	}
	return nil
}
