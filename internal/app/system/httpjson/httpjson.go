// internal/app/system/httpjson/httpjson.go

// Package httpjson holds the JSON request/response conventions shared by
// the API handlers: one envelope shape for errors, plain payloads for
// success, and a decode helper that rejects unknown fields.
package httpjson

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"go.uber.org/zap"
)

// errorBody is the error envelope every failed API call returns.
type errorBody struct {
	Error string `json:"error"`
}

// Write serializes v with the given status. Encoding failures are logged,
// not surfaced; headers are already gone by then.
func Write(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if v == nil {
		return
	}
	if err := json.NewEncoder(w).Encode(v); err != nil {
		zap.L().Warn("response encode failed", zap.Error(err))
	}
}

// Error writes the error envelope with the given status.
func Error(w http.ResponseWriter, status int, msg string) {
	Write(w, status, errorBody{Error: msg})
}

// Decode parses the request body into dst, rejecting unknown fields so
// client typos fail loudly instead of silently dropping input.
func Decode(r *http.Request, dst any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		return err
	}
	// a second value means trailing garbage
	if err := dec.Decode(&struct{}{}); !errors.Is(err, io.EOF) {
		return errors.New("request body must contain a single JSON object")
	}
	return nil
}
