// Package httpjson holds the JSON request/response helpers shared by the HTTP APIs.
package httpjson

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"
)

// DefaultMaxBodyBytes caps request bodies when a handler has no explicit limit.
const DefaultMaxBodyBytes int64 = 1 << 20

// ErrorBody is the error envelope returned by every endpoint.
type ErrorBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// MessageBody is a bare acknowledgement.
type MessageBody struct {
	Message string `json:"message"`
}

// WriteJSON writes v with status. Responses are never cached.
func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// WriteError writes an ErrorBody.
func WriteError(w http.ResponseWriter, status int, code, msg string) {
	WriteJSON(w, status, ErrorBody{Code: code, Message: msg})
}

// Decode reads exactly one JSON value from the body into dst.
// Unknown fields are rejected.
func Decode(w http.ResponseWriter, r *http.Request, maxBytes int64, dst any) error {
	return decode(w, r, maxBytes, dst, true)
}

// DecodeLenient is Decode without the unknown-field check.
func DecodeLenient(w http.ResponseWriter, r *http.Request, maxBytes int64, dst any) error {
	return decode(w, r, maxBytes, dst, false)
}

func decode(w http.ResponseWriter, r *http.Request, maxBytes int64, dst any, strict bool) error {
	if r.Body == nil {
		return errors.New("empty body")
	}
	defer func() { _ = r.Body.Close() }()

	if maxBytes <= 0 {
		maxBytes = DefaultMaxBodyBytes
	}
	body := http.MaxBytesReader(w, r.Body, maxBytes)
	dec := json.NewDecoder(body)
	if strict {
		dec.DisallowUnknownFields()
	}
	if err := dec.Decode(dst); err != nil {
		if errors.Is(err, io.EOF) {
			return errors.New("empty body")
		}
		return err
	}
	// Ensure there is no extra data after the first JSON value.
	if err := dec.Decode(&struct{}{}); err != io.EOF {
		return errors.New("extra data after JSON object")
	}
	return nil
}

// BearerToken extracts the token from an "Authorization: Bearer <t>" header.
// It returns "" when the header is missing or uses another scheme.
func BearerToken(r *http.Request) string {
	h := strings.TrimSpace(r.Header.Get("Authorization"))
	if h == "" {
		return ""
	}
	parts := strings.SplitN(h, " ", 2)
	if len(parts) != 2 {
		return ""
	}
	if !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}
	return strings.TrimSpace(parts[1])
}
