// Package httpx provides the HTTP response vocabulary shared by all
// handlers: JSON envelopes, RFC7807 problem responses and the sentinel
// error taxonomy they are mapped from.
package httpx

import (
	"encoding/json"
	"net/http"
)

// Request bodies larger than this are cut off mid-decode.
const maxBodyBytes = 1 << 20

// ProblemDetail is the RFC7807 problem body emitted for every failure.
type ProblemDetail struct {
	Type   string `json:"type,omitempty"`
	Title  string `json:"title"`
	Status int    `json:"status"`
	Detail string `json:"detail,omitempty"`
}

// JSON writes data as an application/json response with the given status.
func JSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

// Problem writes an RFC7807 problem response.
func Problem(w http.ResponseWriter, status int, title, detail string) {
	w.Header().Set("Content-Type", "application/problem+json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(ProblemDetail{
		Title:  title,
		Status: status,
		Detail: detail,
	})
}

// DecodeJSON decodes the request body into target, capped at maxBodyBytes.
func DecodeJSON(r *http.Request, target any) error {
	r.Body = http.MaxBytesReader(nil, r.Body, maxBodyBytes)
	return json.NewDecoder(r.Body).Decode(target)
}
