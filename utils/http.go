package utils

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"
)

// maxBodyBytes bounds JSON request bodies.
const maxBodyBytes = 1 << 20

// APIError is the error payload returned for every failed request.
type APIError struct {
	Timestamp time.Time         `json:"timestamp"`
	Status    int               `json:"status"`
	Error     string            `json:"error"`
	Message   string            `json:"message"`
	Path      string            `json:"path"`
	Details   map[string]string `json:"details,omitempty"`
}

// NewAPIError fills the reason phrase from status and drops empty details.
func NewAPIError(now time.Time, status int, message, path string, details map[string]string) APIError {
	if len(details) == 0 {
		details = nil
	}
	return APIError{
		Timestamp: now.UTC(),
		Status:    status,
		Error:     http.StatusText(status),
		Message:   message,
		Path:      path,
		Details:   details,
	}
}

// SuccessResponse represents a generic success response
type SuccessResponse struct {
	Data    interface{} `json:"data,omitempty"`
	Message string      `json:"message,omitempty"`
}

// WriteJSON writes a JSON response with the given status code
func WriteJSON(w http.ResponseWriter, status int, data interface{}) error {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if data == nil {
		return nil
	}

	return json.NewEncoder(w).Encode(data)
}

// WriteOK writes a 200 OK response with optional data
func WriteOK(w http.ResponseWriter, data interface{}) error {
	return WriteJSON(w, http.StatusOK, SuccessResponse{Data: data})
}

// WriteNoContent writes a 204 No Content response
func WriteNoContent(w http.ResponseWriter) {
	w.WriteHeader(http.StatusNoContent)
}

// WriteAPIError writes apiErr with its own status.
func WriteAPIError(w http.ResponseWriter, apiErr APIError) error {
	w.Header().Set("Cache-Control", "no-store")
	return WriteJSON(w, apiErr.Status, apiErr)
}

// DecodeJSON reads a single JSON document from r into dst, rejecting
// unknown fields and trailing data.
func DecodeJSON(r *http.Request, dst interface{}) error {
	if r.Body == nil {
		return errors.New("request body is empty")
	}
	dec := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()

	if err := dec.Decode(dst); err != nil {
		if errors.Is(err, io.EOF) {
			return errors.New("request body is empty")
		}
		return fmt.Errorf("decode request body: %w", err)
	}
	if dec.More() {
		return errors.New("request body must contain a single JSON object")
	}
	return nil
}
