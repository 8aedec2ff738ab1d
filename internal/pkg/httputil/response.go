package httputil

import (
	"encoding/json"
	"log"
	"net/http"
)

// APIError is one machine-readable entry in an error envelope.
type APIError struct {
	Kind    string `json:"kind"`
	Message string `json:"message"`
	Details any    `json:"details,omitempty"`
}

// ErrorResponse is the standard error envelope for all API errors.
// Status mirrors the terminal run status where one exists.
type ErrorResponse struct {
	Status string     `json:"status"`
	Errors []APIError `json:"errors"`
}

// JSON writes a JSON response with the given status code. The data is
// serialized and Content-Type is set automatically.
func JSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		log.Printf("[httputil] JSON encode error: %v", err)
	}
}

// OK writes a 200 response with the given data.
func OK(w http.ResponseWriter, data any) {
	JSON(w, http.StatusOK, data)
}

// Created writes a 201 response with the given data.
func Created(w http.ResponseWriter, data any) {
	JSON(w, http.StatusCreated, data)
}

// Error writes a single-entry error envelope. Use for client errors (4xx).
func Error(w http.ResponseWriter, status int, kind, message string) {
	JSON(w, status, ErrorResponse{
		Status: "failed",
		Errors: []APIError{{Kind: kind, Message: message}},
	})
}

// Errors writes a multi-entry error envelope, one entry per failure.
func Errors(w http.ResponseWriter, status int, errs []APIError) {
	JSON(w, status, ErrorResponse{Status: "failed", Errors: errs})
}

// BadRequest writes a 400 error.
func BadRequest(w http.ResponseWriter, kind, message string) {
	Error(w, http.StatusBadRequest, kind, message)
}

// InternalError writes a 500 error. Logs the real error but returns a
// generic message to the client (never leak internals).
func InternalError(w http.ResponseWriter, err error) {
	log.Printf("[httputil] internal error: %v", err)
	Error(w, http.StatusInternalServerError, "internal_error", "internal server error")
}

// Decode reads JSON from the request body into dst.
// Returns false and writes a 400 response if parsing fails.
func Decode(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		BadRequest(w, "invalid_json", "invalid JSON: "+err.Error())
		return false
	}
	return true
}
