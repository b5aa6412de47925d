// Package response writes the uniform JSON envelope used by every
// endpoint:
//
//	{"success": true,  "message": "...", "data": ...}
//	{"success": false, "message": "...", "error": {"code": 400, "description": "..."}}
package response

import (
	"encoding/json"
	"net/http"
)

// Envelope is the success wire shape. Data is always serialized, as an
// explicit null when the operation returns nothing (delete, append).
type Envelope struct {
	Success bool        `json:"success"`
	Message string      `json:"message"`
	Data    interface{} `json:"data"`
}

// failEnvelope swaps the data key for an error body.
type failEnvelope struct {
	Success bool       `json:"success"`
	Message string     `json:"message"`
	Error   *ErrorBody `json:"error"`
}

// ErrorBody carries the failure detail inside the envelope.
type ErrorBody struct {
	Code        int         `json:"code"`
	Description string      `json:"description"`
	Fields      interface{} `json:"fields,omitempty"` // field path → message, validation only
}

func write(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body) //nolint:errcheck
}

// Success sends a 200 envelope with data.
func Success(w http.ResponseWriter, message string, data interface{}) {
	write(w, http.StatusOK, Envelope{Success: true, Message: message, Data: data})
}

// Created sends a 201 envelope with data.
func Created(w http.ResponseWriter, message string, data interface{}) {
	write(w, http.StatusCreated, Envelope{Success: true, Message: message, Data: data})
}

// Fail sends a failure envelope; the error code mirrors the HTTP status.
func Fail(w http.ResponseWriter, status int, message string) {
	write(w, status, failEnvelope{
		Success: false,
		Message: message,
		Error:   &ErrorBody{Code: status, Description: message},
	})
}

// ValidationFail sends a 400 with the collected field violations.
func ValidationFail(w http.ResponseWriter, errs map[string]string) {
	write(w, http.StatusBadRequest, failEnvelope{
		Success: false,
		Message: "Validation failed",
		Error: &ErrorBody{
			Code:        http.StatusBadRequest,
			Description: "Validation failed",
			Fields:      errs,
		},
	})
}

// RouteNotFound sends the legacy fallback shape for unmatched routes.
// Note the `status` key: this shape predates the envelope and is kept
// for compatibility.
func RouteNotFound(w http.ResponseWriter, path string) {
	write(w, http.StatusNotFound, map[string]interface{}{
		"status":  false,
		"message": "Can't find " + path + " on this server!",
	})
}
