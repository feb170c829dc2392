// Copyright (c) 2025 Jeremy Hahn
// Copyright (c) 2025 Automate The Things, LLC
//
// This file is part of go-interactions.
//
// go-interactions is dual-licensed:
//
// 1. GNU Affero General Public License v3.0 (AGPL-3.0)
//    See LICENSE file or visit https://www.gnu.org/licenses/agpl-3.0.html
//
// 2. Commercial License
//    Contact licensing@automatethethings.com for commercial licensing options.

package rest

import (
	"encoding/json"
	"errors"
	"net/http"
)

// Sentinel errors for the REST layer.
var (
	// ErrBadRequest is returned when the request payload is malformed.
	ErrBadRequest = errors.New("bad request")

	// ErrInternalError is returned when an unexpected error occurs.
	ErrInternalError = errors.New("internal server error")

	// ErrNotFound is returned when the requested resource doesn't exist.
	ErrNotFound = errors.New("not found")
)

// ErrorResponse is the standard error response format.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}

// writeError writes an error response with the given status code.
func writeError(w http.ResponseWriter, err error, statusCode int) {
	writeErrorWithMessage(w, err, "", statusCode)
}

// writeErrorWithMessage writes an error response with an additional message.
func writeErrorWithMessage(w http.ResponseWriter, err error, message string, statusCode int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)

	resp := ErrorResponse{
		Error:   err.Error(),
		Message: message,
	}

	// Encoding a flat struct of strings doesn't fail
	_ = json.NewEncoder(w).Encode(resp)
}

// writeJSON writes a JSON response with the given status code.
func writeJSON(w http.ResponseWriter, data any, statusCode int) error {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	return json.NewEncoder(w).Encode(data)
}
