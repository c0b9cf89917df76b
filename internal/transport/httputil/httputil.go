// Package httputil translates gateway errors into HTTP responses. Error
// bodies are flat JSON with one human-readable message: no codes, no stack
// traces, no internal identifiers.
package httputil

import (
	"errors"
	"net/http"

	"bff-gateway/internal/transport/http/json"
	dErrors "bff-gateway/pkg/domain-errors"
)

// WriteError maps a gateway error to its HTTP status and writes the flat
// error envelope. Messages are fixed per category so nothing about the
// internal failure leaks to the caller.
func WriteError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	message := "internal error"

	var gwErr *dErrors.Error
	if errors.As(err, &gwErr) {
		switch gwErr.Code {
		case dErrors.CodeUnauthorized:
			status, message = http.StatusUnauthorized, "authentication required"
		case dErrors.CodeForbidden:
			status, message = http.StatusForbidden, "access denied"
		case dErrors.CodeUpstreamUnavailable:
			status, message = http.StatusBadGateway, "upstream unavailable"
		case dErrors.CodeInvalidInput:
			status, message = http.StatusBadRequest, "invalid request"
		}
	}

	json.WriteJSON(w, status, map[string]string{"error": message})
}

// StatusFor returns the HTTP status WriteError would use, for logging and
// metrics without writing anything.
func StatusFor(err error) int {
	var gwErr *dErrors.Error
	if errors.As(err, &gwErr) {
		switch gwErr.Code {
		case dErrors.CodeUnauthorized:
			return http.StatusUnauthorized
		case dErrors.CodeForbidden:
			return http.StatusForbidden
		case dErrors.CodeUpstreamUnavailable:
			return http.StatusBadGateway
		case dErrors.CodeInvalidInput:
			return http.StatusBadRequest
		}
	}
	return http.StatusInternalServerError
}
