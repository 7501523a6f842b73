package httputil

import (
	"encoding/json"
	"errors"
	"io"
	"log"
	"net/http"
	"strings"

	"github.com/redmonkez12/neonkeys-api/internal/apperror"
	"github.com/redmonkez12/neonkeys-api/internal/logging"
)

// ErrorResponse represents a standard error response
type ErrorResponse struct {
	Message string `json:"message"`
	Error   string `json:"error,omitempty"`
	Code    string `json:"code,omitempty"`
}

// MessageResponse is the envelope for operations that return nothing else.
type MessageResponse struct {
	Message string `json:"message"`
}

// RespondJSON sends a JSON response with the given status code.
// Logs encoding errors to avoid silent failures.
func RespondJSON(w http.ResponseWriter, data any, statusCode int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		log.Printf("ERROR: failed to encode JSON response: %v", err)
	}
}

// RespondError sends a JSON error response with the given message and status code.
func RespondError(w http.ResponseWriter, message string, statusCode int) {
	RespondJSON(w, ErrorResponse{Message: message}, statusCode)
}

// RespondErrorWithCode sends a JSON error response with a machine-readable error code.
func RespondErrorWithCode(w http.ResponseWriter, message string, code string, statusCode int) {
	RespondJSON(w, ErrorResponse{Message: message, Code: code}, statusCode)
}

// RespondAppError renders err using its apperror code. Anything that is not
// an *apperror.Error is treated as unexpected: logged in full and shown to
// the client as a generic message. When exposeDetails is set (development)
// the underlying error text is included in the "error" field.
func RespondAppError(w http.ResponseWriter, r *http.Request, err error, exposeDetails bool) {
	appErr, ok := apperror.As(err)
	if !ok {
		appErr = apperror.Internal(err, "unexpected error")
	}

	if appErr.Code() == apperror.CodeInternal {
		logging.GetLoggerFromContext(r.Context()).Error("request failed", "error", err)
	}

	resp := ErrorResponse{
		Message: appErr.PublicMessage(),
		Code:    string(appErr.Code()),
	}
	if exposeDetails && appErr.Code() == apperror.CodeInternal {
		resp.Error = err.Error()
	}

	RespondJSON(w, resp, appErr.HTTPStatus())
}

// DecodeJSON decodes the request body into dst. Malformed or empty bodies
// produce a validation error.
func DecodeJSON(r *http.Request, dst any) error {
	if r.Body == nil {
		return apperror.Validation("request body is required")
	}
	dec := json.NewDecoder(r.Body)
	if err := dec.Decode(dst); err != nil {
		if errors.Is(err, io.EOF) {
			return apperror.Validation("request body is required")
		}
		return apperror.Wrap(apperror.CodeValidation, err, "invalid request body")
	}
	return nil
}

// ClientIP extracts the client IP address from the request
func ClientIP(r *http.Request) string {
	// Check X-Forwarded-For header first (behind proxy/load balancer)
	xff := r.Header.Get("X-Forwarded-For")
	if xff != "" {
		// X-Forwarded-For can contain multiple IPs, take the first one
		ips := strings.Split(xff, ",")
		if len(ips) > 0 {
			return strings.TrimSpace(ips[0])
		}
	}

	xri := r.Header.Get("X-Real-IP")
	if xri != "" {
		return strings.TrimSpace(xri)
	}

	// RemoteAddr format is "IP:port", extract just the IP
	ip := r.RemoteAddr
	if idx := strings.LastIndex(ip, ":"); idx != -1 {
		ip = ip[:idx]
	}
	return ip
}
