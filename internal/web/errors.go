package web

// errors.go provides unified error response handling for the web layer.
//
// Every error is logged with full technical detail server-side, correlated by
// request ID, and returned to the client as JSON. Validation failures (4xx)
// echo the precise validation message so callers can fix their file; internal
// failures (5xx) return only the mapped user message, never the underlying
// error.

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/storeops/imports-api/internal/imports"
)

// ErrorResponse is the JSON structure for API error responses.
// Code is machine-readable; Message and Action are for humans.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
	Action  string `json:"action,omitempty"`
	Code    string `json:"code"`
}

// respondError logs the technical error and writes the JSON error response.
func (s *Server) respondError(w http.ResponseWriter, r *http.Request, err error, statusCode int) {
	userMsg := imports.MapError(err)

	slog.Error("request error",
		"path", r.URL.Path,
		"method", r.Method,
		"status", statusCode,
		"error", err.Error(),
		"code", userMsg.Code,
		"request_id", middleware.GetReqID(r.Context()),
	)

	resp := ErrorResponse{
		Error:   userMsg.Message,
		Message: userMsg.Message,
		Action:  userMsg.Action,
		Code:    userMsg.Code,
	}
	// Client-side failures carry the exact validation message (row numbers,
	// missing field names); server-side failures stay opaque.
	if statusCode < http.StatusInternalServerError {
		resp.Error = err.Error()
	}

	writeJSON(w, statusCode, resp)
}

// writeJSON encodes v as JSON with the given status code.
func writeJSON(w http.ResponseWriter, statusCode int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("json encode error", "error", err)
	}
}
