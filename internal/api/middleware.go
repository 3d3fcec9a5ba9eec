package api

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"easel/internal/logging"
	"easel/internal/render"
)

type contextKey string

// RequestIDKey carries the per-request identifier through handler contexts.
const RequestIDKey contextKey = "request_id"

// RequestIDMiddleware stamps every request with a short identifier, echoed in
// the X-Request-ID header and the request log line.
func RequestIDMiddleware() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			requestID := uuid.NewString()[:8]
			ctx := context.WithValue(r.Context(), RequestIDKey, requestID)
			w.Header().Set("X-Request-ID", requestID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RecoveryMiddleware converts handler panics into 500 responses.
func RecoveryMiddleware(logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if err := recover(); err != nil {
					requestID, _ := r.Context().Value(RequestIDKey).(string)
					logger.Error("panic recovered",
						logging.Any("error", err),
						logging.String("request_id", requestID))
					WriteError(w, http.StatusInternalServerError, "internal server error", "INTERNAL_ERROR")
				}
			}()
			next.ServeHTTP(w, r)
		})
	}
}

// LoggingMiddleware logs one line per request with method, path, status, and
// duration.
func LoggingMiddleware(logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			wrapped := &responseWriter{ResponseWriter: w, status: http.StatusOK}

			next.ServeHTTP(wrapped, r)

			requestID, _ := r.Context().Value(RequestIDKey).(string)
			logger.Info("http request",
				logging.String("method", r.Method),
				logging.String("path", r.URL.Path),
				logging.Int("status", wrapped.status),
				logging.Int("duration_ms", int(time.Since(start).Milliseconds())),
				logging.String("request_id", requestID))
		})
	}
}

type responseWriter struct {
	http.ResponseWriter
	status int
}

func (w *responseWriter) WriteHeader(status int) {
	w.status = status
	w.ResponseWriter.WriteHeader(status)
}

// WriteJSON writes data as a JSON response.
func WriteJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

// WriteError writes a JSON error envelope.
func WriteError(w http.ResponseWriter, status int, message, code string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(ErrorResponse{Error: message, Code: code})
}

// writeDomainError maps an engine error onto an HTTP status using its kind
// label. Unknown formats and missing records are 404s; bad placement input is
// 422; undecodable or unsupported assets are the client's problem at 400 and
// 422; everything else is a 500.
func writeDomainError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	switch render.Kind(err) {
	case "not_found", "unknown_format":
		status = http.StatusNotFound
	case "validation":
		status = http.StatusBadRequest
	case "asset_decode":
		status = http.StatusBadRequest
	case "invalid_fraction", "invalid_geometry", "missing_alpha", "unsupported_format":
		status = http.StatusUnprocessableEntity
	}
	WriteError(w, status, err.Error(), strings.ToUpper(render.Kind(err)))
}
