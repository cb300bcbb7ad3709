package middleware

import (
	"context"
	"net/http"

	httputil "vaxbook/pkg/http"
	"vaxbook/pkg/logger"
)

type contextKey string

const (
	RequestIDKey    contextKey = "request_id"
	RequestIDHeader            = "X-Request-ID"
)

// RequestIDFromContext returns the id assigned by RequestLogging, or "".
func RequestIDFromContext(ctx context.Context) string {
	if id, ok := ctx.Value(RequestIDKey).(string); ok {
		return id
	}
	return ""
}

func reject(w http.ResponseWriter, log *logger.Logger, r *http.Request, status int, message string) {
	if err := httputil.WriteMessage(w, status, message); err != nil {
		log.Error("failed to write rejection response",
			"request_id", RequestIDFromContext(r.Context()),
			"status", status,
			"error", err,
		)
	}
}
