// Package audit emits structured audit events for security-relevant actions.
package audit

import (
	"context"
	"log/slog"
	"strings"

	"github.com/staffdesk/staffdesk/internal/auth"
)

type ctxKey int

const requestIDKey ctxKey = iota

// WithRequestID attaches the request identifier to the context so audit
// lines correlate with request logs.
func WithRequestID(ctx context.Context, requestID string) context.Context {
	requestID = strings.TrimSpace(requestID)
	if requestID == "" {
		return ctx
	}
	return context.WithValue(ctx, requestIDKey, requestID)
}

// RequestIDFromContext extracts the request id, if present.
func RequestIDFromContext(ctx context.Context) string {
	if v, ok := ctx.Value(requestIDKey).(string); ok {
		return v
	}
	return ""
}

// LogEvent writes one audit line enriched with request and principal
// context. Delivery is best-effort; auditing never fails the request.
func LogEvent(ctx context.Context, logger *slog.Logger, event string, attrs ...any) {
	if logger == nil || event == "" {
		return
	}
	fields := []any{"audit", true, "event", event}
	if rid := RequestIDFromContext(ctx); rid != "" {
		fields = append(fields, "request_id", rid)
	}
	if principal, ok := auth.PrincipalFromContext(ctx); ok {
		fields = append(fields, "subject", principal.Subject)
	}
	fields = append(fields, attrs...)
	logger.Info("audit event", fields...)
}
