package logger

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// contextKey is a private type for context keys to avoid collisions
type contextKey struct{}

// logContextKey is the key for LogContext in context.Context
var logContextKey = contextKey{}

// LogContext holds request-scoped logging context
type LogContext struct {
	RequestID string    // Correlates all log lines of one request or command
	Operation string    // Catalog operation (update_owner, delete, ...)
	RecordID  int       // Record the operation targets, 0 if none
	Store     string    // Store the operation was routed to
	StartTime time.Time // For duration calculation
}

// WithContext returns a new context with the given LogContext
func WithContext(ctx context.Context, lc *LogContext) context.Context {
	return context.WithValue(ctx, logContextKey, lc)
}

// FromContext retrieves the LogContext from context, or nil if not present
func FromContext(ctx context.Context) *LogContext {
	if ctx == nil {
		return nil
	}
	lc, _ := ctx.Value(logContextKey).(*LogContext)
	return lc
}

// NewLogContext creates a LogContext with a fresh request id. An empty
// requestID generates one.
func NewLogContext(requestID string) *LogContext {
	if requestID == "" {
		requestID = uuid.NewString()
	}
	return &LogContext{
		RequestID: requestID,
		StartTime: time.Now(),
	}
}

// Clone creates a copy of the LogContext
func (lc *LogContext) Clone() *LogContext {
	if lc == nil {
		return nil
	}
	clone := *lc
	return &clone
}

// WithOperation returns a copy with the operation and record id set
func (lc *LogContext) WithOperation(operation string, recordID int) *LogContext {
	clone := lc.Clone()
	if clone != nil {
		clone.Operation = operation
		clone.RecordID = recordID
	}
	return clone
}

// WithStore returns a copy with the store set
func (lc *LogContext) WithStore(store string) *LogContext {
	clone := lc.Clone()
	if clone != nil {
		clone.Store = store
	}
	return clone
}

// DurationMs returns the duration since StartTime in milliseconds
func (lc *LogContext) DurationMs() float64 {
	if lc == nil || lc.StartTime.IsZero() {
		return 0
	}
	return float64(time.Since(lc.StartTime).Microseconds()) / 1000.0
}

// EnsureContext returns ctx unchanged if it already carries a LogContext,
// otherwise a child context with a new one.
func EnsureContext(ctx context.Context) context.Context {
	if FromContext(ctx) != nil {
		return ctx
	}
	return WithContext(ctx, NewLogContext(""))
}
