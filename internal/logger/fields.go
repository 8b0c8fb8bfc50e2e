package logger

import "log/slog"

// Standard field keys for structured logging.
// Use these keys consistently across all log statements for log aggregation and querying.
const (
	// ========================================================================
	// Request Correlation
	// ========================================================================
	KeyRequestID = "request_id" // Request or CLI invocation id
	KeyOperation = "operation"  // Catalog operation name

	// ========================================================================
	// Catalog Records
	// ========================================================================
	KeyRecordID   = "record_id"   // Record id (shared by both stores)
	KeyUUID       = "uuid"        // Record uuid
	KeyStore      = "store"       // Store name: metadata, metadata_draft
	KeyKind       = "kind"        // Kind targeted by an updater, spec or path
	KeyOwner      = "owner"       // Owner user id
	KeyGroupOwner = "group_owner" // Owner group id
	KeySpec       = "spec"        // Rendered specification
	KeyCount      = "count"       // Number of affected records

	// ========================================================================
	// Operation Metadata
	// ========================================================================
	KeyDurationMs = "duration_ms" // Operation duration in milliseconds
	KeyError      = "error"       // Error message
	KeyErrorCode  = "error_code"  // Catalog error code

	// ========================================================================
	// HTTP
	// ========================================================================
	KeyMethod = "method" // HTTP method
	KeyPath   = "path"   // HTTP request path
	KeyStatus = "status" // HTTP status code
)

// ============================================================================
// Field constructors for type safety
// ============================================================================

// RecordID returns a slog.Attr for a record id
func RecordID(id int) slog.Attr {
	return slog.Int(KeyRecordID, id)
}

// Store returns a slog.Attr for a store name
func Store(name string) slog.Attr {
	return slog.String(KeyStore, name)
}

// Kind returns a slog.Attr for a record kind
func Kind(kind string) slog.Attr {
	return slog.String(KeyKind, kind)
}

// Owner returns a slog.Attr for an owner user id
func Owner(id int) slog.Attr {
	return slog.Int(KeyOwner, id)
}

// GroupOwner returns a slog.Attr for an owner group id
func GroupOwner(id int) slog.Attr {
	return slog.Int(KeyGroupOwner, id)
}

// Count returns a slog.Attr for a number of affected records
func Count(n int64) slog.Attr {
	return slog.Int64(KeyCount, n)
}

// Err returns a slog.Attr for an error. A nil error yields an empty attr,
// which slog drops.
func Err(err error) slog.Attr {
	if err == nil {
		return slog.Attr{}
	}
	return slog.String(KeyError, err.Error())
}

// DurationMs returns a slog.Attr for a duration in milliseconds
func DurationMs(ms float64) slog.Attr {
	return slog.Float64(KeyDurationMs, ms)
}
