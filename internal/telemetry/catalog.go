package telemetry

import (
	"context"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// Attribute keys for catalog spans.
const (
	AttrStore     = "catalog.store"
	AttrOperation = "catalog.operation"
	AttrRecordID  = "catalog.record_id"
	AttrKind      = "catalog.kind"
	AttrSpec      = "catalog.spec"
	AttrCount     = "catalog.count"
	AttrErrorCode = "catalog.error_code"
)

// Store returns an attribute for a store name
func Store(name string) attribute.KeyValue {
	return attribute.String(AttrStore, name)
}

// RecordID returns an attribute for a record id
func RecordID(id int) attribute.KeyValue {
	return attribute.Int(AttrRecordID, id)
}

// Kind returns an attribute for the kind an argument targets
func Kind(kind string) attribute.KeyValue {
	return attribute.String(AttrKind, kind)
}

// Spec returns an attribute for a rendered specification
func Spec(spec string) attribute.KeyValue {
	return attribute.String(AttrSpec, spec)
}

// Count returns an attribute for the number of affected records
func Count(n int64) attribute.KeyValue {
	return attribute.Int64(AttrCount, n)
}

// StartStoreSpan starts a span named "<store>.<operation>".
func StartStoreSpan(ctx context.Context, store, operation string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	all := make([]attribute.KeyValue, 0, len(attrs)+2)
	all = append(all, Store(store), attribute.String(AttrOperation, operation))
	all = append(all, attrs...)
	return StartSpan(ctx, store+"."+operation, trace.WithAttributes(all...), trace.WithSpanKind(trace.SpanKindClient))
}

// EndSpan records err, if any, and ends span.
func EndSpan(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	span.End()
}
