package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"

	catalogerrors "github.com/marmos91/mdcatalog/pkg/catalog/errors"
)

// ============================================================================
// Prometheus Metrics for the Catalog Manager
// ============================================================================

// Label constants for metrics.
const (
	LabelOperation = "operation"
	LabelStore     = "store"
	LabelOutcome   = "outcome"
)

// Outcome constants for store calls.
const (
	OutcomeSuccess          = "success"
	OutcomeNotFound         = "not_found"
	OutcomeAlreadyExists    = "already_exists"
	OutcomeInvalidArgument  = "invalid_argument"
	OutcomeTypeMismatch     = "type_mismatch"
	OutcomeUnrecognizedType = "unrecognized_type"
	OutcomeError            = "error"
)

// CatalogMetrics tracks routing decisions and store calls of the catalog
// managers.
type CatalogMetrics struct {
	operationsTotal   *prometheus.CounterVec
	fallbacksTotal    *prometheus.CounterVec
	operationDuration *prometheus.HistogramVec
	ownerLockWait     prometheus.Histogram
}

// NewCatalogMetrics creates and registers catalog metrics.
// If registry is nil, metrics will be created but not registered (useful for testing).
func NewCatalogMetrics(registry prometheus.Registerer) *CatalogMetrics {
	m := &CatalogMetrics{
		operationsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "manager",
				Name:      "operations_total",
				Help:      "Store calls issued by the catalog manager, by operation, store and outcome",
			},
			[]string{LabelOperation, LabelStore, LabelOutcome},
		),
		fallbacksTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "manager",
				Name:      "fallbacks_total",
				Help:      "Operations that fell through from the published store to the draft store",
			},
			[]string{LabelOperation},
		),
		operationDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Subsystem: "manager",
				Name:      "operation_duration_seconds",
				Help:      "Duration of catalog manager operations",
				Buckets:   prometheus.ExponentialBuckets(0.0005, 2, 14), // 0.5ms to ~4s
			},
			[]string{LabelOperation},
		),
		ownerLockWait: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Subsystem: "manager",
				Name:      "owner_lock_wait_seconds",
				Help:      "Time spent waiting for the owner update lock",
				Buckets:   prometheus.ExponentialBuckets(0.0001, 4, 10),
			},
		),
	}

	if registry != nil {
		registry.MustRegister(
			m.operationsTotal,
			m.fallbacksTotal,
			m.operationDuration,
			m.ownerLockWait,
		)
	}

	return m
}

// Outcome classifies an error returned by a store call.
func Outcome(err error) string {
	switch {
	case err == nil:
		return OutcomeSuccess
	case catalogerrors.IsUnrecognizedTypeError(err):
		return OutcomeUnrecognizedType
	case catalogerrors.IsTypeMismatchError(err):
		return OutcomeTypeMismatch
	case catalogerrors.IsNotFoundError(err):
		return OutcomeNotFound
	case catalogerrors.IsAlreadyExistsError(err):
		return OutcomeAlreadyExists
	case catalogerrors.IsInvalidArgumentError(err):
		return OutcomeInvalidArgument
	default:
		return OutcomeError
	}
}

// ObserveStoreCall records one store call and its outcome.
func (m *CatalogMetrics) ObserveStoreCall(operation, store string, err error) {
	if m == nil {
		return
	}
	m.operationsTotal.WithLabelValues(operation, store, Outcome(err)).Inc()
}

// ObserveFallback records that an operation moved on to the draft store
// after the published store did not produce a result.
func (m *CatalogMetrics) ObserveFallback(operation string) {
	if m == nil {
		return
	}
	m.fallbacksTotal.WithLabelValues(operation).Inc()
}

// ObserveDuration records the duration of an operation started at start.
// Intended for use with defer.
func (m *CatalogMetrics) ObserveDuration(operation string, start time.Time) {
	if m == nil {
		return
	}
	m.operationDuration.WithLabelValues(operation).Observe(time.Since(start).Seconds())
}

// ObserveOwnerLockWait records how long an owner update waited for the lock.
func (m *CatalogMetrics) ObserveOwnerLockWait(d time.Duration) {
	if m == nil {
		return
	}
	m.ownerLockWait.Observe(d.Seconds())
}
