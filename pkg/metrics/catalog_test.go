package metrics

import (
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	catalogerrors "github.com/marmos91/mdcatalog/pkg/catalog/errors"
)

func TestNilCatalogMetricsIsSafe(t *testing.T) {
	t.Parallel()

	var m *CatalogMetrics
	assert.NotPanics(t, func() {
		m.ObserveStoreCall("save", "metadata", nil)
		m.ObserveFallback("update")
		m.ObserveDuration("save", time.Now())
		m.ObserveOwnerLockWait(time.Millisecond)
	})
}

func TestCatalogMetrics_Counters(t *testing.T) {
	t.Parallel()

	reg := prometheus.NewRegistry()
	m := NewCatalogMetrics(reg)

	m.ObserveStoreCall("update", "metadata", catalogerrors.NewNotFoundError("metadata", 1))
	m.ObserveStoreCall("update", "metadata_draft", nil)
	m.ObserveFallback("update")
	m.ObserveDuration("update", time.Now())
	m.ObserveOwnerLockWait(2 * time.Millisecond)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.operationsTotal.WithLabelValues("update", "metadata", OutcomeNotFound)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.operationsTotal.WithLabelValues("update", "metadata_draft", OutcomeSuccess)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.fallbacksTotal.WithLabelValues("update")))

	families, err := reg.Gather()
	require.NoError(t, err)
	names := make([]string, 0, len(families))
	for _, f := range families {
		names = append(names, f.GetName())
	}
	assert.Contains(t, names, "mdcatalog_manager_operations_total")
	assert.Contains(t, names, "mdcatalog_manager_owner_lock_wait_seconds")
}

func TestOutcome(t *testing.T) {
	t.Parallel()

	tests := []struct {
		err  error
		want string
	}{
		{nil, OutcomeSuccess},
		{catalogerrors.NewNotFoundError("metadata", 1), OutcomeNotFound},
		{catalogerrors.NewAlreadyExistsError("metadata", 1), OutcomeAlreadyExists},
		{catalogerrors.NewInvalidArgumentError("bad"), OutcomeInvalidArgument},
		{catalogerrors.NewTypeMismatchError("metadata", 1), OutcomeTypeMismatch},
		{catalogerrors.NewUnrecognizedTypeError(1, catalogerrors.NewNotFoundError("metadata", 1)), OutcomeUnrecognizedType},
		{errors.New("boom"), OutcomeError},
	}

	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, Outcome(tt.err))
		})
	}
}

func TestInitRegistry(t *testing.T) {
	reg := InitRegistry()
	require.NotNil(t, reg)
	assert.Same(t, reg, InitRegistry())
	assert.True(t, IsEnabled())
	assert.Same(t, reg, GetRegistry())
}
