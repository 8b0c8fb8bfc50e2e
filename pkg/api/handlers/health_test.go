package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeChecker struct {
	err error
}

func (f fakeChecker) Healthcheck(ctx context.Context) error {
	return f.err
}

func decode(t *testing.T, w *httptest.ResponseRecorder) Response {
	t.Helper()
	var resp Response
	require.NoError(t, json.NewDecoder(w.Body).Decode(&resp))
	return resp
}

func TestLiveness_ReturnsOK(t *testing.T) {
	handler := NewHealthHandler(0)
	w := httptest.NewRecorder()

	handler.Liveness(w, httptest.NewRequest(http.MethodGet, "/health", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "application/json", w.Header().Get("Content-Type"))

	resp := decode(t, w)
	assert.Equal(t, "healthy", resp.Status)
	data, ok := resp.Data.(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "mdcatalog", data["service"])
}

func TestReadiness_NoStores_Returns503(t *testing.T) {
	handler := NewHealthHandler(time.Second)
	w := httptest.NewRecorder()

	handler.Readiness(w, httptest.NewRequest(http.MethodGet, "/health/ready", nil))

	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	resp := decode(t, w)
	assert.Equal(t, "unhealthy", resp.Status)
	assert.Equal(t, "no stores configured", resp.Error)
}

func TestReadiness(t *testing.T) {
	tests := []struct {
		name       string
		draftErr   error
		wantCode   int
		wantStatus string
	}{
		{name: "all healthy", wantCode: http.StatusOK, wantStatus: "healthy"},
		{name: "draft store down", draftErr: errors.New("closed"), wantCode: http.StatusServiceUnavailable, wantStatus: "unhealthy"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			handler := NewHealthHandler(time.Second,
				StoreCheck{Name: "metadata", Backend: "sqlite", Checker: fakeChecker{}},
				StoreCheck{Name: "metadata_draft", Backend: "badger", Checker: fakeChecker{err: tt.draftErr}},
			)
			w := httptest.NewRecorder()

			handler.Readiness(w, httptest.NewRequest(http.MethodGet, "/health/ready", nil))

			assert.Equal(t, tt.wantCode, w.Code)

			var resp struct {
				Status string            `json:"status"`
				Data   ReadinessResponse `json:"data"`
			}
			require.NoError(t, json.NewDecoder(w.Body).Decode(&resp))
			assert.Equal(t, tt.wantStatus, resp.Status)
			require.Len(t, resp.Data.Stores, 2)
			assert.Equal(t, "metadata", resp.Data.Stores[0].Name)
			assert.Equal(t, "healthy", resp.Data.Stores[0].Status)
			assert.Equal(t, "badger", resp.Data.Stores[1].Backend)
			if tt.draftErr != nil {
				assert.Equal(t, "closed", resp.Data.Stores[1].Error)
			}
		})
	}
}
