package telemetry

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/PratikDhanave/crm-sync-service/internal/models"
)

func TestMetrics_Record(t *testing.T) {
	m := NewMetrics()
	ctx := context.Background()

	require.NoError(t, m.Record(ctx, models.SyncOutcome{RecordType: "Contact", Status: models.StatusSynced}))
	require.NoError(t, m.Record(ctx, models.SyncOutcome{RecordType: "Contact", Status: models.StatusSynced}))
	require.NoError(t, m.Record(ctx, models.SyncOutcome{RecordType: "Opportunity", Status: models.StatusSkipped}))

	assert.Equal(t, 2.0, testutil.ToFloat64(m.records.WithLabelValues("Contact", "synced")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.records.WithLabelValues("unknown", "skipped")))
}

func TestMetrics_ObserveCall(t *testing.T) {
	m := NewMetrics()
	m.ObserveCall("search", "contacts", 20*time.Millisecond, nil)
	m.ObserveCall("create", "contacts", 40*time.Millisecond, errors.New("boom"))

	assert.Equal(t, 2, testutil.CollectAndCount(m.calls))
}

func TestMetrics_Handler(t *testing.T) {
	m := NewMetrics()
	require.NoError(t, m.Record(context.Background(), models.SyncOutcome{RecordType: "Lead", Status: models.StatusFailed}))

	w := httptest.NewRecorder()
	m.Handler().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `crm_sync_records_total{record_type="Lead",status="failed"} 1`)
}
