package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/PratikDhanave/crm-sync-service/internal/auth"
	"github.com/PratikDhanave/crm-sync-service/internal/models"
	"github.com/PratikDhanave/crm-sync-service/internal/store"
	"github.com/PratikDhanave/crm-sync-service/internal/syncer"
)

type fakeProcessor struct {
	got     []models.Record
	sources []string
	outcome models.SyncOutcome
}

func (f *fakeProcessor) Process(ctx context.Context, rec models.Record) models.SyncOutcome {
	f.got = append(f.got, rec)
	f.sources = append(f.sources, syncer.SourceFromContext(ctx))
	return f.outcome
}

func newTriggerRouter(p Processor) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	g := r.Group("/")
	g.Use(auth.APIKeyMiddleware(map[string]string{"key-1": "sf-prod"}))
	RegisterTriggerRoutes(g, p)
	return r
}

func postTrigger(r http.Handler, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/triggers", bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-API-Key", "key-1")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestTrigger_ProcessesRecord(t *testing.T) {
	p := &fakeProcessor{outcome: models.SyncOutcome{ID: "o-1", SourceID: "003AAA", Status: models.StatusFailed, ErrorKind: "write_failure"}}
	r := newTriggerRouter(p)

	w := postTrigger(r, `{"type":"Contact","ID":"003AAA","email":"a@example.com","Phone":"+44 1234 567890"}`)

	require.Equal(t, http.StatusOK, w.Code)
	require.Len(t, p.got, 1)
	assert.Equal(t, models.Record{"type": "Contact", "ID": "003AAA", "email": "a@example.com", "Phone": "+44 1234 567890"}, p.got[0])
	assert.Equal(t, []string{"sf-prod"}, p.sources)

	var out models.SyncOutcome
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out))
	assert.Equal(t, models.StatusFailed, out.Status)
	assert.Equal(t, "write_failure", out.ErrorKind)
}

func TestTrigger_BadRequests(t *testing.T) {
	p := &fakeProcessor{}
	r := newTriggerRouter(p)

	for _, body := range []string{`not json`, `[{"type":"Contact"}]`, `{}`, `null`} {
		w := postTrigger(r, body)
		assert.Equal(t, http.StatusBadRequest, w.Code, body)
	}
	assert.Empty(t, p.got)
}

func TestTrigger_Unauthorized(t *testing.T) {
	p := &fakeProcessor{}
	r := newTriggerRouter(p)

	req := httptest.NewRequest(http.MethodPost, "/triggers", bytes.NewBufferString(`{"type":"Contact"}`))
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Empty(t, p.got)
}

type fakeCounter struct {
	filter store.OutcomeFilter
	count  int64
	err    error
}

func (f *fakeCounter) CountOutcomes(_ context.Context, filter store.OutcomeFilter) (int64, error) {
	f.filter = filter
	return f.count, f.err
}

func getStats(counter OutcomeCounter, query url.Values) *httptest.ResponseRecorder {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	RegisterStatsRoutes(r, counter)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/sync-stats?"+query.Encode(), nil))
	return w
}

func TestStats(t *testing.T) {
	from := time.Date(2026, 10, 1, 0, 0, 0, 0, time.UTC)
	to := from.Add(24 * time.Hour)

	t.Run("counts window", func(t *testing.T) {
		counter := &fakeCounter{count: 7}
		w := getStats(counter, url.Values{
			"record_type": {"Lead"},
			"status":      {"failed"},
			"from":        {from.Format(time.RFC3339)},
			"to":          {"2026-10-02T02:00:00+02:00"},
		})

		require.Equal(t, http.StatusOK, w.Code)
		assert.JSONEq(t, `{"record_type":"Lead","status":"failed","count":7}`, w.Body.String())
		assert.Equal(t, store.OutcomeFilter{RecordType: "Lead", Status: "failed", From: from, To: to}, counter.filter)
	})

	t.Run("validation", func(t *testing.T) {
		cases := []url.Values{
			{"to": {to.Format(time.RFC3339)}},
			{"from": {"yesterday"}, "to": {to.Format(time.RFC3339)}},
			{"from": {from.Format(time.RFC3339)}, "to": {"tomorrow"}},
			{"from": {to.Format(time.RFC3339)}, "to": {from.Format(time.RFC3339)}},
			{"from": {from.Format(time.RFC3339)}, "to": {to.Format(time.RFC3339)}, "status": {"pending"}},
		}
		for _, q := range cases {
			w := getStats(&fakeCounter{}, q)
			assert.Equal(t, http.StatusBadRequest, w.Code, q.Encode())
		}
	})

	t.Run("db error", func(t *testing.T) {
		w := getStats(&fakeCounter{err: errors.New("down")}, url.Values{
			"from": {from.Format(time.RFC3339)},
			"to":   {to.Format(time.RFC3339)},
		})
		assert.Equal(t, http.StatusInternalServerError, w.Code)
	})

	t.Run("audit log disabled", func(t *testing.T) {
		w := getStats(nil, url.Values{})
		assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	})
}
