package telemetry

import (
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/groupbuy/backend/internal/domain/shared"
	"github.com/groupbuy/backend/internal/infrastructure/scheduler"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetrics_ObserveHTTP(t *testing.T) {
	m := NewMetrics()

	m.ObserveHTTP(http.MethodGet, "/api/v1/group-buys/:id", http.StatusOK, 20*time.Millisecond)
	m.ObserveHTTP(http.MethodGet, "/api/v1/group-buys/:id", http.StatusOK, 30*time.Millisecond)
	m.ObserveHTTP(http.MethodGet, "", http.StatusNotFound, time.Millisecond)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.httpRequests.WithLabelValues("GET", "/api/v1/group-buys/:id", "200")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.httpRequests.WithLabelValues("GET", "unmatched", "404")))
}

func TestMetrics_TrackInFlight(t *testing.T) {
	m := NewMetrics()

	done := m.TrackInFlight()
	m.TrackInFlight()
	assert.Equal(t, 2.0, testutil.ToFloat64(m.httpInFlight))
	done()
	assert.Equal(t, 1.0, testutil.ToFloat64(m.httpInFlight))
}

func TestMetrics_Observers(t *testing.T) {
	m := NewMetrics()

	m.ObserveJob(scheduler.JobKindSettle, scheduler.JobStatusSuccess, 5*time.Millisecond)
	m.ObserveJob(scheduler.JobKindSettle, scheduler.JobStatusFailed, 5*time.Millisecond)
	m.ObserveJob(scheduler.JobKindSettle, scheduler.JobStatusSuccess, 5*time.Millisecond)
	assert.Equal(t, 2.0, testutil.ToFloat64(m.jobRuns.WithLabelValues("SETTLE", "SUCCESS")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.jobRuns.WithLabelValues("SETTLE", "FAILED")))

	m.ObserveOutboxDelivery("groupbuy.joined", shared.OutboxStatusSent)
	assert.Equal(t, 1.0, testutil.ToFloat64(m.outboxSent.WithLabelValues("groupbuy.joined", "SENT")))

	m.ObserveOutboxBacklog(map[shared.OutboxStatus]int64{
		shared.OutboxStatusPending: 7,
		shared.OutboxStatusDead:    1,
	})
	assert.Equal(t, 7.0, testutil.ToFloat64(m.outboxBacklog.WithLabelValues("PENDING")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.outboxBacklog.WithLabelValues("DEAD")))

	m.ObserveJoin(JoinOutcomeAccepted)
	m.ObserveJoin(JoinOutcomeConflict)
	m.ObserveJoin(JoinOutcomeAccepted)
	assert.Equal(t, 2.0, testutil.ToFloat64(m.joins.WithLabelValues(JoinOutcomeAccepted)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.joins.WithLabelValues(JoinOutcomeConflict)))

	m.WebsocketOpened()
	m.WebsocketOpened()
	m.WebsocketClosed()
	assert.Equal(t, 1.0, testutil.ToFloat64(m.wsClients))
}

func TestMetrics_Handler(t *testing.T) {
	m := NewMetrics()
	m.ObserveJoin(JoinOutcomeRejected)

	srv := httptest.NewServer(m.Handler())
	defer srv.Close()

	resp, err := http.Get(srv.URL)
	require.NoError(t, err)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, string(body), `groupbuy_join_attempts_total{outcome="rejected"} 1`)
	assert.Contains(t, string(body), "go_goroutines")
}

func TestMetrics_IndependentRegistries(t *testing.T) {
	a, b := NewMetrics(), NewMetrics()
	a.ObserveJoin(JoinOutcomeAccepted)

	assert.Equal(t, 1.0, testutil.ToFloat64(a.joins.WithLabelValues(JoinOutcomeAccepted)))
	assert.Equal(t, 0.0, testutil.ToFloat64(b.joins.WithLabelValues(JoinOutcomeAccepted)))
}
