package middleware

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/groupbuy/backend/internal/infrastructure/telemetry"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetrics(t *testing.T) {
	metrics := telemetry.NewMetrics()

	router := gin.New()
	router.Use(Metrics(metrics, "/metrics"))
	router.GET("/group-buys/:id", func(c *gin.Context) { c.Status(http.StatusOK) })
	router.GET("/metrics", gin.WrapH(metrics.Handler()))

	for _, id := range []string{"a", "b", "c"} {
		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/group-buys/"+id, nil))
		require.Equal(t, http.StatusOK, w.Code)
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/nowhere", nil))

	expected := `
# HELP groupbuy_http_requests_total Total number of HTTP requests handled.
# TYPE groupbuy_http_requests_total counter
groupbuy_http_requests_total{method="GET",route="/group-buys/:id",status="200"} 3
groupbuy_http_requests_total{method="GET",route="unmatched",status="404"} 1
`
	assert.NoError(t, testutil.GatherAndCompare(metrics.Registry(), strings.NewReader(expected), "groupbuy_http_requests_total"))

	w = httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "groupbuy_http_inflight_requests 0")
	assert.NotContains(t, w.Body.String(), `route="/metrics"`)
}
