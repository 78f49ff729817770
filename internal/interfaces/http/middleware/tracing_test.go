package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/propagation"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
)

func setupTestTracer(t *testing.T) *tracetest.SpanRecorder {
	t.Helper()

	sr := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(sr))
	original := otel.GetTracerProvider()
	otel.SetTracerProvider(tp)
	otel.SetTextMapPropagator(propagation.TraceContext{})

	t.Cleanup(func() {
		otel.SetTracerProvider(original)
		_ = tp.Shutdown(t.Context())
	})
	return sr
}

func tracedRouter(enabled bool) *gin.Engine {
	router := gin.New()
	router.Use(RequestID(), Tracing("test-service", enabled), SpanEnricher())
	router.GET("/test", func(c *gin.Context) {
		c.Set(JWTUserIDKey, "user-1")
		c.Status(http.StatusOK)
	})
	router.GET("/boom", func(c *gin.Context) { c.Status(http.StatusInternalServerError) })
	router.GET("/health", func(c *gin.Context) { c.Status(http.StatusOK) })
	return router
}

func findSpan(spans []sdktrace.ReadOnlySpan, name string) sdktrace.ReadOnlySpan {
	for _, s := range spans {
		if s.Name() == name {
			return s
		}
	}
	return nil
}

func TestTracing_Disabled(t *testing.T) {
	sr := setupTestTracer(t)

	w := httptest.NewRecorder()
	tracedRouter(false).ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/test", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, sr.Ended())
}

func TestTracing_EnrichesSpan(t *testing.T) {
	sr := setupTestTracer(t)

	req := httptest.NewRequest(http.MethodGet, "/test", nil)
	req.Header.Set(RequestIDHeader, "req-42")
	tracedRouter(true).ServeHTTP(httptest.NewRecorder(), req)

	span := findSpan(sr.Ended(), "GET /test")
	require.NotNil(t, span)
	assert.Contains(t, span.Attributes(), attribute.String("request_id", "req-42"))
	assert.Contains(t, span.Attributes(), attribute.String("user_id", "user-1"))
	assert.NotEqual(t, codes.Error, span.Status().Code)
}

func TestTracing_MarksServerErrors(t *testing.T) {
	sr := setupTestTracer(t)

	tracedRouter(true).ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/boom", nil))

	span := findSpan(sr.Ended(), "GET /boom")
	require.NotNil(t, span)
	assert.Equal(t, codes.Error, span.Status().Code)
}

func TestTracing_SkipsHealth(t *testing.T) {
	sr := setupTestTracer(t)

	tracedRouter(true).ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Nil(t, findSpan(sr.Ended(), "GET /health"))
}
