package telemetry_test

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/groupbuy/backend/internal/infrastructure/config"
	"github.com/groupbuy/backend/internal/infrastructure/persistence/models"
	"github.com/groupbuy/backend/internal/infrastructure/telemetry"
	"github.com/groupbuy/backend/tests/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
	"go.uber.org/zap"
)

func setupTestTracer(t *testing.T) *tracetest.SpanRecorder {
	t.Helper()
	sr := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(sr))
	original := otel.GetTracerProvider()
	otel.SetTracerProvider(tp)
	t.Cleanup(func() {
		otel.SetTracerProvider(original)
		_ = tp.Shutdown(context.Background())
	})
	return sr
}

func TestStartServiceSpan(t *testing.T) {
	sr := setupTestTracer(t)
	id := uuid.New()

	ctx, span := telemetry.StartServiceSpan(context.Background(), "group_buy", "join",
		telemetry.SpanAttrGroupBuyID, id,
		telemetry.SpanAttrQuantity, 2,
		42, "ignored key",
	)
	assert.NotEmpty(t, telemetry.TraceID(ctx))
	telemetry.SetAttributes(span, "retry", true)
	span.End()

	spans := sr.Ended()
	require.Len(t, spans, 1)
	assert.Equal(t, "group_buy.join", spans[0].Name())
	assert.Contains(t, spans[0].Attributes(), attribute.String(telemetry.SpanAttrGroupBuyID, id.String()))
	assert.Contains(t, spans[0].Attributes(), attribute.Int(telemetry.SpanAttrQuantity, 2))
	assert.Contains(t, spans[0].Attributes(), attribute.Bool("retry", true))
	assert.Len(t, spans[0].Attributes(), 3)
}

func TestRecordError(t *testing.T) {
	sr := setupTestTracer(t)

	_, span := telemetry.StartServiceSpan(context.Background(), "settlement", "settle")
	telemetry.RecordError(span, errors.New("lock timeout"))
	telemetry.RecordError(span, nil)
	span.End()

	spans := sr.Ended()
	require.Len(t, spans, 1)
	assert.Equal(t, codes.Error, spans[0].Status().Code)
	assert.Equal(t, "lock timeout", spans[0].Status().Description)
	require.Len(t, spans[0].Events(), 1)
}

func TestTraceID_NoSpan(t *testing.T) {
	assert.Empty(t, telemetry.TraceID(context.Background()))
}

func TestNewTracerProvider_Disabled(t *testing.T) {
	tp, err := telemetry.NewTracerProvider(context.Background(), config.TelemetryConfig{}, zap.NewNop())
	require.NoError(t, err)
	assert.False(t, tp.IsEnabled())
	tp.EnableSpanProfiles()
	assert.NoError(t, tp.Shutdown(context.Background()))
}

func TestRegisterDBTracing(t *testing.T) {
	sr := setupTestTracer(t)
	db := testutil.NewSQLiteDB(t)

	require.NoError(t, telemetry.RegisterDBTracing(db, telemetry.DBTracingConfig{Enabled: true}, zap.NewNop()))

	var count int64
	require.NoError(t, db.WithContext(context.Background()).Model(&models.CategoryModel{}).Count(&count).Error)
	assert.NotEmpty(t, sr.Ended(), "statements produce spans")
}

func TestRegisterDBTracing_Disabled(t *testing.T) {
	sr := setupTestTracer(t)
	db := testutil.NewSQLiteDB(t)

	require.NoError(t, telemetry.RegisterDBTracing(db, telemetry.DBTracingConfig{}, zap.NewNop()))
	var count int64
	require.NoError(t, db.Model(&models.CategoryModel{}).Count(&count).Error)
	assert.Empty(t, sr.Ended())
}
