package telemetry

import (
	"context"
	"strings"
	"testing"

	"github.com/groupbuy/backend/internal/infrastructure/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func TestNewProfiler_Disabled(t *testing.T) {
	p, err := NewProfiler(config.ProfilingConfig{}, "groupbuy", zap.NewNop())
	require.NoError(t, err)
	assert.False(t, p.IsEnabled())
	assert.NoError(t, p.Stop())
	assert.NoError(t, p.Stop())
}

func TestNewProfiler_MissingAddress(t *testing.T) {
	_, err := NewProfiler(config.ProfilingConfig{Enabled: true}, "groupbuy", zap.NewNop())
	assert.Error(t, err)
}

func TestSanitizeLabels(t *testing.T) {
	tests := []struct {
		name   string
		labels map[string]string
		want   []string
	}{
		{name: "nil", labels: nil, want: nil},
		{
			name:   "sorted",
			labels: map[string]string{"route": "/api/v1/group-buys", "method": "GET"},
			want:   []string{"method", "GET", "route", "/api/v1/group-buys"},
		},
		{
			name:   "drops high cardinality and empty values",
			labels: map[string]string{"user_id": "u1", "group_buy_id": "g1", "operation": "", "job_kind": "SETTLE"},
			want:   []string{"job_kind", "SETTLE"},
		},
		{
			name:   "normalizes keys",
			labels: map[string]string{"Job-Kind": "EXPIRE", "Service Name": "settlement", "??": "x"},
			want:   []string{"job_kind", "EXPIRE", "service_name", "settlement"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := sanitizeLabels(tt.labels)
			if tt.want == nil {
				assert.Empty(t, got)
				return
			}
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestSanitizeLabels_TruncatesLongValues(t *testing.T) {
	got := sanitizeLabels(map[string]string{"route": strings.Repeat("a", 500)})
	require.Len(t, got, 2)
	assert.Len(t, got[1], MaxLabelValueLength)
}

func TestWithProfilingLabels_RunsFn(t *testing.T) {
	calls := 0
	WithProfilingLabels(context.Background(), nil, func(context.Context) { calls++ })
	WithProfilingLabels(context.Background(), map[string]string{ProfilingLabelJobKind: "SETTLE"}, func(context.Context) { calls++ })
	assert.Equal(t, 2, calls)
}

func TestLoggerProvider_Disabled(t *testing.T) {
	lp, err := NewLoggerProvider(context.Background(), config.TelemetryConfig{Enabled: true})
	require.NoError(t, err)
	assert.False(t, lp.IsEnabled())

	core := lp.ZapCore(zapcore.InfoLevel)
	assert.False(t, core.Enabled(zapcore.ErrorLevel))
	assert.NoError(t, lp.Shutdown(context.Background()))
}

func TestLevelFilterCore(t *testing.T) {
	inner := zapcore.NewCore(zapcore.NewJSONEncoder(zap.NewProductionEncoderConfig()), zapcore.AddSync(&strings.Builder{}), zapcore.DebugLevel)
	core := &levelFilterCore{Core: inner, minLevel: zapcore.WarnLevel}

	assert.False(t, core.Enabled(zapcore.InfoLevel))
	assert.True(t, core.Enabled(zapcore.ErrorLevel))

	ce := core.Check(zapcore.Entry{Level: zapcore.InfoLevel}, nil)
	assert.Nil(t, ce)
	ce = core.Check(zapcore.Entry{Level: zapcore.ErrorLevel}, nil)
	assert.NotNil(t, ce)

	child := core.With([]zapcore.Field{zap.String("k", "v")})
	assert.False(t, child.Enabled(zapcore.InfoLevel))
}
