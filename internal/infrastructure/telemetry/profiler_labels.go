package telemetry

import (
	"context"
	"sort"
	"strings"

	"github.com/grafana/pyroscope-go"
)

// Profiling label keys
const (
	ProfilingLabelRoute     = "route"
	ProfilingLabelMethod    = "method"
	ProfilingLabelOperation = "operation"
	ProfilingLabelJobKind   = "job_kind"
)

// MaxLabelValueLength bounds label values to keep profile cardinality sane
const MaxLabelValueLength = 128

// highCardinalityLabels are dropped because every request would create a new series
var highCardinalityLabels = map[string]bool{
	"user_id":      true,
	"request_id":   true,
	"group_buy_id": true,
	"trace_id":     true,
	"span_id":      true,
}

// WithProfilingLabels runs fn with pprof labels attached, so CPU samples taken
// inside fn can be filtered by those labels in Pyroscope.
func WithProfilingLabels(ctx context.Context, labels map[string]string, fn func(context.Context)) {
	pairs := sanitizeLabels(labels)
	if len(pairs) == 0 {
		fn(ctx)
		return
	}
	pyroscope.TagWrapper(ctx, pyroscope.Labels(pairs...), fn)
}

// sanitizeLabels returns sorted key/value pairs with empty, high cardinality
// and malformed entries removed and long values truncated.
func sanitizeLabels(labels map[string]string) []string {
	if len(labels) == 0 {
		return nil
	}
	keys := make([]string, 0, len(labels))
	for k := range labels {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	pairs := make([]string, 0, len(labels)*2)
	for _, key := range keys {
		value := labels[key]
		if key == "" || value == "" || highCardinalityLabels[key] {
			continue
		}
		if len(value) > MaxLabelValueLength {
			value = value[:MaxLabelValueLength]
		}
		if k := sanitizeLabelKey(key); k != "" {
			pairs = append(pairs, k, value)
		}
	}
	return pairs
}

func sanitizeLabelKey(key string) string {
	key = strings.ToLower(key)
	var b strings.Builder
	for _, c := range key {
		switch {
		case c >= 'a' && c <= 'z', c >= '0' && c <= '9', c == '_':
			b.WriteRune(c)
		case c == ' ', c == '-':
			b.WriteByte('_')
		}
	}
	return b.String()
}
