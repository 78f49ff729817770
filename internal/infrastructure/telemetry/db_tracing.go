package telemetry

import (
	"context"
	"errors"
	"time"

	"github.com/uptrace/opentelemetry-go-extra/otelgorm"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// DBTracingConfig holds configuration for database tracing
type DBTracingConfig struct {
	Enabled         bool
	LogFullSQL      bool          // include bound variables in spans, never in production
	SlowQueryThresh time.Duration // default 200ms
	DBName          string
}

type queryStartKey struct{}

// RegisterDBTracing installs otelgorm on db and flags slow or failed statements on their spans
func RegisterDBTracing(db *gorm.DB, cfg DBTracingConfig, logger *zap.Logger) error {
	if !cfg.Enabled {
		return nil
	}
	if cfg.SlowQueryThresh <= 0 {
		cfg.SlowQueryThresh = 200 * time.Millisecond
	}
	if cfg.DBName == "" {
		cfg.DBName = "groupbuy"
	}

	opts := []otelgorm.Option{otelgorm.WithDBName(cfg.DBName)}
	if !cfg.LogFullSQL {
		opts = append(opts, otelgorm.WithoutQueryVariables())
	}
	if err := db.Use(otelgorm.NewPlugin(opts...)); err != nil {
		return err
	}

	before := func(tx *gorm.DB) {
		if tx.Statement.Context != nil {
			tx.Statement.Context = context.WithValue(tx.Statement.Context, queryStartKey{}, time.Now())
		}
	}
	after := func(tx *gorm.DB) { annotateStatement(tx, cfg.SlowQueryThresh) }

	cb := db.Callback()
	registrations := []func() error{
		func() error { return cb.Create().Before("gorm:create").Register("telemetry:before_create", before) },
		func() error { return cb.Query().Before("gorm:query").Register("telemetry:before_query", before) },
		func() error { return cb.Update().Before("gorm:update").Register("telemetry:before_update", before) },
		func() error { return cb.Delete().Before("gorm:delete").Register("telemetry:before_delete", before) },
		func() error { return cb.Row().Before("gorm:row").Register("telemetry:before_row", before) },
		func() error { return cb.Raw().Before("gorm:raw").Register("telemetry:before_raw", before) },
		func() error { return cb.Create().After("gorm:create").Register("telemetry:after_create", after) },
		func() error { return cb.Query().After("gorm:query").Register("telemetry:after_query", after) },
		func() error { return cb.Update().After("gorm:update").Register("telemetry:after_update", after) },
		func() error { return cb.Delete().After("gorm:delete").Register("telemetry:after_delete", after) },
		func() error { return cb.Row().After("gorm:row").Register("telemetry:after_row", after) },
		func() error { return cb.Raw().After("gorm:raw").Register("telemetry:after_raw", after) },
	}
	for _, register := range registrations {
		if err := register(); err != nil {
			return err
		}
	}

	logger.Info("Database tracing enabled",
		zap.Bool("log_full_sql", cfg.LogFullSQL),
		zap.Duration("slow_query_threshold", cfg.SlowQueryThresh),
	)
	return nil
}

func annotateStatement(tx *gorm.DB, slow time.Duration) {
	ctx := tx.Statement.Context
	if ctx == nil {
		return
	}
	span := trace.SpanFromContext(ctx)
	if !span.IsRecording() {
		return
	}

	span.SetAttributes(attribute.Int64("db.rows_affected", tx.Statement.RowsAffected))
	if tx.Statement.Table != "" {
		span.SetAttributes(attribute.String("db.sql.table", tx.Statement.Table))
	}
	if tx.Error != nil && !errors.Is(tx.Error, gorm.ErrRecordNotFound) {
		span.RecordError(tx.Error)
		span.SetStatus(codes.Error, tx.Error.Error())
	}
	if start, ok := ctx.Value(queryStartKey{}).(time.Time); ok {
		if elapsed := time.Since(start); elapsed > slow {
			span.SetAttributes(
				attribute.Bool("db.slow_query", true),
				attribute.Int64("db.query_duration_ms", elapsed.Milliseconds()),
			)
		}
	}
}
