package logger

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"
	gormlogger "gorm.io/gorm/logger"
)

const defaultSlowThreshold = 200 * time.Millisecond

// GormLogger routes GORM statements into zap with the request id of ctx
// attached. Record-not-found is never logged: repositories translate it
// into a NOT_FOUND domain error and it is not a fault.
type GormLogger struct {
	logger        *zap.Logger
	logLevel      gormlogger.LogLevel
	slowThreshold time.Duration
}

type GormLoggerOption func(*GormLogger)

// WithSlowThreshold sets the duration above which a statement is warned about.
// Zero disables slow query logging.
func WithSlowThreshold(d time.Duration) GormLoggerOption {
	return func(l *GormLogger) { l.slowThreshold = d }
}

func NewGormLogger(base *zap.Logger, level gormlogger.LogLevel, opts ...GormLoggerOption) *GormLogger {
	l := &GormLogger{logger: base.Named("gorm"), logLevel: level, slowThreshold: defaultSlowThreshold}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

func (l *GormLogger) LogMode(level gormlogger.LogLevel) gormlogger.Interface {
	cp := *l
	cp.logLevel = level
	return &cp
}

func (l *GormLogger) Info(ctx context.Context, msg string, args ...any) {
	l.printf(ctx, gormlogger.Info, msg, args)
}

func (l *GormLogger) Warn(ctx context.Context, msg string, args ...any) {
	l.printf(ctx, gormlogger.Warn, msg, args)
}

func (l *GormLogger) Error(ctx context.Context, msg string, args ...any) {
	l.printf(ctx, gormlogger.Error, msg, args)
}

func (l *GormLogger) printf(ctx context.Context, at gormlogger.LogLevel, msg string, args []any) {
	if l.logLevel < at {
		return
	}
	s := Enrich(ctx, l.logger).Sugar()
	switch at {
	case gormlogger.Error:
		s.Errorf(msg, args...)
	case gormlogger.Warn:
		s.Warnf(msg, args...)
	default:
		s.Infof(msg, args...)
	}
}

// Trace logs failed statements at error, slow ones at warn, and everything
// else at debug when the level is Info.
func (l *GormLogger) Trace(ctx context.Context, begin time.Time, fc func() (string, int64), err error) {
	if l.logLevel <= gormlogger.Silent {
		return
	}
	elapsed := time.Since(begin)
	statement := func() []zap.Field {
		sql, rows := fc()
		return []zap.Field{zap.Duration("elapsed", elapsed), zap.Int64("rows", rows), zap.String("sql", sql)}
	}
	log := Enrich(ctx, l.logger)

	switch {
	case err != nil:
		if l.logLevel >= gormlogger.Error && !errors.Is(err, gormlogger.ErrRecordNotFound) {
			log.Error("SQL error", append(statement(), zap.Error(err))...)
		}
	case l.slowThreshold > 0 && elapsed > l.slowThreshold:
		if l.logLevel >= gormlogger.Warn {
			log.Warn("Slow SQL", append(statement(), zap.Duration("threshold", l.slowThreshold))...)
		}
	case l.logLevel >= gormlogger.Info:
		log.Debug("SQL", statement()...)
	}
}

var gormLevels = map[string]gormlogger.LogLevel{
	"silent": gormlogger.Silent,
	"error":  gormlogger.Error,
	"info":   gormlogger.Info,
	"debug":  gormlogger.Info,
}

// MapGormLogLevel maps the database.log_level setting. Unknown values mean warn.
func MapGormLogLevel(level string) gormlogger.LogLevel {
	if l, ok := gormLevels[level]; ok {
		return l
	}
	return gormlogger.Warn
}
