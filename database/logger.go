package database

import (
	"context"
	"errors"
	"fmt"
	"time"

	"microblog/internal/logger"

	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

const slowQueryThreshold = 200 * time.Millisecond

// GormLogger forwards gorm's statement log to the application logger.
type GormLogger struct {
	level gormlogger.LogLevel
}

func NewGormLogger() *GormLogger {
	return &GormLogger{level: gormlogger.Warn}
}

func (l *GormLogger) LogMode(level gormlogger.LogLevel) gormlogger.Interface {
	return &GormLogger{level: level}
}

func (l *GormLogger) Info(ctx context.Context, msg string, args ...interface{}) {
	if l.level >= gormlogger.Info {
		logger.CtxInfo(ctx, fmt.Sprintf(msg, args...))
	}
}

func (l *GormLogger) Warn(ctx context.Context, msg string, args ...interface{}) {
	if l.level >= gormlogger.Warn {
		logger.CtxWarn(ctx, fmt.Sprintf(msg, args...))
	}
}

func (l *GormLogger) Error(ctx context.Context, msg string, args ...interface{}) {
	if l.level >= gormlogger.Error {
		logger.CtxError(ctx, fmt.Sprintf(msg, args...))
	}
}

// Trace logs failed statements, slow statements and, at Info level, all of them.
// Missing records and translated constraint errors are expected outcomes.
func (l *GormLogger) Trace(ctx context.Context, begin time.Time, fc func() (string, int64), err error) {
	if l.level <= gormlogger.Silent {
		return
	}
	elapsed := time.Since(begin)

	switch {
	case err != nil && l.level >= gormlogger.Error && !isExpected(err):
		sql, rows := fc()
		logger.FromContext(ctx).Error("database operation failed",
			"query", sql, "rows", rows, "duration_ms", elapsed.Milliseconds(), "error", err.Error())
	case elapsed > slowQueryThreshold && l.level >= gormlogger.Warn:
		sql, rows := fc()
		logger.FromContext(ctx).Warn("slow query",
			"query", sql, "rows", rows, "duration_ms", elapsed.Milliseconds())
	case l.level >= gormlogger.Info:
		sql, _ := fc()
		logger.DBLog("query", sql, elapsed, nil)
	}
}

func isExpected(err error) bool {
	return errors.Is(err, gorm.ErrRecordNotFound) ||
		errors.Is(err, gorm.ErrDuplicatedKey) ||
		errors.Is(err, gorm.ErrForeignKeyViolated)
}
