package logger

import (
	"context"
	"errors"
	"strings"
	"time"

	"go.uber.org/zap"
	gormlogger "gorm.io/gorm/logger"
)

// QueryLoggerConfig configures database statement logging.
type QueryLoggerConfig struct {
	// SlowThreshold marks statements logged at warn level. Zero disables it.
	SlowThreshold time.Duration
	// LogQueries logs every statement at debug level.
	LogQueries bool
}

// QueryLogger sends gorm output to the request-scoped zap logger. Each
// statement is tagged with its operation and table so catalog reads can be
// told apart from invoice writes within one billing session's logs.
type QueryLogger struct {
	level         gormlogger.LogLevel
	slowThreshold time.Duration
}

func NewQueryLogger(cfg QueryLoggerConfig) *QueryLogger {
	level := gormlogger.Warn
	if cfg.LogQueries {
		level = gormlogger.Info
	}
	return &QueryLogger{level: level, slowThreshold: cfg.SlowThreshold}
}

func (l *QueryLogger) LogMode(level gormlogger.LogLevel) gormlogger.Interface {
	next := *l
	next.level = level
	return &next
}

func (l *QueryLogger) Info(ctx context.Context, msg string, data ...interface{}) {
	l.message(ctx, gormlogger.Info, msg, data)
}

func (l *QueryLogger) Warn(ctx context.Context, msg string, data ...interface{}) {
	l.message(ctx, gormlogger.Warn, msg, data)
}

func (l *QueryLogger) Error(ctx context.Context, msg string, data ...interface{}) {
	l.message(ctx, gormlogger.Error, msg, data)
}

// Trace logs failed and slow statements, and every statement when query
// logging is on. A missing row is not a failure: repositories turn it into a
// not-found result.
func (l *QueryLogger) Trace(ctx context.Context, begin time.Time, fc func() (string, int64), err error) {
	if l.level <= gormlogger.Silent {
		return
	}

	elapsed := time.Since(begin)
	failed := err != nil && !errors.Is(err, gormlogger.ErrRecordNotFound)
	slow := l.slowThreshold > 0 && elapsed > l.slowThreshold

	switch {
	case failed && l.level >= gormlogger.Error:
		fields := append(statementFields(fc, elapsed), zap.Error(err))
		FromContext(ctx).Error("db.query_failed", fields...)
	case slow && l.level >= gormlogger.Warn:
		fields := append(statementFields(fc, elapsed), zap.Duration("slow_threshold", l.slowThreshold))
		FromContext(ctx).Warn("db.query_slow", fields...)
	case l.level >= gormlogger.Info:
		FromContext(ctx).Debug("db.query", statementFields(fc, elapsed)...)
	}
}

// ParamsFilter keeps bound values, such as member names, out of the logs.
func (l *QueryLogger) ParamsFilter(_ context.Context, sql string, _ ...interface{}) (string, []interface{}) {
	return sql, nil
}

func (l *QueryLogger) message(ctx context.Context, level gormlogger.LogLevel, msg string, data []interface{}) {
	if l.level < level {
		return
	}
	fields := []zap.Field{zap.String("component", "db")}
	if len(data) > 0 {
		fields = append(fields, zap.Any("data", data))
	}

	log := FromContext(ctx)
	switch level {
	case gormlogger.Error:
		log.Error(msg, fields...)
	case gormlogger.Warn:
		log.Warn(msg, fields...)
	default:
		log.Info(msg, fields...)
	}
}

func statementFields(fc func() (string, int64), elapsed time.Duration) []zap.Field {
	sql, rows := fc()
	sql = strings.TrimSpace(sql)
	operation, table := describeStatement(sql)

	fields := []zap.Field{
		zap.String("component", "db"),
		zap.String("operation", operation),
		zap.String("table", table),
		zap.String("sql", sql),
		zap.Int64("duration_ms", elapsed.Milliseconds()),
	}
	if rows >= 0 {
		fields = append(fields, zap.Int64("rows", rows))
	}
	return fields
}

// describeStatement returns the DML verb of sql and the table it targets.
// Either is "unknown" when it cannot be read off the statement.
func describeStatement(sql string) (operation, table string) {
	operation, table = "unknown", "unknown"

	tokens := strings.Fields(sql)
	tableNext := false
	for _, raw := range tokens {
		token := strings.Trim(raw, "();,")
		word := strings.ToUpper(token)

		if tableNext {
			if name := strings.Trim(token, "`\"[]"); name != "" {
				table = strings.ToLower(name)
			}
			return operation, table
		}

		switch word {
		case "SELECT", "INSERT", "UPDATE", "DELETE":
			if operation == "unknown" {
				operation = strings.ToLower(word)
			}
			tableNext = word == "UPDATE"
		case "FROM", "INTO":
			tableNext = operation != "unknown"
		}
	}
	return operation, table
}

var _ gormlogger.Interface = (*QueryLogger)(nil)
