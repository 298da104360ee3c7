package db

import (
	"context"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"github.com/vaughan-dsouza/freelancehub/internal/metrics"
)

const maxLoggedSQL = 200

type traceKey struct{}

type queryStart struct {
	at  time.Time
	sql string
}

// SlowQueryTracer logs and counts queries that run longer than threshold.
type SlowQueryTracer struct {
	log       *zap.Logger
	threshold time.Duration
}

func NewSlowQueryTracer(log *zap.Logger, threshold time.Duration) *SlowQueryTracer {
	if threshold <= 0 {
		threshold = 200 * time.Millisecond
	}
	return &SlowQueryTracer{log: log, threshold: threshold}
}

func (t *SlowQueryTracer) TraceQueryStart(ctx context.Context, _ *pgx.Conn, data pgx.TraceQueryStartData) context.Context {
	return context.WithValue(ctx, traceKey{}, queryStart{at: time.Now(), sql: data.SQL})
}

func (t *SlowQueryTracer) TraceQueryEnd(ctx context.Context, _ *pgx.Conn, data pgx.TraceQueryEndData) {
	start, ok := ctx.Value(traceKey{}).(queryStart)
	if !ok {
		return
	}
	took := time.Since(start.at)
	if took <= t.threshold {
		return
	}

	sql := strings.Join(strings.Fields(start.sql), " ")
	if len(sql) > maxLoggedSQL {
		sql = sql[:maxLoggedSQL] + "..."
	}
	command := "unknown"
	if f := strings.Fields(sql); len(f) > 0 {
		command = strings.ToUpper(f[0])
	}

	fields := []zap.Field{
		zap.String("sql", sql),
		zap.Duration("took", took),
		zap.String("command_tag", data.CommandTag.String()),
	}
	if data.Err != nil {
		fields = append(fields, zap.Error(data.Err))
	}
	t.log.Warn("slow query", fields...)
	metrics.IncrementSlowQuery(command)
}
