package db

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/stdlib"
	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"

	"github.com/vaughan-dsouza/freelancehub/internal/config"
)

// Connect opens a pooled sqlx handle over pgx and checks it with a ping and
// a trivial query before returning.
func Connect(ctx context.Context, cfg config.DatabaseConfig, log *zap.Logger) (*sqlx.DB, error) {
	if log == nil {
		log = zap.NewNop()
	}

	pgCfg, err := pgx.ParseConfig(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("db: parse DSN: %w", err)
	}
	pgCfg.ConnectTimeout = 5 * time.Second
	pgCfg.Tracer = NewSlowQueryTracer(log, time.Duration(cfg.SlowQueryMS)*time.Millisecond)

	db := sqlx.NewDb(stdlib.OpenDB(*pgCfg), "pgx")

	db.SetMaxOpenConns(cfg.MaxOpen)
	db.SetMaxIdleConns(cfg.MaxIdle)
	db.SetConnMaxLifetime(time.Duration(cfg.MaxLifetime) * time.Second)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := db.PingContext(pingCtx); err != nil {
		db.Close()
		return nil, fmt.Errorf("db: connect to Postgres: %w", err)
	}

	var one int
	if err := db.QueryRowContext(pingCtx, "SELECT 1").Scan(&one); err != nil {
		db.Close()
		return nil, fmt.Errorf("db: health check: %w", err)
	}

	log.Info("PostgreSQL connection established",
		zap.String("host", pgCfg.Host),
		zap.String("database", pgCfg.Database),
		zap.Int("max_open", cfg.MaxOpen),
	)
	return db, nil
}
