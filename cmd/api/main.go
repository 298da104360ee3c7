package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/vaughan-dsouza/freelancehub/internal/config"
	"github.com/vaughan-dsouza/freelancehub/internal/db"
	"github.com/vaughan-dsouza/freelancehub/internal/events"
	"github.com/vaughan-dsouza/freelancehub/internal/handlers"
	"github.com/vaughan-dsouza/freelancehub/internal/logger"
	"github.com/vaughan-dsouza/freelancehub/internal/ratelimit"
	"github.com/vaughan-dsouza/freelancehub/internal/server"
	"github.com/vaughan-dsouza/freelancehub/internal/store"
)

var configPath string

func main() {
	root := &cobra.Command{
		Use:           "api",
		Short:         "Freelance project management API",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE:          runServe,
	}
	root.PersistentFlags().StringVarP(&configPath, "config", "c", "config.yaml", "path to YAML config")

	root.AddCommand(
		&cobra.Command{
			Use:   "serve",
			Short: "Run the HTTP server",
			RunE:  runServe,
		},
		&cobra.Command{
			Use:       "migrate [up|down|status]",
			Short:     "Apply or inspect database migrations",
			Args:      cobra.MaximumNArgs(1),
			ValidArgs: []string{"up", "down", "status"},
			RunE:      runMigrate,
		},
	)

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func runMigrate(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	dbConn, err := db.Connect(cmd.Context(), cfg.Database, nil)
	if err != nil {
		return err
	}
	defer dbConn.Close()

	command := "up"
	if len(args) == 1 {
		command = args[0]
	}
	return db.Migrate(cmd.Context(), dbConn.DB, command)
}

func runServe(cmd *cobra.Command, _ []string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	log, err := logger.New(cfg.Log.Level, cfg.Log.File)
	if err != nil {
		return fmt.Errorf("logger: %w", err)
	}
	defer log.Sync()

	dbConn, err := db.Connect(cmd.Context(), cfg.Database, log)
	if err != nil {
		return err
	}
	defer dbConn.Close()

	var limiter ratelimit.Limiter = ratelimit.Nop{}
	if cfg.Redis.Addr != "" {
		rdb := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		defer rdb.Close()
		limiter = ratelimit.NewRedisLimiter(rdb, cfg.Login.MaxAttempts, cfg.LoginWindow())
		log.Info("login throttling enabled", zap.String("redis", cfg.Redis.Addr))
	}

	var publisher events.Publisher = events.Nop{}
	if cfg.MQ.URL != "" {
		p, err := events.NewAMQPPublisher(cfg.MQ.URL)
		if err != nil {
			// events are best effort; keep serving without them
			log.Warn("event broker unavailable", zap.Error(err))
		} else {
			defer p.Close()
			publisher = p
		}
	}

	st := store.New(dbConn)
	h := handlers.NewHandler(handlers.Deps{
		Store:   st,
		Log:     log,
		Events:  publisher,
		Limiter: limiter,
		Tokens: handlers.TokenConfig{
			AccessSecret:  cfg.JWT.AccessSecret,
			RefreshSecret: cfg.JWT.RefreshSecret,
			AccessTTL:     cfg.AccessTTL(),
			RefreshTTL:    cfg.RefreshTTL(),
		},
	})

	srv := &http.Server{
		Addr: cfg.Addr(),
		Handler: server.NewRouter(server.Options{
			Handlers:     h,
			DB:           st,
			Log:          log,
			AccessSecret: cfg.JWT.AccessSecret,
			CORSOrigin:   cfg.CORSOrigin,
		}),
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		log.Info("listening", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("listen: %w", err)
		}
	case <-ctx.Done():
	}
	log.Info("shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}

	log.Info("server exited")
	return nil
}
