package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"
	_ "time/tzdata"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/pep299/daily-news-digest/internal/application"
	"github.com/pep299/daily-news-digest/internal/infrastructure"
	"github.com/pep299/daily-news-digest/internal/model"
	"github.com/pep299/daily-news-digest/internal/service"
	"github.com/pep299/daily-news-digest/internal/transport/server"
)

var (
	Version   = "dev"
	Commit    = "unknown"
	BuildTime = "unknown"
)

func main() {
	var envFile string

	cmd := &cobra.Command{
		Use:   "daily-news-digest-server",
		Short: "Daily News Digest Server",
		Long: `Daily News Digest Server

Serves POST /run (bearer token from TRIGGER_AUTH_TOKEN when set) and runs the
digest on the DIGEST_SCHEDULE cron spec in DIGEST_TIMEZONE.`,
		Version:      fmt.Sprintf("%s (commit %s, built %s)", Version, Commit, BuildTime),
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return serve(cmd.Context(), envFile)
		},
	}
	cmd.Flags().StringVar(&envFile, "env-file", ".env", "Path to the .env configuration file")

	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func serve(ctx context.Context, envFile string) error {
	cfg, err := infrastructure.Load(envFile)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	logger := infrastructure.NewLogger(cfg.LogLevel, os.Stderr)
	app := application.New(cfg, logger, os.Stdout)
	if app.Channel == model.ChannelNone {
		logger.Warn().Msg("⚠️  未配置任何推送方式，触发的运行将被拒绝")
	}

	ctx, cancel := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	scheduler, err := newScheduler(ctx, cfg, app.Digest, logger)
	if err != nil {
		return err
	}
	scheduler.Start()
	logger.Info().Msgf("📅 Scheduled digest with cron: %s (%s)", cfg.Schedule, cfg.Timezone)

	httpServer := &http.Server{
		Addr:         net.JoinHostPort(cfg.Host, cfg.Port),
		Handler:      server.NewRouter(app),
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 5 * time.Minute,
		IdleTimeout:  60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info().Msgf("🚀 Starting server on %s", httpServer.Addr)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case <-ctx.Done():
		logger.Info().Msg("🛑 Shutting down server...")
	case err := <-errCh:
		<-scheduler.Stop().Done()
		return fmt.Errorf("server failed: %w", err)
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("Server shutdown error")
	}

	// wait for a running digest to finish
	select {
	case <-scheduler.Stop().Done():
	case <-shutdownCtx.Done():
	}

	logger.Info().Msg("✅ Server stopped")
	return nil
}

type digestRunner interface {
	Run(ctx context.Context) (*service.Report, error)
}

// newScheduler registers one digest job on cfg.Schedule in cfg.Timezone.
// Overlapping runs are skipped.
func newScheduler(ctx context.Context, cfg *infrastructure.Config, digest digestRunner, logger zerolog.Logger) (*cron.Cron, error) {
	loc, err := time.LoadLocation(cfg.Timezone)
	if err != nil {
		return nil, fmt.Errorf("loading timezone %q: %w", cfg.Timezone, err)
	}

	cronLogger := cronLog{logger: logger}
	c := cron.New(
		cron.WithLocation(loc),
		cron.WithLogger(cronLogger),
		cron.WithChain(cron.Recover(cronLogger), cron.SkipIfStillRunning(cronLogger)),
	)

	_, err = c.AddFunc(cfg.Schedule, func() {
		logger.Info().Msg("🕐 Scheduled digest starting")
		report, err := digest.Run(ctx)
		switch {
		case err != nil:
			logger.Error().Err(err).Msg("❌ Scheduled digest failed")
		case !report.Delivery.OK:
			logger.Warn().Str("reason", report.Delivery.Message).Msg("⚠️  Scheduled digest not delivered")
		default:
			logger.Info().Str("channel", string(report.Channel)).Msg("✅ Scheduled digest delivered")
		}
	})
	if err != nil {
		return nil, fmt.Errorf("parsing DIGEST_SCHEDULE %q: %w", cfg.Schedule, err)
	}

	return c, nil
}

// cronLog adapts zerolog to cron.Logger
type cronLog struct {
	logger zerolog.Logger
}

func (l cronLog) Info(msg string, keysAndValues ...interface{}) {
	l.logger.Debug().Fields(keysAndValues).Msg(msg)
}

func (l cronLog) Error(err error, msg string, keysAndValues ...interface{}) {
	l.logger.Error().Err(err).Fields(keysAndValues).Msg(msg)
}
