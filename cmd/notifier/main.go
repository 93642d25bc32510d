package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gfmartins/agroalert/internal/channel"
	"github.com/gfmartins/agroalert/internal/config"
	"github.com/gfmartins/agroalert/internal/dispatch"
	"github.com/gfmartins/agroalert/internal/infra/postgresql"
	"github.com/gfmartins/agroalert/internal/infra/postgresql/migrations"
	infraredis "github.com/gfmartins/agroalert/internal/infra/redis"
	"github.com/gfmartins/agroalert/internal/observability"
	"github.com/gfmartins/agroalert/internal/policy"
	"github.com/gfmartins/agroalert/internal/repository"
	"github.com/gfmartins/agroalert/internal/service"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logger, err := observability.NewLogger(cfg.LogLevel)
	if err != nil {
		log.Fatalf("failed to initialize logger: %v", err)
	}
	defer logger.Sync() //nolint:errcheck

	if err := run(cfg, logger); err != nil {
		logger.Fatal("notifier stopped with error", zap.Error(err))
	}
}

func run(cfg *config.Config, logger *zap.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	db, err := postgresql.NewPostgres(cfg.DatabaseDSN)
	if err != nil {
		return fmt.Errorf("postgres initialization failed: %w", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		return fmt.Errorf("postgres underlying db init failed: %w", err)
	}
	defer sqlDB.Close()

	if err := migrations.Migrate(db); err != nil {
		return fmt.Errorf("database migrations failed: %w", err)
	}

	rdb, err := infraredis.NewRedis(cfg.RedisURL)
	if err != nil {
		return fmt.Errorf("redis initialization failed: %w", err)
	}
	defer rdb.Close()

	limiter, err := infraredis.NewRedisRateLimiter(rdb, cfg.ChannelRatePerSec)
	if err != nil {
		return fmt.Errorf("rate limiter initialization failed: %w", err)
	}

	// Missing channel credentials disable that channel, never the notifier:
	// the other channel still delivers and failed candidates stay retryable.
	var emailChannel channel.EmailChannel
	smtpCfg := channel.SMTPConfig{
		Host:     cfg.SMTPHost,
		Port:     cfg.SMTPPort,
		Username: cfg.SMTPUsername,
		Password: cfg.SMTPPassword,
		From:     cfg.MailFrom,
	}
	if smtpCfg.Complete() {
		smtp, err := channel.NewSMTPEmailChannel(smtpCfg)
		if err != nil {
			return fmt.Errorf("email channel initialization failed: %w", err)
		}
		emailChannel = smtp
	} else {
		logger.Warn("smtp configuration incomplete, email channel disabled")
	}

	var textChannel channel.TextChannel
	if cfg.TextGatewayURL != "" {
		gateway, err := channel.NewTextGatewayChannel(cfg.TextGatewayURL, cfg.TextGatewayToken, cfg.TextFrom)
		if err != nil {
			return fmt.Errorf("text channel initialization failed: %w", err)
		}
		textChannel = gateway
	} else {
		logger.Warn("text gateway not configured, text channel disabled")
	}

	metrics := observability.NewMetrics()

	deadlines := repository.NewGormDeadlineRepo(db, logger)
	ledger := repository.NewGormLedgerRepo(db)

	matcher, err := policy.New(deadlines, logger)
	if err != nil {
		return fmt.Errorf("policy initialization failed: %w", err)
	}

	dispatcher, err := dispatch.NewDispatcher(
		emailChannel,
		textChannel,
		limiter,
		time.Duration(cfg.SendTimeoutSec)*time.Second,
		logger,
	)
	if err != nil {
		return fmt.Errorf("dispatcher initialization failed: %w", err)
	}
	dispatcher.SetMetrics(metrics)

	sweep, err := service.NewSweepService(matcher, ledger, dispatcher, logger)
	if err != nil {
		return fmt.Errorf("sweep service initialization failed: %w", err)
	}
	sweep.SetMetrics(metrics)

	scheduler, err := service.NewScheduler(sweep, cfg.SweepSchedule, logger)
	if err != nil {
		return fmt.Errorf("scheduler initialization failed: %w", err)
	}

	mux := http.NewServeMux()
	mux.Handle("/metrics", metrics.Handler())
	metricsServer := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.MetricsPort),
		Handler: mux,
	}

	logger.Info("agroalert notifier started",
		zap.String("schedule", cfg.SweepSchedule),
		zap.Int("metricsPort", cfg.MetricsPort),
	)

	g, groupCtx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return scheduler.Start(groupCtx)
	})

	g.Go(func() error {
		if err := metricsServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("metrics server failed: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		<-groupCtx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return metricsServer.Shutdown(shutdownCtx)
	})

	return g.Wait()
}
