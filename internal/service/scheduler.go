package service

import (
	"context"
	"fmt"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

const defaultSweepSchedule = "0 * * * *"

// Sweeper runs one full reminder pass.
type Sweeper interface {
	Run(ctx context.Context) (SweepStats, error)
}

// Scheduler triggers sweeps on a cron cadence. Overlapping runs are skipped
// (single-flight); even if an external trigger ever overlaps a scheduled
// one, the ledger's unique insert keeps sends at-most-once.
type Scheduler struct {
	sweeper  Sweeper
	schedule string
	logger   *zap.Logger
}

func NewScheduler(sweeper Sweeper, schedule string, logger *zap.Logger) (*Scheduler, error) {
	if sweeper == nil {
		return nil, fmt.Errorf("sweeper is required")
	}
	if schedule == "" {
		schedule = defaultSweepSchedule
	}
	if _, err := cron.ParseStandard(schedule); err != nil {
		return nil, fmt.Errorf("invalid sweep schedule %q: %w", schedule, err)
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Scheduler{
		sweeper:  sweeper,
		schedule: schedule,
		logger:   logger,
	}, nil
}

// Start blocks until the context is canceled, sweeping on the configured
// cadence. One sweep runs immediately so reminders already due do not wait
// for the first tick.
func (s *Scheduler) Start(ctx context.Context) error {
	if ctx == nil {
		ctx = context.Background()
	}

	s.runSweep(ctx)

	cronLogger := &zapCronLogger{logger: s.logger}
	c := cron.New(cron.WithChain(cron.SkipIfStillRunning(cronLogger)))

	if _, err := c.AddFunc(s.schedule, func() { s.runSweep(ctx) }); err != nil {
		return fmt.Errorf("failed to register sweep job: %w", err)
	}

	s.logger.Info("sweep scheduler started", zap.String("schedule", s.schedule))
	c.Start()

	<-ctx.Done()

	stopCtx := c.Stop()
	<-stopCtx.Done()
	s.logger.Info("sweep scheduler stopped")
	return nil
}

func (s *Scheduler) runSweep(ctx context.Context) {
	stats, err := s.sweeper.Run(ctx)
	if err != nil {
		if ctx.Err() != nil {
			return
		}
		s.logger.Error("sweep finished with errors",
			zap.Int("candidates", stats.Candidates),
			zap.Int("sent", stats.Sent),
			zap.Error(err),
		)
	}
}

// zapCronLogger adapts zap to the cron.Logger interface.
type zapCronLogger struct {
	logger *zap.Logger
}

func (l *zapCronLogger) Info(msg string, keysAndValues ...interface{}) {
	l.logger.Info(msg, cronFields(keysAndValues)...)
}

func (l *zapCronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	fields := append(cronFields(keysAndValues), zap.Error(err))
	l.logger.Error(msg, fields...)
}

func cronFields(keysAndValues []interface{}) []zap.Field {
	fields := make([]zap.Field, 0, len(keysAndValues)/2)
	for i := 0; i+1 < len(keysAndValues); i += 2 {
		key, ok := keysAndValues[i].(string)
		if !ok {
			key = fmt.Sprintf("%v", keysAndValues[i])
		}
		fields = append(fields, zap.Any(key, keysAndValues[i+1]))
	}
	return fields
}
