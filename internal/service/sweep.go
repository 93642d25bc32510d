package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/gfmartins/agroalert/internal/dispatch"
	"github.com/gfmartins/agroalert/internal/domain"
	"github.com/gfmartins/agroalert/internal/observability"
	"github.com/gfmartins/agroalert/internal/policy"
	"github.com/gfmartins/agroalert/internal/repository"
	"go.uber.org/zap"
)

// SweepStats summarizes one sweep for logging and metrics.
type SweepStats struct {
	Candidates int
	Suppressed int
	Sent       int
	Failed     int
}

// SweepService runs one full pass over today's reminder candidates:
// policy match, ledger check, dispatch, ledger record. The sweep is safe to
// re-run any number of times per day; the ledger suppresses duplicates.
type SweepService struct {
	policy     *policy.Policy
	ledger     repository.LedgerRepository
	dispatcher *dispatch.Dispatcher
	logger     *zap.Logger
	metrics    *observability.Metrics
	now        func() time.Time
}

func NewSweepService(
	matcher *policy.Policy,
	ledger repository.LedgerRepository,
	dispatcher *dispatch.Dispatcher,
	logger *zap.Logger,
) (*SweepService, error) {
	if matcher == nil {
		return nil, fmt.Errorf("policy is required")
	}
	if ledger == nil {
		return nil, fmt.Errorf("ledger repository is required")
	}
	if dispatcher == nil {
		return nil, fmt.Errorf("dispatcher is required")
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	return &SweepService{
		policy:     matcher,
		ledger:     ledger,
		dispatcher: dispatcher,
		logger:     logger,
		now:        time.Now,
	}, nil
}

func (s *SweepService) SetMetrics(metrics *observability.Metrics) {
	if s == nil {
		return
	}
	s.metrics = metrics
}

// Run executes one sweep. A single candidate's failure never aborts the
// rest; the returned error only reports source listing problems so the
// scheduler can log them.
func (s *SweepService) Run(ctx context.Context) (SweepStats, error) {
	if ctx == nil {
		ctx = context.Background()
	}

	start := s.now()
	today := start

	candidates, policyErr := s.policy.FindDueToday(ctx, today)

	var stats SweepStats
	stats.Candidates = len(candidates)

	for i := range candidates {
		if ctx.Err() != nil {
			// A canceled sweep leaves the remaining candidates for the next
			// cadence tick; the ledger keeps retries idempotent.
			return stats, ctx.Err()
		}
		s.processCandidate(ctx, candidates[i], &stats)
	}

	if s.metrics != nil {
		s.metrics.IncSweep()
		s.metrics.ObserveSweepDuration(s.now().Sub(start))
	}

	s.logger.Info("sweep completed",
		zap.Int("candidates", stats.Candidates),
		zap.Int("suppressed", stats.Suppressed),
		zap.Int("sent", stats.Sent),
		zap.Int("failed", stats.Failed),
	)

	return stats, policyErr
}

func (s *SweepService) processCandidate(ctx context.Context, candidate policy.Candidate, stats *SweepStats) {
	kind, deadlineID, thresholdKey := candidate.Key()

	if s.metrics != nil {
		s.metrics.IncCandidateMatched(kind.String())
	}

	sent, err := s.ledger.WasSent(ctx, kind, deadlineID, thresholdKey)
	if err != nil {
		// Without a readable ledger we cannot prove the reminder was not
		// already sent, so skip rather than risk a duplicate.
		s.logger.Error("ledger lookup failed, skipping candidate",
			zap.String("kind", kind.String()),
			zap.String("deadlineId", deadlineID),
			zap.String("threshold", thresholdKey),
			zap.Error(err),
		)
		return
	}
	if sent {
		stats.Suppressed++
		if s.metrics != nil {
			s.metrics.IncSuppressed()
		}
		return
	}

	outcome := s.dispatcher.Dispatch(ctx, candidate.Deadline, candidate.Threshold, candidate.DaysRemaining)

	record := &domain.SendRecord{
		DeadlineKind: kind,
		DeadlineID:   deadlineID,
		ThresholdKey: thresholdKey,
		EmailsSent:   outcome.EmailsAttempted,
		PhonesSent:   outcome.PhonesAttempted,
		Success:      outcome.Success(),
		ErrorDetail:  outcome.ErrorDetail,
	}

	if err := s.ledger.Record(ctx, record); err != nil {
		if errors.Is(err, domain.ErrConflict) {
			// Another sweep instance recorded the success first. The insert
			// conflict is the serialization point, not an error.
			stats.Suppressed++
			if s.metrics != nil {
				s.metrics.IncLedgerConflict()
			}
			s.logger.Info("send already recorded by a concurrent sweep",
				zap.String("kind", kind.String()),
				zap.String("deadlineId", deadlineID),
				zap.String("threshold", thresholdKey),
			)
			return
		}

		if s.metrics != nil {
			s.metrics.IncLedgerWriteFailure()
		}
		s.logger.Error("failed to record send in ledger",
			zap.String("kind", kind.String()),
			zap.String("deadlineId", deadlineID),
			zap.String("threshold", thresholdKey),
			zap.Error(err),
		)
		return
	}

	if outcome.Success() {
		stats.Sent++
	} else {
		stats.Failed++
		s.logger.Warn("reminder not delivered on any channel, will retry next sweep",
			zap.String("kind", kind.String()),
			zap.String("deadlineId", deadlineID),
			zap.String("threshold", thresholdKey),
		)
	}
}
