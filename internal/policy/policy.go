// Package policy decides which deadlines cross a reminder threshold on a
// given day. Matching is exact: a threshold fires only on the day when the
// remaining days equal the configured offset, so a threshold whose day has
// passed is missed for good. The policy is a pure query over calendar state;
// duplicate suppression happens downstream in the send ledger.
package policy

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/gfmartins/agroalert/internal/domain"
	"github.com/gfmartins/agroalert/internal/repository"
	"go.uber.org/zap"
)

// Candidate pairs an eligible deadline with the threshold it crosses today.
type Candidate struct {
	Deadline      domain.Deadline
	Threshold     domain.Threshold
	DaysRemaining int
}

// Key is the ledger identity of the candidate.
func (c Candidate) Key() (domain.Kind, string, string) {
	return c.Deadline.Kind, c.Deadline.ID, c.Threshold.Key
}

type Policy struct {
	source repository.DeadlineSource
	logger *zap.Logger
}

func New(source repository.DeadlineSource, logger *zap.Logger) (*Policy, error) {
	if source == nil {
		return nil, fmt.Errorf("deadline source is required")
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Policy{source: source, logger: logger}, nil
}

// FindDueToday returns every (deadline, threshold) pair whose reminder is due
// on the given day. A failure listing one record kind does not hide matches
// from the other: partial results are returned together with the error.
func (p *Policy) FindDueToday(ctx context.Context, today time.Time) ([]Candidate, error) {
	if ctx == nil {
		ctx = context.Background()
	}

	var candidates []Candidate
	var errs []error

	documents, err := p.source.ListDocumentsWithDueDate(ctx)
	if err != nil {
		errs = append(errs, fmt.Errorf("failed to list documents: %w", err))
	} else {
		candidates = append(candidates, matchDeadlines(documents, today)...)
	}

	debts, err := p.source.ListActiveDebts(ctx, today)
	if err != nil {
		errs = append(errs, fmt.Errorf("failed to list active debts: %w", err))
	} else {
		candidates = append(candidates, matchDeadlines(debts, today)...)
	}

	if len(errs) > 0 {
		return candidates, errors.Join(errs...)
	}
	return candidates, nil
}

func matchDeadlines(deadlines []domain.Deadline, today time.Time) []Candidate {
	var candidates []Candidate
	for _, deadline := range deadlines {
		if deadline.DueDate.IsZero() {
			continue
		}

		days := deadline.DaysUntil(today)
		if days < 0 {
			continue
		}

		for _, threshold := range deadline.Thresholds {
			if days == threshold.Days {
				candidates = append(candidates, Candidate{
					Deadline:      deadline,
					Threshold:     threshold,
					DaysRemaining: days,
				})
			}
		}
	}
	return candidates
}
