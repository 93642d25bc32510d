package domain

import (
	"fmt"
	"strings"
	"time"
)

// SendRecord is one append-only ledger entry for a dispatch attempt. Every
// attempt is recorded, including failed ones, but only entries with
// Success=true suppress future sends for the same
// (deadline kind, deadline id, threshold key) triple.
type SendRecord struct {
	ID           string
	DeadlineKind Kind
	DeadlineID   string
	ThresholdKey string
	EmailsSent   []string
	PhonesSent   []string
	Success      bool
	ErrorDetail  *string
	SentAt       time.Time
}

func (r *SendRecord) Validate() error {
	if r == nil {
		return fmt.Errorf("%w: send record is required", ErrValidation)
	}
	if !r.DeadlineKind.IsValid() {
		return fmt.Errorf("%w: invalid deadline kind %q", ErrValidation, r.DeadlineKind)
	}
	if strings.TrimSpace(r.DeadlineID) == "" {
		return fmt.Errorf("%w: deadline id is required", ErrValidation)
	}
	if strings.TrimSpace(r.ThresholdKey) == "" {
		return fmt.Errorf("%w: threshold key is required", ErrValidation)
	}
	return nil
}
