package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/gfmartins/agroalert/internal/domain"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// LedgerRepository is the durable idempotency store for reminder sends.
// Entries are append-only; Record is the sole mutation.
type LedgerRepository interface {
	// WasSent reports whether a prior successful send exists for the exact
	// (kind, deadline id, threshold key) triple.
	WasSent(ctx context.Context, kind domain.Kind, deadlineID, thresholdKey string) (bool, error)
	// Record appends one ledger entry. Inserting a second success row for a
	// key already sent returns domain.ErrConflict, which callers must treat
	// as duplicate suppression rather than a failure.
	Record(ctx context.Context, record *domain.SendRecord) error
	ListByDeadline(ctx context.Context, kind domain.Kind, deadlineID string) ([]domain.SendRecord, error)
	// ListRecentFailures returns the newest failed attempts, the only
	// user-visible trace of a deadline stuck in unsent state.
	ListRecentFailures(ctx context.Context, limit int) ([]domain.SendRecord, error)
}

type GormLedgerRepo struct {
	db  *gorm.DB
	now func() time.Time
}

func NewGormLedgerRepo(db *gorm.DB) *GormLedgerRepo {
	return &GormLedgerRepo{db: db, now: time.Now}
}

func (r *GormLedgerRepo) WasSent(ctx context.Context, kind domain.Kind, deadlineID, thresholdKey string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&SendRecordModel{}).
		Where("deadline_kind = ? AND deadline_id = ? AND threshold_key = ? AND success = ?",
			kind, deadlineID, thresholdKey, true).
		Limit(1).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *GormLedgerRepo) Record(ctx context.Context, record *domain.SendRecord) error {
	if err := record.Validate(); err != nil {
		return err
	}

	model := sendRecordModelFromDomain(record)
	if strings.TrimSpace(model.ID) == "" {
		model.ID = uuid.NewString()
	}
	if model.SentAt.IsZero() {
		model.SentAt = r.now().UTC()
	}

	if err := r.db.WithContext(ctx).Create(model).Error; err != nil {
		if isUniqueViolationError(err) {
			return fmt.Errorf("%w: send already recorded for %s/%s/%s",
				domain.ErrConflict, record.DeadlineKind, record.DeadlineID, record.ThresholdKey)
		}
		return err
	}

	record.ID = model.ID
	record.SentAt = model.SentAt
	return nil
}

func (r *GormLedgerRepo) ListByDeadline(ctx context.Context, kind domain.Kind, deadlineID string) ([]domain.SendRecord, error) {
	var models []SendRecordModel
	err := r.db.WithContext(ctx).
		Where("deadline_kind = ? AND deadline_id = ?", kind, deadlineID).
		Order("sent_at DESC").
		Find(&models).Error
	if err != nil {
		return nil, err
	}
	return sendRecordModelsToDomain(models), nil
}

func (r *GormLedgerRepo) ListRecentFailures(ctx context.Context, limit int) ([]domain.SendRecord, error) {
	if limit < 1 {
		limit = 50
	}

	var models []SendRecordModel
	err := r.db.WithContext(ctx).
		Where("success = ?", false).
		Order("sent_at DESC").
		Limit(limit).
		Find(&models).Error
	if err != nil {
		return nil, err
	}
	return sendRecordModelsToDomain(models), nil
}

func sendRecordModelsToDomain(models []SendRecordModel) []domain.SendRecord {
	records := make([]domain.SendRecord, 0, len(models))
	for i := range models {
		records = append(records, *sendRecordModelToDomain(&models[i]))
	}
	return records
}

func isUniqueViolationError(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}

	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "duplicate key") || strings.Contains(msg, "unique constraint")
}
