package repository

import (
	"context"
	"strings"
	"time"

	"github.com/gfmartins/agroalert/internal/domain"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// DeadlineSource is the read-only view over deadline-bearing records. The
// CRUD layer owns all mutations to these tables; the notifier only reads.
type DeadlineSource interface {
	ListDocumentsWithDueDate(ctx context.Context) ([]domain.Deadline, error)
	ListActiveDebts(ctx context.Context, today time.Time) ([]domain.Deadline, error)
}

type GormDeadlineRepo struct {
	db     *gorm.DB
	logger *zap.Logger
}

func NewGormDeadlineRepo(db *gorm.DB, logger *zap.Logger) *GormDeadlineRepo {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &GormDeadlineRepo{db: db, logger: logger}
}

// ListDocumentsWithDueDate resolves every document that has a due date into
// the uniform deadline shape. Documents without a due date are never
// eligible, so they are filtered at the query.
func (r *GormDeadlineRepo) ListDocumentsWithDueDate(ctx context.Context) ([]domain.Deadline, error) {
	var models []DocumentModel
	err := r.db.WithContext(ctx).
		Where("due_date IS NOT NULL").
		Preload("Farm").
		Preload("Person").
		Find(&models).Error
	if err != nil {
		return nil, err
	}

	deadlines := make([]domain.Deadline, 0, len(models))
	for i := range models {
		deadlines = append(deadlines, r.documentToDeadline(&models[i]))
	}
	return deadlines, nil
}

// ListActiveDebts resolves every debt with an active alert configuration and
// a final due date still in the future.
func (r *GormDeadlineRepo) ListActiveDebts(ctx context.Context, today time.Time) ([]domain.Deadline, error) {
	var models []DebtModel
	err := r.db.WithContext(ctx).
		Joins("JOIN debt_alert_configs ON debt_alert_configs.debt_id = debts.id AND debt_alert_configs.active = ?", true).
		Where("debts.final_due_date > ?", today).
		Preload("AlertConfig").
		Preload("Installments").
		Preload("People").
		Find(&models).Error
	if err != nil {
		return nil, err
	}

	deadlines := make([]domain.Deadline, 0, len(models))
	for i := range models {
		deadlines = append(deadlines, r.debtToDeadline(&models[i]))
	}
	return deadlines, nil
}

func (r *GormDeadlineRepo) documentToDeadline(m *DocumentModel) domain.Deadline {
	emails := r.decodeList(m.NotifyEmails, m.ID, "notify_emails")
	phones := r.decodeList(m.NotifyPhones, m.ID, "notify_phones")

	offsets, err := decodeIntList(m.NotifyOffsets)
	if err != nil {
		r.logger.Warn("malformed notify_offsets column, using defaults",
			zap.String("documentId", m.ID),
			zap.Error(err),
		)
		offsets = nil
	}
	if len(offsets) == 0 {
		offsets = []int{30}
	}

	recipients := domain.Recipients{PhoneEnabled: m.PhoneAlertsEnabled}
	recipients.Emails = emails
	if m.PhoneAlertsEnabled {
		recipients.PhoneNumbers = phones
	}

	// Contacts inherited from the linked person, gated by the person's own
	// opt-in flags.
	entityName := ""
	entityKind := "Fazenda/Área"
	if m.EntityKind == EntityKindPerson {
		entityKind = "Pessoa"
	}
	switch {
	case m.Farm != nil:
		entityName = m.Farm.Name
	case m.Person != nil:
		entityName = m.Person.Name
	}
	if m.Person != nil {
		if m.Person.NotifyEmail && m.Person.Email != nil && strings.TrimSpace(*m.Person.Email) != "" {
			recipients.Emails = append(recipients.Emails, *m.Person.Email)
		}
		if m.Person.NotifyPhone && m.Person.Phone != nil && strings.TrimSpace(*m.Person.Phone) != "" {
			recipients.PhoneNumbers = append(recipients.PhoneNumbers, *m.Person.Phone)
			recipients.PhoneEnabled = true
		}
	}

	docType := m.DocType
	if m.CustomType != nil && strings.TrimSpace(*m.CustomType) != "" {
		docType = *m.CustomType
	}

	dueDate := time.Time{}
	if m.DueDate != nil {
		dueDate = *m.DueDate
	}

	return domain.Deadline{
		Kind:       domain.KindDocument,
		ID:         m.ID,
		Label:      m.Name,
		EntityName: entityName,
		IssueDate:  m.IssueDate,
		DueDate:    dueDate,
		Thresholds: domain.DocumentThresholds(offsets),
		Recipients: recipients,
		Document: &domain.DocumentDetails{
			Type:       docType,
			EntityKind: entityKind,
		},
	}
}

func (r *GormDeadlineRepo) debtToDeadline(m *DebtModel) domain.Deadline {
	recipients := domain.Recipients{}
	if m.AlertConfig != nil {
		recipients.Emails = r.decodeList(m.AlertConfig.Emails, m.ID, "emails")
		recipients.PhoneEnabled = m.AlertConfig.NotifyPhone
		if m.AlertConfig.NotifyPhone {
			recipients.PhoneNumbers = r.decodeList(m.AlertConfig.Phones, m.ID, "phones")
		}
	}

	personNames := make([]string, 0, len(m.People))
	for _, person := range m.People {
		personNames = append(personNames, person.Name)
	}

	installments := make([]domain.Installment, 0, len(m.Installments))
	for _, inst := range m.Installments {
		installments = append(installments, domain.Installment{
			DueDate: inst.DueDate,
			Amount:  inst.Amount,
			Paid:    inst.Paid,
		})
	}

	entityName := strings.Join(personNames, ", ")

	return domain.Deadline{
		Kind:       domain.KindDebt,
		ID:         m.ID,
		Label:      m.Bank,
		EntityName: entityName,
		IssueDate:  m.IssueDate,
		DueDate:    m.FinalDueDate,
		Thresholds: domain.DebtThresholds,
		Recipients: recipients,
		Debt: &domain.DebtDetails{
			Bank:           m.Bank,
			ProposalNumber: m.ProposalNumber,
			InterestRate:   m.InterestRate,
			InterestAnnual: m.InterestPeriod == InterestPeriodYear,
			OperationValue: m.OperationValue,
			PersonNames:    personNames,
			Installments:   installments,
		},
	}
}

func (r *GormDeadlineRepo) decodeList(raw, recordID, column string) []string {
	values, err := decodeStringList(raw)
	if err != nil {
		r.logger.Warn("malformed recipient list column, treating as empty",
			zap.String("recordId", recordID),
			zap.String("column", column),
			zap.Error(err),
		)
		return nil
	}
	return values
}
