package repository

import (
	"encoding/json"
	"time"

	"github.com/gfmartins/agroalert/internal/domain"
)

// EntityKind values stored on documents.
const (
	EntityKindFarm   = "FARM"
	EntityKindPerson = "PERSON"
)

// FarmModel is the persistence model for the farms table. Only the fields
// the notifier reads are mapped; the CRUD layer owns the rest of the schema.
type FarmModel struct {
	ID        string `gorm:"type:uuid;primaryKey"`
	Name      string `gorm:"type:varchar(100);not null"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

func (FarmModel) TableName() string { return "farms" }

// PersonModel is the persistence model for the people table. A person's own
// contact becomes an inherited recipient for linked documents when the
// matching opt-in flag is set.
type PersonModel struct {
	ID          string  `gorm:"type:uuid;primaryKey"`
	Name        string  `gorm:"type:varchar(100);not null"`
	Email       *string `gorm:"type:varchar(100)"`
	Phone       *string `gorm:"type:varchar(20)"`
	NotifyEmail bool    `gorm:"not null;default:true"`
	NotifyPhone bool    `gorm:"not null;default:false"`
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

func (PersonModel) TableName() string { return "people" }

// DocumentModel is the persistence model for the documents table.
// NotifyEmails, NotifyPhones and NotifyOffsets are JSON-encoded lists.
type DocumentModel struct {
	ID                 string     `gorm:"type:uuid;primaryKey"`
	Name               string     `gorm:"type:varchar(100);not null"`
	DocType            string     `gorm:"type:varchar(50);not null"`
	CustomType         *string    `gorm:"type:varchar(100)"`
	IssueDate          time.Time  `gorm:"type:date;not null"`
	DueDate            *time.Time `gorm:"type:date"`
	EntityKind         string     `gorm:"type:varchar(10);not null"`
	FarmID             *string    `gorm:"type:uuid"`
	PersonID           *string    `gorm:"type:uuid"`
	NotifyEmails       string     `gorm:"type:text"`
	NotifyPhones       string     `gorm:"type:text"`
	PhoneAlertsEnabled bool       `gorm:"not null;default:false"`
	NotifyOffsets      string     `gorm:"type:text"`
	CreatedAt          time.Time
	UpdatedAt          time.Time

	Farm   *FarmModel   `gorm:"foreignKey:FarmID"`
	Person *PersonModel `gorm:"foreignKey:PersonID"`
}

func (DocumentModel) TableName() string { return "documents" }

// DebtModel is the persistence model for the debts table.
type DebtModel struct {
	ID             string    `gorm:"type:uuid;primaryKey"`
	Bank           string    `gorm:"type:varchar(255);not null"`
	ProposalNumber string    `gorm:"type:varchar(255);not null"`
	IssueDate      time.Time `gorm:"type:date;not null"`
	FinalDueDate   time.Time `gorm:"type:date;not null"`
	InterestRate   float64   `gorm:"type:numeric(10,4);not null"`
	InterestPeriod string    `gorm:"type:varchar(10);not null"`
	GraceMonths    *int
	OperationValue *float64 `gorm:"type:numeric(15,2)"`
	CreatedAt      time.Time
	UpdatedAt      time.Time

	People       []PersonModel         `gorm:"many2many:debt_people"`
	Installments []InstallmentModel    `gorm:"foreignKey:DebtID"`
	AlertConfig  *DebtAlertConfigModel `gorm:"foreignKey:DebtID"`
}

func (DebtModel) TableName() string { return "debts" }

// InterestPeriod values stored on debts.
const (
	InterestPeriodYear  = "year"
	InterestPeriodMonth = "month"
)

// InstallmentModel is the persistence model for the installments table.
type InstallmentModel struct {
	ID        string    `gorm:"type:uuid;primaryKey"`
	DebtID    string    `gorm:"type:uuid;not null"`
	DueDate   time.Time `gorm:"type:date;not null"`
	Amount    float64   `gorm:"type:numeric(15,2);not null"`
	Paid      bool      `gorm:"not null;default:false"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

func (InstallmentModel) TableName() string { return "installments" }

// DebtAlertConfigModel is the persistence model for debt_alert_configs.
// A debt is eligible for reminders only while Active is true.
type DebtAlertConfigModel struct {
	ID          string `gorm:"type:uuid;primaryKey"`
	DebtID      string `gorm:"type:uuid;not null;uniqueIndex"`
	Emails      string `gorm:"type:text;not null"`
	Phones      string `gorm:"type:text"`
	Active      bool   `gorm:"not null;default:true"`
	NotifyPhone bool   `gorm:"not null;default:false"`
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

func (DebtAlertConfigModel) TableName() string { return "debt_alert_configs" }

// SendRecordModel is the persistence model for the send_records ledger.
// Rows are append-only; a partial unique index on
// (deadline_kind, deadline_id, threshold_key) WHERE success enforces at most
// one success row per key while keeping every failed attempt for audit.
type SendRecordModel struct {
	ID           string      `gorm:"type:uuid;primaryKey"`
	DeadlineKind domain.Kind `gorm:"type:varchar(10);not null"`
	DeadlineID   string      `gorm:"type:uuid;not null"`
	ThresholdKey string      `gorm:"type:varchar(20);not null"`
	EmailsSent   string      `gorm:"type:text;not null"`
	PhonesSent   string      `gorm:"type:text"`
	Success      bool        `gorm:"not null;default:false"`
	ErrorDetail  *string     `gorm:"type:text"`
	SentAt       time.Time   `gorm:"type:timestamptz;not null"`
}

func (SendRecordModel) TableName() string { return "send_records" }

func sendRecordModelFromDomain(r *domain.SendRecord) *SendRecordModel {
	if r == nil {
		return nil
	}

	return &SendRecordModel{
		ID:           r.ID,
		DeadlineKind: r.DeadlineKind,
		DeadlineID:   r.DeadlineID,
		ThresholdKey: r.ThresholdKey,
		EmailsSent:   encodeStringList(r.EmailsSent),
		PhonesSent:   encodeStringList(r.PhonesSent),
		Success:      r.Success,
		ErrorDetail:  r.ErrorDetail,
		SentAt:       r.SentAt,
	}
}

func sendRecordModelToDomain(m *SendRecordModel) *domain.SendRecord {
	if m == nil {
		return nil
	}

	emails, _ := decodeStringList(m.EmailsSent)
	phones, _ := decodeStringList(m.PhonesSent)

	return &domain.SendRecord{
		ID:           m.ID,
		DeadlineKind: m.DeadlineKind,
		DeadlineID:   m.DeadlineID,
		ThresholdKey: m.ThresholdKey,
		EmailsSent:   emails,
		PhonesSent:   phones,
		Success:      m.Success,
		ErrorDetail:  m.ErrorDetail,
		SentAt:       m.SentAt,
	}
}

// decodeStringList parses a JSON-encoded list column. An empty column decodes
// to an empty list; malformed JSON also decodes to an empty list so that one
// bad column never blocks the rest of the record, and the error is returned
// for the caller to log.
func decodeStringList(raw string) ([]string, error) {
	if raw == "" {
		return nil, nil
	}
	var values []string
	if err := json.Unmarshal([]byte(raw), &values); err != nil {
		return nil, err
	}
	return values, nil
}

func decodeIntList(raw string) ([]int, error) {
	if raw == "" {
		return nil, nil
	}
	var values []int
	if err := json.Unmarshal([]byte(raw), &values); err != nil {
		return nil, err
	}
	return values, nil
}

func encodeStringList(values []string) string {
	if values == nil {
		values = []string{}
	}
	encoded, err := json.Marshal(values)
	if err != nil {
		return "[]"
	}
	return string(encoded)
}
