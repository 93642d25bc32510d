package domain

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"
)

// Kind identifies which record variant a deadline was resolved from.
type Kind string

const (
	KindDocument Kind = "DOCUMENT"
	KindDebt     Kind = "DEBT"
)

func (k Kind) String() string { return string(k) }

func (k Kind) IsValid() bool {
	switch k {
	case KindDocument, KindDebt:
		return true
	}
	return false
}

func ParseKindFromString(s string) (Kind, error) {
	k := Kind(strings.ToUpper(strings.TrimSpace(s)))
	if !k.IsValid() {
		return "", fmt.Errorf("%w: invalid deadline kind %q", ErrValidation, s)
	}
	return k, nil
}

// Threshold is a reminder trigger: fire when exactly Days remain until the
// due date. Key is the stable identifier persisted in the send ledger.
type Threshold struct {
	Key  string
	Days int
}

// DebtThresholds is the fixed, business-defined reminder schedule for debt
// maturities. Not user-configurable.
var DebtThresholds = []Threshold{
	{Key: "6_meses", Days: 180},
	{Key: "3_meses", Days: 90},
	{Key: "30_dias", Days: 30},
	{Key: "15_dias", Days: 15},
	{Key: "7_dias", Days: 7},
	{Key: "3_dias", Days: 3},
	{Key: "1_dia", Days: 1},
}

// DocumentThresholds builds the threshold list for a document from its
// configured day offsets. Negative and duplicate offsets are discarded.
// The ledger key of a document threshold is the decimal offset.
func DocumentThresholds(offsets []int) []Threshold {
	seen := make(map[int]bool, len(offsets))
	days := make([]int, 0, len(offsets))
	for _, offset := range offsets {
		if offset < 0 || seen[offset] {
			continue
		}
		seen[offset] = true
		days = append(days, offset)
	}
	sort.Sort(sort.Reverse(sort.IntSlice(days)))

	thresholds := make([]Threshold, 0, len(days))
	for _, d := range days {
		thresholds = append(thresholds, Threshold{Key: strconv.Itoa(d), Days: d})
	}
	return thresholds
}

// Urgency grades a reminder by how close the due date is.
type Urgency string

const (
	UrgencyCritical Urgency = "URGENTE"
	UrgencyWarning  Urgency = "ATENÇÃO"
	UrgencyNotice   Urgency = "AVISO"
)

func (u Urgency) String() string { return string(u) }

func UrgencyForDays(days int) Urgency {
	switch {
	case days <= 3:
		return UrgencyCritical
	case days <= 7:
		return UrgencyWarning
	default:
		return UrgencyNotice
	}
}

// Recipients holds the resolved contact lists for a deadline, direct contacts
// merged with those inherited from the linked person. An empty email list
// means the email channel is skipped for that deadline, not an error.
type Recipients struct {
	Emails       []string
	PhoneNumbers []string
	PhoneEnabled bool
}

// HasAny reports whether at least one channel has someone to notify.
func (r Recipients) HasAny() bool {
	return len(r.Emails) > 0 || (r.PhoneEnabled && len(r.PhoneNumbers) > 0)
}

// Installment is one scheduled payment of a debt. Installments never trigger
// thresholds on their own; they only feed the outstanding total shown in
// reminder content.
type Installment struct {
	DueDate time.Time
	Amount  float64
	Paid    bool
}

// DocumentDetails carries the document-only fields used to render reminders.
type DocumentDetails struct {
	Type       string
	EntityKind string
}

// DebtDetails carries the debt-only fields used to render reminders.
type DebtDetails struct {
	Bank           string
	ProposalNumber string
	InterestRate   float64
	InterestAnnual bool
	OperationValue *float64
	PersonNames    []string
	Installments   []Installment
}

// OutstandingAmount sums the unpaid installments.
func (d *DebtDetails) OutstandingAmount() float64 {
	if d == nil {
		return 0
	}
	var total float64
	for _, inst := range d.Installments {
		if !inst.Paid {
			total += inst.Amount
		}
	}
	return total
}

// Deadline is the uniform shape the policy and dispatcher operate on. The
// repository resolves each stored record into exactly one variant: Document
// is set for document expiries, Debt for debt maturities.
type Deadline struct {
	Kind       Kind
	ID         string
	Label      string
	EntityName string
	IssueDate  time.Time
	DueDate    time.Time
	Thresholds []Threshold
	Recipients Recipients
	Document   *DocumentDetails
	Debt       *DebtDetails
}

func (d Deadline) Validate() error {
	if !d.Kind.IsValid() {
		return fmt.Errorf("%w: invalid deadline kind %q", ErrValidation, d.Kind)
	}
	if strings.TrimSpace(d.ID) == "" {
		return fmt.Errorf("%w: deadline id is required", ErrValidation)
	}
	if d.DueDate.IsZero() {
		return fmt.Errorf("%w: deadline due date is required", ErrValidation)
	}
	switch d.Kind {
	case KindDocument:
		if d.Document == nil {
			return fmt.Errorf("%w: document deadline is missing document details", ErrValidation)
		}
	case KindDebt:
		if d.Debt == nil {
			return fmt.Errorf("%w: debt deadline is missing debt details", ErrValidation)
		}
	}
	return nil
}

// DaysUntil returns the whole calendar days remaining from today until the
// due date. Negative when the due date has passed.
func (d Deadline) DaysUntil(today time.Time) int {
	return DaysBetween(today, d.DueDate)
}

// DaysBetween returns the calendar-day difference between two instants,
// ignoring the time-of-day and time-zone components. Threshold matching is
// exact-day, so day arithmetic must not drift across DST transitions.
func DaysBetween(from, to time.Time) int {
	fromDay := time.Date(from.Year(), from.Month(), from.Day(), 0, 0, 0, 0, time.UTC)
	toDay := time.Date(to.Year(), to.Month(), to.Day(), 0, 0, 0, 0, time.UTC)
	return int(toDay.Sub(fromDay).Hours() / 24)
}
