package domain

import (
	"errors"
	"testing"
	"time"
)

func TestParseKindFromString(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name      string
		input     string
		expected  Kind
		expectErr bool
	}{
		{name: "document", input: "DOCUMENT", expected: KindDocument},
		{name: "debt lowercase", input: "debt", expected: KindDebt},
		{name: "padded", input: "  document  ", expected: KindDocument},
		{name: "unknown", input: "INVOICE", expectErr: true},
		{name: "empty", input: "", expectErr: true},
	}

	for _, tc := range testCases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			kind, err := ParseKindFromString(tc.input)
			if tc.expectErr {
				if !errors.Is(err, ErrValidation) {
					t.Fatalf("expected validation error, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if kind != tc.expected {
				t.Fatalf("expected kind %q, got %q", tc.expected, kind)
			}
		})
	}
}

func TestDocumentThresholds(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name     string
		offsets  []int
		expected []Threshold
	}{
		{
			name:    "sorted descending with keys",
			offsets: []int{7, 30, 15},
			expected: []Threshold{
				{Key: "30", Days: 30},
				{Key: "15", Days: 15},
				{Key: "7", Days: 7},
			},
		},
		{
			name:    "duplicates and negatives dropped",
			offsets: []int{30, 30, -5, 0},
			expected: []Threshold{
				{Key: "30", Days: 30},
				{Key: "0", Days: 0},
			},
		},
		{
			name:     "empty input",
			offsets:  nil,
			expected: []Threshold{},
		},
	}

	for _, tc := range testCases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			thresholds := DocumentThresholds(tc.offsets)
			if len(thresholds) != len(tc.expected) {
				t.Fatalf("expected %d thresholds, got %d", len(tc.expected), len(thresholds))
			}
			for i, expected := range tc.expected {
				if thresholds[i] != expected {
					t.Fatalf("threshold %d: expected %+v, got %+v", i, expected, thresholds[i])
				}
			}
		})
	}
}

func TestDebtThresholdsSchedule(t *testing.T) {
	t.Parallel()

	expected := map[string]int{
		"6_meses": 180,
		"3_meses": 90,
		"30_dias": 30,
		"15_dias": 15,
		"7_dias":  7,
		"3_dias":  3,
		"1_dia":   1,
	}

	if len(DebtThresholds) != len(expected) {
		t.Fatalf("expected %d debt thresholds, got %d", len(expected), len(DebtThresholds))
	}
	for _, threshold := range DebtThresholds {
		days, ok := expected[threshold.Key]
		if !ok {
			t.Fatalf("unexpected threshold key %q", threshold.Key)
		}
		if threshold.Days != days {
			t.Fatalf("threshold %q: expected %d days, got %d", threshold.Key, days, threshold.Days)
		}
	}
}

func TestUrgencyForDays(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		days     int
		expected Urgency
	}{
		{days: 0, expected: UrgencyCritical},
		{days: 1, expected: UrgencyCritical},
		{days: 3, expected: UrgencyCritical},
		{days: 4, expected: UrgencyWarning},
		{days: 7, expected: UrgencyWarning},
		{days: 8, expected: UrgencyNotice},
		{days: 180, expected: UrgencyNotice},
	}

	for _, tc := range testCases {
		tc := tc
		if got := UrgencyForDays(tc.days); got != tc.expected {
			t.Fatalf("days=%d: expected %q, got %q", tc.days, tc.expected, got)
		}
	}
}

func TestDaysBetween(t *testing.T) {
	t.Parallel()

	saoPaulo := time.FixedZone("America/Sao_Paulo", -3*60*60)

	testCases := []struct {
		name     string
		from     time.Time
		to       time.Time
		expected int
	}{
		{
			name:     "same day",
			from:     time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC),
			to:       time.Date(2025, 3, 1, 23, 0, 0, 0, time.UTC),
			expected: 0,
		},
		{
			name:     "thirty days ahead",
			from:     time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC),
			to:       time.Date(2025, 3, 31, 0, 0, 0, 0, time.UTC),
			expected: 30,
		},
		{
			name:     "time of day ignored",
			from:     time.Date(2025, 3, 1, 23, 59, 0, 0, time.UTC),
			to:       time.Date(2025, 3, 2, 0, 1, 0, 0, time.UTC),
			expected: 1,
		},
		{
			name:     "zone offset ignored",
			from:     time.Date(2025, 3, 1, 22, 0, 0, 0, saoPaulo),
			to:       time.Date(2025, 3, 8, 2, 0, 0, 0, time.UTC),
			expected: 7,
		},
		{
			name:     "past due date is negative",
			from:     time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC),
			to:       time.Date(2025, 3, 8, 0, 0, 0, 0, time.UTC),
			expected: -2,
		},
	}

	for _, tc := range testCases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			if got := DaysBetween(tc.from, tc.to); got != tc.expected {
				t.Fatalf("expected %d days, got %d", tc.expected, got)
			}
		})
	}
}

func TestRecipientsHasAny(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name       string
		recipients Recipients
		expected   bool
	}{
		{name: "empty", recipients: Recipients{}, expected: false},
		{name: "email only", recipients: Recipients{Emails: []string{"a@b.com"}}, expected: true},
		{
			name:       "phones but channel disabled",
			recipients: Recipients{PhoneNumbers: []string{"+5511999999999"}},
			expected:   false,
		},
		{
			name:       "phones enabled",
			recipients: Recipients{PhoneNumbers: []string{"+5511999999999"}, PhoneEnabled: true},
			expected:   true,
		},
	}

	for _, tc := range testCases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			if got := tc.recipients.HasAny(); got != tc.expected {
				t.Fatalf("expected %v, got %v", tc.expected, got)
			}
		})
	}
}

func TestDebtDetailsOutstandingAmount(t *testing.T) {
	t.Parallel()

	details := &DebtDetails{
		Installments: []Installment{
			{Amount: 1000, Paid: true},
			{Amount: 2500.50, Paid: false},
			{Amount: 499.50, Paid: false},
		},
	}

	if got := details.OutstandingAmount(); got != 3000 {
		t.Fatalf("expected 3000, got %v", got)
	}

	var nilDetails *DebtDetails
	if got := nilDetails.OutstandingAmount(); got != 0 {
		t.Fatalf("expected 0 for nil details, got %v", got)
	}
}

func TestDeadlineValidate(t *testing.T) {
	t.Parallel()

	dueDate := time.Date(2025, 3, 31, 0, 0, 0, 0, time.UTC)

	testCases := []struct {
		name      string
		deadline  Deadline
		expectErr bool
	}{
		{
			name: "valid document",
			deadline: Deadline{
				Kind:     KindDocument,
				ID:       "doc-1",
				DueDate:  dueDate,
				Document: &DocumentDetails{Type: "CAR"},
			},
		},
		{
			name: "valid debt",
			deadline: Deadline{
				Kind:    KindDebt,
				ID:      "debt-1",
				DueDate: dueDate,
				Debt:    &DebtDetails{Bank: "Banco do Brasil"},
			},
		},
		{
			name:      "invalid kind",
			deadline:  Deadline{Kind: "OTHER", ID: "x", DueDate: dueDate},
			expectErr: true,
		},
		{
			name:      "missing id",
			deadline:  Deadline{Kind: KindDocument, ID: "  ", DueDate: dueDate, Document: &DocumentDetails{}},
			expectErr: true,
		},
		{
			name:      "missing due date",
			deadline:  Deadline{Kind: KindDocument, ID: "doc-1", Document: &DocumentDetails{}},
			expectErr: true,
		},
		{
			name:      "document without details",
			deadline:  Deadline{Kind: KindDocument, ID: "doc-1", DueDate: dueDate},
			expectErr: true,
		},
		{
			name:      "debt without details",
			deadline:  Deadline{Kind: KindDebt, ID: "debt-1", DueDate: dueDate},
			expectErr: true,
		},
	}

	for _, tc := range testCases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			err := tc.deadline.Validate()
			if tc.expectErr {
				if !errors.Is(err, ErrValidation) {
					t.Fatalf("expected validation error, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
		})
	}
}
