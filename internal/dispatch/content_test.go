package dispatch

import (
	"strings"
	"testing"
	"time"

	"github.com/gfmartins/agroalert/internal/domain"
)

func TestRenderDocumentContent(t *testing.T) {
	t.Parallel()

	now := time.Date(2025, 3, 1, 14, 30, 0, 0, time.UTC)
	deadline := domain.Deadline{
		Kind:       domain.KindDocument,
		ID:         "doc-1",
		Label:      "Licença Ambiental",
		EntityName: "Fazenda Santa Rita",
		IssueDate:  time.Date(2024, 3, 31, 0, 0, 0, 0, time.UTC),
		DueDate:    time.Date(2025, 3, 31, 0, 0, 0, 0, time.UTC),
		Document:   &domain.DocumentDetails{Type: "Licença", EntityKind: "Fazenda/Área"},
	}

	content := RenderContent(deadline, 30, now)

	if content.Subject != "AVISO: Documento 'Licença Ambiental' vence em 30 dias" {
		t.Fatalf("unexpected subject: %q", content.Subject)
	}
	for _, fragment := range []string{
		"Notificação de Vencimento de Documento",
		"<li><strong>Data de Vencimento:</strong> 31/03/2025</li>",
		"<li><strong>Data de Emissão:</strong> 31/03/2024</li>",
		"<li><strong>Fazenda/Área Relacionada:</strong> Fazenda Santa Rita</li>",
		"Data de envio: 01/03/2025 às 14:30",
	} {
		if !strings.Contains(content.HTMLBody, fragment) {
			t.Fatalf("html body missing %q", fragment)
		}
	}
	if !strings.Contains(content.Text, "*Lembrete de Documento*") {
		t.Fatalf("text missing reminder marker: %q", content.Text)
	}
	if !strings.Contains(content.Text, "Vencimento em 30 dias (31/03/2025)") {
		t.Fatalf("text missing due line: %q", content.Text)
	}
}

func TestRenderDebtContent(t *testing.T) {
	t.Parallel()

	now := time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)
	operationValue := 150000.0
	deadline := domain.Deadline{
		Kind:    domain.KindDebt,
		ID:      "debt-1",
		DueDate: time.Date(2025, 8, 28, 0, 0, 0, 0, time.UTC),
		Debt: &domain.DebtDetails{
			Bank:           "Banco do Brasil",
			ProposalNumber: "P-2024-001",
			InterestRate:   8.5,
			InterestAnnual: true,
			OperationValue: &operationValue,
			PersonNames:    []string{"João Silva", "Maria Silva"},
			Installments: []domain.Installment{
				{Amount: 50000, Paid: true},
				{Amount: 50000, Paid: false},
				{Amount: 51234.56, Paid: false},
			},
		},
	}

	content := RenderContent(deadline, 180, now)

	if content.Subject != "AVISO: Endividamento vence em 6 meses - Banco do Brasil" {
		t.Fatalf("unexpected subject: %q", content.Subject)
	}
	for _, fragment := range []string{
		"<li><strong>Taxa de Juros:</strong> 8.5% a.a.</li>",
		"<li><strong>Valor da Operação:</strong> R$ 150.000,00</li>",
		"<li><strong>Valor Total Pendente:</strong> R$ 101.234,56</li>",
		"<li><strong>Pessoas Vinculadas:</strong> João Silva, Maria Silva</li>",
	} {
		if !strings.Contains(content.HTMLBody, fragment) {
			t.Fatalf("html body missing %q", fragment)
		}
	}
	if !strings.HasPrefix(content.Text, "AVISO: *Lembrete de Endividamento*") {
		t.Fatalf("unexpected text prefix: %q", content.Text)
	}
}

func TestRenderDebtContentUrgencyAndMonthlyRate(t *testing.T) {
	t.Parallel()

	deadline := domain.Deadline{
		Kind:    domain.KindDebt,
		ID:      "debt-1",
		DueDate: time.Date(2025, 3, 4, 0, 0, 0, 0, time.UTC),
		Debt: &domain.DebtDetails{
			Bank:         "Sicredi",
			InterestRate: 1.25,
		},
	}

	content := RenderContent(deadline, 3, time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC))

	if !strings.HasPrefix(content.Subject, "URGENTE:") {
		t.Fatalf("expected URGENTE subject, got %q", content.Subject)
	}
	if !strings.Contains(content.Subject, "vence em 3 dias") {
		t.Fatalf("expected day count in subject, got %q", content.Subject)
	}
	if !strings.Contains(content.HTMLBody, "1.25% a.m.") {
		t.Fatalf("expected monthly rate suffix, got %q", content.HTMLBody)
	}
	if strings.Contains(content.HTMLBody, "Valor da Operação") {
		t.Fatal("expected operation value line omitted when unset")
	}
}

func TestPeriodLabel(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		days     int
		expected string
	}{
		{days: 180, expected: "6 meses"},
		{days: 90, expected: "3 meses"},
		{days: 30, expected: "30 dias"},
		{days: 7, expected: "7 dias"},
		{days: 1, expected: "1 dia"},
		{days: 0, expected: "0 dias"},
	}

	for _, tc := range testCases {
		if got := periodLabel(tc.days); got != tc.expected {
			t.Fatalf("days=%d: expected %q, got %q", tc.days, tc.expected, got)
		}
	}
}

func TestFormatBRL(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		value    float64
		expected string
	}{
		{value: 0, expected: "R$ 0,00"},
		{value: 999.9, expected: "R$ 999,90"},
		{value: 1234.56, expected: "R$ 1.234,56"},
		{value: 1234567.89, expected: "R$ 1.234.567,89"},
		{value: -150.5, expected: "R$ -150,50"},
	}

	for _, tc := range testCases {
		if got := formatBRL(tc.value); got != tc.expected {
			t.Fatalf("value=%v: expected %q, got %q", tc.value, tc.expected, got)
		}
	}
}

func TestFormatRate(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		rate     float64
		expected string
	}{
		{rate: 8.5, expected: "8.5"},
		{rate: 12, expected: "12"},
		{rate: 1.125, expected: "1.125"},
	}

	for _, tc := range testCases {
		if got := formatRate(tc.rate); got != tc.expected {
			t.Fatalf("rate=%v: expected %q, got %q", tc.rate, tc.expected, got)
		}
	}
}
