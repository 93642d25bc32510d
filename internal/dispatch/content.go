package dispatch

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/gfmartins/agroalert/internal/domain"
)

// Content is the rendered reminder in both channel formats: an HTML email
// and a plain-text variant carrying the same facts.
type Content struct {
	Subject  string
	HTMLBody string
	Text     string
}

const dateLayout = "02/01/2006"

// RenderContent builds the channel content for one matched threshold.
func RenderContent(deadline domain.Deadline, daysRemaining int, now time.Time) Content {
	if deadline.Kind == domain.KindDebt {
		return renderDebtContent(deadline, daysRemaining, now)
	}
	return renderDocumentContent(deadline, daysRemaining, now)
}

func renderDocumentContent(deadline domain.Deadline, daysRemaining int, now time.Time) Content {
	urgency := domain.UrgencyForDays(daysRemaining)
	subject := fmt.Sprintf("%s: Documento '%s' vence em %s",
		urgency, deadline.Label, periodLabel(daysRemaining))

	docType := ""
	entityKind := "Entidade"
	if deadline.Document != nil {
		docType = deadline.Document.Type
		entityKind = deadline.Document.EntityKind
	}

	var html strings.Builder
	html.WriteString("<html><body>")
	html.WriteString("<h2>Notificação de Vencimento de Documento</h2>")
	fmt.Fprintf(&html, "<p><strong>%s</strong>: o documento <strong>'%s'</strong> vencerá em <strong>%s</strong>.</p>",
		urgency, deadline.Label, periodLabel(daysRemaining))
	html.WriteString("<ul>")
	fmt.Fprintf(&html, "<li><strong>Nome:</strong> %s</li>", deadline.Label)
	fmt.Fprintf(&html, "<li><strong>Tipo:</strong> %s</li>", docType)
	fmt.Fprintf(&html, "<li><strong>Data de Emissão:</strong> %s</li>", deadline.IssueDate.Format(dateLayout))
	fmt.Fprintf(&html, "<li><strong>Data de Vencimento:</strong> %s</li>", deadline.DueDate.Format(dateLayout))
	fmt.Fprintf(&html, "<li><strong>%s Relacionada:</strong> %s</li>", entityKind, deadline.EntityName)
	html.WriteString("</ul>")
	html.WriteString("<p>Por favor, tome as providências necessárias para renovação ou regularização deste documento.</p>")
	writeFooter(&html, now)
	html.WriteString("</body></html>")

	text := fmt.Sprintf(
		"%s: *Lembrete de Documento*\n"+
			"Documento: %s\n"+
			"Tipo: %s\n"+
			"Vencimento em %s (%s)\n"+
			"%s: %s\n"+
			"Não responda a esta mensagem. Sistema Gestão Agrícola.",
		urgency, deadline.Label, docType,
		periodLabel(daysRemaining), deadline.DueDate.Format(dateLayout),
		entityKind, deadline.EntityName,
	)

	return Content{Subject: subject, HTMLBody: html.String(), Text: text}
}

func renderDebtContent(deadline domain.Deadline, daysRemaining int, now time.Time) Content {
	urgency := domain.UrgencyForDays(daysRemaining)
	period := periodLabel(daysRemaining)

	debt := deadline.Debt
	if debt == nil {
		debt = &domain.DebtDetails{Bank: deadline.Label}
	}

	subject := fmt.Sprintf("%s: Endividamento vence em %s - %s", urgency, period, debt.Bank)
	outstanding := debt.OutstandingAmount()

	var html strings.Builder
	html.WriteString("<html><body>")
	html.WriteString("<h2>Lembrete de Vencimento de Endividamento</h2>")
	fmt.Fprintf(&html, "<p>Este é um lembrete automático sobre um endividamento que vencerá em <strong>%s</strong>.</p>", period)
	html.WriteString("<ul>")
	fmt.Fprintf(&html, "<li><strong>Banco:</strong> %s</li>", debt.Bank)
	fmt.Fprintf(&html, "<li><strong>Número da Proposta:</strong> %s</li>", debt.ProposalNumber)
	fmt.Fprintf(&html, "<li><strong>Data de Vencimento:</strong> %s</li>", deadline.DueDate.Format(dateLayout))
	fmt.Fprintf(&html, "<li><strong>Taxa de Juros:</strong> %s%% %s</li>", formatRate(debt.InterestRate), rateSuffix(debt.InterestAnnual))
	if debt.OperationValue != nil {
		fmt.Fprintf(&html, "<li><strong>Valor da Operação:</strong> %s</li>", formatBRL(*debt.OperationValue))
	}
	fmt.Fprintf(&html, "<li><strong>Valor Total Pendente:</strong> %s</li>", formatBRL(outstanding))
	fmt.Fprintf(&html, "<li><strong>Pessoas Vinculadas:</strong> %s</li>", strings.Join(debt.PersonNames, ", "))
	html.WriteString("</ul>")
	writeFooter(&html, now)
	html.WriteString("</body></html>")

	var text strings.Builder
	text.WriteString(urgency.String())
	text.WriteString(": *Lembrete de Endividamento*\n")
	fmt.Fprintf(&text, "Vencimento em %s\n", period)
	fmt.Fprintf(&text, "Banco: %s\n", debt.Bank)
	fmt.Fprintf(&text, "Número da Proposta: %s\n", debt.ProposalNumber)
	fmt.Fprintf(&text, "Vencimento: %s\n", deadline.DueDate.Format(dateLayout))
	fmt.Fprintf(&text, "Taxa de Juros: %s%% %s\n", formatRate(debt.InterestRate), rateSuffix(debt.InterestAnnual))
	if debt.OperationValue != nil {
		fmt.Fprintf(&text, "Valor da Operação: %s\n", formatBRL(*debt.OperationValue))
	}
	fmt.Fprintf(&text, "Valor Total Pendente: %s\n", formatBRL(outstanding))
	fmt.Fprintf(&text, "Pessoas: %s\n", strings.Join(debt.PersonNames, ", "))
	text.WriteString("Não responda a esta mensagem. Sistema Gestão Agrícola.")

	return Content{Subject: subject, HTMLBody: html.String(), Text: text.String()}
}

func writeFooter(html *strings.Builder, now time.Time) {
	fmt.Fprintf(html,
		"<p>Este é um e-mail automático do Sistema de Gestão Agrícola. Não responda a este e-mail.<br>Data de envio: %s às %s</p>",
		now.Format(dateLayout), now.Format("15:04"))
}

// periodLabel renders a day count the way the reminders phrase it: month
// multiples for the two long offsets, plain day counts otherwise.
func periodLabel(days int) string {
	switch {
	case days == 180:
		return "6 meses"
	case days == 90:
		return "3 meses"
	case days == 1:
		return "1 dia"
	default:
		return fmt.Sprintf("%d dias", days)
	}
}

func rateSuffix(annual bool) string {
	if annual {
		return "a.a."
	}
	return "a.m."
}

func formatRate(rate float64) string {
	return strings.TrimRight(strings.TrimRight(strconv.FormatFloat(rate, 'f', 4, 64), "0"), ".")
}

// formatBRL renders a money amount in Brazilian convention: R$ 1.234,56.
func formatBRL(value float64) string {
	negative := value < 0
	if negative {
		value = -value
	}

	plain := strconv.FormatFloat(value, 'f', 2, 64)
	intPart, decPart, _ := strings.Cut(plain, ".")

	var grouped strings.Builder
	for i, digit := range intPart {
		if i > 0 && (len(intPart)-i)%3 == 0 {
			grouped.WriteByte('.')
		}
		grouped.WriteRune(digit)
	}

	sign := ""
	if negative {
		sign = "-"
	}
	return fmt.Sprintf("R$ %s%s,%s", sign, grouped.String(), decPart)
}
