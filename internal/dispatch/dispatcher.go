// Package dispatch delivers one matched reminder through the configured
// channels. Channel failures are contained per channel: email and text are
// attempted independently and the aggregated outcome, not an error, tells
// the caller whether the send may be suppressed for good.
package dispatch

import (
	"context"
	"strings"
	"time"

	"github.com/gfmartins/agroalert/internal/channel"
	"github.com/gfmartins/agroalert/internal/domain"
	"github.com/gfmartins/agroalert/internal/observability"
	"github.com/gfmartins/agroalert/internal/ratelimit"
	"go.uber.org/zap"
)

const defaultSendTimeout = 15 * time.Second

// Outcome is the aggregated result of one dispatch. Success means at least
// one channel delivered; only then may the ledger suppress future sends.
type Outcome struct {
	EmailOK         bool
	PhoneOK         bool
	EmailsAttempted []string
	PhonesAttempted []string
	ErrorDetail     *string
}

func (o Outcome) Success() bool {
	return o.EmailOK || o.PhoneOK
}

type Dispatcher struct {
	email       channel.EmailChannel
	text        channel.TextChannel
	limiter     ratelimit.RateLimiter
	logger      *zap.Logger
	metrics     *observability.Metrics
	sendTimeout time.Duration
	now         func() time.Time
}

// NewDispatcher builds a dispatcher over explicitly injected channels. A nil
// channel means that medium is not configured and is skipped with a warning,
// never treated as a send failure of the other channel.
func NewDispatcher(
	email channel.EmailChannel,
	text channel.TextChannel,
	limiter ratelimit.RateLimiter,
	sendTimeout time.Duration,
	logger *zap.Logger,
) (*Dispatcher, error) {
	if sendTimeout <= 0 {
		sendTimeout = defaultSendTimeout
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Dispatcher{
		email:       email,
		text:        text,
		limiter:     limiter,
		logger:      logger,
		sendTimeout: sendTimeout,
		now:         time.Now,
	}, nil
}

func (d *Dispatcher) SetMetrics(metrics *observability.Metrics) {
	if d == nil {
		return
	}
	d.metrics = metrics
}

// Dispatch renders and delivers the reminder for one matched threshold.
// Errors from either channel are captured in the outcome; nothing
// propagates, so one candidate can never abort a sweep.
func (d *Dispatcher) Dispatch(ctx context.Context, deadline domain.Deadline, threshold domain.Threshold, daysRemaining int) Outcome {
	if ctx == nil {
		ctx = context.Background()
	}

	recipients := normalizeRecipients(deadline.Recipients)
	if !recipients.HasAny() {
		d.logger.Warn("deadline has no recipients on any channel, skipping delivery",
			zap.String("kind", deadline.Kind.String()),
			zap.String("deadlineId", deadline.ID),
			zap.String("threshold", threshold.Key),
		)
		return Outcome{}
	}

	content := RenderContent(deadline, daysRemaining, d.now())

	var outcome Outcome
	var errs []string

	if err := d.sendEmail(ctx, recipients.Emails, content, &outcome); err != nil {
		errs = append(errs, err.Error())
	}
	errs = append(errs, d.sendTexts(ctx, recipients, content, &outcome)...)

	if len(errs) > 0 {
		detail := strings.Join(errs, "; ")
		outcome.ErrorDetail = &detail
	}
	return outcome
}

func (d *Dispatcher) sendEmail(ctx context.Context, emails []string, content Content, outcome *Outcome) error {
	if len(emails) == 0 {
		return nil
	}
	if d.email == nil {
		d.logger.Warn("email channel is not configured, skipping email delivery")
		return nil
	}

	outcome.EmailsAttempted = emails

	if err := d.wait(ctx, "email"); err != nil {
		return err
	}

	sendCtx, cancel := context.WithTimeout(ctx, d.sendTimeout)
	defer cancel()

	start := d.now()
	err := d.email.Send(sendCtx, emails, content.Subject, content.HTMLBody)
	d.observeSend("email", d.now().Sub(start), err)
	if err != nil {
		d.logger.Error("email delivery failed",
			zap.Int("recipients", len(emails)),
			zap.Bool("transient", channel.IsTransient(err)),
			zap.Error(err),
		)
		return err
	}

	outcome.EmailOK = true
	return nil
}

// sendTexts fans out over the phone numbers one call at a time; a failed
// number never blocks the remaining ones. The phone channel counts as
// delivered only when every attempted number succeeded.
func (d *Dispatcher) sendTexts(ctx context.Context, recipients domain.Recipients, content Content, outcome *Outcome) []string {
	if !recipients.PhoneEnabled || len(recipients.PhoneNumbers) == 0 {
		return nil
	}
	if d.text == nil {
		d.logger.Warn("text channel is not configured, skipping text delivery")
		return nil
	}

	var errs []string
	allOK := true
	for _, number := range recipients.PhoneNumbers {
		outcome.PhonesAttempted = append(outcome.PhonesAttempted, number)

		if err := d.sendText(ctx, number, content.Text); err != nil {
			allOK = false
			errs = append(errs, err.Error())
			d.logger.Error("text delivery failed",
				zap.String("number", number),
				zap.Bool("transient", channel.IsTransient(err)),
				zap.Error(err),
			)
		}
	}

	outcome.PhoneOK = allOK && len(outcome.PhonesAttempted) > 0
	return errs
}

func (d *Dispatcher) sendText(ctx context.Context, number, text string) error {
	if err := d.wait(ctx, "text"); err != nil {
		return err
	}

	sendCtx, cancel := context.WithTimeout(ctx, d.sendTimeout)
	defer cancel()

	start := d.now()
	err := d.text.Send(sendCtx, number, text)
	d.observeSend("text", d.now().Sub(start), err)
	return err
}

// SendTestEmail delivers a configuration check message to explicit
// recipients, outside the sweep and the ledger.
func (d *Dispatcher) SendTestEmail(ctx context.Context, recipients []string) error {
	if d.email == nil {
		return &channel.ChannelError{Message: "email channel is not configured"}
	}

	subject := "Teste de Notificação - Sistema de Gestão Agrícola"
	body := "<html><body>" +
		"<h3>Teste realizado com sucesso!</h3>" +
		"<p>Se você recebeu este e-mail, a configuração de notificações está funcionando corretamente.</p>" +
		"<p>Não responda a este e-mail.</p>" +
		"</body></html>"

	sendCtx, cancel := context.WithTimeout(ctx, d.sendTimeout)
	defer cancel()
	return d.email.Send(sendCtx, dedupeStrings(recipients), subject, body)
}

// SendTestText delivers a configuration check message to each number.
func (d *Dispatcher) SendTestText(ctx context.Context, numbers []string) error {
	if d.text == nil {
		return &channel.ChannelError{Message: "text channel is not configured"}
	}

	text := "Teste de notificação via WhatsApp do Sistema de Gestão Agrícola."

	var lastErr error
	for _, number := range dedupeStrings(numbers) {
		sendCtx, cancel := context.WithTimeout(ctx, d.sendTimeout)
		if err := d.text.Send(sendCtx, number, text); err != nil {
			lastErr = err
		}
		cancel()
	}
	return lastErr
}

func (d *Dispatcher) wait(ctx context.Context, channelName string) error {
	if d.limiter == nil {
		return nil
	}
	return d.limiter.Wait(ctx, channelName)
}

func (d *Dispatcher) observeSend(channelName string, duration time.Duration, err error) {
	if d.metrics == nil {
		return
	}
	result := "ok"
	if err != nil {
		result = "error"
	}
	d.metrics.IncChannelSend(channelName, result)
	d.metrics.ObserveSendDuration(channelName, duration)
}

// normalizeRecipients trims, drops empties and dedupes both contact lists
// while keeping their original order.
func normalizeRecipients(r domain.Recipients) domain.Recipients {
	return domain.Recipients{
		Emails:       dedupeStrings(r.Emails),
		PhoneNumbers: dedupeStrings(r.PhoneNumbers),
		PhoneEnabled: r.PhoneEnabled,
	}
}

func dedupeStrings(values []string) []string {
	seen := make(map[string]bool, len(values))
	result := make([]string, 0, len(values))
	for _, v := range values {
		trimmed := strings.TrimSpace(v)
		if trimmed == "" || seen[trimmed] {
			continue
		}
		seen[trimmed] = true
		result = append(result, trimmed)
	}
	return result
}
