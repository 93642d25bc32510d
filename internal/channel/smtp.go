package channel

import (
	"context"
	"fmt"
	"strings"

	gomail "gopkg.in/gomail.v2"
)

// SMTPConfig holds the credentials for the outbound mail server. All fields
// are required; an incomplete configuration disables the email channel
// instead of failing sends at runtime.
type SMTPConfig struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
}

func (c SMTPConfig) Complete() bool {
	return strings.TrimSpace(c.Host) != "" &&
		c.Port > 0 &&
		strings.TrimSpace(c.From) != "" &&
		strings.TrimSpace(c.Password) != ""
}

// SMTPEmailChannel delivers HTML mail through a single SMTP server. One Send
// call addresses the full recipient list in one message.
type SMTPEmailChannel struct {
	dialer *gomail.Dialer
	from   string
	send   func(m *gomail.Message) error
}

func NewSMTPEmailChannel(cfg SMTPConfig) (*SMTPEmailChannel, error) {
	if !cfg.Complete() {
		return nil, fmt.Errorf("smtp configuration is incomplete")
	}

	username := strings.TrimSpace(cfg.Username)
	if username == "" {
		username = strings.TrimSpace(cfg.From)
	}

	dialer := gomail.NewDialer(strings.TrimSpace(cfg.Host), cfg.Port, username, cfg.Password)

	c := &SMTPEmailChannel{
		dialer: dialer,
		from:   strings.TrimSpace(cfg.From),
	}
	c.send = func(m *gomail.Message) error { return dialer.DialAndSend(m) }
	return c, nil
}

func (c *SMTPEmailChannel) Send(ctx context.Context, recipients []string, subject, htmlBody string) error {
	if c == nil || c.send == nil {
		return fmt.Errorf("email channel is not initialized")
	}
	if len(recipients) == 0 {
		return &ChannelError{Message: "no email recipients"}
	}
	if ctx == nil {
		ctx = context.Background()
	}

	m := gomail.NewMessage()
	m.SetHeader("From", c.from)
	m.SetHeader("To", recipients...)
	m.SetHeader("Subject", subject)
	m.SetBody("text/html", htmlBody)

	// gomail has no context support, so the dial-and-send runs in its own
	// goroutine and the context bounds how long we wait for it.
	done := make(chan error, 1)
	go func() {
		done <- c.send(m)
	}()

	select {
	case <-ctx.Done():
		return &ChannelError{
			Message:   "smtp send timed out",
			Transient: true,
			Cause:     ctx.Err(),
		}
	case err := <-done:
		if err != nil {
			return &ChannelError{
				Message:   "smtp send failed",
				Transient: true,
				Cause:     err,
			}
		}
		return nil
	}
}
