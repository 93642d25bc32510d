// Package channel holds the outbound delivery ports. Each channel reports
// failure as an error value; the dispatcher aggregates those into a per-send
// outcome instead of letting one channel's failure interrupt the other.
package channel

import (
	"context"
	"errors"
	"fmt"
	"net"
	"strings"
)

// EmailChannel delivers one message to the full recipient list in a single
// batched call.
type EmailChannel interface {
	Send(ctx context.Context, recipients []string, subject, htmlBody string) error
}

// TextChannel delivers one plain-text message to a single phone number.
// Callers fan out over numbers themselves so one bad number cannot block
// the rest.
type TextChannel interface {
	Send(ctx context.Context, number, text string) error
}

// ChannelError classifies delivery failures as transient/permanent.
type ChannelError struct {
	StatusCode int
	Message    string
	Transient  bool
	Cause      error
}

func (e *ChannelError) Error() string {
	if e == nil {
		return "<nil>"
	}

	parts := make([]string, 0, 4)
	parts = append(parts, "channel error")

	if e.StatusCode > 0 {
		parts = append(parts, fmt.Sprintf("status=%d", e.StatusCode))
	}
	if msg := strings.TrimSpace(e.Message); msg != "" {
		parts = append(parts, msg)
	}
	if e.Cause != nil {
		parts = append(parts, e.Cause.Error())
	}

	return strings.Join(parts, ": ")
}

func (e *ChannelError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Cause
}

// IsTransient reports whether a delivery failure is worth retrying on a
// later sweep.
func IsTransient(err error) bool {
	if err == nil {
		return false
	}

	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	if errors.Is(err, context.Canceled) {
		return false
	}

	var channelErr *ChannelError
	if errors.As(err, &channelErr) {
		return channelErr.Transient
	}

	var netErr net.Error
	if errors.As(err, &netErr) {
		return netErr.Timeout() || netErr.Temporary()
	}

	return false
}
