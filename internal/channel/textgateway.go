package channel

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
)

const defaultGatewayTimeout = 10 * time.Second

type textMessageRequest struct {
	To   string `json:"to"`
	From string `json:"from,omitempty"`
	Body string `json:"body"`
}

// TextGatewayChannel sends WhatsApp-style text messages through an HTTP
// gateway, one request per number.
type TextGatewayChannel struct {
	client   *resty.Client
	endpoint string
	from     string
}

func NewTextGatewayChannel(endpoint, token, from string) (*TextGatewayChannel, error) {
	client := resty.New()
	client.SetTimeout(defaultGatewayTimeout)
	client.SetRetryCount(0)
	if strings.TrimSpace(token) != "" {
		client.SetAuthToken(token)
	}

	return NewTextGatewayChannelWithClient(endpoint, from, client)
}

func NewTextGatewayChannelWithClient(endpoint, from string, client *resty.Client) (*TextGatewayChannel, error) {
	trimmedEndpoint := strings.TrimSpace(endpoint)
	if trimmedEndpoint == "" {
		return nil, fmt.Errorf("text gateway endpoint is required")
	}
	if _, err := url.ParseRequestURI(trimmedEndpoint); err != nil {
		return nil, fmt.Errorf("invalid text gateway endpoint: %w", err)
	}
	if client == nil {
		return nil, fmt.Errorf("resty client is required")
	}

	if client.GetClient().Timeout == 0 {
		client.SetTimeout(defaultGatewayTimeout)
	}
	client.SetRetryCount(0)

	return &TextGatewayChannel{
		client:   client,
		endpoint: trimmedEndpoint,
		from:     NormalizeWhatsAppNumber(from),
	}, nil
}

func (c *TextGatewayChannel) Send(ctx context.Context, number, text string) error {
	if c == nil || c.client == nil {
		return fmt.Errorf("text channel is not initialized")
	}
	if strings.TrimSpace(number) == "" {
		return &ChannelError{Message: "phone number is required"}
	}
	if strings.TrimSpace(text) == "" {
		return &ChannelError{Message: "message body is required"}
	}

	reqBody := textMessageRequest{
		To:   NormalizeWhatsAppNumber(number),
		From: c.from,
		Body: text,
	}

	response, err := c.client.R().
		SetContext(ctx).
		SetHeader("Content-Type", "application/json").
		SetBody(reqBody).
		Post(c.endpoint)
	if err != nil {
		return &ChannelError{
			Message:   "gateway request failed",
			Transient: !errors.Is(err, context.Canceled),
			Cause:     err,
		}
	}
	if response == nil {
		return &ChannelError{
			Message:   "gateway returned empty response",
			Transient: true,
		}
	}

	statusCode := response.StatusCode()
	if statusCode >= http.StatusOK && statusCode < http.StatusMultipleChoices {
		return nil
	}

	return &ChannelError{
		StatusCode: statusCode,
		Message:    gatewayErrorMessage(statusCode, strings.TrimSpace(response.String())),
		Transient:  isTransientHTTPStatus(statusCode),
	}
}

// NormalizeWhatsAppNumber prefixes a bare number with the whatsapp: scheme
// the gateway expects; already-prefixed numbers pass through unchanged.
func NormalizeWhatsAppNumber(number string) string {
	trimmed := strings.TrimSpace(number)
	if trimmed == "" || strings.HasPrefix(trimmed, "whatsapp:") {
		return trimmed
	}
	return "whatsapp:" + trimmed
}

func isTransientHTTPStatus(statusCode int) bool {
	return statusCode == http.StatusTooManyRequests || (statusCode >= http.StatusInternalServerError && statusCode <= 599)
}

func gatewayErrorMessage(statusCode int, body string) string {
	base := fmt.Sprintf("gateway returned status %d", statusCode)
	if body == "" {
		return base
	}
	return fmt.Sprintf("%s: %s", base, body)
}
