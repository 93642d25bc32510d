package ratelimit

import "context"

// RateLimiter bounds outbound delivery throughput per channel so a large
// sweep cannot flood the mail server or the text gateway.
type RateLimiter interface {
	Allow(ctx context.Context, channel string) (bool, error)
	Wait(ctx context.Context, channel string) error
}
