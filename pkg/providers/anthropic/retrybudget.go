package anthropic

import (
	"context"
	"time"

	providererrors "github.com/sentiasa/prism-anthropic-stream/pkg/provider/errors"
	"golang.org/x/time/rate"
)

// RetryBudget optionally self-throttles the *next* hop's request using
// the rate-limit snapshot parsed from the previous hop's response
// headers. It never retries or swallows a RateLimitedError: if honoring
// the limiter would block past Ceiling, Wait returns immediately
// without waiting and lets the caller's own request hit the provider
// (and surface RateLimitedError normally) rather than silently stalling
// the caller forever. Rate-limit signaling stays the caller's
// responsibility; this only smooths bursty hop-to-hop request timing.
type RetryBudget struct {
	limiter *rate.Limiter
	Ceiling time.Duration
}

// NewRetryBudget builds a RetryBudget with an initial allowance of
// burst requests and no configured rate (Observe must be called with a
// real snapshot before it does anything beyond allowing burst traffic).
func NewRetryBudget(burst int) *RetryBudget {
	if burst <= 0 {
		burst = 1
	}
	return &RetryBudget{limiter: rate.NewLimiter(rate.Inf, burst), Ceiling: 5 * time.Second}
}

// Observe updates the limiter from a parsed rate-limit snapshot for the
// "requests" resource, so the next hop is throttled to roughly the
// provider's advertised remaining budget over the time until reset.
func (b *RetryBudget) Observe(limits []providererrors.ProviderRateLimit) {
	for _, l := range limits {
		if l.Name != "requests" || l.Remaining == nil || l.ResetsAt == nil {
			continue
		}
		resetAt, err := time.Parse(time.RFC3339, *l.ResetsAt)
		if err != nil {
			continue
		}
		until := time.Until(resetAt)
		if until <= 0 || *l.Remaining <= 0 {
			continue
		}
		perSecond := float64(*l.Remaining) / until.Seconds()
		b.limiter.SetLimit(rate.Limit(perSecond))
	}
}

// Wait blocks until the limiter admits the next request, up to Ceiling.
// Past the ceiling it gives up waiting and returns nil immediately,
// letting the request proceed (and potentially hit a real 429) rather
// than stalling the caller indefinitely.
func (b *RetryBudget) Wait(ctx context.Context) error {
	reservation := b.limiter.Reserve()
	if !reservation.OK() {
		return nil
	}
	delay := reservation.Delay()
	if delay <= 0 {
		return nil
	}
	if delay > b.Ceiling {
		reservation.Cancel()
		return nil
	}
	timer := time.NewTimer(delay)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		reservation.Cancel()
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
