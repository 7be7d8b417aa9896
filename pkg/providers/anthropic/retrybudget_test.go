package anthropic

import (
	"context"
	"testing"
	"time"

	providererrors "github.com/sentiasa/prism-anthropic-stream/pkg/provider/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func intPtr(n int) *int       { return &n }
func strPtr(s string) *string { return &s }

func TestNewRetryBudget_DefaultsAllowImmediateRequests(t *testing.T) {
	b := NewRetryBudget(0) // non-positive burst coerced to 1
	err := b.Wait(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 5*time.Second, b.Ceiling)
}

func TestRetryBudget_ObserveIgnoresIrrelevantSnapshots(t *testing.T) {
	b := NewRetryBudget(1)
	before := b.limiter.Limit()

	future := time.Now().Add(time.Minute).Format(time.RFC3339)
	b.Observe([]providererrors.ProviderRateLimit{
		{Name: "tokens", Remaining: intPtr(5), ResetsAt: &future},              // wrong resource
		{Name: "requests", Remaining: nil, ResetsAt: &future},                  // no Remaining
		{Name: "requests", Remaining: intPtr(5), ResetsAt: nil},                // no ResetsAt
		{Name: "requests", Remaining: intPtr(5), ResetsAt: strPtr("not-time")}, // bad format
		{Name: "requests", Remaining: intPtr(0), ResetsAt: &future},            // zero remaining
	})

	assert.Equal(t, before, b.limiter.Limit())
}

func TestRetryBudget_ObserveSetsRateFromRemainingOverWindow(t *testing.T) {
	b := NewRetryBudget(1)
	resetAt := time.Now().Add(10 * time.Second).Format(time.RFC3339)
	b.Observe([]providererrors.ProviderRateLimit{
		{Name: "requests", Remaining: intPtr(20), ResetsAt: &resetAt},
	})

	limit := float64(b.limiter.Limit())
	assert.InDelta(t, 2.0, limit, 0.5)
}

func TestRetryBudget_WaitGivesUpPastCeiling(t *testing.T) {
	b := NewRetryBudget(1)
	b.Ceiling = 10 * time.Millisecond

	resetAt := time.Now().Add(time.Hour).Format(time.RFC3339)
	b.Observe([]providererrors.ProviderRateLimit{
		{Name: "requests", Remaining: intPtr(1), ResetsAt: &resetAt},
	})

	require.NoError(t, b.Wait(context.Background())) // consumes the initial burst token

	start := time.Now()
	err := b.Wait(context.Background())
	elapsed := time.Since(start)

	require.NoError(t, err)
	assert.Less(t, elapsed, 200*time.Millisecond)
}

func TestRetryBudget_WaitRespectsContextCancellation(t *testing.T) {
	b := NewRetryBudget(1)
	b.Ceiling = time.Minute

	resetAt := time.Now().Add(2 * time.Second).Format(time.RFC3339)
	b.Observe([]providererrors.ProviderRateLimit{
		{Name: "requests", Remaining: intPtr(1), ResetsAt: &resetAt},
	})

	require.NoError(t, b.Wait(context.Background())) // consumes the initial burst token

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	err := b.Wait(ctx)
	require.Error(t, err)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}
