package anthropic

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseRateLimits_GroupsMultiHyphenResourceNames(t *testing.T) {
	h := http.Header{}
	h.Set("anthropic-ratelimit-input-tokens-limit", "100000")
	h.Set("anthropic-ratelimit-input-tokens-remaining", "98000")
	h.Set("anthropic-ratelimit-input-tokens-reset", "2026-08-01T12:00:00Z")
	h.Set("anthropic-ratelimit-requests-limit", "1000")
	h.Set("retry-after", "40")

	limits, retryAfter := parseRateLimits(h)

	require.Len(t, limits, 2)
	byName := map[string]bool{}
	for _, l := range limits {
		byName[l.Name] = true
		if l.Name == "input-tokens" {
			require.NotNil(t, l.Limit)
			assert.EqualValues(t, 100000, *l.Limit)
			require.NotNil(t, l.Remaining)
			assert.EqualValues(t, 98000, *l.Remaining)
			require.NotNil(t, l.ResetsAt)
			assert.Equal(t, "2026-08-01T12:00:00Z", *l.ResetsAt)
		}
	}
	assert.True(t, byName["input-tokens"])
	assert.True(t, byName["requests"])

	require.NotNil(t, retryAfter)
	assert.Equal(t, 40, *retryAfter)
}

func TestParseRateLimits_NoHeadersYieldsEmpty(t *testing.T) {
	limits, retryAfter := parseRateLimits(http.Header{})
	assert.Empty(t, limits)
	assert.Nil(t, retryAfter)
}
