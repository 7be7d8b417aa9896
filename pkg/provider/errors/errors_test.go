package errors

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRateLimitedError_IsAndUnwrap(t *testing.T) {
	cause := errors.New("boom")
	retryAfter := 40
	err := NewRateLimitedError("anthropic", []ProviderRateLimit{{Name: "requests"}}, &retryAfter, cause)

	assert.True(t, IsRateLimitedError(err))
	assert.ErrorIs(t, err, cause)
	assert.Contains(t, err.Error(), "40")

	wrapped := errors.Join(errors.New("context"), err)
	assert.True(t, IsRateLimitedError(wrapped))
}

func TestOverloadedAndRequestTooLarge(t *testing.T) {
	assert.True(t, IsOverloadedError(NewOverloadedError("anthropic", nil)))
	assert.False(t, IsOverloadedError(NewRequestTooLargeError("anthropic", nil)))
	assert.True(t, IsRequestTooLargeError(NewRequestTooLargeError("anthropic", nil)))
}

func TestChunkDecodeError(t *testing.T) {
	cause := errors.New("invalid JSON")
	err := NewChunkDecodeError("anthropic", cause)
	assert.True(t, IsChunkDecodeError(err))
	assert.ErrorIs(t, err, cause)
}

func TestProviderRequestError(t *testing.T) {
	err := NewProviderRequestError("anthropic", 500, errors.New("boom"))
	assert.True(t, IsProviderRequestError(err))
	assert.Contains(t, err.Error(), "500")
}

func TestProviderResponseError(t *testing.T) {
	err := NewProviderResponseError("anthropic", "invalid_request_error", "bad input")
	assert.True(t, IsProviderResponseError(err))
	assert.Contains(t, err.Error(), "invalid_request_error")
	assert.Contains(t, err.Error(), "bad input")
}

func TestMaxStepsExceededError(t *testing.T) {
	err := NewMaxStepsExceededError(3)
	assert.True(t, IsMaxStepsExceededError(err))
	assert.Contains(t, err.Error(), "3")
}

func TestInvalidCitationError(t *testing.T) {
	err := NewInvalidCitationError(map[string]any{"foo": "bar"})
	assert.True(t, IsInvalidCitationError(err))
}

func TestToolInvocationError(t *testing.T) {
	cause := errors.New("network timeout")
	err := NewToolInvocationError("search", "call_1", cause)
	assert.True(t, IsToolInvocationError(err))
	assert.ErrorIs(t, err, cause)
	assert.Contains(t, err.Error(), "search")
	assert.Contains(t, err.Error(), "call_1")
}
