package anthropic

import (
	"errors"

	nethttp "net/http"

	internalhttp "github.com/sentiasa/prism-anthropic-stream/pkg/internal/http"
	providererrors "github.com/sentiasa/prism-anthropic-stream/pkg/provider/errors"
)

// classifyTransportError maps a DoStream failure onto the public error
// taxonomy. A *internalhttp.StatusError carries the response status and
// headers; anything else is a bare transport failure.
func classifyTransportError(err error) error {
	var statusErr *internalhttp.StatusError
	if !errors.As(err, &statusErr) {
		return providererrors.NewProviderRequestError("anthropic", 0, err)
	}

	switch statusErr.StatusCode {
	case nethttp.StatusTooManyRequests: // 429
		limits, retryAfter := parseRateLimits(statusErr.Headers)
		return providererrors.NewRateLimitedError("anthropic", limits, retryAfter, statusErr)
	case 529: // Anthropic-specific overloaded status, not a stdlib constant
		return providererrors.NewOverloadedError("anthropic", statusErr)
	case nethttp.StatusRequestEntityTooLarge: // 413
		return providererrors.NewRequestTooLargeError("anthropic", statusErr)
	default:
		return providererrors.NewProviderRequestError("anthropic", statusErr.StatusCode, statusErr)
	}
}

// classifyStreamErrorEvent maps an in-stream `error` event onto the taxonomy.
func classifyStreamErrorEvent(errType, message string) error {
	if errType == "overloaded_error" {
		return providererrors.NewOverloadedError("anthropic", nil)
	}
	return providererrors.NewProviderResponseError("anthropic", errType, message)
}
