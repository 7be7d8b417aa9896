package anthropic

import (
	"net/http"
	"strconv"
	"strings"

	providererrors "github.com/sentiasa/prism-anthropic-stream/pkg/provider/errors"
)

// parseRateLimits scans response headers for
// anthropic-ratelimit-<resource>-<field> headers (field being limit,
// remaining or reset; the resource is everything before the last
// hyphen), grouping them by resource, and separately extracts
// retry-after as integer seconds.
func parseRateLimits(h http.Header) ([]providererrors.ProviderRateLimit, *int) {
	byResource := map[string]*providererrors.ProviderRateLimit{}
	var order []string

	for key := range h {
		lower := strings.ToLower(key)
		const prefix = "anthropic-ratelimit-"
		if !strings.HasPrefix(lower, prefix) {
			continue
		}
		rest := strings.TrimPrefix(lower, prefix)
		dash := strings.LastIndex(rest, "-")
		if dash < 0 {
			continue
		}
		field, resource := rest[dash+1:], rest[:dash]
		value := h.Get(key)

		rl, ok := byResource[resource]
		if !ok {
			rl = &providererrors.ProviderRateLimit{Name: resource}
			byResource[resource] = rl
			order = append(order, resource)
		}

		switch field {
		case "limit":
			if n, err := strconv.Atoi(value); err == nil {
				rl.Limit = &n
			}
		case "remaining":
			if n, err := strconv.Atoi(value); err == nil {
				rl.Remaining = &n
			}
		case "reset":
			v := value
			rl.ResetsAt = &v
		}
	}

	limits := make([]providererrors.ProviderRateLimit, 0, len(order))
	for _, resource := range order {
		limits = append(limits, *byResource[resource])
	}

	var retryAfter *int
	if v := h.Get("retry-after"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			retryAfter = &n
		}
	}

	return limits, retryAfter
}
