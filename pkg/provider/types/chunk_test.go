package types

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMapStopReason(t *testing.T) {
	cases := map[string]FinishReason{
		"end_turn":      FinishStop,
		"stop_sequence": FinishStop,
		"max_tokens":    FinishLength,
		"tool_use":      FinishToolCalls,
		"":              FinishOther,
		"unknown_thing": FinishOther,
	}
	for stopReason, want := range cases {
		assert.Equal(t, want, MapStopReason(stopReason), "stop_reason=%q", stopReason)
	}
}
