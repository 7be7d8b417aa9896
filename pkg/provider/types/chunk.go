package types

import "github.com/sentiasa/prism-anthropic-stream/pkg/provider/errors"

// FinishReason is the normalized terminal status of a turn.
type FinishReason string

const (
	FinishUnspecified FinishReason = ""
	FinishStop        FinishReason = "stop"
	FinishLength      FinishReason = "length"
	FinishToolCalls   FinishReason = "tool-calls"
	FinishOther       FinishReason = "other"
)

// MapStopReason implements the fixed provider stop_reason -> FinishReason table.
func MapStopReason(stopReason string) FinishReason {
	switch stopReason {
	case "end_turn", "stop_sequence":
		return FinishStop
	case "max_tokens":
		return FinishLength
	case "tool_use":
		return FinishToolCalls
	default:
		return FinishOther
	}
}

// ChunkType tags what a Chunk carries.
type ChunkType string

const (
	ChunkMessage  ChunkType = "message"
	ChunkThinking ChunkType = "thinking"
	ChunkMeta     ChunkType = "meta"
)

// Meta carries per-hop request identity and the current rate-limit snapshot.
type Meta struct {
	RequestID  string
	Model      string
	RateLimits []errors.ProviderRateLimit
}

// Chunk is the public per-event object the stream yields to the caller.
type Chunk struct {
	Type ChunkType

	// Text is a delta (ChunkMessage/ChunkThinking) — never the running total.
	Text string

	// FinishReason is set on the chunk that closes a turn.
	FinishReason FinishReason

	// ToolCalls is non-empty exactly once per hop that ends in tool use.
	ToolCalls []ToolCall

	// ToolResults is non-empty exactly once per hop, immediately after
	// the tools for that hop's ToolCalls chunk have run.
	ToolResults []ToolResult

	Meta *Meta

	// Additional carries thinking/citation content riding with this chunk.
	Additional *AdditionalContent

	// CitationIndex is set on ChunkMessage text-delta chunks: the index into
	// Additional.Citations the text delta is bound to, or -1 when it is
	// bound to none. Other chunks leave it at zero.
	CitationIndex int
}
