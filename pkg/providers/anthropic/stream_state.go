package anthropic

import (
	"github.com/sentiasa/prism-anthropic-stream/pkg/jsonparser"
	"github.com/sentiasa/prism-anthropic-stream/pkg/provider/types"
)

// toolCallSlot accumulates one tool_use content block across its
// input_json_delta events, keyed by the provider's content-block index.
type toolCallSlot struct {
	id          string
	name        string
	partialJSON string
}

// streamState is the set of per-turn accumulators the event dispatcher
// mutates. A fresh streamState is created on every entry to a hop
// (including recursive re-entries) and discarded when that hop's
// stream ends, so nothing leaks across hops.
type streamState struct {
	text              string
	thinking          string
	thinkingSignature string
	citations         []types.CitationPart

	// toolCalls is keyed by content-block index; toolCallOrder preserves
	// the insertion order used to emit calls deterministically even when
	// indices are non-contiguous.
	toolCalls     map[int]*toolCallSlot
	toolCallOrder []int

	tempBlockType  string
	tempBlockIndex int
	tempCitation   *types.CitationPart

	stopReason string
	model      string
	requestID  string
}

func newStreamState() *streamState {
	return &streamState{toolCalls: make(map[int]*toolCallSlot)}
}

func (s *streamState) startToolCall(index int, id, name string) {
	s.toolCalls[index] = &toolCallSlot{id: id, name: name}
	s.toolCallOrder = append(s.toolCallOrder, index)
}

func (s *streamState) appendToolInput(index int, fragment string) {
	if slot, ok := s.toolCalls[index]; ok {
		slot.partialJSON += fragment
	}
}

func (s *streamState) hasToolCalls() bool {
	return len(s.toolCallOrder) > 0
}

// additionalContent builds the thinking/citation bag to attach to a chunk
// or to the assistant message the tool driver appends at handoff.
func (s *streamState) additionalContent() *types.AdditionalContent {
	if s.thinking == "" && s.thinkingSignature == "" && len(s.citations) == 0 {
		return nil
	}
	return &types.AdditionalContent{
		Thinking:          s.thinking,
		ThinkingSignature: s.thinkingSignature,
		Citations:         append([]types.CitationPart(nil), s.citations...),
	}
}

// finalToolCalls decodes each slot's accumulated JSON in insertion
// order, repairing truncated/malformed input via jsonparser before
// substituting an empty argument map as a last resort.
func (s *streamState) finalToolCalls() []types.ToolCall {
	calls := make([]types.ToolCall, 0, len(s.toolCallOrder))
	for _, index := range s.toolCallOrder {
		slot := s.toolCalls[index]
		calls = append(calls, types.ToolCall{ID: slot.id, Name: slot.name, Arguments: decodeToolArguments(slot.partialJSON)})
	}
	return calls
}

func decodeToolArguments(partialJSON string) map[string]any {
	result := jsonparser.ParsePartialJSON(partialJSON)
	if args, ok := result.Value.(map[string]any); ok {
		return args
	}
	return map[string]any{}
}
