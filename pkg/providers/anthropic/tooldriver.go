package anthropic

import (
	providererrors "github.com/sentiasa/prism-anthropic-stream/pkg/provider/errors"
	"github.com/sentiasa/prism-anthropic-stream/pkg/provider/types"
)

// handoff runs one hop's tool-call turn to completion and opens the
// next hop: finalize the accumulated tool calls, emit a calls chunk,
// invoke each tool in declared order, append the assistant and
// tool-result turns to the conversation, emit a results chunk, and
// recurse at depth+1. The depth bound is checked before the new
// request is opened, per the fatal-before-opening requirement.
func (s *Stream) handoff(h *hop) error {
	calls := h.state.finalToolCalls()

	h.pending = append(h.pending, &types.Chunk{
		Type:       types.ChunkMessage,
		ToolCalls:  calls,
		Additional: h.state.additionalContent(),
	})

	results := make([]types.ToolResult, 0, len(calls))
	for _, call := range calls {
		result, err := s.invokeTool(call)
		if err != nil {
			return err
		}
		results = append(results, result)
	}

	messages := append(append([]types.Message{}, h.messages...),
		types.NewAssistantMessage(h.state.text, calls, h.state.additionalContent()),
		types.NewToolResultMessage(results),
	)

	h.pending = append(h.pending, &types.Chunk{
		Type:        types.ChunkMessage,
		ToolResults: results,
	})

	if h.depth+1 >= s.opts.MaxSteps {
		return providererrors.NewMaxStepsExceededError(s.opts.MaxSteps)
	}

	if err := s.openHop(h.depth+1, messages); err != nil {
		return err
	}
	// The calls and results chunks must reach the caller before anything
	// the new hop yields, so they move to the top of the stack with it.
	next := s.stack[len(s.stack)-1]
	next.pending = append(h.pending, next.pending...)
	h.pending = nil
	return nil
}

func (s *Stream) invokeTool(call types.ToolCall) (types.ToolResult, error) {
	tool, ok := s.toolsByName[call.Name]
	if !ok || tool.Invoke == nil {
		return types.ToolResult{}, providererrors.NewToolInvocationError(call.Name, call.ID, errUnknownTool(call.Name))
	}
	result, err := tool.Invoke(s.ctx, call.Arguments)
	if err != nil {
		return types.ToolResult{}, providererrors.NewToolInvocationError(call.Name, call.ID, err)
	}
	return types.ToolResult{ToolCallID: call.ID, ToolName: call.Name, Result: result}, nil
}

type unknownToolError struct{ name string }

func (e *unknownToolError) Error() string { return "no tool registered with name " + e.name }

func errUnknownTool(name string) error { return &unknownToolError{name: name} }
