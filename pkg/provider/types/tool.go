package types

import "context"

// ToolFunc is the opaque invocation handle the core receives for each
// registered tool: a synchronous function from a decoded argument map
// to a string result.
type ToolFunc func(ctx context.Context, arguments map[string]any) (string, error)

// ToolDefinition describes one tool available to the model. Parameter
// schema wiring and invocation plumbing live outside the core; this is
// the shape the Request Payload Builder and Tool Driver consume.
type ToolDefinition struct {
	Name        string
	Description string
	Parameters  map[string]any
	Invoke      ToolFunc
}

// ToolCall is a finalized tool invocation request from the model: a
// stable id, the tool name, and the decoded argument map. On JSON
// decode failure the driver substitutes an empty map rather than
// failing the call.
type ToolCall struct {
	ID        string
	Name      string
	Arguments map[string]any
}

// ToolResult is the caller-visible outcome of invoking a tool call.
type ToolResult struct {
	ToolCallID string
	ToolName   string
	Result     string
}
