// Package agent provides convenience wrappers around the streaming
// core: an opaque tool registry and a channel-based consumer for
// callers that would rather range over chunks than pull them.
package agent

import "github.com/sentiasa/prism-anthropic-stream/pkg/provider/types"

// ToolRegistry maps tool names to their definitions. It is read-only
// once a stream starts: the tool driver only ever looks tools up by
// name, never mutates the registry.
type ToolRegistry struct {
	tools map[string]types.ToolDefinition
	order []string
}

// NewToolRegistry builds a registry from a list of definitions,
// preserving declaration order for callers that need a stable tools list.
func NewToolRegistry(defs ...types.ToolDefinition) *ToolRegistry {
	r := &ToolRegistry{tools: make(map[string]types.ToolDefinition, len(defs))}
	for _, d := range defs {
		r.Register(d)
	}
	return r
}

// Register adds or replaces a tool definition.
func (r *ToolRegistry) Register(def types.ToolDefinition) {
	if _, exists := r.tools[def.Name]; !exists {
		r.order = append(r.order, def.Name)
	}
	r.tools[def.Name] = def
}

// Lookup returns the definition registered under name, if any.
func (r *ToolRegistry) Lookup(name string) (types.ToolDefinition, bool) {
	def, ok := r.tools[name]
	return def, ok
}

// Definitions returns every registered tool in declaration order, the
// shape the Request Payload Builder needs.
func (r *ToolRegistry) Definitions() []types.ToolDefinition {
	defs := make([]types.ToolDefinition, 0, len(r.order))
	for _, name := range r.order {
		defs = append(defs, r.tools[name])
	}
	return defs
}
