package anthropic

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/sentiasa/prism-anthropic-stream/pkg/provider/types"
)

// ToolChoice controls whether/which tool the model must call.
type ToolChoice struct {
	Type string // "auto", "none", "required", or "tool"
	Name string // set when Type == "tool"
}

// RequestOptions is everything the Request Payload Builder needs for one hop.
type RequestOptions struct {
	Model       string
	Messages    []types.Message
	Tools       []types.ToolDefinition
	ToolChoice  *ToolChoice
	Temperature *float64
	TopP        *float64
	MaxTokens   int
	Thinking    *ThinkingConfig
}

type wireRequest struct {
	Model       string           `json:"model"`
	Stream      bool             `json:"stream"`
	System      string           `json:"system,omitempty"`
	Messages    []map[string]any `json:"messages"`
	Tools       []map[string]any `json:"tools,omitempty"`
	ToolChoice  map[string]any   `json:"tool_choice,omitempty"`
	Temperature *float64         `json:"temperature,omitempty"`
	TopP        *float64         `json:"top_p,omitempty"`
	MaxTokens   int              `json:"max_tokens,omitempty"`
	Thinking    *wireThinking    `json:"thinking,omitempty"`
}

// buildRequestBody assembles the JSON body for one streaming request,
// dropping null/empty fields as it goes.
func buildRequestBody(opts RequestOptions) ([]byte, error) {
	maxTokens := opts.MaxTokens
	if maxTokens <= 0 {
		maxTokens = 4096
	}

	req := wireRequest{
		Model:       opts.Model,
		Stream:      true,
		System:      mergedSystemText(opts.Messages),
		Messages:    wireMessages(opts.Messages),
		Tools:       wireTools(opts.Tools),
		Temperature: opts.Temperature,
		TopP:        opts.TopP,
		MaxTokens:   maxTokens,
		Thinking:    opts.Thinking.toWire(),
	}
	if opts.ToolChoice != nil {
		tc := map[string]any{"type": opts.ToolChoice.Type}
		if opts.ToolChoice.Type == "tool" {
			tc["name"] = opts.ToolChoice.Name
		}
		req.ToolChoice = tc
	}

	body, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request body: %w", err)
	}
	return body, nil
}

func mergedSystemText(messages []types.Message) string {
	var parts []string
	for _, m := range messages {
		if m.Role == types.RoleSystem {
			if t := m.Text(); t != "" {
				parts = append(parts, t)
			}
		}
	}
	return strings.Join(parts, "\n\n")
}

func wireMessages(messages []types.Message) []map[string]any {
	wire := make([]map[string]any, 0, len(messages))
	for _, m := range messages {
		switch m.Role {
		case types.RoleSystem:
			continue // merged into the top-level system field
		case types.RoleUser:
			wire = append(wire, map[string]any{
				"role":    "user",
				"content": []map[string]any{{"type": "text", "text": m.Text()}},
			})
		case types.RoleAssistant:
			wire = append(wire, map[string]any{"role": "assistant", "content": assistantContentBlocks(m)})
		case types.RoleToolResult:
			// Anthropic has no distinct tool_result role: results travel
			// back as a user turn carrying tool_result content blocks.
			blocks := make([]map[string]any, len(m.ToolResults))
			for i, r := range m.ToolResults {
				blocks[i] = map[string]any{
					"type":        "tool_result",
					"tool_use_id": r.ToolCallID,
					"content":     r.Result,
				}
			}
			wire = append(wire, map[string]any{"role": "user", "content": blocks})
		}
	}
	return wire
}

func assistantContentBlocks(m types.Message) []map[string]any {
	var blocks []map[string]any
	if m.Additional != nil && m.Additional.Thinking != "" {
		blocks = append(blocks, map[string]any{
			"type":      "thinking",
			"thinking":  m.Additional.Thinking,
			"signature": m.Additional.ThinkingSignature,
		})
	}
	if text := m.Text(); text != "" {
		blocks = append(blocks, map[string]any{"type": "text", "text": text})
	}
	for _, call := range m.ToolCalls {
		blocks = append(blocks, map[string]any{
			"type":  "tool_use",
			"id":    call.ID,
			"name":  call.Name,
			"input": call.Arguments,
		})
	}
	return blocks
}

func wireTools(tools []types.ToolDefinition) []map[string]any {
	if len(tools) == 0 {
		return nil
	}
	wire := make([]map[string]any, len(tools))
	for i, t := range tools {
		wire[i] = map[string]any{
			"name":         t.Name,
			"description":  t.Description,
			"input_schema": t.Parameters,
		}
	}
	return wire
}
