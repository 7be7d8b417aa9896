package anthropic

// ThinkingType represents the type of thinking configuration.
type ThinkingType string

const (
	// ThinkingTypeEnabled turns on extended thinking with an optional
	// token budget. Responses include thinking content blocks showing
	// Claude's reasoning process.
	ThinkingTypeEnabled ThinkingType = "enabled"

	// ThinkingTypeDisabled disables thinking.
	ThinkingTypeDisabled ThinkingType = "disabled"
)

// DefaultThinkingBudgetTokens is used when thinking is enabled without
// an explicit budget override. Anthropic requires a minimum of 1,024.
const DefaultThinkingBudgetTokens = 1024

// ThinkingConfig configures Claude's extended thinking for one request.
type ThinkingConfig struct {
	// Enabled turns thinking on for this request.
	Enabled bool

	// BudgetTokens overrides DefaultThinkingBudgetTokens when positive.
	BudgetTokens int
}

func (t *ThinkingConfig) toWire() *wireThinking {
	if t == nil || !t.Enabled {
		return nil
	}
	budget := t.BudgetTokens
	if budget <= 0 {
		budget = DefaultThinkingBudgetTokens
	}
	return &wireThinking{Type: ThinkingTypeEnabled, BudgetTokens: budget}
}

// wireThinking is the JSON shape sent on the wire.
type wireThinking struct {
	Type         ThinkingType `json:"type"`
	BudgetTokens int          `json:"budget_tokens"`
}
