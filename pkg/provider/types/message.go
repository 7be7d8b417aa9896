package types

// MessageRole identifies who produced a message in the running conversation.
type MessageRole string

const (
	RoleSystem     MessageRole = "system"
	RoleUser       MessageRole = "user"
	RoleAssistant  MessageRole = "assistant"
	RoleToolResult MessageRole = "tool_result"
)

// ContentPart is a piece of message content. Content is either a flat
// string (wrap it in TextContent) or an ordered list of parts.
type ContentPart interface {
	ContentType() string
}

// TextContent is plain text content.
type TextContent struct {
	Text string
}

func (TextContent) ContentType() string { return "text" }

// AdditionalContent carries the side-channel content an assistant turn
// may accumulate alongside its visible text: reasoning and citations.
type AdditionalContent struct {
	Thinking          string
	ThinkingSignature string
	Citations         []CitationPart
}

// IsEmpty reports whether the bag carries nothing worth attaching to a chunk.
func (a *AdditionalContent) IsEmpty() bool {
	return a == nil || (a.Thinking == "" && a.ThinkingSignature == "" && len(a.Citations) == 0)
}

// CitationKind tags the positional signature a citation record carried.
type CitationKind string

const (
	CitationPageLocation         CitationKind = "page_location"
	CitationCharLocation         CitationKind = "char_location"
	CitationContentBlockLocation CitationKind = "content_block_location"
)

// CitationPart pairs a decoded citation record with the text delta it
// was bound to.
type CitationPart struct {
	Kind      CitationKind
	DeltaText string
	Raw       map[string]any
}

// ToolResultPair is one (tool_use_id, result) pair carried by a
// tool_result message.
type ToolResultPair struct {
	ToolCallID string
	Result     string
}

// Message is one turn in the running conversation.
type Message struct {
	Role MessageRole

	// Content holds ordered content parts for user/system/assistant text.
	Content []ContentPart

	// ToolCalls is populated on assistant messages that requested tool use.
	ToolCalls []ToolCall

	// Additional carries thinking/citations on assistant messages.
	Additional *AdditionalContent

	// ToolResults is populated on tool_result messages.
	ToolResults []ToolResultPair
}

// Text concatenates the message's text content parts.
func (m Message) Text() string {
	var sb []byte
	for _, p := range m.Content {
		if t, ok := p.(TextContent); ok {
			sb = append(sb, t.Text...)
		}
	}
	return string(sb)
}

// NewAssistantMessage builds the assistant turn the tool driver appends
// at handoff: the accumulated text, the tool calls the turn produced,
// and whatever thinking/citation content rode along with it.
func NewAssistantMessage(text string, calls []ToolCall, additional *AdditionalContent) Message {
	var content []ContentPart
	if text != "" {
		content = []ContentPart{TextContent{Text: text}}
	}
	return Message{
		Role:       RoleAssistant,
		Content:    content,
		ToolCalls:  calls,
		Additional: additional,
	}
}

// NewToolResultMessage builds the user-facing tool_result turn the tool
// driver appends after invoking every outstanding tool call.
func NewToolResultMessage(results []ToolResult) Message {
	pairs := make([]ToolResultPair, len(results))
	for i, r := range results {
		pairs[i] = ToolResultPair{ToolCallID: r.ToolCallID, Result: r.Result}
	}
	return Message{Role: RoleToolResult, ToolResults: pairs}
}
