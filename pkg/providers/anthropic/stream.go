package anthropic

import (
	"context"
	"encoding/json"
	"io"
	nethttp "net/http"

	internalhttp "github.com/sentiasa/prism-anthropic-stream/pkg/internal/http"
	providererrors "github.com/sentiasa/prism-anthropic-stream/pkg/provider/errors"
	"github.com/sentiasa/prism-anthropic-stream/pkg/provider/types"
	"github.com/sentiasa/prism-anthropic-stream/pkg/providerutils/streaming"
	"github.com/sentiasa/prism-anthropic-stream/pkg/telemetry"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// Model is a streaming-capable handle to one Anthropic model ID.
type Model struct {
	provider *Provider
	modelID  string
}

// StreamOptions is everything the caller controls for an entire tool
// loop, not just a single hop: the seed conversation, the tool
// registry, sampling parameters, and the hop depth bound.
type StreamOptions struct {
	Messages    []types.Message
	Tools       []types.ToolDefinition
	ToolChoice  *ToolChoice
	Temperature *float64
	TopP        *float64
	MaxTokens   int
	Thinking    *ThinkingConfig

	// MaxSteps bounds recursive tool-call hops. 0 defaults to 1 (no tool
	// calls permitted at all: a turn that asks for one is fatal).
	MaxSteps int

	// RetryBudget, when set, is waited on before every hop's request
	// (the first included) and observes each hop's rate-limit snapshot,
	// so later hops are throttled by what earlier hops reported. Never
	// retries or swallows a RateLimitedError.
	RetryBudget *RetryBudget
}

// hop is one in-flight streaming HTTP request and its accumulator.
// Stream keeps a stack of these to realize recursive tool-call hops
// without a native coroutine: the innermost hop is the one currently
// producing chunks, and a handoff pushes a new hop on top of it.
type hop struct {
	resp       *nethttp.Response
	frames     *streaming.FrameParser
	state      *streamState
	depth      int
	messages   []types.Message
	rateLimits []providererrors.ProviderRateLimit
	done       bool
	pending    []*types.Chunk
	span       trace.Span
}

// Stream is a lazy, pull-based sequence of Chunks spanning every hop of
// one tool-call loop.
type Stream struct {
	ctx         context.Context
	model       *Model
	opts        StreamOptions
	toolsByName map[string]types.ToolDefinition
	stack       []*hop
}

// Stream opens the first hop and returns a Stream ready for Next().
func (m *Model) Stream(ctx context.Context, opts StreamOptions) (*Stream, error) {
	if opts.MaxSteps <= 0 {
		opts.MaxSteps = 1
	}
	toolsByName := make(map[string]types.ToolDefinition, len(opts.Tools))
	for _, t := range opts.Tools {
		toolsByName[t.Name] = t
	}

	s := &Stream{ctx: ctx, model: m, opts: opts, toolsByName: toolsByName}
	if err := s.openHop(0, opts.Messages); err != nil {
		return nil, err
	}
	return s, nil
}

// openHop issues the streaming HTTP request for depth and pushes the
// resulting hop onto the stack. Callers must check the depth bound
// before calling this: it does not re-check MaxSteps itself, since the
// tool driver needs to raise MaxStepsExceeded *before* it opens the
// request, not after.
func (s *Stream) openHop(depth int, messages []types.Message) error {
	if s.opts.RetryBudget != nil {
		if err := s.opts.RetryBudget.Wait(s.ctx); err != nil {
			return err
		}
	}

	body, err := buildRequestBody(RequestOptions{
		Model:       s.model.modelID,
		Messages:    messages,
		Tools:       s.opts.Tools,
		ToolChoice:  s.opts.ToolChoice,
		Temperature: s.opts.Temperature,
		TopP:        s.opts.TopP,
		MaxTokens:   s.opts.MaxTokens,
		Thinking:    s.opts.Thinking,
	})
	if err != nil {
		return err
	}

	tracer := s.model.provider.tracer
	attrs := append(
		telemetry.GetBaseAttributes("anthropic", s.model.modelID, s.model.provider.config.Telemetry, nil),
		attribute.Int("ai.hop.depth", depth),
	)
	spanCtx, span := tracer.Start(s.ctx, "anthropic.stream", trace.WithAttributes(attrs...))

	resp, err := s.model.provider.Client().DoStream(spanCtx, internalhttp.Request{
		Method: nethttp.MethodPost,
		Path:   "/v1/messages",
		Body:   json.RawMessage(body),
	})
	if err != nil {
		classified := classifyTransportError(err)
		telemetry.RecordErrorOnSpan(span, classified)
		span.End()
		return classified
	}

	h := &hop{
		resp:     resp,
		frames:   streaming.NewFrameParser(resp.Body, "anthropic"),
		state:    newStreamState(),
		depth:    depth,
		messages: messages,
		span:     span,
	}
	s.stack = append(s.stack, h)
	return nil
}

// Next returns the next chunk across every open hop, innermost first.
// It returns (nil, io.EOF) once the last hop's final Meta chunk has
// been delivered and every hop has been popped.
func (s *Stream) Next() (*types.Chunk, error) {
	for len(s.stack) > 0 {
		h := s.stack[len(s.stack)-1]

		if len(h.pending) > 0 {
			chunk := h.pending[0]
			h.pending = h.pending[1:]
			return chunk, nil
		}

		if h.done {
			s.popHop()
			continue
		}

		chunk, hopDone, err := s.advanceHop(h)
		if err != nil {
			telemetry.RecordErrorOnSpan(h.span, err)
			s.popHop()
			return nil, err
		}
		if hopDone {
			h.done = true
		}
		if chunk != nil {
			return chunk, nil
		}
	}
	return nil, io.EOF
}

func (s *Stream) popHop() {
	n := len(s.stack)
	h := s.stack[n-1]
	h.resp.Body.Close()
	h.span.End()
	s.stack = s.stack[:n-1]
}

// Close abandons the stream early, releasing every open hop's HTTP
// connection.
func (s *Stream) Close() error {
	for len(s.stack) > 0 {
		s.popHop()
	}
	return nil
}

// advanceHop reads frames from h until it has a chunk to return, the
// hop hands off to a new recursive hop, or the hop's body is exhausted.
func (s *Stream) advanceHop(h *hop) (*types.Chunk, bool, error) {
	for {
		frame, err := h.frames.Next()
		if err == io.EOF {
			// Safety net: the body closed without message_stop. If tool
			// calls had already accumulated, hand off anyway rather than
			// silently dropping them.
			if h.state.hasToolCalls() {
				if hopErr := s.handoff(h); hopErr != nil {
					return nil, true, hopErr
				}
			}
			return nil, true, nil
		}
		if err != nil {
			return nil, true, err
		}
		if frame == nil {
			continue
		}

		chunk, handedOff, err := s.dispatch(h, frame)
		if err != nil {
			return nil, true, err
		}
		if handedOff {
			return nil, true, nil
		}
		if chunk != nil {
			return chunk, false, nil
		}
	}
}

type messageStartPayload struct {
	Message struct {
		ID    string `json:"id"`
		Model string `json:"model"`
	} `json:"message"`
}

type contentBlockStartPayload struct {
	Index        int `json:"index"`
	ContentBlock struct {
		Type string `json:"type"`
		ID   string `json:"id"`
		Name string `json:"name"`
	} `json:"content_block"`
}

type contentBlockDeltaPayload struct {
	Index int `json:"index"`
	Delta struct {
		Type        string         `json:"type"`
		Text        string         `json:"text"`
		PartialJSON string         `json:"partial_json"`
		Thinking    string         `json:"thinking"`
		Signature   string         `json:"signature"`
		Citation    map[string]any `json:"citation"`
		TextDelta   *struct {
			Text string `json:"text"`
		} `json:"text_delta"`
	} `json:"delta"`
}

type contentBlockStopPayload struct {
	Index int `json:"index"`
}

type messageDeltaPayload struct {
	Delta struct {
		StopReason string `json:"stop_reason"`
	} `json:"delta"`
}

type errorEventPayload struct {
	Error struct {
		Type    string `json:"type"`
		Message string `json:"message"`
	} `json:"error"`
}

// dispatch handles one frame per the event-type/delta-type table. It
// returns the chunk to yield (nil if the event produced none), whether
// it handed off to a new recursive hop, and any fatal error.
func (s *Stream) dispatch(h *hop, frame *streaming.Frame) (*types.Chunk, bool, error) {
	switch frame.Type {
	case "":
		// Standalone data: line with no event: prefix — not part of the
		// Anthropic dialect we model; ignore defensively.
		return nil, false, nil

	case "ping":
		return nil, false, nil

	case "message_start":
		var payload messageStartPayload
		if err := json.Unmarshal(frame.Payload, &payload); err != nil {
			return nil, false, providererrors.NewChunkDecodeError("anthropic", err)
		}
		h.state.requestID = payload.Message.ID
		h.state.model = payload.Message.Model
		h.rateLimits, _ = parseRateLimits(h.resp.Header)
		if s.opts.RetryBudget != nil {
			s.opts.RetryBudget.Observe(h.rateLimits)
		}
		return &types.Chunk{
			Type: types.ChunkMeta,
			Meta: &types.Meta{RequestID: h.state.requestID, Model: h.state.model, RateLimits: h.rateLimits},
		}, false, nil

	case "content_block_start":
		var payload contentBlockStartPayload
		if err := json.Unmarshal(frame.Payload, &payload); err != nil {
			return nil, false, providererrors.NewChunkDecodeError("anthropic", err)
		}
		h.state.tempBlockType = payload.ContentBlock.Type
		h.state.tempBlockIndex = payload.Index
		switch payload.ContentBlock.Type {
		case "tool_use":
			h.state.startToolCall(payload.Index, payload.ContentBlock.ID, payload.ContentBlock.Name)
		case "thinking":
			h.state.thinking = ""
			h.state.thinkingSignature = ""
		}
		return nil, false, nil

	case "content_block_delta":
		return s.dispatchDelta(h, frame)

	case "content_block_stop":
		h.state.tempBlockType = ""
		h.state.tempBlockIndex = 0
		h.state.tempCitation = nil
		return nil, false, nil

	case "message_delta":
		var payload messageDeltaPayload
		if err := json.Unmarshal(frame.Payload, &payload); err != nil {
			return nil, false, providererrors.NewChunkDecodeError("anthropic", err)
		}
		if payload.Delta.StopReason != "" {
			h.state.stopReason = payload.Delta.StopReason
		}
		if h.state.stopReason == "tool_use" && h.state.hasToolCalls() {
			if err := s.handoff(h); err != nil {
				return nil, false, err
			}
			return nil, true, nil
		}
		return nil, false, nil

	case "message_stop":
		if h.state.stopReason == "tool_use" && h.state.hasToolCalls() {
			if err := s.handoff(h); err != nil {
				return nil, false, err
			}
			return nil, true, nil
		}
		return &types.Chunk{
			Type:         types.ChunkMeta,
			Text:         h.state.text,
			FinishReason: types.MapStopReason(h.state.stopReason),
			Meta:         &types.Meta{RequestID: h.state.requestID, Model: h.state.model, RateLimits: h.rateLimits},
			Additional:   h.state.additionalContent(),
		}, false, nil

	case "error":
		var payload errorEventPayload
		if err := json.Unmarshal(frame.Payload, &payload); err != nil {
			return nil, false, providererrors.NewChunkDecodeError("anthropic", err)
		}
		return nil, false, classifyStreamErrorEvent(payload.Error.Type, payload.Error.Message)

	default:
		return nil, false, nil
	}
}

func (s *Stream) dispatchDelta(h *hop, frame *streaming.Frame) (*types.Chunk, bool, error) {
	var payload contentBlockDeltaPayload
	if err := json.Unmarshal(frame.Payload, &payload); err != nil {
		return nil, false, providererrors.NewChunkDecodeError("anthropic", err)
	}

	switch payload.Delta.Type {
	case "text_delta":
		text := payload.Delta.Text
		if text == "" && payload.Delta.TextDelta != nil {
			text = payload.Delta.TextDelta.Text
		}
		h.state.text += text

		citationIndex := -1
		var additional *types.AdditionalContent
		if h.state.tempCitation != nil {
			h.state.tempCitation.DeltaText = text
			h.state.citations = append(h.state.citations, *h.state.tempCitation)
			citationIndex = len(h.state.citations) - 1
			h.state.tempCitation = nil
			additional = h.state.additionalContent()
		}
		return &types.Chunk{Type: types.ChunkMessage, Text: text, Additional: additional, CitationIndex: citationIndex}, false, nil

	case "input_json_delta":
		h.state.appendToolInput(payload.Index, payload.Delta.PartialJSON)
		return nil, false, nil

	case "thinking_delta":
		h.state.thinking += payload.Delta.Thinking
		return &types.Chunk{Type: types.ChunkThinking, Text: payload.Delta.Thinking}, false, nil

	case "signature_delta":
		h.state.thinkingSignature += payload.Delta.Signature
		return nil, false, nil

	case "citations_delta":
		citation, err := decodeCitationKind(payload.Delta.Citation)
		if err != nil {
			return nil, false, err
		}
		h.state.tempCitation = &types.CitationPart{Kind: citation, Raw: payload.Delta.Citation}
		return nil, false, nil

	default:
		return nil, false, nil
	}
}

// decodeCitationKind tags a raw citation record by checking for its
// positional fields in the fixed precedence order.
func decodeCitationKind(raw map[string]any) (types.CitationKind, error) {
	if raw == nil {
		return "", providererrors.NewInvalidCitationError(raw)
	}
	if _, ok := raw["start_page_number"]; ok {
		return types.CitationPageLocation, nil
	}
	if _, ok := raw["start_char_index"]; ok {
		return types.CitationCharLocation, nil
	}
	if _, ok := raw["start_block_index"]; ok {
		return types.CitationContentBlockLocation, nil
	}
	return "", providererrors.NewInvalidCitationError(raw)
}
