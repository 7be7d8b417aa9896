package streaming

import (
	"encoding/json"
	"errors"
	"io"
	"strings"

	providererrors "github.com/sentiasa/prism-anthropic-stream/pkg/provider/errors"
)

// Frame is one tagged SSE record: an event name paired with its JSON
// payload (absent when the event carried no data line).
type Frame struct {
	Type    string
	Payload json.RawMessage
}

// FrameParser groups event:/data: line pairs (and tolerates bare
// data:-only lines, OpenAI-style) into Frames per the Anthropic SSE
// dialect: ping short-circuits, [DONE] sentinels are swallowed, and a
// malformed data payload is a fatal decode error.
type FrameParser struct {
	lines    *LineReader
	provider string

	// held is a line read while looking for an event's data: line that
	// turned out not to be one; Next processes it before reading more.
	held *string
}

// NewFrameParser builds a parser over r. provider names the source in
// raised ChunkDecodeErrors (e.g. "anthropic").
func NewFrameParser(r io.Reader, provider string) *FrameParser {
	return &FrameParser{lines: NewLineReader(r), provider: provider}
}

// Next returns the next frame. It returns (nil, nil) for a line that
// was intentionally skipped (blank lines, comments, [DONE] sentinels,
// an event with no following data line yields a Frame with a nil
// Payload, not a skip) — callers loop until a non-nil frame or an
// error. It returns (nil, io.EOF) at the true end of the body.
func (p *FrameParser) Next() (*Frame, error) {
	var line string
	var err error
	if p.held != nil {
		line, p.held = *p.held, nil
	} else {
		line, err = p.lines.ReadLine()
	}
	if err == io.EOF && line == "" {
		return nil, io.EOF
	}

	switch {
	case strings.HasPrefix(line, "event:"):
		name := strings.TrimSpace(strings.TrimPrefix(line, "event:"))
		if name == "ping" {
			return &Frame{Type: "ping"}, nil
		}

		dataLine, dataErr := p.lines.ReadLine()
		if dataErr == io.EOF && dataLine == "" {
			return &Frame{Type: name}, nil
		}
		if !strings.HasPrefix(dataLine, "data:") {
			p.held = &dataLine
			return &Frame{Type: name}, nil
		}
		data := strings.TrimSpace(strings.TrimPrefix(dataLine, "data:"))
		if data == "" {
			return &Frame{Type: name}, nil
		}
		if !json.Valid([]byte(data)) {
			return nil, providererrors.NewChunkDecodeError(p.provider, errors.New("invalid JSON in data line"))
		}
		return &Frame{Type: name, Payload: json.RawMessage(data)}, nil

	case strings.HasPrefix(line, "data:"):
		data := strings.TrimSpace(strings.TrimPrefix(line, "data:"))
		if data == "" || strings.Contains(data, "DONE") {
			return nil, nil
		}
		if !json.Valid([]byte(data)) {
			return nil, providererrors.NewChunkDecodeError(p.provider, errors.New("invalid JSON in data line"))
		}
		return &Frame{Payload: json.RawMessage(data)}, nil

	default:
		// Empty line, comment (":"-prefixed), or anything else: skip.
		return nil, nil
	}
}
