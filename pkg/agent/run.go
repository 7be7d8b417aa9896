package agent

import (
	"context"
	"errors"
	"io"

	"github.com/google/uuid"
	"github.com/sentiasa/prism-anthropic-stream/pkg/provider/types"
	"github.com/sentiasa/prism-anthropic-stream/pkg/providers/anthropic"
)

// RunOptions is the input to Run: a model handle, the seed
// conversation, and the tool registry/loop parameters.
type RunOptions struct {
	Model       *anthropic.Model
	Messages    []types.Message
	Tools       *ToolRegistry
	ToolChoice  *anthropic.ToolChoice
	Temperature *float64
	TopP        *float64
	MaxTokens   int
	Thinking    *anthropic.ThinkingConfig
	MaxSteps    int
	RetryBudget *anthropic.RetryBudget
}

// Run opens a streaming tool-call loop and returns the raw stream plus
// a correlation id useful for tying caller-side logs to one run.
func Run(ctx context.Context, opts RunOptions) (runID string, stream *anthropic.Stream, err error) {
	runID = uuid.NewString()

	var tools []types.ToolDefinition
	if opts.Tools != nil {
		tools = opts.Tools.Definitions()
	}

	stream, err = opts.Model.Stream(ctx, anthropic.StreamOptions{
		Messages:    opts.Messages,
		Tools:       tools,
		ToolChoice:  opts.ToolChoice,
		Temperature: opts.Temperature,
		TopP:        opts.TopP,
		MaxTokens:   opts.MaxTokens,
		Thinking:    opts.Thinking,
		MaxSteps:    opts.MaxSteps,
		RetryBudget: opts.RetryBudget,
	})
	return runID, stream, err
}

// ChunkOrError pairs one Chunk with an error so Chunks can deliver a
// terminal failure over the same channel instead of a second channel.
type ChunkOrError struct {
	Chunk *types.Chunk
	Err   error
}

// Chunks drains stream into a channel, closing it once the stream ends
// (with a final ChunkOrError carrying a non-nil Err if the stream ended
// in failure) or ctx is done. The caller still owns stream.Close().
func Chunks(ctx context.Context, stream *anthropic.Stream) <-chan ChunkOrError {
	out := make(chan ChunkOrError)
	go func() {
		defer close(out)
		for {
			chunk, err := stream.Next()
			if err != nil {
				if !errors.Is(err, io.EOF) {
					select {
					case out <- ChunkOrError{Err: err}:
					case <-ctx.Done():
					}
				}
				return
			}
			select {
			case out <- ChunkOrError{Chunk: chunk}:
			case <-ctx.Done():
				return
			}
		}
	}()
	return out
}
