// Command prism-chat is a minimal end-to-end demo of the streaming
// tool-use core: it sends one prompt with two local tools wired in and
// prints each chunk as it arrives.
package main

import (
	"context"
	"fmt"
	"log"
	"os"

	"github.com/sentiasa/prism-anthropic-stream/pkg/agent"
	"github.com/sentiasa/prism-anthropic-stream/pkg/provider/types"
	"github.com/sentiasa/prism-anthropic-stream/pkg/providers/anthropic"
)

func main() {
	apiKey := os.Getenv("ANTHROPIC_API_KEY")
	if apiKey == "" {
		log.Fatal("ANTHROPIC_API_KEY is not set")
	}

	provider := anthropic.New(anthropic.Config{APIKey: apiKey})
	model, err := provider.LanguageModel(anthropic.ClaudeSonnet4_5)
	if err != nil {
		log.Fatal(err)
	}

	tools := agent.NewToolRegistry(
		types.ToolDefinition{
			Name:        "search",
			Description: "Search for local event information",
			Parameters: map[string]any{
				"type":       "object",
				"properties": map[string]any{"query": map[string]any{"type": "string"}},
				"required":   []string{"query"},
			},
			Invoke: func(ctx context.Context, args map[string]any) (string, error) {
				return "Tigers game is at 3pm in Detroit today.", nil
			},
		},
		types.ToolDefinition{
			Name:        "weather",
			Description: "Get the current weather for a city",
			Parameters: map[string]any{
				"type":       "object",
				"properties": map[string]any{"city": map[string]any{"type": "string"}},
				"required":   []string{"city"},
			},
			Invoke: func(ctx context.Context, args map[string]any) (string, error) {
				return "The weather in Detroit is 75 degrees and sunny.", nil
			},
		},
	)

	messages := []types.Message{
		{Role: types.RoleUser, Content: []types.ContentPart{types.TextContent{
			Text: "What time is the tigers game today and should I wear a coat?",
		}}},
	}

	ctx := context.Background()
	_, stream, err := agent.Run(ctx, agent.RunOptions{
		Model:     model,
		Messages:  messages,
		Tools:     tools,
		MaxTokens: 1024,
		MaxSteps:  5,
	})
	if err != nil {
		log.Fatal(err)
	}
	defer stream.Close()

	for result := range agent.Chunks(ctx, stream) {
		if result.Err != nil {
			log.Fatal(result.Err)
		}
		switch result.Chunk.Type {
		case types.ChunkMessage:
			if result.Chunk.Text != "" {
				fmt.Print(result.Chunk.Text)
			}
			if len(result.Chunk.ToolCalls) > 0 {
				fmt.Printf("\n[calling %d tool(s)]\n", len(result.Chunk.ToolCalls))
			}
		case types.ChunkThinking:
			// Thinking deltas are available via result.Chunk.Text but are
			// not printed by default in this demo.
		case types.ChunkMeta:
			if result.Chunk.FinishReason != "" {
				fmt.Printf("\n[finish_reason=%s]\n", result.Chunk.FinishReason)
			}
		}
	}
}
