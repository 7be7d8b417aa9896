// Package anthropic implements the streaming tool-use orchestration core
// against Anthropic's Messages API: SSE parsing, the turn-by-turn stream
// state machine, the bounded recursive tool driver, request payload
// construction, and rate-limit/error classification.
package anthropic

import (
	"fmt"

	"github.com/sentiasa/prism-anthropic-stream/pkg/internal/http"
	"github.com/sentiasa/prism-anthropic-stream/pkg/telemetry"
	"go.opentelemetry.io/otel/trace"
)

const (
	// DefaultBaseURL is the default Anthropic API base URL
	DefaultBaseURL = "https://api.anthropic.com"

	// DefaultAPIVersion is the default Anthropic API version
	DefaultAPIVersion = "2023-06-01"
)

// Config contains configuration for the Anthropic provider.
type Config struct {
	// APIKey is the Anthropic API key
	APIKey string

	// BaseURL is the base URL for the Anthropic API (default: https://api.anthropic.com)
	BaseURL string

	// APIVersion is the Anthropic API version (default: 2023-06-01)
	APIVersion string

	// Telemetry configures OpenTelemetry span recording for each hop. A
	// nil Telemetry disables tracing (the default): GetTracer hands back
	// a no-op tracer in that case.
	Telemetry *telemetry.Settings
}

// Provider holds the HTTP transport for one Anthropic account/base URL
// and mints Models from it.
type Provider struct {
	config Config
	client *http.Client
	tracer trace.Tracer
}

// New creates a new Anthropic provider with the given configuration.
func New(cfg Config) *Provider {
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	apiVersion := cfg.APIVersion
	if apiVersion == "" {
		apiVersion = DefaultAPIVersion
	}
	if cfg.Telemetry == nil {
		cfg.Telemetry = telemetry.DefaultSettings()
	}

	client := http.NewClient(http.Config{
		BaseURL: baseURL,
		Headers: map[string]string{
			"x-api-key":         cfg.APIKey,
			"anthropic-version": apiVersion,
		},
	})

	return &Provider{config: cfg, client: client, tracer: telemetry.GetTracer(cfg.Telemetry)}
}

// Name returns the provider name.
func (p *Provider) Name() string { return "anthropic" }

// LanguageModel returns a streaming-capable model handle for modelID.
func (p *Provider) LanguageModel(modelID string) (*Model, error) {
	if modelID == "" {
		return nil, fmt.Errorf("model ID cannot be empty")
	}
	return &Model{provider: p, modelID: modelID}, nil
}

// Client returns the HTTP client for making API requests.
func (p *Provider) Client() *http.Client {
	return p.client
}
