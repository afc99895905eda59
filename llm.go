package main

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"os"
	"strings"

	"github.com/aktagon/llmkit/anthropic"
	"github.com/aktagon/llmkit/anthropic/types"
	"github.com/ollama/ollama/api"
)

// LLMClient sends an extraction prompt to a language model and returns the
// raw textual completion.
type LLMClient interface {
	Extract(ctx context.Context, prompt string) (string, error)
}

// NewLLMClient builds the client for the configured provider.
func NewLLMClient(cfg LLMSettings) (LLMClient, error) {
	switch cfg.Provider {
	case "", "ollama":
		return NewOllamaClient(cfg)
	case "anthropic":
		apiKey := os.Getenv("ANTHROPIC_API_KEY")
		if apiKey == "" {
			return nil, fmt.Errorf("anthropic provider requires the ANTHROPIC_API_KEY environment variable")
		}
		return &AnthropicClient{
			apiKey:      apiKey,
			model:       cfg.Model,
			maxTokens:   cfg.MaxTokens,
			temperature: cfg.Temperature,
		}, nil
	default:
		return nil, fmt.Errorf("unknown llm provider: %s", cfg.Provider)
	}
}

// OllamaClient calls a local Ollama server's generate API with deterministic
// decoding options.
type OllamaClient struct {
	client      *api.Client
	model       string
	maxTokens   int
	temperature float64
}

func NewOllamaClient(cfg LLMSettings) (*OllamaClient, error) {
	base, err := url.Parse(cfg.Host)
	if err != nil {
		return nil, fmt.Errorf("parsing ollama host %s: %w", cfg.Host, err)
	}

	// No client timeout: generation on local hardware can take minutes and
	// cancellation runs through the context.
	return &OllamaClient{
		client:      api.NewClient(base, &http.Client{}),
		model:       cfg.Model,
		maxTokens:   cfg.MaxTokens,
		temperature: cfg.Temperature,
	}, nil
}

func (c *OllamaClient) Extract(ctx context.Context, prompt string) (string, error) {
	stream := false
	req := &api.GenerateRequest{
		Model:  c.model,
		Prompt: prompt,
		Stream: &stream,
		Options: map[string]any{
			"temperature": c.temperature,
			"num_predict": c.maxTokens,
		},
	}

	var out strings.Builder
	err := c.client.Generate(ctx, req, func(resp api.GenerateResponse) error {
		out.WriteString(resp.Response)
		return nil
	})
	if err != nil {
		return "", fmt.Errorf("calling ollama generate: %w", err)
	}
	return out.String(), nil
}

// AnthropicClient calls the Anthropic API through llmkit.
type AnthropicClient struct {
	apiKey      string
	model       string
	maxTokens   int
	temperature float64
}

func (c *AnthropicClient) Extract(ctx context.Context, prompt string) (string, error) {
	settings := types.RequestSettings{
		Model:       c.model,
		MaxTokens:   c.maxTokens,
		Temperature: c.temperature,
	}

	response, err := anthropic.PromptWithSettings("", prompt, "", c.apiKey, settings)
	if err != nil {
		return "", fmt.Errorf("anthropic prompt failed: %w", err)
	}
	if len(response.Content) == 0 {
		return "", fmt.Errorf("no content in anthropic response")
	}
	return response.Content[0].Text, nil
}
