// Package ollama implements ai.Completer against a native Ollama server.
// It backs the fast tier, where a small local model answers short factual
// lookups with low latency.
package ollama

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/poiesic/docquery/ai"
	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/ollama"
	"github.com/tmc/langchaingo/schema"
)

var (
	errNoHost          = errors.New("ollama: OllamaHost is not configured")
	errEmptyCompletion = errors.New("ollama: model returned no choices")
)

// Completer implements ai.Completer using a local Ollama server.
type Completer struct {
	client llms.Model
	model  string
	logger *slog.Logger
}

// NewCompleter creates a completer for the configured Ollama model.
//
// Returns ai.Completer interface to enforce abstraction.
func NewCompleter(config *ai.Config) (ai.Completer, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}
	if config.OllamaHost == "" {
		return nil, errNoHost
	}

	client, err := ollama.New(
		ollama.WithServerURL(config.OllamaHost),
		ollama.WithModel(config.OllamaModel),
	)
	if err != nil {
		return nil, err
	}

	return &Completer{
		client: client,
		model:  config.OllamaModel,
		logger: slog.Default().With("component", "ollama-completer"),
	}, nil
}

// Complete generates a completion for the given prompts.
func (c *Completer) Complete(ctx context.Context, systemPrompt, userPrompt string, maxTokens int) (string, error) {
	content := []llms.MessageContent{
		llms.TextParts(schema.ChatMessageTypeSystem, systemPrompt),
		llms.TextParts(schema.ChatMessageTypeHuman, userPrompt),
	}

	response, err := c.client.GenerateContent(ctx, content, llms.WithMaxTokens(maxTokens))
	if err != nil {
		c.logger.Error("failed to generate completion", "model", c.model, "err", err)
		return "", err
	}

	if len(response.Choices) < 1 {
		c.logger.Warn("no choices returned from model", "model", c.model)
		return "", errEmptyCompletion
	}

	return strings.TrimSpace(response.Choices[0].Content), nil
}

// Name identifies the backend for logging and answer attribution.
func (c *Completer) Name() string {
	return "ollama/" + c.model
}
