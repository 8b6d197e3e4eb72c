// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


package ai

import (
	"errors"
	"strings"
	"time"
)

// Config holds configuration for AI service providers.
type Config struct {
	// EmbeddingHost is the base URL for the embedding service API.
	// Example: "http://localhost:11434/v1" for local OpenAI-compatible server.
	// Empty means no remote embedder; the deterministic fallback serves alone.
	EmbeddingHost string

	// EmbeddingModel is the model identifier to use for text embeddings.
	// Example: "embeddinggemma", "text-embedding-3-small"
	EmbeddingModel string

	// EmbeddingDimensions is the vector width the deterministic fallback
	// embedder produces. It should match the remote embedding model so that
	// stored vectors stay comparable.
	// Default: 1536
	EmbeddingDimensions int

	// ChatHost is the base URL for the general-tier chat completion API.
	// Example: "http://localhost:11434/v1" for local OpenAI-compatible server
	ChatHost string

	// ChatModel is the model identifier for general-tier completions.
	// Example: "qwen2.5:3b", "gpt-4o-mini"
	ChatModel string

	// AnthropicAPIKey enables the reasoning tier when set.
	// Read from ANTHROPIC_API_KEY in the CLI.
	AnthropicAPIKey string

	// AnthropicModel is the model identifier for reasoning-tier completions.
	// Example: "claude-sonnet-4-5"
	AnthropicModel string

	// OllamaHost is the base URL of a native Ollama server for the fast tier.
	// Example: "http://localhost:11434". Empty disables the fast tier.
	OllamaHost string

	// OllamaModel is the model identifier for fast-tier completions.
	// Example: "llama3.2"
	OllamaModel string

	// MaxEmbedChars caps the text length sent to embedders. Longer inputs
	// are truncated, never rejected.
	// Default: 8000
	MaxEmbedChars int

	// MaxCompletionTokens bounds answer length for all completion backends.
	// Default: 1024
	MaxCompletionTokens int

	// RequestTimeout bounds every outbound AI call.
	// Default: 30s
	RequestTimeout time.Duration
}

// ConfigOption is a functional option for configuring a Config.
type ConfigOption func(*Config)

// WithEmbeddingHost sets the embedding service host URL.
func WithEmbeddingHost(host string) ConfigOption {
	return func(c *Config) {
		c.EmbeddingHost = host
	}
}

// WithChatHost sets the general-tier chat service host URL.
func WithChatHost(host string) ConfigOption {
	return func(c *Config) {
		c.ChatHost = host
	}
}

// WithHost sets both embedding and chat hosts to the same URL.
func WithHost(host string) ConfigOption {
	return func(c *Config) {
		c.EmbeddingHost = host
		c.ChatHost = host
	}
}

// WithEmbeddingModel sets the embedding model identifier.
func WithEmbeddingModel(model string) ConfigOption {
	return func(c *Config) {
		c.EmbeddingModel = model
	}
}

// WithEmbeddingDimensions sets the fallback embedding vector width.
func WithEmbeddingDimensions(dim int) ConfigOption {
	return func(c *Config) {
		c.EmbeddingDimensions = dim
	}
}

// WithChatModel sets the general-tier chat model identifier.
func WithChatModel(model string) ConfigOption {
	return func(c *Config) {
		c.ChatModel = model
	}
}

// WithAnthropic sets the Anthropic API key and model for the reasoning tier.
func WithAnthropic(apiKey, model string) ConfigOption {
	return func(c *Config) {
		c.AnthropicAPIKey = apiKey
		if model != "" {
			c.AnthropicModel = model
		}
	}
}

// WithOllama sets the Ollama server URL and model for the fast tier.
func WithOllama(host, model string) ConfigOption {
	return func(c *Config) {
		c.OllamaHost = host
		if model != "" {
			c.OllamaModel = model
		}
	}
}

// WithMaxEmbedChars sets the embedding input truncation limit.
func WithMaxEmbedChars(limit int) ConfigOption {
	return func(c *Config) {
		c.MaxEmbedChars = limit
	}
}

// WithMaxCompletionTokens sets the completion token budget.
func WithMaxCompletionTokens(tokens int) ConfigOption {
	return func(c *Config) {
		c.MaxCompletionTokens = tokens
	}
}

// WithRequestTimeout sets the timeout applied to outbound AI calls.
func WithRequestTimeout(timeout time.Duration) ConfigOption {
	return func(c *Config) {
		c.RequestTimeout = timeout
	}
}

// DefaultConfig returns a Config with sensible defaults for local
// OpenAI-compatible services. By default, embedding and chat use the same
// host; the reasoning and fast tiers are disabled until configured.
func DefaultConfig() *Config {
	defaultHost := "http://localhost:11434/v1"
	return &Config{
		EmbeddingHost:       defaultHost,
		EmbeddingModel:      "embeddinggemma",
		EmbeddingDimensions: 1536,
		ChatHost:            defaultHost,
		ChatModel:           "qwen2.5:3b",
		AnthropicModel:      "claude-sonnet-4-5",
		OllamaModel:         "llama3.2",
		MaxEmbedChars:       8000,
		MaxCompletionTokens: 1024,
		RequestTimeout:      30 * time.Second,
	}
}

// NewConfig creates a Config with the default values and applies the provided
// options. This is the recommended way to create a Config with custom settings.
//
// Example:
//
//	cfg := NewConfig(
//	    WithHost("http://localhost:11434/v1"),
//	    WithEmbeddingModel("text-embedding-3-small"),
//	)
//
// Example with the reasoning tier enabled:
//
//	cfg := NewConfig(
//	    WithHost("http://localhost:11434/v1"),
//	    WithAnthropic(os.Getenv("ANTHROPIC_API_KEY"), ""),
//	)
func NewConfig(opts ...ConfigOption) *Config {
	cfg := DefaultConfig()
	for _, opt := range opts {
		opt(cfg)
	}
	return cfg
}

// Normalize ensures the configuration is in a canonical form.
// It automatically adds the /v1 suffix to OpenAI-compatible hosts if missing,
// which is required by most such APIs (Ollama, LocalAI, vLLM, etc).
// The native Ollama host is left untouched; its API is not path-versioned.
func (c *Config) Normalize() {
	if c.EmbeddingHost != "" && !strings.HasSuffix(c.EmbeddingHost, "/v1") {
		c.EmbeddingHost = strings.TrimSuffix(c.EmbeddingHost, "/")
		c.EmbeddingHost = c.EmbeddingHost + "/v1"
	}
	if c.ChatHost != "" && !strings.HasSuffix(c.ChatHost, "/v1") {
		c.ChatHost = strings.TrimSuffix(c.ChatHost, "/")
		c.ChatHost = c.ChatHost + "/v1"
	}
}

// Validate checks that the configuration is valid and complete.
// It automatically normalizes the configuration before validation.
// Hosts are optional; a host that is set requires its model.
func (c *Config) Validate() error {
	c.Normalize()

	if c.EmbeddingHost != "" && c.EmbeddingModel == "" {
		return errors.New("ai config: EmbeddingModel is required when EmbeddingHost is set")
	}
	if c.ChatHost != "" && c.ChatModel == "" {
		return errors.New("ai config: ChatModel is required when ChatHost is set")
	}
	if c.AnthropicAPIKey != "" && c.AnthropicModel == "" {
		return errors.New("ai config: AnthropicModel is required when AnthropicAPIKey is set")
	}
	if c.OllamaHost != "" && c.OllamaModel == "" {
		return errors.New("ai config: OllamaModel is required when OllamaHost is set")
	}
	if c.EmbeddingDimensions < 1 {
		return errors.New("ai config: EmbeddingDimensions must be positive")
	}
	if c.MaxEmbedChars < 1 {
		return errors.New("ai config: MaxEmbedChars must be positive")
	}
	if c.MaxCompletionTokens < 1 {
		return errors.New("ai config: MaxCompletionTokens must be positive")
	}
	if c.RequestTimeout <= 0 {
		return errors.New("ai config: RequestTimeout must be positive")
	}
	return nil
}
