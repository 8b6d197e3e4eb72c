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


// Package anthropic implements ai.Completer against the Anthropic Messages
// API. It backs the reasoning tier, where analytical queries justify a
// stronger model than the local general backend.
package anthropic

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	sdk "github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	"github.com/poiesic/docquery/ai"
)

var (
	errNoAPIKey        = errors.New("anthropic: API key is not configured")
	errEmptyCompletion = errors.New("anthropic: response contained no text blocks")
)

// Completer implements ai.Completer using the Anthropic Messages API.
type Completer struct {
	client sdk.Client
	model  string
	logger *slog.Logger
}

// NewCompleter creates a completer for the configured Anthropic model.
//
// Returns ai.Completer interface to enforce abstraction.
func NewCompleter(config *ai.Config) (ai.Completer, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}
	if config.AnthropicAPIKey == "" {
		return nil, errNoAPIKey
	}

	return &Completer{
		client: sdk.NewClient(option.WithAPIKey(config.AnthropicAPIKey)),
		model:  config.AnthropicModel,
		logger: slog.Default().With("component", "anthropic-completer"),
	}, nil
}

// Complete generates a completion for the given prompts.
func (c *Completer) Complete(ctx context.Context, systemPrompt, userPrompt string, maxTokens int) (string, error) {
	message, err := c.client.Messages.New(ctx, sdk.MessageNewParams{
		Model:     sdk.Model(c.model),
		MaxTokens: int64(maxTokens),
		System: []sdk.TextBlockParam{
			{Text: systemPrompt},
		},
		Messages: []sdk.MessageParam{
			sdk.NewUserMessage(sdk.NewTextBlock(userPrompt)),
		},
	})
	if err != nil {
		c.logger.Error("failed to generate completion", "model", c.model, "err", err)
		return "", err
	}

	var text strings.Builder
	for _, block := range message.Content {
		if block.Type == "text" {
			text.WriteString(block.Text)
		}
	}
	if text.Len() == 0 {
		c.logger.Warn("response contained no text blocks", "model", c.model)
		return "", errEmptyCompletion
	}

	return strings.TrimSpace(text.String()), nil
}

// Name identifies the backend for logging and answer attribution.
func (c *Completer) Name() string {
	return "anthropic/" + c.model
}
