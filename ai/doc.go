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


// Package ai provides abstractions for the AI services used in DocQuery.
//
// This package defines interfaces for text embedding and answer completion.
// It follows the dependency inversion principle, allowing the ingestion
// pipeline, search and answer synthesis to depend on abstractions rather
// than concrete implementations.
//
// # Design Principles
//
// The package is designed around three key interfaces:
//
//   - Embedder: Generates vector embeddings from text
//   - Completer: Generates grounded answer text from prompts
//   - AIProvider: Aggregates AI services for convenient initialization
//
// Completers are organized by Tier. A tier names a capability class rather
// than a vendor: TierReasoning for analytical questions, TierFast for short
// factual lookups, TierGeneral for everything else. The provider resolves a
// tier to whichever backend is configured for it and degrades to the general
// backend when a tier has none.
//
// # Implementation Packages
//
// The ai package includes several implementation sub-packages:
//
//   - ai/openai: Embeddings and completions via OpenAI-compatible APIs
//   - ai/anthropic: Completions via the Anthropic Messages API
//   - ai/ollama: Completions via a local Ollama server
//   - ai/fallback: Deterministic hash embeddings and primary/fallback failover
//   - ai/mock: Test doubles for unit testing without external dependencies
//
// # Constructor Return Type Pattern
//
// Public constructors (openai.NewEmbedder, anthropic.NewCompleter, etc.)
// return INTERFACE types to enforce abstraction and prevent accidental
// coupling to concrete implementations.
//
//	embedder, err := openai.NewEmbedder(config)  // returns ai.Embedder
//
// Test utility constructors (mock.NewMockEmbedder, mock.NewMockCompleter)
// return CONCRETE types to enable test assertions and behavior injection via
// the mock's public fields and methods (CallCount, function overrides, Reset).
//
// # Usage Example
//
//	config := ai.NewConfig(ai.WithEmbeddingHost("http://localhost:11434"))
//	embedder, err := openai.NewEmbedder(config)
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	completer, err := openai.NewCompleter(config)
//	provider := ai.NewProviderSet(embedder, map[ai.Tier]ai.Completer{
//	    ai.TierGeneral: completer,
//	})
//	defer provider.Close()
//
//	vector, err := provider.Embedder().EmbedText(ctx, "Hello world")
//	answer, err := provider.CompleterFor(ai.TierGeneral).Complete(ctx, system, user, 1024)
package ai
