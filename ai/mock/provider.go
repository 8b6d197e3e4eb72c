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


package mock

import "github.com/poiesic/docquery/ai"

// MockProvider is a test double for ai.AIProvider.
// It aggregates a mock embedder and one mock completer per tier.
type MockProvider struct {
	embedder   *MockEmbedder
	completers map[ai.Tier]*MockCompleter
}

// NewMockProvider creates a mock provider with a default embedder and a
// single general-tier completer.
//
// Returns ai.AIProvider interface for consistency with production
// constructors. Use GetMockEmbedder()/GetMockCompleter() to access concrete
// types for test assertions.
func NewMockProvider() ai.AIProvider {
	return &MockProvider{
		embedder: NewMockEmbedder(),
		completers: map[ai.Tier]*MockCompleter{
			ai.TierGeneral: NewMockCompleter("mock answer"),
		},
	}
}

// NewMockProviderWithServices creates a mock provider with custom mock
// services. This allows full control over the behavior of each tier.
func NewMockProviderWithServices(embedder *MockEmbedder, completers map[ai.Tier]*MockCompleter) ai.AIProvider {
	return &MockProvider{
		embedder:   embedder,
		completers: completers,
	}
}

// Embedder returns the mock embedder.
func (p *MockProvider) Embedder() ai.Embedder {
	return p.embedder
}

// CompleterFor returns the mock completer for the tier, degrading to the
// general tier like the production provider. Returns nil when none is set.
func (p *MockProvider) CompleterFor(tier ai.Tier) ai.Completer {
	if completer, ok := p.completers[tier]; ok {
		return completer
	}
	if completer, ok := p.completers[ai.TierGeneral]; ok {
		return completer
	}
	return nil
}

// Close is a no-op for mock provider.
func (p *MockProvider) Close() error {
	return nil
}

// GetMockEmbedder returns the concrete mock embedder for test assertions.
func (p *MockProvider) GetMockEmbedder() *MockEmbedder {
	return p.embedder
}

// GetMockCompleter returns the concrete mock completer for the tier, or nil.
func (p *MockProvider) GetMockCompleter(tier ai.Tier) *MockCompleter {
	return p.completers[tier]
}
