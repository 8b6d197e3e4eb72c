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
	"io"
	"log/slog"
)

// ProviderSet implements AIProvider over an embedder and a set of completers
// keyed by tier. Missing tiers degrade to the general backend.
type ProviderSet struct {
	embedder   Embedder
	completers map[Tier]Completer
	logger     *slog.Logger
}

// NewProviderSet creates a provider from an embedder and tier-keyed
// completers. The completers map is copied; nil entries are dropped.
//
// Returns AIProvider interface (not *ProviderSet) to enforce abstraction.
func NewProviderSet(embedder Embedder, completers map[Tier]Completer) AIProvider {
	set := make(map[Tier]Completer, len(completers))
	for tier, completer := range completers {
		if completer != nil {
			set[tier] = completer
		}
	}
	return &ProviderSet{
		embedder:   embedder,
		completers: set,
		logger:     slog.Default().With("component", "ai-provider"),
	}
}

// Embedder returns the text embedding service.
func (p *ProviderSet) Embedder() Embedder {
	return p.embedder
}

// CompleterFor returns the completion backend for the given tier.
// A tier with no configured backend degrades to TierGeneral, then to any
// remaining backend in a fixed order. Returns nil when none is configured.
func (p *ProviderSet) CompleterFor(tier Tier) Completer {
	if completer, ok := p.completers[tier]; ok {
		return completer
	}
	if completer, ok := p.completers[TierGeneral]; ok {
		if tier != TierGeneral {
			p.logger.Debug("tier not configured, using general backend", "tier", tier.String())
		}
		return completer
	}
	for _, fallbackTier := range []Tier{TierReasoning, TierFast} {
		if completer, ok := p.completers[fallbackTier]; ok {
			return completer
		}
	}
	return nil
}

// Close releases resources held by the provider's services.
// Services that do not implement io.Closer are skipped.
func (p *ProviderSet) Close() error {
	var errs []error
	if closer, ok := p.embedder.(io.Closer); ok {
		errs = append(errs, closer.Close())
	}
	for _, completer := range p.completers {
		if closer, ok := completer.(io.Closer); ok {
			errs = append(errs, closer.Close())
		}
	}
	return errors.Join(errs...)
}
