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


package docquery

import (
	"io"
	"log/slog"

	"github.com/poiesic/docquery/ai"
	"github.com/poiesic/docquery/ai/anthropic"
	"github.com/poiesic/docquery/ai/fallback"
	"github.com/poiesic/docquery/ai/ollama"
	"github.com/poiesic/docquery/ai/openai"
	"github.com/poiesic/docquery/answer"
	"github.com/poiesic/docquery/chat"
	"github.com/poiesic/docquery/ingestion"
	"github.com/poiesic/docquery/reindex"
	"github.com/poiesic/docquery/search"
	"github.com/poiesic/docquery/storage"
	"github.com/poiesic/docquery/storage/badger"
)

type Database struct {
	backend            *badger.Backend
	documentRepository storage.DocumentRepository
	chunkRepository    storage.ChunkRepository
	chatRepository     storage.ChatRepository
	provider           ai.AIProvider

	// primaryEmbedder is the embedder before failover wrapping. Reindexing
	// uses it directly so a transient outage can never rewrite the corpus
	// with deterministic fallback vectors.
	primaryEmbedder ai.Embedder

	logger *slog.Logger
}

// DatabaseOption configures a Database.
type DatabaseOption func(*databaseOptions)

type databaseOptions struct {
	aiConfig *ai.Config
	provider ai.AIProvider
	inMemory bool
	logger   *slog.Logger
}

// WithAIConfig sets the configuration used to build the AI provider.
func WithAIConfig(config *ai.Config) DatabaseOption {
	return func(o *databaseOptions) {
		if config != nil {
			o.aiConfig = config
		}
	}
}

// WithProvider supplies a ready-made AI provider instead of building one
// from configuration. Reindexing then uses the provider's embedder as-is.
func WithProvider(provider ai.AIProvider) DatabaseOption {
	return func(o *databaseOptions) {
		o.provider = provider
	}
}

// WithInMemory keeps all data in memory, discarding it on Close.
func WithInMemory() DatabaseOption {
	return func(o *databaseOptions) {
		o.inMemory = true
	}
}

// WithLogger sets the logger used by the database and its components.
func WithLogger(logger *slog.Logger) DatabaseOption {
	return func(o *databaseOptions) {
		if logger != nil {
			o.logger = logger
		}
	}
}

func NewDatabase(filePath string, opts ...DatabaseOption) (*Database, error) {
	// Apply options
	options := &databaseOptions{
		aiConfig: ai.DefaultConfig(), // Default if not provided
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(options)
	}

	// Open backend
	backend, err := badger.OpenBackend(filePath, options.inMemory)
	if err != nil {
		return nil, err
	}

	// Create document repository
	documentRepository, err := badger.NewDocumentRepository(backend)
	if err != nil {
		backend.Close()
		return nil, err
	}

	// Create chunk repository
	chunkRepository, err := badger.NewChunkRepository(backend)
	if err != nil {
		documentRepository.Close()
		backend.Close()
		return nil, err
	}

	// Create chat repository
	chatRepository, err := badger.NewChatRepository(backend)
	if err != nil {
		chunkRepository.Close()
		documentRepository.Close()
		backend.Close()
		return nil, err
	}

	// Create AI provider with configured settings
	provider := options.provider
	var primaryEmbedder ai.Embedder
	if provider == nil {
		provider, primaryEmbedder, err = buildProvider(options.aiConfig)
		if err != nil {
			chatRepository.Close()
			chunkRepository.Close()
			documentRepository.Close()
			backend.Close()
			return nil, err
		}
	} else {
		primaryEmbedder = provider.Embedder()
	}

	return &Database{
		backend:            backend,
		documentRepository: documentRepository,
		chunkRepository:    chunkRepository,
		chatRepository:     chatRepository,
		provider:           provider,
		primaryEmbedder:    primaryEmbedder,
		logger:             options.logger,
	}, nil
}

// buildProvider assembles the AI provider from configuration: an embedder
// with deterministic failover plus whichever completion tiers are configured.
// It also returns the pre-failover embedder for reindexing.
func buildProvider(config *ai.Config) (ai.AIProvider, ai.Embedder, error) {
	if err := config.Validate(); err != nil {
		return nil, nil, err
	}

	var primary ai.Embedder
	if config.EmbeddingHost != "" {
		remote, err := openai.NewEmbedder(config)
		if err != nil {
			return nil, nil, err
		}
		primary = remote
	} else {
		// No remote model configured. The deterministic embedder is the
		// corpus's embedding model then, not a degraded stand-in.
		primary = fallback.NewDeterministicEmbedder(config.EmbeddingDimensions)
	}

	completers := make(map[ai.Tier]ai.Completer)
	if config.ChatHost != "" {
		general, err := openai.NewCompleter(config)
		if err != nil {
			return nil, nil, err
		}
		completers[ai.TierGeneral] = general
	}
	if config.AnthropicAPIKey != "" {
		reasoning, err := anthropic.NewCompleter(config)
		if err != nil {
			return nil, nil, err
		}
		completers[ai.TierReasoning] = reasoning
	}
	if config.OllamaHost != "" {
		fast, err := ollama.NewCompleter(config)
		if err != nil {
			return nil, nil, err
		}
		completers[ai.TierFast] = fast
	}

	provider := ai.NewProviderSet(fallback.NewFailoverEmbedder(primary, config), completers)
	return provider, primary, nil
}

func (db *Database) Close() error {
	// Close AI provider first
	if err := db.provider.Close(); err != nil {
		db.logger.Error("error closing AI provider", "err", err)
	}

	// Close repositories
	if err := db.chatRepository.Close(); err != nil {
		db.logger.Error("error closing chat repository", "err", err)
		return err
	}
	if err := db.chunkRepository.Close(); err != nil {
		db.logger.Error("error closing chunk repository", "err", err)
		return err
	}
	if err := db.documentRepository.Close(); err != nil {
		db.logger.Error("error closing document repository", "err", err)
		return err
	}

	// Close backend
	if err := db.backend.Close(); err != nil {
		db.logger.Error("error closing backend storage", "err", err)
		return err
	}
	return nil
}

func (db *Database) DocumentRepository() storage.DocumentRepository {
	return db.documentRepository
}

func (db *Database) ChunkRepository() storage.ChunkRepository {
	return db.chunkRepository
}

func (db *Database) ChatRepository() storage.ChatRepository {
	return db.chatRepository
}

func (db *Database) NewIngestionPipeline(opts ...ingestion.Option) (*ingestion.Pipeline, error) {
	return ingestion.NewPipeline(db.documentRepository, db.chunkRepository, db.provider, opts...)
}

func (db *Database) NewSearcher(opts ...search.Option) (*search.Searcher, error) {
	return search.NewSearcher(db.documentRepository, db.chunkRepository, db.provider, opts...)
}

// NewSynthesizer creates an answer synthesizer backed by a searcher with
// default settings.
func (db *Database) NewSynthesizer(opts ...answer.Option) (*answer.Synthesizer, error) {
	searcher, err := db.NewSearcher()
	if err != nil {
		return nil, err
	}
	return answer.NewSynthesizer(searcher, db.chatRepository, db.provider, opts...)
}

// NewChatManager creates a chat manager with its own synthesizer.
func (db *Database) NewChatManager(opts ...chat.Option) (*chat.Manager, error) {
	synthesizer, err := db.NewSynthesizer()
	if err != nil {
		return nil, err
	}
	return chat.NewManager(db.chatRepository, synthesizer, opts...)
}

// NewReindexer creates a reindexer over the stored documents. It embeds with
// the primary embedder only; pass a nil config for defaults and a nil
// progress writer to discard progress output.
func (db *Database) NewReindexer(config *reindex.Config, progress io.Writer) (*reindex.Reindexer, error) {
	return reindex.NewReindexer(db.documentRepository, db.chunkRepository, db.primaryEmbedder, config, progress)
}
