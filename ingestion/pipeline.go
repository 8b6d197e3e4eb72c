package ingestion

import (
	"context"
	"log/slog"
	"runtime"
	"time"

	"github.com/panjf2000/ants/v2"
	"github.com/poiesic/docquery/ai"
	"github.com/poiesic/docquery/core"
	"github.com/poiesic/docquery/extract"
	"github.com/poiesic/docquery/storage"
)

// DefaultEmbedTimeout bounds how long a single embedding batch may take.
const DefaultEmbedTimeout = 2 * time.Minute

// IngestRequest carries an uploaded file into the pipeline.
type IngestRequest struct {
	OwnerId  string
	Filename string
	Title    string
	MimeType string
	Data     []byte
}

// Pipeline accepts uploads and processes them in the background.
type Pipeline struct {
	documentRepository storage.DocumentRepository
	chunkRepository    storage.ChunkRepository
	registry           *extract.Registry
	chunker            *Chunker
	embedTimeout       time.Duration
	pool               *ants.Pool
	processor          *processor
	logger             *slog.Logger
}

type Option func(*Pipeline) error

// WithPoolSize sets the number of background processing workers.
func WithPoolSize(size int) Option {
	return func(p *Pipeline) error {
		if size < 1 {
			size = 1
		}
		pool, err := ants.NewPool(size)
		if err != nil {
			return err
		}
		p.pool.Release()
		p.pool = pool
		return nil
	}
}

func WithLogger(logger *slog.Logger) Option {
	return func(p *Pipeline) error {
		if logger == nil {
			logger = slog.Default()
		}
		p.logger = logger
		return nil
	}
}

// WithChunker replaces the default text chunker.
func WithChunker(chunker *Chunker) Option {
	return func(p *Pipeline) error {
		if chunker != nil {
			p.chunker = chunker
		}
		return nil
	}
}

// WithRegistry replaces the default extractor registry.
func WithRegistry(registry *extract.Registry) Option {
	return func(p *Pipeline) error {
		if registry != nil {
			p.registry = registry
		}
		return nil
	}
}

// WithEmbedTimeout bounds each embedding batch.
func WithEmbedTimeout(timeout time.Duration) Option {
	return func(p *Pipeline) error {
		if timeout > 0 {
			p.embedTimeout = timeout
		}
		return nil
	}
}

func NewPipeline(
	documentRepository storage.DocumentRepository,
	chunkRepository storage.ChunkRepository,
	provider ai.AIProvider,
	opts ...Option,
) (*Pipeline, error) {
	if documentRepository == nil {
		return nil, ErrDocumentRepositoryRequired
	}
	if chunkRepository == nil {
		return nil, ErrChunkRepositoryRequired
	}
	if provider == nil {
		return nil, ErrAIProviderRequired
	}

	poolSize := runtime.NumCPU() / 2
	if poolSize < 1 {
		poolSize = 1
	}
	pool, err := ants.NewPool(poolSize)
	if err != nil {
		return nil, err
	}

	chunker, err := NewChunker()
	if err != nil {
		pool.Release()
		return nil, err
	}

	p := &Pipeline{
		documentRepository: documentRepository,
		chunkRepository:    chunkRepository,
		registry:           extract.NewRegistry(),
		chunker:            chunker,
		embedTimeout:       DefaultEmbedTimeout,
		pool:               pool,
		logger:             slog.Default(),
	}

	for _, opt := range opts {
		if err := opt(p); err != nil {
			p.pool.Release()
			return nil, err
		}
	}

	p.processor = newProcessor(
		p.documentRepository,
		p.chunkRepository,
		p.registry,
		p.chunker,
		provider.Embedder(),
		p.embedTimeout,
		p.logger,
	)

	return p, nil
}

// IngestDocument records the upload and schedules processing. The
// returned document is in the processing state; its status settles to
// ready or failed once the background worker finishes.
func (p *Pipeline) IngestDocument(ctx context.Context, request IngestRequest) (*core.Document, error) {
	if len(request.Data) == 0 {
		return nil, ErrEmptyUpload
	}

	title := request.Title
	if title == "" {
		title = request.Filename
	}

	doc := &core.Document{
		OwnerId:     request.OwnerId,
		Title:       title,
		Filename:    request.Filename,
		MimeType:    request.MimeType,
		Size:        int64(len(request.Data)),
		Status:      core.StatusProcessing,
		Fingerprint: core.IDFromContent(request.Data),
	}

	doc, err := p.documentRepository.AddDocument(ctx, doc)
	if err != nil {
		return nil, err
	}

	if err := p.documentRepository.PutDocumentData(ctx, doc.Id, request.Data); err != nil {
		return nil, p.processor.fail(ctx, doc, err)
	}

	data := request.Data
	documentId := doc.Id
	if err := p.pool.Submit(func() {
		if err := p.processor.Process(context.Background(), documentId, data); err != nil {
			p.logger.Error("error processing document", "documentId", documentId, "err", err)
		}
	}); err != nil {
		return nil, p.processor.fail(ctx, doc, err)
	}

	return doc, nil
}

// Reprocess synchronously reruns processing for a stored document.
func (p *Pipeline) Reprocess(ctx context.Context, documentId core.ID) error {
	return p.processor.Reprocess(ctx, documentId)
}

// Release releases the worker pool. The pipeline should not be used
// after calling Release.
func (p *Pipeline) Release() {
	p.pool.Release()
}
