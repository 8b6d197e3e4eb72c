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


package main

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/poiesic/docquery"
	"github.com/poiesic/docquery/ai"
	"github.com/poiesic/docquery/core"
	"github.com/poiesic/docquery/ingestion"
	"github.com/poiesic/docquery/reindex"
	"github.com/poiesic/docquery/search"
	"github.com/poiesic/docquery/storage"
	"github.com/urfave/cli/v2"
)

func main() {
	if err := newApp().Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

func newApp() *cli.App {
	return &cli.App{
		Name:  "docquery",
		Usage: "Ask questions against your own documents",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "db",
				Aliases: []string{"d"},
				Usage:   "Path to BadgerDB database directory",
				Value:   "./docquery_db",
				EnvVars: []string{"DOCQUERY_DB"},
			},
			&cli.StringFlag{
				Name:    "log-level",
				Aliases: []string{"l"},
				Usage:   "Set logging level (debug, info, warn, error)",
				Value:   "info",
			},
			&cli.StringFlag{
				Name:    "owner",
				Aliases: []string{"o"},
				Usage:   "Owner the command acts for",
				Value:   "local",
				EnvVars: []string{"DOCQUERY_OWNER"},
			},
			&cli.StringFlag{
				Name:    "ai-host",
				Usage:   "OpenAI-compatible host URL for embeddings and chat",
				EnvVars: []string{"DOCQUERY_AI_HOST"},
			},
			&cli.StringFlag{
				Name:    "embedding-model",
				Usage:   "Embedding model name",
				EnvVars: []string{"DOCQUERY_EMBEDDING_MODEL"},
			},
			&cli.StringFlag{
				Name:    "chat-model",
				Usage:   "General-tier chat model name",
				EnvVars: []string{"DOCQUERY_CHAT_MODEL"},
			},
			&cli.StringFlag{
				Name:    "anthropic-api-key",
				Usage:   "Anthropic API key; enables the reasoning tier",
				EnvVars: []string{"ANTHROPIC_API_KEY"},
			},
			&cli.StringFlag{
				Name:    "anthropic-model",
				Usage:   "Anthropic model name for the reasoning tier",
				EnvVars: []string{"DOCQUERY_ANTHROPIC_MODEL"},
			},
			&cli.StringFlag{
				Name:    "ollama-host",
				Usage:   "Native Ollama host URL; enables the fast tier",
				EnvVars: []string{"OLLAMA_HOST"},
			},
			&cli.StringFlag{
				Name:    "ollama-model",
				Usage:   "Ollama model name for the fast tier",
				EnvVars: []string{"DOCQUERY_OLLAMA_MODEL"},
			},
		},
		Before: setupLogger,
		Commands: []*cli.Command{
			{
				Name:      "add",
				Usage:     "Ingest one or more files as documents",
				ArgsUsage: "FILE [FILE...]",
				Action:    addCommand,
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:  "title",
						Usage: "Document title (single file only; defaults to the filename)",
					},
					&cli.BoolFlag{
						Name:  "wait",
						Usage: "Wait until processing settles before returning",
					},
					&cli.DurationFlag{
						Name:  "timeout",
						Usage: "How long to wait for processing to settle",
						Value: 2 * time.Minute,
					},
				},
			},
			{
				Name:   "list",
				Usage:  "List documents",
				Action: listCommand,
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:  "all",
						Usage: "List every document regardless of owner",
					},
				},
			},
			{
				Name:      "status",
				Usage:     "Show the processing state of documents",
				ArgsUsage: "ID [ID...]",
				Action:    statusCommand,
			},
			{
				Name:      "delete",
				Usage:     "Delete documents with their chunks and retained bytes",
				ArgsUsage: "ID [ID...]",
				Action:    deleteCommand,
			},
			{
				Name:      "reprocess",
				Usage:     "Re-run extraction, chunking and embedding from retained bytes",
				ArgsUsage: "ID [ID...]",
				Action:    reprocessCommand,
			},
			{
				Name:   "reindex",
				Usage:  "Reembed the chunks of every ready document",
				Action: reindexCommand,
				Flags: []cli.Flag{
					&cli.IntFlag{
						Name:  "batch-size",
						Usage: "Number of chunks to embed in each call",
						Value: 100,
					},
					&cli.IntFlag{
						Name:  "report-interval",
						Usage: "Report progress every N documents",
						Value: 10,
					},
					&cli.IntFlag{
						Name:  "max-retries",
						Usage: "Maximum retry attempts for failed operations",
						Value: 3,
					},
					&cli.DurationFlag{
						Name:  "retry-delay",
						Usage: "Base delay for exponential backoff",
						Value: 1 * time.Second,
					},
				},
			},
			{
				Name:      "search",
				Usage:     "Rank chunks against a query without answering",
				ArgsUsage: "QUERY...",
				Action:    searchCommand,
				Flags: []cli.Flag{
					&cli.IntFlag{
						Name:  "top",
						Usage: "Maximum number of hits to return",
						Value: search.DefaultMaxHits,
					},
					&cli.Float64Flag{
						Name:  "min-similarity",
						Usage: "Drop hits below this cosine similarity",
					},
				},
			},
			{
				Name:      "ask",
				Usage:     "Ask a question against your ready documents",
				ArgsUsage: "QUESTION...",
				Action:    askCommand,
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:    "session",
						Aliases: []string{"s"},
						Usage:   "Session token to continue; empty starts a new session",
					},
				},
			},
			{
				Name:   "history",
				Usage:  "Print the transcript of a chat session",
				Action: historyCommand,
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "session",
						Aliases:  []string{"s"},
						Usage:    "Session token",
						Required: true,
					},
					&cli.IntFlag{
						Name:  "limit",
						Usage: "Only the N most recent messages (0 means all)",
					},
				},
			},
			{
				Name:   "sessions",
				Usage:  "List chat sessions of the owner",
				Action: sessionsCommand,
			},
		},
	}
}

// aiConfigFromFlags builds the provider configuration, keeping defaults for
// anything the caller leaves unset.
func aiConfigFromFlags(c *cli.Context) *ai.Config {
	var opts []ai.ConfigOption
	if host := c.String("ai-host"); host != "" {
		opts = append(opts, ai.WithHost(host))
	}
	if model := c.String("embedding-model"); model != "" {
		opts = append(opts, ai.WithEmbeddingModel(model))
	}
	if model := c.String("chat-model"); model != "" {
		opts = append(opts, ai.WithChatModel(model))
	}
	if key := c.String("anthropic-api-key"); key != "" {
		opts = append(opts, ai.WithAnthropic(key, c.String("anthropic-model")))
	}
	if host := c.String("ollama-host"); host != "" {
		opts = append(opts, ai.WithOllama(host, c.String("ollama-model")))
	}
	return ai.NewConfig(opts...)
}

func openDatabase(c *cli.Context) (*docquery.Database, error) {
	db, err := docquery.NewDatabase(c.String("db"), docquery.WithAIConfig(aiConfigFromFlags(c)))
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	return db, nil
}

// extensionMIME maps known file extensions to the MIME types the extractor
// registry understands. Anything else is passed through as octet-stream and
// recorded as a failed document rather than guessed at.
var extensionMIME = map[string]string{
	".txt":      "text/plain",
	".text":     "text/plain",
	".md":       "text/markdown",
	".markdown": "text/markdown",
	".pdf":      "application/pdf",
	".docx":     "application/vnd.openxmlformats-officedocument.wordprocessingml.document",
}

func mimeTypeFor(path string) string {
	if mimeType, ok := extensionMIME[strings.ToLower(filepath.Ext(path))]; ok {
		return mimeType
	}
	return "application/octet-stream"
}

func parseDocumentId(arg string) (core.ID, error) {
	id, err := strconv.ParseUint(arg, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid document id %q", arg)
	}
	return core.ID(id), nil
}

func waitForDocument(ctx context.Context, repo storage.DocumentRepository, id core.ID, timeout time.Duration) (*core.Document, error) {
	deadline := time.Now().Add(timeout)
	for {
		doc, err := repo.GetDocument(ctx, id)
		if err != nil {
			return nil, err
		}
		if doc.Status != core.StatusProcessing {
			return doc, nil
		}
		if time.Now().After(deadline) {
			return nil, fmt.Errorf("document %d still processing after %v", id, timeout)
		}
		time.Sleep(200 * time.Millisecond)
	}
}

func addCommand(c *cli.Context) error {
	if c.NArg() == 0 {
		return fmt.Errorf("at least one file is required")
	}
	if c.String("title") != "" && c.NArg() > 1 {
		return fmt.Errorf("--title only applies to a single file")
	}

	db, err := openDatabase(c)
	if err != nil {
		return err
	}
	defer db.Close()

	pipeline, err := db.NewIngestionPipeline()
	if err != nil {
		return err
	}
	defer pipeline.Release()

	ctx := context.Background()
	owner := c.String("owner")

	var ids []core.ID
	for _, path := range c.Args().Slice() {
		data, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("failed to read %s: %w", path, err)
		}

		doc, err := pipeline.IngestDocument(ctx, ingestion.IngestRequest{
			OwnerId:  owner,
			Filename: filepath.Base(path),
			Title:    c.String("title"),
			MimeType: mimeTypeFor(path),
			Data:     data,
		})
		if err != nil {
			return fmt.Errorf("failed to ingest %s: %w", path, err)
		}

		fmt.Printf("added %d  %s (%s)\n", doc.Id, doc.Filename, doc.Status)
		ids = append(ids, doc.Id)
	}

	if !c.Bool("wait") {
		return nil
	}

	for _, id := range ids {
		doc, err := waitForDocument(ctx, db.DocumentRepository(), id, c.Duration("timeout"))
		if err != nil {
			return err
		}
		if doc.Status == core.StatusFailed {
			fmt.Printf("document %d failed: %s\n", doc.Id, doc.ErrorMessage)
		} else {
			fmt.Printf("document %d is %s\n", doc.Id, doc.Status)
		}
	}
	return nil
}

func listCommand(c *cli.Context) error {
	db, err := openDatabase(c)
	if err != nil {
		return err
	}
	defer db.Close()

	ctx := context.Background()

	var docs []*core.Document
	if c.Bool("all") {
		docs, err = db.DocumentRepository().ListDocuments(ctx)
	} else {
		docs, err = db.DocumentRepository().GetDocumentsByOwner(ctx, c.String("owner"))
	}
	if err != nil {
		return err
	}

	if len(docs) == 0 {
		fmt.Println("no documents")
		return nil
	}

	for _, doc := range docs {
		fmt.Printf("%-8d %-10s %9d  %s\n", doc.Id, doc.Status, doc.Size, doc.Title)
	}
	return nil
}

func statusCommand(c *cli.Context) error {
	if c.NArg() == 0 {
		return fmt.Errorf("at least one document id is required")
	}

	db, err := openDatabase(c)
	if err != nil {
		return err
	}
	defer db.Close()

	ctx := context.Background()

	for _, arg := range c.Args().Slice() {
		id, err := parseDocumentId(arg)
		if err != nil {
			return err
		}

		doc, err := db.DocumentRepository().GetDocument(ctx, id)
		if err != nil {
			return fmt.Errorf("document %s: %w", arg, err)
		}

		chunks, err := db.ChunkRepository().GetChunksByDocument(ctx, doc.Id)
		if err != nil {
			return err
		}
		embedded := 0
		for _, chunk := range chunks {
			if chunk.Embedding != nil {
				embedded++
			}
		}

		fmt.Printf("document %d\n", doc.Id)
		fmt.Printf("  title:     %s\n", doc.Title)
		fmt.Printf("  filename:  %s\n", doc.Filename)
		fmt.Printf("  mime:      %s\n", doc.MimeType)
		fmt.Printf("  owner:     %s\n", doc.OwnerId)
		fmt.Printf("  size:      %d bytes\n", doc.Size)
		fmt.Printf("  status:    %s\n", doc.Status)
		if doc.ErrorMessage != "" {
			fmt.Printf("  error:     %s\n", doc.ErrorMessage)
		}
		fmt.Printf("  chunks:    %d (%d embedded)\n", len(chunks), embedded)
		fmt.Printf("  uploaded:  %s\n", doc.UploadedAt.Format(time.RFC3339))
		if !doc.ProcessedAt.IsZero() {
			fmt.Printf("  processed: %s\n", doc.ProcessedAt.Format(time.RFC3339))
		}
	}
	return nil
}

func deleteCommand(c *cli.Context) error {
	if c.NArg() == 0 {
		return fmt.Errorf("at least one document id is required")
	}

	db, err := openDatabase(c)
	if err != nil {
		return err
	}
	defer db.Close()

	ctx := context.Background()

	for _, arg := range c.Args().Slice() {
		id, err := parseDocumentId(arg)
		if err != nil {
			return err
		}
		if err := db.DocumentRepository().DeleteDocument(ctx, id); err != nil {
			return fmt.Errorf("document %s: %w", arg, err)
		}
		fmt.Printf("deleted %d\n", id)
	}
	return nil
}

func reprocessCommand(c *cli.Context) error {
	if c.NArg() == 0 {
		return fmt.Errorf("at least one document id is required")
	}

	db, err := openDatabase(c)
	if err != nil {
		return err
	}
	defer db.Close()

	pipeline, err := db.NewIngestionPipeline()
	if err != nil {
		return err
	}
	defer pipeline.Release()

	ctx := context.Background()

	for _, arg := range c.Args().Slice() {
		id, err := parseDocumentId(arg)
		if err != nil {
			return err
		}
		if err := pipeline.Reprocess(ctx, id); err != nil {
			return fmt.Errorf("reprocess %d: %w", id, err)
		}

		doc, err := db.DocumentRepository().GetDocument(ctx, id)
		if err != nil {
			return err
		}
		fmt.Printf("reprocessed %d (%s)\n", doc.Id, doc.Status)
	}
	return nil
}

func reindexCommand(c *cli.Context) error {
	ctx := context.Background()

	// Create reindexing config
	config := &reindex.Config{
		BatchSize:      c.Int("batch-size"),
		ReportInterval: c.Int("report-interval"),
		MaxRetries:     c.Int("max-retries"),
		RetryDelay:     c.Duration("retry-delay"),
	}

	// Validate config
	if config.BatchSize <= 0 {
		return fmt.Errorf("batch-size must be greater than 0")
	}
	if config.ReportInterval <= 0 {
		return fmt.Errorf("report-interval must be greater than 0")
	}
	if config.MaxRetries <= 0 {
		return fmt.Errorf("max-retries must be greater than 0")
	}

	db, err := openDatabase(c)
	if err != nil {
		return err
	}
	defer db.Close()

	reindexer, err := db.NewReindexer(config, os.Stderr)
	if err != nil {
		return err
	}

	fmt.Fprintf(os.Stderr, "Database: %s\n", c.String("db"))
	fmt.Fprintln(os.Stderr)

	summary, err := reindexer.Run(ctx)
	if err != nil {
		return fmt.Errorf("reindexing failed: %w", err)
	}

	fmt.Printf("reindexed %d documents (%d chunks)\n", summary.Documents, summary.Chunks)
	if summary.FailedDocuments > 0 {
		return fmt.Errorf("%d documents kept their old vectors after repeated embedding failures", summary.FailedDocuments)
	}
	return nil
}

// printingMonitor narrates the search stages on stderr.
type printingMonitor struct {
	skipped int
}

func (m *printingMonitor) Start(query string, candidateCount int) {
	fmt.Fprintf(os.Stderr, "searching %d candidates for %q\n", candidateCount, query)
}

func (m *printingMonitor) AfterQueryEmbedding(dimensions int) {
	fmt.Fprintf(os.Stderr, "query embedded (%d dimensions)\n", dimensions)
}

func (m *printingMonitor) SkippedCandidate(_ search.Candidate) {
	m.skipped++
}

func (m *printingMonitor) Finish(hits []search.Hit) {
	if m.skipped > 0 {
		fmt.Fprintf(os.Stderr, "skipped %d candidates without embeddings\n", m.skipped)
	}
	fmt.Fprintf(os.Stderr, "ranked %d hits\n", len(hits))
}

func searchCommand(c *cli.Context) error {
	query := strings.TrimSpace(strings.Join(c.Args().Slice(), " "))
	if query == "" {
		return fmt.Errorf("a query is required")
	}

	db, err := openDatabase(c)
	if err != nil {
		return err
	}
	defer db.Close()

	searcher, err := db.NewSearcher()
	if err != nil {
		return err
	}

	ctx := context.Background()
	corpus, err := searcher.LoadCorpus(ctx, c.String("owner"))
	if err != nil {
		return err
	}

	hits, err := searcher.SearchWithMonitor(ctx, query, corpus.Candidates, c.Int("top"), &printingMonitor{})
	if err != nil {
		return err
	}
	if min := c.Float64("min-similarity"); min > 0 {
		hits = search.FilterBySimilarity(hits, min)
	}

	if len(hits) == 0 {
		fmt.Println("no hits")
		return nil
	}

	for i, hit := range hits {
		title := ""
		if doc := corpus.Documents[hit.DocumentId]; doc != nil {
			title = doc.Title
		}
		fmt.Printf("%d. [%.3f] %s (document %d, chunk %d)\n   %s\n",
			i+1, hit.Similarity, title, hit.DocumentId, hit.Id, firstLine(hit.Content))
	}
	return nil
}

// firstLine truncates chunk content for one-line display.
func firstLine(content string) string {
	if i := strings.IndexByte(content, '\n'); i >= 0 {
		content = content[:i]
	}
	runes := []rune(content)
	if len(runes) > 160 {
		return string(runes[:160]) + "..."
	}
	return content
}

func askCommand(c *cli.Context) error {
	question := strings.TrimSpace(strings.Join(c.Args().Slice(), " "))
	if question == "" {
		return fmt.Errorf("a question is required")
	}

	db, err := openDatabase(c)
	if err != nil {
		return err
	}
	defer db.Close()

	manager, err := db.NewChatManager()
	if err != nil {
		return err
	}

	response, err := manager.Ask(context.Background(), c.String("owner"), c.String("session"), question)
	if err != nil {
		return err
	}

	fmt.Println(response.Answer.Content)
	if len(response.Answer.Sources) > 0 {
		fmt.Println()
		fmt.Println("Sources:")
		for i, source := range response.Answer.Sources {
			fmt.Printf("  [%d] %s (%d%%)\n", i+1, source.DocumentTitle, source.Confidence)
		}
	}
	fmt.Println()
	fmt.Printf("Session: %s\n", response.SessionToken)
	return nil
}

func historyCommand(c *cli.Context) error {
	db, err := openDatabase(c)
	if err != nil {
		return err
	}
	defer db.Close()

	manager, err := db.NewChatManager()
	if err != nil {
		return err
	}

	ctx := context.Background()
	owner := c.String("owner")
	token := c.String("session")

	var messages []*core.ChatMessage
	if limit := c.Int("limit"); limit > 0 {
		messages, err = manager.Recent(ctx, owner, token, limit)
	} else {
		messages, err = manager.History(ctx, owner, token)
	}
	if err != nil {
		return err
	}

	for _, message := range messages {
		fmt.Printf("[%s] %s\n", message.Role, message.Content)
		for i, source := range message.Sources {
			fmt.Printf("    [%d] %s (%d%%)\n", i+1, source.DocumentTitle, source.Confidence)
		}
	}
	return nil
}

func sessionsCommand(c *cli.Context) error {
	db, err := openDatabase(c)
	if err != nil {
		return err
	}
	defer db.Close()

	manager, err := db.NewChatManager()
	if err != nil {
		return err
	}

	sessions, err := manager.Sessions(context.Background(), c.String("owner"))
	if err != nil {
		return err
	}

	if len(sessions) == 0 {
		fmt.Println("no sessions")
		return nil
	}

	for _, session := range sessions {
		fmt.Printf("%s  %s  (updated %s)\n",
			session.Token, session.Title, session.UpdatedAt.Format("2006-01-02 15:04"))
	}
	return nil
}

func setupLogger(c *cli.Context) error {
	// Get log level from flag and normalize to lowercase
	levelStr := strings.ToLower(c.String("log-level"))

	// Map string to slog.Level
	var level slog.Level
	switch levelStr {
	case "debug":
		level = slog.LevelDebug
	case "info":
		level = slog.LevelInfo
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		return fmt.Errorf("invalid log level %q: must be one of debug, info, warn, error", levelStr)
	}

	// Configure slog with the specified level
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	}))
	slog.SetDefault(logger)

	return nil
}
