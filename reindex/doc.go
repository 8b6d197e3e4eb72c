// Package reindex rebuilds chunk embeddings across the whole store,
// typically after switching embedding models.
//
// The reindexer walks every ready document and reembeds its chunks with
// the primary embedder, batching the embedding calls and retrying them
// with exponential backoff. A document's chunks are updated all at once,
// so a document that cannot be reembedded keeps its old vectors intact
// and is reported as failed rather than left half-rewritten. Callers
// must pass a primary embedder, never the failover wrapper: silently
// rewriting a corpus with deterministic fallback vectors would poison
// search without anyone noticing.
package reindex
