// Package fallback keeps embedding generation available when no remote
// embedder is reachable.
//
// DeterministicEmbedder derives a vector from a hash of the input text, so
// identical text always maps to the identical vector without any network
// call. The vectors carry no semantic meaning; they exist so that ingestion
// and search keep functioning, with exact-duplicate text still matching
// perfectly.
//
// FailoverEmbedder wraps a primary embedder and routes to the deterministic
// one whenever the primary fails. It never returns an error, which lets the
// ingestion pipeline treat embedding as an operation that cannot fail.
package fallback
