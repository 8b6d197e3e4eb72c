// Package ingestion turns uploaded files into searchable chunks.
//
// The Pipeline type manages the document workflow:
//   - Storing the document record and its retained source bytes
//   - Extracting text according to the declared MIME type
//   - Splitting extracted text into overlapping chunks
//   - Embedding chunks and persisting them
//
// Processing runs asynchronously on a worker pool; uploads return
// immediately with a document in the processing state and callers poll
// for status changes. Failures during processing are recorded on the
// document record, never left as a stuck processing state.
package ingestion
