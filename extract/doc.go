// Package extract converts uploaded document bytes into plain text.
//
// Extraction is dispatched by MIME type through a Registry. Each Extractor
// declares the MIME types it handles; the registry normalizes incoming types
// (parameters stripped, lowercased) before lookup. Unknown types are a hard
// error so a document can never silently skip extraction.
//
// Built-in extractors cover plain text and Markdown, PDF, and DOCX.
package extract
