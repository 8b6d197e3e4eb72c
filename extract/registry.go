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


package extract

import (
	"fmt"
	"strings"
)

// Extractor converts the bytes of one document format into plain text.
// Implementations must be thread-safe for concurrent use.
type Extractor interface {
	// Extract converts document bytes into plain text.
	Extract(data []byte) (string, error)

	// MIMETypes returns the normalized MIME types this extractor handles.
	MIMETypes() []string
}

// Registry dispatches extraction by MIME type.
// The registry is immutable after construction and safe for concurrent use.
type Registry struct {
	extractors map[string]Extractor
}

// NewRegistry creates a registry with the built-in extractors for plain
// text, Markdown, PDF and DOCX, plus any additional extractors given.
// Later registrations win on MIME type collisions.
func NewRegistry(extra ...Extractor) *Registry {
	r := &Registry{extractors: make(map[string]Extractor)}

	r.register(&PlainTextExtractor{})
	r.register(&PDFExtractor{})
	r.register(&DOCXExtractor{})
	for _, e := range extra {
		r.register(e)
	}

	return r
}

func (r *Registry) register(e Extractor) {
	for _, mimeType := range e.MIMETypes() {
		r.extractors[NormalizeMIME(mimeType)] = e
	}
}

// Supported reports whether an extractor is registered for the MIME type.
func (r *Registry) Supported(mimeType string) bool {
	_, ok := r.extractors[NormalizeMIME(mimeType)]
	return ok
}

// MIMETypes returns all registered MIME types.
func (r *Registry) MIMETypes() []string {
	types := make([]string, 0, len(r.extractors))
	for mimeType := range r.extractors {
		types = append(types, mimeType)
	}
	return types
}

// Extract converts document bytes into plain text using the extractor
// registered for the MIME type. Unknown types return ErrUnsupportedMIME.
func (r *Registry) Extract(mimeType string, data []byte) (string, error) {
	normalized := NormalizeMIME(mimeType)

	extractor, ok := r.extractors[normalized]
	if !ok {
		return "", fmt.Errorf("%w: %q", ErrUnsupportedMIME, mimeType)
	}

	text, err := extractor.Extract(data)
	if err != nil {
		return "", fmt.Errorf("extracting %q: %w", normalized, err)
	}
	return text, nil
}

// NormalizeMIME strips parameters and lowercases a MIME type, so
// "text/plain; charset=utf-8" matches the extractor registered for
// "text/plain".
func NormalizeMIME(mimeType string) string {
	if i := strings.IndexByte(mimeType, ';'); i >= 0 {
		mimeType = mimeType[:i]
	}
	return strings.ToLower(strings.TrimSpace(mimeType))
}
