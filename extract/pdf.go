package extract

import (
	"bytes"
	"fmt"
	"io"

	"github.com/ledongthuc/pdf"
)

// PDFExtractor handles PDF documents.
type PDFExtractor struct{}

// MIMETypes returns the MIME types this extractor handles.
func (PDFExtractor) MIMETypes() []string {
	return []string{"application/pdf"}
}

// Extract pulls the plain text layer out of a PDF. Scanned PDFs without a
// text layer extract as empty, which surfaces as ErrEmptyDocument so the
// caller can report the document as failed rather than silently indexing
// nothing.
func (PDFExtractor) Extract(data []byte) (string, error) {
	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrMalformedDocument, err)
	}

	plain, err := reader.GetPlainText()
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrMalformedDocument, err)
	}

	text, err := io.ReadAll(plain)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrMalformedDocument, err)
	}

	if len(bytes.TrimSpace(text)) == 0 {
		return "", ErrEmptyDocument
	}
	return string(text), nil
}
