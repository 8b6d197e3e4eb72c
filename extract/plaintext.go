package extract

import (
	"bytes"
	"strings"
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// PlainTextExtractor handles plain text and Markdown documents.
type PlainTextExtractor struct{}

// MIMETypes returns the MIME types this extractor handles.
func (PlainTextExtractor) MIMETypes() []string {
	return []string{"text/plain", "text/markdown"}
}

// Extract decodes the bytes as UTF-8 text. A leading byte order mark is
// stripped and invalid sequences are replaced rather than rejected, since
// real uploads are frequently mislabeled Latin-1.
func (PlainTextExtractor) Extract(data []byte) (string, error) {
	data = bytes.TrimPrefix(data, utf8BOM)
	text := strings.ToValidUTF8(string(data), "�")
	return text, nil
}
