package extract

import (
	"archive/zip"
	"bytes"
	"encoding/xml"
	"fmt"
	"io"
	"strings"
)

// DOCXExtractor handles Office Open XML word processing documents.
type DOCXExtractor struct{}

// MIMETypes returns the MIME types this extractor handles.
func (DOCXExtractor) MIMETypes() []string {
	return []string{"application/vnd.openxmlformats-officedocument.wordprocessingml.document"}
}

// documentXML mirrors the parts of word/document.xml the extractor reads.
type documentXML struct {
	Body struct {
		Paragraphs []paragraphXML `xml:"p"`
	} `xml:"body"`
}

type paragraphXML struct {
	Runs []runXML `xml:"r"`
}

type runXML struct {
	Text []textXML `xml:"t"`
}

type textXML struct {
	Content string `xml:",chardata"`
}

// Extract opens the DOCX container and reads the text runs out of
// word/document.xml, joining paragraphs with newlines.
func (DOCXExtractor) Extract(data []byte) (string, error) {
	reader, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("%w: not a zip container: %w", ErrMalformedDocument, err)
	}

	content, err := readArchiveFile(reader, "word/document.xml")
	if err != nil {
		return "", err
	}
	if content == nil {
		return "", fmt.Errorf("%w: missing word/document.xml", ErrMalformedDocument)
	}

	var doc documentXML
	if err := xml.Unmarshal(content, &doc); err != nil {
		return "", fmt.Errorf("%w: %w", ErrMalformedDocument, err)
	}

	var result strings.Builder
	for i, paragraph := range doc.Body.Paragraphs {
		if i > 0 {
			result.WriteString("\n")
		}
		for _, run := range paragraph.Runs {
			for _, text := range run.Text {
				result.WriteString(text.Content)
			}
		}
	}

	text := strings.TrimSpace(result.String())
	if text == "" {
		return "", ErrEmptyDocument
	}
	return text, nil
}

// readArchiveFile returns the named file's contents, or nil when the archive
// has no such file.
func readArchiveFile(reader *zip.Reader, name string) ([]byte, error) {
	for _, file := range reader.File {
		if file.Name != name {
			continue
		}

		rc, err := file.Open()
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrMalformedDocument, err)
		}
		content, err := io.ReadAll(rc)
		rc.Close()
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrMalformedDocument, err)
		}
		return content, nil
	}
	return nil, nil
}
