// Package pdftext extracts plain text from PDF documents for question
// generation.
package pdftext

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/ledongthuc/pdf"
)

// ErrNoText means the document opened fine but yielded no extractable
// text (scanned images, empty pages).
var ErrNoText = errors.New("no extractable text in document")

// Extract pulls the plain text out of a PDF, page by page. Pages that fail
// to decode are skipped; the document as a whole fails only when nothing
// at all could be read.
func Extract(r io.ReaderAt, size int64) (string, error) {
	doc, err := pdf.NewReader(r, size)
	if err != nil {
		return "", fmt.Errorf("open pdf: %w", err)
	}

	var buf bytes.Buffer
	for i := 1; i <= doc.NumPage(); i++ {
		page := doc.Page(i)
		if page.V.IsNull() {
			continue
		}
		text, err := page.GetPlainText(nil)
		if err != nil {
			continue
		}
		buf.WriteString(text)
		buf.WriteByte('\n')
	}

	if strings.TrimSpace(buf.String()) == "" {
		return "", ErrNoText
	}
	return buf.String(), nil
}

// ExtractBytes is Extract over an in-memory document.
func ExtractBytes(data []byte) (string, error) {
	return Extract(bytes.NewReader(data), int64(len(data)))
}
