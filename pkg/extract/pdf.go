// Package extract pulls plain text out of uploaded documents.
package extract

import (
	"bytes"
	"fmt"
	"io"
	"strings"

	"github.com/ledongthuc/pdf"

	"github.com/xhad/polisum/pkg/processor"
)

// PDF reads every page of the document at r and returns the page texts
// joined by newlines. Pages without content are skipped.
func PDF(r io.ReaderAt, size int64) (text string, err error) {
	// The parser panics on some malformed xref tables.
	defer func() {
		if p := recover(); p != nil {
			err = fmt.Errorf("failed to parse pdf: %v", p)
		}
	}()

	reader, err := pdf.NewReader(r, size)
	if err != nil {
		return "", fmt.Errorf("failed to open pdf: %w", err)
	}

	var pages []string
	for i := 1; i <= reader.NumPage(); i++ {
		page := reader.Page(i)
		if page.V.IsNull() {
			continue
		}
		pageText, err := page.GetPlainText(nil)
		if err != nil {
			return "", fmt.Errorf("failed to read page %d: %w", i, err)
		}
		if strings.TrimSpace(pageText) != "" {
			pages = append(pages, pageText)
		}
	}

	return strings.Join(pages, "\n"), nil
}

// PDFBytes extracts and cleans the text of an in-memory PDF.
func PDFBytes(data []byte) (string, error) {
	text, err := PDF(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", err
	}
	return processor.CleanPDFText(text), nil
}

// IsPDFName reports whether filename has a .pdf extension, ignoring case.
func IsPDFName(filename string) bool {
	return strings.HasSuffix(strings.ToLower(filename), ".pdf")
}
