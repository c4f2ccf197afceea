// Package pdfextract extracts plain text and page counts from PDF bytes.
package pdfextract

import (
	"bytes"
	"errors"
	"fmt"
	"strings"

	"github.com/ledongthuc/pdf"
)

// ErrInvalidPDF is returned when the bytes cannot be parsed as a PDF.
var ErrInvalidPDF = errors.New("invalid PDF file")

// Result holds the extracted content of a PDF.
type Result struct {
	Text      string
	PageCount int
}

// Extract parses the given PDF bytes and returns the concatenated plain
// text of all pages together with the page count. Pages whose text cannot
// be decoded are skipped rather than failing the whole document; scanned
// manuals often contain image-only pages.
func Extract(data []byte) (*Result, error) {
	if len(data) == 0 {
		return nil, ErrInvalidPDF
	}

	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidPDF, err)
	}

	pageCount := reader.NumPage()

	var sb strings.Builder
	fonts := make(map[string]*pdf.Font)
	for i := 1; i <= pageCount; i++ {
		page := reader.Page(i)
		if page.V.IsNull() {
			continue
		}
		text, err := page.GetPlainText(fonts)
		if err != nil {
			continue
		}
		sb.WriteString(text)
	}

	return &Result{
		Text:      sb.String(),
		PageCount: pageCount,
	}, nil
}

// IsPDF reports whether the bytes carry the PDF magic header.
func IsPDF(data []byte) bool {
	return len(data) >= 5 && bytes.HasPrefix(data, []byte("%PDF-"))
}
