// Package pdf inspects uploaded PDF documents.
package pdf

import (
	"bytes"
	"errors"
	"fmt"

	lpdf "github.com/ledongthuc/pdf"
)

// Magic is the signature every PDF file starts with
const Magic = "%PDF-"

// ErrNotPDF is returned for content without a PDF signature
var ErrNotPDF = errors.New("content is not a PDF document")

// IsPDF reports whether data carries a PDF signature
func IsPDF(data []byte) bool {
	return bytes.HasPrefix(data, []byte(Magic))
}

// PageCount parses data and returns its number of pages
func PageCount(data []byte) (n int, err error) {
	if !IsPDF(data) {
		return 0, ErrNotPDF
	}

	// The parser panics on some malformed documents.
	defer func() {
		if r := recover(); r != nil {
			n, err = 0, fmt.Errorf("parse pdf: %v", r)
		}
	}()

	doc, err := lpdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return 0, fmt.Errorf("new pdf reader: %w", err)
	}
	return doc.NumPage(), nil
}
