package parser

import (
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"
)

// ErrUnsupportedType is returned by Registry.ForFile for extensions that are
// not accepted.
var ErrUnsupportedType = errors.New("unsupported file type")

// Extractor converts raw document bytes into plain text. Implementations
// rewind the reader before use.
type Extractor interface {
	Extract(r io.ReadSeeker) (string, error)
}

// Registry resolves an extractor for a filename among the accepted
// extensions.
type Registry struct {
	accepted map[string]bool

	// PDFFallbackPdftotext enables the pdftotext CLI when the Go PDF library
	// cannot read a file.
	PDFFallbackPdftotext bool
}

// NewRegistry builds a registry accepting the given extensions (".pdf", ".docx", ...).
func NewRegistry(extensions []string, pdfFallback bool) *Registry {
	r := &Registry{
		accepted:             make(map[string]bool, len(extensions)),
		PDFFallbackPdftotext: pdfFallback,
	}
	for _, ext := range extensions {
		r.accepted[strings.ToLower(ext)] = true
	}
	return r
}

// Accepts reports whether filename has an accepted, known extension.
func (r *Registry) Accepts(filename string) bool {
	ext := strings.ToLower(filepath.Ext(filename))
	return r.accepted[ext] && extractorFor(ext, false) != nil
}

// ForFile returns the extractor for filename.
func (r *Registry) ForFile(filename string) (Extractor, error) {
	ext := strings.ToLower(filepath.Ext(filename))
	if !r.accepted[ext] {
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedType, ext)
	}
	e := extractorFor(ext, r.PDFFallbackPdftotext)
	if e == nil {
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedType, ext)
	}
	return e, nil
}

func extractorFor(ext string, pdfFallback bool) Extractor {
	switch ext {
	case ".pdf":
		return &PDFExtractor{FallbackPdftotext: pdfFallback}
	case ".txt":
		return &TextExtractor{}
	case ".md", ".markdown":
		return &MarkdownExtractor{}
	case ".csv":
		return &CSVExtractor{}
	case ".html", ".htm":
		return &HTMLExtractor{}
	case ".docx":
		return &DOCXExtractor{}
	}
	return nil
}

func readAll(r io.ReadSeeker) ([]byte, error) {
	if _, err := r.Seek(0, io.SeekStart); err != nil {
		return nil, fmt.Errorf("rewind: %w", err)
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read document: %w", err)
	}
	return data, nil
}
