package parser

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strings"

	pdflib "github.com/ledongthuc/pdf"
)

// PDFExtractor reads text page by page with ledongthuc/pdf and optionally
// falls back to pdftotext when the library cannot open the file.
type PDFExtractor struct {
	FallbackPdftotext bool
}

func (p *PDFExtractor) Extract(r io.ReadSeeker) (string, error) {
	data, err := readAll(r)
	if err != nil {
		return "", err
	}

	text, err := extractPDFText(data)
	if err != nil && p.FallbackPdftotext {
		var fbErr error
		text, fbErr = extractPdftotext(data)
		if fbErr == nil {
			err = nil
		}
	}
	if err != nil {
		return "", fmt.Errorf("extract pdf text: %w", err)
	}
	return strings.TrimSpace(text), nil
}

func extractPDFText(data []byte) (text string, err error) {
	// ledongthuc/pdf panics on some malformed inputs.
	defer func() {
		if rec := recover(); rec != nil {
			text, err = "", fmt.Errorf("pdf parser panic: %v", rec)
		}
	}()

	reader, err := pdflib.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", err
	}

	var buf strings.Builder
	numPages := reader.NumPage()
	for i := 1; i <= numPages; i++ {
		page := reader.Page(i)
		if page.V.IsNull() {
			continue
		}
		pageText, err := page.GetPlainText(nil)
		if err != nil || pageText == "" {
			continue
		}
		buf.WriteString(pageText)
		buf.WriteString("\n")
	}
	return buf.String(), nil
}

// pdftotext only reads from a path, so the bytes go through a temp file.
func extractPdftotext(data []byte) (string, error) {
	tmp, err := os.CreateTemp("", "seggy-pdf-*.pdf")
	if err != nil {
		return "", fmt.Errorf("create temp file: %w", err)
	}
	tmpPath := tmp.Name()
	defer os.Remove(tmpPath)

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return "", fmt.Errorf("write temp file: %w", err)
	}
	tmp.Close()

	cmd := exec.Command("pdftotext", "-layout", tmpPath, "-")
	out, err := cmd.Output()
	if err != nil {
		return "", fmt.Errorf("pdftotext: %w", err)
	}
	return string(out), nil
}
