package parser

import (
	"bytes"
	"fmt"
	"strings"
	"testing"
)

// buildPDF writes a one-page PDF whose content stream shows text in
// Helvetica. Offsets in the xref table are computed as objects are written.
func buildPDF(text string) []byte {
	content := fmt.Sprintf("BT /F1 12 Tf 72 720 Td (%s) Tj ET", text)
	objects := []string{
		"<< /Type /Catalog /Pages 2 0 R >>",
		"<< /Type /Pages /Kids [3 0 R] /Count 1 >>",
		"<< /Type /Page /Parent 2 0 R /MediaBox [0 0 612 792] /Resources << /Font << /F1 4 0 R >> >> /Contents 5 0 R >>",
		"<< /Type /Font /Subtype /Type1 /BaseFont /Helvetica /Encoding /WinAnsiEncoding >>",
		fmt.Sprintf("<< /Length %d >>\nstream\n%s\nendstream", len(content), content),
	}

	var buf bytes.Buffer
	buf.WriteString("%PDF-1.4\n")
	offsets := make([]int, len(objects))
	for i, obj := range objects {
		offsets[i] = buf.Len()
		fmt.Fprintf(&buf, "%d 0 obj\n%s\nendobj\n", i+1, obj)
	}

	xref := buf.Len()
	fmt.Fprintf(&buf, "xref\n0 %d\n", len(objects)+1)
	buf.WriteString("0000000000 65535 f \n")
	for _, off := range offsets {
		fmt.Fprintf(&buf, "%010d 00000 n \n", off)
	}
	fmt.Fprintf(&buf, "trailer\n<< /Size %d /Root 1 0 R >>\nstartxref\n%d\n%%%%EOF\n", len(objects)+1, xref)
	return buf.Bytes()
}

func TestPDFExtractor_ReadsPageText(t *testing.T) {
	p := &PDFExtractor{}
	got, err := p.Extract(bytes.NewReader(buildPDF("Hello World")))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(got, "Hello World") {
		t.Errorf("expected extracted text to contain %q, got %q", "Hello World", got)
	}
}

func TestPDFExtractor_InvalidInput(t *testing.T) {
	p := &PDFExtractor{}
	_, err := p.Extract(bytes.NewReader([]byte("this is not a pdf")))
	if err == nil {
		t.Fatal("expected error for invalid pdf")
	}
}

func TestPDFExtractor_RewindsReader(t *testing.T) {
	r := bytes.NewReader(buildPDF("Net income"))
	buf := make([]byte, 10)
	if _, err := r.Read(buf); err != nil {
		t.Fatalf("read: %v", err)
	}

	got, err := (&PDFExtractor{}).Extract(r)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(got, "Net income") {
		t.Errorf("expected text after rewind, got %q", got)
	}
}
