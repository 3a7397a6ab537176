package parser

import (
	"errors"
	"strings"
	"testing"
)

func TestRegistry_ForFile(t *testing.T) {
	reg := NewRegistry([]string{".pdf", ".txt"}, false)

	tests := []struct {
		name    string
		file    string
		wantErr bool
	}{
		{"pdf", "annual-report.pdf", false},
		{"upper case ext", "Q4.PDF", false},
		{"text", "notes.txt", false},
		{"not accepted", "model.xlsx", true},
		{"known but not accepted", "memo.docx", true},
		{"no extension", "README", true},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			e, err := reg.ForFile(tc.file)
			if tc.wantErr {
				if !errors.Is(err, ErrUnsupportedType) {
					t.Errorf("expected ErrUnsupportedType, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if e == nil {
				t.Fatal("expected extractor, got nil")
			}
		})
	}
}

func TestRegistry_Accepts(t *testing.T) {
	reg := NewRegistry([]string{".pdf", ".xyz"}, false)
	if !reg.Accepts("a.pdf") {
		t.Error("expected a.pdf to be accepted")
	}
	if reg.Accepts("a.txt") {
		t.Error("expected a.txt to be rejected")
	}
	// Accepted in config but no extractor exists for it.
	if reg.Accepts("a.xyz") {
		t.Error("expected a.xyz to be rejected")
	}
}

func TestRegistry_PDFFallbackFlag(t *testing.T) {
	reg := NewRegistry([]string{".pdf"}, true)
	e, err := reg.ForFile("x.pdf")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	pdf, ok := e.(*PDFExtractor)
	if !ok {
		t.Fatalf("expected *PDFExtractor, got %T", e)
	}
	if !pdf.FallbackPdftotext {
		t.Error("expected fallback flag to be carried to the extractor")
	}
}

func TestTextExtractor_Paragraphs(t *testing.T) {
	input := "Balance sheet\nas of Dec 31\n\n\n\nTotal assets: 100   \n\n"
	got, err := (&TextExtractor{}).Extract(strings.NewReader(input))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := "Balance sheet\nas of Dec 31\n\nTotal assets: 100"
	if got != want {
		t.Errorf("expected %q, got %q", want, got)
	}
}

func TestTextExtractor_Whitespace(t *testing.T) {
	got, err := (&TextExtractor{}).Extract(strings.NewReader("  \n\t\n  "))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != "" {
		t.Errorf("expected empty text, got %q", got)
	}
}

func TestCSVExtractor_Rows(t *testing.T) {
	input := "year,revenue,net income\n2022,1000,120\n2023,1150,140\n"
	got, err := (&CSVExtractor{}).Extract(strings.NewReader(input))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	lines := strings.Split(got, "\n")
	if len(lines) != 3 {
		t.Fatalf("expected 3 lines, got %d: %q", len(lines), got)
	}
	if lines[0] != "Columns: year, revenue, net income" {
		t.Errorf("unexpected header line %q", lines[0])
	}
	if lines[2] != "year: 2023, revenue: 1150, net income: 140" {
		t.Errorf("unexpected row %q", lines[2])
	}
}

func TestCSVExtractor_RaggedRows(t *testing.T) {
	input := "a,b\n1,2,3\n"
	got, err := (&CSVExtractor{}).Extract(strings.NewReader(input))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(got, "a: 1, b: 2, 3") {
		t.Errorf("expected extra cell kept without header, got %q", got)
	}
}

func TestMarkdownExtractor_StripsSyntax(t *testing.T) {
	input := "# Income Statement\n\nRevenue **grew** by [12%](http://x).\n\n- Gross margin\n- Opex\n"
	got, err := (&MarkdownExtractor{}).Extract(strings.NewReader(input))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for _, want := range []string{"Income Statement", "Revenue grew by 12%.", "Gross margin", "Opex"} {
		if !strings.Contains(got, want) {
			t.Errorf("expected %q in output, got %q", want, got)
		}
	}
	for _, bad := range []string{"#", "**", "](", "- "} {
		if strings.Contains(got, bad) {
			t.Errorf("expected markdown syntax %q removed, got %q", bad, got)
		}
	}
}

func TestHTMLExtractor_SkipsChrome(t *testing.T) {
	input := `<html><head><title>t</title><style>p{}</style></head><body>
<nav>Home | About</nav>
<h1>Cash Flow</h1>
<p>Operating   cash flow was <b>positive</b>.</p>
<table><tr><th>Year</th><th>Cash</th></tr><tr><td>2023</td><td>42</td></tr></table>
<script>var x = 1;</script>
<footer>Copyright</footer>
</body></html>`
	got, err := (&HTMLExtractor{}).Extract(strings.NewReader(input))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := "Cash Flow\n\nOperating cash flow was positive.\n\nYear | Cash\n\n2023 | 42"
	if got != want {
		t.Errorf("expected %q, got %q", want, got)
	}
}
