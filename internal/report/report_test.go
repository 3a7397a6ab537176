package report

import (
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/pks0715/seggy-the-analyst-v4/internal/analysis"
)

var testMeta = Meta{
	Files:       []string{"q3.pdf", "q4.pdf"},
	Characters:  1234,
	Provider:    "deepseek/deepseek-r1 via openai",
	GeneratedAt: time.Date(2024, 3, 5, 14, 7, 9, 0, time.FixedZone("EST", -5*3600)),
}

func TestFallback(t *testing.T) {
	r := Fallback(testMeta)
	if r.Status != StatusFallback {
		t.Errorf("expected status fallback, got %s", r.Status)
	}
	if r.CharactersProcessed != 1234 {
		t.Errorf("expected 1234 characters, got %d", r.CharactersProcessed)
	}
	if r.Timestamp != "2024-03-05T19:07:09Z" {
		t.Errorf("expected UTC RFC3339 timestamp, got %s", r.Timestamp)
	}
	for _, want := range []string{"FALLBACK ANALYSIS", "AI SERVICE UNAVAILABLE", "- q3.pdf\n- q4.pdf", "Total characters processed: 1234", "deepseek/deepseek-r1 via openai", "03/05/2024, 02:07:09 PM"} {
		if !strings.Contains(r.Content, want) {
			t.Errorf("expected %q in fallback content", want)
		}
	}
}

func TestFull_OmitsEmptySections(t *testing.T) {
	r := Full(testMeta, []Section{
		{Title: "Alpha", Body: "first"},
		{Title: "Empty", Body: "  \n"},
		{Title: "Beta", Body: "second"},
	})
	if r.Status != StatusSuccess {
		t.Errorf("expected status success, got %s", r.Status)
	}
	if strings.Contains(r.Content, "## Empty") {
		t.Error("expected empty section to be omitted")
	}
	a := strings.Index(r.Content, "## Alpha")
	b := strings.Index(r.Content, "## Beta")
	if a < 0 || b < 0 || a > b {
		t.Errorf("expected Alpha before Beta, got positions %d %d", a, b)
	}
}

func TestFull_FilesAreCopied(t *testing.T) {
	files := []string{"a.pdf"}
	r := Full(Meta{Files: files}, nil)
	files[0] = "changed.pdf"
	if r.FilesProcessed[0] != "a.pdf" {
		t.Errorf("expected report to keep its own file list, got %v", r.FilesProcessed)
	}
}

func TestBatchSections_AllDimensions(t *testing.T) {
	outcome := analysis.BatchOutcome{Total: 2}
	for _, d := range analysis.Dimensions {
		for i := 0; i < 2; i++ {
			outcome.Results = append(outcome.Results, analysis.Result{Dimension: d, BatchIndex: i, Content: string(d) + "-" + string(rune('a'+i))})
		}
	}

	r := Full(testMeta, BatchSections(outcome))
	order := []string{"## " + TitleRatios, "## " + TitleTrends, "## " + TitleOverview, "## " + TitleExecutive}
	last := -1
	for _, h := range order {
		idx := strings.Index(r.Content, h)
		if idx < 0 {
			t.Fatalf("expected section %q", h)
		}
		if idx < last {
			t.Errorf("section %q out of order", h)
		}
		last = idx
	}
	if !strings.Contains(r.Content, "ratios-a\n\nratios-b") {
		t.Error("expected ratios batches joined by a blank line in index order")
	}
	if !strings.Contains(r.Content, TitleTrends+": 2 of 2 batches analyzed") {
		t.Errorf("expected per-dimension counts in summary, got %q", r.Content)
	}
}

func TestBatchSections_OnlyTrends(t *testing.T) {
	outcome := analysis.BatchOutcome{
		Total: 2,
		Results: []analysis.Result{
			{Dimension: analysis.Trends, BatchIndex: 0, Content: "growth"},
			{Dimension: analysis.Trends, BatchIndex: 1, Content: "decline"},
		},
		Failures: []analysis.Failure{
			{Dimension: analysis.Ratios, BatchIndex: 0},
			{Dimension: analysis.Ratios, BatchIndex: 1},
			{Dimension: analysis.Overview, BatchIndex: 0},
			{Dimension: analysis.Overview, BatchIndex: 1},
		},
	}

	r := Full(testMeta, BatchSections(outcome))
	if r.Status != StatusSuccess {
		t.Errorf("expected success, got %s", r.Status)
	}
	if !strings.Contains(r.Content, "## "+TitleTrends+"\n\ngrowth\n\ndecline") {
		t.Errorf("expected trends section with both batches, got %q", r.Content)
	}
	for _, absent := range []string{"## " + TitleRatios, "## " + TitleOverview} {
		if strings.Contains(r.Content, absent) {
			t.Errorf("expected %q to be absent", absent)
		}
	}
	if !strings.Contains(r.Content, TitleRatios+": 0 of 2 batches analyzed") {
		t.Error("expected summary to report zero ratios batches")
	}
	if !strings.Contains(r.Content, "4 batch analyses were unavailable") {
		t.Error("expected summary to mention unavailable batches")
	}
}

func TestSingleSections(t *testing.T) {
	r := Full(testMeta, SingleSections("Healthy balance sheet."))
	if !strings.Contains(r.Content, "## "+TitleSingle+"\n\nHealthy balance sheet.") {
		t.Errorf("unexpected content %q", r.Content)
	}
}

func TestReportJSONShape(t *testing.T) {
	data, err := json.Marshal(Fallback(testMeta))
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	var m map[string]any
	if err := json.Unmarshal(data, &m); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	for _, key := range []string{"status", "report_content", "files_processed", "characters_processed", "timestamp"} {
		if _, ok := m[key]; !ok {
			t.Errorf("expected key %q in %s", key, data)
		}
	}
	if len(m) != 5 {
		t.Errorf("expected exactly 5 keys, got %d", len(m))
	}
}

func TestRenderHTML(t *testing.T) {
	out, err := RenderHTML("## Ratios\n\n- current: 1.4\n\n<script>alert(1)</script>\n")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(out, "<h2>Ratios</h2>") || !strings.Contains(out, "<li>current: 1.4</li>") {
		t.Errorf("unexpected html %q", out)
	}
	if strings.Contains(out, "<script>") {
		t.Error("expected raw html to be dropped")
	}
}
