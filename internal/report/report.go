// Package report composes the due diligence report returned to callers.
package report

import (
	"fmt"
	"strings"
	"time"

	"github.com/pks0715/seggy-the-analyst-v4/internal/analysis"
)

type Status string

const (
	StatusSuccess  Status = "success"
	StatusFallback Status = "fallback"
)

// Report is the terminal artifact of an analysis request.
type Report struct {
	Status              Status   `json:"status"`
	Content             string   `json:"report_content"`
	FilesProcessed      []string `json:"files_processed"`
	CharactersProcessed int      `json:"characters_processed"`
	Timestamp           string   `json:"timestamp"`
}

// Meta describes the documents behind a report.
type Meta struct {
	Files       []string
	Characters  int
	Provider    string
	GeneratedAt time.Time
}

// Section is one titled block of the report. A section with an empty body is
// left out.
type Section struct {
	Title string
	Body  string
}

const displayTime = "01/02/2006, 03:04:05 PM"

// Fallback builds the report returned when no analysis output is available.
func Fallback(meta Meta) *Report {
	provider := meta.Provider
	if provider == "" {
		provider = "the configured provider"
	}

	var b strings.Builder
	b.WriteString("# FINANCIAL DUE DILIGENCE REPORT (FALLBACK ANALYSIS)\n\n")
	fmt.Fprintf(&b, "Total Files Analyzed: %d\n\n", len(meta.Files))
	b.WriteString("**AI SERVICE UNAVAILABLE**\n\n")
	fmt.Fprintf(&b, "The AI analysis service (%s) is currently unavailable.\n\n", provider)
	b.WriteString("Possible reasons:\n\n")
	b.WriteString("- API key authentication failed\n")
	b.WriteString("- The provider is temporarily unavailable\n")
	b.WriteString("- Billing setup required for the provider account\n\n")
	writeDocuments(&b, meta)
	b.WriteString("## Next Steps\n\n")
	b.WriteString("1. Check the provider account billing setup\n")
	b.WriteString("2. Verify the API key is valid and active\n")
	b.WriteString("3. Try again in a few minutes\n\n")
	fmt.Fprintf(&b, "Document processing completed at: %s\n", meta.GeneratedAt.Format(displayTime))

	return build(StatusFallback, b.String(), meta)
}

// Full builds a success report from the sections that have content, in the
// order given.
func Full(meta Meta, sections []Section) *Report {
	var b strings.Builder
	b.WriteString("# FINANCIAL DUE DILIGENCE REPORT\n\n")
	fmt.Fprintf(&b, "Total Files Analyzed: %d\n\n", len(meta.Files))
	fmt.Fprintf(&b, "Analysis Generated: %s\n\n", meta.GeneratedAt.Format(displayTime))
	writeDocuments(&b, meta)

	for _, s := range sections {
		body := strings.TrimSpace(s.Body)
		if body == "" {
			continue
		}
		fmt.Fprintf(&b, "## %s\n\n%s\n\n", s.Title, body)
	}

	b.WriteString("---\n\n")
	if meta.Provider != "" {
		fmt.Fprintf(&b, "Report generated using %s\n", meta.Provider)
	} else {
		b.WriteString("Report generated successfully\n")
	}

	return build(StatusSuccess, b.String(), meta)
}

// Section titles.
const (
	TitleSingle    = "AI Analysis Results"
	TitleRatios    = "Financial Ratios Analysis"
	TitleTrends    = "Financial Trends Analysis"
	TitleOverview  = "Financial Overview"
	TitleExecutive = "Executive Summary"
)

var dimensionTitles = map[analysis.Dimension]string{
	analysis.Ratios:   TitleRatios,
	analysis.Trends:   TitleTrends,
	analysis.Overview: TitleOverview,
}

// BatchSections turns a batch run into report sections: one per dimension
// with its successful outputs in batch order, then an executive summary.
func BatchSections(outcome analysis.BatchOutcome) []Section {
	sections := make([]Section, 0, len(analysis.Dimensions)+1)
	var summary strings.Builder
	fmt.Fprintf(&summary, "Documents were analyzed in %d batch(es).\n\n", outcome.Total)

	for _, d := range analysis.Dimensions {
		results := outcome.ForDimension(d)
		parts := make([]string, 0, len(results))
		for _, r := range results {
			parts = append(parts, strings.TrimSpace(r.Content))
		}
		sections = append(sections, Section{Title: dimensionTitles[d], Body: strings.Join(parts, "\n\n")})
		fmt.Fprintf(&summary, "- %s: %d of %d batches analyzed\n", dimensionTitles[d], len(results), outcome.Total)
	}

	if n := len(outcome.Failures); n > 0 {
		fmt.Fprintf(&summary, "\n%d batch analyses were unavailable and are not included.\n", n)
	}
	sections = append(sections, Section{Title: TitleExecutive, Body: summary.String()})
	return sections
}

// SingleSections wraps a single-pass analysis.
func SingleSections(content string) []Section {
	return []Section{{Title: TitleSingle, Body: content}}
}

func writeDocuments(b *strings.Builder, meta Meta) {
	b.WriteString("## Documents Processed\n\n")
	for _, f := range meta.Files {
		fmt.Fprintf(b, "- %s\n", f)
	}
	b.WriteString("\n## Text Extraction Summary\n\n")
	fmt.Fprintf(b, "- Successfully extracted text from %d documents\n", len(meta.Files))
	fmt.Fprintf(b, "- Total characters processed: %d\n\n", meta.Characters)
}

func build(status Status, content string, meta Meta) *Report {
	files := make([]string, len(meta.Files))
	copy(files, meta.Files)
	return &Report{
		Status:              status,
		Content:             content,
		FilesProcessed:      files,
		CharactersProcessed: meta.Characters,
		Timestamp:           meta.GeneratedAt.UTC().Format(time.RFC3339),
	}
}
