// Package pipeline runs one analysis request end to end: extraction,
// batching, provider analysis and report composition.
package pipeline

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/pks0715/seggy-the-analyst-v4/internal/analysis"
	"github.com/pks0715/seggy-the-analyst-v4/internal/batcher"
	"github.com/pks0715/seggy-the-analyst-v4/internal/config"
	"github.com/pks0715/seggy-the-analyst-v4/internal/parser"
	"github.com/pks0715/seggy-the-analyst-v4/internal/report"
)

// Document is one uploaded file.
type Document struct {
	Name string
	Data []byte
}

// ExtractedText is the trimmed, non-empty text of one document.
type ExtractedText struct {
	DocumentName string
	Text         string
}

// Extractors resolves a text extractor for a filename.
type Extractors interface {
	ForFile(filename string) (parser.Extractor, error)
}

// Analyzer is the provider-facing half of the pipeline.
type Analyzer interface {
	Probe(ctx context.Context) bool
	AnalyzeSingle(ctx context.Context, text string) (string, error)
	AnalyzeBatches(ctx context.Context, batches []batcher.Batch) analysis.BatchOutcome
}

type Options struct {
	Mode            string
	MaxBatchSize    int
	SkipUnsupported bool
	// Provider is shown in the report, e.g. "deepseek/deepseek-r1 via openai".
	Provider string
}

// Pipeline is safe for concurrent use; every Run owns its own state.
type Pipeline struct {
	extractors Extractors
	analyzer   Analyzer
	opts       Options
	log        *slog.Logger
	now        func() time.Time
}

func New(extractors Extractors, analyzer Analyzer, opts Options, log *slog.Logger) *Pipeline {
	if opts.Mode == "" {
		opts.Mode = config.ModeBatch
	}
	if opts.MaxBatchSize <= 0 {
		opts.MaxBatchSize = 12000
	}
	return &Pipeline{
		extractors: extractors,
		analyzer:   analyzer,
		opts:       opts,
		log:        log,
		now:        time.Now,
	}
}

// Run processes docs in upload order and returns the report. Document-level
// problems return an error and no provider call is made; provider problems
// yield a fallback report.
func (p *Pipeline) Run(ctx context.Context, docs []Document) (*report.Report, error) {
	// Provider calls run to completion even if the caller goes away.
	ctx = context.WithoutCancel(ctx)
	log := p.log.With("run_id", uuid.NewString())

	if len(docs) == 0 {
		return nil, ErrNoFilesUploaded
	}

	texts, err := p.extractAll(log, docs)
	if err != nil {
		return nil, err
	}

	combined, chars := combine(texts)
	meta := report.Meta{
		Characters: chars,
		Provider:   p.opts.Provider,
	}
	for _, t := range texts {
		meta.Files = append(meta.Files, t.DocumentName)
	}
	log.Info("documents extracted", "files", len(texts), "characters", chars, "combined_length", utf8.RuneCountInString(combined))

	if !p.analyzer.Probe(ctx) {
		log.Warn("provider unreachable, returning fallback report")
		meta.GeneratedAt = p.now()
		return report.Fallback(meta), nil
	}

	var sections []report.Section
	switch p.opts.Mode {
	case config.ModeSingle:
		content, err := p.analyzer.AnalyzeSingle(ctx, combined)
		if err != nil {
			log.Warn("single analysis failed, returning fallback report", "kind", analysis.KindOf(err), "error", err)
			break
		}
		sections = report.SingleSections(content)
	default:
		batches := batcher.Split(combined, p.opts.MaxBatchSize)
		log.Info("text batched", "batches", len(batches), "max_batch_size", p.opts.MaxBatchSize)
		outcome := p.analyzer.AnalyzeBatches(ctx, batches)
		if len(outcome.Results) == 0 {
			log.Warn("no batch produced output, returning fallback report", "failures", len(outcome.Failures))
			break
		}
		sections = report.BatchSections(outcome)
	}

	meta.GeneratedAt = p.now()
	if sections == nil {
		return report.Fallback(meta), nil
	}
	log.Info("report composed", "sections", len(sections))
	return report.Full(meta, sections), nil
}

func (p *Pipeline) extractAll(log *slog.Logger, docs []Document) ([]ExtractedText, error) {
	var texts []ExtractedText
	for _, doc := range docs {
		ex, err := p.extractors.ForFile(doc.Name)
		if err != nil {
			if !errors.Is(err, parser.ErrUnsupportedType) {
				return nil, fmt.Errorf("resolve extractor for %s: %w", doc.Name, err)
			}
			if p.opts.SkipUnsupported {
				log.Info("skipping unsupported file", "filename", doc.Name)
				continue
			}
			return nil, &UnsupportedTypeError{Filename: doc.Name}
		}

		log.Info("processing file", "filename", doc.Name, "bytes", len(doc.Data))
		text, err := ex.Extract(bytes.NewReader(doc.Data))
		if err != nil {
			log.Warn("extraction failed", "filename", doc.Name, "error", err)
			return nil, &ExtractionError{Filename: doc.Name, Err: err}
		}
		text = strings.TrimSpace(text)
		if text == "" {
			log.Warn("extraction produced no text", "filename", doc.Name)
			return nil, &ExtractionError{Filename: doc.Name}
		}
		log.Info("extracted text", "filename", doc.Name, "characters", utf8.RuneCountInString(text))
		texts = append(texts, ExtractedText{DocumentName: doc.Name, Text: text})
	}

	if len(texts) == 0 {
		return nil, ErrNoValidText
	}
	return texts, nil
}

// combine joins texts under "--- name ---" headers and returns the total
// character count of the texts themselves.
func combine(texts []ExtractedText) (string, int) {
	parts := make([]string, 0, len(texts))
	chars := 0
	for _, t := range texts {
		parts = append(parts, "--- "+t.DocumentName+" ---\n"+t.Text)
		chars += utf8.RuneCountInString(t.Text)
	}
	return strings.Join(parts, "\n\n"), chars
}
