// Package analysis runs financial analysis prompts against an LLM provider:
// a connectivity probe, a single-pass report and per-batch multi-dimension
// passes.
package analysis

import (
	"context"
	"log/slog"
	"regexp"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/pks0715/seggy-the-analyst-v4/internal/batcher"
	"golang.org/x/sync/errgroup"
)

// Dimension is one analysis angle applied to every batch.
type Dimension string

const (
	Ratios   Dimension = "ratios"
	Trends   Dimension = "trends"
	Overview Dimension = "overview"

	// Single marks the result of a single-pass analysis.
	Single Dimension = "single"
)

// Dimensions lists the batch dimensions in report order.
var Dimensions = []Dimension{Ratios, Trends, Overview}

const truncationMarker = "\n\n[Document truncated for analysis...]"

// Result is one successful analysis output.
type Result struct {
	Dimension  Dimension
	BatchIndex int
	Content    string
}

// Failure records a batch that produced no output for a dimension.
type Failure struct {
	Dimension  Dimension
	BatchIndex int
	Err        error
}

// BatchOutcome collects every result and failure of a batch run, in
// dimension order and then batch order.
type BatchOutcome struct {
	Total    int
	Results  []Result
	Failures []Failure
}

// ForDimension returns the successful results of d in batch order.
func (o BatchOutcome) ForDimension(d Dimension) []Result {
	var out []Result
	for _, r := range o.Results {
		if r.Dimension == d {
			out = append(out, r)
		}
	}
	return out
}

// Options tune a Client.
type Options struct {
	ProbeTimeout   time.Duration
	SingleTimeout  time.Duration
	BatchTimeout   time.Duration
	MaxSingleChars int
	MaxRetries     int
	Parallel       bool
}

// Client runs analysis calls through a Completer. Every call waits on the
// shared pacer and carries its own deadline.
type Client struct {
	completer Completer
	pacer     *Pacer
	prompts   *Prompts
	stats     *CallStats
	opts      Options
	log       *slog.Logger

	sleep func(context.Context, time.Duration) error
}

func NewClient(completer Completer, pacer *Pacer, prompts *Prompts, stats *CallStats, opts Options, log *slog.Logger) *Client {
	if pacer == nil {
		pacer = NewPacer(0)
	}
	if prompts == nil {
		prompts = DefaultPrompts()
	}
	if stats == nil {
		stats = NewCallStats(time.Hour)
	}
	if opts.ProbeTimeout <= 0 {
		opts.ProbeTimeout = 30 * time.Second
	}
	if opts.SingleTimeout <= 0 {
		opts.SingleTimeout = 60 * time.Second
	}
	if opts.BatchTimeout <= 0 {
		opts.BatchTimeout = 120 * time.Second
	}
	if opts.MaxSingleChars <= 0 {
		opts.MaxSingleChars = 10000
	}
	return &Client{
		completer: completer,
		pacer:     pacer,
		prompts:   prompts,
		stats:     stats,
		opts:      opts,
		log:       log,
		sleep:     sleepCtx,
	}
}

// Stats exposes the call statistics.
func (c *Client) Stats() *CallStats { return c.stats }

// Probe reports whether the provider answers at all. A response without
// usable content still counts as reachable.
func (c *Client) Probe(ctx context.Context) bool {
	_, err := c.call(ctx, "probe", Request{Prompt: c.prompts.Probe(), MaxTokens: 50}, c.opts.ProbeTimeout)
	if err == nil {
		c.log.Info("provider probe succeeded")
		return true
	}
	if KindOf(err) == KindMalformedResponse {
		c.log.Info("provider probe reachable with unexpected body", "error", err)
		return true
	}
	c.log.Warn("provider probe failed", "error", err)
	return false
}

// AnalyzeSingle runs the five-section report prompt over text, truncated to
// the configured number of characters.
func (c *Client) AnalyzeSingle(ctx context.Context, text string) (string, error) {
	text = truncateRunes(text, c.opts.MaxSingleChars)
	prompt, err := c.prompts.Single(text)
	if err != nil {
		return "", err
	}
	out, err := c.call(ctx, string(Single), Request{Prompt: prompt, MaxTokens: 2000, Temperature: 0.1}, c.opts.SingleTimeout)
	if err != nil {
		c.log.Warn("single analysis failed", "error", err)
		return "", err
	}
	c.log.Info("single analysis complete", "chars", utf8.RuneCountInString(out))
	return out, nil
}

// AnalyzeBatches runs every dimension over every batch. Failed calls are
// recorded and skipped. Dimensions run one after another unless the client
// is parallel; batches within a dimension always run in index order.
func (c *Client) AnalyzeBatches(ctx context.Context, batches []batcher.Batch) BatchOutcome {
	out := BatchOutcome{Total: len(batches)}
	if len(batches) == 0 {
		return out
	}

	parts := make([]BatchOutcome, len(Dimensions))
	if c.opts.Parallel {
		g, gctx := errgroup.WithContext(ctx)
		for i, d := range Dimensions {
			i, d := i, d
			g.Go(func() error {
				parts[i] = c.analyzeDimension(gctx, d, batches)
				return nil
			})
		}
		// Failures are kept per batch in the outcome; no goroutine returns an error.
		_ = g.Wait()
	} else {
		for i, d := range Dimensions {
			parts[i] = c.analyzeDimension(ctx, d, batches)
		}
	}

	for _, p := range parts {
		out.Results = append(out.Results, p.Results...)
		out.Failures = append(out.Failures, p.Failures...)
	}
	c.log.Info("batch analysis complete",
		"batches", len(batches),
		"results", len(out.Results),
		"failures", len(out.Failures),
	)
	return out
}

func (c *Client) analyzeDimension(ctx context.Context, d Dimension, batches []batcher.Batch) BatchOutcome {
	var out BatchOutcome
	total := len(batches)
	for _, b := range batches {
		log := c.log.With("dimension", d, "batch", b.Index+1, "of", total)

		prompt, err := c.prompts.Batch(d, b.Text, b.Index+1, total)
		if err == nil {
			var content string
			content, err = c.call(ctx, string(d), Request{Prompt: prompt, MaxTokens: 1500, Temperature: 0.1}, c.opts.BatchTimeout)
			if err == nil {
				out.Results = append(out.Results, Result{Dimension: d, BatchIndex: b.Index, Content: content})
				log.Info("batch analyzed")
				continue
			}
		}
		log.Warn("batch unavailable", "kind", KindOf(err), "error", err)
		out.Failures = append(out.Failures, Failure{Dimension: d, BatchIndex: b.Index, Err: err})
	}
	return out
}

// call waits for the pacer, runs one request under timeout and retries
// retryable failures up to MaxRetries times.
func (c *Client) call(ctx context.Context, stage string, req Request, timeout time.Duration) (string, error) {
	for attempt := 0; ; attempt++ {
		if err := c.pacer.Wait(ctx); err != nil {
			return "", toCallError(ctx, err)
		}

		callCtx, cancel := context.WithTimeout(ctx, timeout)
		start := time.Now()
		content, err := c.completer.Complete(callCtx, req)
		elapsed := time.Since(start)
		var ce *CallError
		if err != nil {
			ce = toCallError(callCtx, err)
		}
		cancel()

		if ce == nil {
			if content = cleanOutput(content); content != "" {
				c.stats.Record(stage, elapsed, "")
				return content, nil
			}
			ce = &CallError{Kind: KindMalformedResponse, Body: "empty content after cleanup"}
		}
		c.stats.Record(stage, elapsed, ce.Kind)

		if attempt >= c.opts.MaxRetries || !ce.Retryable() {
			return "", ce
		}
		wait := Backoff(attempt)
		c.log.Warn("retryable provider error", "stage", stage, "attempt", attempt, "wait", wait, "error", ce)
		if err := c.sleep(ctx, wait); err != nil {
			return "", ce
		}
	}
}

var fenceRe = regexp.MustCompile("(?s)^```[a-zA-Z]*\\s*(.*?)\\s*```$")

// cleanOutput strips an outer markdown code fence some models wrap their
// answer in. Output holding several fenced blocks is left as is.
func cleanOutput(s string) string {
	s = strings.TrimSpace(s)
	if m := fenceRe.FindStringSubmatch(s); len(m) > 1 && !strings.Contains(m[1], "\n```") && !strings.HasPrefix(m[1], "```") {
		return m[1]
	}
	return s
}

func truncateRunes(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	r := []rune(s)
	return string(r[:n]) + truncationMarker
}
