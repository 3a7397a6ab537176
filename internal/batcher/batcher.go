// Package batcher splits long extracted text into size-bounded batches that
// fit a provider's per-request limit.
package batcher

import (
	"strings"
	"unicode/utf8"
)

// Batch is one contiguous, word-aligned slice of the combined text.
type Batch struct {
	Index int
	Text  string
}

// Size is the accounted size of the batch: each word's length in runes plus
// one separator per word.
func (b Batch) Size() int {
	return Size(strings.Fields(b.Text))
}

// Size sums rune length plus one separator for every word.
func Size(words []string) int {
	n := 0
	for _, w := range words {
		n += wordCost(w)
	}
	return n
}

// Split breaks text into ordered batches on whitespace boundaries. A batch is
// closed when the next word would push it over maxSize. A word longer than
// maxSize is never cut; it gets a batch of its own. Empty input yields no
// batches.
func Split(text string, maxSize int) []Batch {
	words := strings.Fields(text)
	if len(words) == 0 {
		return nil
	}

	var batches []Batch
	var current []string
	currentSize := 0

	flush := func() {
		batches = append(batches, Batch{
			Index: len(batches),
			Text:  strings.Join(current, " "),
		})
		current = current[:0]
		currentSize = 0
	}

	for _, w := range words {
		cost := wordCost(w)
		if currentSize+cost > maxSize && len(current) > 0 {
			flush()
		}
		current = append(current, w)
		currentSize += cost
	}
	if len(current) > 0 {
		flush()
	}

	return batches
}

func wordCost(w string) int {
	return utf8.RuneCountInString(w) + 1
}
