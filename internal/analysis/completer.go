package analysis

import "context"

// Request is a single-message chat completion.
type Request struct {
	Prompt      string
	MaxTokens   int
	Temperature float32
}

// Completer sends one prompt to an LLM provider and returns the text of the
// first choice. Failures are returned as *CallError.
type Completer interface {
	Complete(ctx context.Context, req Request) (string, error)
}
