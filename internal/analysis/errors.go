package analysis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
)

// Kind classifies a failed provider call.
type Kind string

const (
	KindTimeout           Kind = "timeout"
	KindTransportError    Kind = "transport_error"
	KindProviderError     Kind = "provider_error"
	KindMalformedResponse Kind = "malformed_response"
)

// CallError is returned by every Completer and by Client on a failed call.
type CallError struct {
	Kind       Kind
	StatusCode int
	Body       string
	Err        error
}

func (e *CallError) Error() string {
	switch {
	case e.StatusCode != 0 && e.Body != "":
		return fmt.Sprintf("%s (status %d): %s", e.Kind, e.StatusCode, truncate(e.Body, 200))
	case e.StatusCode != 0:
		return fmt.Sprintf("%s (status %d)", e.Kind, e.StatusCode)
	case e.Err != nil:
		return fmt.Sprintf("%s: %v", e.Kind, e.Err)
	}
	return string(e.Kind)
}

func (e *CallError) Unwrap() error { return e.Err }

// Retryable reports whether the call may succeed if repeated: timeouts,
// connection failures, 429 and 5xx.
func (e *CallError) Retryable() bool {
	switch e.Kind {
	case KindTimeout, KindTransportError:
		return true
	case KindProviderError:
		return e.StatusCode == http.StatusTooManyRequests || e.StatusCode >= 500
	}
	return false
}

// KindOf returns the failure kind of err, or "" if err is not a CallError.
func KindOf(err error) Kind {
	var ce *CallError
	if errors.As(err, &ce) {
		return ce.Kind
	}
	return ""
}

// transportError classifies an error from the HTTP round trip itself.
func transportError(err error) *CallError {
	if isTimeout(err) {
		return &CallError{Kind: KindTimeout, Err: err}
	}
	return &CallError{Kind: KindTransportError, Err: err}
}

func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var ne net.Error
	return errors.As(err, &ne) && ne.Timeout()
}

func isDecodeError(err error) bool {
	var syntaxErr *json.SyntaxError
	var typeErr *json.UnmarshalTypeError
	return errors.As(err, &syntaxErr) || errors.As(err, &typeErr) ||
		errors.Is(err, io.ErrUnexpectedEOF) || errors.Is(err, io.EOF)
}

// toCallError normalizes any error returned by a Completer. A call whose own
// deadline passed is a timeout whatever the adapter reported.
func toCallError(ctx context.Context, err error) *CallError {
	if errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return &CallError{Kind: KindTimeout, Err: err}
	}
	var ce *CallError
	if errors.As(err, &ce) {
		return ce
	}
	return transportError(err)
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
