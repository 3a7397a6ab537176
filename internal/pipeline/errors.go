package pipeline

import (
	"errors"
	"fmt"
)

// Request-level failures. All of them are reported to the caller as 400.
var (
	ErrNoFilesUploaded = errors.New("No files uploaded")
	ErrNoFilesSelected = errors.New("No files selected")
	ErrNoValidText     = errors.New("No valid text extracted from uploaded files")
)

// UnsupportedTypeError is returned for a file whose type is not accepted when
// unsupported files are not skipped.
type UnsupportedTypeError struct {
	Filename string
}

func (e *UnsupportedTypeError) Error() string {
	return fmt.Sprintf("Unsupported file type: %s", e.Filename)
}

// ExtractionError means a document produced no text. It aborts the request.
type ExtractionError struct {
	Filename string
	Err      error
}

func (e *ExtractionError) Error() string {
	return fmt.Sprintf("Failed to extract text from %s", e.Filename)
}

func (e *ExtractionError) Unwrap() error { return e.Err }

// IsClientError reports whether err is a request-level failure the caller
// caused.
func IsClientError(err error) bool {
	var ute *UnsupportedTypeError
	var ee *ExtractionError
	return errors.Is(err, ErrNoFilesUploaded) ||
		errors.Is(err, ErrNoFilesSelected) ||
		errors.Is(err, ErrNoValidText) ||
		errors.As(err, &ute) ||
		errors.As(err, &ee)
}
