package internal

import (
	"errors"
	"fmt"
	"strings"
)

// ErrorCategory classifies a generation failure.
type ErrorCategory string

const (
	ErrorCategoryInput  ErrorCategory = "invalid_input"      // bad dimensions, target size, format
	ErrorCategorySize   ErrorCategory = "size_unreachable"   // no quality fits under the target
	ErrorCategoryEncode ErrorCategory = "encode_failure"     // the codec itself failed
	ErrorCategorySink   ErrorCategory = "sink_write_failure" // output destination rejected bytes
)

// GenerateError is a categorized generation failure. The category tells the
// caller whether retrying makes sense (it never does with the same inputs);
// the suggestion is user-facing advice surfaced by the CLI and batch logs.
type GenerateError struct {
	Category   ErrorCategory
	Err        error
	Suggestion string
}

func (e *GenerateError) Error() string {
	return fmt.Sprintf("[%s] %v", e.Category, e.Err)
}

func (e *GenerateError) Unwrap() error {
	return e.Err
}

// IsCategory reports whether err is a GenerateError of the given category.
func IsCategory(err error, cat ErrorCategory) bool {
	var ge *GenerateError
	return errors.As(err, &ge) && ge.Category == cat
}

// errInput builds an invalid-input error. These are caller mistakes and are
// rejected before any pixel is synthesized or byte written.
func errInput(format string, args ...interface{}) *GenerateError {
	return &GenerateError{
		Category:   ErrorCategoryInput,
		Err:        fmt.Errorf(format, args...),
		Suggestion: "Check width, height, target size and format arguments",
	}
}

// errSizeUnreachable reports that even the lowest quality overshoots the
// target. Retrying needs different inputs, so that is what the suggestion
// says.
func errSizeUnreachable(target, smallest int64, floor int) *GenerateError {
	return &GenerateError{
		Category: ErrorCategorySize,
		Err: fmt.Errorf("cannot reach %d bytes: smallest encoding at quality %d is %d bytes",
			target, floor, smallest),
		Suggestion: "Increase the target size or reduce the image dimensions",
	}
}

// wrapEncodeError propagates a codec failure. Retrying with the same inputs
// is assumed futile, so no retry happens anywhere in the pipeline.
func wrapEncodeError(format Format, quality int, err error) *GenerateError {
	return &GenerateError{
		Category:   ErrorCategoryEncode,
		Err:        fmt.Errorf("%s encode at quality %d: %w", format, quality, err),
		Suggestion: "The codec rejected the image; try a different format",
	}
}

// wrapSinkError classifies an output write failure and attaches advice the
// way the operator will want it (disk full and permission problems dominate
// in practice). Partially written output is left in place; atomic mode is
// the CLI's answer to that.
func wrapSinkError(err error) *GenerateError {
	ge := &GenerateError{
		Category: ErrorCategorySink,
		Err:      fmt.Errorf("write output: %w", err),
	}

	errStr := strings.ToLower(err.Error())
	switch {
	case strings.Contains(errStr, "no space left"):
		ge.Suggestion = "Free up disk space on the output drive"
	case strings.Contains(errStr, "permission denied"):
		ge.Suggestion = "Check write permissions on the output directory"
	case strings.Contains(errStr, "read-only file system"):
		ge.Suggestion = "Output filesystem is read-only - check mount options"
	case strings.Contains(errStr, "too many open files"):
		ge.Suggestion = "File descriptor limit reached - raise ulimit or close other programs"
	default:
		ge.Suggestion = "Check the output destination and retry"
	}

	return ge
}
