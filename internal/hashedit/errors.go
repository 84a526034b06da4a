package hashedit

import "fmt"

// HashMismatch is a single stale-reference finding produced by the validator.
type HashMismatch struct {
	Line     int
	Expected string
	Actual   string
}

// HashMismatchError aggregates every stale reference found across a batch.
// No edit in the batch is applied when this error is returned.
type HashMismatchError struct {
	Mismatches []HashMismatch
	Report     string
}

func (e *HashMismatchError) Error() string {
	return e.Report
}

// ValidationError covers fatal, first-error-wins problems: bad src syntax,
// empty inserts, multi-line substring replacements, and multi-ref src
// strings. Out-of-range lines and inverted ranges are reported as RangeError.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string { return e.Message }

func validationErrorf(format string, args ...any) *ValidationError {
	return &ValidationError{Message: fmt.Sprintf(format, args...)}
}

// RangeError reports a line reference outside the file's current bounds, or
// a range whose start line is after its end line.
type RangeError struct {
	Message string
}

func (e *RangeError) Error() string { return e.Message }

func rangeErrorf(format string, args ...any) *RangeError {
	return &RangeError{Message: fmt.Sprintf(format, args...)}
}

// AmbiguityError is returned when a Substring spec matches zero or more than
// one line; the caller must add context to disambiguate.
type AmbiguityError struct {
	Kind       string // "substring-multiple" | "substring-not-found"
	Candidates []string
	Message    string
}

func (e *AmbiguityError) Error() string { return e.Message }
