package core

import (
	"errors"
	"fmt"
)

// Domain errors - the failure taxonomy of a report run
var (
	// Input shape errors
	ErrFormat      = errors.New("malformed replicate input")
	ErrEmptyInput  = fmt.Errorf("%w: empty input", ErrFormat)
	ErrOrphanRow   = fmt.Errorf("%w: data line before any header", ErrFormat)
	ErrSchemaDrift = fmt.Errorf("%w: header differs from first table", ErrFormat)

	// Matrix construction errors
	ErrLookup        = errors.New("condition lookup failed")
	ErrMissingRow    = fmt.Errorf("%w: no matching row", ErrLookup)
	ErrDuplicateRow  = fmt.Errorf("%w: more than one matching row", ErrLookup)
	ErrUnknownColumn = fmt.Errorf("%w: unknown column", ErrLookup)

	// Test input errors
	ErrInput            = errors.New("insufficient input for test")
	ErrNonFinite        = fmt.Errorf("%w: non-finite statistic", ErrInput)
	ErrDegenerateSample = errors.New("degenerate sample: all paired differences are zero")
	ErrPathPattern      = errors.New("path does not match report naming convention")
)

// NewFormatError reports a malformed line
func NewFormatError(line int, reason string) error {
	return fmt.Errorf("%w: line %d: %s", ErrFormat, line, reason)
}

// NewLookupError reports a missing or duplicated condition row
func NewLookupError(base error, replicate int, condition string) error {
	return fmt.Errorf("%w: replicate %d, condition %s", base, replicate, condition)
}

// NewInputError reports a test that cannot run on its input
func NewInputError(test string, reason string) error {
	return fmt.Errorf("%w: %s: %s", ErrInput, test, reason)
}

// NewDegenerateSampleError names the pair whose differences were all zero
func NewDegenerateSampleError(a, b string) error {
	return fmt.Errorf("%w (%s vs %s)", ErrDegenerateSample, a, b)
}

// NewPathPatternError reports an unrecognised input path
func NewPathPatternError(path string) error {
	return fmt.Errorf("%w: %s", ErrPathPattern, path)
}

// Error checking helpers
func IsFormatError(err error) bool {
	return errors.Is(err, ErrFormat)
}

func IsLookupError(err error) bool {
	return errors.Is(err, ErrLookup)
}

func IsInputError(err error) bool {
	return errors.Is(err, ErrInput)
}

func IsDegenerateSample(err error) bool {
	return errors.Is(err, ErrDegenerateSample)
}

func IsPathPatternError(err error) bool {
	return errors.Is(err, ErrPathPattern)
}
