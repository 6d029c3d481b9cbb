package types

import (
	"errors"
	"fmt"
)

// Domain errors
var (
	// Input errors are fatal and raised before any document is opened
	ErrInvalidInput = errors.New("invalid input")

	// Section validation errors
	ErrMissingDocument = errors.New("document id is required")
	ErrInvalidPage     = errors.New("page number must be >= 1")
	ErrEmptySection    = errors.New("section text cannot be empty")

	// ErrEmbeddingFailed is fatal for a run
	ErrEmbeddingFailed = errors.New("embedding failed")

	// ErrNoSections is a warning: the report is still produced, with empty arrays
	ErrNoSections = errors.New("no sections found in any document")
)

// Parse stages recorded on DocumentParseError
const (
	StageOpen    = "open"
	StageParse   = "parse"
	StageTimeout = "timeout"
)

// Embedding stages recorded on EmbeddingError
const (
	StageInit     = "init"
	StageSections = "sections"
	StageQuery    = "query"
)

// InputError reports which caller-supplied field was rejected.
type InputError struct {
	Field  string
	Reason string
}

func (e *InputError) Error() string {
	return fmt.Sprintf("%s: %s %s", ErrInvalidInput, e.Field, e.Reason)
}

func (e *InputError) Unwrap() error {
	return ErrInvalidInput
}

// DocumentParseError is raised when a single document cannot be read.
// The run skips that document and continues with the rest.
type DocumentParseError struct {
	Document string
	Stage    string
	Err      error
}

func (e *DocumentParseError) Error() string {
	return fmt.Sprintf("parse %s (%s): %v", e.Document, e.Stage, e.Err)
}

func (e *DocumentParseError) Unwrap() error {
	return e.Err
}

// EmbeddingError wraps a provider failure. It always matches ErrEmbeddingFailed.
type EmbeddingError struct {
	Stage string
	Err   error
}

func (e *EmbeddingError) Error() string {
	return fmt.Sprintf("%s (%s): %v", ErrEmbeddingFailed, e.Stage, e.Err)
}

func (e *EmbeddingError) Unwrap() []error {
	return []error{ErrEmbeddingFailed, e.Err}
}
