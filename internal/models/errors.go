package models

import (
	"errors"
	"fmt"
)

// Failure reasons carried by the typed errors below.
const (
	ReasonMalformedDocument = "malformed-document"
	ReasonEmptyDocument     = "empty-document"
	ReasonNoChunks          = "no-chunks"
	ReasonEmptyChunk        = "empty-chunk"
	ReasonDimensionMismatch = "dimension-mismatch"
	ReasonEmbeddingFailed   = "embedding-failed"
	ReasonUnavailable       = "unavailable"
	ReasonRateLimited       = "rate-limited"
	ReasonBadResponse       = "bad-response"
	ReasonCanceled          = "canceled"
)

var (
	// ErrNotReady is returned when a question is asked before a document has been ingested.
	ErrNotReady = errors.New("no document processed yet: upload and process a PDF first")
	// ErrIngestionInProgress is returned when an ingestion is requested while another runs.
	ErrIngestionInProgress = errors.New("an ingestion is already in progress for this session")
)

// LoadError reports an input that could not be parsed as a PDF.
type LoadError struct {
	Reason string
	Err    error
}

func (e *LoadError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("load document: %s: %v", e.Reason, e.Err)
	}
	return "load document: " + e.Reason
}

func (e *LoadError) Unwrap() error { return e.Err }

// ChunkError reports that a document produced no usable text.
type ChunkError struct {
	Reason string
}

func (e *ChunkError) Error() string { return "chunk document: " + e.Reason }

// ProviderError reports an Embedding Provider failure.
type ProviderError struct {
	Reason    string
	Retryable bool
	Err       error
}

func (e *ProviderError) Error() string {
	msg := "embedding provider: " + e.Reason
	if e.Retryable {
		msg += " (retryable)"
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *ProviderError) Unwrap() error { return e.Err }

// SynthesisError reports an Answer Synthesizer failure.
type SynthesisError struct {
	Reason    string
	Retryable bool
	Err       error
}

func (e *SynthesisError) Error() string {
	msg := "answer synthesis: " + e.Reason
	if e.Retryable {
		msg += " (retryable)"
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *SynthesisError) Unwrap() error { return e.Err }

// IndexBuildError reports a vector index that could not be built.
type IndexBuildError struct {
	Reason string
	Err    error
}

func (e *IndexBuildError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("build index: %s: %v", e.Reason, e.Err)
	}
	return "build index: " + e.Reason
}

func (e *IndexBuildError) Unwrap() error { return e.Err }

// InvalidArgumentError reports a bad parameter or configuration value.
type InvalidArgumentError struct {
	Field  string
	Reason string
}

func (e *InvalidArgumentError) Error() string {
	return fmt.Sprintf("invalid argument %s: %s", e.Field, e.Reason)
}

// InvalidArgument returns an *InvalidArgumentError for field.
func InvalidArgument(field, format string, args ...interface{}) error {
	return &InvalidArgumentError{Field: field, Reason: fmt.Sprintf(format, args...)}
}

// IsRetryable reports whether err wraps a provider or synthesis error marked retryable.
func IsRetryable(err error) bool {
	var pe *ProviderError
	if errors.As(err, &pe) {
		return pe.Retryable
	}
	var se *SynthesisError
	if errors.As(err, &se) {
		return se.Retryable
	}
	return false
}
