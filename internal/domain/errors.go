package domain

import "errors"

var (
	// ErrNotFound signals a missing document or case.
	ErrNotFound = errors.New("not found")
	// ErrIndexNotFound signals that a document has no retrieval index yet.
	ErrIndexNotFound = errors.New("retrieval index not found")
	// ErrBuild signals a failed retrieval index build. Callers may retry.
	ErrBuild = errors.New("index build failed")
	// ErrInvalidInput signals a precondition violation (empty query, empty question).
	ErrInvalidInput = errors.New("invalid input")
	// ErrCompletionTimeout signals that the completion service did not answer in time.
	ErrCompletionTimeout = errors.New("completion timeout")
	// ErrCompletionService signals a completion service failure.
	ErrCompletionService = errors.New("completion service error")
	// ErrEmbeddingProviderError signals an embedding provider failure.
	ErrEmbeddingProviderError = errors.New("embedding provider error")
	// ErrStore signals a metadata or index store failure.
	ErrStore = errors.New("store error")
	// ErrNotImplemented signals a feature the configured backend does not provide.
	ErrNotImplemented = errors.New("not implemented")
)

// ErrQuotaExceeded signals an exhausted token budget under the reject action.
var ErrQuotaExceeded = errors.New("token quota exceeded")
