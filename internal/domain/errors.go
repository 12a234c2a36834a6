package domain

import "errors"

var (
	// ErrValidation signals a property record missing required input fields.
	// The caller must fix the input; retrying as-is will not help.
	ErrValidation = errors.New("validation failed")
	// ErrEmbeddingUnavailable signals that no embedding could be produced,
	// typically because every photo fetch failed. Retryable once the external
	// condition changes.
	ErrEmbeddingUnavailable = errors.New("embedding unavailable")
	// ErrNotFound signals a referenced id absent from a collection.
	ErrNotFound = errors.New("not found")
	// ErrInvalidMode signals an unrecognized or unweighted search mode.
	ErrInvalidMode = errors.New("invalid search mode")
	// ErrTransientIO signals a network or store failure worth retrying with backoff.
	ErrTransientIO = errors.New("transient io error")
	// ErrDimensionMismatch signals a vector whose length does not match the
	// collection's fixed dimension.
	ErrDimensionMismatch = errors.New("vector dimension mismatch")
)
