package query

import "errors"

var (
	// ErrIndexerRequired indicates a nil silo searcher was passed to the
	// constructor.
	ErrIndexerRequired = errors.New("silo searcher is required")

	// ErrEmbedderRequired indicates a nil embedder was passed to the
	// constructor.
	ErrEmbedderRequired = errors.New("embedder is required")

	// ErrPrivacyManagerRequired indicates a nil privacy manager was passed
	// to the constructor.
	ErrPrivacyManagerRequired = errors.New("privacy manager is required")

	// ErrAccessEngineRequired indicates a nil permission engine was passed
	// to the constructor.
	ErrAccessEngineRequired = errors.New("permission engine is required")
)
