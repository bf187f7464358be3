package gas

import "errors"

var (
	// ErrMissingModelOutput marks a model whose simulation output was never written.
	// Callers recover locally: the model contributes empty series.
	ErrMissingModelOutput = errors.New("missing model output")

	// ErrConfiguration marks a malformed or contradictory request. It aborts the operation.
	ErrConfiguration = errors.New("configuration error")

	// ErrNoConvolution is reported by a Convolver when no prior computation exists for a star.
	ErrNoConvolution = errors.New("no convolution available")

	// ErrEmptyResultSet reports that filtering left nothing to render. It is a diagnostic, not a failure.
	ErrEmptyResultSet = errors.New("empty result set")
)
