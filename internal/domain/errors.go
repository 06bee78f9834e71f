package domain

import "errors"

var (
	// ErrProductNotFound signals a lookup target absent from the store.
	ErrProductNotFound = errors.New("product not found")
	// ErrNoEvidence signals that retrieval produced nothing above the similarity floor.
	ErrNoEvidence = errors.New("no supporting evidence")
	// ErrAmbiguousQuery signals that the query could not be classified.
	ErrAmbiguousQuery = errors.New("ambiguous query")
	// ErrInvalidTopology signals an unrecognized impedance connection topology.
	ErrInvalidTopology = errors.New("invalid connection topology")
	// ErrInvalidCapacity signals a non-positive transformer capacity.
	ErrInvalidCapacity = errors.New("invalid transformer capacity")
	// ErrInvalidImpedance signals a non-positive impedance in a parallel combination.
	ErrInvalidImpedance = errors.New("invalid impedance value")
	// ErrUpstreamTimeout signals an external dependency exceeding its deadline.
	ErrUpstreamTimeout = errors.New("upstream timeout")
	// ErrProviderError signals a model provider failure (embedding or chat).
	ErrProviderError = errors.New("model provider error")
	// ErrVectorDimMismatch signals an embedding vector of unexpected length.
	ErrVectorDimMismatch = errors.New("vector dimension mismatch")
)
