package router

import "context"

// Classifier is the stage-2 classification service contract. It returns one
// of the labels "DIRECT_LOOKUP", "SEMANTIC_SEARCH", or "CALCULATION"; any
// other label or an error degrades the query to the unknown intent.
type Classifier interface {
	Classify(ctx context.Context, query string) (string, error)
}
