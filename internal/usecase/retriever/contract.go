package retriever

import (
	"context"

	"github.com/tonehall/catalogqa/internal/domain"
)

// Repository is the read-only product store contract.
type Repository interface {
	// Filter returns at most cap products matching the hard-filter
	// constraints over the indexed scalar fields.
	Filter(ctx context.Context, f domain.SearchFilters, cap int) ([]domain.Product, error)
	// ByModel resolves a model identifier, exact first, then partial.
	// Returns domain.ErrProductNotFound when nothing matches.
	ByModel(ctx context.Context, model string) (domain.Product, error)
	// All returns at most cap products, unfiltered. Used by the
	// soft-degrade branch and by similarity ranking.
	All(ctx context.Context, cap int) ([]domain.Product, error)
}

// Embedder vectorizes query text.
type Embedder interface {
	Embed(ctx context.Context, text string) (domain.EmbeddingResult, error)
}

// Config holds the retrieval tunables. The floor and combinator are
// empirical values carried in configuration, not hardcoded behavior.
type Config struct {
	SimilarityFloor float64
	CandidateCap    int
	ResultLimit     int
}
