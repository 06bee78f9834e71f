// Package retriever implements the two-stage hybrid search: a hard filter
// over indexed scalar fields bounds the candidate set, then cosine
// similarity against the query embedding reranks it.
package retriever

import (
	"context"
	"fmt"
	"math"

	"go.uber.org/zap"

	"github.com/tonehall/catalogqa/internal/domain"
)

// Service runs hybrid product retrieval.
type Service struct {
	repo   Repository
	embed  Embedder
	cfg    Config
	logger *zap.Logger
}

// New creates a retriever service.
func New(repo Repository, embed Embedder, cfg Config, logger *zap.Logger) *Service {
	return &Service{repo: repo, embed: embed, cfg: cfg, logger: logger}
}

// Search runs the filter-then-rerank pipeline. The returned sequence is
// freshly computed, sorted by (similarity desc, model asc), holds no
// candidate below the similarity floor, and is truncated to the result
// limit.
//
// When the hard filter yields zero candidates the rerank runs over an
// unfiltered sample of the store instead. This soft degrade is deliberate:
// overly strict textual filters used to suppress results that vector
// similarity alone would have found. The sample is bounded by CandidateCap,
// not the whole repository, so the degraded path costs no more embedding
// work than the filtered one.
func (s *Service) Search(
	ctx context.Context, query string, filters domain.SearchFilters,
) ([]domain.RetrievalCandidate, error) {
	candidates, err := s.hardFilter(ctx, filters)
	if err != nil {
		return nil, err
	}

	if len(candidates) == 0 {
		s.logger.Debug("Hard filter empty, degrading to unfiltered rerank")
		candidates, err = s.repo.All(ctx, s.cfg.CandidateCap)
		if err != nil {
			return nil, fmt.Errorf("unfiltered candidates: %w", err)
		}
	}

	return s.rerank(ctx, query, candidates)
}

// Lookup resolves a model identifier to a single product.
func (s *Service) Lookup(ctx context.Context, model string) (domain.Product, error) {
	p, err := s.repo.ByModel(ctx, model)
	if err != nil {
		return domain.Product{}, fmt.Errorf("lookup %s: %w", model, err)
	}
	return p, nil
}

// Similar ranks the rest of the store against a reference product's own
// embedding. Products sharing the reference's category sort ahead of the
// rest; the reference itself is never returned.
func (s *Service) Similar(
	ctx context.Context, model string, limit int,
) ([]domain.RetrievalCandidate, error) {
	ref, err := s.repo.ByModel(ctx, model)
	if err != nil {
		return nil, fmt.Errorf("similar reference %s: %w", model, err)
	}
	if len(ref.Embedding()) == 0 {
		return nil, fmt.Errorf("similar reference %s: %w", model, domain.ErrNoEvidence)
	}

	all, err := s.repo.All(ctx, s.cfg.CandidateCap)
	if err != nil {
		return nil, fmt.Errorf("similar candidates: %w", err)
	}

	var same, other []domain.RetrievalCandidate
	for _, p := range all {
		if p.Model() == ref.Model() || len(p.Embedding()) == 0 {
			continue
		}
		c := domain.NewCandidate(p, cosine(ref.Embedding(), p.Embedding()))
		if p.Category() != "" && p.Category() == ref.Category() {
			same = append(same, c)
		} else {
			other = append(other, c)
		}
	}

	domain.SortCandidates(same)
	domain.SortCandidates(other)

	out := append(same, other...)
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (s *Service) hardFilter(
	ctx context.Context, filters domain.SearchFilters,
) ([]domain.Product, error) {
	if filters.IsEmpty() {
		return s.repo.All(ctx, s.cfg.CandidateCap)
	}

	products, err := s.repo.Filter(ctx, filters, s.cfg.CandidateCap)
	if err != nil {
		return nil, fmt.Errorf("hard filter: %w", err)
	}
	return products, nil
}

// rerank embeds the query and scores every candidate by cosine similarity.
func (s *Service) rerank(
	ctx context.Context, query string, products []domain.Product,
) ([]domain.RetrievalCandidate, error) {
	if len(products) == 0 {
		return nil, nil
	}

	emb, err := s.embed.Embed(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("vectorize query: %w", err)
	}

	candidates := make([]domain.RetrievalCandidate, 0, len(products))
	for _, p := range products {
		if len(p.Embedding()) == 0 {
			continue
		}
		candidates = append(candidates,
			domain.NewCandidate(p, cosine(emb.Embedding, p.Embedding())))
	}

	domain.SortCandidates(candidates)

	kept := candidates[:0]
	for _, c := range candidates {
		if c.Similarity() >= s.cfg.SimilarityFloor {
			kept = append(kept, c)
		}
	}
	candidates = kept

	if len(candidates) > s.cfg.ResultLimit {
		candidates = candidates[:s.cfg.ResultLimit]
	}
	return candidates, nil
}

// cosine computes cosine similarity with float64 accumulation.
// Returns 0 for mismatched lengths or zero-magnitude vectors.
func cosine(a, b []float32) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}
	var dot, na, nb float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		na += float64(a[i]) * float64(a[i])
		nb += float64(b[i]) * float64(b[i])
	}
	if na == 0 || nb == 0 {
		return 0
	}
	return dot / (math.Sqrt(na) * math.Sqrt(nb))
}
