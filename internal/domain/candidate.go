package domain

import "sort"

// RetrievalCandidate pairs a product with its cosine similarity to the query.
// Similarity is in [-1, 1].
type RetrievalCandidate struct {
	product    Product
	similarity float64
}

// NewCandidate creates a retrieval candidate.
func NewCandidate(p Product, similarity float64) RetrievalCandidate {
	return RetrievalCandidate{product: p, similarity: similarity}
}

// Product returns the underlying product.
func (c *RetrievalCandidate) Product() *Product { return &c.product }

// Similarity returns the cosine similarity score.
func (c *RetrievalCandidate) Similarity() float64 { return c.similarity }

// Less orders candidates by similarity descending, then model ascending.
// The secondary key makes tie-breaks deterministic across calls.
func (c *RetrievalCandidate) Less(other *RetrievalCandidate) bool {
	if c.similarity != other.similarity {
		return c.similarity > other.similarity
	}
	return c.product.Model() < other.product.Model()
}

// SortCandidates sorts in place by the candidate total order.
func SortCandidates(cands []RetrievalCandidate) {
	sort.Slice(cands, func(i, j int) bool {
		return cands[i].Less(&cands[j])
	})
}
