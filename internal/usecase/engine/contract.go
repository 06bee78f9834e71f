package engine

import (
	"context"

	"github.com/tonehall/catalogqa/internal/domain"
)

// Router classifies a raw query into an intent plus extracted entities.
type Router interface {
	Classify(ctx context.Context, query string) domain.Classification
}

// Retriever resolves evidence from the product store.
type Retriever interface {
	Search(ctx context.Context, query string, filters domain.SearchFilters) ([]domain.RetrievalCandidate, error)
	Lookup(ctx context.Context, model string) (domain.Product, error)
	Similar(ctx context.Context, model string, limit int) ([]domain.RetrievalCandidate, error)
}

// Composer turns evidence into a final answer.
type Composer interface {
	Blocked(intent domain.Intent) (domain.AnswerResult, bool)
	Abstain(intent domain.Intent, code domain.Code) domain.AnswerResult
	Lookup(p *domain.Product) domain.AnswerResult
	Search(ctx context.Context, query string, candidates []domain.RetrievalCandidate) (domain.AnswerResult, error)
	Calculation(params domain.CalcParams) domain.AnswerResult
}
