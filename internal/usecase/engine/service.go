// Package engine orchestrates one query through routing, retrieval and
// composition. It owns the fault boundary: callers always receive a
// structured AnswerResult, never a bare provider error.
package engine

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/tonehall/catalogqa/internal/domain"
)

// Service runs the query pipeline.
type Service struct {
	router    Router
	retriever Retriever
	composer  Composer
	logger    *zap.Logger
}

// New creates the engine.
func New(router Router, retriever Retriever, comp Composer, logger *zap.Logger) *Service {
	return &Service{
		router:    router,
		retriever: retriever,
		composer:  comp,
		logger:    logger.Named("engine"),
	}
}

// Answer processes one query end to end. The result always carries the
// resolved intent; failures surface as coded abstentions.
func (s *Service) Answer(ctx context.Context, query string) domain.AnswerResult {
	cls := s.router.Classify(ctx, query)

	if result, ok := s.composer.Blocked(cls.Intent); ok {
		return result
	}

	switch cls.Intent {
	case domain.IntentDirectLookup:
		return s.lookup(ctx, query, cls.Entities)
	case domain.IntentCalculation:
		return s.composer.Calculation(cls.Entities.Calc)
	case domain.IntentSemanticSearch:
		return s.search(ctx, query, cls.Entities.Filters)
	default:
		return s.degrade(domain.IntentUnknown, domain.ErrAmbiguousQuery)
	}
}

// Similar answers a "products like X" request against a reference model.
func (s *Service) Similar(ctx context.Context, model string, limit int) domain.AnswerResult {
	candidates, err := s.retriever.Similar(ctx, model, limit)
	if err != nil {
		return s.degrade(domain.IntentSemanticSearch, err)
	}
	if len(candidates) == 0 {
		return s.composer.Abstain(domain.IntentSemanticSearch, domain.CodeNoEvidence)
	}

	result, err := s.composer.Search(
		ctx, fmt.Sprintf("Which products are closest to the %s?", model), candidates)
	if err != nil {
		return s.degrade(domain.IntentSemanticSearch, err)
	}
	return result
}

// lookup handles a classified direct lookup. When the router extracted no
// model identifier the query still describes a product in prose, so it
// degrades to semantic search rather than abstaining.
func (s *Service) lookup(ctx context.Context, query string, ents domain.Entities) domain.AnswerResult {
	if ents.Model == "" {
		s.logger.Debug("Lookup without model identifier, degrading to search")
		return s.search(ctx, query, ents.Filters)
	}

	p, err := s.retriever.Lookup(ctx, ents.Model)
	if err != nil {
		return s.degrade(domain.IntentDirectLookup, err)
	}
	return s.composer.Lookup(&p)
}

func (s *Service) search(ctx context.Context, query string, filters domain.SearchFilters) domain.AnswerResult {
	candidates, err := s.retriever.Search(ctx, query, filters)
	if err != nil {
		return s.degrade(domain.IntentSemanticSearch, err)
	}

	result, err := s.composer.Search(ctx, query, candidates)
	if err != nil {
		return s.degrade(domain.IntentSemanticSearch, err)
	}
	return result
}

// degrade maps an infrastructure error to its coded abstention. This is the
// only place provider and store failures become answers.
func (s *Service) degrade(intent domain.Intent, err error) domain.AnswerResult {
	code := domain.CodeNoEvidence
	switch {
	case errors.Is(err, domain.ErrAmbiguousQuery):
		code = domain.CodeAmbiguousQuery
	case errors.Is(err, domain.ErrProductNotFound):
		code = domain.CodeInvalidModel
	case errors.Is(err, domain.ErrUpstreamTimeout):
		code = domain.CodeUpstreamTimeout
	}

	s.logger.Warn("Query degraded to abstention",
		zap.String("intent", intent.String()),
		zap.String("code", string(code)),
		zap.Error(err))

	return s.composer.Abstain(intent, code)
}
