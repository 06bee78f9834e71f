// Package router classifies queries into the closed intent set. Stage 1 is
// deterministic rule matching; stage 2 delegates to a classification service.
// A stage-1 match is terminal and never overridden by stage 2 - the cheapest,
// most auditable check is the outermost defense layer.
package router

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/tonehall/catalogqa/internal/domain"
	"github.com/tonehall/catalogqa/internal/domain/policy"
	"github.com/tonehall/catalogqa/internal/metrics"
)

// Service classifies queries and extracts entities.
type Service struct {
	classifier Classifier
	logger     *zap.Logger
}

// New creates a router service.
func New(classifier Classifier, logger *zap.Logger) *Service {
	return &Service{classifier: classifier, logger: logger}
}

// Classify assigns exactly one intent to the query and extracts the entities
// the downstream handler needs. The classification service is consulted only
// when no stage-1 rule matches; its failure is not fatal and degrades to the
// unknown intent.
func (s *Service) Classify(ctx context.Context, query string) domain.Classification {
	query = strings.TrimSpace(query)
	if query == "" {
		return domain.Classification{Intent: domain.IntentUnknown}
	}

	lower := strings.ToLower(query)

	if intent, ok := matchRules(lower); ok {
		metrics.RouterFastPathTotal.WithLabelValues(intent.String()).Inc()
		if policy.IsBlocked(intent) {
			metrics.BlockedQueriesTotal.WithLabelValues("router", intent.String()).Inc()
			s.logger.Info("Query blocked by router rules",
				zap.String("intent", intent.String()))
			return domain.Classification{Intent: intent}
		}
		s.logger.Debug("Rule-based classification",
			zap.String("intent", intent.String()))
		return domain.Classification{Intent: intent, Entities: s.extract(intent, query)}
	}

	intent := s.classifyRemote(ctx, query)
	return domain.Classification{Intent: intent, Entities: s.extract(intent, query)}
}

// classifyRemote runs the stage-2 classifier and maps its label onto the
// remaining intents. Failures and unexpected labels degrade to unknown.
func (s *Service) classifyRemote(ctx context.Context, query string) domain.Intent {
	label, err := s.classifier.Classify(ctx, query)
	if err != nil {
		s.logger.Warn("Classification service failed, degrading to unknown", zap.Error(err))
		return domain.IntentUnknown
	}

	switch {
	case strings.Contains(label, "LOOKUP"):
		return domain.IntentDirectLookup
	case strings.Contains(label, "CALC"):
		return domain.IntentCalculation
	case strings.Contains(label, "SEARCH") || strings.Contains(label, "SEMANTIC"):
		return domain.IntentSemanticSearch
	default:
		s.logger.Warn("Unexpected classifier label", zap.String("label", label))
		return domain.IntentUnknown
	}
}

// extract pulls the entities relevant to the resolved intent.
func (s *Service) extract(intent domain.Intent, query string) domain.Entities {
	switch intent {
	case domain.IntentDirectLookup:
		return domain.Entities{
			Model:   extractModel(query),
			Filters: extractFilters(query),
		}
	case domain.IntentSemanticSearch:
		return domain.Entities{Filters: extractFilters(query)}
	case domain.IntentCalculation:
		return domain.Entities{Calc: extractCalcParams(query)}
	default:
		return domain.Entities{}
	}
}
