// Package composer turns routed, retrieved evidence into final answers.
// Every factual claim it emits is backed by a citation into the product
// store; when evidence is missing it abstains with a fixed text instead of
// letting the generator improvise.
package composer

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/tonehall/catalogqa/internal/calc"
	"github.com/tonehall/catalogqa/internal/domain"
	"github.com/tonehall/catalogqa/internal/domain/policy"
	"github.com/tonehall/catalogqa/internal/metrics"
)

// Service composes answers from retrieval evidence and calculator output.
type Service struct {
	generator Generator
	cfg       Config
	logger    *zap.Logger
}

// New creates a composer service.
func New(generator Generator, cfg Config, logger *zap.Logger) *Service {
	return &Service{
		generator: generator,
		cfg:       cfg,
		logger:    logger.Named("composer"),
	}
}

// Blocked returns the fixed answer for a hard-blocked intent. It is the
// second defense layer: even if the router's exit check regresses, no
// blocked query gets past composition.
func (s *Service) Blocked(intent domain.Intent) (domain.AnswerResult, bool) {
	result, ok := policy.BlockedResult(intent)
	if ok {
		metrics.BlockedQueriesTotal.WithLabelValues("composer", intent.String()).Inc()
	}
	return result, ok
}

// Abstain produces the fixed insufficient-evidence answer with the given
// failure code.
func (s *Service) Abstain(intent domain.Intent, code domain.Code) domain.AnswerResult {
	return domain.AnswerResult{
		Answer:     policy.AbstentionText,
		Confidence: domain.ConfidenceLow,
		Code:       code,
		Intent:     intent,
	}
}

// Lookup formats a spec sheet for a directly resolved product. No generator
// call is made: the answer is assembled verbatim from stored attributes, so
// repeated lookups return byte-identical results.
func (s *Service) Lookup(p *domain.Product) domain.AnswerResult {
	lines, cites := specLines(p)

	var b strings.Builder
	fmt.Fprintf(&b, "Based on the specifications for **%s**:\n", p.Model())
	if p.Category() != "" {
		fmt.Fprintf(&b, "- Category: %s\n", p.Category())
	}
	if p.Series() != "" {
		fmt.Fprintf(&b, "- Series: %s\n", p.Series())
	}
	for _, l := range lines {
		b.WriteString(l)
		b.WriteByte('\n')
	}
	if p.Summary() != "" {
		b.WriteByte('\n')
		b.WriteString(p.Summary())
	}

	return domain.AnswerResult{
		Answer:     strings.TrimRight(b.String(), "\n"),
		Citations:  cites,
		Confidence: domain.ConfidenceHigh,
		Intent:     domain.IntentDirectLookup,
	}
}

// Search answers a semantic query over ranked candidates. The generator
// writes the prose; if it fails, a deterministic fallback lists the evidence
// instead so retrieval work is never discarded.
func (s *Service) Search(
	ctx context.Context, query string, candidates []domain.RetrievalCandidate,
) (domain.AnswerResult, error) {
	if len(candidates) == 0 {
		return s.Abstain(domain.IntentSemanticSearch, domain.CodeNoEvidence), nil
	}

	answer, generated, err := s.generate(ctx, query, candidates)
	if err != nil {
		return domain.AnswerResult{}, err
	}

	cites := searchCitations(answer, candidates)

	return domain.AnswerResult{
		Answer:     answer,
		Citations:  cites,
		Confidence: s.searchConfidence(candidates, cites, generated),
		Intent:     domain.IntentSemanticSearch,
	}, nil
}

// generate asks the model for prose grounded on the candidate blocks. A
// generator failure degrades to the deterministic fallback rather than
// erroring, except for upstream timeouts, which the caller maps to a coded
// abstention.
func (s *Service) generate(
	ctx context.Context, query string, candidates []domain.RetrievalCandidate,
) (answer string, generated bool, err error) {
	var b strings.Builder
	b.WriteString("Answer the question using ONLY the product data below. ")
	b.WriteString("Reference products by their exact model names. ")
	b.WriteString(policy.PromptGuard())
	b.WriteString("\n\n")
	for i := range candidates {
		b.WriteString(productBlock(i+1, &candidates[i]))
		b.WriteByte('\n')
	}
	fmt.Fprintf(&b, "Question: %s", query)

	answer, err = s.generator.Generate(ctx, b.String())
	if err != nil {
		if errors.Is(err, domain.ErrUpstreamTimeout) {
			return "", false, err
		}
		s.logger.Warn("Generation failed, using deterministic fallback", zap.Error(err))
		return fallbackAnswer(candidates), false, nil
	}

	answer = strings.TrimSpace(answer)
	if answer == "" {
		return fallbackAnswer(candidates), false, nil
	}
	return answer, true, nil
}

// fallbackAnswer lists the retrieved evidence without model prose.
func fallbackAnswer(candidates []domain.RetrievalCandidate) string {
	var b strings.Builder
	b.WriteString("Matching products from the catalog:\n")
	for i := range candidates {
		p := candidates[i].Product()
		fmt.Fprintf(&b, "- **%s**", p.Model())
		if p.Category() != "" {
			fmt.Fprintf(&b, " (%s)", p.Category())
		}
		if watts, ok := p.PowerWatts(); ok {
			fmt.Fprintf(&b, " - %s W", formatNumber(watts))
		}
		if p.Summary() != "" {
			fmt.Fprintf(&b, ": %s", p.Summary())
		}
		b.WriteByte('\n')
	}
	return strings.TrimRight(b.String(), "\n")
}

// searchCitations cites the candidates the answer actually mentions by
// model name; when the text names none, every candidate is cited so the
// answer is never presented without provenance.
func searchCitations(
	answer string, candidates []domain.RetrievalCandidate,
) []domain.Citation {
	upper := strings.ToUpper(answer)

	var mentioned []domain.Citation
	var all []domain.Citation
	for i := range candidates {
		p := candidates[i].Product()
		c := domain.Citation{
			Model:      p.Model(),
			SourceDoc:  p.SourceDoc(),
			SourcePage: p.SourcePage(),
		}
		all = append(all, c)
		if strings.Contains(upper, strings.ToUpper(p.Model())) {
			mentioned = append(mentioned, c)
		}
	}

	if len(mentioned) > 0 {
		return mentioned
	}
	return all
}

// searchConfidence grades the evidence: HIGH needs a top match over the
// strict threshold plus corroboration from a second cited product. Answers
// built by the deterministic fallback cap at MEDIUM.
func (s *Service) searchConfidence(
	candidates []domain.RetrievalCandidate, cites []domain.Citation, generated bool,
) domain.Confidence {
	if !generated {
		return domain.ConfidenceMedium
	}
	if candidates[0].Similarity() >= s.cfg.StrictThreshold && len(cites) >= 2 {
		return domain.ConfidenceHigh
	}
	return domain.ConfidenceMedium
}

// Calculation runs the deterministic calculator over extracted parameters.
// Any domain error in the inputs yields a CALCULATION_ERROR abstention;
// partial answers are never produced.
func (s *Service) Calculation(params domain.CalcParams) domain.AnswerResult {
	result, err := s.calculate(params)
	if err != nil {
		s.logger.Debug("Calculation rejected", zap.Error(err))
		return s.Abstain(domain.IntentCalculation, domain.CodeCalculationError)
	}
	result.Intent = domain.IntentCalculation
	result.Confidence = domain.ConfidenceHigh
	return result
}

// calculate picks the operation implied by which parameters are present.
func (s *Service) calculate(p domain.CalcParams) (domain.AnswerResult, error) {
	switch {
	case len(p.Impedances) > 0 && p.Topology != "":
		z, err := calc.Impedance(p.Impedances, p.Topology)
		if err != nil {
			return domain.AnswerResult{}, err
		}
		return domain.AnswerResult{
			Answer: fmt.Sprintf(
				"The combined %s impedance of %s is **%s ohms**.",
				p.Topology, joinNumbers(p.Impedances, " ohm"), formatNumber(round1(z))),
		}, nil

	case p.HasMaxCount:
		r, err := calc.MaxSpeakers(p.TransformerWatts, p.UnitWatts, calc.RecommendedHeadroomPercent)
		if err != nil {
			return domain.AnswerResult{}, err
		}
		return domain.AnswerResult{
			Answer: fmt.Sprintf(
				"A %s W transformer supports up to **%d** speakers tapped at %s W "+
					"(total load %s W, %s%% headroom).",
				formatNumber(r.Capacity), r.MaxSpeakers, formatNumber(r.SpeakerWatts),
				formatNumber(r.TotalLoad), formatNumber(r.HeadroomPercent)),
		}, nil

	case p.HasReduction:
		r, err := calc.TapForReduction(p.ReductionDB, p.UnitWatts)
		if err != nil {
			return domain.AnswerResult{}, err
		}
		return domain.AnswerResult{
			Answer: fmt.Sprintf(
				"For a %s dB reduction on a %s W speaker, use the **%s W** tap "+
					"(actual reduction %s dB).",
				formatNumber(p.ReductionDB), formatNumber(p.UnitWatts),
				formatNumber(r.TapWatts), formatNumber(r.ActualReductionDB)),
		}, nil

	case len(p.SpeakerWatts) > 0 && p.HasTransformer:
		total := calc.TotalPower(p.SpeakerWatts)
		r, err := calc.Compatibility(total, p.TransformerWatts)
		if err != nil {
			return domain.AnswerResult{}, err
		}
		verdict := "is compatible with"
		note := fmt.Sprintf("leaving %s%% headroom", formatNumber(r.HeadroomPercent))
		if !r.Compatible {
			verdict = "exceeds"
			note = "the transformer is overloaded"
		} else if r.HeadroomPercent < calc.MinHeadroomPercent {
			note = fmt.Sprintf(
				"but only %s%% headroom remains; at least %s%% is recommended",
				formatNumber(r.HeadroomPercent), formatNumber(calc.MinHeadroomPercent))
		}
		return domain.AnswerResult{
			Answer: fmt.Sprintf(
				"The total speaker load of **%s W** %s the %s W transformer (%s).",
				formatNumber(r.TotalLoad), verdict,
				formatNumber(r.Capacity), note),
		}, nil

	case p.HasRecommend:
		r, err := calc.RecommendTransformer(p.RecommendFor)
		if err != nil {
			return domain.AnswerResult{}, err
		}
		answer := fmt.Sprintf(
			"For a %s W load, a **%s W** transformer is recommended (%s%% headroom).",
			formatNumber(r.LoadWatts), formatNumber(r.RecommendedWatts),
			formatNumber(r.HeadroomPercent))
		if len(r.Alternatives) > 0 {
			alts := make([]string, len(r.Alternatives))
			for i, a := range r.Alternatives {
				alts[i] = formatNumber(a)
			}
			answer += fmt.Sprintf(" Alternatives: %s W.", strings.Join(alts, ", "))
		}
		return domain.AnswerResult{Answer: answer}, nil

	case len(p.SpeakerWatts) > 0:
		total := calc.TotalPower(p.SpeakerWatts)
		return domain.AnswerResult{
			Answer: fmt.Sprintf(
				"The total power of %d speakers (%s) is **%s W**.",
				len(p.SpeakerWatts), joinNumbers(p.SpeakerWatts, " W"),
				formatNumber(total)),
		}, nil

	default:
		return domain.AnswerResult{}, fmt.Errorf(
			"no calculable parameters extracted: %w", domain.ErrInvalidTopology)
	}
}

// joinNumbers renders a slice like "8 ohm + 8 ohm + 8 ohm".
func joinNumbers(values []float64, unit string) string {
	parts := make([]string, len(values))
	for i, v := range values {
		parts[i] = formatNumber(v) + unit
	}
	return strings.Join(parts, " + ")
}
