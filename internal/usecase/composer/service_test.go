package composer

import (
	"context"
	"errors"
	"strings"
	"testing"

	"go.uber.org/zap"

	"github.com/tonehall/catalogqa/internal/domain"
	"github.com/tonehall/catalogqa/internal/domain/policy"
)

// --- Mocks ---

type mockGenerator struct {
	answer  string
	err     error
	calls   int
	prompts []string
}

func (m *mockGenerator) Generate(_ context.Context, prompt string) (string, error) {
	m.calls++
	m.prompts = append(m.prompts, prompt)
	return m.answer, m.err
}

func newTestService(g *mockGenerator) *Service {
	return New(g, Config{StrictThreshold: 0.75}, zap.NewNop())
}

func testProduct(model string, watts float64, specs map[string]string) domain.Product {
	return domain.NewProduct(domain.ProductParams{
		Model:      model,
		Category:   "loudspeaker",
		PowerWatts: watts,
		HasPower:   watts > 0,
		Specs:      specs,
		SourceDoc:  "catalog.pdf",
		SourcePage: 12,
	})
}

// --- Blocked ---

func TestBlocked_Purchase(t *testing.T) {
	g := &mockGenerator{}
	svc := newTestService(g)

	result, ok := svc.Blocked(domain.IntentPurchase)
	if !ok {
		t.Fatal("expected blocked result")
	}
	if result.Answer != policy.PurchaseText {
		t.Errorf("answer must be the fixed purchase text, got %q", result.Answer)
	}
	if result.Code != domain.CodePurchaseBlocked {
		t.Errorf("expected %s, got %s", domain.CodePurchaseBlocked, result.Code)
	}
	if g.calls != 0 {
		t.Errorf("blocked intents must never reach the generator, got %d calls", g.calls)
	}
}

func TestBlocked_Violation(t *testing.T) {
	svc := newTestService(&mockGenerator{})

	result, ok := svc.Blocked(domain.IntentDomainViolation)
	if !ok {
		t.Fatal("expected blocked result")
	}
	if result.Answer != policy.ViolationText {
		t.Errorf("answer must be the fixed violation text, got %q", result.Answer)
	}
}

func TestBlocked_PassThrough(t *testing.T) {
	svc := newTestService(&mockGenerator{})

	if _, ok := svc.Blocked(domain.IntentSemanticSearch); ok {
		t.Error("semantic search must not be blocked")
	}
}

// --- Abstain ---

func TestAbstain(t *testing.T) {
	svc := newTestService(&mockGenerator{})

	result := svc.Abstain(domain.IntentDirectLookup, domain.CodeInvalidModel)
	if result.Answer != policy.AbstentionText {
		t.Errorf("answer must be the fixed abstention text, got %q", result.Answer)
	}
	if result.Confidence != domain.ConfidenceLow {
		t.Errorf("expected LOW confidence, got %s", result.Confidence)
	}
	if result.Code != domain.CodeInvalidModel {
		t.Errorf("expected INVALID_MODEL, got %s", result.Code)
	}
}

// --- Lookup ---

func TestLookup_SpecSheet(t *testing.T) {
	svc := newTestService(&mockGenerator{})
	p := testProduct("AM10/60", 125, map[string]string{
		"sensitivity_db": "87",
		"mounting":       "flush",
	})

	result := svc.Lookup(&p)
	if result.Confidence != domain.ConfidenceHigh {
		t.Errorf("expected HIGH confidence, got %s", result.Confidence)
	}
	if result.Intent != domain.IntentDirectLookup {
		t.Errorf("expected direct lookup intent, got %s", result.Intent)
	}
	if !strings.Contains(result.Answer, "**AM10/60**") {
		t.Errorf("answer must name the model, got %q", result.Answer)
	}
	if !strings.Contains(result.Answer, "Power: 125 W") {
		t.Errorf("answer must carry the power line, got %q", result.Answer)
	}
	if !strings.Contains(result.Answer, "Sensitivity: 87 dB") {
		t.Errorf("answer must carry the sensitivity line, got %q", result.Answer)
	}
	if !strings.Contains(result.Answer, "mounting: flush") {
		t.Errorf("unmapped attributes must still appear, got %q", result.Answer)
	}
}

func TestLookup_EveryValueCited(t *testing.T) {
	svc := newTestService(&mockGenerator{})
	p := testProduct("DM3C", 60, map[string]string{"sensitivity_db": "86"})

	result := svc.Lookup(&p)
	if len(result.Citations) != 2 {
		t.Fatalf("expected 2 citations, got %d", len(result.Citations))
	}
	for _, c := range result.Citations {
		if c.Model != "DM3C" || c.SourceDoc != "catalog.pdf" || c.SourcePage != 12 {
			t.Errorf("citation missing provenance: %+v", c)
		}
	}
	if result.Citations[0].Attribute != "power_watts" || result.Citations[0].Value != "60" {
		t.Errorf("expected power citation first, got %+v", result.Citations[0])
	}
}

func TestLookup_Idempotent(t *testing.T) {
	svc := newTestService(&mockGenerator{})
	p := testProduct("FS2SE", 16, map[string]string{
		"coverage":  "160 conical",
		"weight_kg": "0.91",
		"aperture":  "narrow",
		"backcan":   "included",
	})

	first := svc.Lookup(&p)
	second := svc.Lookup(&p)
	if first.Answer != second.Answer {
		t.Error("repeated lookups must produce byte-identical answers")
	}
	if len(first.Citations) != len(second.Citations) {
		t.Fatal("citation counts differ between repeats")
	}
	for i := range first.Citations {
		if first.Citations[i] != second.Citations[i] {
			t.Errorf("citation %d differs between repeats", i)
		}
	}
}

// --- Search ---

func TestSearch_NoEvidence(t *testing.T) {
	g := &mockGenerator{}
	svc := newTestService(g)

	result, err := svc.Search(context.Background(), "q", nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Code != domain.CodeNoEvidence {
		t.Errorf("expected NO_EVIDENCE, got %s", result.Code)
	}
	if result.Answer != policy.AbstentionText {
		t.Errorf("expected the fixed abstention text, got %q", result.Answer)
	}
	if g.calls != 0 {
		t.Errorf("no evidence must not reach the generator, got %d calls", g.calls)
	}
}

func TestSearch_PromptCarriesGuard(t *testing.T) {
	g := &mockGenerator{answer: "The DM3C fits."}
	svc := newTestService(g)
	cands := []domain.RetrievalCandidate{
		domain.NewCandidate(testProduct("DM3C", 60, nil), 0.9),
	}

	if _, err := svc.Search(context.Background(), "ceiling speaker", cands); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if g.calls != 1 {
		t.Fatalf("expected 1 generator call, got %d", g.calls)
	}
	if !strings.Contains(g.prompts[0], policy.PromptGuard()) {
		t.Error("generation prompt must carry the policy guard clause")
	}
	if !strings.Contains(g.prompts[0], "DM3C") {
		t.Error("generation prompt must carry the evidence")
	}
}

func TestSearch_CitesMentionedProducts(t *testing.T) {
	g := &mockGenerator{answer: "The DM3C is the best fit here."}
	svc := newTestService(g)
	cands := []domain.RetrievalCandidate{
		domain.NewCandidate(testProduct("DM3C", 60, nil), 0.9),
		domain.NewCandidate(testProduct("FS2SE", 16, nil), 0.8),
	}

	result, err := svc.Search(context.Background(), "q", cands)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(result.Citations) != 1 || result.Citations[0].Model != "DM3C" {
		t.Errorf("expected one citation for the mentioned model, got %+v", result.Citations)
	}
}

func TestSearch_CitesAllWhenNoneMentioned(t *testing.T) {
	g := &mockGenerator{answer: "Several ceiling options would work."}
	svc := newTestService(g)
	cands := []domain.RetrievalCandidate{
		domain.NewCandidate(testProduct("DM3C", 60, nil), 0.9),
		domain.NewCandidate(testProduct("FS2SE", 16, nil), 0.8),
	}

	result, err := svc.Search(context.Background(), "q", cands)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(result.Citations) != 2 {
		t.Errorf("expected all candidates cited, got %d", len(result.Citations))
	}
}

func TestSearch_HighConfidence(t *testing.T) {
	g := &mockGenerator{answer: "Both the DM3C and the FS2SE fit."}
	svc := newTestService(g)
	cands := []domain.RetrievalCandidate{
		domain.NewCandidate(testProduct("DM3C", 60, nil), 0.9),
		domain.NewCandidate(testProduct("FS2SE", 16, nil), 0.8),
	}

	result, err := svc.Search(context.Background(), "q", cands)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Confidence != domain.ConfidenceHigh {
		t.Errorf("expected HIGH confidence, got %s", result.Confidence)
	}
}

func TestSearch_MediumConfidenceBelowThreshold(t *testing.T) {
	g := &mockGenerator{answer: "Both the DM3C and the FS2SE fit."}
	svc := newTestService(g)
	cands := []domain.RetrievalCandidate{
		domain.NewCandidate(testProduct("DM3C", 60, nil), 0.6),
		domain.NewCandidate(testProduct("FS2SE", 16, nil), 0.55),
	}

	result, err := svc.Search(context.Background(), "q", cands)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Confidence != domain.ConfidenceMedium {
		t.Errorf("expected MEDIUM confidence, got %s", result.Confidence)
	}
}

func TestSearch_FallbackOnGeneratorError(t *testing.T) {
	g := &mockGenerator{err: errors.New("provider down")}
	svc := newTestService(g)
	cands := []domain.RetrievalCandidate{
		domain.NewCandidate(testProduct("DM3C", 60, nil), 0.9),
	}

	result, err := svc.Search(context.Background(), "q", cands)
	if err != nil {
		t.Fatalf("fallback must not error: %v", err)
	}
	if !strings.Contains(result.Answer, "DM3C") {
		t.Errorf("fallback must list the evidence, got %q", result.Answer)
	}
	if result.Confidence != domain.ConfidenceMedium {
		t.Errorf("fallback answers cap at MEDIUM, got %s", result.Confidence)
	}
}

func TestSearch_TimeoutPropagates(t *testing.T) {
	g := &mockGenerator{err: domain.ErrUpstreamTimeout}
	svc := newTestService(g)
	cands := []domain.RetrievalCandidate{
		domain.NewCandidate(testProduct("DM3C", 60, nil), 0.9),
	}

	_, err := svc.Search(context.Background(), "q", cands)
	if !errors.Is(err, domain.ErrUpstreamTimeout) {
		t.Errorf("expected ErrUpstreamTimeout, got %v", err)
	}
}

// --- Calculation ---

func TestCalculation_Compatibility(t *testing.T) {
	svc := newTestService(&mockGenerator{})
	result := svc.Calculation(domain.CalcParams{
		SpeakerWatts:     []float64{30, 30, 30, 30},
		TransformerWatts: 150,
		HasTransformer:   true,
	})

	if result.Code != "" {
		t.Fatalf("expected a successful calculation, got code %s", result.Code)
	}
	if result.Confidence != domain.ConfidenceHigh {
		t.Errorf("expected HIGH confidence, got %s", result.Confidence)
	}
	for _, want := range []string{"120 W", "150 W", "20% headroom"} {
		if !strings.Contains(result.Answer, want) {
			t.Errorf("answer missing %q: %q", want, result.Answer)
		}
	}
}

func TestCalculation_Impedance(t *testing.T) {
	svc := newTestService(&mockGenerator{})
	result := svc.Calculation(domain.CalcParams{
		Impedances: []float64{8, 8, 8},
		Topology:   domain.TopologyParallel,
	})

	if !strings.Contains(result.Answer, "**2.7 ohms**") {
		t.Errorf("expected 2.7 ohms, got %q", result.Answer)
	}
}

func TestCalculation_TotalPower(t *testing.T) {
	svc := newTestService(&mockGenerator{})
	result := svc.Calculation(domain.CalcParams{SpeakerWatts: []float64{30, 30}})

	if !strings.Contains(result.Answer, "**60 W**") {
		t.Errorf("expected total 60 W, got %q", result.Answer)
	}
}

func TestCalculation_Recommend(t *testing.T) {
	svc := newTestService(&mockGenerator{})
	result := svc.Calculation(domain.CalcParams{RecommendFor: 200, HasRecommend: true})

	if !strings.Contains(result.Answer, "**250 W**") {
		t.Errorf("expected 250 W recommendation, got %q", result.Answer)
	}
}

func TestCalculation_MaxSpeakers(t *testing.T) {
	svc := newTestService(&mockGenerator{})
	result := svc.Calculation(domain.CalcParams{
		TransformerWatts: 100,
		HasTransformer:   true,
		UnitWatts:        10,
		HasMaxCount:      true,
	})

	if result.Code != "" {
		t.Fatalf("expected a successful calculation, got code %s", result.Code)
	}
	for _, want := range []string{"**8** speakers", "80 W", "20% headroom"} {
		if !strings.Contains(result.Answer, want) {
			t.Errorf("answer missing %q: %q", want, result.Answer)
		}
	}
}

func TestCalculation_TapSelection(t *testing.T) {
	svc := newTestService(&mockGenerator{})
	result := svc.Calculation(domain.CalcParams{
		ReductionDB:  6,
		UnitWatts:    32,
		HasReduction: true,
	})

	if result.Code != "" {
		t.Fatalf("expected a successful calculation, got code %s", result.Code)
	}
	if !strings.Contains(result.Answer, "**8 W** tap") {
		t.Errorf("expected the 8 W tap, got %q", result.Answer)
	}
	if !strings.Contains(result.Answer, "6 dB") {
		t.Errorf("answer missing the actual reduction: %q", result.Answer)
	}
}

func TestCalculation_InvalidInput(t *testing.T) {
	svc := newTestService(&mockGenerator{})
	result := svc.Calculation(domain.CalcParams{
		Impedances: []float64{8, 0},
		Topology:   domain.TopologyParallel,
	})

	if result.Code != domain.CodeCalculationError {
		t.Errorf("expected CALCULATION_ERROR, got %s", result.Code)
	}
	if result.Answer != policy.AbstentionText {
		t.Errorf("invalid input must abstain, not answer partially: %q", result.Answer)
	}
}

func TestCalculation_NothingExtracted(t *testing.T) {
	svc := newTestService(&mockGenerator{})
	result := svc.Calculation(domain.CalcParams{})

	if result.Code != domain.CodeCalculationError {
		t.Errorf("expected CALCULATION_ERROR, got %s", result.Code)
	}
}
