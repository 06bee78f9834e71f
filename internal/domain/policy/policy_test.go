package policy

import (
	"strings"
	"testing"

	"github.com/tonehall/catalogqa/internal/domain"
)

func TestIsBlocked(t *testing.T) {
	blocked := []domain.Intent{domain.IntentPurchase, domain.IntentDomainViolation}
	for _, in := range blocked {
		if !IsBlocked(in) {
			t.Errorf("expected %q to be blocked", in)
		}
	}

	allowed := []domain.Intent{
		domain.IntentDirectLookup,
		domain.IntentSemanticSearch,
		domain.IntentCalculation,
		domain.IntentUnknown,
	}
	for _, in := range allowed {
		if IsBlocked(in) {
			t.Errorf("expected %q not to be blocked", in)
		}
	}
}

func TestBlockedResult_Purchase(t *testing.T) {
	res, ok := BlockedResult(domain.IntentPurchase)
	if !ok {
		t.Fatal("expected a blocked result for purchase intent")
	}
	if res.Answer != PurchaseText {
		t.Errorf("answer must be the fixed purchase text, got %q", res.Answer)
	}
	if res.Code != domain.CodePurchaseBlocked {
		t.Errorf("code = %q, want %q", res.Code, domain.CodePurchaseBlocked)
	}
	if res.Confidence != domain.ConfidenceHigh {
		t.Errorf("confidence = %q, want HIGH", res.Confidence)
	}
}

func TestBlockedResult_DomainViolation(t *testing.T) {
	res, ok := BlockedResult(domain.IntentDomainViolation)
	if !ok {
		t.Fatal("expected a blocked result for domain violation intent")
	}
	if res.Answer != ViolationText {
		t.Errorf("answer must be the fixed violation text, got %q", res.Answer)
	}
	if res.Code != domain.CodeDomainViolation {
		t.Errorf("code = %q, want %q", res.Code, domain.CodeDomainViolation)
	}
}

func TestBlockedResult_NotBlocked(t *testing.T) {
	if _, ok := BlockedResult(domain.IntentSemanticSearch); ok {
		t.Error("semantic search must not produce a blocked result")
	}
}

func TestPromptGuard_ForbidsCommercialContent(t *testing.T) {
	guard := PromptGuard()
	for _, term := range []string{"prices", "stock", "availability", "competitor"} {
		if !strings.Contains(guard, term) {
			t.Errorf("prompt guard missing %q", term)
		}
	}
}
