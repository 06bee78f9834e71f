// Package policy is the single source of truth for the blocked-response
// policy. Three call sites consult it independently - router exit, composer
// entry, and generation-prompt construction - so a misroute at any one layer
// cannot produce a disallowed answer. The redundancy is intentional.
package policy

import "github.com/tonehall/catalogqa/internal/domain"

// Fixed, pre-approved response texts. Their exact wording is a compliance
// requirement; never paraphrase or template them.
const (
	// PurchaseText answers any commercial query.
	PurchaseText = "I am a technical assistant and cannot discuss pricing, " +
		"stock, or availability. Please contact your sales representative."
	// ViolationText answers any out-of-domain competitor query.
	ViolationText = "I can only provide information on products in this catalog."
	// AbstentionText is the fixed insufficient-evidence response.
	AbstentionText = "I don't have enough verified product data to answer that. " +
		"Please check the model name or try different criteria."
)

// IsBlocked reports whether an intent belongs to a hard-blocked response
// category. Blocked intents must never reach a model provider call.
func IsBlocked(intent domain.Intent) bool {
	return intent == domain.IntentPurchase || intent == domain.IntentDomainViolation
}

// BlockedResult returns the fixed answer for a blocked intent, or ok=false
// when the intent is not blocked.
func BlockedResult(intent domain.Intent) (domain.AnswerResult, bool) {
	switch intent {
	case domain.IntentPurchase:
		return domain.AnswerResult{
			Answer:     PurchaseText,
			Confidence: domain.ConfidenceHigh,
			Code:       domain.CodePurchaseBlocked,
			Intent:     intent,
		}, true
	case domain.IntentDomainViolation:
		return domain.AnswerResult{
			Answer:     ViolationText,
			Confidence: domain.ConfidenceHigh,
			Code:       domain.CodeDomainViolation,
			Intent:     intent,
		}, true
	default:
		return domain.AnswerResult{}, false
	}
}

// PromptGuard is appended to every generation prompt. It forbids the
// generator from introducing blocked content even if the query was misrouted
// past the first two layers.
func PromptGuard() string {
	return "You are prohibited from discussing prices, discounts, stock " +
		"levels, availability, ordering, or competitor products, even if asked. " +
		"Use ONLY the product data provided. Never invent specifications."
}
