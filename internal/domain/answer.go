package domain

// Confidence grades the evidence behind an answer.
type Confidence string

const (
	// ConfidenceLow marks abstentions and single weak matches.
	ConfidenceLow Confidence = "LOW"
	// ConfidenceMedium marks marginal but present evidence.
	ConfidenceMedium Confidence = "MEDIUM"
	// ConfidenceHigh marks strong, corroborated evidence.
	ConfidenceHigh Confidence = "HIGH"
)

// Code identifies a structured failure category surfaced to the caller.
type Code string

const (
	// CodeNoEvidence - retrieval produced nothing usable.
	CodeNoEvidence Code = "NO_EVIDENCE"
	// CodeInvalidModel - the lookup target does not exist.
	CodeInvalidModel Code = "INVALID_MODEL"
	// CodeAmbiguousQuery - classification degraded to unknown.
	CodeAmbiguousQuery Code = "AMBIGUOUS_QUERY"
	// CodeCalculationError - invalid numeric input or topology.
	CodeCalculationError Code = "CALCULATION_ERROR"
	// CodeUpstreamTimeout - an external dependency exceeded its deadline twice.
	CodeUpstreamTimeout Code = "UPSTREAM_TIMEOUT"
	// CodePurchaseBlocked - commercial intent, hard-blocked.
	CodePurchaseBlocked Code = "PURCHASE_INTENT_BLOCKED"
	// CodeDomainViolation - out-of-domain competitor query, hard-blocked.
	CodeDomainViolation Code = "DOMAIN_VIOLATION"
)

// Citation ties one factual claim to a stored record. Attribute names the
// spec field backing the claim; SourceDoc/SourcePage carry provenance.
type Citation struct {
	Model      string `json:"model"`
	Attribute  string `json:"attribute,omitempty"`
	Value      string `json:"value,omitempty"`
	SourceDoc  string `json:"source_doc,omitempty"`
	SourcePage int    `json:"source_page,omitempty"`
}

// AnswerResult is the engine's final output. Constructed fresh per query and
// never mutated after the composer returns it.
type AnswerResult struct {
	Answer     string     `json:"answer"`
	Citations  []Citation `json:"citations"`
	Confidence Confidence `json:"confidence"`
	Code       Code       `json:"code,omitempty"`
	Intent     Intent     `json:"intent"`
}
