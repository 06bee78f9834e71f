package domain

// Intent is the closed set of query categories. Exactly one intent is
// assigned per query and it never changes within the query's lifecycle.
type Intent string

const (
	// IntentDirectLookup asks for the specs of a named model.
	IntentDirectLookup Intent = "direct_lookup"
	// IntentSemanticSearch asks for products matching criteria.
	IntentSemanticSearch Intent = "semantic_search"
	// IntentCalculation asks for electrical math.
	IntentCalculation Intent = "calculation"
	// IntentPurchase asks about price, stock, or availability.
	IntentPurchase Intent = "purchase_intent"
	// IntentDomainViolation mentions out-of-domain competitor products.
	IntentDomainViolation Intent = "domain_violation"
	// IntentUnknown is the degraded result when classification fails.
	IntentUnknown Intent = "unknown"
)

// String implements fmt.Stringer.
func (i Intent) String() string { return string(i) }

// Topology selects how impedances are combined.
type Topology string

const (
	// TopologySeries sums impedances.
	TopologySeries Topology = "series"
	// TopologyParallel combines reciprocals.
	TopologyParallel Topology = "parallel"
)

// CalcParams are the numeric operands extracted from a calculation query.
type CalcParams struct {
	SpeakerWatts     []float64 // per-unit wattages, e.g. 4x30W -> [30 30 30 30]
	TransformerWatts float64
	HasTransformer   bool
	Impedances       []float64
	Topology         Topology // "" when no topology was stated
	RecommendFor     float64  // load for a transformer size recommendation
	HasRecommend     bool
	UnitWatts        float64 // single per-unit wattage for count and tap questions
	HasMaxCount      bool    // "how many speakers fit" sizing question
	ReductionDB      float64 // desired SPL reduction for tap selection
	HasReduction     bool
}

// IsEmpty reports whether nothing numeric was extracted.
func (p CalcParams) IsEmpty() bool {
	return len(p.SpeakerWatts) == 0 && len(p.Impedances) == 0 &&
		!p.HasTransformer && !p.HasRecommend && !p.HasMaxCount && !p.HasReduction
}

// SearchFilters are the structured constraints extracted for hard filtering.
// Zero values mean "unconstrained"; textual fields match partially and
// case-insensitively because source vocabulary varies.
type SearchFilters struct {
	Category     string
	Series       string
	VoltageClass string
	MinWatts     *float64
	MaxWatts     *float64
}

// IsEmpty reports whether no constraint was extracted.
func (f SearchFilters) IsEmpty() bool {
	return f.Category == "" && f.Series == "" && f.VoltageClass == "" &&
		f.MinWatts == nil && f.MaxWatts == nil
}

// Entities are the structured values the router extracts alongside an intent.
type Entities struct {
	Model   string
	Filters SearchFilters
	Calc    CalcParams
}

// Classification is the router's output: one intent plus extracted entities.
type Classification struct {
	Intent   Intent
	Entities Entities
}
