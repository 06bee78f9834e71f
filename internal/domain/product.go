package domain

// Product is a single catalog record. The store owns it; the query engine
// reads it and never writes. Derived scalar fields may be absent (zero value
// plus the matching Has accessor reporting false), never a placeholder.
type Product struct {
	model        string
	category     string
	series       string
	voltageClass string
	powerWatts   float64
	hasPower     bool
	specs        map[string]string
	summary      string
	embedding    []float32
	sourceDoc    string
	sourcePage   int
}

// ProductParams carries the fields for constructing a Product.
type ProductParams struct {
	Model        string
	Category     string
	Series       string
	VoltageClass string
	PowerWatts   float64
	HasPower     bool
	Specs        map[string]string
	Summary      string
	Embedding    []float32
	SourceDoc    string
	SourcePage   int
}

// NewProduct constructs a Product from repository data.
func NewProduct(p ProductParams) Product {
	return Product{
		model:        p.Model,
		category:     p.Category,
		series:       p.Series,
		voltageClass: p.VoltageClass,
		powerWatts:   p.PowerWatts,
		hasPower:     p.HasPower,
		specs:        p.Specs,
		summary:      p.Summary,
		embedding:    p.Embedding,
		sourceDoc:    p.SourceDoc,
		sourcePage:   p.SourcePage,
	}
}

// Model returns the globally unique model identifier.
func (p *Product) Model() string { return p.model }

// Category returns the product category ("" when unknown).
func (p *Product) Category() string { return p.category }

// Series returns the product series ("" when unknown).
func (p *Product) Series() string { return p.series }

// VoltageClass returns the voltage class ("" when unknown).
func (p *Product) VoltageClass() string { return p.voltageClass }

// PowerWatts returns the rated power and whether it is known.
func (p *Product) PowerWatts() (float64, bool) { return p.powerWatts, p.hasPower }

// Specs returns the flexible attribute map.
func (p *Product) Specs() map[string]string { return p.specs }

// Summary returns the generated descriptive summary ("" when absent).
func (p *Product) Summary() string { return p.summary }

// Embedding returns the record's embedding vector (nil when not embedded).
func (p *Product) Embedding() []float32 { return p.embedding }

// SourceDoc returns the provenance document name.
func (p *Product) SourceDoc() string { return p.sourceDoc }

// SourcePage returns the provenance page number (0 when unknown).
func (p *Product) SourcePage() int { return p.sourcePage }
