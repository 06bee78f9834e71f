package chi

import (
	"github.com/tonehall/catalogqa/internal/domain"
)

// QueryRequest is the body of POST /query.
type QueryRequest struct {
	Query string `json:"query"`
}

// ErrorResponse is the uniform error body for the REST surfaces.
type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// ProductResponse is the catalog record for GET /products/{model}.
type ProductResponse struct {
	Model      string            `json:"model"`
	Category   string            `json:"category,omitempty"`
	Series     string            `json:"series,omitempty"`
	Voltage    string            `json:"voltage,omitempty"`
	PowerWatts *float64          `json:"power_watts,omitempty"`
	Specs      map[string]string `json:"specs,omitempty"`
	Summary    string            `json:"summary,omitempty"`
	SourceDoc  string            `json:"source_doc,omitempty"`
	SourcePage int               `json:"source_page,omitempty"`
}

// SearchResultItem is one ranked hit for GET /search.
type SearchResultItem struct {
	Model      string   `json:"model"`
	Similarity float64  `json:"similarity"`
	Category   string   `json:"category,omitempty"`
	Series     string   `json:"series,omitempty"`
	PowerWatts *float64 `json:"power_watts,omitempty"`
	Summary    string   `json:"summary,omitempty"`
}

// SearchResponse is the body of GET /search.
type SearchResponse struct {
	Items []SearchResultItem `json:"items"`
}

// HealthResponse is the body of GET /health.
type HealthResponse struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks"`
}

func productToDTO(p *domain.Product) ProductResponse {
	resp := ProductResponse{
		Model:      p.Model(),
		Category:   p.Category(),
		Series:     p.Series(),
		Voltage:    p.VoltageClass(),
		Specs:      p.Specs(),
		Summary:    p.Summary(),
		SourceDoc:  p.SourceDoc(),
		SourcePage: p.SourcePage(),
	}
	if watts, ok := p.PowerWatts(); ok {
		resp.PowerWatts = &watts
	}
	return resp
}

func candidateToDTO(c *domain.RetrievalCandidate) SearchResultItem {
	p := c.Product()
	item := SearchResultItem{
		Model:      p.Model(),
		Similarity: c.Similarity(),
		Category:   p.Category(),
		Series:     p.Series(),
		Summary:    p.Summary(),
	}
	if watts, ok := p.PowerWatts(); ok {
		item.PowerWatts = &watts
	}
	return item
}
