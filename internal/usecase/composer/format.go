package composer

import (
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"

	"github.com/tonehall/catalogqa/internal/domain"
)

// specView maps a stored attribute key to its display label and unit.
// The table drives both answer formatting and citation emission, so every
// displayed value carries a citation. Order is the display order.
var specView = []struct{ key, label, unit string }{
	{"power_watts", "Power", "W"},
	{"freq_min_hz", "Freq Min", "Hz"},
	{"freq_max_hz", "Freq Max", "Hz"},
	{"freq_response", "Freq Response", ""},
	{"impedance_ohms", "Impedance", "ohm"},
	{"sensitivity_db", "Sensitivity", "dB"},
	{"coverage", "Coverage", ""},
	{"voltage_type", "Voltage", ""},
	{"driver_components", "Drivers", ""},
	{"weight_kg", "Weight", "kg"},
	{"color_options", "Colors", ""},
	{"environmental", "Environmental", ""},
}

// viewedKeys is the set of keys rendered via specView.
var viewedKeys = func() map[string]bool {
	m := make(map[string]bool, len(specView))
	for _, v := range specView {
		m[v.key] = true
	}
	return m
}()

// specLines renders a product's attributes in a deterministic order and
// returns the matching citations. Unmapped attributes follow the mapped
// ones, sorted by key, so repeated queries format byte-identically.
func specLines(p *domain.Product) ([]string, []domain.Citation) {
	var lines []string
	var cites []domain.Citation

	add := func(key, label, unit, value string) {
		if unit != "" {
			lines = append(lines, fmt.Sprintf("- %s: %s %s", label, value, unit))
		} else {
			lines = append(lines, fmt.Sprintf("- %s: %s", label, value))
		}
		cites = append(cites, domain.Citation{
			Model:      p.Model(),
			Attribute:  key,
			Value:      value,
			SourceDoc:  p.SourceDoc(),
			SourcePage: p.SourcePage(),
		})
	}

	specs := p.Specs()

	if watts, ok := p.PowerWatts(); ok {
		add("power_watts", "Power", "W", formatNumber(watts))
	}

	for _, v := range specView {
		if v.key == "power_watts" {
			continue // derived scalar rendered above
		}
		if val, ok := specs[v.key]; ok && val != "" {
			add(v.key, v.label, v.unit, val)
		}
	}

	rest := make([]string, 0, len(specs))
	for k := range specs {
		if !viewedKeys[k] {
			rest = append(rest, k)
		}
	}
	sort.Strings(rest)
	for _, k := range rest {
		if specs[k] != "" {
			add(k, k, "", specs[k])
		}
	}

	return lines, cites
}

// productBlock renders one product as evidence for the generation prompt.
func productBlock(i int, c *domain.RetrievalCandidate) string {
	p := c.Product()
	var b strings.Builder
	fmt.Fprintf(&b, "### Product %d: %s\n", i, p.Model())
	if p.Category() != "" {
		fmt.Fprintf(&b, "  Category: %s\n", p.Category())
	}
	if p.Series() != "" {
		fmt.Fprintf(&b, "  Series: %s\n", p.Series())
	}
	if p.VoltageClass() != "" {
		fmt.Fprintf(&b, "  Voltage: %s\n", p.VoltageClass())
	}
	lines, _ := specLines(p)
	for _, l := range lines {
		fmt.Fprintf(&b, "  %s\n", strings.TrimPrefix(l, "- "))
	}
	if p.Summary() != "" {
		fmt.Fprintf(&b, "  Summary: %s\n", p.Summary())
	}
	return b.String()
}

// formatNumber renders floats without trailing zeros (125 not 125.000000).
func formatNumber(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// round1 rounds to one decimal place for display.
func round1(v float64) float64 {
	return math.Round(v*10) / 10
}
