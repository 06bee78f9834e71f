package router

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/tonehall/catalogqa/internal/domain"
)

// modelPatterns recognize catalog model identifiers in free text. The shapes
// come from the catalog's naming conventions (AM10/60, DM3C, FS2SE, EM90-LP,
// IZA 250-LZ, PS404D, CC-2D, 250BL, VB1, ...).
var modelPatterns = compile([]string{
	`\b(AM\d+/\d+(?:/\d+)?)\b`,
	`\b(DM\d+[A-Z]*(?:-[A-Z]+)?)\b`,
	`\b(FS\d+[A-Z]*)\b`,
	`\b(EM\d+(?:-LP)?)\b`,
	`\b(IZA\s*\d+-?\w*)\b`,
	`\b(PS[X]?\d{3,4}[A-Z]*)\b`,
	`\b(P\d{4}[A-Z]?)\b`,
	`\b(CC-\d+D?)\b`,
	`\b(\d{3,4}B[LH])\b`,
	`\b(VB-?[S1]?)\b`,
})

var (
	minWattsRe    = regexp.MustCompile(`(?i)(?:over|above|more than|>)\s*(\d+)\s*W`)
	maxWattsRe    = regexp.MustCompile(`(?i)(?:under|below|less than|<)\s*(\d+)\s*W`)
	speakerSetRe  = regexp.MustCompile(`(?i)(\d+)\s*(?:×|x|speakers?\s*(?:at|@)?)\s*(\d+)\s*W`)
	transformerRe = regexp.MustCompile(`(?i)(\d+)\s*W\s*(?:transformer|amp|amplifier)`)
	anyWattsRe    = regexp.MustCompile(`(?i)(\d+)\s*W`)
	unitWattsRe   = regexp.MustCompile(`(?i)(\d+(?:\.\d+)?)\s*W\s*speakers?`)
	reductionRe   = regexp.MustCompile(`(?i)(\d+(?:\.\d+)?)\s*dB`)
	ohmsMultRe    = regexp.MustCompile(`(?i)(\d+)\s*(?:×|x)\s*(\d+(?:\.\d+)?)\s*(?:Ω|ohms?)`)
	ohmsRe        = regexp.MustCompile(`(?i)(\d+(?:\.\d+)?)\s*(?:Ω|ohms?)`)
)

// seriesKeywords maps lowercase vocabulary to canonical series names.
var seriesKeywords = []struct{ keyword, series string }{
	{"designmax", "DesignMax"},
	{"freespace", "FreeSpace"},
	{"arenamatch", "ArenaMatch"},
	{"edgemax", "EdgeMax"},
	{"powerspace", "PowerSpace"},
}

// extractModel returns the first model identifier found, uppercased,
// or "" when the query names no model.
func extractModel(query string) string {
	upper := strings.ToUpper(query)
	for _, p := range modelPatterns {
		if m := p.FindStringSubmatch(upper); m != nil {
			return m[1]
		}
	}
	return ""
}

// extractFilters pulls hard-filter constraints out of the query text.
func extractFilters(query string) domain.SearchFilters {
	var f domain.SearchFilters
	lower := strings.ToLower(query)

	if m := minWattsRe.FindStringSubmatch(query); m != nil {
		v, _ := strconv.ParseFloat(m[1], 64)
		f.MinWatts = &v
	}
	if m := maxWattsRe.FindStringSubmatch(query); m != nil {
		v, _ := strconv.ParseFloat(m[1], 64)
		f.MaxWatts = &v
	}

	has70 := strings.Contains(lower, "70v")
	has100 := strings.Contains(lower, "100v")
	switch {
	case has70 && has100:
		f.VoltageClass = "70V/100V"
	case has70:
		f.VoltageClass = "70V"
	case has100:
		f.VoltageClass = "100V"
	case strings.Contains(lower, "low-z") || strings.Contains(lower, "low z"):
		f.VoltageClass = "Low-Z"
	}

	switch {
	case strings.Contains(lower, "speaker"):
		f.Category = "loudspeaker"
	case strings.Contains(lower, "amp"):
		f.Category = "amplifier"
	case strings.Contains(lower, "controller"):
		f.Category = "controller"
	case strings.Contains(lower, "sub"):
		f.Category = "subwoofer"
	}

	for _, sk := range seriesKeywords {
		if strings.Contains(lower, sk.keyword) {
			f.Series = sk.series
			break
		}
	}

	return f
}

// extractCalcParams pulls numeric operands and topology for calculations.
func extractCalcParams(query string) domain.CalcParams {
	var p domain.CalcParams
	lower := strings.ToLower(query)

	if m := speakerSetRe.FindStringSubmatch(query); m != nil {
		count, _ := strconv.Atoi(m[1])
		watts, _ := strconv.ParseFloat(m[2], 64)
		p.SpeakerWatts = repeat(watts, count)
	}

	if m := transformerRe.FindStringSubmatch(query); m != nil {
		p.TransformerWatts, _ = strconv.ParseFloat(m[1], 64)
		p.HasTransformer = true
	}

	// "What transformer do I need for 200W" - sizing request
	if strings.Contains(lower, "transformer") && !p.HasTransformer {
		if m := anyWattsRe.FindStringSubmatch(query); m != nil {
			p.RecommendFor, _ = strconv.ParseFloat(m[1], 64)
			p.HasRecommend = true
		}
	}

	// "How many 10W speakers can a 100W transformer drive" - count request
	if strings.Contains(lower, "how many") && p.HasTransformer {
		if m := unitWattsRe.FindStringSubmatch(query); m != nil {
			p.UnitWatts, _ = strconv.ParseFloat(m[1], 64)
			p.HasMaxCount = true
		}
	}

	// "Which tap for a 6dB reduction on a 32W speaker" - tap selection.
	// A bare dB figure is not enough: sensitivity and SPL specs are quoted
	// in dB too.
	reductionCtx := strings.Contains(lower, "tap") || strings.Contains(lower, "reduc") ||
		strings.Contains(lower, "quieter") || strings.Contains(lower, "lower")
	if m := reductionRe.FindStringSubmatch(query); m != nil && reductionCtx {
		p.ReductionDB, _ = strconv.ParseFloat(m[1], 64)
		p.HasReduction = true
		if m := unitWattsRe.FindStringSubmatch(query); m != nil {
			p.UnitWatts, _ = strconv.ParseFloat(m[1], 64)
		} else if m := anyWattsRe.FindStringSubmatch(query); m != nil {
			p.UnitWatts, _ = strconv.ParseFloat(m[1], 64)
		}
	}

	if m := ohmsMultRe.FindStringSubmatch(query); m != nil {
		count, _ := strconv.Atoi(m[1])
		ohms, _ := strconv.ParseFloat(m[2], 64)
		p.Impedances = repeat(ohms, count)
	} else if ms := ohmsRe.FindAllStringSubmatch(query, -1); ms != nil {
		for _, m := range ms {
			z, _ := strconv.ParseFloat(m[1], 64)
			p.Impedances = append(p.Impedances, z)
		}
	}

	if strings.Contains(lower, "series") {
		p.Topology = domain.TopologySeries
	} else if strings.Contains(lower, "parallel") {
		p.Topology = domain.TopologyParallel
	}

	return p
}

func repeat(v float64, n int) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = v
	}
	return out
}
