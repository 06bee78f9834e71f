// Package calc provides deterministic electrical math for constant-voltage
// (70V/100V) and low-impedance systems. Every function is pure: no I/O, no
// randomness, no model involvement. Identical inputs produce bit-identical
// outputs on every call.
package calc

import (
	"fmt"
	"math"

	"github.com/tonehall/catalogqa/internal/domain"
)

// Recommended headroom bounds, percent of transformer capacity.
const (
	MinHeadroomPercent         = 10.0
	RecommendedHeadroomPercent = 20.0
)

// StandardTransformerSizes are the common 70V transformer capacities in watts.
var StandardTransformerSizes = []float64{50, 70, 100, 125, 150, 200, 250, 300, 500, 1000}

// standardTaps are typical wattage tap positions on 70V speakers.
var standardTaps = []float64{0.5, 1, 2, 4, 8, 16, 32, 64, 128}

// TotalPower sums per-unit wattages. An empty input sums to zero.
func TotalPower(watts []float64) float64 {
	var total float64
	for _, w := range watts {
		total += w
	}
	return total
}

// CompatibilityResult is the outcome of a transformer load check.
type CompatibilityResult struct {
	Compatible      bool
	TotalLoad       float64
	Capacity        float64
	HeadroomPercent float64 // rounded to one decimal
}

// Compatibility checks whether a speaker load fits a transformer capacity.
// Headroom is the spare margin as a percentage of capacity.
func Compatibility(totalLoad, capacity float64) (CompatibilityResult, error) {
	if capacity <= 0 {
		return CompatibilityResult{}, fmt.Errorf(
			"capacity must be positive, got %g: %w", capacity, domain.ErrInvalidCapacity)
	}

	headroom := (capacity - totalLoad) / capacity * 100

	return CompatibilityResult{
		Compatible:      totalLoad <= capacity,
		TotalLoad:       totalLoad,
		Capacity:        capacity,
		HeadroomPercent: round1(headroom),
	}, nil
}

// Impedance combines speaker impedances for the given topology.
// Series sums; parallel takes the reciprocal of the sum of reciprocals and
// rejects non-positive values (reciprocal undefined at zero).
func Impedance(values []float64, topology domain.Topology) (float64, error) {
	if len(values) == 0 {
		return 0, fmt.Errorf("at least one impedance is required: %w", domain.ErrInvalidImpedance)
	}

	switch topology {
	case domain.TopologySeries:
		var total float64
		for _, z := range values {
			total += z
		}
		return total, nil

	case domain.TopologyParallel:
		var sum float64
		for _, z := range values {
			if z <= 0 {
				return 0, fmt.Errorf(
					"impedance %g is not positive in parallel combination: %w",
					z, domain.ErrInvalidImpedance)
			}
			sum += 1 / z
		}
		return 1 / sum, nil

	default:
		return 0, fmt.Errorf("topology %q: %w", topology, domain.ErrInvalidTopology)
	}
}

// Recommendation is a transformer size suggestion for a given load.
type Recommendation struct {
	LoadWatts        float64
	RecommendedWatts float64
	HeadroomPercent  float64
	Alternatives     []float64
}

// RecommendTransformer picks the smallest standard transformer size that
// leaves the recommended headroom over the load, falling back to the largest
// size when nothing fits.
func RecommendTransformer(loadWatts float64) (Recommendation, error) {
	if loadWatts <= 0 {
		return Recommendation{}, fmt.Errorf(
			"load must be positive, got %g: %w", loadWatts, domain.ErrInvalidCapacity)
	}

	minRequired := loadWatts * (1 + RecommendedHeadroomPercent/100)

	recommended := StandardTransformerSizes[len(StandardTransformerSizes)-1]
	for _, size := range StandardTransformerSizes {
		if size >= minRequired {
			recommended = size
			break
		}
	}

	var alternatives []float64
	for _, size := range StandardTransformerSizes {
		if size >= loadWatts && size != recommended {
			alternatives = append(alternatives, size)
			if len(alternatives) == 2 {
				break
			}
		}
	}

	headroom := (recommended - loadWatts) / recommended * 100

	return Recommendation{
		LoadWatts:        loadWatts,
		RecommendedWatts: recommended,
		HeadroomPercent:  round1(headroom),
		Alternatives:     alternatives,
	}, nil
}

// SpeakerCount is the result of a max-speakers-per-transformer calculation.
type SpeakerCount struct {
	MaxSpeakers     int
	SpeakerWatts    float64
	TotalLoad       float64
	Capacity        float64
	HeadroomPercent float64
}

// MaxSpeakers computes how many identical speakers a transformer carries
// while keeping the target headroom.
func MaxSpeakers(capacity, speakerWatts, headroomPercent float64) (SpeakerCount, error) {
	if capacity <= 0 {
		return SpeakerCount{}, fmt.Errorf(
			"capacity must be positive, got %g: %w", capacity, domain.ErrInvalidCapacity)
	}
	if speakerWatts <= 0 {
		return SpeakerCount{}, fmt.Errorf(
			"speaker wattage must be positive, got %g: %w", speakerWatts, domain.ErrInvalidImpedance)
	}

	usable := capacity * (1 - headroomPercent/100)
	count := int(usable / speakerWatts)
	load := float64(count) * speakerWatts

	return SpeakerCount{
		MaxSpeakers:     count,
		SpeakerWatts:    speakerWatts,
		TotalLoad:       load,
		Capacity:        capacity,
		HeadroomPercent: round1((capacity - load) / capacity * 100),
	}, nil
}

// TapChoice is the selected wattage tap for a desired SPL reduction.
type TapChoice struct {
	TargetWatts       float64
	TapWatts          float64
	ActualReductionDB float64
}

// TapForReduction selects the standard tap closest to the power implied by
// the desired SPL reduction (each -3 dB halves power).
func TapForReduction(reductionDB, fullPowerWatts float64) (TapChoice, error) {
	if fullPowerWatts <= 0 {
		return TapChoice{}, fmt.Errorf(
			"full power must be positive, got %g: %w", fullPowerWatts, domain.ErrInvalidCapacity)
	}
	if reductionDB <= 0 {
		return TapChoice{TapWatts: fullPowerWatts}, nil
	}

	target := fullPowerWatts * math.Pow(10, -reductionDB/10)

	tap := standardTaps[0]
	best := math.Abs(tap - target)
	for _, t := range standardTaps[1:] {
		if t > fullPowerWatts {
			break
		}
		if d := math.Abs(t - target); d < best {
			tap = t
			best = d
		}
	}

	return TapChoice{
		TargetWatts:       round1(target),
		TapWatts:          tap,
		ActualReductionDB: round1(10 * math.Log10(fullPowerWatts/tap)),
	}, nil
}

// round1 rounds to one decimal place.
func round1(v float64) float64 {
	return math.Round(v*10) / 10
}
