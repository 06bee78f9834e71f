package calc

import (
	"errors"
	"math"
	"testing"

	"github.com/tonehall/catalogqa/internal/domain"
)

func TestTotalPower(t *testing.T) {
	if got := TotalPower([]float64{30, 30, 30, 30}); got != 120 {
		t.Errorf("expected 120, got %g", got)
	}
	if got := TotalPower(nil); got != 0 {
		t.Errorf("expected 0 for empty input, got %g", got)
	}
}

func TestCompatibility_WithHeadroom(t *testing.T) {
	r, err := Compatibility(120, 150)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !r.Compatible {
		t.Error("expected compatible")
	}
	if r.HeadroomPercent != 20.0 {
		t.Errorf("expected headroom 20.0, got %g", r.HeadroomPercent)
	}
	if r.TotalLoad != 120 || r.Capacity != 150 {
		t.Errorf("expected load/capacity echoed back, got %g/%g", r.TotalLoad, r.Capacity)
	}
}

func TestCompatibility_Overloaded(t *testing.T) {
	r, err := Compatibility(160, 150)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if r.Compatible {
		t.Error("expected incompatible")
	}
	if r.HeadroomPercent != -6.7 {
		t.Errorf("expected headroom -6.7, got %g", r.HeadroomPercent)
	}
}

func TestCompatibility_InvalidCapacity(t *testing.T) {
	if _, err := Compatibility(100, 0); !errors.Is(err, domain.ErrInvalidCapacity) {
		t.Errorf("expected ErrInvalidCapacity, got %v", err)
	}
}

func TestImpedance_Series(t *testing.T) {
	z, err := Impedance([]float64{4, 8}, domain.TopologySeries)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if z != 12 {
		t.Errorf("expected 12, got %g", z)
	}
}

func TestImpedance_Parallel(t *testing.T) {
	z, err := Impedance([]float64{8, 8, 8}, domain.TopologyParallel)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if math.Abs(z-8.0/3.0) > 1e-9 {
		t.Errorf("expected %g, got %g", 8.0/3.0, z)
	}
}

func TestImpedance_ParallelZero(t *testing.T) {
	if _, err := Impedance([]float64{8, 0}, domain.TopologyParallel); !errors.Is(err, domain.ErrInvalidImpedance) {
		t.Errorf("expected ErrInvalidImpedance, got %v", err)
	}
}

func TestImpedance_UnknownTopology(t *testing.T) {
	if _, err := Impedance([]float64{8}, "daisy"); !errors.Is(err, domain.ErrInvalidTopology) {
		t.Errorf("expected ErrInvalidTopology, got %v", err)
	}
}

func TestImpedance_Empty(t *testing.T) {
	if _, err := Impedance(nil, domain.TopologySeries); !errors.Is(err, domain.ErrInvalidImpedance) {
		t.Errorf("expected ErrInvalidImpedance, got %v", err)
	}
}

func TestRecommendTransformer(t *testing.T) {
	r, err := RecommendTransformer(100)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if r.RecommendedWatts != 125 {
		t.Errorf("expected 125 W, got %g", r.RecommendedWatts)
	}
	if r.HeadroomPercent != 20.0 {
		t.Errorf("expected headroom 20.0, got %g", r.HeadroomPercent)
	}
	want := []float64{100, 150}
	if len(r.Alternatives) != len(want) {
		t.Fatalf("expected %d alternatives, got %d", len(want), len(r.Alternatives))
	}
	for i, a := range want {
		if r.Alternatives[i] != a {
			t.Errorf("alternative %d: expected %g, got %g", i, a, r.Alternatives[i])
		}
	}
}

func TestRecommendTransformer_FallbackToLargest(t *testing.T) {
	r, err := RecommendTransformer(900)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if r.RecommendedWatts != 1000 {
		t.Errorf("expected fallback 1000 W, got %g", r.RecommendedWatts)
	}
	if len(r.Alternatives) != 0 {
		t.Errorf("expected no alternatives, got %v", r.Alternatives)
	}
}

func TestRecommendTransformer_InvalidLoad(t *testing.T) {
	if _, err := RecommendTransformer(0); !errors.Is(err, domain.ErrInvalidCapacity) {
		t.Errorf("expected ErrInvalidCapacity, got %v", err)
	}
}

func TestMaxSpeakers(t *testing.T) {
	r, err := MaxSpeakers(100, 10, RecommendedHeadroomPercent)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if r.MaxSpeakers != 8 {
		t.Errorf("expected 8 speakers, got %d", r.MaxSpeakers)
	}
	if r.TotalLoad != 80 {
		t.Errorf("expected load 80, got %g", r.TotalLoad)
	}
	if r.HeadroomPercent != 20.0 {
		t.Errorf("expected headroom 20.0, got %g", r.HeadroomPercent)
	}
}

func TestMaxSpeakers_Invalid(t *testing.T) {
	if _, err := MaxSpeakers(0, 10, 20); !errors.Is(err, domain.ErrInvalidCapacity) {
		t.Errorf("expected ErrInvalidCapacity, got %v", err)
	}
	if _, err := MaxSpeakers(100, 0, 20); !errors.Is(err, domain.ErrInvalidImpedance) {
		t.Errorf("expected ErrInvalidImpedance, got %v", err)
	}
}

func TestTapForReduction(t *testing.T) {
	r, err := TapForReduction(6, 32)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if r.TapWatts != 8 {
		t.Errorf("expected tap 8 W, got %g", r.TapWatts)
	}
	if r.ActualReductionDB != 6.0 {
		t.Errorf("expected 6.0 dB actual, got %g", r.ActualReductionDB)
	}
}

func TestTapForReduction_NoReduction(t *testing.T) {
	r, err := TapForReduction(0, 16)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if r.TapWatts != 16 {
		t.Errorf("expected full power tap, got %g", r.TapWatts)
	}
}

func TestTapForReduction_InvalidPower(t *testing.T) {
	if _, err := TapForReduction(3, -1); !errors.Is(err, domain.ErrInvalidCapacity) {
		t.Errorf("expected ErrInvalidCapacity, got %v", err)
	}
}

func TestDeterminism(t *testing.T) {
	a, _ := Compatibility(117.3, 150)
	b, _ := Compatibility(117.3, 150)
	if a != b {
		t.Errorf("identical inputs produced different results: %+v vs %+v", a, b)
	}
}
