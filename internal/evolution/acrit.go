package evolution

import (
	"fmt"
	"math"

	"github.com/pipeintegrity/fatigue-core/internal/sif"
)

const (
	bisectIterations = 80
	bisectTolerance  = 1e-12
)

// CriticalDepth solves K(a) = toughness for the crack depth a by bisection
// over (0, wall thickness). lengthAt maps a candidate depth to the half
// length implied by the shape assumption. Returns NaN when the toughness
// is never reached inside the wall, which downstream code reports as a
// never-critical life.
func CriticalDepth(model *sif.Model, pressure, toughness, wallThickness float64,
	lengthAt func(depth float64) float64) (float64, error) {
	if model == nil {
		return 0, fmt.Errorf("sif model is required")
	}
	if toughness <= 0 {
		return 0, fmt.Errorf("toughness must be positive, got %g", toughness)
	}
	if lengthAt == nil {
		return 0, fmt.Errorf("length mapping is required")
	}

	k := func(a float64) float64 {
		return model.Evaluate(sif.Request{Depth: a, HalfLength: lengthAt(a), Pressure: pressure}).K
	}

	lo := wallThickness * 1e-6
	hi := wallThickness * (1 - 1e-9)

	// K grows with depth for pressurized pipe, so a single sign check at
	// the wall decides solvability.
	if k(hi) < toughness {
		return math.NaN(), nil
	}
	if k(lo) >= toughness {
		return lo, nil
	}

	for i := 0; i < bisectIterations && hi-lo > bisectTolerance; i++ {
		mid := 0.5 * (lo + hi)
		if k(mid) < toughness {
			lo = mid
		} else {
			hi = mid
		}
	}
	return 0.5 * (lo + hi), nil
}
