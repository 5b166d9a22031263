package growth

import (
	"fmt"
	"math"

	"github.com/pipeintegrity/fatigue-core/pkg/utils"
)

// CurvePoint is one sample of a da/dN design curve.
type CurvePoint struct {
	DeltaK float64 `json:"delta_k" yaml:"delta_k"`
	Rate   float64 `json:"rate" yaml:"rate"`
}

// DesignCurve samples a rate model over a log-spaced deltaK range, for
// plotting against per-cycle rate clouds. Bounds must be positive with
// min < max.
func DesignCurve(model Model, minDeltaK, maxDeltaK float64, points int) ([]CurvePoint, error) {
	if model == nil {
		return nil, fmt.Errorf("rate model is required")
	}
	if minDeltaK <= 0 || maxDeltaK <= minDeltaK {
		return nil, fmt.Errorf("deltaK range [%g, %g] must be positive and ascending", minDeltaK, maxDeltaK)
	}
	if points < 2 {
		return nil, fmt.Errorf("design curve needs at least 2 points, got %d", points)
	}

	exps := utils.Linspace(math.Log10(minDeltaK), math.Log10(maxDeltaK), points)
	curve := make([]CurvePoint, 0, points)
	for _, e := range exps {
		dk := math.Pow(10, e)
		rate, err := model.Rate(dk)
		if err != nil {
			return nil, err
		}
		curve = append(curve, CurvePoint{DeltaK: dk, Rate: rate})
	}
	return curve, nil
}
