package evolution

import (
	"math"

	"github.com/pipeintegrity/fatigue-core/pkg/utils"
)

// Life holds cycle counts at fixed fractions of the critical depth,
// interpolated from a completed evolution series. Fields are NaN when the
// series never reaches the corresponding depth.
type Life struct {
	CyclesToCritical        float64 `json:"cycles_to_critical" yaml:"cycles_to_critical"`
	CyclesToHalfCritical    float64 `json:"cycles_to_half_critical" yaml:"cycles_to_half_critical"`
	CyclesToQuarterCritical float64 `json:"cycles_to_quarter_critical" yaml:"cycles_to_quarter_critical"`
}

// LifeCriteria interpolates cycle counts at the critical depth and at half
// and a quarter of it. criticalDepth may be NaN (never critical), in which
// case all fields are NaN.
func LifeCriteria(samples []Sample, criticalDepth float64) Life {
	nan := math.NaN()
	if math.IsNaN(criticalDepth) || len(samples) < 2 {
		return Life{CyclesToCritical: nan, CyclesToHalfCritical: nan, CyclesToQuarterCritical: nan}
	}

	depths := make([]float64, len(samples))
	cycles := make([]float64, len(samples))
	for i, s := range samples {
		depths[i] = s.Depth
		cycles[i] = s.Cycles
	}

	at := func(depth float64) float64 {
		if depth < depths[0] {
			// The crack started beyond this criterion.
			return 0
		}
		if depth > depths[len(depths)-1] {
			return nan
		}
		return utils.Interp(depth, depths, cycles)
	}

	return Life{
		CyclesToCritical:        at(criticalDepth),
		CyclesToHalfCritical:    at(criticalDepth / 2),
		CyclesToQuarterCritical: at(criticalDepth / 4),
	}
}
