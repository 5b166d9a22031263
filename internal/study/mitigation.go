package study

import (
	"fmt"
	"math"
	"math/rand/v2"
	"sort"

	"github.com/pipeintegrity/fatigue-core/internal/analysis"
	"github.com/pipeintegrity/fatigue-core/pkg/models"
	"github.com/pipeintegrity/fatigue-core/pkg/utils"
)

// Inspection describes a periodic in-line inspection program layered over
// a study: how many cycles pass between inspections, the smallest depth
// ratio the tool resolves, and the chance a resolvable crack is found.
type Inspection struct {
	// ProbabilityOfDetection is the per-inspection chance of finding a
	// resolvable crack, in [0, 1].
	ProbabilityOfDetection float64
	// DetectionResolution is the smallest detectable crack depth as a
	// fraction of wall thickness, in (0, 1).
	DetectionResolution float64
	// InspectionFrequency is the cycle count between inspections.
	InspectionFrequency float64
}

func (ins Inspection) Validate() error {
	if ins.ProbabilityOfDetection < 0 || ins.ProbabilityOfDetection > 1 {
		return fmt.Errorf("probability of detection must be in [0, 1], got %g", ins.ProbabilityOfDetection)
	}
	if ins.DetectionResolution <= 0 || ins.DetectionResolution >= 1 {
		return fmt.Errorf("detection resolution must be in (0, 1), got %g", ins.DetectionResolution)
	}
	if ins.InspectionFrequency <= 0 {
		return fmt.Errorf("inspection frequency must be positive, got %g", ins.InspectionFrequency)
	}
	return nil
}

// MitigationOutcome is the study-level result of the inspection program.
// A sample is mitigated when any scheduled inspection finds its crack
// while the crack is resolvable but not yet at the failure criterion.
type MitigationOutcome struct {
	// Inspections are the scheduled inspection cycle counts, spaced by
	// the inspection frequency up to the longest completed evolution.
	Inspections []float64 `json:"inspections" yaml:"inspections"`
	// Mitigated is indexed like the study samples; failed samples stay
	// false.
	Mitigated      []bool `json:"mitigated" yaml:"mitigated"`
	MitigatedCount int    `json:"mitigated_count" yaml:"mitigated_count"`
	// MitigatedFraction is the share of critical failures the program
	// caught in time.
	MitigatedFraction float64 `json:"mitigated_fraction" yaml:"mitigated_fraction"`
	// UnmitigatedCDF is the cycles-to-failure distribution of the
	// failures that slipped past every inspection.
	UnmitigatedCDF []models.CDFPoint `json:"unmitigated_cdf" yaml:"unmitigated_cdf"`
}

// Schedule returns the inspection cycle counts for the longest completed
// evolution among the samples.
func (ins Inspection) Schedule(samples []SampleResult) []float64 {
	var maxCycles float64
	for _, sr := range samples {
		if sr.Result == nil {
			continue
		}
		series := sr.Result.Evolution.Samples
		if n := len(series); n > 0 && series[n-1].Cycles > maxCycles {
			maxCycles = series[n-1].Cycles
		}
	}

	count := int(math.Floor(maxCycles / ins.InspectionFrequency))
	schedule := make([]float64, count)
	for i := range schedule {
		schedule[i] = float64(i+1) * ins.InspectionFrequency
	}
	return schedule
}

// Apply runs the inspection program over completed study samples. Draws
// are consumed in sample-index order from a seed-fixed stream, one per
// inspection a sample survives to, so the outcome is reproducible for a
// given study seed regardless of worker count.
func (ins Inspection) Apply(base analysis.Input, samples []SampleResult, seed uint64) *MitigationOutcome {
	schedule := ins.Schedule(samples)
	out := &MitigationOutcome{
		Inspections: schedule,
		Mitigated:   make([]bool, len(samples)),
	}

	rng := rand.New(rand.NewPCG(seed^0xbf58476d1ce4e5b9, seed))
	var failures, caught int
	var unmitigated []float64

	for i, sr := range samples {
		if sr.Result == nil {
			continue
		}
		series := sr.Result.Evolution.Samples
		if len(series) == 0 {
			continue
		}

		cycles := make([]float64, len(series))
		depthRatios := make([]float64, len(series))
		for j, s := range series {
			cycles[j] = s.Cycles
			depthRatios[j] = s.DepthRatio
		}
		criterion := failureDepthRatio(base, sr)

		mitigated := false
		for _, at := range schedule {
			// Inspections past the sample's failure never happen.
			if at > cycles[len(cycles)-1] {
				break
			}
			draw := rng.Float64()
			depthRatio := utils.Interp(at, cycles, depthRatios)
			if depthRatio >= ins.DetectionResolution && depthRatio < criterion &&
				draw < ins.ProbabilityOfDetection {
				mitigated = true
			}
		}

		out.Mitigated[i] = mitigated
		if mitigated {
			out.MitigatedCount++
		}
		if utils.Finite(sr.Result.Summary.CyclesToFailure) {
			failures++
			if mitigated {
				caught++
			} else {
				unmitigated = append(unmitigated, sr.Result.Summary.CyclesToFailure)
			}
		}
	}

	if failures > 0 {
		out.MitigatedFraction = float64(caught) / float64(failures)
	}
	sort.Float64s(unmitigated)
	out.UnmitigatedCDF = cdf(unmitigated)
	return out
}

// failureDepthRatio maps a sample's critical depth to depth-ratio terms
// under its own drawn wall thickness. A NaN critical depth (never
// critical) yields NaN, which no inspection comparison passes.
func failureDepthRatio(base analysis.Input, sr SampleResult) float64 {
	in := applyDraw(base, sr.Values)
	return sr.Result.Summary.CriticalDepth / in.WallThickness
}
