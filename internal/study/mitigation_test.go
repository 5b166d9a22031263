package study

import (
	"context"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pipeintegrity/fatigue-core/internal/analysis"
	"github.com/pipeintegrity/fatigue-core/internal/evolution"
)

// syntheticSample builds one completed sample from paired cycle counts
// and depth ratios. criticalRatio fixes the failure criterion in a/t
// terms under the base wall thickness.
func syntheticSample(cycles, depthRatios []float64, criticalRatio float64) SampleResult {
	samples := make([]evolution.Sample, len(cycles))
	for i := range cycles {
		samples[i] = evolution.Sample{Cycles: cycles[i], DepthRatio: depthRatios[i]}
	}
	return SampleResult{
		Result: &analysis.Result{
			Evolution: &evolution.Result{Samples: samples},
			Summary: analysis.Summary{
				CriticalDepth:   criticalRatio * baseInput().WallThickness,
				CyclesToFailure: cycles[len(cycles)-1],
			},
		},
	}
}

func TestInspectionValidate(t *testing.T) {
	tests := []struct {
		name    string
		ins     Inspection
		wantErr bool
	}{
		{"valid", Inspection{ProbabilityOfDetection: 0.5, DetectionResolution: 0.3, InspectionFrequency: 1460}, false},
		{"pod above one", Inspection{ProbabilityOfDetection: 1.5, DetectionResolution: 0.3, InspectionFrequency: 100}, true},
		{"negative pod", Inspection{ProbabilityOfDetection: -0.1, DetectionResolution: 0.3, InspectionFrequency: 100}, true},
		{"zero resolution", Inspection{ProbabilityOfDetection: 0.5, InspectionFrequency: 100}, true},
		{"through-wall resolution", Inspection{ProbabilityOfDetection: 0.5, DetectionResolution: 1, InspectionFrequency: 100}, true},
		{"zero frequency", Inspection{ProbabilityOfDetection: 0.5, DetectionResolution: 0.3}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.ins.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestInspectionSchedule(t *testing.T) {
	ins := Inspection{ProbabilityOfDetection: 0.5, DetectionResolution: 0.1, InspectionFrequency: 2}
	samples := []SampleResult{
		syntheticSample([]float64{1, 2, 3, 4, 5}, []float64{0.1, 0.2, 0.3, 0.4, 0.5}, 0.8),
		syntheticSample([]float64{2, 4, 6, 8, 10}, []float64{0.1, 0.2, 0.3, 0.4, 0.5}, 0.8),
		syntheticSample([]float64{0, 3, 6, 9, 12}, []float64{0.1, 0.2, 0.3, 0.4, 0.5}, 0.8),
	}

	schedule := ins.Schedule(samples)
	assert.Equal(t, []float64{2, 4, 6, 8, 10, 12}, schedule)
}

func TestInspectionScheduleSkipsFailedSamples(t *testing.T) {
	ins := Inspection{ProbabilityOfDetection: 1, DetectionResolution: 0.1, InspectionFrequency: 10}
	samples := []SampleResult{
		{Err: "bad draw"},
		syntheticSample([]float64{0, 15}, []float64{0.2, 0.4}, 0.8),
	}
	assert.Equal(t, []float64{10}, ins.Schedule(samples))
}

func TestApplyDetectionWindow(t *testing.T) {
	cycles := []float64{1, 2, 3, 4, 5, 6, 7}
	ratios := []float64{0.01, 0.05, 0.1, 0.15, 0.2, 0.22, 0.25}

	// Resolvable from the third inspection, past the failure criterion
	// at the last. A certain detector must catch it in the window.
	certain := Inspection{ProbabilityOfDetection: 1, DetectionResolution: 0.1, InspectionFrequency: 1}
	out := certain.Apply(baseInput(), []SampleResult{syntheticSample(cycles, ratios, 0.24)}, 1)
	require.Len(t, out.Mitigated, 1)
	assert.True(t, out.Mitigated[0])
	assert.Equal(t, 1, out.MitigatedCount)
	assert.Equal(t, 1.0, out.MitigatedFraction)
	assert.Empty(t, out.UnmitigatedCDF)

	// A blind detector never mitigates.
	blind := certain
	blind.ProbabilityOfDetection = 0
	out = blind.Apply(baseInput(), []SampleResult{syntheticSample(cycles, ratios, 0.24)}, 1)
	assert.False(t, out.Mitigated[0])
	assert.Equal(t, 0.0, out.MitigatedFraction)
	assert.NotEmpty(t, out.UnmitigatedCDF)

	// A coarse tool resolves nothing below half the wall.
	coarse := certain
	coarse.DetectionResolution = 0.5
	out = coarse.Apply(baseInput(), []SampleResult{syntheticSample(cycles, ratios, 0.24)}, 1)
	assert.False(t, out.Mitigated[0])
}

func TestApplyIgnoresCracksPastCriterion(t *testing.T) {
	// Every inspected size is already at or beyond the failure
	// criterion; there is nothing left to mitigate.
	ins := Inspection{ProbabilityOfDetection: 1, DetectionResolution: 0.1, InspectionFrequency: 1}
	sample := syntheticSample([]float64{1, 2, 3}, []float64{0.3, 0.4, 0.5}, 0.3)

	out := ins.Apply(baseInput(), []SampleResult{sample}, 1)
	assert.False(t, out.Mitigated[0])
}

func TestApplyNeverCriticalSample(t *testing.T) {
	ins := Inspection{ProbabilityOfDetection: 1, DetectionResolution: 0.1, InspectionFrequency: 1}
	sample := syntheticSample([]float64{1, 2, 3}, []float64{0.2, 0.3, 0.4}, 0.8)
	sample.Result.Summary.CriticalDepth = math.NaN()
	sample.Result.Summary.CyclesToFailure = math.NaN()

	out := ins.Apply(baseInput(), []SampleResult{sample}, 1)
	assert.False(t, out.Mitigated[0], "a crack with no failure criterion has nothing to mitigate")
	assert.Equal(t, 0.0, out.MitigatedFraction)
}

func TestApplyReproducible(t *testing.T) {
	// One detectable inspection per sample (at cycle 6, a/t = 0.22), so
	// each sample is an even coin flip and seed divergence is near
	// certain over twenty samples.
	ins := Inspection{ProbabilityOfDetection: 0.5, DetectionResolution: 0.15, InspectionFrequency: 6}
	var samples []SampleResult
	for i := 0; i < 20; i++ {
		samples = append(samples,
			syntheticSample([]float64{1, 2, 3, 4, 5, 6, 7}, []float64{0.01, 0.05, 0.1, 0.15, 0.2, 0.22, 0.25}, 0.24))
	}

	first := ins.Apply(baseInput(), samples, 97)
	second := ins.Apply(baseInput(), samples, 97)
	assert.Equal(t, first.Mitigated, second.Mitigated)

	other := ins.Apply(baseInput(), samples, 98)
	assert.NotEqual(t, first.Mitigated, other.Mitigated,
		"different seeds should shuffle detection draws")
}

func TestRunWithInspectionProgram(t *testing.T) {
	cfg := pressureStudy(20, 1234567)
	cfg.Inspection = &Inspection{
		ProbabilityOfDetection: 0.8,
		DetectionResolution:    0.3,
		InspectionFrequency:    5000,
	}

	runOnce := func(workers int) *Result {
		c := cfg
		c.MaxWorkers = workers
		runner, err := New(c)
		require.NoError(t, err)
		res, err := runner.Run(context.Background())
		require.NoError(t, err)
		return res
	}

	first := runOnce(1)
	require.NotNil(t, first.Mitigation)
	assert.Len(t, first.Mitigation.Mitigated, len(first.Samples))
	assert.GreaterOrEqual(t, first.Mitigation.MitigatedFraction, 0.0)
	assert.LessOrEqual(t, first.Mitigation.MitigatedFraction, 1.0)
	assert.NotEmpty(t, first.Mitigation.Inspections)

	second := runOnce(4)
	require.NotNil(t, second.Mitigation)
	assert.Equal(t, first.Mitigation.Mitigated, second.Mitigation.Mitigated,
		"mitigation must not depend on worker count")
}

func TestNewRejectsBadInspection(t *testing.T) {
	cfg := pressureStudy(5, 1)
	cfg.Inspection = &Inspection{ProbabilityOfDetection: 2, DetectionResolution: 0.3, InspectionFrequency: 100}
	_, err := New(cfg)
	assert.Error(t, err)
}
