package study

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pipeintegrity/fatigue-core/internal/analysis"
)

func baseInput() analysis.Input {
	return analysis.Input{
		OuterDiameter:     0.9144,
		WallThickness:     0.0103,
		YieldStrength:     358.5,
		FractureToughness: 55,
		MaxPressure:       5.79,
		MinPressure:       4.40,
		Temperature:       293,
		H2VolumeFraction:  1,
		FlawDepthRatio:    0.25,
		FlawAspectRatio:   0.25,
	}
}

func pressureStudy(samples int, seed uint64) Config {
	return Config{
		Base: baseInput(),
		Parameters: []Parameter{{
			Name:   "max_pressure",
			Kind:   TruncNormal,
			Class:  ClassAleatory,
			Mean:   5.79,
			StdDev: 0.25,
			Lower:  5.0,
			Upper:  6.5,
			Nominal: 5.79,
		}},
		Kind:            KindRandom,
		AleatorySamples: samples,
		Seed:            seed,
	}
}

func TestNewRejectsUnknownParameter(t *testing.T) {
	cfg := pressureStudy(10, 1)
	cfg.Parameters[0].Name = "warp_factor"
	_, err := New(cfg)
	assert.Error(t, err)
}

func TestNewRejectsBrokenBase(t *testing.T) {
	cfg := pressureStudy(10, 1)
	cfg.Base.WallThickness = -1
	_, err := New(cfg)
	assert.Error(t, err)
}

func TestRunCompletesAllSamples(t *testing.T) {
	r, err := New(pressureStudy(50, 1234567))
	require.NoError(t, err)

	res, err := r.Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 50, res.Completed+res.Failed)
	assert.False(t, res.Incomplete)
	require.Len(t, res.Samples, 50)
	for i, sr := range res.Samples {
		assert.Equal(t, i, sr.Index, "results must be ordered by sample index")
	}
	assert.NotEmpty(t, res.Aggregates.Ensemble)
	assert.NotEmpty(t, res.Aggregates.FADPoints)
	assert.NotEmpty(t, res.Aggregates.RateCloud)
	assert.NotEmpty(t, res.Aggregates.DesignCurve)
	assert.Greater(t, res.Aggregates.Cycles.Count, 0)
	assert.Greater(t, res.Aggregates.Cycles.P95, res.Aggregates.Cycles.P5)
}

func TestRunReproducibleAcrossWorkerCounts(t *testing.T) {
	outcomes := func(workers int) []float64 {
		cfg := pressureStudy(20, 424242)
		cfg.MaxWorkers = workers
		r, err := New(cfg)
		require.NoError(t, err)
		res, err := r.Run(context.Background())
		require.NoError(t, err)
		require.Len(t, res.Samples, 20)

		out := make([]float64, 0, 20)
		for _, sr := range res.Samples {
			require.Empty(t, sr.Err)
			out = append(out, sr.Result.Summary.CyclesToFailure)
		}
		return out
	}

	serial := outcomes(1)
	parallel := outcomes(8)
	assert.Equal(t, serial, parallel, "worker count must not change outcomes")
}

func TestRunRecordsSampleFailures(t *testing.T) {
	cfg := pressureStudy(12, 7)
	// Half the sampled depth ratios land at or beyond the wall, which is
	// a per-sample configuration error.
	cfg.Parameters = append(cfg.Parameters, Parameter{
		Name:    "flaw_depth_ratio",
		Kind:    Uniform,
		Class:   ClassAleatory,
		Lower:   0.6,
		Upper:   1.4,
		Nominal: 0.25,
	})

	r, err := New(cfg)
	require.NoError(t, err)
	res, err := r.Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 12, res.Completed+res.Failed)
	assert.Greater(t, res.Failed, 0, "expected some invalid draws")
	assert.Greater(t, res.Completed, 0, "expected some valid draws")
	for _, sr := range res.Samples {
		if sr.Err != "" {
			assert.Nil(t, sr.Result)
		} else {
			assert.NotNil(t, sr.Result)
		}
	}
}

func TestRunCancellation(t *testing.T) {
	r, err := New(pressureStudy(40, 9))
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	res, err := r.Run(ctx)
	require.NoError(t, err)
	assert.True(t, res.Incomplete)
	assert.Equal(t, 40, res.Skipped)
	assert.Empty(t, res.Samples)
}

func TestRunWallClockBudget(t *testing.T) {
	cfg := pressureStudy(40, 11)
	cfg.Budget = time.Nanosecond
	cfg.MaxWorkers = 1
	r, err := New(cfg)
	require.NoError(t, err)

	res, err := r.Run(context.Background())
	require.NoError(t, err)
	assert.True(t, res.Incomplete)
	assert.Less(t, len(res.Samples), 40)
}

func TestRunEpistemicBands(t *testing.T) {
	cfg := pressureStudy(8, 21)
	cfg.EpistemicSamples = 3
	cfg.Parameters = append(cfg.Parameters, Parameter{
		Name:    "fracture_toughness",
		Kind:    TruncNormal,
		Class:   ClassEpistemic,
		Mean:    55,
		StdDev:  5,
		Lower:   40,
		Upper:   70,
		Nominal: 55,
	})

	r, err := New(cfg)
	require.NoError(t, err)
	require.Len(t, r.Sheet().Draws, 24)

	res, err := r.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 24, res.Completed+res.Failed)
	assert.NotEmpty(t, res.Aggregates.EpistemicBands)
	for _, b := range res.Aggregates.EpistemicBands {
		require.Len(t, b.Lower, 2)
		require.Len(t, b.Upper, 2)
		assert.LessOrEqual(t, b.Lower[0], b.Upper[0])
	}
}
