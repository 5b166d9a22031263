package evolution

import (
	"context"
	"math"
	"testing"

	"github.com/pipeintegrity/fatigue-core/internal/fad"
	"github.com/pipeintegrity/fatigue-core/internal/geometry"
	"github.com/pipeintegrity/fatigue-core/internal/growth"
	"github.com/pipeintegrity/fatigue-core/internal/material"
	"github.com/pipeintegrity/fatigue-core/internal/sif"
)

// scenario bundles the collaborators of a line pipe hydrogen service run.
type scenario struct {
	pipe    geometry.Pipe
	env     material.Environment
	props   material.Properties
	model   *sif.Model
	kernel  *growth.Kernel
	fad     *fad.Evaluator
	initial growth.CrackState
}

func lineScenario(t *testing.T, toughness float64) scenario {
	t.Helper()

	pipe, err := geometry.New(0.9144, 0.0103)
	if err != nil {
		t.Fatalf("geometry.New: %v", err)
	}
	env, err := material.NewEnvironment(5.79, 4.40, 293, 1)
	if err != nil {
		t.Fatalf("NewEnvironment: %v", err)
	}
	props, err := material.NewProperties(358.5, toughness)
	if err != nil {
		t.Fatalf("NewProperties: %v", err)
	}
	model, err := sif.NewModel(sif.MethodAnderson, sif.SurfaceInternal, sif.FiniteLength, pipe, nil)
	if err != nil {
		t.Fatalf("sif.NewModel: %v", err)
	}
	rate, err := growth.NewCodeCase2938(env)
	if err != nil {
		t.Fatalf("NewCodeCase2938: %v", err)
	}
	kernel, err := growth.NewKernel(rate, growth.ShapeFixedRatio, nil)
	if err != nil {
		t.Fatalf("NewKernel: %v", err)
	}
	evaluator, err := fad.NewEvaluator(props.FractureToughness, props.YieldStrength)
	if err != nil {
		t.Fatalf("fad.NewEvaluator: %v", err)
	}

	depth := 0.25 * pipe.WallThickness
	return scenario{
		pipe:    pipe,
		env:     env,
		props:   props,
		model:   model,
		kernel:  kernel,
		fad:     evaluator,
		initial: growth.CrackState{Depth: depth, HalfLength: 2 * depth},
	}
}

func newTestDriver(t *testing.T, s scenario, opts Options) *Driver {
	t.Helper()
	d, err := NewDriver(s.pipe, s.env, s.model, s.kernel, s.fad, opts)
	if err != nil {
		t.Fatalf("NewDriver: %v", err)
	}
	return d
}

func TestRunReachesCritical(t *testing.T) {
	s := lineScenario(t, 55)
	d := newTestDriver(t, s, Options{})

	res, err := d.Run(context.Background(), s.initial)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	if res.Reason != ReasonCritical {
		t.Fatalf("Reason = %v, want critical", res.Reason)
	}
	if math.IsNaN(res.CyclesToFailure) || res.CyclesToFailure <= 0 {
		t.Fatalf("CyclesToFailure = %g, want positive finite", res.CyclesToFailure)
	}

	last := res.Samples[len(res.Samples)-1]
	outside := last.Kr > fad.EnvelopeKr(last.Lr) || last.Lr > fad.LrMax
	if last.DepthRatio != 0.8 && !outside {
		t.Errorf("critical run must end at the depth clamp or outside the envelope, got a/t=%g Lr=%g Kr=%g",
			last.DepthRatio, last.Lr, last.Kr)
	}
}

func TestRunDepthRatioMonotonic(t *testing.T) {
	s := lineScenario(t, 55)
	d := newTestDriver(t, s, Options{})

	res, err := d.Run(context.Background(), s.initial)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	for i := 1; i < len(res.Samples); i++ {
		if res.Samples[i].DepthRatio < res.Samples[i-1].DepthRatio {
			t.Fatalf("depth ratio decreased at %d: %g -> %g",
				i, res.Samples[i-1].DepthRatio, res.Samples[i].DepthRatio)
		}
		if res.Samples[i].Cycles < res.Samples[i-1].Cycles {
			t.Fatalf("cycle count decreased at %d", i)
		}
	}
}

func TestRunNeverCritical(t *testing.T) {
	// Implausibly tough material: the crack reaches the depth limit with
	// the assessment still inside the envelope.
	s := lineScenario(t, 500)
	d := newTestDriver(t, s, Options{})

	res, err := d.Run(context.Background(), s.initial)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if res.Reason != ReasonNeverCritical {
		t.Fatalf("Reason = %v, want never critical", res.Reason)
	}
	if !math.IsNaN(res.CyclesToFailure) {
		t.Errorf("CyclesToFailure = %g, want NaN", res.CyclesToFailure)
	}
	last := res.Samples[len(res.Samples)-1]
	if last.DepthRatio != 0.8 {
		t.Errorf("final depth ratio = %g, want clamped 0.8", last.DepthRatio)
	}
}

func TestRunMaxCycles(t *testing.T) {
	s := lineScenario(t, 55)
	d := newTestDriver(t, s, Options{Mode: ByCycles, CycleIncrement: 100, MaxCycles: 1000})

	res, err := d.Run(context.Background(), s.initial)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if res.Reason != ReasonMaxCycles {
		t.Fatalf("Reason = %v, want max cycles", res.Reason)
	}
	if !math.IsNaN(res.CyclesToFailure) {
		t.Errorf("CyclesToFailure = %g, want NaN for max cycles", res.CyclesToFailure)
	}
	last := res.Samples[len(res.Samples)-1]
	if last.Cycles < 1000 {
		t.Errorf("final cycle count = %g, want >= budget", last.Cycles)
	}
}

func TestRunImmediateTerminationAtClamp(t *testing.T) {
	s := lineScenario(t, 55)
	d := newTestDriver(t, s, Options{})

	initial := growth.CrackState{Depth: 0.8 * s.pipe.WallThickness, HalfLength: 0.01}
	res, err := d.Run(context.Background(), initial)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(res.Samples) != 1 {
		t.Fatalf("samples = %d, want 1 for immediate termination", len(res.Samples))
	}
	if res.Reason != ReasonCritical {
		t.Errorf("Reason = %v, want critical at the clamp with low toughness", res.Reason)
	}
	if res.Samples[0].DepthRatio != 0.8 {
		t.Errorf("depth ratio = %g, want exactly 0.8", res.Samples[0].DepthRatio)
	}
}

func TestRunRejectsDegenerateInitialState(t *testing.T) {
	s := lineScenario(t, 55)
	d := newTestDriver(t, s, Options{})

	for _, initial := range []growth.CrackState{
		{Depth: 0, HalfLength: 0.01},
		{Depth: s.pipe.WallThickness, HalfLength: 0.01},
		{Depth: 0.002, HalfLength: 0},
	} {
		if _, err := d.Run(context.Background(), initial); err == nil {
			t.Errorf("initial state %+v should be rejected", initial)
		}
	}
}

func TestRunCancellation(t *testing.T) {
	s := lineScenario(t, 55)
	d := newTestDriver(t, s, Options{})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	res, err := d.Run(ctx, s.initial)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if res.Reason != ReasonStopped {
		t.Errorf("Reason = %v, want stopped", res.Reason)
	}
}

func TestRunCollectsWarningsOnce(t *testing.T) {
	// Transmission line pipe sits outside the Anderson curvature range,
	// so every evaluation violates the same bound.
	s := lineScenario(t, 55)
	d := newTestDriver(t, s, Options{})

	res, err := d.Run(context.Background(), s.initial)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	count := 0
	for _, w := range res.Warnings {
		if w == sif.WarnCurvatureAnderson {
			count++
		}
	}
	if count != 1 {
		t.Errorf("curvature warning recorded %d times, want exactly once", count)
	}
}

func TestCriticalDepth(t *testing.T) {
	s := lineScenario(t, 55)

	lengthAt := func(a float64) float64 { return 2 * a }
	aCrit, err := CriticalDepth(s.model, s.env.MaxPressure, 55, s.pipe.WallThickness, lengthAt)
	if err != nil {
		t.Fatalf("CriticalDepth: %v", err)
	}
	if math.IsNaN(aCrit) || aCrit <= 0 || aCrit >= s.pipe.WallThickness {
		t.Fatalf("aCrit = %g, want inside (0, t)", aCrit)
	}
	k := s.model.Evaluate(sif.Request{Depth: aCrit, HalfLength: lengthAt(aCrit), Pressure: s.env.MaxPressure}).K
	if math.Abs(k-55) > 0.01 {
		t.Errorf("K at aCrit = %g, want 55", k)
	}

	// Toughness never reached inside the wall.
	never, err := CriticalDepth(s.model, s.env.MaxPressure, 500, s.pipe.WallThickness, lengthAt)
	if err != nil {
		t.Fatalf("CriticalDepth: %v", err)
	}
	if !math.IsNaN(never) {
		t.Errorf("aCrit = %g, want NaN for unreachable toughness", never)
	}
}

func TestLifeCriteria(t *testing.T) {
	samples := []Sample{
		{Cycles: 0, Depth: 0.001},
		{Cycles: 1000, Depth: 0.002},
		{Cycles: 2000, Depth: 0.003},
		{Cycles: 3000, Depth: 0.004},
	}

	life := LifeCriteria(samples, 0.004)
	if life.CyclesToCritical != 3000 {
		t.Errorf("CyclesToCritical = %g, want 3000", life.CyclesToCritical)
	}
	if life.CyclesToHalfCritical != 1000 {
		t.Errorf("CyclesToHalfCritical = %g, want 1000", life.CyclesToHalfCritical)
	}
	if life.CyclesToQuarterCritical != 0 {
		t.Errorf("CyclesToQuarterCritical = %g, want 0 (already deeper at start)", life.CyclesToQuarterCritical)
	}

	nanLife := LifeCriteria(samples, math.NaN())
	if !math.IsNaN(nanLife.CyclesToCritical) {
		t.Errorf("never-critical life must be NaN, got %g", nanLife.CyclesToCritical)
	}

	beyond := LifeCriteria(samples, 0.01)
	if !math.IsNaN(beyond.CyclesToCritical) {
		t.Errorf("criterion beyond the series must be NaN, got %g", beyond.CyclesToCritical)
	}
}
