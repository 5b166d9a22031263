// Package evolution runs the per-cycle crack growth state machine: stress
// intensity, growth step, failure assessment, termination policy.
package evolution

import (
	"context"
	"fmt"
	"math"

	"github.com/pipeintegrity/fatigue-core/internal/fad"
	"github.com/pipeintegrity/fatigue-core/internal/geometry"
	"github.com/pipeintegrity/fatigue-core/internal/growth"
	"github.com/pipeintegrity/fatigue-core/internal/material"
	"github.com/pipeintegrity/fatigue-core/internal/sif"
)

// Reason is the terminal state of a run.
type Reason int

const (
	ReasonNone Reason = iota
	// ReasonCritical: the failure assessment point left the envelope.
	ReasonCritical
	// ReasonMaxCycles: the configured cycle budget ran out first.
	ReasonMaxCycles
	// ReasonNeverCritical: the crack reached the depth ratio limit or
	// growth decayed without the assessment ever leaving the envelope.
	ReasonNeverCritical
	// ReasonStopped: the run was cancelled between steps.
	ReasonStopped
)

func (r Reason) String() string {
	switch r {
	case ReasonCritical:
		return "terminated_critical"
	case ReasonMaxCycles:
		return "terminated_max_cycles"
	case ReasonNeverCritical:
		return "terminated_never_critical"
	case ReasonStopped:
		return "stopped"
	default:
		return "running"
	}
}

// StepMode selects how the driver advances between evaluations.
type StepMode int

const (
	// ByDepthRatio steps the depth by an adaptive fraction of the wall
	// thickness. The default mode.
	ByDepthRatio StepMode = iota
	// ByCycles steps a fixed cycle increment per evaluation.
	ByCycles
)

// Sample is one recorded point of the evolution time series.
type Sample struct {
	Cycles     float64 `json:"cycles" yaml:"cycles"`
	Depth      float64 `json:"depth" yaml:"depth"`
	DepthRatio float64 `json:"depth_ratio" yaml:"depth_ratio"`
	DeltaK     float64 `json:"delta_k" yaml:"delta_k"`
	Rate       float64 `json:"rate" yaml:"rate"`
	Lr         float64 `json:"lr" yaml:"lr"`
	Kr         float64 `json:"kr" yaml:"kr"`
}

// Result is the completed evolution record. Immutable once returned.
type Result struct {
	Samples []Sample
	Reason  Reason
	// CyclesToFailure is finite only for ReasonCritical; otherwise NaN.
	CyclesToFailure float64
	FinalState      growth.CrackState
	// Warnings holds applicability warnings deduplicated across all
	// evaluations of the run.
	Warnings []sif.Warning
	// Extrapolated reports whether any influence table lookup left the
	// tabulated grid.
	Extrapolated bool
}

const (
	criticalDepthRatio = 0.8

	initialStepFraction = 0.001
	stepGrowFactor      = 1.005
	stepShrinkFactor    = 0.995
	relChangeLow        = 0.10
	relChangeHigh       = 0.50

	maxSteps     = 2_000_000
	nearZeroRate = 1e-16

	cancelCheckInterval = 256
)

// Driver owns one evolution run's collaborators. It is not reusable;
// build one per run.
type Driver struct {
	pipe   geometry.Pipe
	env    material.Environment
	model  *sif.Model
	kernel *growth.Kernel
	fad    *fad.Evaluator

	mode           StepMode
	cycleIncrement float64
	maxCycles      float64 // 0 means unbounded

	seen         map[sif.Warning]struct{}
	warnings     []sif.Warning
	extrapolated bool
}

// Options tune the stepping policy. Zero values select the defaults.
type Options struct {
	Mode StepMode
	// CycleIncrement for ByCycles mode. Default 1.
	CycleIncrement float64
	// MaxCycles stops the run once the accumulated count reaches it.
	// Zero leaves the run unbounded.
	MaxCycles float64
}

// NewDriver validates the collaborators and stepping options.
func NewDriver(pipe geometry.Pipe, env material.Environment, model *sif.Model,
	kernel *growth.Kernel, evaluator *fad.Evaluator, opts Options) (*Driver, error) {
	if model == nil || kernel == nil || evaluator == nil {
		return nil, fmt.Errorf("sif model, growth kernel and fad evaluator are required")
	}
	if opts.CycleIncrement < 0 {
		return nil, fmt.Errorf("cycle increment must be non-negative, got %g", opts.CycleIncrement)
	}
	if opts.CycleIncrement == 0 {
		opts.CycleIncrement = 1
	}
	if opts.MaxCycles < 0 {
		return nil, fmt.Errorf("max cycles must be non-negative, got %g", opts.MaxCycles)
	}
	return &Driver{
		pipe:           pipe,
		env:            env,
		model:          model,
		kernel:         kernel,
		fad:            evaluator,
		mode:           opts.Mode,
		cycleIncrement: opts.CycleIncrement,
		maxCycles:      opts.MaxCycles,
		seen:           make(map[sif.Warning]struct{}),
	}, nil
}

// Run integrates from the initial crack state until a terminal condition.
// The initial depth must lie strictly inside (0, t); a depth ratio already
// at the critical limit terminates on the first evaluation without
// stepping. Cancellation is cooperative, checked between steps.
func (d *Driver) Run(ctx context.Context, initial growth.CrackState) (*Result, error) {
	t := d.pipe.WallThickness
	if initial.Depth <= 0 || initial.Depth >= t {
		return nil, fmt.Errorf("initial crack depth %g must be inside (0, wall thickness %g)", initial.Depth, t)
	}
	if initial.HalfLength <= 0 {
		return nil, fmt.Errorf("initial crack half length must be positive, got %g", initial.HalfLength)
	}

	res := &Result{CyclesToFailure: math.NaN()}
	state := initial
	rRange := 1 - d.env.RRatio()
	stepRatio := (initial.Depth / t) * initialStepFraction
	prevDeltaK := math.NaN()

	for steps := 0; ; steps++ {
		if steps%cancelCheckInterval == 0 {
			select {
			case <-ctx.Done():
				res.Reason = ReasonStopped
				res.FinalState = state
				res.Warnings = d.warnings
				res.Extrapolated = d.extrapolated
				return res, nil
			default:
			}
		}

		req := sif.Request{Depth: state.Depth, HalfLength: state.HalfLength, Pressure: d.env.MaxPressure}
		sr := d.model.Evaluate(req)
		d.record(sr)

		deltaK := sr.K * rRange
		point := d.fad.Evaluate(sr.K, d.model.ReferenceStress(req))

		sample := Sample{
			Cycles:     state.Cycles,
			Depth:      state.Depth,
			DepthRatio: state.Depth / t,
			DeltaK:     deltaK,
			Lr:         point.Lr,
			Kr:         point.Kr,
		}

		switch {
		case point.Degenerate:
			res.Samples = append(res.Samples, sample)
			res.Reason = ReasonNeverCritical

		case state.Depth >= criticalDepthRatio*t:
			// Clamp: report the limit exactly, never the overshoot.
			sample.Depth = criticalDepthRatio * t
			sample.DepthRatio = criticalDepthRatio
			res.Samples = append(res.Samples, sample)
			if point.Inside {
				res.Reason = ReasonNeverCritical
			} else {
				res.Reason = ReasonCritical
				res.CyclesToFailure = state.Cycles
			}

		case !point.Inside:
			res.Samples = append(res.Samples, sample)
			res.Reason = ReasonCritical
			res.CyclesToFailure = state.Cycles

		case d.maxCycles > 0 && state.Cycles >= d.maxCycles:
			res.Samples = append(res.Samples, sample)
			res.Reason = ReasonMaxCycles

		case steps >= maxSteps:
			res.Samples = append(res.Samples, sample)
			res.Reason = ReasonNeverCritical
		}
		if res.Reason != ReasonNone {
			res.FinalState = state
			res.Warnings = d.warnings
			res.Extrapolated = d.extrapolated
			return res, nil
		}

		in := d.stepInput(stepRatio)
		sc := growth.StepContext{DeltaK: deltaK, DeltaKSurface: sr.KSurface * rRange}
		stepped, err := d.kernel.Step(state, sc, in)
		if err != nil {
			if steps == 0 {
				return nil, err
			}
			// Mid-run rate degeneracy recovers as a terminal state.
			res.Samples = append(res.Samples, sample)
			res.Reason = ReasonNeverCritical
			res.FinalState = state
			res.Warnings = d.warnings
			res.Extrapolated = d.extrapolated
			return res, nil
		}
		sample.Rate = stepped.Rate
		res.Samples = append(res.Samples, sample)

		if stepped.Rate < nearZeroRate {
			res.Reason = ReasonNeverCritical
			res.FinalState = stepped.State
			res.Warnings = d.warnings
			res.Extrapolated = d.extrapolated
			return res, nil
		}

		if d.mode == ByDepthRatio && !math.IsNaN(prevDeltaK) && prevDeltaK > 0 {
			rel := math.Abs(deltaK-prevDeltaK) / prevDeltaK
			if rel < relChangeLow {
				stepRatio *= stepGrowFactor
			} else if rel > relChangeHigh {
				stepRatio *= stepShrinkFactor
			}
		}
		prevDeltaK = deltaK

		state = stepped.State
		if state.Depth > criticalDepthRatio*t {
			state.Depth = criticalDepthRatio * t
		}
	}
}

func (d *Driver) stepInput(stepRatio float64) growth.StepInput {
	if d.mode == ByCycles {
		dn := d.cycleIncrement
		return growth.StepInput{DeltaN: &dn}
	}
	da := stepRatio * d.pipe.WallThickness
	return growth.StepInput{DeltaA: &da}
}

func (d *Driver) record(sr sif.Result) {
	d.extrapolated = d.extrapolated || sr.Extrapolated
	for _, w := range sr.Warnings {
		if _, ok := d.seen[w]; ok {
			continue
		}
		d.seen[w] = struct{}{}
		d.warnings = append(d.warnings, w)
	}
}
