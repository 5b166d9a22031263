package growth

import (
	"fmt"
	"math"
)

// CrackState is the evolving crack front geometry, in meters, plus the
// accumulated cycle count. Cycles is a float because adaptive stepping
// produces fractional counts.
type CrackState struct {
	Depth      float64
	HalfLength float64
	Cycles     float64
}

// AspectRatio returns a/c.
func (s CrackState) AspectRatio() float64 {
	if s.HalfLength <= 0 {
		return math.NaN()
	}
	return s.Depth / s.HalfLength
}

// StepInput names the independent driver of one growth step. Exactly one
// field must be set; the kernel computes the other two quantities.
type StepInput struct {
	DeltaA *float64 // depth increment, m
	DeltaN *float64 // cycle increment
	DeltaK *float64 // stress intensity range increment, MPa·sqrt(m)
}

// Validate checks the single-driver contract. It is called before any
// stepping begins so misconfiguration surfaces as a configuration error,
// never mid-run.
func (in StepInput) Validate() error {
	n := 0
	if in.DeltaA != nil {
		n++
	}
	if in.DeltaN != nil {
		n++
	}
	if in.DeltaK != nil {
		n++
	}
	if n != 1 {
		return fmt.Errorf("exactly one growth step driver must be set, got %d", n)
	}
	return nil
}

// StepContext carries the stress state evaluated at the step start.
type StepContext struct {
	// DeltaK is the deepest-point stress intensity range.
	DeltaK float64
	// DeltaKSurface is the surface-point range. Required for the api579
	// and independent shape rules.
	DeltaKSurface float64
	// DKdA is the local gradient d(deltaK)/da. Required when DeltaK is
	// the step driver.
	DKdA float64
}

// StepResult reports the resolved increments alongside the new state.
type StepResult struct {
	State  CrackState
	DeltaA float64
	DeltaN float64
	DeltaK float64
	// Rate is da/dN at the step start, m/cycle.
	Rate float64
}

// Kernel integrates one crack growth step at a time. surfaceModel supplies
// the length-direction rate for independent growth; it may be nil for the
// other shape rules.
type Kernel struct {
	model        Model
	rule         ShapeRule
	surfaceModel Model
}

// NewKernel wires a rate law and a shape rule into a step integrator.
func NewKernel(model Model, rule ShapeRule, surfaceModel Model) (*Kernel, error) {
	if model == nil {
		return nil, fmt.Errorf("growth model is required")
	}
	if rule == ShapeIndependent && surfaceModel == nil {
		return nil, fmt.Errorf("independent shape rule requires a surface rate model")
	}
	return &Kernel{model: model, rule: rule, surfaceModel: surfaceModel}, nil
}

func (k *Kernel) Rule() ShapeRule { return k.rule }

// Step advances the crack by the configured driver. The depth increment is
// monotonic non-negative; a rate law evaluating to zero or below is an
// error, not a silent clamp, because it marks an invalid deltaK/material
// combination.
func (k *Kernel) Step(state CrackState, sc StepContext, in StepInput) (StepResult, error) {
	if err := in.Validate(); err != nil {
		return StepResult{}, err
	}

	rate, err := k.model.Rate(sc.DeltaK)
	if err != nil {
		return StepResult{}, err
	}
	if rate <= 0 || math.IsNaN(rate) {
		return StepResult{}, fmt.Errorf("growth rate %g at deltaK %g is not positive", rate, sc.DeltaK)
	}

	var da, dn, dk float64
	switch {
	case in.DeltaA != nil:
		da = *in.DeltaA
		dn = da / rate
		dk = sc.DKdA * da
	case in.DeltaN != nil:
		dn = *in.DeltaN
		da = rate * dn
		dk = sc.DKdA * da
	default:
		if sc.DKdA <= 0 {
			return StepResult{}, fmt.Errorf("deltaK-driven step requires a positive dK/da gradient, got %g", sc.DKdA)
		}
		dk = *in.DeltaK
		da = dk / sc.DKdA
		dn = da / rate
	}
	if da < 0 || dn < 0 {
		return StepResult{}, fmt.Errorf("growth step must be non-negative, got da=%g dn=%g", da, dn)
	}

	dc, err := k.lengthIncrement(state, sc, da, dn)
	if err != nil {
		return StepResult{}, err
	}

	return StepResult{
		State: CrackState{
			Depth:      state.Depth + da,
			HalfLength: state.HalfLength + dc,
			Cycles:     state.Cycles + dn,
		},
		DeltaA: da,
		DeltaN: dn,
		DeltaK: dk,
		Rate:   rate,
	}, nil
}

func (k *Kernel) lengthIncrement(state CrackState, sc StepContext, da, dn float64) (float64, error) {
	switch k.rule {
	case ShapeFixedRatio:
		if state.Depth <= 0 {
			return 0, fmt.Errorf("fixed ratio rule requires positive depth, got %g", state.Depth)
		}
		return da * state.HalfLength / state.Depth, nil

	case ShapeFixedLength:
		return 0, nil

	case ShapeAPI579:
		if sc.DeltaKSurface <= 0 {
			return 0, fmt.Errorf("api579 shape rule requires a positive surface deltaK, got %g", sc.DeltaKSurface)
		}
		// Quadratic tie of the length increment to the depth increment
		// through the surface-to-depth stress intensity ratio.
		ratio := sc.DeltaKSurface / sc.DeltaK
		return da * ratio * ratio, nil

	default:
		if sc.DeltaKSurface <= 0 {
			return 0, fmt.Errorf("independent shape rule requires a positive surface deltaK, got %g", sc.DeltaKSurface)
		}
		surfaceRate, err := k.surfaceModel.Rate(sc.DeltaKSurface)
		if err != nil {
			return 0, err
		}
		if surfaceRate <= 0 || math.IsNaN(surfaceRate) {
			return 0, fmt.Errorf("surface growth rate %g at deltaK %g is not positive", surfaceRate, sc.DeltaKSurface)
		}
		return surfaceRate * dn, nil
	}
}
