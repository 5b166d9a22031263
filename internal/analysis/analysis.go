// Package analysis assembles one fully-resolved configuration into a
// deterministic crack evolution run and its derived summaries.
package analysis

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"

	"github.com/pipeintegrity/fatigue-core/internal/evolution"
	"github.com/pipeintegrity/fatigue-core/internal/fad"
	"github.com/pipeintegrity/fatigue-core/internal/geometry"
	"github.com/pipeintegrity/fatigue-core/internal/growth"
	"github.com/pipeintegrity/fatigue-core/internal/material"
	"github.com/pipeintegrity/fatigue-core/internal/sif"
	"github.com/pipeintegrity/fatigue-core/pkg/logger"
)

// GrowthLaw selects the fatigue crack growth rate model.
type GrowthLaw int

const (
	// LawCodeCase2938 is the hydrogen-assisted design curve. The default.
	LawCodeCase2938 GrowthLaw = iota
	// LawParis is the plain two-parameter power law.
	LawParis
)

func (l GrowthLaw) String() string {
	if l == LawParis {
		return "paris"
	}
	return "code_case_2938"
}

// ParseGrowthLaw converts a configuration string to a GrowthLaw.
func ParseGrowthLaw(s string) (GrowthLaw, error) {
	switch s {
	case "", "code_case_2938", "cc2938":
		return LawCodeCase2938, nil
	case "paris":
		return LawParis, nil
	default:
		return 0, fmt.Errorf("unknown growth law %q (supported: code_case_2938, paris)", s)
	}
}

// Input is one fully-resolved point-value configuration. All lengths in
// meters, pressures and stresses in MPa, temperature in K.
type Input struct {
	OuterDiameter float64
	WallThickness float64

	YieldStrength     float64
	FractureToughness float64

	MaxPressure      float64
	MinPressure      float64
	Temperature      float64
	H2VolumeFraction float64

	// FlawDepth is the initial crack depth. When zero, FlawDepthRatio
	// (fraction of wall thickness) is used instead.
	FlawDepth      float64
	FlawDepthRatio float64
	// FlawAspectRatio is the initial a/2c.
	FlawAspectRatio float64

	Method       sif.Method
	Surface      sif.Surface
	Idealization sif.Idealization
	ShapeRule    growth.ShapeRule
	// Table overrides the built-in influence coefficients. Ignored by the
	// Anderson method.
	Table *sif.InfluenceTable

	Law    GrowthLaw
	ParisC float64
	ParisM float64

	StepMode       evolution.StepMode
	CycleIncrement float64
	// MaxCycles bounds the run; zero leaves it unbounded.
	MaxCycles float64
}

// Summary holds the scalar derived parameters of one run.
type Summary struct {
	PercentSMYS     float64 `json:"percent_smys" yaml:"percent_smys"`
	HoopStress      float64 `json:"hoop_stress" yaml:"hoop_stress"`
	RRatio          float64 `json:"r_ratio" yaml:"r_ratio"`
	FugacityRatio   float64 `json:"fugacity_ratio" yaml:"fugacity_ratio"`
	AspectRatio     float64 `json:"aspect_ratio" yaml:"aspect_ratio"` // initial a/2c
	ThicknessRatio  float64 `json:"thickness_ratio" yaml:"thickness_ratio"`
	CriticalDepth   float64 `json:"critical_depth" yaml:"critical_depth"`
	Reason          string  `json:"reason" yaml:"reason"`
	CyclesToFailure float64 `json:"cycles_to_failure" yaml:"cycles_to_failure"`
}

// Result is the deterministic result bundle.
type Result struct {
	Evolution *evolution.Result
	Summary   Summary
	Life      evolution.Life
	// Warnings merges the run's deduplicated applicability warnings with
	// operating point flags, as strings for transport.
	Warnings []string
}

// Analysis is one validated, runnable configuration.
type Analysis struct {
	in     Input
	pipe   geometry.Pipe
	env    material.Environment
	props  material.Properties
	model  *sif.Model
	kernel *growth.Kernel
	fad    *fad.Evaluator
	rate   growth.Model

	initial growth.CrackState
	log     *slog.Logger
}

// New validates the configuration and wires the run's collaborators.
// Every validation failure here is a configuration error: it surfaces
// before any integration starts.
func New(in Input) (*Analysis, error) {
	pipe, err := geometry.New(in.OuterDiameter, in.WallThickness)
	if err != nil {
		return nil, err
	}
	env, err := material.NewEnvironment(in.MaxPressure, in.MinPressure, in.Temperature, in.H2VolumeFraction)
	if err != nil {
		return nil, err
	}
	props, err := material.NewProperties(in.YieldStrength, in.FractureToughness)
	if err != nil {
		return nil, err
	}

	depth := in.FlawDepth
	if depth == 0 {
		depth = in.FlawDepthRatio * pipe.WallThickness
	}
	if depth <= 0 || depth >= pipe.WallThickness {
		return nil, fmt.Errorf("initial flaw depth %g must be inside (0, wall thickness %g)", depth, pipe.WallThickness)
	}
	if in.FlawAspectRatio <= 0 || in.FlawAspectRatio > 0.5 {
		return nil, fmt.Errorf("flaw aspect ratio a/2c must be in (0, 0.5], got %g", in.FlawAspectRatio)
	}
	halfLength := depth / (2 * in.FlawAspectRatio)

	if in.ShapeRule == growth.ShapeIndependent && in.Method != sif.MethodAPI579 {
		return nil, fmt.Errorf("independent crack growth requires the api579 stress intensity method")
	}

	model, err := sif.NewModel(in.Method, in.Surface, in.Idealization, pipe, in.Table)
	if err != nil {
		return nil, err
	}

	rate, err := buildRate(in, env)
	if err != nil {
		return nil, err
	}
	var surfaceRate growth.Model
	if in.ShapeRule == growth.ShapeIndependent {
		surfaceRate = rate
	}
	kernel, err := growth.NewKernel(rate, in.ShapeRule, surfaceRate)
	if err != nil {
		return nil, err
	}
	evaluator, err := fad.NewEvaluator(props.FractureToughness, props.YieldStrength)
	if err != nil {
		return nil, err
	}

	return &Analysis{
		in:      in,
		pipe:    pipe,
		env:     env,
		props:   props,
		model:   model,
		kernel:  kernel,
		fad:     evaluator,
		rate:    rate,
		initial: growth.CrackState{Depth: depth, HalfLength: halfLength},
		log: logger.With(
			"component", "analysis",
			"method", in.Method.String(),
			"shape_rule", in.ShapeRule.String(),
		),
	}, nil
}

func buildRate(in Input, env material.Environment) (growth.Model, error) {
	if in.Law == LawParis {
		return growth.NewParis(in.ParisC, in.ParisM)
	}
	return growth.NewCodeCase2938(env)
}

// Pipe exposes the validated geometry for study-level summaries.
func (a *Analysis) Pipe() geometry.Pipe { return a.pipe }

// RateModel exposes the growth law, for design curve overlays.
func (a *Analysis) RateModel() growth.Model { return a.rate }

// Run executes the cycle evolution loop and assembles the result bundle.
func (a *Analysis) Run(ctx context.Context) (*Result, error) {
	driver, err := evolution.NewDriver(a.pipe, a.env, a.model, a.kernel, a.fad, evolution.Options{
		Mode:           a.in.StepMode,
		CycleIncrement: a.in.CycleIncrement,
		MaxCycles:      a.in.MaxCycles,
	})
	if err != nil {
		return nil, err
	}

	a.log.Debug("starting evolution run",
		"initial_depth", a.initial.Depth,
		"initial_half_length", a.initial.HalfLength)

	evo, err := driver.Run(ctx, a.initial)
	if err != nil {
		return nil, err
	}

	aCrit, err := evolution.CriticalDepth(a.model, a.env.MaxPressure, a.props.FractureToughness,
		a.pipe.WallThickness, a.lengthAt())
	if err != nil {
		return nil, err
	}

	percentSMYS := a.env.PercentSMYS(a.pipe, a.props)
	res := &Result{
		Evolution: evo,
		Life:      evolution.LifeCriteria(evo.Samples, aCrit),
		Summary: Summary{
			PercentSMYS:     percentSMYS,
			HoopStress:      a.env.HoopStress(a.pipe),
			RRatio:          a.env.RRatio(),
			FugacityRatio:   a.env.FugacityRatio(),
			AspectRatio:     a.initial.AspectRatio() / 2,
			ThicknessRatio:  a.pipe.ThicknessRatio(),
			CriticalDepth:   aCrit,
			Reason:          evo.Reason.String(),
			CyclesToFailure: evo.CyclesToFailure,
		},
	}

	for _, w := range evo.Warnings {
		res.Warnings = append(res.Warnings, string(w))
	}
	if percentSMYS >= material.SMYSWarnPercent {
		res.Warnings = append(res.Warnings,
			fmt.Sprintf("hoop stress at %.1f%% SMYS exceeds the %g%% review level", percentSMYS, material.SMYSWarnPercent))
	}
	if percentSMYS > material.SMYSLimitPercent {
		res.Warnings = append(res.Warnings,
			fmt.Sprintf("hoop stress at %.1f%% SMYS exceeds the yield-based limit", percentSMYS))
	}

	// NaN cycles (never-critical runs) cannot pass through a JSON log
	// handler as a float.
	a.log.Info("evolution run complete",
		"reason", evo.Reason.String(),
		"cycles_to_failure", strconv.FormatFloat(evo.CyclesToFailure, 'g', -1, 64),
		"samples", len(evo.Samples),
		"warnings", len(res.Warnings))
	return res, nil
}

// lengthAt maps a candidate depth to the half length the shape assumption
// implies, for the critical depth solve. Rules that do not keep the aspect
// ratio fixed hold the initial half length instead.
func (a *Analysis) lengthAt() func(float64) float64 {
	if a.in.ShapeRule == growth.ShapeFixedRatio {
		ratio := a.initial.AspectRatio()
		return func(depth float64) float64 { return depth / ratio }
	}
	c := a.initial.HalfLength
	return func(float64) float64 { return c }
}

// DesignCurve samples the configured rate law over a deltaK decade range
// covering the run, for overlay plots.
func (a *Analysis) DesignCurve(minDeltaK, maxDeltaK float64, points int) ([]growth.CurvePoint, error) {
	return growth.DesignCurve(a.rate, minDeltaK, maxDeltaK, points)
}
