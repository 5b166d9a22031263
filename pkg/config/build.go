package config

import (
	"fmt"

	"github.com/pipeintegrity/fatigue-core/internal/analysis"
	"github.com/pipeintegrity/fatigue-core/internal/evolution"
	"github.com/pipeintegrity/fatigue-core/internal/growth"
	"github.com/pipeintegrity/fatigue-core/internal/sif"
	"github.com/pipeintegrity/fatigue-core/internal/study"
)

// AnalysisInput resolves the configuration into a deterministic analysis
// input. Enum strings are parsed here; numeric validation happens in
// analysis.New.
func (c *Config) AnalysisInput() (analysis.Input, error) {
	method, err := sif.ParseMethod(orDefault(c.StressIntensity.Method, "anderson"))
	if err != nil {
		return analysis.Input{}, err
	}
	surface, err := sif.ParseSurface(orDefault(c.StressIntensity.Surface, "internal"))
	if err != nil {
		return analysis.Input{}, err
	}
	ideal, err := sif.ParseIdealization(c.StressIntensity.Idealization)
	if err != nil {
		return analysis.Input{}, err
	}
	shape, err := growth.ParseShapeRule(orDefault(c.Growth.ShapeRule, "fixed_ratio"))
	if err != nil {
		return analysis.Input{}, err
	}
	law, err := analysis.ParseGrowthLaw(c.Growth.Law)
	if err != nil {
		return analysis.Input{}, err
	}

	in := analysis.Input{
		OuterDiameter:     c.Geometry.OuterDiameter,
		WallThickness:     c.Geometry.WallThickness,
		YieldStrength:     c.Material.YieldStrength,
		FractureToughness: c.Material.FractureToughness,
		MaxPressure:       c.Environment.MaxPressure,
		MinPressure:       c.Environment.MinPressure,
		Temperature:       c.Environment.Temperature,
		H2VolumeFraction:  c.Environment.H2Fraction,
		FlawDepth:         c.Crack.Depth,
		FlawDepthRatio:    c.Crack.DepthRatio,
		FlawAspectRatio:   c.Crack.AspectRatio,
		Method:            method,
		Surface:           surface,
		Idealization:      ideal,
		ShapeRule:         shape,
		Law:               law,
		ParisC:            c.Growth.ParisC,
		ParisM:            c.Growth.ParisM,
	}

	if c.Stepping != nil {
		switch c.Stepping.Mode {
		case "", "depth":
			in.StepMode = evolution.ByDepthRatio
		case "cycles":
			in.StepMode = evolution.ByCycles
		default:
			return analysis.Input{}, fmt.Errorf("unknown stepping mode %q (supported: depth, cycles)", c.Stepping.Mode)
		}
		in.CycleIncrement = c.Stepping.CycleIncrement
		in.MaxCycles = c.Stepping.MaxCycles
	}
	return in, nil
}

// StudyConfig resolves the configuration into a study. A missing study
// section yields a single-sample deterministic study.
func (c *Config) StudyConfig() (study.Config, error) {
	base, err := c.AnalysisInput()
	if err != nil {
		return study.Config{}, err
	}

	cfg := study.Config{Base: base, AleatorySamples: 1}
	for _, spec := range c.Parameters {
		p, err := spec.toParameter()
		if err != nil {
			return study.Config{}, err
		}
		cfg.Parameters = append(cfg.Parameters, p)
	}

	if c.Study != nil {
		kind, err := study.ParseKind(c.Study.Kind)
		if err != nil {
			return study.Config{}, err
		}
		budget, err := c.Study.GetBudget()
		if err != nil {
			return study.Config{}, err
		}
		cfg.Kind = kind
		if c.Study.AleatorySamples > 0 {
			cfg.AleatorySamples = c.Study.AleatorySamples
		}
		cfg.EpistemicSamples = c.Study.EpistemicSamples
		cfg.Seed = c.Study.Seed
		cfg.MaxWorkers = c.Study.MaxWorkers
		cfg.Budget = budget
	}
	if c.Inspection != nil {
		cfg.Inspection = &study.Inspection{
			ProbabilityOfDetection: c.Inspection.ProbabilityOfDetection,
			DetectionResolution:    c.Inspection.DetectionResolution,
			InspectionFrequency:    c.Inspection.InspectionFrequency,
		}
	}
	return cfg, nil
}

func (p ParameterSpec) toParameter() (study.Parameter, error) {
	kind, err := study.ParseDistKind(p.Distribution)
	if err != nil {
		return study.Parameter{}, fmt.Errorf("parameter %s: %w", p.Name, err)
	}
	class, err := study.ParseClass(p.Class)
	if err != nil {
		return study.Parameter{}, fmt.Errorf("parameter %s: %w", p.Name, err)
	}
	out := study.Parameter{
		Name:    p.Name,
		Kind:    kind,
		Class:   class,
		Nominal: p.Nominal,
		Mean:    p.Mean,
		StdDev:  p.StdDev,
		Lower:   p.Lower,
		Upper:   p.Upper,
	}
	return out, out.Validate()
}

func orDefault(s, def string) string {
	if s == "" {
		return def
	}
	return s
}
