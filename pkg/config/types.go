// Package config defines the YAML analysis configuration and its mapping
// onto the core input types.
package config

import "time"

// Config is the top-level analysis configuration.
type Config struct {
	LogLevel        string          `yaml:"log_level"`
	Geometry        Geometry        `yaml:"geometry"`
	Material        Material        `yaml:"material"`
	Environment     Environment     `yaml:"environment"`
	Crack           Crack           `yaml:"crack"`
	StressIntensity StressIntensity `yaml:"stress_intensity"`
	Growth          Growth          `yaml:"growth"`
	Stepping        *Stepping       `yaml:"stepping,omitempty"`
	Study           *Study          `yaml:"study,omitempty"`
	Inspection      *Inspection     `yaml:"inspection,omitempty"`
	Parameters      []ParameterSpec `yaml:"parameters,omitempty"`
}

// Geometry is the pipe cross-section, in meters.
type Geometry struct {
	OuterDiameter float64 `yaml:"outer_diameter"`
	WallThickness float64 `yaml:"wall_thickness"`
}

// Material is the pipe steel, in MPa and MPa·sqrt(m).
type Material struct {
	YieldStrength     float64 `yaml:"yield_strength"`
	FractureToughness float64 `yaml:"fracture_toughness"`
}

// Environment is the cyclic pressure loading and gas blend.
type Environment struct {
	MaxPressure float64 `yaml:"max_pressure"`
	MinPressure float64 `yaml:"min_pressure"`
	Temperature float64 `yaml:"temperature"`
	H2Fraction  float64 `yaml:"h2_fraction"`
}

// Crack is the initial flaw. Depth (meters) takes precedence over
// DepthRatio (fraction of wall); AspectRatio is a/2c.
type Crack struct {
	Depth       float64 `yaml:"depth,omitempty"`
	DepthRatio  float64 `yaml:"depth_ratio,omitempty"`
	AspectRatio float64 `yaml:"aspect_ratio"`
}

// StressIntensity selects the SIF correlation.
type StressIntensity struct {
	Method       string `yaml:"method"`       // anderson, api579
	Surface      string `yaml:"surface"`      // internal, external
	Idealization string `yaml:"idealization"` // finite, infinite
}

// Growth selects the rate law and shape evolution rule.
type Growth struct {
	Law       string  `yaml:"law"` // code_case_2938, paris
	ParisC    float64 `yaml:"paris_c,omitempty"`
	ParisM    float64 `yaml:"paris_m,omitempty"`
	ShapeRule string  `yaml:"shape_rule"` // fixed_ratio, fixed_length, api579, independent
}

// Stepping tunes the evolution loop.
type Stepping struct {
	Mode           string  `yaml:"mode"` // depth, cycles
	CycleIncrement float64 `yaml:"cycle_increment,omitempty"`
	MaxCycles      float64 `yaml:"max_cycles,omitempty"`
}

// Study turns the configuration into a probabilistic or sensitivity run.
type Study struct {
	Kind             string `yaml:"kind"` // random, lhs, bounding, sensitivity
	AleatorySamples  int    `yaml:"aleatory_samples"`
	EpistemicSamples int    `yaml:"epistemic_samples,omitempty"`
	Seed             uint64 `yaml:"seed"`
	MaxWorkers       int    `yaml:"max_workers,omitempty"`
	Budget           string `yaml:"budget,omitempty"` // e.g. "5m"
}

// Inspection layers a periodic inspection and mitigation program over a
// study's results.
type Inspection struct {
	ProbabilityOfDetection float64 `yaml:"probability_of_detection"`
	// DetectionResolution is the smallest detectable crack depth as a
	// fraction of wall thickness.
	DetectionResolution float64 `yaml:"detection_resolution"`
	// InspectionFrequency is the cycle count between inspections.
	InspectionFrequency float64 `yaml:"inspection_frequency"`
}

// GetBudget parses the wall-clock budget string. Empty means unbounded.
func (s *Study) GetBudget() (time.Duration, error) {
	if s.Budget == "" {
		return 0, nil
	}
	return time.ParseDuration(s.Budget)
}

// ParameterSpec declares one uncertain input by name.
type ParameterSpec struct {
	Name         string  `yaml:"name"`
	Distribution string  `yaml:"distribution"` // deterministic, normal, lognormal, uniform, truncated_normal, truncated_lognormal
	Class        string  `yaml:"class,omitempty"`
	Nominal      float64 `yaml:"nominal"`
	Mean         float64 `yaml:"mean,omitempty"`
	StdDev       float64 `yaml:"std_dev,omitempty"`
	Lower        float64 `yaml:"lower,omitempty"`
	Upper        float64 `yaml:"upper,omitempty"`
}
