package material

import (
	"fmt"
	"math"

	"github.com/pipeintegrity/fatigue-core/internal/geometry"
)

const (
	// gasConstant is the universal gas constant in J/(mol·K).
	gasConstant = 8.31446261815324
	// abelNobleCoVolume is the Abel-Noble co-volume b for hydrogen in cm³/mol.
	abelNobleCoVolume = 15.84
	// defaultReferencePressure is the reference pressure for the fugacity
	// ratio in MPa (pure H2).
	defaultReferencePressure = 106.0

	// SMYSWarnPercent is the percent-SMYS level above which operation is
	// flagged for review.
	SMYSWarnPercent = 72.0
	// SMYSLimitPercent is the percent-SMYS level above which the hoop
	// stress exceeds the specified minimum yield strength.
	SMYSLimitPercent = 100.0
)

// Environment describes the cyclic pressure loading and gas composition
// inside the pipeline. Derived quantities are computed at construction;
// the value is immutable afterwards.
type Environment struct {
	// MaxPressure and MinPressure in MPa, max >= min >= 0.
	MaxPressure float64
	MinPressure float64
	// Temperature in K.
	Temperature float64
	// H2VolumeFraction of the transported gas, 0 to 1.
	H2VolumeFraction float64
	// ReferencePressure for the fugacity ratio in MPa.
	ReferencePressure float64

	rRatio        float64
	fugacityRatio float64
}

// NewEnvironment validates the operating conditions and computes the
// derived pressure ratio and hydrogen fugacity quantities.
func NewEnvironment(maxPressure, minPressure, temperature, h2VolumeFraction float64) (Environment, error) {
	if maxPressure <= 0 {
		return Environment{}, fmt.Errorf("max pressure must be positive, got %g", maxPressure)
	}
	if minPressure < 0 || minPressure > maxPressure {
		return Environment{}, fmt.Errorf("min pressure %g must be in [0, max pressure %g]",
			minPressure, maxPressure)
	}
	if temperature < 230 || temperature > 330 {
		return Environment{}, fmt.Errorf("temperature %g K outside supported range [230, 330]", temperature)
	}
	if h2VolumeFraction < 0 || h2VolumeFraction > 1 {
		return Environment{}, fmt.Errorf("H2 volume fraction must be in [0, 1], got %g", h2VolumeFraction)
	}

	env := Environment{
		MaxPressure:       maxPressure,
		MinPressure:       minPressure,
		Temperature:       temperature,
		H2VolumeFraction:  h2VolumeFraction,
		ReferencePressure: defaultReferencePressure,
	}
	env.rRatio = minPressure / maxPressure
	env.fugacityRatio = env.calcFugacityRatio()
	return env, nil
}

// RRatio returns min pressure over max pressure, in [0, 1).
func (e Environment) RRatio() float64 {
	return e.rRatio
}

// FugacityRatio returns sqrt(f/f_ref), the hydrogen fugacity of the blend
// relative to pure H2 at the reference pressure. Zero when the gas carries
// no hydrogen.
func (e Environment) FugacityRatio() float64 {
	return e.fugacityRatio
}

// fugacity uses the Abel-Noble equation of state: f = p·x·exp(b·p/(R·T)).
// With b in cm³/mol and p in MPa the exponent argument is dimensionless.
func (e Environment) fugacity(pressure, volumeFraction float64) float64 {
	coeff := abelNobleCoVolume * pressure / (gasConstant * e.Temperature)
	return pressure * volumeFraction * math.Exp(coeff)
}

func (e Environment) calcFugacityRatio() float64 {
	reference := e.fugacity(e.ReferencePressure, 1)
	if reference <= 0 {
		return 0
	}
	return math.Sqrt(e.fugacity(e.MaxPressure, e.H2VolumeFraction) / reference)
}

// HoopStress returns the thin-wall hoop stress p·R/t at max pressure, in MPa.
func (e Environment) HoopStress(pipe geometry.Pipe) float64 {
	return e.MaxPressure * pipe.MeanRadius() / pipe.WallThickness
}

// PercentSMYS returns the hoop stress as a percentage of the specified
// minimum yield strength.
func (e Environment) PercentSMYS(pipe geometry.Pipe, props Properties) float64 {
	return e.HoopStress(pipe) / props.YieldStrength * 100
}
