// Package material holds the pipe steel properties and the gas environment
// specification, including the hydrogen fugacity quantities that feed the
// fatigue crack growth model.
package material

import "fmt"

// Properties describes the pipe steel. Immutable per analysis.
type Properties struct {
	// YieldStrength in MPa.
	YieldStrength float64
	// FractureToughness in MPa·sqrt(m).
	FractureToughness float64
}

// NewProperties validates and returns a material specification.
func NewProperties(yieldStrength, fractureToughness float64) (Properties, error) {
	if yieldStrength <= 0 {
		return Properties{}, fmt.Errorf("yield strength must be positive, got %g", yieldStrength)
	}
	if fractureToughness <= 0 {
		return Properties{}, fmt.Errorf("fracture toughness must be positive, got %g", fractureToughness)
	}
	return Properties{
		YieldStrength:     yieldStrength,
		FractureToughness: fractureToughness,
	}, nil
}
