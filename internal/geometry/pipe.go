// Package geometry defines the pipe cross-section model shared by the
// stress and evolution layers.
package geometry

import "fmt"

// Pipe describes the cross-section of a line pipe segment. All dimensions
// are in meters. A Pipe is immutable once constructed.
type Pipe struct {
	OuterDiameter float64
	WallThickness float64
}

// New validates the raw dimensions and returns a Pipe.
func New(outerDiameter, wallThickness float64) (Pipe, error) {
	if outerDiameter <= 0 {
		return Pipe{}, fmt.Errorf("outer diameter must be positive, got %g", outerDiameter)
	}
	if wallThickness <= 0 {
		return Pipe{}, fmt.Errorf("wall thickness must be positive, got %g", wallThickness)
	}
	if wallThickness >= outerDiameter/2 {
		return Pipe{}, fmt.Errorf("wall thickness %g must be less than outer radius %g",
			wallThickness, outerDiameter/2)
	}
	return Pipe{OuterDiameter: outerDiameter, WallThickness: wallThickness}, nil
}

// InnerDiameter returns the pipe bore diameter.
func (p Pipe) InnerDiameter() float64 {
	return p.OuterDiameter - 2*p.WallThickness
}

// InnerRadius returns the pipe bore radius.
func (p Pipe) InnerRadius() float64 {
	return p.InnerDiameter() / 2
}

// OuterRadius returns the outside radius.
func (p Pipe) OuterRadius() float64 {
	return p.OuterDiameter / 2
}

// MeanRadius returns the mid-wall radius.
func (p Pipe) MeanRadius() float64 {
	return (p.OuterDiameter - p.WallThickness) / 2
}

// ThicknessRatio returns t/R, wall thickness over mean radius.
func (p Pipe) ThicknessRatio() float64 {
	return p.WallThickness / p.MeanRadius()
}
