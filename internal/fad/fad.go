// Package fad implements the Level 2 failure assessment diagram: a crack
// state maps to a (Lr, Kr) point judged against the option-1 envelope.
package fad

import (
	"fmt"
	"math"
)

// LrMax is the plastic collapse cutoff of the assessment envelope.
const LrMax = 1.25

// Point is one assessed crack state on the diagram.
type Point struct {
	Lr float64 `json:"lr" yaml:"lr"`
	Kr float64 `json:"kr" yaml:"kr"`
	// Inside reports whether the point lies under the envelope and left
	// of the collapse cutoff.
	Inside bool `json:"inside" yaml:"inside"`
	// Degenerate marks points built from non-finite inputs. Degenerate
	// points are never inside.
	Degenerate bool `json:"degenerate,omitempty" yaml:"degenerate,omitempty"`
}

// EnvelopeKr returns the option-1 envelope ordinate at the given Lr.
// Beyond the collapse cutoff the envelope is zero.
func EnvelopeKr(lr float64) float64 {
	if lr < 0 || lr > LrMax {
		return 0
	}
	return (1 - 0.14*lr*lr) * (0.3 + 0.7*math.Exp(-0.65*math.Pow(lr, 6)))
}

// Evaluator normalizes crack states against one material's toughness and
// yield strength.
type Evaluator struct {
	toughness     float64
	yieldStrength float64
}

// NewEvaluator validates the material axes of the diagram. toughness is
// K_mat in MPa·sqrt(m), yieldStrength in MPa.
func NewEvaluator(toughness, yieldStrength float64) (*Evaluator, error) {
	if toughness <= 0 {
		return nil, fmt.Errorf("fracture toughness must be positive, got %g", toughness)
	}
	if yieldStrength <= 0 {
		return nil, fmt.Errorf("yield strength must be positive, got %g", yieldStrength)
	}
	return &Evaluator{toughness: toughness, yieldStrength: yieldStrength}, nil
}

// Evaluate maps a stress intensity factor and reference stress to an
// assessed Point. Non-finite inputs produce a degenerate outside point so
// per-cycle callers can terminate without special casing.
func (e *Evaluator) Evaluate(k, referenceStress float64) Point {
	lr := referenceStress / e.yieldStrength
	kr := k / e.toughness

	p := Point{Lr: lr, Kr: kr}
	if math.IsNaN(lr) || math.IsInf(lr, 0) || math.IsNaN(kr) || math.IsInf(kr, 0) {
		p.Degenerate = true
		return p
	}
	p.Inside = lr <= LrMax && kr <= EnvelopeKr(lr)
	return p
}

// CriticalKr returns the envelope ordinate for a point's Lr, the margin
// denominator used in summaries.
func (e *Evaluator) CriticalKr(p Point) float64 {
	return EnvelopeKr(p.Lr)
}

// Envelope samples the assessment curve from Lr = 0 to the collapse
// cutoff, for plotting under assessed point clouds. The samples carry
// coordinates only; Inside is an assessment verdict and stays unset.
func Envelope(points int) []Point {
	if points < 2 {
		points = 2
	}
	out := make([]Point, points)
	step := LrMax / float64(points-1)
	for i := range out {
		lr := float64(i) * step
		out[i] = Point{Lr: lr, Kr: EnvelopeKr(lr)}
	}
	return out
}
