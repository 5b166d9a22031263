// Package growth models per-cycle fatigue crack growth rates and the
// geometric evolution of the crack front between cycles.
package growth

import (
	"fmt"
	"math"

	"github.com/pipeintegrity/fatigue-core/internal/material"
	"github.com/pipeintegrity/fatigue-core/pkg/utils"
)

// Model computes a crack growth rate da/dN in m/cycle from a stress
// intensity range in MPa·sqrt(m). Implementations are immutable and safe
// for concurrent use.
type Model interface {
	// Rate returns da/dN for the given deltaK. deltaK must be positive.
	Rate(deltaK float64) (float64, error)
	Name() string
}

// Paris is the two-parameter power law da/dN = C * deltaK^m.
type Paris struct {
	C float64
	M float64
}

// NewParis validates the law coefficients.
func NewParis(c, m float64) (*Paris, error) {
	if c <= 0 {
		return nil, fmt.Errorf("paris coefficient C must be positive, got %g", c)
	}
	if m <= 0 {
		return nil, fmt.Errorf("paris exponent m must be positive, got %g", m)
	}
	return &Paris{C: c, M: m}, nil
}

func (p *Paris) Name() string { return "paris" }

func (p *Paris) Rate(deltaK float64) (float64, error) {
	if deltaK <= 0 {
		return 0, fmt.Errorf("deltaK must be positive, got %g", deltaK)
	}
	return p.C * math.Pow(deltaK, p.M), nil
}

// Code Case 2938 design curve coefficients. The hydrogen-assisted rate is
// the lesser of the low-deltaK and high-deltaK branch, floored by the
// in-air rate.
const (
	airCoefficient = 6.89e-12
	airExponent    = 3.0

	lowKCoefficient = 3.5e-14
	lowKExponent    = 6.5

	highKCoefficient = 1.5e-11
	highKExponent    = 3.66
)

// CodeCase2938 is the ASME hydrogen-assisted fatigue crack growth design
// curve for pipeline steels. The load ratio and hydrogen fugacity are
// fixed per operating environment at construction.
type CodeCase2938 struct {
	rRatio        float64
	fugacityRatio float64
}

// NewCodeCase2938 builds the design curve model for an operating
// environment. The curve is defined for load ratios in [0, 1).
func NewCodeCase2938(env material.Environment) (*CodeCase2938, error) {
	r := env.RRatio()
	if r < 0 || r >= 1 {
		return nil, fmt.Errorf("load ratio must be in [0, 1), got %g", r)
	}
	return &CodeCase2938{
		rRatio:        r,
		fugacityRatio: env.FugacityRatio(),
	}, nil
}

func (c *CodeCase2938) Name() string { return "code_case_2938" }

func (c *CodeCase2938) Rate(deltaK float64) (float64, error) {
	if deltaK <= 0 {
		return 0, fmt.Errorf("deltaK must be positive, got %g", deltaK)
	}

	r := c.rRatio
	air := airCoefficient * math.Pow(deltaK, airExponent)
	low := lowKCoefficient * c.fugacityRatio * (1 + 0.4286*r) / (1 - r) *
		math.Pow(deltaK, lowKExponent)
	high := highKCoefficient * (1 + 2*r) / (1 - r) *
		math.Pow(deltaK, highKExponent)

	return utils.MaxFloat64(utils.MinFloat64(low, high), air), nil
}
