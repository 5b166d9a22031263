// Package study runs many deterministic analyses over sampled parameter
// draws and aggregates the outcomes.
package study

import (
	"fmt"

	"gonum.org/v1/gonum/stat/distuv"
)

// Class separates irreducible (aleatory) from knowledge (epistemic)
// uncertainty. Epistemic draws are held fixed across a nested aleatory set.
type Class int

const (
	ClassAleatory Class = iota
	ClassEpistemic
)

func (c Class) String() string {
	if c == ClassEpistemic {
		return "epistemic"
	}
	return "aleatory"
}

// ParseClass converts a configuration string to a Class.
func ParseClass(s string) (Class, error) {
	switch s {
	case "", "aleatory":
		return ClassAleatory, nil
	case "epistemic":
		return ClassEpistemic, nil
	default:
		return 0, fmt.Errorf("unknown uncertainty class %q (supported: aleatory, epistemic)", s)
	}
}

// DistKind is the distribution family of an uncertain parameter.
type DistKind int

const (
	Deterministic DistKind = iota
	Normal
	LogNormal
	Uniform
	TruncNormal
	TruncLogNormal
)

func (k DistKind) String() string {
	switch k {
	case Normal:
		return "normal"
	case LogNormal:
		return "lognormal"
	case Uniform:
		return "uniform"
	case TruncNormal:
		return "truncated_normal"
	case TruncLogNormal:
		return "truncated_lognormal"
	default:
		return "deterministic"
	}
}

// ParseDistKind converts a configuration string to a DistKind.
func ParseDistKind(s string) (DistKind, error) {
	switch s {
	case "", "deterministic":
		return Deterministic, nil
	case "normal":
		return Normal, nil
	case "lognormal":
		return LogNormal, nil
	case "uniform":
		return Uniform, nil
	case "truncated_normal", "truncnormal":
		return TruncNormal, nil
	case "truncated_lognormal", "trunclognormal":
		return TruncLogNormal, nil
	default:
		return 0, fmt.Errorf("unknown distribution %q", s)
	}
}

// Parameter is one uncertain input. For the normal families Mean and
// StdDev parameterize the underlying normal (log-space for the lognormal
// families). Lower and Upper are the uniform bounds or the truncation
// interval.
type Parameter struct {
	Name  string
	Kind  DistKind
	Class Class

	Nominal float64
	Mean    float64
	StdDev  float64
	Lower   float64
	Upper   float64
}

// Validate checks the distribution parameters. Called once per study
// before any sampling.
func (p Parameter) Validate() error {
	if p.Name == "" {
		return fmt.Errorf("parameter name is required")
	}
	switch p.Kind {
	case Deterministic:
		return nil
	case Normal, LogNormal:
		if p.StdDev <= 0 {
			return fmt.Errorf("parameter %s: standard deviation must be positive, got %g", p.Name, p.StdDev)
		}
	case Uniform:
		if p.Lower >= p.Upper {
			return fmt.Errorf("parameter %s: lower bound %g must be below upper bound %g", p.Name, p.Lower, p.Upper)
		}
	case TruncNormal, TruncLogNormal:
		if p.StdDev <= 0 {
			return fmt.Errorf("parameter %s: standard deviation must be positive, got %g", p.Name, p.StdDev)
		}
		if p.Lower >= p.Upper {
			return fmt.Errorf("parameter %s: truncation interval [%g, %g] is empty", p.Name, p.Lower, p.Upper)
		}
	default:
		return fmt.Errorf("parameter %s: unknown distribution kind %d", p.Name, int(p.Kind))
	}
	return nil
}

// Quantile maps a uniform draw u in (0, 1) through the inverse CDF.
// Truncated families rescale u into the CDF mass of the truncation
// interval first.
func (p Parameter) Quantile(u float64) float64 {
	switch p.Kind {
	case Normal:
		return distuv.Normal{Mu: p.Mean, Sigma: p.StdDev}.Quantile(u)
	case LogNormal:
		return distuv.LogNormal{Mu: p.Mean, Sigma: p.StdDev}.Quantile(u)
	case Uniform:
		return distuv.Uniform{Min: p.Lower, Max: p.Upper}.Quantile(u)
	case TruncNormal:
		d := distuv.Normal{Mu: p.Mean, Sigma: p.StdDev}
		return truncQuantile(d, p.Lower, p.Upper, u)
	case TruncLogNormal:
		d := distuv.LogNormal{Mu: p.Mean, Sigma: p.StdDev}
		return truncQuantile(d, p.Lower, p.Upper, u)
	default:
		return p.Nominal
	}
}

// quantiler is satisfied by the distuv continuous distributions.
type quantiler interface {
	CDF(x float64) float64
	Quantile(u float64) float64
}

func truncQuantile(d quantiler, lower, upper, u float64) float64 {
	lo := d.CDF(lower)
	hi := d.CDF(upper)
	if hi <= lo {
		return lower
	}
	return d.Quantile(lo + u*(hi-lo))
}

// uncertain reports whether the parameter actually varies.
func (p Parameter) uncertain() bool {
	return p.Kind != Deterministic
}
