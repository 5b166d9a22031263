package study

import (
	"fmt"
	"math/rand/v2"
)

// Kind is the sampling strategy of a study.
type Kind int

const (
	// KindRandom is plain Monte Carlo sampling.
	KindRandom Kind = iota
	// KindLHS uses Latin hypercube stratification per parameter.
	KindLHS
	// KindBounding evaluates each uncertain parameter at its 1% and 99%
	// quantiles with everything else at nominal, plus the all-nominal run.
	KindBounding
	// KindSensitivity sweeps each uncertain parameter one at a time
	// across its quantile range with everything else at nominal.
	KindSensitivity
)

func (k Kind) String() string {
	switch k {
	case KindLHS:
		return "lhs"
	case KindBounding:
		return "bounding"
	case KindSensitivity:
		return "sensitivity"
	default:
		return "random"
	}
}

// ParseKind converts a configuration string to a study Kind.
func ParseKind(s string) (Kind, error) {
	switch s {
	case "", "deterministic", "random", "monte_carlo":
		return KindRandom, nil
	case "lhs":
		return KindLHS, nil
	case "bounding":
		return KindBounding, nil
	case "sensitivity", "sensitivity_samples":
		return KindSensitivity, nil
	default:
		return 0, fmt.Errorf("unknown study kind %q (supported: random, lhs, bounding, sensitivity)", s)
	}
}

const (
	boundingLowQuantile  = 0.01
	boundingHighQuantile = 0.99
)

// Draw is one resolved sample: parameter values keyed by name, plus the
// nested epistemic/aleatory indices that produced it.
type Draw struct {
	Values    map[string]float64
	Epistemic int
	Aleatory  int
}

// Sheet is the full pre-generated sample plan. Draws are produced in a
// fixed seed-determined order before any dispatch, so worker count and
// completion order never affect which values a sample index receives.
type Sheet struct {
	Draws []Draw
	// EpistemicSets is the number of nested aleatory groups, 1 when the
	// study carries no epistemic draws.
	EpistemicSets int
	// PerSet is the number of draws per epistemic group.
	PerSet int
}

// Generate builds the sample sheet for the given strategy. aleatory is
// the per-set sample count; epistemic is the number of nested sets, with
// zero meaning a single unconditioned set.
func Generate(params []Parameter, kind Kind, aleatory, epistemic int, seed uint64) (*Sheet, error) {
	for _, p := range params {
		if err := p.Validate(); err != nil {
			return nil, err
		}
	}

	switch kind {
	case KindBounding:
		return generateBounding(params), nil
	case KindSensitivity:
		return generateSensitivity(params, aleatory), nil
	}

	if aleatory <= 0 {
		return nil, fmt.Errorf("aleatory sample count must be positive, got %d", aleatory)
	}
	if epistemic < 0 {
		return nil, fmt.Errorf("epistemic sample count must be non-negative, got %d", epistemic)
	}

	rng := rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
	sets := epistemic
	if sets == 0 {
		sets = 1
	}

	sheet := &Sheet{EpistemicSets: sets, PerSet: aleatory}
	for e := 0; e < sets; e++ {
		// One epistemic draw conditions the whole nested set.
		epi := make(map[string]float64)
		for _, p := range params {
			if p.Class == ClassEpistemic {
				epi[p.Name] = p.Quantile(rng.Float64())
			}
		}

		uniforms := aleatoryUniforms(params, kind, aleatory, rng)
		for a := 0; a < aleatory; a++ {
			values := make(map[string]float64, len(params))
			for _, p := range params {
				switch {
				case p.Class == ClassEpistemic:
					if epistemic == 0 {
						// Without nested sets, epistemic parameters
						// collapse to their nominal value.
						values[p.Name] = p.Nominal
					} else {
						values[p.Name] = epi[p.Name]
					}
				case p.uncertain():
					values[p.Name] = p.Quantile(uniforms[p.Name][a])
				default:
					values[p.Name] = p.Nominal
				}
			}
			sheet.Draws = append(sheet.Draws, Draw{Values: values, Epistemic: e, Aleatory: a})
		}
	}
	return sheet, nil
}

// aleatoryUniforms draws the uniform variates for one nested set. LHS
// stratifies each parameter's draws into equal probability bins and
// shuffles the bin order.
func aleatoryUniforms(params []Parameter, kind Kind, n int, rng *rand.Rand) map[string][]float64 {
	out := make(map[string][]float64)
	for _, p := range params {
		if p.Class == ClassEpistemic || !p.uncertain() {
			continue
		}
		u := make([]float64, n)
		if kind == KindLHS {
			perm := rng.Perm(n)
			for i := 0; i < n; i++ {
				u[i] = (float64(perm[i]) + rng.Float64()) / float64(n)
			}
		} else {
			for i := 0; i < n; i++ {
				u[i] = rng.Float64()
			}
		}
		out[p.Name] = u
	}
	return out
}

func nominalValues(params []Parameter) map[string]float64 {
	values := make(map[string]float64, len(params))
	for _, p := range params {
		values[p.Name] = p.Nominal
	}
	return values
}

func generateBounding(params []Parameter) *Sheet {
	sheet := &Sheet{EpistemicSets: 1}
	sheet.Draws = append(sheet.Draws, Draw{Values: nominalValues(params)})
	for _, p := range params {
		if !p.uncertain() {
			continue
		}
		for _, q := range []float64{boundingLowQuantile, boundingHighQuantile} {
			values := nominalValues(params)
			values[p.Name] = p.Quantile(q)
			sheet.Draws = append(sheet.Draws, Draw{Values: values, Aleatory: len(sheet.Draws)})
		}
	}
	sheet.PerSet = len(sheet.Draws)
	return sheet
}

func generateSensitivity(params []Parameter, pointsPerParam int) *Sheet {
	if pointsPerParam < 2 {
		pointsPerParam = 2
	}
	sheet := &Sheet{EpistemicSets: 1}
	span := boundingHighQuantile - boundingLowQuantile
	for _, p := range params {
		if !p.uncertain() {
			continue
		}
		for i := 0; i < pointsPerParam; i++ {
			q := boundingLowQuantile + span*float64(i)/float64(pointsPerParam-1)
			values := nominalValues(params)
			values[p.Name] = p.Quantile(q)
			sheet.Draws = append(sheet.Draws, Draw{Values: values, Aleatory: len(sheet.Draws)})
		}
	}
	sheet.PerSet = len(sheet.Draws)
	return sheet
}
