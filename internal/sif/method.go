// Package sif computes stress intensity factors for semi-elliptical surface
// cracks in internally pressurized pipe, using either the Anderson
// closed-form correlations or API 579-1 influence-coefficient tables.
package sif

import "fmt"

// Method selects the stress intensity correlation family.
type Method int

const (
	// MethodAnderson uses the closed-form part-through internal flaw
	// correlations. Internal surface only.
	MethodAnderson Method = iota
	// MethodAPI579 uses tabulated influence coefficients per API 579-1
	// Annex 9B, supporting internal and external surfaces.
	MethodAPI579
)

func (m Method) String() string {
	switch m {
	case MethodAnderson:
		return "anderson"
	case MethodAPI579:
		return "api579"
	default:
		return fmt.Sprintf("method(%d)", int(m))
	}
}

// ParseMethod converts a configuration string to a Method.
func ParseMethod(s string) (Method, error) {
	switch s {
	case "anderson":
		return MethodAnderson, nil
	case "api579", "api":
		return MethodAPI579, nil
	default:
		return 0, fmt.Errorf("unknown stress intensity method %q (supported: anderson, api579)", s)
	}
}

// Surface identifies which pipe wall surface carries the crack.
type Surface int

const (
	SurfaceInternal Surface = iota
	SurfaceExternal
)

func (s Surface) String() string {
	switch s {
	case SurfaceInternal:
		return "internal"
	case SurfaceExternal:
		return "external"
	default:
		return fmt.Sprintf("surface(%d)", int(s))
	}
}

// ParseSurface converts a configuration string to a Surface.
func ParseSurface(s string) (Surface, error) {
	switch s {
	case "internal", "inside":
		return SurfaceInternal, nil
	case "external", "outside":
		return SurfaceExternal, nil
	default:
		return 0, fmt.Errorf("unknown crack surface %q (supported: internal, external)", s)
	}
}

// Idealization selects between the finite-length semi-elliptical flaw
// solution and the infinitely long flaw simplification.
type Idealization int

const (
	FiniteLength Idealization = iota
	InfiniteLength
)

// ParseIdealization converts a configuration string to an Idealization.
func ParseIdealization(s string) (Idealization, error) {
	switch s {
	case "", "finite", "finite_length":
		return FiniteLength, nil
	case "infinite", "infinite_length":
		return InfiniteLength, nil
	default:
		return 0, fmt.Errorf("unknown flaw idealization %q (supported: finite, infinite)", s)
	}
}

func (i Idealization) String() string {
	switch i {
	case FiniteLength:
		return "finite"
	case InfiniteLength:
		return "infinite"
	default:
		return fmt.Sprintf("idealization(%d)", int(i))
	}
}
