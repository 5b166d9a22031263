package growth

import "fmt"

// ShapeRule selects how the crack half length evolves as the depth grows.
type ShapeRule int

const (
	// ShapeFixedRatio grows the half length proportionally so the aspect
	// ratio a/c stays constant.
	ShapeFixedRatio ShapeRule = iota
	// ShapeFixedLength freezes the half length; only the depth grows.
	ShapeFixedLength
	// ShapeAPI579 ties the length increment to the depth increment through
	// the surface-to-depth stress intensity ratio.
	ShapeAPI579
	// ShapeIndependent integrates the half length from its own rate law
	// evaluated at the surface point stress intensity range.
	ShapeIndependent
)

func (r ShapeRule) String() string {
	switch r {
	case ShapeFixedRatio:
		return "fixed_ratio"
	case ShapeFixedLength:
		return "fixed_length"
	case ShapeAPI579:
		return "api579"
	case ShapeIndependent:
		return "independent"
	default:
		return fmt.Sprintf("shape(%d)", int(r))
	}
}

// ParseShapeRule converts a configuration string to a ShapeRule.
func ParseShapeRule(s string) (ShapeRule, error) {
	switch s {
	case "fixed_ratio", "constant_ratio":
		return ShapeFixedRatio, nil
	case "fixed_length", "constant_length":
		return ShapeFixedLength, nil
	case "api579", "api":
		return ShapeAPI579, nil
	case "independent":
		return ShapeIndependent, nil
	default:
		return 0, fmt.Errorf("unknown shape rule %q (supported: fixed_ratio, fixed_length, api579, independent)", s)
	}
}
