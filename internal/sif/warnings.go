package sif

// Warning flags a non-fatal applicability issue with an evaluated solution.
// Warnings do not stop an evaluation; callers surface them once per run.
type Warning string

const (
	// WarnDepthRatio fires when a/t exceeds the finite-length solution's
	// validated range of 0.8.
	WarnDepthRatio Warning = "crack depth ratio a/t exceeds 0.8 applicability bound"
	// WarnDepthRatioInfinite fires when a/t exceeds the infinite-length
	// solution's validated range of 0.75.
	WarnDepthRatioInfinite Warning = "crack depth ratio a/t exceeds 0.75 infinite-length applicability bound"
	// WarnCurvatureAnderson fires when t/Rm falls outside the Anderson
	// correlation's validated range of [0.05, 0.2].
	WarnCurvatureAnderson Warning = "wall thickness ratio t/R outside [0.05, 0.2] applicability range"
	// WarnTableExtrapolated fires when influence coefficients were read
	// outside the tabulated (a/c, a/t) grid.
	WarnTableExtrapolated Warning = "influence coefficients extrapolated beyond tabulated range"
)
