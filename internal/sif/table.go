package sif

import "github.com/pipeintegrity/fatigue-core/pkg/utils"

// InfluenceTable holds membrane (G0) and bending (G1) influence
// coefficients for a semi-elliptical surface crack at the deepest point,
// tabulated over aspect ratio a/c and depth ratio a/t, together with a
// curvature correction keyed on t/R. Values follow the API 579-1 Annex 9B
// surface crack solutions for cylinders.
type InfluenceTable struct {
	AspectRatios []float64 // a/c grid, ascending
	DepthRatios  []float64 // a/t grid, ascending

	// G0[i][j] and G1[i][j] are the coefficients at AspectRatios[i],
	// DepthRatios[j].
	G0 [][]float64
	G1 [][]float64

	// Curvature correction applied multiplicatively to both coefficients.
	CurvatureRatios  []float64 // t/R grid, ascending
	CurvatureFactors []float64
}

// Coefficients holds interpolated influence coefficients for one crack
// state. Extrapolated is set when any lookup landed outside the grid; the
// returned values are then edge-clamped.
type Coefficients struct {
	G0           float64
	G1           float64
	Extrapolated bool
}

// internalTable and externalTable carry the deepest-point coefficients for
// cracks on the inner and outer wall surface respectively.
var internalTable = &InfluenceTable{
	AspectRatios: []float64{0.2, 0.4, 0.6, 0.8, 1.0},
	DepthRatios:  []float64{0.0, 0.2, 0.4, 0.6, 0.8},
	G0: [][]float64{
		{1.070, 1.160, 1.380, 1.810, 2.510},
		{1.010, 1.070, 1.220, 1.480, 1.870},
		{0.950, 0.990, 1.090, 1.250, 1.470},
		{0.900, 0.930, 0.990, 1.090, 1.220},
		{0.860, 0.880, 0.920, 0.980, 1.060},
	},
	G1: [][]float64{
		{0.670, 0.700, 0.800, 1.000, 1.330},
		{0.650, 0.670, 0.730, 0.850, 1.030},
		{0.620, 0.630, 0.670, 0.740, 0.850},
		{0.590, 0.600, 0.620, 0.670, 0.730},
		{0.560, 0.570, 0.580, 0.610, 0.650},
	},
	CurvatureRatios:  []float64{0.0, 0.05, 0.1, 0.15, 0.2},
	CurvatureFactors: []float64{1.00, 1.02, 1.05, 1.09, 1.14},
}

var externalTable = &InfluenceTable{
	AspectRatios: []float64{0.2, 0.4, 0.6, 0.8, 1.0},
	DepthRatios:  []float64{0.0, 0.2, 0.4, 0.6, 0.8},
	G0: [][]float64{
		{1.040, 1.120, 1.320, 1.720, 2.370},
		{0.980, 1.030, 1.170, 1.410, 1.770},
		{0.920, 0.960, 1.050, 1.190, 1.390},
		{0.870, 0.900, 0.950, 1.040, 1.160},
		{0.830, 0.850, 0.890, 0.940, 1.010},
	},
	G1: [][]float64{
		{0.650, 0.680, 0.770, 0.960, 1.270},
		{0.630, 0.650, 0.710, 0.820, 0.980},
		{0.600, 0.610, 0.650, 0.710, 0.810},
		{0.570, 0.580, 0.600, 0.650, 0.700},
		{0.540, 0.550, 0.560, 0.590, 0.630},
	},
	CurvatureRatios:  []float64{0.0, 0.05, 0.1, 0.15, 0.2},
	CurvatureFactors: []float64{1.00, 1.01, 1.03, 1.06, 1.10},
}

// DefaultTable returns the built-in influence table for the given surface.
func DefaultTable(surface Surface) *InfluenceTable {
	if surface == SurfaceExternal {
		return externalTable
	}
	return internalTable
}

// Lookup interpolates G0 and G1 at (aspectRatio, depthRatio, curvatureRatio)
// using bilinear interpolation over the (a/c, a/t) grid followed by a
// one-dimensional curvature correction on t/R. Lookups outside the grid
// clamp to the nearest edge and mark the result extrapolated.
func (t *InfluenceTable) Lookup(aspectRatio, depthRatio, curvatureRatio float64) Coefficients {
	i, outAC := utils.SearchInterval(aspectRatio, t.AspectRatios)
	j, outAT := utils.SearchInterval(depthRatio, t.DepthRatios)
	_, outTR := utils.SearchInterval(curvatureRatio, t.CurvatureRatios)

	g0 := t.bilinear(t.G0, i, j, aspectRatio, depthRatio)
	g1 := t.bilinear(t.G1, i, j, aspectRatio, depthRatio)
	cf := utils.Interp(curvatureRatio, t.CurvatureRatios, t.CurvatureFactors)

	return Coefficients{
		G0:           g0 * cf,
		G1:           g1 * cf,
		Extrapolated: outAC || outAT || outTR,
	}
}

func (t *InfluenceTable) bilinear(grid [][]float64, i, j int, ac, at float64) float64 {
	x0, x1 := t.AspectRatios[i], t.AspectRatios[i+1]
	y0, y1 := t.DepthRatios[j], t.DepthRatios[j+1]

	tx := utils.ClampFloat64((ac-x0)/(x1-x0), 0, 1)
	ty := utils.ClampFloat64((at-y0)/(y1-y0), 0, 1)

	low := grid[i][j]*(1-ty) + grid[i][j+1]*ty
	high := grid[i+1][j]*(1-ty) + grid[i+1][j+1]*ty
	return low*(1-tx) + high*tx
}
