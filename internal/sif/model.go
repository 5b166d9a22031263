package sif

import (
	"fmt"
	"math"

	"github.com/pipeintegrity/fatigue-core/internal/geometry"
	"github.com/pipeintegrity/fatigue-core/pkg/utils"
)

const (
	maxDepthRatioFinite   = 0.8
	maxDepthRatioInfinite = 0.75
	andersonCurvatureMin  = 0.05
	andersonCurvatureMax  = 0.2
)

// Model evaluates the stress intensity factor at the deepest point of a
// part-through axial crack in pressurized pipe. A Model is immutable after
// construction and safe for concurrent use.
type Model struct {
	method  Method
	surface Surface
	ideal   Idealization
	pipe    geometry.Pipe
	table   *InfluenceTable
}

// NewModel validates the method combination and builds a Model. The
// Anderson correlations only cover cracks on the internal surface; the
// API 579 method accepts either surface. A nil table selects the built-in
// coefficients for the chosen surface.
func NewModel(method Method, surface Surface, ideal Idealization, pipe geometry.Pipe, table *InfluenceTable) (*Model, error) {
	if method == MethodAnderson && surface == SurfaceExternal {
		return nil, fmt.Errorf("anderson method supports internal surface cracks only")
	}
	if table == nil {
		table = DefaultTable(surface)
	}
	return &Model{
		method:  method,
		surface: surface,
		ideal:   ideal,
		pipe:    pipe,
		table:   table,
	}, nil
}

func (m *Model) Method() Method             { return m.method }
func (m *Model) Surface() Surface           { return m.surface }
func (m *Model) Idealization() Idealization { return m.ideal }

// Request describes one crack state to evaluate. Depth and HalfLength are
// in meters, Pressure in MPa.
type Request struct {
	Depth      float64
	HalfLength float64
	Pressure   float64
}

// Result holds the evaluated stress intensity and its provenance. K and
// KSurface are in MPa·sqrt(m). Warnings report applicability bound
// violations; the numeric result is still usable.
type Result struct {
	K            float64
	KSurface     float64
	F            float64
	Q            float64
	Extrapolated bool
	Warnings     []Warning
}

// Evaluate computes the deepest-point stress intensity factor for the
// given crack state. Degenerate geometry (depth outside (0, t), half
// length <= 0) yields NaN rather than an error so that per-cycle callers
// can detect it without unwinding.
func (m *Model) Evaluate(req Request) Result {
	t := m.pipe.WallThickness
	if req.Depth <= 0 || req.Depth >= t || req.HalfLength <= 0 {
		return Result{K: math.NaN(), KSurface: math.NaN(), F: math.NaN(), Q: math.NaN()}
	}

	var res Result
	switch m.method {
	case MethodAPI579:
		res = m.evaluateTable(req)
	default:
		res = m.evaluateAnderson(req)
	}

	depthRatio := req.Depth / t
	if m.ideal == InfiniteLength {
		if depthRatio > maxDepthRatioInfinite {
			res.Warnings = append(res.Warnings, WarnDepthRatioInfinite)
		}
	} else if depthRatio > maxDepthRatioFinite {
		res.Warnings = append(res.Warnings, WarnDepthRatio)
	}
	return res
}

// evaluateAnderson implements the closed-form internal surface flaw
// correlations. The finite-length solution is capped by the infinitely
// long flaw solution, which governs for high aspect ratio cracks.
func (m *Model) evaluateAnderson(req Request) Result {
	res := Result{}

	curvature := m.pipe.ThicknessRatio()
	if curvature < andersonCurvatureMin || curvature > andersonCurvatureMax {
		res.Warnings = append(res.Warnings, WarnCurvatureAnderson)
	}

	kInf := m.andersonInfinite(req)
	if m.ideal == InfiniteLength {
		res.K = kInf
		res.KSurface = 0
		res.F = math.NaN()
		res.Q = math.NaN()
		return res
	}

	kFin, f, q := m.andersonFinite(req)
	res.K = utils.MinFloat64(kFin, kInf)
	res.KSurface = surfaceK(res.K, req)
	res.F = f
	res.Q = q
	return res
}

// andersonFinite evaluates the semi-elliptical internal flaw solution at
// the deepest point.
func (m *Model) andersonFinite(req Request) (k, f, q float64) {
	rmt := m.pipe.MeanRadius() / m.pipe.WallThickness
	eta := req.Depth / req.HalfLength

	q = shapeFactor(eta)
	f = 1.12 + 0.053*eta + 0.0055*eta*eta +
		(1+0.02*eta+0.0191*eta*eta)*math.Pow(20-rmt, 2)/1400

	hoop := req.Pressure * rmt
	k = hoop * math.Sqrt(math.Pi*req.Depth/q) * f
	return k, f, q
}

// andersonInfinite evaluates the infinitely long internal flaw solution
// from the thick-wall Lame stress field.
func (m *Model) andersonInfinite(req Request) float64 {
	ri := m.pipe.InnerRadius()
	ro := m.pipe.OuterRadius()
	t := m.pipe.WallThickness

	rit := ri / t
	var a float64
	if rit >= 5 && rit <= 10 {
		a = math.Pow(0.125*rit-0.25, 0.25)
	} else {
		a = math.Pow(0.2*rit-1, 0.25)
	}

	depthRatio := req.Depth / t
	f := 1.1 + a*(4.951*math.Pow(depthRatio, 2)+1.092*math.Pow(depthRatio, 4))

	return 2 * req.Pressure * ro * ro / (ro*ro - ri*ri) *
		math.Sqrt(math.Pi*req.Depth) * f
}

// evaluateTable implements the API 579-1 influence-coefficient solution.
// The membrane stress is the thin-shell hoop stress, plus crack face
// pressure for internal cracks; the bending component carries the linear
// through-wall gradient of the pressure stress.
func (m *Model) evaluateTable(req Request) Result {
	res := Result{}

	t := m.pipe.WallThickness
	aspect := req.Depth / req.HalfLength
	depthRatio := req.Depth / t
	if m.ideal == InfiniteLength {
		// Long flaw limit of the tabulated grid.
		aspect = m.table.AspectRatios[0]
	}

	coeff := m.table.Lookup(aspect, depthRatio, m.pipe.ThicknessRatio())
	res.Extrapolated = coeff.Extrapolated
	if coeff.Extrapolated {
		res.Warnings = append(res.Warnings, WarnTableExtrapolated)
	}

	sigmaM := req.Pressure * m.pipe.MeanRadius() / t
	if m.surface == SurfaceInternal {
		sigmaM += req.Pressure
	}
	sigmaB := req.Pressure / 2

	q := shapeFactor(aspect)
	res.Q = q
	res.F = coeff.G0
	res.K = (coeff.G0*sigmaM + coeff.G1*sigmaB) * math.Sqrt(math.Pi*req.Depth/q)
	if m.ideal == InfiniteLength {
		res.KSurface = 0
	} else {
		res.KSurface = surfaceK(res.K, req)
	}
	return res
}

// ReferenceStress returns the Folias-corrected ligament reference stress
// used for the plastic collapse axis of the failure assessment diagram.
// A through-wall crack (depth >= t) yields NaN.
func (m *Model) ReferenceStress(req Request) float64 {
	t := m.pipe.WallThickness
	depthRatio := req.Depth / t
	if depthRatio >= 1 {
		return math.NaN()
	}
	hoop := req.Pressure * m.pipe.MeanRadius() / t

	if m.ideal == InfiniteLength {
		return hoop / (1 - depthRatio)
	}
	folias := math.Sqrt(1 + 1.61*req.HalfLength*req.HalfLength/
		(m.pipe.InnerRadius()*t))
	return hoop * (1 - depthRatio/folias) / (1 - depthRatio)
}

// shapeFactor is the elliptical crack shape factor Q for aspect ratio
// a/c <= 1.
func shapeFactor(aspect float64) float64 {
	return 1 + 1.464*math.Pow(aspect, 1.65)
}

// surfaceK estimates the surface-point stress intensity from the
// deepest-point value. The ratio follows the Newman-Raju trend of
// sqrt(a/c) with a free surface magnification, capped so semicircular
// cracks keep the surface point near the deepest point.
func surfaceK(kDeep float64, req Request) float64 {
	ratio := 1.1 * math.Sqrt(req.Depth/req.HalfLength)
	if ratio > 1.1 {
		ratio = 1.1
	}
	return kDeep * ratio
}
