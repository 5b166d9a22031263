package study

import (
	"math"
	"sort"
	"strconv"

	"gonum.org/v1/gonum/stat"

	"github.com/pipeintegrity/fatigue-core/internal/analysis"
	"github.com/pipeintegrity/fatigue-core/internal/fad"
	"github.com/pipeintegrity/fatigue-core/internal/growth"
	"github.com/pipeintegrity/fatigue-core/pkg/models"
	"github.com/pipeintegrity/fatigue-core/pkg/utils"
)

const (
	histogramBins     = 20
	envelopeSamples   = 64
	curveSamples      = 50
	ensembleMaxPoints = 200
)

// CycleStats summarizes the finite cycles-to-failure outcomes.
type CycleStats struct {
	Count  int     `json:"count" yaml:"count"`
	Mean   float64 `json:"mean" yaml:"mean"`
	StdDev float64 `json:"std_dev" yaml:"std_dev"`
	P5     float64 `json:"p5" yaml:"p5"`
	P50    float64 `json:"p50" yaml:"p50"`
	P95    float64 `json:"p95" yaml:"p95"`
}

// Aggregates are the study-level plot arrays. Failed samples contribute
// nothing here; never-critical samples contribute their series but no
// cycles-to-failure value.
type Aggregates struct {
	// Ensemble holds one downsampled a/t versus cycles line per
	// completed sample, ordered by sample index.
	Ensemble []models.Series `json:"ensemble" yaml:"ensemble"`
	// CyclesPDF and CyclesCDF describe the distribution of finite
	// cycles-to-failure outcomes.
	CyclesPDF models.Histogram  `json:"cycles_pdf" yaml:"cycles_pdf"`
	CyclesCDF []models.CDFPoint `json:"cycles_cdf" yaml:"cycles_cdf"`
	Cycles    CycleStats        `json:"cycles" yaml:"cycles"`
	// RateCloud holds the exercised (deltaK, da/dN) pairs across all
	// samples, for comparison against DesignCurve.
	RateCloud   []growth.CurvePoint `json:"rate_cloud" yaml:"rate_cloud"`
	DesignCurve []growth.CurvePoint `json:"design_curve" yaml:"design_curve"`
	// FADPoints are the per-sample end states over Envelope.
	FADPoints []fad.Point `json:"fad_points" yaml:"fad_points"`
	Envelope  []fad.Point `json:"envelope" yaml:"envelope"`
	// EpistemicBands are per-epistemic-set percentile intervals of the
	// cycles-to-failure distribution, present only for nested studies.
	EpistemicBands []models.Band `json:"epistemic_bands,omitempty" yaml:"epistemic_bands,omitempty"`
}

func aggregate(cfg Config, sheet *Sheet, samples []SampleResult) Aggregates {
	agg := Aggregates{Envelope: fad.Envelope(envelopeSamples)}

	var cycles []float64
	perSet := make(map[int][]float64)
	minDK, maxDK := math.Inf(1), math.Inf(-1)
	var rateModel growth.Model

	for _, sr := range samples {
		if sr.Result == nil {
			continue
		}
		evo := sr.Result.Evolution

		agg.Ensemble = append(agg.Ensemble, ensembleSeries(sr))

		if n := len(evo.Samples); n > 0 {
			// Degenerate end states carry NaN coordinates and cannot be
			// plotted (or JSON-encoded).
			last := evo.Samples[n-1]
			if utils.Finite(last.Lr) && utils.Finite(last.Kr) {
				agg.FADPoints = append(agg.FADPoints,
					fad.Point{Lr: last.Lr, Kr: last.Kr, Inside: last.Kr <= fad.EnvelopeKr(last.Lr) && last.Lr <= fad.LrMax})
			}
		}
		for _, s := range evo.Samples {
			if s.Rate > 0 && s.DeltaK > 0 {
				agg.RateCloud = append(agg.RateCloud, growth.CurvePoint{DeltaK: s.DeltaK, Rate: s.Rate})
				minDK = math.Min(minDK, s.DeltaK)
				maxDK = math.Max(maxDK, s.DeltaK)
			}
		}

		if c := sr.Result.Summary.CyclesToFailure; !math.IsNaN(c) {
			cycles = append(cycles, c)
			perSet[sr.Epistemic] = append(perSet[sr.Epistemic], c)
		}
	}

	if len(cycles) > 0 {
		sort.Float64s(cycles)
		agg.CyclesPDF = histogram(cycles, histogramBins)
		agg.CyclesCDF = cdf(cycles)
		agg.Cycles = CycleStats{
			Count:  len(cycles),
			Mean:   stat.Mean(cycles, nil),
			StdDev: stat.StdDev(cycles, nil),
			P5:     utils.Percentile(cycles, 5),
			P50:    utils.Percentile(cycles, 50),
			P95:    utils.Percentile(cycles, 95),
		}
	}

	if minDK < maxDK {
		// The design curve spans the exercised deltaK range. Every
		// completed sample shares the base rate law family, so the first
		// one is representative.
		for _, sr := range samples {
			if sr.Result != nil {
				rateModel = firstRateModel(cfg, sr)
				break
			}
		}
		if rateModel != nil {
			if curve, err := growth.DesignCurve(rateModel, minDK, maxDK, curveSamples); err == nil {
				agg.DesignCurve = curve
			}
		}
	}

	if cfg.EpistemicSamples > 0 && sheet.EpistemicSets > 1 {
		agg.EpistemicBands = epistemicBands(perSet)
	}
	return agg
}

// firstRateModel rebuilds the rate law of one completed sample for the
// design curve overlay.
func firstRateModel(cfg Config, sr SampleResult) growth.Model {
	a, err := analysis.New(applyDraw(cfg.Base, sr.Values))
	if err != nil {
		return nil
	}
	return a.RateModel()
}

func ensembleSeries(sr SampleResult) models.Series {
	evo := sr.Result.Evolution
	stride := 1
	if len(evo.Samples) > ensembleMaxPoints {
		stride = len(evo.Samples) / ensembleMaxPoints
	}
	s := models.Series{Label: label(sr)}
	for i := 0; i < len(evo.Samples); i += stride {
		s.X = append(s.X, evo.Samples[i].Cycles)
		s.Y = append(s.Y, evo.Samples[i].DepthRatio)
	}
	// Always keep the terminal point.
	last := evo.Samples[len(evo.Samples)-1]
	if n := len(s.X); n == 0 || s.X[n-1] != last.Cycles {
		s.X = append(s.X, last.Cycles)
		s.Y = append(s.Y, last.DepthRatio)
	}
	return s
}

func label(sr SampleResult) string {
	return "sample_" + strconv.Itoa(sr.Index)
}

func histogram(sorted []float64, bins int) models.Histogram {
	lo, hi := sorted[0], sorted[len(sorted)-1]
	if hi == lo {
		hi = lo + 1
	}
	width := (hi - lo) / float64(bins)

	h := models.Histogram{
		Edges:   make([]float64, bins+1),
		Counts:  make([]int, bins),
		Density: make([]float64, bins),
	}
	for i := 0; i <= bins; i++ {
		h.Edges[i] = lo + float64(i)*width
	}
	for _, v := range sorted {
		idx := int((v - lo) / width)
		if idx >= bins {
			idx = bins - 1
		}
		h.Counts[idx]++
	}
	total := float64(len(sorted))
	for i, c := range h.Counts {
		h.Density[i] = float64(c) / (total * width)
	}
	return h
}

func cdf(sorted []float64) []models.CDFPoint {
	out := make([]models.CDFPoint, len(sorted))
	n := float64(len(sorted))
	for i, v := range sorted {
		out[i] = models.CDFPoint{Value: v, Probability: float64(i+1) / n}
	}
	return out
}

// epistemicBands summarizes how the cycles-to-failure percentiles vary
// across epistemic sets: for each reported percentile, the band spans the
// min and max of that percentile over the sets.
func epistemicBands(perSet map[int][]float64) []models.Band {
	percentiles := []float64{5, 50, 95}

	keys := make([]int, 0, len(perSet))
	for k := range perSet {
		keys = append(keys, k)
	}
	sort.Ints(keys)

	bands := make([]models.Band, 0, len(percentiles))
	for _, p := range percentiles {
		band := models.Band{Percentile: p}
		lo, hi := math.Inf(1), math.Inf(-1)
		for _, k := range keys {
			vals := append([]float64(nil), perSet[k]...)
			sort.Float64s(vals)
			if len(vals) == 0 {
				continue
			}
			q := utils.Percentile(vals, p)
			lo = math.Min(lo, q)
			hi = math.Max(hi, q)
			band.X = append(band.X, float64(k))
			band.Lower = append(band.Lower, q)
			band.Upper = append(band.Upper, q)
		}
		if len(band.X) == 0 {
			continue
		}
		// Collapse per-set quantiles into one interval per percentile.
		band.X = []float64{band.X[0], band.X[len(band.X)-1]}
		band.Lower = []float64{lo, lo}
		band.Upper = []float64{hi, hi}
		bands = append(bands, band)
	}
	return bands
}
