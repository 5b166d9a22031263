package study

import (
	"context"
	"fmt"
	"runtime"
	"sort"
	"sync"
	"time"

	"golang.org/x/sync/semaphore"

	"github.com/pipeintegrity/fatigue-core/internal/analysis"
	"github.com/pipeintegrity/fatigue-core/pkg/logger"
)

// Config describes a probabilistic or sensitivity study: a base point
// configuration plus the uncertain parameters layered over it.
type Config struct {
	Base       analysis.Input
	Parameters []Parameter

	Kind             Kind
	AleatorySamples  int
	EpistemicSamples int
	Seed             uint64

	// Inspection layers a periodic inspection program over the study
	// results. Nil disables mitigation post-processing.
	Inspection *Inspection

	// MaxWorkers bounds concurrent deterministic runs. Zero selects
	// GOMAXPROCS.
	MaxWorkers int
	// Budget is an optional wall-clock limit. Once exceeded no new
	// samples are dispatched; in-flight runs finish and the result is
	// flagged incomplete.
	Budget time.Duration
}

// SampleResult is one per-draw outcome. Failed samples carry Err and a
// nil Result; they are excluded from aggregates but still counted.
type SampleResult struct {
	Index     int
	Epistemic int
	Aleatory  int
	Values    map[string]float64
	Result    *analysis.Result
	Err       string
}

// Result is the completed study: per-sample outcomes ordered by sample
// index plus the aggregate arrays.
type Result struct {
	Samples    []SampleResult
	Completed  int
	Failed     int
	Skipped    int
	Incomplete bool
	Aggregates Aggregates
	// Mitigation is present only when the study configures an
	// inspection program.
	Mitigation *MitigationOutcome
}

// Runner executes one study. Build with New, run once.
type Runner struct {
	cfg   Config
	sheet *Sheet
}

// New validates the configuration, checks every parameter maps to a known
// input field, and pre-generates the full sample sheet so that draw
// order is fixed before any dispatch.
func New(cfg Config) (*Runner, error) {
	for _, p := range cfg.Parameters {
		if !knownParameter(p.Name) {
			return nil, fmt.Errorf("parameter %q does not map to any analysis input", p.Name)
		}
	}
	// The base input must itself be coherent before layering draws on it.
	if _, err := analysis.New(applyDraw(cfg.Base, nominalValues(cfg.Parameters))); err != nil {
		return nil, fmt.Errorf("base configuration: %w", err)
	}
	if cfg.Inspection != nil {
		if err := cfg.Inspection.Validate(); err != nil {
			return nil, err
		}
	}

	sheet, err := Generate(cfg.Parameters, cfg.Kind, cfg.AleatorySamples, cfg.EpistemicSamples, cfg.Seed)
	if err != nil {
		return nil, err
	}
	if cfg.MaxWorkers <= 0 {
		cfg.MaxWorkers = runtime.GOMAXPROCS(0)
	}
	return &Runner{cfg: cfg, sheet: sheet}, nil
}

// Sheet exposes the pre-generated sample plan, mainly for reproducibility
// checks.
func (r *Runner) Sheet() *Sheet { return r.sheet }

// Run dispatches the per-sample deterministic analyses across workers and
// aggregates the outcomes. Cancellation is cooperative: it stops new
// dispatches, lets in-flight runs finish, and marks the result incomplete.
func (r *Runner) Run(ctx context.Context) (*Result, error) {
	log := logger.With("component", "study", "kind", r.cfg.Kind.String(), "samples", len(r.sheet.Draws))
	log.Info("study started", "workers", r.cfg.MaxWorkers, "seed", r.cfg.Seed)
	start := time.Now()

	sem := semaphore.NewWeighted(int64(r.cfg.MaxWorkers))
	var wg sync.WaitGroup
	var mu sync.Mutex
	results := make([]SampleResult, 0, len(r.sheet.Draws))
	incomplete := false
	skipped := 0

	for i, draw := range r.sheet.Draws {
		if ctx.Err() != nil || (r.cfg.Budget > 0 && time.Since(start) > r.cfg.Budget) {
			incomplete = true
			skipped = len(r.sheet.Draws) - i
			break
		}
		if err := sem.Acquire(ctx, 1); err != nil {
			incomplete = true
			skipped = len(r.sheet.Draws) - i
			break
		}

		wg.Add(1)
		go func(idx int, d Draw) {
			defer wg.Done()
			defer sem.Release(1)

			sr := SampleResult{Index: idx, Epistemic: d.Epistemic, Aleatory: d.Aleatory, Values: d.Values}
			a, err := analysis.New(applyDraw(r.cfg.Base, d.Values))
			if err == nil {
				// Per-sample runs are not individually cancellable; the
				// loop above stops dispatching instead.
				sr.Result, err = a.Run(context.Background())
			}
			if err != nil {
				sr.Err = err.Error()
			}

			mu.Lock()
			results = append(results, sr)
			mu.Unlock()
		}(i, draw)
	}
	wg.Wait()

	// Aggregation is keyed by sample index so completion order never
	// shows in the output.
	sort.Slice(results, func(a, b int) bool { return results[a].Index < results[b].Index })

	res := &Result{Samples: results, Incomplete: incomplete, Skipped: skipped}
	for _, sr := range results {
		if sr.Err != "" {
			res.Failed++
		} else {
			res.Completed++
		}
	}
	res.Aggregates = aggregate(r.cfg, r.sheet, results)
	if r.cfg.Inspection != nil {
		res.Mitigation = r.cfg.Inspection.Apply(r.cfg.Base, results, r.cfg.Seed)
		log.Info("inspection program applied",
			"inspections", len(res.Mitigation.Inspections),
			"mitigated", res.Mitigation.MitigatedCount)
	}

	log.Info("study finished",
		"completed", res.Completed,
		"failed", res.Failed,
		"skipped", res.Skipped,
		"incomplete", res.Incomplete,
		"elapsed", time.Since(start).String())
	return res, nil
}

// knownParameter lists the analysis input fields a draw may target.
func knownParameter(name string) bool {
	switch name {
	case "outer_diameter", "wall_thickness",
		"yield_strength", "fracture_toughness",
		"max_pressure", "min_pressure", "temperature", "h2_fraction",
		"flaw_depth", "flaw_depth_ratio", "flaw_aspect_ratio",
		"paris_c", "paris_m",
		"max_cycles":
		return true
	}
	return false
}

// applyDraw overlays sampled values onto a copy of the base input. Values
// for names not present in the draw leave the base untouched.
func applyDraw(base analysis.Input, values map[string]float64) analysis.Input {
	for name, v := range values {
		switch name {
		case "outer_diameter":
			base.OuterDiameter = v
		case "wall_thickness":
			base.WallThickness = v
		case "yield_strength":
			base.YieldStrength = v
		case "fracture_toughness":
			base.FractureToughness = v
		case "max_pressure":
			base.MaxPressure = v
		case "min_pressure":
			base.MinPressure = v
		case "temperature":
			base.Temperature = v
		case "h2_fraction":
			base.H2VolumeFraction = v
		case "flaw_depth":
			base.FlawDepth = v
		case "flaw_depth_ratio":
			base.FlawDepthRatio = v
		case "flaw_aspect_ratio":
			base.FlawAspectRatio = v
		case "paris_c":
			base.ParisC = v
		case "paris_m":
			base.ParisM = v
		case "max_cycles":
			base.MaxCycles = v
		}
	}
	return base
}
