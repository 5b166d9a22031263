package growth

import (
	"math"
	"testing"

	"github.com/pipeintegrity/fatigue-core/internal/material"
)

func testEnv(t *testing.T, maxP, minP, h2 float64) material.Environment {
	t.Helper()
	env, err := material.NewEnvironment(maxP, minP, 293, h2)
	if err != nil {
		t.Fatalf("NewEnvironment: %v", err)
	}
	return env
}

func TestParisRate(t *testing.T) {
	p, err := NewParis(6.89e-12, 3)
	if err != nil {
		t.Fatalf("NewParis: %v", err)
	}

	rate, err := p.Rate(10)
	if err != nil {
		t.Fatalf("Rate: %v", err)
	}
	if want := 6.89e-12 * 1000; math.Abs(rate-want)/want > 1e-12 {
		t.Errorf("Rate(10) = %g, want %g", rate, want)
	}

	if _, err := p.Rate(0); err == nil {
		t.Error("Rate(0) should fail")
	}
	if _, err := p.Rate(-5); err == nil {
		t.Error("Rate(-5) should fail")
	}
}

func TestParisValidation(t *testing.T) {
	if _, err := NewParis(0, 3); err == nil {
		t.Error("zero coefficient should fail")
	}
	if _, err := NewParis(1e-12, -1); err == nil {
		t.Error("negative exponent should fail")
	}
}

func TestCodeCase2938AirFloor(t *testing.T) {
	// No hydrogen: the design curve collapses to the in-air rate.
	env := testEnv(t, 10, 1, 0)
	m, err := NewCodeCase2938(env)
	if err != nil {
		t.Fatalf("NewCodeCase2938: %v", err)
	}

	rate, err := m.Rate(10)
	if err != nil {
		t.Fatalf("Rate: %v", err)
	}
	air := 6.89e-12 * math.Pow(10, 3)
	if math.Abs(rate-air)/air > 1e-12 {
		t.Errorf("no-hydrogen rate = %g, want in-air %g", rate, air)
	}
}

func TestCodeCase2938HydrogenAcceleration(t *testing.T) {
	air := testEnv(t, 10, 1, 0)
	blend := testEnv(t, 10, 1, 0.2)
	pure := testEnv(t, 10, 1, 1)

	mAir, err := NewCodeCase2938(air)
	if err != nil {
		t.Fatalf("NewCodeCase2938: %v", err)
	}
	mBlend, err := NewCodeCase2938(blend)
	if err != nil {
		t.Fatalf("NewCodeCase2938: %v", err)
	}
	mPure, err := NewCodeCase2938(pure)
	if err != nil {
		t.Fatalf("NewCodeCase2938: %v", err)
	}

	for _, dk := range []float64{5, 10, 20, 40} {
		ra, err := mAir.Rate(dk)
		if err != nil {
			t.Fatalf("Rate(%g): %v", dk, err)
		}
		rb, err := mBlend.Rate(dk)
		if err != nil {
			t.Fatalf("Rate(%g): %v", dk, err)
		}
		rp, err := mPure.Rate(dk)
		if err != nil {
			t.Fatalf("Rate(%g): %v", dk, err)
		}
		if !(rp >= rb && rb >= ra) {
			t.Errorf("dk=%g: rates not ordered pure %g >= blend %g >= air %g", dk, rp, rb, ra)
		}
	}
}

func TestCodeCase2938BranchTransition(t *testing.T) {
	env := testEnv(t, 10, 1, 1)
	m, err := NewCodeCase2938(env)
	if err != nil {
		t.Fatalf("NewCodeCase2938: %v", err)
	}

	r := env.RRatio()
	fr := env.FugacityRatio()
	low := func(dk float64) float64 {
		return 3.5e-14 * fr * (1 + 0.4286*r) / (1 - r) * math.Pow(dk, 6.5)
	}
	high := func(dk float64) float64 {
		return 1.5e-11 * (1 + 2*r) / (1 - r) * math.Pow(dk, 3.66)
	}

	for _, dk := range []float64{2, 8, 15, 30, 60} {
		got, err := m.Rate(dk)
		if err != nil {
			t.Fatalf("Rate(%g): %v", dk, err)
		}
		want := math.Max(math.Min(low(dk), high(dk)), 6.89e-12*math.Pow(dk, 3))
		if math.Abs(got-want)/want > 1e-12 {
			t.Errorf("Rate(%g) = %g, want %g", dk, got, want)
		}
	}
}

func TestCodeCase2938RejectsUnitRatio(t *testing.T) {
	// min == max gives R = 1, outside the curve's domain. The environment
	// itself allows it, the growth model must not.
	env := testEnv(t, 10, 10, 1)
	if _, err := NewCodeCase2938(env); err == nil {
		t.Error("R = 1 should fail")
	}
}
