package utils

import (
	"math"
	"testing"
)

func TestMean(t *testing.T) {
	tests := []struct {
		name     string
		values   []float64
		expected float64
	}{
		{"Empty slice", []float64{}, 0},
		{"Single value", []float64{5.0}, 5.0},
		{"Multiple values", []float64{1.0, 2.0, 3.0, 4.0}, 2.5},
		{"Negative values", []float64{-1.0, 1.0}, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Mean(tt.values)
			if got != tt.expected {
				t.Errorf("Mean(%v) = %v, want %v", tt.values, got, tt.expected)
			}
		})
	}
}

func TestStdDev(t *testing.T) {
	values := []float64{2, 4, 4, 4, 5, 5, 7, 9}
	got := StdDev(values)
	if math.Abs(got-2.0) > 1e-12 {
		t.Errorf("StdDev = %v, want 2.0", got)
	}
}

func TestPercentile(t *testing.T) {
	values := []float64{1, 2, 3, 4, 5, 6, 7, 8, 9, 10}

	tests := []struct {
		percentile float64
		expected   float64
	}{
		{0, 1},
		{50, 5.5},
		{100, 10},
	}

	for _, tt := range tests {
		got := Percentile(values, tt.percentile)
		if math.Abs(got-tt.expected) > 1e-12 {
			t.Errorf("Percentile(%v) = %v, want %v", tt.percentile, got, tt.expected)
		}
	}
}

func TestClampFloat64(t *testing.T) {
	tests := []struct {
		value, min, max, expected float64
	}{
		{0.9, 0, 0.8, 0.8},
		{-0.1, 0, 0.8, 0},
		{0.5, 0, 0.8, 0.5},
	}

	for _, tt := range tests {
		got := ClampFloat64(tt.value, tt.min, tt.max)
		if got != tt.expected {
			t.Errorf("ClampFloat64(%v, %v, %v) = %v, want %v",
				tt.value, tt.min, tt.max, got, tt.expected)
		}
	}
}

func TestDropNaN(t *testing.T) {
	values := []float64{1, math.NaN(), 3, math.NaN()}
	got := DropNaN(values)
	if len(got) != 2 || got[0] != 1 || got[1] != 3 {
		t.Errorf("DropNaN = %v, want [1 3]", got)
	}
}

func TestFinite(t *testing.T) {
	if Finite(math.NaN()) {
		t.Error("NaN should not be finite")
	}
	if Finite(math.Inf(1)) {
		t.Error("+Inf should not be finite")
	}
	if !Finite(1.5) {
		t.Error("1.5 should be finite")
	}
}
