package geometry

import (
	"math"
	"testing"
)

func TestNew(t *testing.T) {
	tests := []struct {
		name          string
		outerDiameter float64
		wallThickness float64
		wantErr       bool
	}{
		{"Valid pipe", 0.9144, 0.0103, false},
		{"Zero diameter", 0, 0.01, true},
		{"Negative diameter", -1, 0.01, true},
		{"Zero thickness", 0.9, 0, true},
		{"Thickness exceeds radius", 0.5, 0.3, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := New(tt.outerDiameter, tt.wallThickness)
			if (err != nil) != tt.wantErr {
				t.Errorf("New(%v, %v) error = %v, wantErr %v",
					tt.outerDiameter, tt.wallThickness, err, tt.wantErr)
			}
		})
	}
}

func TestDerivedDimensions(t *testing.T) {
	p, err := New(0.9144, 0.0103)
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	if got, want := p.InnerDiameter(), 0.9144-2*0.0103; math.Abs(got-want) > 1e-12 {
		t.Errorf("InnerDiameter = %v, want %v", got, want)
	}
	if got, want := p.MeanRadius(), (0.9144-0.0103)/2; math.Abs(got-want) > 1e-12 {
		t.Errorf("MeanRadius = %v, want %v", got, want)
	}
	if got, want := p.ThicknessRatio(), 0.0103/((0.9144-0.0103)/2); math.Abs(got-want) > 1e-12 {
		t.Errorf("ThicknessRatio = %v, want %v", got, want)
	}
	if p.InnerRadius() >= p.OuterRadius() {
		t.Error("inner radius should be strictly less than outer radius")
	}
}
