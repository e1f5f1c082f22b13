package core

import (
	"math"
	"testing"
)

func TestNormalizeVector(t *testing.T) {
	tests := []struct {
		name  string
		input []float32
		want  []float32
	}{
		{"already unit", []float32{1, 0, 0}, []float32{1, 0, 0}},
		{"scaled axis", []float32{0, 5, 0}, []float32{0, 1, 0}},
		{"diagonal", []float32{3, 4}, []float32{0.6, 0.8}},
		{"negative components", []float32{-3, 4}, []float32{-0.6, 0.8}},
	}

	for _, tt := range tests {
		got, err := NormalizeVector(tt.input)
		if err != nil {
			t.Fatalf("%s: unexpected error: %v", tt.name, err)
		}
		if len(got) != len(tt.want) {
			t.Fatalf("%s: expected %d components, got %d", tt.name, len(tt.want), len(got))
		}
		for i := range got {
			if math.Abs(float64(got[i])-float64(tt.want[i])) > 1e-6 {
				t.Fatalf("%s: component %d: expected %v, got %v", tt.name, i, tt.want[i], got[i])
			}
		}
	}
}

func TestNormalizeVector_UnitLength(t *testing.T) {
	got, err := NormalizeVector([]float32{0.3, -1.7, 2.2, 0.05})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	var sum float64
	for _, x := range got {
		sum += float64(x) * float64(x)
	}
	if math.Abs(sum-1.0) > 1e-6 {
		t.Fatalf("expected unit length, got squared norm %v", sum)
	}
}

func TestNormalizeVector_DoesNotMutateInput(t *testing.T) {
	input := []float32{2, 0}
	_, err := NormalizeVector(input)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if input[0] != 2 {
		t.Fatalf("expected input untouched, got %v", input)
	}
}

func TestNormalizeVector_Invalid(t *testing.T) {
	tests := []struct {
		name  string
		input []float32
	}{
		{"empty", nil},
		{"all zeros", []float32{0, 0, 0}},
		{"nan component", []float32{1, float32(math.NaN())}},
		{"inf component", []float32{1, float32(math.Inf(1))}},
	}

	for _, tt := range tests {
		if _, err := NormalizeVector(tt.input); err != ErrInvalidVector {
			t.Fatalf("%s: expected ErrInvalidVector, got %v", tt.name, err)
		}
	}
}

func TestDotProduct(t *testing.T) {
	tests := []struct {
		name     string
		a        []float32
		b        []float32
		expected float32
	}{
		{"identical vectors", []float32{1, 0, 0}, []float32{1, 0, 0}, 1.0},
		{"orthogonal vectors", []float32{1, 0, 0}, []float32{0, 1, 0}, 0.0},
		{"opposite vectors", []float32{1, 0, 0}, []float32{-1, 0, 0}, -1.0},
		{"general case", []float32{0.6, 0.8}, []float32{0.8, 0.6}, 0.96},
		{"different lengths use min", []float32{1, 2, 3}, []float32{1, 2}, 5.0},
		{"empty vectors", []float32{}, []float32{}, 0.0},
	}

	for _, tt := range tests {
		got := DotProduct(tt.a, tt.b)
		if math.Abs(float64(got)-float64(tt.expected)) > 1e-4 {
			t.Fatalf("%s: expected %v, got %v", tt.name, tt.expected, got)
		}
	}
}
