package search_test

import (
	"math"
	"testing"

	"github.com/csfalcao/magis/pkg/usecase/search"
	"github.com/m-mizutani/gt"
)

func TestCosine(t *testing.T) {
	testCases := []struct {
		name string
		a    []float32
		b    []float32
		want float64
	}{
		{"identical", []float32{1, 2, 3}, []float32{1, 2, 3}, 1.0},
		{"orthogonal", []float32{1, 0}, []float32{0, 1}, 0.0},
		{"opposite", []float32{1, 0}, []float32{-1, 0}, -1.0},
		{"nil left", nil, []float32{1, 2}, 0.0},
		{"nil right", []float32{1, 2}, nil, 0.0},
		{"both nil", nil, nil, 0.0},
		{"length mismatch", []float32{1, 2, 3}, []float32{1, 2}, 0.0},
		{"zero vector", []float32{0, 0}, []float32{1, 1}, 0.0},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			got := search.Cosine(tc.a, tc.b)
			if math.Abs(got-tc.want) > 1e-9 {
				t.Errorf("Cosine(%v, %v) = %v, want %v", tc.a, tc.b, got, tc.want)
			}
		})
	}
}

func TestCosineMismatchedModelDimensions(t *testing.T) {
	// A 256-dim memory embedding against a 1536-dim query embedding must
	// yield exactly 0, not an error
	small := make([]float32, 256)
	large := make([]float32, 1536)
	for i := range small {
		small[i] = 0.5
	}
	for i := range large {
		large[i] = 0.5
	}

	gt.Equal(t, search.Cosine(small, large), 0.0)
}
