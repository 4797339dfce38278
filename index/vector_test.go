package index

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeVector(t *testing.T) {
	tests := []struct {
		name  string
		input []float32
	}{
		{"unit axis", []float32{1, 0, 0}},
		{"scaled axis", []float32{3, 0, 0}},
		{"mixed", []float32{3, 4}},
		{"negative", []float32{-1, 2, -3}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := NormalizeVector(tt.input)

			var magnitude float64
			for _, v := range result {
				magnitude += float64(v) * float64(v)
			}
			assert.InDelta(t, 1.0, math.Sqrt(magnitude), 1e-5)
		})
	}
}

func TestNormalizeVectorZero(t *testing.T) {
	result := NormalizeVector([]float32{0, 0, 0})
	assert.Equal(t, []float32{0, 0, 0}, result)
}

func TestNormalizeVectorEmpty(t *testing.T) {
	assert.Empty(t, NormalizeVector([]float32{}))
}

func TestNormalizeVectorDoesNotMutate(t *testing.T) {
	input := []float32{3, 4}
	NormalizeVector(input)
	assert.Equal(t, []float32{3, 4}, input)
}

func TestDotProduct(t *testing.T) {
	assert.InDelta(t, 1.0, dotProduct([]float32{1, 0}, []float32{1, 0}), 1e-6)
	assert.InDelta(t, 0.0, dotProduct([]float32{1, 0}, []float32{0, 1}), 1e-6)
	assert.InDelta(t, -1.0, dotProduct([]float32{1, 0}, []float32{-1, 0}), 1e-6)

	// Mismatched lengths use the shorter vector.
	assert.InDelta(t, 2.0, dotProduct([]float32{1, 1, 1}, []float32{2, 0}), 1e-6)
}
