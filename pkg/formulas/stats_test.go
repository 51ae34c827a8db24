package formulas

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMean(t *testing.T) {
	tests := []struct {
		name     string
		data     []float64
		expected float64
	}{
		{"empty", []float64{}, 0},
		{"nil", nil, 0},
		{"all NaN", []float64{math.NaN(), math.NaN()}, 0},
		{"ignores NaN", []float64{5, math.NaN()}, 5},
		{"ignores Inf", []float64{2, math.Inf(1), 4, math.Inf(-1)}, 3},
		{"plain", []float64{1, 2, 3, 4}, 2.5},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.expected, Mean(tt.data), 1e-12)
		})
	}
}

func TestFiniteMean_ReportsAvailability(t *testing.T) {
	_, ok := FiniteMean([]float64{math.NaN()})
	assert.False(t, ok)

	m, ok := FiniteMean([]float64{0, 0})
	assert.True(t, ok)
	assert.Equal(t, 0.0, m)
}

func TestPctChange(t *testing.T) {
	tests := []struct {
		name     string
		from, to float64
		expected float64
	}{
		{"zero base is guarded", 0, 10, 0},
		{"NaN base is guarded", math.NaN(), 10, 0},
		{"Inf base is guarded", math.Inf(1), 10, 0},
		{"ten percent up", 100, 110, 10},
		{"quarter down", 40, 30, -25},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.expected, PctChange(tt.from, tt.to), 1e-9)
		})
	}
}

func TestOLSSlope(t *testing.T) {
	tests := []struct {
		name     string
		xs, ys   []float64
		expected float64
	}{
		{"perfectly linear", []float64{1, 2, 3}, []float64{2, 4, 6}, 2},
		{"negative slope", []float64{1, 2, 3, 4}, []float64{10, 8, 6, 4}, -2},
		{"constant x", []float64{5, 5, 5}, []float64{1, 2, 3}, 0},
		{"single pair", []float64{1}, []float64{1}, 0},
		{"empty", nil, nil, 0},
		{"uneven lengths use shortest", []float64{1, 2, 3, 100}, []float64{3, 6, 9}, 3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.expected, OLSSlope(tt.xs, tt.ys), 1e-9)
		})
	}
}

func TestClamp(t *testing.T) {
	assert.Equal(t, 5.0, Clamp(5, 0, 10))
	assert.Equal(t, 0.0, Clamp(-3, 0, 10))
	assert.Equal(t, 10.0, Clamp(42, 0, 10))

	assert.Equal(t, 3, ClampInt(3, 0, 5))
	assert.Equal(t, 0, ClampInt(-1, 0, 5))
	assert.Equal(t, 5, ClampInt(9, 0, 5))
}

func TestSignedPercent(t *testing.T) {
	tests := []struct {
		pct      float64
		expected string
	}{
		{0, "+0%"},
		{12.4, "+12%"},
		{12.5, "+13%"},
		{-0.4, "+0%"},
		{-2.5, "-2%"},
		{-19.6, "-20%"},
	}

	for _, tt := range tests {
		t.Run(tt.expected, func(t *testing.T) {
			assert.Equal(t, tt.expected, SignedPercent(tt.pct))
		})
	}
}
