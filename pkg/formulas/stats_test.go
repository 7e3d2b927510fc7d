package formulas

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMean(t *testing.T) {
	assert.Equal(t, 0.0, Mean([]float64{}))
	assert.InDelta(t, 2.0, Mean([]float64{1, 2, 3}), 1e-12)
	assert.InDelta(t, -1.5, Mean([]float64{-1, -2}), 1e-12)
}

func TestStdDev(t *testing.T) {
	// Sample (n-1) standard deviation
	assert.Equal(t, 0.0, StdDev([]float64{5}))
	assert.InDelta(t, 1.0, StdDev([]float64{1, 2, 3}), 1e-12)

	// Constant series has zero deviation
	assert.InDelta(t, 0.0, StdDev([]float64{4, 4, 4, 4}), 1e-12)
}

func TestPercentile(t *testing.T) {
	data := []float64{15, 20, 35, 40, 50}

	assert.InDelta(t, 15.0, Percentile(data, 0), 1e-12)
	assert.InDelta(t, 50.0, Percentile(data, 100), 1e-12)
	assert.InDelta(t, 35.0, Percentile(data, 50), 1e-12)

	// Linear interpolation between ranks: rank = 0.05*4 = 0.2
	assert.InDelta(t, 16.0, Percentile(data, 5), 1e-12)

	// Unsorted input must give the same result
	assert.InDelta(t, 16.0, Percentile([]float64{50, 15, 40, 20, 35}, 5), 1e-12)

	// Single observation
	assert.InDelta(t, 7.0, Percentile([]float64{7}, 5), 1e-12)
}

func TestPercentChanges(t *testing.T) {
	changes := PercentChanges([]float64{100, 101, 99, 102, 100})

	assert.Len(t, changes, 4)
	assert.InDelta(t, 0.01, changes[0], 1e-12)
	assert.InDelta(t, -2.0/101.0, changes[1], 1e-12)
	assert.InDelta(t, 3.0/99.0, changes[2], 1e-12)
	assert.InDelta(t, -2.0/102.0, changes[3], 1e-12)

	assert.Empty(t, PercentChanges([]float64{100}))
}

func TestVariance(t *testing.T) {
	assert.Equal(t, 0.0, Variance([]float64{5}))
	assert.InDelta(t, 1.0, Variance([]float64{1, 2, 3}), 1e-12)
}
