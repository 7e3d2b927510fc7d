// Package formulas provides the statistical primitives used by the risk
// engines: means, sample standard deviations, percentiles and percent-change
// series.
package formulas

import (
	"sort"

	"gonum.org/v1/gonum/stat"
)

// Mean calculates the arithmetic mean of a slice of float64 values
func Mean(data []float64) float64 {
	if len(data) == 0 {
		return 0
	}
	return stat.Mean(data, nil)
}

// StdDev calculates the sample standard deviation of a slice of float64 values
func StdDev(data []float64) float64 {
	if len(data) < 2 {
		return 0
	}
	return stat.StdDev(data, nil)
}

// Variance calculates the sample variance of a slice of float64 values
func Variance(data []float64) float64 {
	if len(data) < 2 {
		return 0
	}
	return stat.Variance(data, nil)
}

// Percentile returns the p-th percentile (0-100) of the data using linear
// interpolation between closest ranks: the rank of the p-th percentile is
// (n-1)*p/100, so Percentile(data, 0) is the minimum and
// Percentile(data, 100) the maximum.
//
// gonum's stat.Quantile uses empirical cumulant conventions that differ from
// the interpolated percentile the historical VaR calculation is defined on,
// so the interpolation is done explicitly here.
func Percentile(data []float64, p float64) float64 {
	if len(data) == 0 {
		return 0
	}

	sorted := make([]float64, len(data))
	copy(sorted, data)
	sort.Float64s(sorted)

	if p <= 0 {
		return sorted[0]
	}
	if p >= 100 {
		return sorted[len(sorted)-1]
	}

	rank := p / 100 * float64(len(sorted)-1)
	lo := int(rank)
	frac := rank - float64(lo)
	if lo+1 >= len(sorted) {
		return sorted[lo]
	}

	return sorted[lo] + frac*(sorted[lo+1]-sorted[lo])
}

// PercentChanges converts a price series to period-over-period percent
// changes: changes[i] = (prices[i+1] - prices[i]) / prices[i].
// Returns an empty slice for fewer than two prices.
func PercentChanges(prices []float64) []float64 {
	if len(prices) < 2 {
		return []float64{}
	}

	changes := make([]float64, len(prices)-1)
	for i := 1; i < len(prices); i++ {
		if prices[i-1] != 0 {
			changes[i-1] = (prices[i] - prices[i-1]) / prices[i-1]
		}
	}

	return changes
}
