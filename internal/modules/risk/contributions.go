package risk

import (
	"fmt"
	"math"
	"sort"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"

	"github.com/rainmaker/riskd/internal/domain"
)

// Contributions decomposes portfolio variance into per-asset percent risk
// contributions (Euler decomposition):
//
//	portfolio_std = sqrt(w' * cov * w)
//	marginal_i    = (cov * w)_i / portfolio_std
//	pct_i         = w_i * marginal_i / portfolio_std * 100
//
// Volatility is homogeneous of degree one in the weights, so by Euler's
// theorem the contributions sum to exactly 100% of portfolio risk; tests
// rely on that identity as a correctness check.
//
// The weight vector must be keyed to the matrix columns. Returns
// domain.ErrDegenerateRisk when the portfolio standard deviation is not
// strictly positive (zero-variance or perfectly offsetting series).
func Contributions(m *ReturnMatrix, weights map[string]float64) ([]domain.ContributionRow, error) {
	n := len(m.Tickers)
	rows := m.NumRows()

	for _, ticker := range m.Tickers {
		if _, ok := weights[ticker]; !ok {
			return nil, fmt.Errorf("weight vector missing ticker %s", ticker)
		}
	}

	data := mat.NewDense(rows, n, nil)
	for j, ticker := range m.Tickers {
		for i, r := range m.Column(ticker) {
			data.Set(i, j, r)
		}
	}

	var cov mat.SymDense
	stat.CovarianceMatrix(&cov, data, nil)

	w := mat.NewVecDense(n, nil)
	for j, ticker := range m.Tickers {
		w.SetVec(j, weights[ticker])
	}

	covw := mat.NewVecDense(n, nil)
	covw.MulVec(&cov, w)

	portfolioStd := math.Sqrt(mat.Dot(w, covw))
	if !(portfolioStd > 0) || math.IsNaN(portfolioStd) {
		return nil, fmt.Errorf("%w: portfolio standard deviation %g",
			domain.ErrDegenerateRisk, portfolioStd)
	}

	contributions := make([]domain.ContributionRow, n)
	for j, ticker := range m.Tickers {
		marginal := covw.AtVec(j) / portfolioStd
		contributions[j] = domain.ContributionRow{
			Ticker:          ticker,
			Weight:          weights[ticker],
			ContributionPct: weights[ticker] * marginal / portfolioStd * 100,
		}
	}

	return contributions, nil
}

// TopDrivers returns up to limit rows with the highest risk contribution,
// descending. Ties break on ticker for determinism.
func TopDrivers(contributions []domain.ContributionRow, limit int) []domain.ContributionRow {
	sorted := make([]domain.ContributionRow, len(contributions))
	copy(sorted, contributions)
	sort.SliceStable(sorted, func(i, j int) bool {
		if sorted[i].ContributionPct != sorted[j].ContributionPct {
			return sorted[i].ContributionPct > sorted[j].ContributionPct
		}
		return sorted[i].Ticker < sorted[j].Ticker
	})
	if len(sorted) > limit {
		sorted = sorted[:limit]
	}
	return sorted
}

// BottomDrivers returns up to limit rows with the lowest risk contribution,
// ascending. With fewer than 2*limit assets the top and bottom views may
// overlap; that is expected.
func BottomDrivers(contributions []domain.ContributionRow, limit int) []domain.ContributionRow {
	sorted := make([]domain.ContributionRow, len(contributions))
	copy(sorted, contributions)
	sort.SliceStable(sorted, func(i, j int) bool {
		if sorted[i].ContributionPct != sorted[j].ContributionPct {
			return sorted[i].ContributionPct < sorted[j].ContributionPct
		}
		return sorted[i].Ticker < sorted[j].Ticker
	})
	if len(sorted) > limit {
		sorted = sorted[:limit]
	}
	return sorted
}
