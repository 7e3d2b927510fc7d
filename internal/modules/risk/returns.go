// Package risk implements the portfolio risk pipeline: daily return
// aggregation, volatility and horizon-scaled historical VaR, Euler
// decomposition of portfolio variance into per-asset contributions, and the
// tier-dependent adjustment recommendations derived from them.
package risk

import (
	"fmt"
	"sort"

	"github.com/rainmaker/riskd/internal/domain"
	"github.com/rainmaker/riskd/pkg/formulas"
)

// ReturnMatrix is a rectangular date-by-ticker matrix of daily percent
// changes. Columns are keyed by ticker identity, never by position: the
// price feed may silently drop tickers with insufficient data, so every
// consumer re-aligns its weight vector against Tickers.
type ReturnMatrix struct {
	Dates   []string // Return observation dates, ascending
	Tickers []string // Surviving column keys, sorted lexicographically
	columns map[string][]float64
}

// Column returns the return series for a ticker, or nil when the ticker did
// not survive matrix construction.
func (m *ReturnMatrix) Column(ticker string) []float64 {
	return m.columns[ticker]
}

// NumRows returns the number of return observations.
func (m *ReturnMatrix) NumRows() int {
	return len(m.Dates)
}

// BuildReturnMatrix pivots raw price rows into a date-by-ticker close table
// and computes row-over-row percent changes. Tickers with fewer than two
// observations are dropped; the remaining columns are restricted to the
// dates on which every surviving ticker has a close, so the matrix is
// rectangular and every cell is defined. The first (undefined) change row is
// dropped implicitly.
//
// Returns domain.ErrNoPriceData when fewer than two return rows survive.
func BuildReturnMatrix(points []domain.PricePoint) (*ReturnMatrix, error) {
	// Pivot: ticker -> date -> close
	closes := make(map[string]map[string]float64)
	for _, p := range points {
		if closes[p.Ticker] == nil {
			closes[p.Ticker] = make(map[string]float64)
		}
		closes[p.Ticker][p.Date] = p.Close
	}

	// Drop tickers without at least two observations; a single close can
	// never produce a return.
	var tickers []string
	for ticker, series := range closes {
		if len(series) >= 2 {
			tickers = append(tickers, ticker)
		}
	}
	if len(tickers) == 0 {
		return nil, fmt.Errorf("%w: no ticker has two or more closes", domain.ErrNoPriceData)
	}
	sort.Strings(tickers)

	// Restrict to dates where every surviving ticker has a close
	dateCounts := make(map[string]int)
	for _, ticker := range tickers {
		for date := range closes[ticker] {
			dateCounts[date]++
		}
	}
	var dates []string
	for date, count := range dateCounts {
		if count == len(tickers) {
			dates = append(dates, date)
		}
	}
	sort.Strings(dates)

	// n common dates give n-1 returns; the matrix needs at least 2 rows
	if len(dates) < 3 {
		return nil, fmt.Errorf("%w: only %d aligned dates across %d tickers",
			domain.ErrNoPriceData, len(dates), len(tickers))
	}

	columns := make(map[string][]float64, len(tickers))
	for _, ticker := range tickers {
		series := make([]float64, len(dates))
		for i, date := range dates {
			series[i] = closes[ticker][date]
		}
		columns[ticker] = formulas.PercentChanges(series)
	}

	return &ReturnMatrix{
		Dates:   dates[1:],
		Tickers: tickers,
		columns: columns,
	}, nil
}

// PortfolioReturns computes the weighted daily portfolio return series: the
// dot product of each matrix row with the weight vector. Weights are looked
// up by ticker key; a ticker absent from weights contributes nothing.
func PortfolioReturns(m *ReturnMatrix, weights map[string]float64) []float64 {
	weighted := make([]float64, m.NumRows())
	for _, ticker := range m.Tickers {
		w := weights[ticker]
		for i, r := range m.columns[ticker] {
			weighted[i] += w * r
		}
	}
	return weighted
}
