package risk

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rainmaker/riskd/internal/domain"
)

func points(ticker string, closes map[string]float64) []domain.PricePoint {
	var pts []domain.PricePoint
	for date, close := range closes {
		pts = append(pts, domain.PricePoint{Ticker: ticker, Date: date, Close: close})
	}
	return pts
}

func TestBuildReturnMatrix(t *testing.T) {
	pts := append(
		points("AAA", map[string]float64{"2024-01-01": 100, "2024-01-02": 101, "2024-01-03": 99}),
		points("BBB", map[string]float64{"2024-01-01": 50, "2024-01-02": 49, "2024-01-03": 51})...,
	)

	m, err := BuildReturnMatrix(pts)
	require.NoError(t, err)

	assert.Equal(t, []string{"AAA", "BBB"}, m.Tickers)
	assert.Equal(t, []string{"2024-01-02", "2024-01-03"}, m.Dates)
	assert.Equal(t, 2, m.NumRows())

	aaa := m.Column("AAA")
	require.Len(t, aaa, 2)
	assert.InDelta(t, 0.01, aaa[0], 1e-12)
	assert.InDelta(t, (99.0-101.0)/101.0, aaa[1], 1e-12)

	bbb := m.Column("BBB")
	require.Len(t, bbb, 2)
	assert.InDelta(t, -0.02, bbb[0], 1e-12)
	assert.InDelta(t, (51.0-49.0)/49.0, bbb[1], 1e-12)
}

func TestBuildReturnMatrixDropsSparseTickers(t *testing.T) {
	pts := append(
		points("AAA", map[string]float64{"2024-01-01": 100, "2024-01-02": 101, "2024-01-03": 99}),
		// A single close can never produce a return
		domain.PricePoint{Ticker: "CCC", Date: "2024-01-02", Close: 10},
	)

	m, err := BuildReturnMatrix(pts)
	require.NoError(t, err)

	assert.Equal(t, []string{"AAA"}, m.Tickers)
	assert.Nil(t, m.Column("CCC"))
	assert.Equal(t, 2, m.NumRows())
}

func TestBuildReturnMatrixDateIntersection(t *testing.T) {
	// AAA has four dates, BBB only the first three
	pts := append(
		points("AAA", map[string]float64{
			"2024-01-01": 100, "2024-01-02": 101, "2024-01-03": 99, "2024-01-04": 102,
		}),
		points("BBB", map[string]float64{
			"2024-01-01": 50, "2024-01-02": 49, "2024-01-03": 51,
		})...,
	)

	m, err := BuildReturnMatrix(pts)
	require.NoError(t, err)

	// Restricted to the common dates; the extra AAA close is dropped
	assert.Equal(t, []string{"2024-01-02", "2024-01-03"}, m.Dates)
	assert.Len(t, m.Column("AAA"), 2)
	assert.Len(t, m.Column("BBB"), 2)
}

func TestBuildReturnMatrixInsufficientData(t *testing.T) {
	// No ticker with two or more closes
	_, err := BuildReturnMatrix([]domain.PricePoint{
		{Ticker: "AAA", Date: "2024-01-01", Close: 100},
		{Ticker: "BBB", Date: "2024-01-01", Close: 50},
	})
	assert.ErrorIs(t, err, domain.ErrNoPriceData)

	// Two aligned dates give a single return row; two are required
	pts := append(
		points("AAA", map[string]float64{"2024-01-01": 100, "2024-01-02": 101}),
		points("BBB", map[string]float64{"2024-01-01": 50, "2024-01-02": 49})...,
	)
	_, err = BuildReturnMatrix(pts)
	assert.ErrorIs(t, err, domain.ErrNoPriceData)
}

func TestPortfolioReturns(t *testing.T) {
	m := &ReturnMatrix{
		Dates:   []string{"2024-01-02", "2024-01-03"},
		Tickers: []string{"AAA", "BBB"},
		columns: map[string][]float64{
			"AAA": {0.01, -0.02},
			"BBB": {0.03, 0.01},
		},
	}

	weighted := PortfolioReturns(m, map[string]float64{"AAA": 0.5, "BBB": 0.5})
	require.Len(t, weighted, 2)
	assert.InDelta(t, 0.02, weighted[0], 1e-12)
	assert.InDelta(t, -0.005, weighted[1], 1e-12)

	// A ticker absent from the weight vector contributes nothing
	weighted = PortfolioReturns(m, map[string]float64{"AAA": 1})
	assert.InDelta(t, 0.01, weighted[0], 1e-12)
	assert.InDelta(t, -0.02, weighted[1], 1e-12)
}
