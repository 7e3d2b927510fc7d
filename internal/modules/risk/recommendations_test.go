package risk

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rainmaker/riskd/internal/domain"
)

func TestBuildRecommendationsRiskGap(t *testing.T) {
	params := DefaultParams()

	over := BuildRecommendations(RecommendationInput{
		Metrics:    domain.RiskMetrics{RiskScore: TierC, VaRScaled: 150, VaR1D: 10},
		RiskAmount: 100,
	}, params)
	assert.InDelta(t, 50.0, over.RiskGap.GapAmount, 1e-12)
	assert.Equal(t, "over", over.RiskGap.Status)
	assert.InDelta(t, 100.0, over.RiskGap.RiskAllowed, 1e-12)

	under := BuildRecommendations(RecommendationInput{
		Metrics:    domain.RiskMetrics{RiskScore: TierA, VaRScaled: 60},
		RiskAmount: 100,
	}, params)
	assert.InDelta(t, -40.0, under.RiskGap.GapAmount, 1e-12)
	assert.Equal(t, "under", under.RiskGap.Status)
}

func TestBuildRecommendationsTierC(t *testing.T) {
	params := DefaultParams()
	in := RecommendationInput{
		Metrics: domain.RiskMetrics{
			RiskScore: TierC,
			VaR1D:     10,
			VaRScaled: 200,
		},
		RiskAmount:     100,
		RiskPercentage: 0.2,
		TopDrivers: []domain.ContributionRow{
			{Ticker: "AAA", ContributionPct: 50},
		},
		Shares:       map[string]float64{"AAA": 10},
		LatestCloses: map[string]float64{"AAA": 20},
	}

	recs := BuildRecommendations(in, params)

	require.NotNil(t, recs.InvestmentTerm)
	// (100 / 10)^2 = 100 days brings the scaled VaR back to the budget
	assert.Equal(t, 100, recs.InvestmentTerm.RecommendedDays)
	assert.Contains(t, recs.InvestmentTerm.Message, "~100 days")

	require.NotNil(t, recs.AssetAdjustment)
	adj := recs.AssetAdjustment
	assert.Equal(t, "AAA", adj.Ticker)
	// AAA carries 50% of the 200 scaled VaR; closing the 100 gap takes
	// every one of its 10 units
	require.NotNil(t, adj.UnitsToRemove)
	assert.InDelta(t, 10.0, *adj.UnitsToRemove, 1e-9)
	require.NotNil(t, adj.AlternativeBudget)
	assert.InDelta(t, 1000.0, *adj.AlternativeBudget, 1e-9)
	assert.Nil(t, recs.WatchWarning)
}

func TestRecommendedTermInvertsScaling(t *testing.T) {
	// The recommended horizon must bring var_1d * sqrt(days) back to the
	// risk budget, up to integer-day rounding.
	params := DefaultParams()
	var1d := 7.0
	riskAmount := 100.0

	recs := BuildRecommendations(RecommendationInput{
		Metrics: domain.RiskMetrics{
			RiskScore: TierC,
			VaR1D:     var1d,
			VaRScaled: 300,
		},
		RiskAmount: riskAmount,
	}, params)

	require.NotNil(t, recs.InvestmentTerm)
	days := recs.InvestmentTerm.RecommendedDays
	rescaled := var1d * math.Sqrt(float64(days))

	// Half a day of rounding at most
	exact := (riskAmount / var1d) * (riskAmount / var1d)
	assert.InDelta(t, exact, float64(days), 0.5)
	assert.InDelta(t, riskAmount, rescaled, var1d)
}

func TestBuildRecommendationsTierCNonPositiveVaR(t *testing.T) {
	recs := BuildRecommendations(RecommendationInput{
		Metrics:    domain.RiskMetrics{RiskScore: TierC, VaR1D: 0, VaRScaled: 0},
		RiskAmount: 100,
	}, DefaultParams())

	assert.Nil(t, recs.InvestmentTerm)
}

func TestBuildRecommendationsTierB(t *testing.T) {
	params := DefaultParams()
	in := RecommendationInput{
		Metrics: domain.RiskMetrics{
			RiskScore:   TierB,
			VaR1D:       5,
			VaRScaled:   85,
			HorizonDays: 289, // (85/5)^2
		},
		RiskAmount: 100,
		TopDrivers: []domain.ContributionRow{
			{Ticker: "AAA", ContributionPct: 60},
		},
	}

	recs := BuildRecommendations(in, params)

	require.NotNil(t, recs.WatchWarning)
	warning := recs.WatchWarning
	assert.Equal(t, "AAA", warning.Ticker)

	inner := 100.0 / params.TierBInnerDivisor
	assert.InDelta(t, inner-85, warning.Margin, 1e-9)

	ratio := inner / 5
	wantAdded := int(math.Round(ratio*ratio)) - 289
	assert.Equal(t, wantAdded, warning.AddedDays)
	assert.Contains(t, warning.Message, "AAA")

	assert.Nil(t, recs.InvestmentTerm)
	assert.Nil(t, recs.AssetAdjustment)
}

func TestBuildRecommendationsTierA(t *testing.T) {
	params := DefaultParams()
	in := RecommendationInput{
		Metrics: domain.RiskMetrics{
			RiskScore: TierA,
			VaRScaled: 60,
		},
		RiskAmount: 100,
		Contributions: []domain.ContributionRow{
			{Ticker: "XXX", ContributionPct: 80},
			{Ticker: "YYY", ContributionPct: 20},
		},
		Shares:       map[string]float64{"XXX": 10, "YYY": 5},
		LatestCloses: map[string]float64{"XXX": 30, "YYY": 10},
	}

	recs := BuildRecommendations(in, params)

	require.NotNil(t, recs.AssetAdjustment)
	adj := recs.AssetAdjustment
	// YYY is the lowest non-negative contributor: 20% of 60 = 12 risk over
	// a $50 position, spare risk 40 buys $166.67, floor(16.67) = 16 units
	assert.Equal(t, "YYY", adj.Ticker)
	require.NotNil(t, adj.UnitsToAdd)
	assert.Equal(t, 16, *adj.UnitsToAdd)
	assert.Nil(t, adj.UnitsToRemove)
}

func TestBuildRecommendationsTierAAllNegative(t *testing.T) {
	recs := BuildRecommendations(RecommendationInput{
		Metrics:    domain.RiskMetrics{RiskScore: TierA, VaRScaled: 60},
		RiskAmount: 100,
		Contributions: []domain.ContributionRow{
			{Ticker: "XXX", ContributionPct: -5},
			{Ticker: "YYY", ContributionPct: -30},
		},
	}, DefaultParams())

	require.NotNil(t, recs.AssetAdjustment)
	assert.Equal(t, "YYY", recs.AssetAdjustment.Ticker)
	assert.Contains(t, recs.AssetAdjustment.Action, "hedge")
	assert.Nil(t, recs.AssetAdjustment.UnitsToAdd)
}

func TestBuildRecommendationsTierAUnpriceable(t *testing.T) {
	// Candidate without a stored price still yields a named suggestion
	recs := BuildRecommendations(RecommendationInput{
		Metrics:    domain.RiskMetrics{RiskScore: TierA, VaRScaled: 60},
		RiskAmount: 100,
		Contributions: []domain.ContributionRow{
			{Ticker: "YYY", ContributionPct: 20},
		},
		Shares:       map[string]float64{"YYY": 5},
		LatestCloses: map[string]float64{},
	}, DefaultParams())

	require.NotNil(t, recs.AssetAdjustment)
	assert.Equal(t, "YYY", recs.AssetAdjustment.Ticker)
	assert.Contains(t, recs.AssetAdjustment.Action, "could not be computed")
	assert.Nil(t, recs.AssetAdjustment.UnitsToAdd)
}
