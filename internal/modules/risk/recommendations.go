package risk

import (
	"fmt"
	"math"

	"github.com/rainmaker/riskd/internal/domain"
)

// RecommendationInput carries everything the recommendation engine needs.
// Shares and LatestCloses are keyed by ticker.
type RecommendationInput struct {
	Metrics        domain.RiskMetrics
	RiskAmount     float64
	RiskPercentage float64
	Contributions  []domain.ContributionRow
	TopDrivers     []domain.ContributionRow
	Shares         map[string]float64
	LatestCloses   map[string]float64
}

// BuildRecommendations produces the tier-dependent advice block. The risk
// gap is always computed; the tier determines which suggestion fields are
// populated:
//
//   - Tier C: a shorter horizon obtained by inverting the sqrt-time scaling
//     (var_scaled == risk_amount at recommended_days), a position reduction
//     for the top risk driver, and the budget under which current exposure
//     would satisfy the policy.
//   - Tier B: headroom before the inner watch threshold and the horizon
//     extension that threshold allows.
//   - Tier A: spare risk allocated to the lowest non-negative contributor,
//     or a hedge suggestion when every contribution is negative.
//
// Denominator guards never fail the call; when a safe suggestion cannot be
// computed the engine says so instead.
func BuildRecommendations(in RecommendationInput, params Params) domain.Recommendations {
	gap := in.Metrics.VaRScaled - in.RiskAmount

	status := "under"
	if gap > 0 {
		status = "over"
	}

	recs := domain.Recommendations{
		RiskGap: domain.RiskGap{
			GapAmount:   gap,
			Status:      status,
			RiskAllowed: in.RiskAmount,
		},
	}

	switch in.Metrics.RiskScore {
	case TierC:
		recs.InvestmentTerm = recommendTerm(in)
		recs.AssetAdjustment = recommendReduction(in, gap)
	case TierB:
		recs.WatchWarning = recommendWatch(in, params)
	case TierA:
		recs.AssetAdjustment = recommendAllocation(in)
	}

	return recs
}

// recommendTerm inverts var_scaled = var_1d * sqrt(days) to find the
// horizon at which the scaled VaR would exactly meet the risk budget.
// Only valid when var_1d is positive.
func recommendTerm(in RecommendationInput) *domain.InvestmentTerm {
	if in.Metrics.VaR1D <= 0 {
		return nil
	}

	ratio := in.RiskAmount / in.Metrics.VaR1D
	days := int(math.Round(ratio * ratio))

	return &domain.InvestmentTerm{
		RecommendedDays: days,
		Message:         fmt.Sprintf("Reduce investment term to ~%d days to meet your risk allowance.", days),
	}
}

// recommendReduction sizes the position cut for the top risk driver that
// would close the risk gap, clamped to the units actually held.
func recommendReduction(in RecommendationInput, gap float64) *domain.AssetAdjustment {
	if len(in.TopDrivers) == 0 {
		return nil
	}

	top := in.TopDrivers[0]
	units := in.Shares[top.Ticker]
	price := in.LatestCloses[top.Ticker]
	contributionToVaR := top.ContributionPct / 100 * in.Metrics.VaRScaled

	unitsToRemove := 0.0
	if contributionToVaR > 0 && units > 0 && price > 0 {
		riskPerUnit := contributionToVaR / (units * price)
		unitsToRemove = gap / (riskPerUnit * price)
		unitsToRemove = math.Round(unitsToRemove*100) / 100
		unitsToRemove = math.Min(unitsToRemove, units)
		unitsToRemove = math.Max(unitsToRemove, 0)
	}

	adjustment := &domain.AssetAdjustment{
		Ticker:        top.Ticker,
		Action:        fmt.Sprintf("Reduce %s holdings by approximately %.2f units.", top.Ticker, unitsToRemove),
		UnitsToRemove: &unitsToRemove,
	}

	if in.RiskPercentage > 0 {
		alternativeBudget := in.Metrics.VaRScaled / in.RiskPercentage
		adjustment.AlternativeBudget = &alternativeBudget
	}

	return adjustment
}

// recommendWatch reports the currency headroom left before the inner watch
// threshold and the horizon extension that threshold still allows.
func recommendWatch(in RecommendationInput, params Params) *domain.WatchWarning {
	if len(in.TopDrivers) == 0 {
		return nil
	}

	top := in.TopDrivers[0]
	innerThreshold := in.RiskAmount / params.TierBInnerDivisor
	margin := innerThreshold - in.Metrics.VaRScaled

	addedDays := 0
	if in.Metrics.VaR1D > 0 {
		ratio := innerThreshold / in.Metrics.VaR1D
		extensionDays := int(math.Round(ratio * ratio))
		addedDays = extensionDays - in.Metrics.HorizonDays
	}

	return &domain.WatchWarning{
		Ticker:    top.Ticker,
		Margin:    margin,
		AddedDays: addedDays,
		Message: fmt.Sprintf(
			"Watch out for %s which is nearing your risk boundary. "+
				"You can increase risk by $%.2f before hitting your limit. "+
				"Consider extending your investment period by ~%d days.",
			top.Ticker, margin, addedDays),
	}
}

// recommendAllocation spends the spare risk budget on the asset that adds
// the least risk per dollar: the lowest non-negative contributor. When
// every asset contributes negatively the best hedge is named instead.
func recommendAllocation(in RecommendationInput) *domain.AssetAdjustment {
	if len(in.Contributions) == 0 {
		return nil
	}

	spareRisk := in.RiskAmount - in.Metrics.VaRScaled

	var candidate *domain.ContributionRow
	for i := range in.Contributions {
		row := in.Contributions[i]
		if row.ContributionPct < 0 {
			continue
		}
		if candidate == nil || row.ContributionPct < candidate.ContributionPct {
			candidate = &in.Contributions[i]
		}
	}

	if candidate == nil {
		hedge := in.Contributions[0]
		for _, row := range in.Contributions[1:] {
			if row.ContributionPct < hedge.ContributionPct {
				hedge = row
			}
		}
		return &domain.AssetAdjustment{
			Ticker: hedge.Ticker,
			Action: fmt.Sprintf(
				"All assets contribute negatively to portfolio risk. Consider %s as a potential hedge.",
				hedge.Ticker),
		}
	}

	units := in.Shares[candidate.Ticker]
	price := in.LatestCloses[candidate.Ticker]
	contributionToVaR := candidate.ContributionPct / 100 * in.Metrics.VaRScaled

	if units > 0 && price > 0 && contributionToVaR > 0 && spareRisk > 0 {
		riskPerDollar := contributionToVaR / (units * price)
		additionalDollars := spareRisk / riskPerDollar
		unitsToAdd := int(math.Floor(additionalDollars / price))

		return &domain.AssetAdjustment{
			Ticker: candidate.Ticker,
			Action: fmt.Sprintf(
				"You could add approximately %d units of %s without exceeding your risk limit.",
				unitsToAdd, candidate.Ticker),
			UnitsToAdd: &unitsToAdd,
		}
	}

	return &domain.AssetAdjustment{
		Ticker: candidate.Ticker,
		Action: fmt.Sprintf(
			"Consider allocating to %s, but a safe unit suggestion could not be computed.",
			candidate.Ticker),
	}
}
