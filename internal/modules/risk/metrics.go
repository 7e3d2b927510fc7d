package risk

import (
	"fmt"
	"math"

	"github.com/rainmaker/riskd/internal/domain"
	"github.com/rainmaker/riskd/pkg/formulas"
)

// Tier labels for the risk score.
const (
	TierA = "A" // Scaled VaR within the risk budget
	TierB = "B" // Scaled VaR within TierBMultiplier of the budget
	TierC = "C" // Scaled VaR over budget
)

// Params holds the named constants of the risk model. The tier multiplier
// and inner divisor are empirically chosen policy values, kept configurable
// rather than derived.
type Params struct {
	VaRPercentile     float64 // Lower-tail percentile for historical VaR
	TierBMultiplier   float64 // Tier B upper bound as a multiple of the risk budget
	TierBInnerDivisor float64 // Divisor defining the tier-B watch threshold
	DaysPerMonth      int     // Calendar days assumed per term month
}

// DefaultParams returns the standard risk model parameters.
func DefaultParams() Params {
	return Params{
		VaRPercentile:     5,
		TierBMultiplier:   1.2,
		TierBInnerDivisor: 1.15,
		DaysPerMonth:      30,
	}
}

// ComputeMetrics derives the portfolio risk metrics from the weighted daily
// return series:
//
//   - daily volatility: sample standard deviation of the series
//   - 1-day VaR: negated lower-tail percentile of the empirical return
//     distribution, in currency units (historical, non-parametric)
//   - scaled VaR: 1-day VaR times sqrt(horizon days). Square-root-of-time
//     scaling assumes i.i.d. daily returns; that is a modeling assumption,
//     not a property of the data.
//   - risk score: A when scaled VaR fits the budget, B within
//     TierBMultiplier of it, C beyond. Boundaries are inclusive on the
//     lower tier.
//
// Returns domain.ErrDegenerateRisk when the series has fewer than two
// points, since the percentile is undefined there.
func ComputeMetrics(weighted []float64, totalValue, riskAmount float64, termMonths int, params Params) (domain.RiskMetrics, error) {
	if len(weighted) < 2 {
		return domain.RiskMetrics{}, fmt.Errorf("%w: %d return observations",
			domain.ErrDegenerateRisk, len(weighted))
	}

	dailyVol := formulas.StdDev(weighted)
	tail := formulas.Percentile(weighted, params.VaRPercentile)
	var1d := -tail * totalValue

	horizonDays := termMonths * params.DaysPerMonth
	varScaled := var1d * math.Sqrt(float64(horizonDays))

	score := TierC
	switch {
	case varScaled <= riskAmount:
		score = TierA
	case varScaled <= riskAmount*params.TierBMultiplier:
		score = TierB
	}

	return domain.RiskMetrics{
		DailyVolatility: dailyVol,
		VaR1D:           var1d,
		VaRScaled:       varScaled,
		RiskScore:       score,
		HorizonDays:     horizonDays,
	}, nil
}
