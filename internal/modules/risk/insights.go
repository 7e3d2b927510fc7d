package risk

import (
	"fmt"
	"strings"

	"github.com/rainmaker/riskd/internal/domain"
)

// BuildInsights derives the narrative insight block from the contribution
// table. Exactly one of the concentration and risk-distribution messages is
// produced per call; the diversification message is always produced.
func BuildInsights(contributions, topDrivers, bottomDrivers []domain.ContributionRow) domain.Insights {
	var insights domain.Insights
	if len(contributions) == 0 || len(topDrivers) == 0 || len(bottomDrivers) == 0 {
		return insights
	}

	highest := topDrivers[0]
	restSum := -highest.ContributionPct
	for _, row := range contributions {
		restSum += row.ContributionPct
	}

	if highest.ContributionPct > restSum {
		insights.Concentration = fmt.Sprintf(
			"Concentration Alert: %s alone contributes more to portfolio risk than all other assets combined!",
			highest.Ticker)
	} else {
		names := make([]string, len(topDrivers))
		combined := 0.0
		for i, row := range topDrivers {
			names[i] = row.Ticker
			combined += row.ContributionPct
		}
		insights.RiskDistribution = fmt.Sprintf(
			"Risk Distribution Insight: Your top %d assets (%s) make up %.1f%% of total portfolio risk.",
			len(topDrivers), strings.Join(names, ", "), combined)
	}

	lowest := bottomDrivers[0]
	insights.Diversification = fmt.Sprintf(
		"Diversification Insight: '%s' currently contributes only %.2f%% to your total risk.",
		lowest.Ticker, lowest.ContributionPct)

	return insights
}
