// Package domain contains the pure data types shared across the risk server.
// Types in this package have no infrastructure dependencies; they are
// constructed once by the stores or the risk service and passed immutably
// between stages.
package domain

// Profile holds a user's investment profile. Budget and RiskPercentage
// together define the risk budget: RiskAmount = Budget * RiskPercentage.
type Profile struct {
	UserID         int64   `json:"user_id"`
	Age            int     `json:"age,omitempty"`
	IncomeLevel    string  `json:"income_level,omitempty"`
	Budget         float64 `json:"budget"`
	RiskPercentage float64 `json:"risk_percentage"` // Fraction in (0, 1]
	TermLength     int     `json:"term_length"`     // Investment term in months
	TermType       string  `json:"term_type"`
}

// RiskAmount returns the currency amount of risk the profile tolerates.
func (p Profile) RiskAmount() float64 {
	return p.Budget * p.RiskPercentage
}

// Holding is a single position in a user's portfolio.
type Holding struct {
	UserID int64   `json:"user_id"`
	Ticker string  `json:"ticker"`
	Shares float64 `json:"shares"` // Must be >= 0
}

// PricePoint is one daily close for a ticker. Date is an ISO-8601 day
// (YYYY-MM-DD); Close must be > 0.
type PricePoint struct {
	Ticker string  `json:"ticker"`
	Date   string  `json:"date"`
	Close  float64 `json:"close"`
}

// PositionValue is one row of the portfolio breakdown in a report.
type PositionValue struct {
	Ticker string  `json:"ticker"`
	Shares int     `json:"shares"`
	Value  float64 `json:"value"`
}

// RiskMetrics holds the portfolio-level risk figures. VaR1D is the
// historical (non-parametric) 1-day 95% VaR in currency units; VaRScaled is
// VaR1D scaled by the square root of the investment horizon in days, which
// assumes i.i.d. daily returns.
type RiskMetrics struct {
	DailyVolatility float64 `json:"daily_volatility"`
	VaR1D           float64 `json:"var_1d"`
	VaRScaled       float64 `json:"var_scaled"`
	RiskScore       string  `json:"risk_score"` // One of "A", "B", "C"
	HorizonDays     int     `json:"investment_horizon_days"`
}

// ContributionRow is one asset's share of portfolio risk from the Euler
// decomposition. Across a full table the ContributionPct values sum to 100
// up to floating tolerance.
type ContributionRow struct {
	Ticker          string  `json:"ticker"`
	Weight          float64 `json:"weight"`
	ContributionPct float64 `json:"risk_contribution_pct"`
}

// Insights carries the narrative derived from the risk contributions.
// Exactly one of Concentration and RiskDistribution is set per report;
// Diversification is always set.
type Insights struct {
	Concentration    string `json:"concentration,omitempty"`
	RiskDistribution string `json:"risk_distribution,omitempty"`
	Diversification  string `json:"diversification"`
}

// RiskGap compares the horizon-scaled VaR against the allowed risk budget.
type RiskGap struct {
	GapAmount   float64 `json:"gap_amount"`
	Status      string  `json:"status"` // "over" when GapAmount > 0, else "under"
	RiskAllowed float64 `json:"risk_allowed"`
}

// InvestmentTerm recommends a shorter horizon under which the scaled VaR
// would fit the risk budget (tier C only).
type InvestmentTerm struct {
	RecommendedDays int    `json:"recommended_days"`
	Message         string `json:"message"`
}

// AssetAdjustment recommends a position-size change. For tier C,
// UnitsToRemove and AlternativeBudget are set; for tier A, UnitsToAdd is set
// when a safe suggestion exists.
type AssetAdjustment struct {
	Ticker            string   `json:"ticker"`
	Action            string   `json:"action"`
	UnitsToRemove     *float64 `json:"units_to_remove,omitempty"`
	UnitsToAdd        *int     `json:"units_to_add,omitempty"`
	AlternativeBudget *float64 `json:"alternative_budget,omitempty"`
}

// WatchWarning flags a portfolio close to its risk boundary (tier B).
type WatchWarning struct {
	Ticker    string  `json:"ticker"`
	Margin    float64 `json:"margin"`
	AddedDays int     `json:"added_days"`
	Message   string  `json:"message"`
}

// Recommendations is the tier-dependent advice block. RiskGap is always
// present; exactly one tier's fields are populated: InvestmentTerm and
// AssetAdjustment for tier C, WatchWarning for tier B, AssetAdjustment for
// tier A.
type Recommendations struct {
	RiskGap         RiskGap          `json:"risk_gap"`
	InvestmentTerm  *InvestmentTerm  `json:"investment_term,omitempty"`
	AssetAdjustment *AssetAdjustment `json:"asset_adjustment,omitempty"`
	WatchWarning    *WatchWarning    `json:"watch_warning,omitempty"`
}

// RiskReport is the sole output artifact of a portfolio analysis. It is
// produced fresh per call and never cached across requests.
type RiskReport struct {
	PortfolioBreakdown  []PositionValue   `json:"portfolio_breakdown"`
	RiskMetrics         RiskMetrics       `json:"risk_metrics"`
	RiskContributions   []ContributionRow `json:"risk_contributions"`
	TopRiskDrivers      []ContributionRow `json:"top_risk_drivers"`
	BottomRiskDrivers   []ContributionRow `json:"bottom_risk_drivers"`
	Insights            Insights          `json:"insights"`
	Recommendations     Recommendations   `json:"recommendations"`
	TotalPortfolioValue float64           `json:"total_portfolio_value"`
}
