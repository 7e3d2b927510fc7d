package risk

import (
	"fmt"
	"math"

	"github.com/rs/zerolog"

	"github.com/rainmaker/riskd/internal/domain"
)

// ProfileSource supplies the user's investment profile.
type ProfileSource interface {
	GetByUserID(userID int64) (*domain.Profile, error)
}

// HoldingsSource supplies the user's portfolio positions.
type HoldingsSource interface {
	GetByUserID(userID int64) ([]domain.Holding, error)
}

// PriceSource supplies historical and latest closes. Implementations may
// silently omit tickers that have no stored data.
type PriceSource interface {
	GetDailyCloses(tickers []string) ([]domain.PricePoint, error)
	GetLatestCloses(tickers []string) (map[string]float64, error)
}

// Service orchestrates the risk pipeline. Each Analyze call is a pure
// function of its fetched inputs: no state is shared between calls and
// nothing is cached, so concurrent analyses for the same user are computed
// independently.
type Service struct {
	profiles ProfileSource
	holdings HoldingsSource
	prices   PriceSource
	params   Params
	log      zerolog.Logger
}

// NewService creates a new risk analysis service
func NewService(profiles ProfileSource, holdings HoldingsSource, prices PriceSource, params Params, log zerolog.Logger) *Service {
	return &Service{
		profiles: profiles,
		holdings: holdings,
		prices:   prices,
		params:   params,
		log:      log.With().Str("service", "risk").Logger(),
	}
}

// Analyze computes the full risk report for a user. It fails fast, with no
// partial or defaulted report, when the profile is missing, holdings are
// empty, or no usable price data exists for any held ticker.
func (s *Service) Analyze(userID int64) (*domain.RiskReport, error) {
	profile, err := s.profiles.GetByUserID(userID)
	if err != nil {
		return nil, err
	}

	holdings, err := s.holdings.GetByUserID(userID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch holdings: %w", err)
	}
	if len(holdings) == 0 {
		return nil, fmt.Errorf("%w: user %d", domain.ErrEmptyHoldings, userID)
	}

	tickers := make([]string, len(holdings))
	shares := make(map[string]float64, len(holdings))
	for i, h := range holdings {
		tickers[i] = h.Ticker
		shares[h.Ticker] = h.Shares
	}

	points, err := s.prices.GetDailyCloses(tickers)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch price history: %w", err)
	}
	if len(points) == 0 {
		return nil, fmt.Errorf("%w: no stored closes for %d tickers", domain.ErrNoPriceData, len(tickers))
	}

	matrix, err := BuildReturnMatrix(points)
	if err != nil {
		return nil, err
	}

	latest, err := s.prices.GetLatestCloses(tickers)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch latest closes: %w", err)
	}

	// Portfolio breakdown over every priced holding; total value is the
	// full market value of the portfolio.
	var breakdown []domain.PositionValue
	totalValue := 0.0
	for _, h := range holdings {
		close, ok := latest[h.Ticker]
		if !ok {
			continue
		}
		value := close * h.Shares
		totalValue += value
		breakdown = append(breakdown, domain.PositionValue{
			Ticker: h.Ticker,
			Shares: int(h.Shares),
			Value:  value,
		})
	}

	// Weights are keyed to the surviving matrix columns and renormalized
	// over them, never aligned by input position.
	weights, err := alignWeights(matrix, shares, latest)
	if err != nil {
		return nil, err
	}

	weighted := PortfolioReturns(matrix, weights)
	riskAmount := profile.RiskAmount()

	metrics, err := ComputeMetrics(weighted, totalValue, riskAmount, profile.TermLength, s.params)
	if err != nil {
		return nil, err
	}

	contributions, err := Contributions(matrix, weights)
	if err != nil {
		return nil, err
	}

	topDrivers := TopDrivers(contributions, 3)
	bottomDrivers := BottomDrivers(contributions, 3)
	insights := BuildInsights(contributions, topDrivers, bottomDrivers)

	recommendations := BuildRecommendations(RecommendationInput{
		Metrics:        metrics,
		RiskAmount:     riskAmount,
		RiskPercentage: profile.RiskPercentage,
		Contributions:  contributions,
		TopDrivers:     topDrivers,
		Shares:         shares,
		LatestCloses:   latest,
	}, s.params)

	s.log.Info().
		Int64("user_id", userID).
		Str("risk_score", metrics.RiskScore).
		Float64("var_scaled", metrics.VaRScaled).
		Int("assets", len(matrix.Tickers)).
		Msg("Risk report computed")

	return &domain.RiskReport{
		PortfolioBreakdown:  breakdown,
		RiskMetrics:         metrics,
		RiskContributions:   contributions,
		TopRiskDrivers:      topDrivers,
		BottomRiskDrivers:   bottomDrivers,
		Insights:            insights,
		Recommendations:     recommendations,
		TotalPortfolioValue: totalValue,
	}, nil
}

// alignWeights builds the weight vector over exactly the matrix columns,
// from current market value shares. Tickers the price feed dropped carry no
// weight; the remainder is renormalized to sum to 1.
func alignWeights(m *ReturnMatrix, shares, latest map[string]float64) (map[string]float64, error) {
	values := make(map[string]float64, len(m.Tickers))
	total := 0.0
	for _, ticker := range m.Tickers {
		value := latest[ticker] * shares[ticker]
		values[ticker] = value
		total += value
	}

	if !(total > 0) || math.IsNaN(total) {
		return nil, fmt.Errorf("%w: surviving positions have no market value", domain.ErrDegenerateRisk)
	}

	weights := make(map[string]float64, len(m.Tickers))
	for _, ticker := range m.Tickers {
		weights[ticker] = values[ticker] / total
	}
	return weights, nil
}
