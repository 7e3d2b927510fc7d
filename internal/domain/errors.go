package domain

import "errors"

// Sentinel errors for the risk pipeline. Stores and engines return these
// (usually wrapped with context); the HTTP layer matches them with
// errors.Is to pick a status code. They are never substituted with zeroed
// defaults inside the computation core.
var (
	// ErrMissingProfile indicates no investment profile exists for the user.
	ErrMissingProfile = errors.New("no profile found for user")

	// ErrEmptyHoldings indicates the user holds no positions.
	ErrEmptyHoldings = errors.New("no holdings found for user")

	// ErrNoPriceData indicates no usable price series exists for any held
	// ticker, or too few observations survive to compute returns.
	ErrNoPriceData = errors.New("no price data available")

	// ErrDegenerateRisk indicates the portfolio risk is not computable:
	// fewer than two return observations, or a non-positive portfolio
	// standard deviation (zero-variance or perfectly offsetting series).
	ErrDegenerateRisk = errors.New("degenerate risk: portfolio variance not computable")
)
