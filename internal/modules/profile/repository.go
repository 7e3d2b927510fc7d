// Package profile stores user investment profiles: the budget, risk
// tolerance and investment term the risk pipeline classifies against.
package profile

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/rainmaker/riskd/internal/domain"
)

// Repository handles user profile database operations
type Repository struct {
	db  *sql.DB // profile.db
	log zerolog.Logger
}

// NewRepository creates a new profile repository
func NewRepository(db *sql.DB, log zerolog.Logger) *Repository {
	return &Repository{
		db:  db,
		log: log.With().Str("repo", "profile").Logger(),
	}
}

// GetByUserID returns the investment profile for a user.
// Returns domain.ErrMissingProfile when the user has no profile.
func (r *Repository) GetByUserID(userID int64) (*domain.Profile, error) {
	query := `SELECT user_id, age, income_level, budget, risk_percentage,
		term_length, term_type
		FROM user_profiles WHERE user_id = ?`

	var p domain.Profile
	var age sql.NullInt64
	var incomeLevel sql.NullString

	err := r.db.QueryRow(query, userID).Scan(
		&p.UserID,
		&age,
		&incomeLevel,
		&p.Budget,
		&p.RiskPercentage,
		&p.TermLength,
		&p.TermType,
	)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("%w: user %d", domain.ErrMissingProfile, userID)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query profile: %w", err)
	}

	if age.Valid {
		p.Age = int(age.Int64)
	}
	if incomeLevel.Valid {
		p.IncomeLevel = incomeLevel.String
	}

	return &p, nil
}

// Upsert inserts or updates a user profile
func (r *Repository) Upsert(p domain.Profile) error {
	if err := validate(p); err != nil {
		return err
	}

	tx, err := r.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	query := `
		INSERT OR REPLACE INTO user_profiles
		(user_id, age, income_level, budget, risk_percentage, term_length, term_type, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err = tx.Exec(query,
		p.UserID,
		nullInt(p.Age),
		nullString(p.IncomeLevel),
		p.Budget,
		p.RiskPercentage,
		p.TermLength,
		p.TermType,
		time.Now().Unix(),
	)
	if err != nil {
		return fmt.Errorf("failed to upsert profile: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	r.log.Info().Int64("user_id", p.UserID).Msg("Profile upserted")
	return nil
}

func validate(p domain.Profile) error {
	if p.Budget <= 0 {
		return fmt.Errorf("budget must be positive, got %g", p.Budget)
	}
	if p.RiskPercentage <= 0 || p.RiskPercentage > 1 {
		return fmt.Errorf("risk percentage must be in (0, 1], got %g", p.RiskPercentage)
	}
	if p.TermLength <= 0 {
		return fmt.Errorf("term length must be a positive number of months, got %d", p.TermLength)
	}
	return nil
}

func nullInt(val int) sql.NullInt64 {
	if val == 0 {
		return sql.NullInt64{Valid: false}
	}
	return sql.NullInt64{Int64: int64(val), Valid: true}
}

func nullString(val string) sql.NullString {
	if val == "" {
		return sql.NullString{Valid: false}
	}
	return sql.NullString{String: val, Valid: true}
}
