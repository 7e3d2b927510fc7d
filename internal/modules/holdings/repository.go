// Package holdings stores the ticker/share positions that make up a user's
// portfolio.
package holdings

import (
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/rainmaker/riskd/internal/domain"
)

// Repository handles holdings database operations
type Repository struct {
	db  *sql.DB // profile.db
	log zerolog.Logger
}

// NewRepository creates a new holdings repository
func NewRepository(db *sql.DB, log zerolog.Logger) *Repository {
	return &Repository{
		db:  db,
		log: log.With().Str("repo", "holdings").Logger(),
	}
}

// GetByUserID returns all holdings for a user, ordered by ticker for
// deterministic downstream processing.
func (r *Repository) GetByUserID(userID int64) ([]domain.Holding, error) {
	query := `SELECT user_id, ticker, shares FROM holdings
		WHERE user_id = ? ORDER BY ticker ASC`

	rows, err := r.db.Query(query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to query holdings: %w", err)
	}
	defer rows.Close()

	var holdings []domain.Holding
	for rows.Next() {
		var h domain.Holding
		if err := rows.Scan(&h.UserID, &h.Ticker, &h.Shares); err != nil {
			return nil, fmt.Errorf("failed to scan holding: %w", err)
		}
		holdings = append(holdings, h)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating holdings: %w", err)
	}

	return holdings, nil
}

// Upsert inserts or updates a holding. Shares must be >= 0; a zero-share
// holding is kept (it simply carries no weight).
func (r *Repository) Upsert(h domain.Holding) error {
	h.Ticker = strings.ToUpper(strings.TrimSpace(h.Ticker))
	if h.Ticker == "" {
		return fmt.Errorf("ticker is required for holding upsert")
	}
	if h.Shares < 0 {
		return fmt.Errorf("shares must be >= 0, got %g", h.Shares)
	}

	tx, err := r.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	query := `
		INSERT OR REPLACE INTO holdings (user_id, ticker, shares, updated_at)
		VALUES (?, ?, ?, ?)
	`

	_, err = tx.Exec(query, h.UserID, h.Ticker, h.Shares, time.Now().Unix())
	if err != nil {
		return fmt.Errorf("failed to upsert holding: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	r.log.Info().Int64("user_id", h.UserID).Str("ticker", h.Ticker).
		Float64("shares", h.Shares).Msg("Holding upserted")
	return nil
}

// Delete removes a holding by ticker
func (r *Repository) Delete(userID int64, ticker string) error {
	ticker = strings.ToUpper(strings.TrimSpace(ticker))

	tx, err := r.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	result, err := tx.Exec("DELETE FROM holdings WHERE user_id = ? AND ticker = ?", userID, ticker)
	if err != nil {
		return fmt.Errorf("failed to delete holding: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	rowsAffected, _ := result.RowsAffected()
	r.log.Info().Int64("user_id", userID).Str("ticker", ticker).
		Int64("rows_affected", rowsAffected).Msg("Holding deleted")
	return nil
}
