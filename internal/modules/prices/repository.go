// Package prices provides access to historical daily closes. It is the
// price feed behind the returns engine: tickers without stored data are
// silently omitted from query results, which is why downstream weight
// vectors are always re-keyed to the tickers that actually survive.
package prices

import (
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/rainmaker/riskd/internal/domain"
)

// Repository handles daily price database operations
type Repository struct {
	db  *sql.DB // history.db
	log zerolog.Logger
}

// NewRepository creates a new price repository
func NewRepository(db *sql.DB, log zerolog.Logger) *Repository {
	return &Repository{
		db:  db,
		log: log.With().Str("repo", "prices").Logger(),
	}
}

// GetDailyCloses returns all stored closes for the given tickers, ordered by
// date then ticker. Tickers with no stored prices are simply absent from the
// result.
func (r *Repository) GetDailyCloses(tickers []string) ([]domain.PricePoint, error) {
	if len(tickers) == 0 {
		return nil, nil
	}

	placeholders := strings.Repeat("?,", len(tickers))
	placeholders = placeholders[:len(placeholders)-1]

	query := fmt.Sprintf(`SELECT ticker, date, close FROM daily_prices
		WHERE ticker IN (%s) ORDER BY date ASC, ticker ASC`, placeholders)

	args := make([]interface{}, len(tickers))
	for i, t := range tickers {
		args[i] = strings.ToUpper(strings.TrimSpace(t))
	}

	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query daily prices: %w", err)
	}
	defer rows.Close()

	var points []domain.PricePoint
	for rows.Next() {
		var p domain.PricePoint
		if err := rows.Scan(&p.Ticker, &p.Date, &p.Close); err != nil {
			return nil, fmt.Errorf("failed to scan price point: %w", err)
		}
		points = append(points, p)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating daily prices: %w", err)
	}

	return points, nil
}

// GetLatestCloses returns the most recent close per ticker. Tickers with no
// stored prices are absent from the map.
func (r *Repository) GetLatestCloses(tickers []string) (map[string]float64, error) {
	if len(tickers) == 0 {
		return map[string]float64{}, nil
	}

	placeholders := strings.Repeat("?,", len(tickers))
	placeholders = placeholders[:len(placeholders)-1]

	// Correlated max(date) per ticker keeps this a single round trip
	query := fmt.Sprintf(`SELECT p.ticker, p.close FROM daily_prices p
		WHERE p.ticker IN (%s)
		AND p.date = (SELECT MAX(date) FROM daily_prices WHERE ticker = p.ticker)`, placeholders)

	args := make([]interface{}, len(tickers))
	for i, t := range tickers {
		args[i] = strings.ToUpper(strings.TrimSpace(t))
	}

	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query latest closes: %w", err)
	}
	defer rows.Close()

	latest := make(map[string]float64)
	for rows.Next() {
		var ticker string
		var close float64
		if err := rows.Scan(&ticker, &close); err != nil {
			return nil, fmt.Errorf("failed to scan latest close: %w", err)
		}
		latest[ticker] = close
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating latest closes: %w", err)
	}

	return latest, nil
}

// UpsertBatch inserts or replaces a batch of daily closes in one transaction.
func (r *Repository) UpsertBatch(points []domain.PricePoint) error {
	if len(points) == 0 {
		return nil
	}

	tx, err := r.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	stmt, err := tx.Prepare(`INSERT OR REPLACE INTO daily_prices (ticker, date, close) VALUES (?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("failed to prepare price upsert: %w", err)
	}
	defer stmt.Close()

	for _, p := range points {
		ticker := strings.ToUpper(strings.TrimSpace(p.Ticker))
		if ticker == "" {
			return fmt.Errorf("price point missing ticker")
		}
		if p.Close <= 0 {
			return fmt.Errorf("close must be positive for %s on %s, got %g", ticker, p.Date, p.Close)
		}
		if _, err := time.Parse("2006-01-02", p.Date); err != nil {
			return fmt.Errorf("invalid date %q for %s: %w", p.Date, ticker, err)
		}
		if _, err := stmt.Exec(ticker, p.Date, p.Close); err != nil {
			return fmt.Errorf("failed to upsert price for %s: %w", ticker, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	r.log.Info().Int("count", len(points)).Msg("Daily prices upserted")
	return nil
}

// GetByTicker returns the full stored series for one ticker, oldest first.
func (r *Repository) GetByTicker(ticker string) ([]domain.PricePoint, error) {
	ticker = strings.ToUpper(strings.TrimSpace(ticker))

	rows, err := r.db.Query(`SELECT ticker, date, close FROM daily_prices
		WHERE ticker = ? ORDER BY date ASC`, ticker)
	if err != nil {
		return nil, fmt.Errorf("failed to query prices for %s: %w", ticker, err)
	}
	defer rows.Close()

	var points []domain.PricePoint
	for rows.Next() {
		var p domain.PricePoint
		if err := rows.Scan(&p.Ticker, &p.Date, &p.Close); err != nil {
			return nil, fmt.Errorf("failed to scan price point: %w", err)
		}
		points = append(points, p)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating prices: %w", err)
	}

	return points, nil
}
