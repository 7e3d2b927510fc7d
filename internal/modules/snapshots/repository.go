// Package snapshots persists generated risk reports as an audit trail.
// Snapshots are write-once records of what the pipeline produced at a point
// in time; analyses are always recomputed, never served from here.
package snapshots

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/vmihailenco/msgpack/v5"

	"github.com/rainmaker/riskd/internal/domain"
)

// Meta describes a stored snapshot without its payload.
type Meta struct {
	ID        string `json:"id"`
	UserID    int64  `json:"user_id"`
	RiskScore string `json:"risk_score"`
	CreatedAt int64  `json:"created_at"` // Unix timestamp
}

// Repository handles report snapshot database operations
type Repository struct {
	db  *sql.DB // cache.db
	log zerolog.Logger
}

// NewRepository creates a new snapshot repository
func NewRepository(db *sql.DB, log zerolog.Logger) *Repository {
	return &Repository{
		db:  db,
		log: log.With().Str("repo", "snapshots").Logger(),
	}
}

// Save stores a msgpack-encoded report and returns the snapshot ID.
func (r *Repository) Save(userID int64, report *domain.RiskReport) (string, error) {
	if report == nil {
		return "", fmt.Errorf("report is nil")
	}

	payload, err := msgpack.Marshal(report)
	if err != nil {
		return "", fmt.Errorf("failed to encode report: %w", err)
	}

	id := uuid.NewString()
	_, err = r.db.Exec(
		`INSERT INTO report_snapshots (id, user_id, risk_score, report, created_at) VALUES (?, ?, ?, ?, ?)`,
		id, userID, report.RiskMetrics.RiskScore, payload, time.Now().Unix(),
	)
	if err != nil {
		return "", fmt.Errorf("failed to insert snapshot: %w", err)
	}

	r.log.Debug().Str("id", id).Int64("user_id", userID).
		Str("risk_score", report.RiskMetrics.RiskScore).Msg("Report snapshot saved")
	return id, nil
}

// ListByUser returns snapshot metadata for a user, newest first.
func (r *Repository) ListByUser(userID int64, limit int) ([]Meta, error) {
	if limit <= 0 {
		limit = 50
	}

	rows, err := r.db.Query(
		`SELECT id, user_id, risk_score, created_at FROM report_snapshots
		 WHERE user_id = ? ORDER BY created_at DESC LIMIT ?`,
		userID, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query snapshots: %w", err)
	}
	defer rows.Close()

	var metas []Meta
	for rows.Next() {
		var m Meta
		if err := rows.Scan(&m.ID, &m.UserID, &m.RiskScore, &m.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan snapshot: %w", err)
		}
		metas = append(metas, m)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating snapshots: %w", err)
	}

	return metas, nil
}

// Get returns a stored report by snapshot ID, or nil when not found.
func (r *Repository) Get(id string) (*Meta, *domain.RiskReport, error) {
	var m Meta
	var payload []byte

	err := r.db.QueryRow(
		`SELECT id, user_id, risk_score, report, created_at FROM report_snapshots WHERE id = ?`,
		id,
	).Scan(&m.ID, &m.UserID, &m.RiskScore, &payload, &m.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, nil, nil
	}
	if err != nil {
		return nil, nil, fmt.Errorf("failed to query snapshot: %w", err)
	}

	var report domain.RiskReport
	if err := msgpack.Unmarshal(payload, &report); err != nil {
		return nil, nil, fmt.Errorf("failed to decode snapshot %s: %w", id, err)
	}

	return &m, &report, nil
}

// DeleteOlderThan removes snapshots created before the cutoff and returns
// the number of rows deleted. Used by the retention cleanup job.
func (r *Repository) DeleteOlderThan(maxAge time.Duration) (int64, error) {
	cutoff := time.Now().Add(-maxAge).Unix()

	result, err := r.db.Exec(`DELETE FROM report_snapshots WHERE created_at < ?`, cutoff)
	if err != nil {
		return 0, fmt.Errorf("failed to delete old snapshots: %w", err)
	}

	deleted, _ := result.RowsAffected()
	if deleted > 0 {
		r.log.Info().Int64("deleted", deleted).Msg("Old report snapshots pruned")
	}
	return deleted, nil
}
