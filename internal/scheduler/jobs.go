package scheduler

import (
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/rainmaker/riskd/internal/database"
	"github.com/rainmaker/riskd/internal/modules/snapshots"
)

// CheckpointJob forces WAL checkpoints on the application databases so the
// write-ahead logs stay bounded on long-running deployments.
type CheckpointJob struct {
	databases []*database.DB
	log       zerolog.Logger
}

// NewCheckpointJob creates a WAL checkpoint job over the given databases
func NewCheckpointJob(databases []*database.DB, log zerolog.Logger) *CheckpointJob {
	return &CheckpointJob{
		databases: databases,
		log:       log.With().Str("job", "wal_checkpoint").Logger(),
	}
}

// Name returns the job name
func (j *CheckpointJob) Name() string {
	return "wal_checkpoint"
}

// Run checkpoints every database, continuing past individual failures
func (j *CheckpointJob) Run() error {
	var firstErr error
	for _, db := range j.databases {
		if err := db.Checkpoint(); err != nil {
			j.log.Error().Err(err).Str("database", db.Name()).Msg("Checkpoint failed")
			if firstErr == nil {
				firstErr = fmt.Errorf("checkpoint %s: %w", db.Name(), err)
			}
			continue
		}
		j.log.Debug().Str("database", db.Name()).Msg("Checkpoint completed")
	}
	return firstErr
}

// SnapshotCleanupJob prunes report snapshots past the retention window.
type SnapshotCleanupJob struct {
	repo   *snapshots.Repository
	maxAge time.Duration
	log    zerolog.Logger
}

// NewSnapshotCleanupJob creates a snapshot retention cleanup job
func NewSnapshotCleanupJob(repo *snapshots.Repository, maxAge time.Duration, log zerolog.Logger) *SnapshotCleanupJob {
	return &SnapshotCleanupJob{
		repo:   repo,
		maxAge: maxAge,
		log:    log.With().Str("job", "snapshot_cleanup").Logger(),
	}
}

// Name returns the job name
func (j *SnapshotCleanupJob) Name() string {
	return "snapshot_cleanup"
}

// Run deletes snapshots older than the retention window
func (j *SnapshotCleanupJob) Run() error {
	deleted, err := j.repo.DeleteOlderThan(j.maxAge)
	if err != nil {
		return err
	}
	j.log.Debug().Int64("deleted", deleted).Msg("Snapshot cleanup completed")
	return nil
}
