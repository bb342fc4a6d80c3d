package clientdata

import (
	"fmt"
	"time"

	"github.com/rs/zerolog"
)

// CleanupJob drops expired holdings disclosures and directory snapshots.
// Stale rows are kept until then because the services fall back to them when the upstream is down.
type CleanupJob struct {
	repo *Repository
	log  zerolog.Logger
}

// NewCleanupJob creates a new client data cleanup job
func NewCleanupJob(repo *Repository, log zerolog.Logger) *CleanupJob {
	return &CleanupJob{
		repo: repo,
		log:  log.With().Str("job", "client_data_cleanup").Logger(),
	}
}

// Run deletes expired rows from every client data table
func (j *CleanupJob) Run() error {
	start := time.Now()

	deleted, err := j.repo.DeleteAllExpired()
	if err != nil {
		return fmt.Errorf("client data cleanup: %w", err)
	}

	counts := zerolog.Dict()
	var total int64
	for _, table := range AllTables {
		counts.Int64(table, deleted[table])
		total += deleted[table]
	}
	if total == 0 {
		return nil
	}

	j.log.Info().
		Dict("deleted", counts).
		Int64("total", total).
		Dur("elapsed", time.Since(start)).
		Msg("Expired client data removed")
	return nil
}

// Name returns the job name for scheduling and logging
func (j *CleanupJob) Name() string {
	return "client_data_cleanup"
}
