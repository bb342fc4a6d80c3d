// Package reliability keeps the local cache database healthy.
package reliability

import (
	"context"
	"fmt"
	"time"

	"github.com/aristath/fundnav/internal/database"
	"github.com/rs/zerolog"
	"github.com/shirou/gopsutil/v3/disk"
)

const (
	// Below this the job fails
	criticalFreeBytes = 100 << 20
	// Below this the job warns
	lowFreeBytes = 1 << 30
)

// MaintenanceJob checks and compacts client_data.db (daily)
type MaintenanceJob struct {
	db        *database.DB
	dataDir   string
	diskFree  func(path string) (uint64, error)
	checkTime time.Duration
	log       zerolog.Logger
}

// NewMaintenanceJob creates a new maintenance job
func NewMaintenanceJob(db *database.DB, dataDir string, log zerolog.Logger) *MaintenanceJob {
	return &MaintenanceJob{
		db:        db,
		dataDir:   dataDir,
		diskFree:  freeBytes,
		checkTime: 30 * time.Second,
		log:       log.With().Str("job", "client_data_maintenance").Logger(),
	}
}

// Run executes the maintenance job
func (j *MaintenanceJob) Run() error {
	start := time.Now()

	// Step 1: Integrity check
	ctx, cancel := context.WithTimeout(context.Background(), j.checkTime)
	defer cancel()
	if err := j.db.IntegrityCheck(ctx); err != nil {
		j.log.Error().Err(err).Str("database", j.db.Name()).Msg("Integrity check failed")
		return err
	}

	// Step 2: WAL checkpoint, not fatal
	if err := j.db.WALCheckpoint("TRUNCATE"); err != nil {
		j.log.Warn().Err(err).Str("database", j.db.Name()).Msg("WAL checkpoint failed")
	}

	// Step 3: Disk space
	if err := j.checkDiskSpace(); err != nil {
		return err
	}

	j.log.Info().Dur("duration_ms", time.Since(start)).Msg("Maintenance completed")
	return nil
}

// Name returns the job name for scheduler
func (j *MaintenanceJob) Name() string {
	return "client_data_maintenance"
}

func (j *MaintenanceJob) checkDiskSpace() error {
	free, err := j.diskFree(j.dataDir)
	if err != nil {
		j.log.Warn().Err(err).Str("dir", j.dataDir).Msg("Failed to read disk usage")
		return nil
	}

	freeMB := float64(free) / 1024 / 1024
	switch {
	case free < criticalFreeBytes:
		j.log.Error().Float64("free_mb", freeMB).Msg("Insufficient disk space")
		return fmt.Errorf("only %.0f MB free in %s", freeMB, j.dataDir)
	case free < lowFreeBytes:
		j.log.Warn().Float64("free_mb", freeMB).Msg("Disk space running low")
	default:
		j.log.Debug().Float64("free_mb", freeMB).Msg("Disk space check")
	}
	return nil
}

func freeBytes(path string) (uint64, error) {
	usage, err := disk.Usage(path)
	if err != nil {
		return 0, err
	}
	return usage.Free, nil
}
