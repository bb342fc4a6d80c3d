package di

import (
	"fmt"

	"github.com/aristath/fundnav/internal/cache"
	"github.com/aristath/fundnav/internal/clientdata"
	"github.com/aristath/fundnav/internal/config"
	"github.com/aristath/fundnav/internal/modules/directory"
	"github.com/aristath/fundnav/internal/reliability"
	"github.com/aristath/fundnav/internal/scheduler"
	"github.com/rs/zerolog"
)

// Job schedules (seconds field first)
const (
	scheduleCacheSweep        = "@every 1m"
	scheduleClientDataCleanup = "0 0 * * * *"
	scheduleMaintenance       = "0 30 3 * * *"
	scheduleDirectoryRefresh  = "0 0 8 * * *"
)

// RegisterJobs creates the scheduler and registers background jobs.
// The scheduler is not started.
func RegisterJobs(container *Container, cfg *config.Config, log zerolog.Logger) (*JobInstances, error) {
	sched := scheduler.New(log)
	jobs := &JobInstances{
		CacheSweep:        cache.NewSweepJob(container.Cache, log),
		ClientDataCleanup: clientdata.NewCleanupJob(container.ClientDataRepo, log),
		Maintenance:       reliability.NewMaintenanceJob(container.ClientDataDB, cfg.DataDir, log),
		DirectoryRefresh:  directory.NewRefreshJob(container.DirectoryService, log),
	}

	registrations := []struct {
		schedule string
		job      scheduler.Job
	}{
		{scheduleCacheSweep, jobs.CacheSweep},
		{scheduleClientDataCleanup, jobs.ClientDataCleanup},
		{scheduleMaintenance, jobs.Maintenance},
		{scheduleDirectoryRefresh, jobs.DirectoryRefresh},
	}
	for _, reg := range registrations {
		if err := sched.AddJob(reg.schedule, reg.job); err != nil {
			return nil, fmt.Errorf("failed to register %s: %w", reg.job.Name(), err)
		}
	}

	container.Scheduler = sched
	return jobs, nil
}
