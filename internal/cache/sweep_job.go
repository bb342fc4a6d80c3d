package cache

import "github.com/rs/zerolog"

// SweepJob evicts entries nobody has read since they went stale
type SweepJob struct {
	store *Store
	log   zerolog.Logger
}

// NewSweepJob creates a new cache sweep job
func NewSweepJob(store *Store, log zerolog.Logger) *SweepJob {
	return &SweepJob{
		store: store,
		log:   log.With().Str("job", "cache_sweep").Logger(),
	}
}

// Run executes the sweep
func (j *SweepJob) Run() error {
	if removed := j.store.Sweep(); removed > 0 {
		j.log.Debug().Int("removed", removed).Int("remaining", j.store.Len()).Msg("Swept expired cache entries")
	}
	return nil
}

// Name returns the job name for scheduling and logging
func (j *SweepJob) Name() string {
	return "cache_sweep"
}
