package directory

import (
	"context"
	"time"

	"github.com/rs/zerolog"
)

// RefreshJob reloads the fund directory ahead of its expiry so searches never wait on the upstream
type RefreshJob struct {
	service *Service
	log     zerolog.Logger
}

// NewRefreshJob creates a new directory refresh job
func NewRefreshJob(service *Service, log zerolog.Logger) *RefreshJob {
	return &RefreshJob{
		service: service,
		log:     log.With().Str("job", "directory_refresh").Logger(),
	}
}

// Run executes the refresh
func (j *RefreshJob) Run() error {
	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	n, err := j.service.Refresh(ctx)
	if err != nil {
		j.log.Warn().Err(err).Msg("Directory refresh failed")
		return err
	}
	j.log.Debug().Int("funds", n).Msg("Directory refreshed")
	return nil
}

// Name returns the job name for scheduling and logging
func (j *RefreshJob) Name() string {
	return "directory_refresh"
}
