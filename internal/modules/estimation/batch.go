package estimation

import (
	"context"
	"time"

	"github.com/aristath/fundnav/internal/domain"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
)

const (
	// DefaultConcurrency bounds how many funds are estimated at once
	DefaultConcurrency = 8
	// DefaultTimeout bounds a whole batch. It must stay below the HTTP server's write timeout.
	DefaultTimeout = 20 * time.Second
)

// Estimator produces one snapshot; it never fails
type Estimator interface {
	Estimate(ctx context.Context, id domain.FundID) domain.EstimateSnapshot
}

// BatchRecorder records batch sizes (metrics)
type BatchRecorder interface {
	RecordBatch(size int)
}

// BatchScheduler estimates many funds concurrently
type BatchScheduler struct {
	estimator   Estimator
	concurrency int
	timeout     time.Duration
	recorder    BatchRecorder
	log         zerolog.Logger
}

// NewBatchScheduler creates a batch scheduler. recorder may be nil.
// A non-positive timeout selects DefaultTimeout.
func NewBatchScheduler(estimator Estimator, concurrency int, timeout time.Duration, recorder BatchRecorder, log zerolog.Logger) *BatchScheduler {
	if concurrency <= 0 {
		concurrency = DefaultConcurrency
	}
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &BatchScheduler{
		estimator:   estimator,
		concurrency: concurrency,
		timeout:     timeout,
		recorder:    recorder,
		log:         log.With().Str("component", "batch_scheduler").Logger(),
	}
}

// Run returns one snapshot per id, in request order.
// A slow or failing fund only affects its own entry. Funds still waiting when the batch
// deadline passes run with an expired context, so they resolve from cache or degrade to STALE.
func (b *BatchScheduler) Run(ctx context.Context, ids []domain.FundID) []domain.EstimateSnapshot {
	results := make([]domain.EstimateSnapshot, len(ids))
	if len(ids) == 0 {
		return results
	}

	ctx, cancel := context.WithTimeout(ctx, b.timeout)
	defer cancel()

	batchID := uuid.New().String()
	log := b.log.With().Str("batch_id", batchID).Logger()
	start := time.Now()

	var g errgroup.Group
	g.SetLimit(b.concurrency)
	for i, id := range ids {
		i, id := i, id
		g.Go(func() error {
			results[i] = b.estimator.Estimate(ctx, id)
			return nil
		})
	}
	_ = g.Wait()

	if b.recorder != nil {
		b.recorder.RecordBatch(len(ids))
	}

	tiers := make(map[domain.SourceTier]int)
	for _, r := range results {
		tiers[r.SourceTier]++
	}
	log.Debug().
		Int("funds", len(ids)).
		Int("official", tiers[domain.TierOfficial]).
		Int("proxy", tiers[domain.TierProxy]).
		Int("holdings", tiers[domain.TierHoldings]).
		Int("stale", tiers[domain.TierStale]).
		Bool("deadline_exceeded", ctx.Err() != nil).
		Dur("elapsed", time.Since(start)).
		Msg("Batch estimated")

	return results
}
