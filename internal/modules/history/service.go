// Package history provides the confirmed NAV series of a fund.
package history

import (
	"context"
	"fmt"
	"time"

	"github.com/aristath/fundnav/internal/cache"
	"github.com/aristath/fundnav/internal/clients/eastmoney"
	"github.com/aristath/fundnav/internal/domain"
	"github.com/rs/zerolog"
	"golang.org/x/sync/singleflight"
)

// Upstream fetches the full NAV series
type Upstream interface {
	FetchNAVHistory(ctx context.Context, id domain.FundID) (*eastmoney.NAVHistory, error)
}

// Service serves NAV series, cache-first
type Service struct {
	upstream Upstream
	cache    *cache.Namespace[domain.FundID, []domain.NAVPoint]
	group    singleflight.Group
	timeout  time.Duration
	log      zerolog.Logger
}

// NewService creates a history service
func NewService(upstream Upstream, store *cache.Store, timeout time.Duration, log zerolog.Logger) *Service {
	if timeout <= 0 {
		timeout = 4 * time.Second
	}
	return &Service{
		upstream: upstream,
		cache:    cache.NewNamespace[domain.FundID, []domain.NAVPoint](store, cache.NamespaceNAVHistory, cache.TTLNAVHistory),
		timeout:  timeout,
		log:      log.With().Str("component", "history").Logger(),
	}
}

// Series returns confirmed NAV points, oldest first.
// The returned slice is shared with the cache and must not be modified.
func (s *Service) Series(ctx context.Context, id domain.FundID) ([]domain.NAVPoint, error) {
	if points, ok := s.cache.Get(id, cache.TTLNAVHistory); ok {
		return points, nil
	}

	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("%w: history %s: %v", domain.ErrProviderUnavailable, id, err)
	}

	ch := s.group.DoChan(string(id), func() (interface{}, error) {
		// Shared by every waiter; bounded by s.timeout, not by whoever asked first
		ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.timeout)
		defer cancel()

		history, err := s.upstream.FetchNAVHistory(ctx, id)
		if err != nil {
			s.log.Debug().Err(err).Str("fund", string(id)).Msg("NAV history unavailable")
			return nil, fmt.Errorf("%w: history %s: %v", domain.ErrProviderUnavailable, id, err)
		}

		s.cache.Set(id, history.Points)
		return history.Points, nil
	})

	select {
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		return res.Val.([]domain.NAVPoint), nil
	case <-ctx.Done():
		return nil, fmt.Errorf("%w: history %s: %v", domain.ErrProviderUnavailable, id, ctx.Err())
	}
}

// Latest returns the newest confirmed point and the one before it, if any
func Latest(points []domain.NAVPoint) (last, prev *domain.NAVPoint) {
	n := len(points)
	if n == 0 {
		return nil, nil
	}
	last = &points[n-1]
	if n > 1 {
		prev = &points[n-2]
	}
	return last, prev
}

// Tail returns at most the n newest points
func Tail(points []domain.NAVPoint, n int) []domain.NAVPoint {
	if len(points) <= n {
		return points
	}
	return points[len(points)-n:]
}
