// Package holdings provides the top-holdings disclosure of a fund and the
// holdings-based estimate built on it.
package holdings

import (
	"context"
	"fmt"
	"time"

	"github.com/aristath/fundnav/internal/cache"
	"github.com/aristath/fundnav/internal/clientdata"
	"github.com/aristath/fundnav/internal/domain"
	"github.com/rs/zerolog"
	"golang.org/x/sync/singleflight"
)

// Upstream fetches one year's latest disclosure; (nil, nil) when the year has none
type Upstream interface {
	FetchHoldings(ctx context.Context, id domain.FundID, year int) (*domain.HoldingsSnapshot, error)
}

// Service resolves holdings through memory, the persistent cache and the upstream, in that order
type Service struct {
	upstream Upstream
	repo     *clientdata.Repository
	memory   *cache.Namespace[domain.FundID, *domain.HoldingsSnapshot]
	group    singleflight.Group
	timeout  time.Duration
	now      func() time.Time
	loc      *time.Location
	log      zerolog.Logger
}

// NewService creates a holdings service. repo may be nil (memory only).
func NewService(upstream Upstream, repo *clientdata.Repository, store *cache.Store, timeout time.Duration, loc *time.Location, log zerolog.Logger) *Service {
	if timeout <= 0 {
		timeout = 4 * time.Second
	}
	if loc == nil {
		loc = time.UTC
	}
	return &Service{
		upstream: upstream,
		repo:     repo,
		memory:   cache.NewNamespace[domain.FundID, *domain.HoldingsSnapshot](store, cache.NamespaceHoldings, cache.TTLHoldings),
		timeout:  timeout,
		now:      time.Now,
		loc:      loc,
		log:      log.With().Str("component", "holdings").Logger(),
	}
}

// Get returns the latest disclosed top holdings of a fund.
// Concurrent misses for the same fund share one upstream fetch.
func (s *Service) Get(ctx context.Context, id domain.FundID) (*domain.HoldingsSnapshot, error) {
	if snapshot, ok := s.memory.Get(id, cache.TTLHoldings); ok {
		return snapshot, nil
	}

	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("%w: holdings %s: %v", domain.ErrProviderUnavailable, id, err)
	}

	// The shared load is bounded by s.timeout, not by whoever asked first
	ch := s.group.DoChan(string(id), func() (interface{}, error) {
		return s.load(context.WithoutCancel(ctx), id)
	})

	select {
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		return res.Val.(*domain.HoldingsSnapshot), nil
	case <-ctx.Done():
		return nil, fmt.Errorf("%w: holdings %s: %v", domain.ErrProviderUnavailable, id, ctx.Err())
	}
}

func (s *Service) load(ctx context.Context, id domain.FundID) (*domain.HoldingsSnapshot, error) {
	if s.repo != nil {
		var snapshot domain.HoldingsSnapshot
		found, err := s.repo.GetIfFresh(clientdata.TableFundHoldings, string(id), &snapshot)
		if err != nil {
			s.log.Warn().Err(err).Str("fund", string(id)).Msg("Failed to read cached holdings")
		} else if found {
			s.memory.Set(id, &snapshot)
			return &snapshot, nil
		}
	}

	snapshot, err := s.fetch(ctx, id)
	if err == nil {
		s.memory.Set(id, snapshot)
		if s.repo != nil {
			if err := s.repo.Store(clientdata.TableFundHoldings, string(id), snapshot, clientdata.TTLFundHoldings); err != nil {
				s.log.Warn().Err(err).Str("fund", string(id)).Msg("Failed to persist holdings")
			}
		}
		return snapshot, nil
	}

	if s.repo != nil {
		var stale domain.HoldingsSnapshot
		if found, _ := s.repo.Get(clientdata.TableFundHoldings, string(id), &stale); found {
			s.log.Debug().Err(err).Str("fund", string(id)).Str("period", stale.Period).Msg("Serving stale holdings")
			return &stale, nil
		}
	}

	return nil, err
}

// fetch tries the current year's disclosures, then the previous year's
func (s *Service) fetch(ctx context.Context, id domain.FundID) (*domain.HoldingsSnapshot, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	year := s.now().In(s.loc).Year()
	for _, y := range []int{year, year - 1} {
		snapshot, err := s.upstream.FetchHoldings(ctx, id, y)
		if err != nil {
			return nil, fmt.Errorf("%w: holdings %s: %v", domain.ErrProviderUnavailable, id, err)
		}
		if snapshot != nil && len(snapshot.Entries) > 0 {
			return snapshot, nil
		}
	}

	// Funds without equity disclosures (money market, most bond funds) are cached as empty
	return &domain.HoldingsSnapshot{FundID: id, Entries: []domain.HoldingEntry{}}, nil
}
