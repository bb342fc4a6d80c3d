// Package directory provides the searchable list of all open-end funds.
package directory

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/aristath/fundnav/internal/cache"
	"github.com/aristath/fundnav/internal/clientdata"
	"github.com/aristath/fundnav/internal/domain"
	"github.com/rs/zerolog"
	"golang.org/x/sync/singleflight"
)

const (
	// MaxResults caps a search response
	MaxResults = 30

	catalogKey = "all"
)

// Upstream fetches the full directory
type Upstream interface {
	FetchDirectory(ctx context.Context) ([]domain.FundInfo, error)
}

type catalog struct {
	funds  []domain.FundInfo
	byCode map[string]int
}

func newCatalog(funds []domain.FundInfo) *catalog {
	c := &catalog{funds: funds, byCode: make(map[string]int, len(funds))}
	for i, f := range funds {
		c.byCode[f.Code] = i
	}
	return c
}

// Service searches the fund directory
type Service struct {
	upstream Upstream
	repo     *clientdata.Repository
	memory   *cache.Namespace[string, *catalog]
	group    singleflight.Group
	timeout  time.Duration
	log      zerolog.Logger
}

// NewService creates a directory service. repo may be nil (memory only).
func NewService(upstream Upstream, repo *clientdata.Repository, store *cache.Store, timeout time.Duration, log zerolog.Logger) *Service {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Service{
		upstream: upstream,
		repo:     repo,
		memory:   cache.NewNamespace[string, *catalog](store, cache.NamespaceDirectory, cache.TTLDirectory),
		timeout:  timeout,
		log:      log.With().Str("component", "directory").Logger(),
	}
}

// Search returns up to MaxResults funds whose code, name or pinyin abbreviation contains key.
// Matching is on the upper-cased key, so pinyin is case-insensitive.
func (s *Service) Search(ctx context.Context, key string) ([]domain.FundInfo, error) {
	key = strings.ToUpper(strings.TrimSpace(key))
	if key == "" {
		return []domain.FundInfo{}, nil
	}

	c, err := s.catalog(ctx)
	if err != nil {
		return nil, err
	}

	results := make([]domain.FundInfo, 0, MaxResults)
	for _, f := range c.funds {
		if strings.Contains(f.Code, key) || strings.Contains(f.Name, key) || strings.Contains(f.Pinyin, key) {
			results = append(results, f)
			if len(results) >= MaxResults {
				break
			}
		}
	}
	return results, nil
}

// Name returns the display name of a fund from the cached directory.
// It never calls the upstream: estimates must not wait on a multi-megabyte download.
// The refresh job and the startup warm-up keep the cache filled.
func (s *Service) Name(_ context.Context, id domain.FundID) (string, bool) {
	c, ok := s.cached()
	if !ok {
		return "", false
	}
	i, ok := c.byCode[string(id)]
	if !ok {
		return "", false
	}
	return c.funds[i].Name, true
}

// Refresh reloads the directory from upstream regardless of cache state
func (s *Service) Refresh(ctx context.Context) (int, error) {
	c, err := s.fetch(ctx)
	if err != nil {
		return 0, err
	}
	return len(c.funds), nil
}

func (s *Service) catalog(ctx context.Context) (*catalog, error) {
	if c, ok := s.memory.Get(catalogKey, cache.TTLDirectory); ok {
		return c, nil
	}

	ch := s.group.DoChan(catalogKey, func() (interface{}, error) {
		if c, ok := s.persisted(false); ok {
			return c, nil
		}

		// Shared by every waiter; bounded by s.timeout, not by whoever asked first
		c, err := s.fetch(context.WithoutCancel(ctx))
		if err == nil {
			return c, nil
		}

		if c, ok := s.persisted(true); ok {
			s.log.Warn().Err(err).Int("funds", len(c.funds)).Msg("Serving stale directory")
			return c, nil
		}
		return nil, err
	})

	select {
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		return res.Val.(*catalog), nil
	case <-ctx.Done():
		return nil, fmt.Errorf("%w: directory: %v", domain.ErrProviderUnavailable, ctx.Err())
	}
}

// cached returns the in-memory catalog, loading it from SQLite (stale allowed) when absent
func (s *Service) cached() (*catalog, bool) {
	if c, ok := s.memory.Get(catalogKey, cache.TTLDirectory); ok {
		return c, true
	}
	return s.persisted(true)
}

// persisted loads the catalog from SQLite and memoizes it. Expired rows are read only when
// allowStale is set.
func (s *Service) persisted(allowStale bool) (*catalog, bool) {
	if s.repo == nil {
		return nil, false
	}

	var funds []domain.FundInfo
	read := s.repo.GetIfFresh
	if allowStale {
		read = s.repo.Get
	}
	found, err := read(clientdata.TableFundDirectory, catalogKey, &funds)
	if err != nil {
		s.log.Warn().Err(err).Msg("Failed to read cached directory")
		return nil, false
	}
	if !found {
		return nil, false
	}

	c := newCatalog(funds)
	s.memory.Set(catalogKey, c)
	return c, true
}

func (s *Service) fetch(ctx context.Context) (*catalog, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	funds, err := s.upstream.FetchDirectory(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: directory: %v", domain.ErrProviderUnavailable, err)
	}

	c := newCatalog(funds)
	s.memory.Set(catalogKey, c)
	if s.repo != nil {
		if err := s.repo.Store(clientdata.TableFundDirectory, catalogKey, funds, clientdata.TTLFundDirectory); err != nil {
			s.log.Warn().Err(err).Msg("Failed to persist directory")
		}
	}

	s.log.Info().Int("funds", len(funds)).Msg("Fund directory loaded")
	return c, nil
}
