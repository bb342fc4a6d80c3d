// Package quotes provides the QuoteBatcher: one cache-aware entry point for live instrument
// quotes, used by the proxy tier, the holdings tier and the market overview.
package quotes

import (
	"context"
	"time"

	"github.com/aristath/fundnav/internal/cache"
	"github.com/aristath/fundnav/internal/domain"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
)

const (
	defaultChunkSize   = 40
	defaultConcurrency = 4
	defaultTimeout     = 3 * time.Second
)

// Config holds batcher configuration
type Config struct {
	ChunkSize   int
	Concurrency int // chunks in flight
	Timeout     time.Duration
}

// Batcher fetches quotes for many instruments with as few upstream requests as possible
type Batcher struct {
	source domain.QuoteSource
	cache  *cache.Namespace[string, domain.Quote]
	cfg    Config
	log    zerolog.Logger
}

// NewBatcher creates a new quote batcher
func NewBatcher(source domain.QuoteSource, store *cache.Store, cfg Config, log zerolog.Logger) *Batcher {
	if cfg.ChunkSize <= 0 {
		cfg.ChunkSize = defaultChunkSize
	}
	if cfg.Concurrency <= 0 {
		cfg.Concurrency = defaultConcurrency
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaultTimeout
	}
	return &Batcher{
		source: source,
		cache:  cache.NewNamespace[string, domain.Quote](store, cache.NamespaceQuotes, cache.MaxQuoteAge),
		cfg:    cfg,
		log:    log.With().Str("component", "quote_batcher").Logger(),
	}
}

// Batch returns the same-day change percent per instrument.
// Instruments without a quote are absent; the map is never nil.
func (b *Batcher) Batch(ctx context.Context, ids []string, ttl time.Duration) map[string]float64 {
	quotes := b.Quotes(ctx, ids, ttl)
	changes := make(map[string]float64, len(quotes))
	for id, q := range quotes {
		changes[id] = q.ChangePercent
	}
	return changes
}

// Quotes returns full quotes, serving entries younger than ttl from the cache
func (b *Batcher) Quotes(ctx context.Context, ids []string, ttl time.Duration) map[string]domain.Quote {
	result := make(map[string]domain.Quote, len(ids))

	seen := make(map[string]bool, len(ids))
	var missing []string
	for _, id := range ids {
		if id == "" || seen[id] {
			continue
		}
		seen[id] = true

		if q, ok := b.cache.Get(id, ttl); ok {
			result[id] = q
			continue
		}
		missing = append(missing, id)
	}

	if len(missing) == 0 {
		return result
	}

	chunks := chunk(missing, b.cfg.ChunkSize)
	fetched := make([]map[string]domain.Quote, len(chunks))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(b.cfg.Concurrency)
	for i, ids := range chunks {
		i, ids := i, ids
		g.Go(func() error {
			cctx, cancel := context.WithTimeout(gctx, b.cfg.Timeout)
			defer cancel()

			quotes, err := b.source.FetchQuotes(cctx, ids)
			if err != nil {
				// A failed chunk only loses its own instruments
				b.log.Debug().Err(err).Int("instruments", len(ids)).Msg("Quote chunk failed")
				return nil
			}
			fetched[i] = quotes
			return nil
		})
	}
	_ = g.Wait()

	for _, quotes := range fetched {
		for id, q := range quotes {
			if !seen[id] {
				continue
			}
			b.cache.Set(id, q)
			result[id] = q
		}
	}

	return result
}

func chunk(ids []string, size int) [][]string {
	chunks := make([][]string, 0, (len(ids)+size-1)/size)
	for start := 0; start < len(ids); start += size {
		end := start + size
		if end > len(ids) {
			end = len(ids)
		}
		chunks = append(chunks, ids[start:end])
	}
	return chunks
}
