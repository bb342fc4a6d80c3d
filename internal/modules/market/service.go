// Package market provides the index overview shown next to fund estimates.
package market

import (
	"context"
	"time"

	"github.com/aristath/fundnav/internal/cache"
	"github.com/aristath/fundnav/internal/domain"
	"github.com/aristath/fundnav/internal/utils"
)

// DefaultIndices are the Shanghai Composite and the Shenzhen Component
var DefaultIndices = []string{"1.000001", "0.399001"}

// QuoteBatcher is the subset of the quote batcher the overview needs
type QuoteBatcher interface {
	Quotes(ctx context.Context, ids []string, ttl time.Duration) map[string]domain.Quote
}

// Service builds market overviews
type Service struct {
	quotes QuoteBatcher
}

// NewService creates a market overview service
func NewService(quotes QuoteBatcher) *Service {
	return &Service{quotes: quotes}
}

// Overview returns quotes for codes in request order, skipping unquoted ones.
// Empty codes selects DefaultIndices.
func (s *Service) Overview(ctx context.Context, codes []string) []domain.Quote {
	if len(codes) == 0 {
		codes = DefaultIndices
	}

	quotes := s.quotes.Quotes(ctx, codes, cache.TTLMarketQuote)
	overview := make([]domain.Quote, 0, len(codes))
	seen := make(map[string]bool, len(codes))
	for _, code := range codes {
		if seen[code] {
			continue
		}
		seen[code] = true
		if q, ok := quotes[code]; ok {
			overview = append(overview, q)
		}
	}
	return overview
}

// ParseCodes splits a comma-separated query parameter
func ParseCodes(raw string) []string {
	return utils.ParseCSV(raw)
}
