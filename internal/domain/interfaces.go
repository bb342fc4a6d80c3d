package domain

import "context"

// OfficialFeed fetches the vendor's intraday estimate for a fund.
// Any failure is reported as an error wrapping ErrProviderUnavailable.
type OfficialFeed interface {
	Fetch(ctx context.Context, id FundID) (*OfficialEstimate, error)
}

// HistoryProvider returns confirmed NAV points ordered oldest first
type HistoryProvider interface {
	Series(ctx context.Context, id FundID) ([]NAVPoint, error)
}

// HoldingsProvider returns the latest disclosed top holdings of a fund
type HoldingsProvider interface {
	Get(ctx context.Context, id FundID) (*HoldingsSnapshot, error)
}

// QuoteSource fetches one chunk of live quotes from upstream.
// Instruments the upstream does not know are simply absent from the result.
type QuoteSource interface {
	FetchQuotes(ctx context.Context, ids []string) (map[string]Quote, error)
}

// NameLookup resolves a fund's display name without touching the estimate feed
type NameLookup interface {
	Name(ctx context.Context, id FundID) (string, bool)
}
