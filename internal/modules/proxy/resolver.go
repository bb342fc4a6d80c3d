package proxy

import (
	"strings"
	"unicode/utf8"

	"github.com/aristath/fundnav/internal/domain"
)

// exchangeTradedPrefixes mark fund codes that are themselves listed (ETFs, LOFs)
var exchangeTradedPrefixes = []string{"51", "159", "56", "58"}

// Resolver maps funds to proxy instruments. It is read-only after construction.
type Resolver struct {
	table Table
}

// NewResolver creates a resolver over table
func NewResolver(table Table) *Resolver {
	return &Resolver{table: table}
}

// Resolve returns the proxy instrument for a fund.
// A listed fund is its own proxy. Otherwise the longest table keyword contained in the
// name wins, ties going to the earlier entry. No match returns domain.ErrNoProxyMatch.
func (r *Resolver) Resolve(name string, id domain.FundID) (string, error) {
	if IsExchangeTraded(string(id)) {
		return string(id), nil
	}

	best := -1
	bestLen := 0
	for i, m := range r.table {
		n := utf8.RuneCountInString(m.Keyword)
		if n > bestLen && strings.Contains(name, m.Keyword) {
			best, bestLen = i, n
		}
	}
	if best < 0 {
		return "", domain.ErrNoProxyMatch
	}
	return r.table[best].InstrumentID, nil
}

// Table returns the loaded table
func (r *Resolver) Table() Table {
	return r.table
}

// IsExchangeTraded reports whether a six-digit code belongs to a listed fund
func IsExchangeTraded(code string) bool {
	if len(code) != 6 {
		return false
	}
	for _, p := range exchangeTradedPrefixes {
		if strings.HasPrefix(code, p) {
			return true
		}
	}
	return false
}
