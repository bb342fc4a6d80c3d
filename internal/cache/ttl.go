package cache

import "time"

// Namespace names
const (
	NamespaceOfficial   = "official"
	NamespaceHoldings   = "holdings"
	NamespaceDirectory  = "directory"
	NamespaceNAVHistory = "nav_history"
	NamespaceQuotes     = "quotes"
)

// TTL classes. The same quote namespace is read with different windows per calling tier.
const (
	TTLOfficial     = 60 * time.Second
	TTLHoldings     = 24 * time.Hour
	TTLDirectory    = 24 * time.Hour
	TTLNAVHistory   = 5 * time.Minute
	TTLProxyQuote   = 30 * time.Second
	TTLHoldingQuote = 120 * time.Second
	TTLMarketQuote  = 30 * time.Second

	// MaxQuoteAge bounds how long any quote may sit in the store
	MaxQuoteAge = 300 * time.Second
)
