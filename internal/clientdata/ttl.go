package clientdata

import "time"

// TTL constants for the persisted tables.
// These are added to time.Now() when storing to calculate expires_at.
const (
	// Holdings are disclosed quarterly; a daily refresh is plenty
	TTLFundHoldings = 24 * time.Hour
	// New funds list a few times a week
	TTLFundDirectory = 24 * time.Hour
)
