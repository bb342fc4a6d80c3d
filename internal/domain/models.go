// Package domain provides core domain models and types.
package domain

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// FundID is the opaque identifier of an open-end fund (e.g. "161725")
type FundID string

// fundCodeLen is the length of a mainland fund code
const fundCodeLen = 6

// ParseFundID validates a fund code as six ASCII digits
func ParseFundID(code string) (FundID, error) {
	code = strings.TrimSpace(code)
	if len(code) != fundCodeLen {
		return "", fmt.Errorf("%w: %q", ErrInvalidFundID, code)
	}
	for i := 0; i < len(code); i++ {
		if code[i] < '0' || code[i] > '9' {
			return "", fmt.Errorf("%w: %q", ErrInvalidFundID, code)
		}
	}
	return FundID(code), nil
}

// SourceTier identifies which estimation strategy produced a snapshot
type SourceTier string

const (
	// TierOfficial is the vendor's own intraday estimate or a confirmed NAV
	TierOfficial SourceTier = "OFFICIAL"
	// TierProxy tracks the same-day change of a correlated exchange-traded instrument
	TierProxy SourceTier = "PROXY"
	// TierHoldings extrapolates from the disclosed top holdings
	TierHoldings SourceTier = "HOLDINGS"
	// TierStale means no tier produced an estimate; the last confirmed NAV is surfaced
	TierStale SourceTier = "STALE"
)

// EstimateSnapshot is the per-fund result handed to callers.
// It is always fully populated; a fund that could not be estimated is tagged STALE.
type EstimateSnapshot struct {
	AsOf                   time.Time       `json:"asOf"`
	FundID                 FundID          `json:"fundId"`
	Name                   string          `json:"name"`
	NAVDate                string          `json:"navDate"`
	SourceTier             SourceTier      `json:"sourceTier"`
	Phase                  string          `json:"phase"`
	ProxyInstrument        string          `json:"proxyInstrument,omitempty"`
	OfficialNAV            decimal.Decimal `json:"officialNav"`
	EstimatedValue         decimal.Decimal `json:"estimatedValue"`
	EstimatedChangePercent float64         `json:"estimatedChangePercent"`
	Coverage               float64         `json:"coverage,omitempty"` // disclosed weight with a live quote, HOLDINGS only
	NoEstimate             bool            `json:"noEstimate"`
}

// HoldingEntry is one disclosed top holding of a fund
type HoldingEntry struct {
	InstrumentID  string  `json:"instrumentId" msgpack:"i"`
	Name          string  `json:"name" msgpack:"n"`
	WeightPercent float64 `json:"weightPercent" msgpack:"w"`
}

// HoldingsSnapshot is the top-holdings disclosure of one reporting period.
// Entries are ordered by weight descending and never mix periods.
type HoldingsSnapshot struct {
	FundID  FundID         `json:"fundId" msgpack:"f"`
	Period  string         `json:"period" msgpack:"p"` // e.g. "2024年4季度"
	Entries []HoldingEntry `json:"holdings" msgpack:"e"`
}

// NAVPoint is one confirmed NAV publication
type NAVPoint struct {
	Date          string          `json:"date"`
	NAV           decimal.Decimal `json:"value"`
	ChangePercent *float64        `json:"changePercent,omitempty"` // daily growth as published, if any
}

// OfficialEstimate is what the vendor's own intraday estimate feed returns
type OfficialEstimate struct {
	FundID                 FundID
	Name                   string
	NAVDate                string
	EstimateTime           string
	OfficialNAV            decimal.Decimal
	EstimatedValue         decimal.Decimal
	EstimatedChangePercent float64
}

// Quote is a live quote for an exchange-traded instrument
type Quote struct {
	InstrumentID  string  `json:"code"`
	Name          string  `json:"name"`
	Price         float64 `json:"value"`
	ChangePercent float64 `json:"changePercent"`
}

// ProxyMapping binds a fund-name keyword to a tradable proxy instrument
type ProxyMapping struct {
	Keyword      string `yaml:"keyword" json:"keyword"`
	InstrumentID string `yaml:"instrument" json:"instrument"`
}

// FundInfo is one row of the fund directory
type FundInfo struct {
	Code   string `json:"code" msgpack:"c"`
	Name   string `json:"name" msgpack:"n"`
	Type   string `json:"type" msgpack:"t"`
	Pinyin string `json:"pinyin" msgpack:"p"`
}

var hundred = decimal.NewFromInt(100)

// ApplyChange returns nav × (1 + changePercent/100), unrounded
func ApplyChange(nav decimal.Decimal, changePercent float64) decimal.Decimal {
	factor := decimal.NewFromFloat(changePercent).Div(hundred).Add(decimal.NewFromInt(1))
	return nav.Mul(factor)
}
