package holdings

import (
	"fmt"

	"github.com/aristath/fundnav/internal/domain"
	"github.com/shopspring/decimal"
	"gonum.org/v1/gonum/stat"
)

const (
	// DefaultDamping discounts the top-holdings signal for the undisclosed remainder
	DefaultDamping = 0.95
	// DefaultMinCoverage is the minimum quoted disclosed weight, in percent
	DefaultMinCoverage = 20.0
)

// Extrapolation is an accepted holdings-based estimate
type Extrapolation struct {
	ChangePercent  float64
	EstimatedValue decimal.Decimal
	Coverage       float64 // quoted disclosed weight, percent
}

// Extrapolator estimates a fund's change from its disclosed top holdings
type Extrapolator struct {
	damping     float64
	minCoverage float64
}

// NewExtrapolator creates an extrapolator. Non-positive arguments select the defaults.
func NewExtrapolator(damping, minCoverage float64) *Extrapolator {
	if damping <= 0 {
		damping = DefaultDamping
	}
	if minCoverage <= 0 {
		minCoverage = DefaultMinCoverage
	}
	return &Extrapolator{damping: damping, minCoverage: minCoverage}
}

// Extrapolate computes change = weighted mean of quoted holdings' changes × damping.
// Holdings without a quote are excluded from both sums. Coverage under the minimum
// returns domain.ErrInsufficientCoverage.
func (e *Extrapolator) Extrapolate(lastNAV decimal.Decimal, entries []domain.HoldingEntry, changes map[string]float64) (*Extrapolation, error) {
	var (
		xs       []float64
		weights  []float64
		coverage float64
	)
	for _, h := range entries {
		c, ok := changes[h.InstrumentID]
		if !ok || h.WeightPercent <= 0 {
			continue
		}
		xs = append(xs, c)
		weights = append(weights, h.WeightPercent)
		coverage += h.WeightPercent
	}

	if len(xs) == 0 || coverage < e.minCoverage {
		return nil, fmt.Errorf("%w: %.2f%% quoted, need %.2f%%", domain.ErrInsufficientCoverage, coverage, e.minCoverage)
	}

	change := stat.Mean(xs, weights) * e.damping
	return &Extrapolation{
		ChangePercent:  change,
		EstimatedValue: domain.ApplyChange(lastNAV, change),
		Coverage:       coverage,
	}, nil
}

// InstrumentIDs lists the instruments to quote for a snapshot
func InstrumentIDs(entries []domain.HoldingEntry) []string {
	ids := make([]string, 0, len(entries))
	for _, h := range entries {
		ids = append(ids, h.InstrumentID)
	}
	return ids
}
