// Package estimation turns a fund id into an EstimateSnapshot by walking the source tiers
// (official feed, proxy instrument, disclosed holdings) and falling back to the last confirmed NAV.
package estimation

import (
	"context"
	"math"
	"sync"
	"time"

	"github.com/aristath/fundnav/internal/cache"
	"github.com/aristath/fundnav/internal/domain"
	"github.com/aristath/fundnav/internal/modules/history"
	"github.com/aristath/fundnav/internal/modules/holdings"
	"github.com/aristath/fundnav/internal/modules/market_hours"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

// DefaultEpsilon is the smallest official change percent treated as a real estimate.
// The feed reports exactly 0 for funds it has not started estimating.
const DefaultEpsilon = 0.001

// Clock reports the session phase and exchange-local date
type Clock interface {
	Phase(t time.Time) market_hours.Phase
	Today(t time.Time) string
}

// QuoteBatcher returns same-day change percents, absent when unquoted
type QuoteBatcher interface {
	Batch(ctx context.Context, ids []string, ttl time.Duration) map[string]float64
}

// ProxyResolver maps a fund to a proxy instrument
type ProxyResolver interface {
	Resolve(name string, id domain.FundID) (string, error)
}

// Recorder counts finished estimates (metrics)
type Recorder interface {
	RecordEstimate(tier string, elapsed time.Duration)
}

// Dependencies of the orchestrator. Names and Recorder are optional.
type Dependencies struct {
	Clock        Clock
	Official     domain.OfficialFeed
	History      domain.HistoryProvider
	Holdings     domain.HoldingsProvider
	Quotes       QuoteBatcher
	Resolver     ProxyResolver
	Extrapolator *holdings.Extrapolator
	Names        domain.NameLookup
	Recorder     Recorder
}

// Orchestrator runs the tier state machine for one fund
type Orchestrator struct {
	deps    Dependencies
	epsilon float64
	now     func() time.Time
	log     zerolog.Logger
}

// NewOrchestrator creates an orchestrator. A non-positive epsilon selects DefaultEpsilon.
func NewOrchestrator(deps Dependencies, epsilon float64, log zerolog.Logger) *Orchestrator {
	if epsilon <= 0 {
		epsilon = DefaultEpsilon
	}
	if deps.Extrapolator == nil {
		deps.Extrapolator = holdings.NewExtrapolator(0, 0)
	}
	return &Orchestrator{
		deps:    deps,
		epsilon: epsilon,
		now:     time.Now,
		log:     log.With().Str("component", "orchestrator").Logger(),
	}
}

// confirmedNAV is the newest published NAV and the one before it
type confirmedNAV struct {
	date    string
	nav     decimal.Decimal
	change  *float64 // as published alongside nav
	prevNAV *decimal.Decimal
}

// Estimate produces a snapshot for one fund. It never fails: every provider error is
// absorbed into a lower tier, down to STALE.
func (o *Orchestrator) Estimate(ctx context.Context, id domain.FundID) domain.EstimateSnapshot {
	start := o.now()
	phase := o.deps.Clock.Phase(start)

	snapshot := domain.EstimateSnapshot{
		AsOf:   start,
		FundID: id,
		Phase:  string(phase),
	}
	log := o.log.With().Str("fund", string(id)).Str("phase", string(phase)).Logger()

	// INIT: history and official feed in parallel
	var (
		wg       sync.WaitGroup
		points   []domain.NAVPoint
		official *domain.OfficialEstimate
		histErr  error
		offErr   error
	)
	wg.Add(2)
	go func() {
		defer wg.Done()
		points, histErr = o.deps.History.Series(ctx, id)
	}()
	go func() {
		defer wg.Done()
		official, offErr = o.deps.Official.Fetch(ctx, id)
	}()
	wg.Wait()

	if histErr != nil {
		log.Debug().Err(histErr).Msg("History unavailable")
	}
	if offErr != nil {
		log.Debug().Err(offErr).Msg("Official feed unavailable")
		official = nil
	}

	snapshot.Name = o.fundName(ctx, id, official)
	last := latestNAV(points, official)
	if last != nil {
		snapshot.OfficialNAV = last.nav
		snapshot.NAVDate = last.date
	}

	o.resolve(ctx, &snapshot, phase, o.deps.Clock.Today(start), last, official, log)

	if o.deps.Recorder != nil {
		o.deps.Recorder.RecordEstimate(string(snapshot.SourceTier), o.now().Sub(start))
	}
	return snapshot
}

// resolve fills the tier-specific fields of snapshot
func (o *Orchestrator) resolve(ctx context.Context, snapshot *domain.EstimateSnapshot, phase market_hours.Phase, today string,
	last *confirmedNAV, official *domain.OfficialEstimate, log zerolog.Logger) {

	// A NAV published today is final
	if last != nil && last.date == today {
		snapshot.SourceTier = domain.TierOfficial
		snapshot.EstimatedValue = last.nav
		snapshot.EstimatedChangePercent = last.realizedChange()
		return
	}

	// Nothing has traded since the last close
	if phase.Closed() && last != nil {
		snapshot.SourceTier = domain.TierOfficial
		snapshot.EstimatedValue = last.nav
		return
	}

	if official != nil && phase.SessionStarted() && math.Abs(official.EstimatedChangePercent) > o.epsilon {
		value := official.EstimatedValue
		if value.IsZero() && last != nil {
			value = domain.ApplyChange(last.nav, official.EstimatedChangePercent)
		}
		if !value.IsZero() {
			snapshot.SourceTier = domain.TierOfficial
			snapshot.EstimatedValue = value
			snapshot.EstimatedChangePercent = official.EstimatedChangePercent
			return
		}
	}

	if last != nil {
		if o.tryProxy(ctx, snapshot, last, log) {
			return
		}
		if o.tryHoldings(ctx, snapshot, last, log) {
			return
		}
	}

	snapshot.SourceTier = domain.TierStale
	snapshot.NoEstimate = true
	snapshot.EstimatedChangePercent = 0
	if last != nil {
		snapshot.EstimatedValue = last.nav
	}
	log.Debug().Err(domain.ErrStaleData).Msg("No tier produced an estimate")
}

func (o *Orchestrator) tryProxy(ctx context.Context, snapshot *domain.EstimateSnapshot, last *confirmedNAV, log zerolog.Logger) bool {
	instrument, err := o.deps.Resolver.Resolve(snapshot.Name, snapshot.FundID)
	if err != nil {
		log.Debug().Err(err).Msg("No proxy")
		return false
	}

	changes := o.deps.Quotes.Batch(ctx, []string{instrument}, cache.TTLProxyQuote)
	change, ok := changes[instrument]
	if !ok {
		log.Debug().Str("proxy", instrument).Msg("Proxy instrument not quoted")
		return false
	}

	snapshot.SourceTier = domain.TierProxy
	snapshot.ProxyInstrument = instrument
	snapshot.EstimatedChangePercent = change
	snapshot.EstimatedValue = domain.ApplyChange(last.nav, change)
	return true
}

func (o *Orchestrator) tryHoldings(ctx context.Context, snapshot *domain.EstimateSnapshot, last *confirmedNAV, log zerolog.Logger) bool {
	disclosed, err := o.deps.Holdings.Get(ctx, snapshot.FundID)
	if err != nil {
		log.Debug().Err(err).Msg("Holdings unavailable")
		return false
	}
	if len(disclosed.Entries) == 0 {
		log.Debug().Msg("No disclosed holdings")
		return false
	}

	changes := o.deps.Quotes.Batch(ctx, holdings.InstrumentIDs(disclosed.Entries), cache.TTLHoldingQuote)
	result, err := o.deps.Extrapolator.Extrapolate(last.nav, disclosed.Entries, changes)
	if err != nil {
		log.Debug().Err(err).Msg("Holdings extrapolation rejected")
		return false
	}

	snapshot.SourceTier = domain.TierHoldings
	snapshot.EstimatedChangePercent = result.ChangePercent
	snapshot.EstimatedValue = result.EstimatedValue
	snapshot.Coverage = result.Coverage
	return true
}

func (o *Orchestrator) fundName(ctx context.Context, id domain.FundID, official *domain.OfficialEstimate) string {
	if official != nil && official.Name != "" {
		return official.Name
	}
	if o.deps.Names != nil {
		if name, ok := o.deps.Names.Name(ctx, id); ok {
			return name
		}
	}
	return ""
}

// latestNAV picks the newest confirmed NAV from history and the feed's dwjz/jzrq.
// History wins a tie because it carries the published daily change.
func latestNAV(points []domain.NAVPoint, official *domain.OfficialEstimate) *confirmedNAV {
	var last *confirmedNAV
	if newest, prev := history.Latest(points); newest != nil {
		last = &confirmedNAV{date: newest.Date, nav: newest.NAV, change: newest.ChangePercent}
		if prev != nil {
			last.prevNAV = &prev.NAV
		}
	}

	if official == nil || official.OfficialNAV.IsZero() || official.NAVDate == "" {
		return last
	}
	if last != nil && official.NAVDate <= last.date {
		return last
	}

	fromFeed := &confirmedNAV{date: official.NAVDate, nav: official.OfficialNAV}
	if last != nil {
		// History lags the feed by one publication; its newest point is the previous NAV
		prev := last.nav
		fromFeed.prevNAV = &prev
	}
	return fromFeed
}

// realizedChange is the published daily change, or derived from the previous NAV
func (c *confirmedNAV) realizedChange() float64 {
	if c.change != nil {
		return *c.change
	}
	if c.prevNAV == nil || c.prevNAV.IsZero() {
		return 0
	}
	change, _ := c.nav.Div(*c.prevNAV).Sub(decimal.NewFromInt(1)).Mul(decimal.NewFromInt(100)).Float64()
	return change
}
