package market_hours

import (
	"fmt"
	"time"
)

const dateLayout = "2006-01-02"

// MarketClock maps wall-clock time to a session phase. It holds no mutable state.
type MarketClock struct {
	config   ExchangeConfig
	holidays map[string]bool
}

// NewMarketClock creates a clock for the given exchange. Holidays are exchange-local dates
// (YYYY-MM-DD) on which the exchange is closed all day; they report as WEEKEND.
func NewMarketClock(config ExchangeConfig, holidays ...string) (*MarketClock, error) {
	set := make(map[string]bool, len(holidays))
	for _, h := range holidays {
		if _, err := time.Parse(dateLayout, h); err != nil {
			return nil, fmt.Errorf("invalid holiday %q: %w", h, err)
		}
		set[h] = true
	}
	return &MarketClock{config: config, holidays: set}, nil
}

// NewDefaultClock creates a Shanghai clock without holidays
func NewDefaultClock() *MarketClock {
	return &MarketClock{config: XSHG, holidays: map[string]bool{}}
}

// Phase returns the session phase at t
func (c *MarketClock) Phase(t time.Time) Phase {
	marketTime := t.In(c.config.Timezone)

	if marketTime.Weekday() == time.Saturday || marketTime.Weekday() == time.Sunday {
		return PhaseWeekend
	}
	if c.holidays[marketTime.Format(dateLayout)] {
		return PhaseWeekend
	}

	at := func(hour, minute int) time.Time {
		return time.Date(marketTime.Year(), marketTime.Month(), marketTime.Day(),
			hour, minute, 0, 0, c.config.Timezone)
	}

	hours := c.config.TradingHours
	openTime := at(hours.OpenHour, hours.OpenMinute)
	closeTime := at(hours.CloseHour, hours.CloseMinute)

	if marketTime.Before(openTime) {
		return PhasePreMarket
	}
	if marketTime.After(closeTime) {
		return PhasePostMarket
	}

	// Lunch break is [start, end)
	if lb := c.config.LunchBreak; lb != nil {
		lunchStart := at(lb.StartHour, lb.StartMinute)
		lunchEnd := at(lb.EndHour, lb.EndMinute)
		if !marketTime.Before(lunchStart) && marketTime.Before(lunchEnd) {
			return PhaseLunchBreak
		}
	}

	return PhaseMarket
}

// Today returns the exchange-local date of t as YYYY-MM-DD
func (c *MarketClock) Today(t time.Time) string {
	return t.In(c.config.Timezone).Format(dateLayout)
}

// Location returns the exchange timezone
func (c *MarketClock) Location() *time.Location {
	return c.config.Timezone
}

// Status returns the phase with exchange-local clock details
func (c *MarketClock) Status(t time.Time) SessionStatus {
	marketTime := t.In(c.config.Timezone)
	return SessionStatus{
		Phase:     c.Phase(t),
		Exchange:  c.config.Code,
		Timezone:  c.config.Timezone.String(),
		LocalTime: marketTime.Format("15:04:05"),
		Date:      marketTime.Format(dateLayout),
		Holiday:   c.holidays[marketTime.Format(dateLayout)],
	}
}
