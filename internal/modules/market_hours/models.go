// Package market_hours maps wall-clock time to the trading-session phase of the exchange
// whose instruments drive fund estimates.
package market_hours

import "time"

// Phase is the trading-session phase at a point in time
type Phase string

const (
	PhaseWeekend    Phase = "WEEKEND"
	PhasePreMarket  Phase = "PRE_MARKET"
	PhaseMarket     Phase = "MARKET"
	PhaseLunchBreak Phase = "LUNCH_BREAK"
	PhasePostMarket Phase = "POST_MARKET"
)

// SessionStarted reports whether the exchange has opened today.
// Intraday estimates are only meaningful once it has.
func (p Phase) SessionStarted() bool {
	switch p {
	case PhaseMarket, PhaseLunchBreak, PhasePostMarket:
		return true
	}
	return false
}

// Closed reports whether prices cannot have moved since the last close
func (p Phase) Closed() bool {
	return p == PhaseWeekend || p == PhasePreMarket
}

// TradingHours represents regular trading hours for an exchange
type TradingHours struct {
	OpenHour    int // Hour (0-23)
	OpenMinute  int // Minute (0-59)
	CloseHour   int // Hour (0-23)
	CloseMinute int // Minute (0-59)
}

// LunchBreak represents a midday trading break
type LunchBreak struct {
	StartHour   int // Hour (0-23)
	StartMinute int // Minute (0-59)
	EndHour     int // Hour (0-23)
	EndMinute   int // Minute (0-59)
}

// ExchangeConfig represents configuration for a single exchange
type ExchangeConfig struct {
	Code         string
	Name         string
	TradingHours TradingHours
	Timezone     *time.Location
	LunchBreak   *LunchBreak
}

// SessionStatus is the phase plus the exchange-local clock, for status endpoints
type SessionStatus struct {
	Phase     Phase  `json:"phase"`
	Exchange  string `json:"exchange"`
	Timezone  string `json:"timezone"`
	LocalTime string `json:"local_time"`
	Date      string `json:"date"`
	Holiday   bool   `json:"holiday"`
}
