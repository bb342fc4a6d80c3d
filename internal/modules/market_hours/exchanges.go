package market_hours

import "time"

// XSHG is the Shanghai session. Open is the 09:25 call-auction print; the close at 15:00:00
// is still part of the session.
var XSHG = ExchangeConfig{
	Code: "XSHG",
	Name: "Shanghai Stock Exchange",
	TradingHours: TradingHours{
		OpenHour:    9,
		OpenMinute:  25,
		CloseHour:   15,
		CloseMinute: 0,
	},
	Timezone: mustLoadLocation("Asia/Shanghai"),
	LunchBreak: &LunchBreak{
		StartHour:   11,
		StartMinute: 30,
		EndHour:     13,
		EndMinute:   0,
	},
}

func mustLoadLocation(name string) *time.Location {
	loc, err := time.LoadLocation(name)
	if err != nil {
		// tzdata missing on the host: the exchange has no DST, a fixed zone is exact
		return time.FixedZone(name, 8*3600)
	}
	return loc
}
