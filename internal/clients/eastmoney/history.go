package eastmoney

import (
	"context"
	"encoding/json"
	"fmt"
	"regexp"
	"time"

	"github.com/aristath/fundnav/internal/domain"
	"github.com/shopspring/decimal"
)

var (
	trendPattern    = regexp.MustCompile(`(?s)var\s+Data_netWorthTrend\s*=\s*(\[.*?\]);`)
	fundNamePattern = regexp.MustCompile(`var\s+fS_name\s*=\s*"([^"]*)"`)
	shanghai        = loadShanghai()
)

// NAVHistory is the parsed pingzhongdata script
type NAVHistory struct {
	Name   string
	Points []domain.NAVPoint
}

type trendPoint struct {
	X            int64    `json:"x"` // publication date, epoch millis at Shanghai midnight
	Y            float64  `json:"y"`
	EquityReturn *float64 `json:"equityReturn"`
}

// FetchNAVHistory downloads the full confirmed NAV series of a fund, oldest first
func (c *Client) FetchNAVHistory(ctx context.Context, id domain.FundID) (*NAVHistory, error) {
	url := fmt.Sprintf("%s/pingzhongdata/%s.js?v=%d", c.fundURL, id, time.Now().UnixMilli())
	body, err := c.session.Get(ctx, url, referer)
	if err != nil {
		return nil, fmt.Errorf("nav history request failed: %w", err)
	}
	return parseNAVHistory(body)
}

func parseNAVHistory(body []byte) (*NAVHistory, error) {
	m := trendPattern.FindSubmatch(body)
	if m == nil {
		return nil, fmt.Errorf("nav trend not found in response")
	}

	var raw []trendPoint
	if err := json.Unmarshal(m[1], &raw); err != nil {
		return nil, fmt.Errorf("failed to parse nav trend: %w", err)
	}

	history := &NAVHistory{Points: make([]domain.NAVPoint, 0, len(raw))}
	if n := fundNamePattern.FindSubmatch(body); n != nil {
		history.Name = string(n[1])
	}

	for _, p := range raw {
		if p.Y <= 0 {
			continue
		}
		history.Points = append(history.Points, domain.NAVPoint{
			Date:          time.UnixMilli(p.X).In(shanghai).Format("2006-01-02"),
			NAV:           decimal.NewFromFloat(p.Y),
			ChangePercent: p.EquityReturn,
		})
	}

	return history, nil
}

func loadShanghai() *time.Location {
	loc, err := time.LoadLocation("Asia/Shanghai")
	if err != nil {
		return time.FixedZone("CST", 8*3600)
	}
	return loc
}
