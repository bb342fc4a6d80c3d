// Package fundgz provides the official per-fund intraday estimate feed.
// The feed answers JSONP: jsonpgz({"fundcode":"...","gsz":"...",...});
// Funds the vendor does not estimate answer jsonpgz(); which is reported as unavailable.
package fundgz

import (
	"context"
	"encoding/json"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/aristath/fundnav/internal/cache"
	"github.com/aristath/fundnav/internal/clients/transport"
	"github.com/aristath/fundnav/internal/domain"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

const (
	defaultBaseURL = "http://fundgz.1234567.com.cn/js"
	referer        = "http://fund.eastmoney.com/"
)

var jsonpPattern = regexp.MustCompile(`(?s)jsonpgz\((.*)\)`)

// payload mirrors the vendor fields we consume
type payload struct {
	FundCode string `json:"fundcode"`
	Name     string `json:"name"`
	NAVDate  string `json:"jzrq"`
	NAV      string `json:"dwjz"`
	Estimate string `json:"gsz"`
	Change   string `json:"gszzl"`
	Time     string `json:"gztime"`
}

// Client for the official estimate feed
type Client struct {
	baseURL string
	session *transport.Session
	timeout time.Duration
	cache   *cache.Namespace[domain.FundID, *domain.OfficialEstimate]
	log     zerolog.Logger
}

// NewClient creates a new official feed client
func NewClient(session *transport.Session, store *cache.Store, timeout time.Duration, log zerolog.Logger) *Client {
	if timeout <= 0 {
		timeout = 2 * time.Second
	}
	return &Client{
		baseURL: defaultBaseURL,
		session: session,
		timeout: timeout,
		cache:   cache.NewNamespace[domain.FundID, *domain.OfficialEstimate](store, cache.NamespaceOfficial, cache.TTLOfficial),
		log:     log.With().Str("client", "fundgz").Logger(),
	}
}

// Fetch returns the vendor estimate for a fund, cache-first.
// Every failure is wrapped in domain.ErrProviderUnavailable.
func (c *Client) Fetch(ctx context.Context, id domain.FundID) (*domain.OfficialEstimate, error) {
	if cached, ok := c.cache.Get(id, cache.TTLOfficial); ok {
		return cached, nil
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	url := fmt.Sprintf("%s/gszzl_%s.js?rt=%d", c.baseURL, id, time.Now().UnixMilli())
	body, err := c.session.Get(ctx, url, referer)
	if err != nil {
		c.log.Debug().Err(err).Str("fund", string(id)).Msg("Official feed request failed")
		return nil, fmt.Errorf("%w: fundgz %s: %v", domain.ErrProviderUnavailable, id, err)
	}

	estimate, err := parse(id, body)
	if err != nil {
		c.log.Debug().Err(err).Str("fund", string(id)).Msg("Official feed unusable")
		return nil, fmt.Errorf("%w: fundgz %s: %v", domain.ErrProviderUnavailable, id, err)
	}

	c.cache.Set(id, estimate)
	return estimate, nil
}

func parse(id domain.FundID, body []byte) (*domain.OfficialEstimate, error) {
	m := jsonpPattern.FindSubmatch(body)
	if m == nil {
		return nil, fmt.Errorf("not a jsonpgz response")
	}
	raw := strings.TrimSpace(string(m[1]))
	if raw == "" {
		return nil, fmt.Errorf("fund not covered by the feed")
	}

	var p payload
	if err := json.Unmarshal([]byte(raw), &p); err != nil {
		return nil, fmt.Errorf("failed to parse payload: %w", err)
	}

	estimate := &domain.OfficialEstimate{
		FundID:       id,
		Name:         p.Name,
		NAVDate:      p.NAVDate,
		EstimateTime: p.Time,
	}
	if p.FundCode != "" {
		estimate.FundID = domain.FundID(p.FundCode)
	}
	estimate.OfficialNAV = parseDecimal(p.NAV)
	estimate.EstimatedValue = parseDecimal(p.Estimate)
	if chg, err := strconv.ParseFloat(strings.TrimSpace(p.Change), 64); err == nil {
		estimate.EstimatedChangePercent = chg
	}

	return estimate, nil
}

// parseDecimal returns zero for blank or malformed vendor numbers
func parseDecimal(s string) decimal.Decimal {
	d, err := decimal.NewFromString(strings.TrimSpace(s))
	if err != nil {
		return decimal.Zero
	}
	return d
}
