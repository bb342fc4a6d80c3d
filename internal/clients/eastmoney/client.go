// Package eastmoney provides raw access to the eastmoney fund and quote endpoints:
// batched live quotes, confirmed NAV history, top-holdings disclosures and the fund directory.
// The client does no caching; the services in internal/modules layer caches on top of it.
package eastmoney

import (
	"github.com/aristath/fundnav/internal/clients/transport"
	"github.com/rs/zerolog"
)

const (
	defaultQuoteURL   = "http://push2.eastmoney.com/api/qt/ulist.np/get"
	defaultFundURL    = "http://fund.eastmoney.com"
	defaultArchiveURL = "http://fundf10.eastmoney.com/FundArchivesDatas.aspx"
	referer           = "http://fund.eastmoney.com/"
)

// Client for the eastmoney endpoints
type Client struct {
	quoteURL   string
	fundURL    string
	archiveURL string
	session    *transport.Session
	log        zerolog.Logger
}

// NewClient creates a new eastmoney client
func NewClient(session *transport.Session, log zerolog.Logger) *Client {
	return &Client{
		quoteURL:   defaultQuoteURL,
		fundURL:    defaultFundURL,
		archiveURL: defaultArchiveURL,
		session:    session,
		log:        log.With().Str("client", "eastmoney").Logger(),
	}
}
