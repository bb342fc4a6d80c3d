// Package transport provides the shared HTTP session used by every upstream client.
// One pooled http.Client is reused process-wide; each upstream host gets its own token bucket
// and circuit breaker so a failing vendor cannot stall or hammer the others.
package transport

import (
	"context"
	"errors"
	"fmt"
	"io"
	"math/rand"
	"net/http"
	"net/url"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"github.com/sony/gobreaker"
	"golang.org/x/time/rate"
)

var userAgents = []string{
	"Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36",
	"Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36",
}

// maxBodyBytes caps upstream responses; the fund directory script is the largest at a few MB
const maxBodyBytes = 16 << 20

// Observer receives the outcome of every upstream request (metrics)
type Observer func(host string, elapsed time.Duration, err error)

// Config holds session configuration
type Config struct {
	RequestsPerSecond float64 // per host
	Burst             int
	MaxIdlePerHost    int
	Observer          Observer
}

// Session is the shared HTTP session
type Session struct {
	client   *http.Client
	cfg      Config
	log      zerolog.Logger
	mu       sync.RWMutex
	limiters map[string]*rate.Limiter
	breakers map[string]*gobreaker.CircuitBreaker
}

// NewSession creates a new shared session
func NewSession(cfg Config, log zerolog.Logger) *Session {
	if cfg.RequestsPerSecond <= 0 {
		cfg.RequestsPerSecond = 20
	}
	if cfg.Burst <= 0 {
		cfg.Burst = int(cfg.RequestsPerSecond)
	}
	if cfg.MaxIdlePerHost <= 0 {
		cfg.MaxIdlePerHost = 20
	}

	tr := http.DefaultTransport.(*http.Transport).Clone()
	tr.MaxIdleConns = cfg.MaxIdlePerHost * 4
	tr.MaxIdleConnsPerHost = cfg.MaxIdlePerHost

	return &Session{
		// Deadlines come from the caller's context
		client:   &http.Client{Transport: tr},
		cfg:      cfg,
		log:      log.With().Str("component", "transport").Logger(),
		limiters: make(map[string]*rate.Limiter),
		breakers: make(map[string]*gobreaker.CircuitBreaker),
	}
}

// Get fetches rawURL and returns the body. Non-2xx statuses, an open breaker, and context
// deadlines are all errors.
func (s *Session) Get(ctx context.Context, rawURL string, referer string) ([]byte, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return nil, fmt.Errorf("invalid url: %w", err)
	}
	host := u.Host

	if err := s.limiter(host).Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limit wait for %s: %w", host, err)
	}

	start := time.Now()
	body, err := s.breaker(host).Execute(func() (interface{}, error) {
		return s.do(ctx, rawURL, referer)
	})
	if s.cfg.Observer != nil {
		s.cfg.Observer(host, time.Since(start), err)
	}
	if err != nil {
		return nil, err
	}
	return body.([]byte), nil
}

func (s *Session) do(ctx context.Context, rawURL, referer string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("User-Agent", userAgents[rand.Intn(len(userAgents))])
	req.Header.Set("Connection", "keep-alive")
	if referer != "" {
		req.Header.Set("Referer", referer)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("upstream returned status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}
	return body, nil
}

func (s *Session) limiter(host string) *rate.Limiter {
	s.mu.RLock()
	l, ok := s.limiters[host]
	s.mu.RUnlock()
	if ok {
		return l
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if l, ok := s.limiters[host]; ok {
		return l
	}
	l = rate.NewLimiter(rate.Limit(s.cfg.RequestsPerSecond), s.cfg.Burst)
	s.limiters[host] = l
	return l
}

func (s *Session) breaker(host string) *gobreaker.CircuitBreaker {
	s.mu.RLock()
	b, ok := s.breakers[host]
	s.mu.RUnlock()
	if ok {
		return b
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if b, ok := s.breakers[host]; ok {
		return b
	}
	b = gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:     host,
		Interval: 60 * time.Second,
		Timeout:  30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			if counts.ConsecutiveFailures >= 5 {
				return true
			}
			if counts.Requests < 20 {
				return false
			}
			return float64(counts.TotalFailures)/float64(counts.Requests) > 0.5
		},
		// A caller giving up is not the upstream's fault
		IsSuccessful: func(err error) bool {
			return err == nil || errors.Is(err, context.Canceled)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			s.log.Warn().
				Str("host", name).
				Str("from", from.String()).
				Str("to", to.String()).
				Msg("Circuit breaker state changed")
		},
	})
	s.breakers[host] = b
	return b
}
