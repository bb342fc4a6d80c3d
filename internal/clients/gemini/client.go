// Package gemini wraps the Gemini API for free-form fund commentary.
package gemini

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"google.golang.org/genai"
)

// DefaultModel is used when no model is configured.
const DefaultModel = "gemini-2.5-flash"

var (
	// ErrNotConfigured is returned when no API key was provided.
	ErrNotConfigured = errors.New("gemini: api key not configured")
	// ErrEmptyPrompt is returned for blank prompts.
	ErrEmptyPrompt = errors.New("gemini: empty prompt")
)

type generateFunc func(ctx context.Context, prompt string) (string, error)

// Client sends prompts to a Gemini model. The underlying genai client is
// created on first use.
type Client struct {
	apiKey   string
	model    string
	timeout  time.Duration
	log      zerolog.Logger
	generate generateFunc

	mu     sync.Mutex
	client *genai.Client
}

// NewClient creates a new Gemini client. An empty apiKey yields a client
// whose Analyze always returns ErrNotConfigured.
func NewClient(apiKey, model string, timeout time.Duration, log zerolog.Logger) *Client {
	if model == "" {
		model = DefaultModel
	}
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	c := &Client{
		apiKey:  apiKey,
		model:   model,
		timeout: timeout,
		log:     log.With().Str("client", "gemini").Logger(),
	}
	c.generate = c.generateContent
	return c
}

// Configured reports whether an API key is set.
func (c *Client) Configured() bool {
	return c.apiKey != ""
}

// Model returns the model name prompts are sent to.
func (c *Client) Model() string {
	return c.model
}

// Analyze sends prompt to the model and returns its text answer.
func (c *Client) Analyze(ctx context.Context, prompt string) (string, error) {
	if !c.Configured() {
		return "", ErrNotConfigured
	}
	prompt = strings.TrimSpace(prompt)
	if prompt == "" {
		return "", ErrEmptyPrompt
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	start := time.Now()
	text, err := c.generate(ctx, prompt)
	if err != nil {
		c.log.Warn().Err(err).Dur("elapsed", time.Since(start)).Msg("Generation failed")
		return "", fmt.Errorf("gemini generate: %w", err)
	}

	c.log.Debug().
		Str("model", c.model).
		Int("prompt_len", len(prompt)).
		Int("answer_len", len(text)).
		Dur("elapsed", time.Since(start)).
		Msg("Generation complete")
	return strings.TrimSpace(text), nil
}

func (c *Client) generateContent(ctx context.Context, prompt string) (string, error) {
	client, err := c.genaiClient(ctx)
	if err != nil {
		return "", err
	}
	resp, err := client.Models.GenerateContent(ctx, c.model, genai.Text(prompt), nil)
	if err != nil {
		return "", err
	}
	return resp.Text(), nil
}

func (c *Client) genaiClient(ctx context.Context) (*genai.Client, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.client != nil {
		return c.client, nil
	}
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  c.apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create genai client: %w", err)
	}
	c.client = client
	return client, nil
}
