// Package openai adapts the OpenAI chat completions API for summary generation
package openai

import (
	"context"
	"encoding/json"
	stderrs "errors"
	"math/rand"
	"net/http"
	"strings"
	"time"

	goopenai "github.com/sashabaranov/go-openai"
	"golang.org/x/time/rate"

	perr "hansard/internal/platform/errors"
	"hansard/internal/platform/logger"
)

const (
	defaultModel     = "gpt-4o-mini"
	defaultTimeout   = 60 * time.Second
	defaultAttempts  = 3
	defaultRetryBase = 500 * time.Millisecond
)

// Options configures the Client. Zero values take defaults
type Options struct {
	APIKey    string
	BaseURL   string
	Model     string
	Timeout   time.Duration
	Attempts  int
	RetryBase time.Duration

	// RPS caps request rate. Zero disables limiting
	RPS   float64
	Burst int
}

// Request is one chat completion. A non-empty Schema asks for strict JSON output
type Request struct {
	System      string
	User        string
	Temperature float32
	SchemaName  string
	Schema      json.RawMessage
	Strict      bool
}

// Client wraps go-openai with retries on 429 and 5xx
type Client struct {
	api     *goopenai.Client
	opts    Options
	limiter *rate.Limiter
	log     logger.Logger
	sleep   func(context.Context, time.Duration) error
}

// New builds a Client. An API key is required
func New(o Options) (*Client, error) {
	o.APIKey = strings.TrimSpace(o.APIKey)
	if o.APIKey == "" {
		return nil, perr.WithField(perr.New(perr.ErrorCodeInvalidArgument, "openai api key is required"), "api_key")
	}
	if o.Model == "" {
		o.Model = defaultModel
	}
	if o.Timeout <= 0 {
		o.Timeout = defaultTimeout
	}
	if o.Attempts <= 0 {
		o.Attempts = defaultAttempts
	}
	if o.RetryBase <= 0 {
		o.RetryBase = defaultRetryBase
	}

	cfg := goopenai.DefaultConfig(o.APIKey)
	if o.BaseURL != "" {
		cfg.BaseURL = strings.TrimRight(o.BaseURL, "/")
	}
	cfg.HTTPClient = &http.Client{Timeout: o.Timeout}

	c := &Client{
		api:   goopenai.NewClientWithConfig(cfg),
		opts:  o,
		log:   *logger.Named("openai"),
		sleep: sleepCtx,
	}
	if o.RPS > 0 {
		c.limiter = rate.NewLimiter(rate.Limit(o.RPS), max(o.Burst, 1))
	}
	return c, nil
}

// Provider names the backend for stored summaries
func (c *Client) Provider() string { return "openai" }

// Model is the configured model
func (c *Client) Model() string { return c.opts.Model }

// Complete sends r and returns the first choice's content, trimmed
func (c *Client) Complete(ctx context.Context, r Request) (string, error) {
	req := goopenai.ChatCompletionRequest{
		Model: c.opts.Model,
		Messages: []goopenai.ChatCompletionMessage{
			{Role: goopenai.ChatMessageRoleSystem, Content: r.System},
			{Role: goopenai.ChatMessageRoleUser, Content: r.User},
		},
		Temperature: r.Temperature,
	}
	if len(r.Schema) > 0 {
		req.ResponseFormat = &goopenai.ChatCompletionResponseFormat{
			Type: goopenai.ChatCompletionResponseFormatTypeJSONSchema,
			JSONSchema: &goopenai.ChatCompletionResponseFormatJSONSchema{
				Name:   r.SchemaName,
				Schema: r.Schema,
				Strict: r.Strict,
			},
		}
	}

	var last error
	for attempt := 0; attempt < c.opts.Attempts; attempt++ {
		if c.limiter != nil {
			if err := c.limiter.Wait(ctx); err != nil {
				return "", err
			}
		}

		start := time.Now()
		resp, err := c.api.CreateChatCompletion(ctx, req)
		if err == nil {
			c.log.Debug().
				Str("model", c.opts.Model).
				Int("prompt_tokens", resp.Usage.PromptTokens).
				Int("completion_tokens", resp.Usage.CompletionTokens).
				Dur("latency", time.Since(start)).
				Msg("openai completion")
			if len(resp.Choices) == 0 {
				return "", perr.New(perr.ErrorCodeUnavailable, "openai returned no choices")
			}
			return strings.TrimSpace(resp.Choices[0].Message.Content), nil
		}

		last = err
		if ctx.Err() != nil {
			return "", ctx.Err()
		}
		status, transient := classify(err)
		if !transient {
			return "", perr.Wrapf(err, codeFor(status), "openai completion failed")
		}
		if attempt == c.opts.Attempts-1 {
			break
		}

		d := c.opts.RetryBase<<uint(attempt) + time.Duration(rand.Int63n(int64(200*time.Millisecond)))
		c.log.Warn().Err(err).Int("status", status).Int("attempt", attempt).Dur("retry_in", d).Msg("openai transient error, retrying")
		if err := c.sleep(ctx, d); err != nil {
			return "", err
		}
	}

	status, _ := classify(last)
	return "", perr.Wrapf(last, codeFor(status), "openai completion failed after %d attempts", c.opts.Attempts)
}

// classify extracts the HTTP status and whether a retry may help. Errors with no status
// are transport failures and retried
func classify(err error) (int, bool) {
	var apiErr *goopenai.APIError
	if stderrs.As(err, &apiErr) {
		return apiErr.HTTPStatusCode, transientStatus(apiErr.HTTPStatusCode)
	}
	var reqErr *goopenai.RequestError
	if stderrs.As(err, &reqErr) {
		return reqErr.HTTPStatusCode, transientStatus(reqErr.HTTPStatusCode)
	}
	return 0, true
}

func transientStatus(code int) bool {
	switch code {
	case http.StatusTooManyRequests, http.StatusInternalServerError, http.StatusBadGateway,
		http.StatusServiceUnavailable, http.StatusGatewayTimeout:
		return true
	}
	return false
}

func codeFor(status int) perr.ErrorCode {
	switch {
	case status == http.StatusTooManyRequests:
		return perr.ErrorCodeTooManyRequests
	case status == http.StatusUnauthorized:
		return perr.ErrorCodeUnauthorized
	case status == http.StatusForbidden:
		return perr.ErrorCodeForbidden
	case status == http.StatusBadRequest:
		return perr.ErrorCodeInvalidArgument
	case status == 0 || status >= 500:
		return perr.ErrorCodeUnavailable
	}
	return perr.ErrorCodeUnknown
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
