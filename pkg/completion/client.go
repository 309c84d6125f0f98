// Package completion is the single gateway to the LLM backend. It owns the
// request queue, the requests-per-minute window, retries, model verification
// and a short-lived response cache.
package completion

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"ai-digest-be/internal/config"
	"ai-digest-be/internal/pkg/logger"
	"ai-digest-be/pkg/llm"

	"github.com/patrickmn/go-cache"
)

const module = "COMPLETION"

type Config struct {
	Model                 string
	RequestsPerMinute     int
	MaxConcurrentRequests int
	Retry                 RetryPolicy
	CacheTTL              time.Duration
	RequestTimeout        time.Duration
	VerifyModel           bool
	Defaults              llm.Options
}

func DefaultConfig(model string) Config {
	return Config{
		Model:                 model,
		RequestsPerMinute:     500,
		MaxConcurrentRequests: 50,
		Retry:                 DefaultRetryPolicy(),
		CacheTTL:              30 * time.Second,
		RequestTimeout:        25 * time.Second,
		VerifyModel:           true,
		Defaults:              llm.Options{Temperature: 0.7, MaxTokens: 150, TopP: 0.9},
	}
}

// ConfigFrom maps the env-driven settings onto a client Config.
func ConfigFrom(model string, cfg config.CompletionConfig) Config {
	return Config{
		Model:                 model,
		RequestsPerMinute:     cfg.RequestsPerMinute,
		MaxConcurrentRequests: cfg.MaxConcurrentRequests,
		Retry: RetryPolicy{
			MaxRetries: cfg.MaxRetries,
			BaseDelay:  cfg.BaseDelay,
			MaxDelay:   cfg.MaxDelay,
			Multiplier: cfg.BackoffMultiplier,
			Delays: map[ErrorClass]time.Duration{
				ClassRateLimited: cfg.RateLimitDelay,
				ClassServer:      cfg.ServerErrorDelay,
			},
		},
		CacheTTL:       cfg.CacheTTL,
		RequestTimeout: cfg.RequestTimeout,
		VerifyModel:    cfg.VerifyModel,
		Defaults:       llm.Options{Temperature: cfg.Temperature, MaxTokens: cfg.MaxTokens, TopP: cfg.TopP},
	}
}

type Status struct {
	Model          string `json:"model"`
	QueueLength    int    `json:"queueLength"`
	ActiveRequests int    `json:"activeRequests"`
	RecentRequests int    `json:"recentRequests"`
}

type ModelReport struct {
	Requested string `json:"requested"`
	Actual    string `json:"actual"`
	Echoed    bool   `json:"echoed"`
	Match     bool   `json:"match"`
}

type Client struct {
	provider llm.LLMProvider
	cfg      Config
	clock    Clock
	logger   logger.ILogger
	cache    *cache.Cache
	queue    *queue
	window   *rateWindow
}

type ClientOption func(*Client)

func WithClock(clock Clock) ClientOption {
	return func(c *Client) {
		c.clock = clock
	}
}

func NewClient(provider llm.LLMProvider, cfg Config, log logger.ILogger, opts ...ClientOption) *Client {
	c := &Client{
		provider: provider,
		cfg:      cfg,
		clock:    realClock{},
		logger:   log,
		queue:    newQueue(cfg.MaxConcurrentRequests),
	}
	for _, o := range opts {
		o(c)
	}
	if cfg.CacheTTL > 0 {
		c.cache = cache.New(cfg.CacheTTL, 2*cfg.CacheTTL)
	}
	c.window = newRateWindow(cfg.RequestsPerMinute, c.clock)
	return c
}

func (c *Client) Model() string {
	return c.cfg.Model
}

// Complete sends messages through the normal lane.
func (c *Client) Complete(ctx context.Context, messages []llm.Message, options ...llm.Option) (string, error) {
	return c.complete(ctx, false, messages, options)
}

// CompleteWithPriority jumps ahead of every normal waiter.
func (c *Client) CompleteWithPriority(ctx context.Context, messages []llm.Message, options ...llm.Option) (string, error) {
	return c.complete(ctx, true, messages, options)
}

func (c *Client) complete(ctx context.Context, high bool, messages []llm.Message, options []llm.Option) (string, error) {
	if len(messages) == 0 {
		return "", &Error{Kind: ErrRejected, Err: errors.New("no messages")}
	}

	opts := c.resolve(options)
	key := cacheKey(messages[len(messages)-1], opts)
	if c.cache != nil {
		if v, ok := c.cache.Get(key); ok {
			c.logger.Debug(module, "Cache hit", map[string]interface{}{"model": opts.Model})
			return v.(string), nil
		}
	}

	if err := c.queue.acquire(ctx, high); err != nil {
		return "", fmt.Errorf("waiting for completion slot: %w", err)
	}
	defer c.queue.release()

	text, err := c.executeWithRetry(ctx, messages, opts)
	if err != nil {
		return "", err
	}

	if c.cache != nil {
		c.cache.SetDefault(key, text)
	}
	return text, nil
}

func (c *Client) resolve(options []llm.Option) llm.Options {
	opts := llm.Resolve(c.cfg.Defaults, options...)
	if opts.Model == "" {
		opts.Model = c.cfg.Model
	}
	return opts
}

func (c *Client) executeWithRetry(ctx context.Context, messages []llm.Message, opts llm.Options) (string, error) {
	policy := c.cfg.Retry
	attempts := policy.Attempts()

	for attempt := 1; ; attempt++ {
		if err := c.window.wait(ctx); err != nil {
			return "", fmt.Errorf("waiting for rate limit window: %w", err)
		}

		res, err := c.attempt(ctx, messages, opts)
		if err == nil {
			if mismatch := c.checkModel(opts.Model, res.Model); mismatch != nil {
				c.logger.Error(module, "Model mismatch", map[string]interface{}{
					"requested": mismatch.Requested,
					"actual":    mismatch.Actual,
					"error":     mismatch.Error(),
				})
				return "", &Error{Kind: ErrModelMismatch, Attempts: attempt, Err: mismatch}
			}
			return res.Text, nil
		}

		// Caller gave up; the failure is theirs, not the backend's.
		if ctx.Err() != nil {
			return "", fmt.Errorf("completion aborted: %w", ctx.Err())
		}

		class := Classify(err)
		if !policy.Retryable(class) || attempt >= attempts {
			c.logger.Error(module, "Completion failed", map[string]interface{}{
				"class":    class.String(),
				"attempts": attempt,
				"error":    err.Error(),
			})
			return "", &Error{Kind: class.kind(), Attempts: attempt, StatusCode: statusCode(err), Err: err}
		}

		delay := policy.Delay(class, attempt)
		c.logger.Warn(module, "Retrying completion", map[string]interface{}{
			"class":    class.String(),
			"attempt":  attempt,
			"delay_ms": delay.Milliseconds(),
			"error":    err.Error(),
		})

		select {
		case <-c.clock.After(delay):
		case <-ctx.Done():
			return "", fmt.Errorf("completion aborted: %w", ctx.Err())
		}
	}
}

func (c *Client) attempt(ctx context.Context, messages []llm.Message, opts llm.Options) (*llm.Completion, error) {
	if c.cfg.RequestTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.cfg.RequestTimeout)
		defer cancel()
	}
	return c.provider.Chat(ctx, messages,
		llm.WithModel(opts.Model),
		llm.WithTemperature(opts.Temperature),
		llm.WithMaxTokens(opts.MaxTokens),
		llm.WithTopP(opts.TopP),
	)
}

func (c *Client) checkModel(requested, actual string) *ModelMismatchError {
	if !c.cfg.VerifyModel {
		return nil
	}
	if actual == "" {
		c.logger.Warn(module, "Backend did not echo a model name", map[string]interface{}{"requested": requested})
		return nil
	}
	if modelMatches(requested, actual) {
		return nil
	}
	return &ModelMismatchError{Requested: requested, Actual: actual}
}

// modelMatches accepts dated snapshots of the requested alias,
// e.g. "gpt-4o" answered by "gpt-4o-2024-08-06".
func modelMatches(requested, actual string) bool {
	req := strings.TrimPrefix(strings.ToLower(requested), "models/")
	act := strings.TrimPrefix(strings.ToLower(actual), "models/")
	if req == act {
		return true
	}
	req = strings.TrimSuffix(req, "-latest")
	return strings.HasPrefix(act, req+"-") || act == req
}

func (c *Client) Status() Status {
	waiting, active := c.queue.stats()
	return Status{
		Model:          c.cfg.Model,
		QueueLength:    waiting,
		ActiveRequests: active,
		RecentRequests: c.window.recent(),
	}
}

// ClearQueue fails every request still waiting for a slot.
func (c *Client) ClearQueue() int {
	n := c.queue.clear(ErrQueueCleared)
	if n > 0 {
		c.logger.Warn(module, "Queue cleared", map[string]interface{}{"dropped": n})
	}
	return n
}

// VerifyModel sends a tiny probe and reports which model actually answered.
// It goes through the queue and rate window but skips cache and retries.
func (c *Client) VerifyModel(ctx context.Context) (*ModelReport, error) {
	if err := c.queue.acquire(ctx, true); err != nil {
		return nil, fmt.Errorf("waiting for completion slot: %w", err)
	}
	defer c.queue.release()

	if err := c.window.wait(ctx); err != nil {
		return nil, fmt.Errorf("waiting for rate limit window: %w", err)
	}

	opts := c.resolve([]llm.Option{llm.WithMaxTokens(5), llm.WithTemperature(0)})
	res, err := c.attempt(ctx, []llm.Message{llm.User("Reply with the single word OK.")}, opts)
	if err != nil {
		class := Classify(err)
		return nil, &Error{Kind: class.kind(), Attempts: 1, StatusCode: statusCode(err), Err: err}
	}

	report := &ModelReport{
		Requested: opts.Model,
		Actual:    res.Model,
		Echoed:    res.Model != "",
		Match:     res.Model == "" || modelMatches(opts.Model, res.Model),
	}
	c.logger.Info(module, "Model verification", map[string]interface{}{
		"requested": report.Requested,
		"actual":    report.Actual,
		"match":     report.Match,
	})
	return report, nil
}

func cacheKey(last llm.Message, opts llm.Options) string {
	payload, _ := json.Marshal(struct {
		Message llm.Message `json:"message"`
		Options llm.Options `json:"options"`
	}{last, opts})
	sum := sha256.Sum256(payload)
	return hex.EncodeToString(sum[:])
}
