package classifier

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/JonnyWalker81/lifeline/internal/logger"
	"github.com/JonnyWalker81/lifeline/internal/metrics"
	"github.com/sony/gobreaker"
	"golang.org/x/time/rate"
)

const (
	DefaultAPIURL = "https://api-inference.huggingface.co/models/"
	DefaultModel  = "facebook/bart-large-mnli"

	maxResponseBytes = 1 << 20
)

// Config configures the HuggingFace inference client.
type Config struct {
	APIURL string
	Model  string
	Token  string

	Timeout time.Duration
	// MaxRetries is the number of attempts after the first one.
	MaxRetries int
	// RetryWait is the base back-off; it doubles with every retry.
	RetryWait time.Duration
	// ModelLoadingWait is how long to wait when the model is still loading (503).
	ModelLoadingWait time.Duration

	// RateLimit is the sustained number of requests per second.
	RateLimit float64
	Burst     int
}

// DefaultConfig returns the settings used against the public inference API.
func DefaultConfig() Config {
	return Config{
		APIURL:           DefaultAPIURL,
		Model:            DefaultModel,
		Timeout:          30 * time.Second,
		MaxRetries:       2,
		RetryWait:        5 * time.Second,
		ModelLoadingWait: 10 * time.Second,
		RateLimit:        5,
		Burst:            5,
	}
}

type hfRequest struct {
	Inputs     string       `json:"inputs"`
	Parameters hfParameters `json:"parameters"`
}

type hfParameters struct {
	CandidateLabels []string `json:"candidate_labels"`
}

type hfResponse struct {
	Labels []string  `json:"labels"`
	Scores []float64 `json:"scores"`
}

// retryableError marks a failure worth another attempt.
type retryableError struct {
	err  error
	wait time.Duration
}

func (e *retryableError) Error() string { return e.err.Error() }
func (e *retryableError) Unwrap() error { return e.err }

// APIError is a non-retryable answer from the service, such as a rejected
// input or a bad token.
type APIError struct {
	StatusCode int
	Body       string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("API error (%d): %s", e.StatusCode, e.Body)
}

// Client calls the HuggingFace zero-shot classification endpoint. Calls are
// rate limited, retried on transient failures and guarded by a circuit
// breaker so a failing service is not hammered by batch jobs.
type Client struct {
	cfg        Config
	endpoint   string
	httpClient *http.Client
	limiter    *rate.Limiter
	breaker    *gobreaker.CircuitBreaker
	metrics    *metrics.Metrics
}

// NewClient builds a client. m may be nil.
func NewClient(cfg Config, m *metrics.Metrics) *Client {
	defaults := DefaultConfig()
	if cfg.APIURL == "" {
		cfg.APIURL = defaults.APIURL
	}
	if cfg.Model == "" {
		cfg.Model = defaults.Model
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaults.Timeout
	}
	if cfg.MaxRetries < 0 {
		cfg.MaxRetries = 0
	}
	if cfg.RateLimit <= 0 {
		cfg.RateLimit = defaults.RateLimit
	}
	if cfg.Burst <= 0 {
		cfg.Burst = defaults.Burst
	}

	c := &Client{
		cfg:        cfg,
		endpoint:   strings.TrimRight(cfg.APIURL, "/") + "/" + cfg.Model,
		httpClient: &http.Client{Timeout: cfg.Timeout},
		limiter:    rate.NewLimiter(rate.Limit(cfg.RateLimit), cfg.Burst),
		metrics:    m,
	}

	c.breaker = gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        "huggingface",
		MaxRequests: 3,
		Interval:    time.Minute,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			failureRatio := float64(counts.TotalFailures) / float64(counts.Requests)
			return counts.Requests >= 3 && failureRatio >= 0.6
		},
		IsSuccessful: breakerSuccess,
		OnStateChange: func(name string, from gobreaker.State, to gobreaker.State) {
			logger.Warn("Circuit breaker state changed",
				logger.String("breaker", name),
				logger.String("from", from.String()),
				logger.String("to", to.String()),
			)
			c.metrics.SetBreakerState(int(to))
		},
	})

	return c
}

// Classify sends text to the model and returns the best label.
func (c *Client) Classify(ctx context.Context, text string, labels []string) (*Prediction, error) {
	if strings.TrimSpace(text) == "" {
		c.metrics.RecordClassifierRequest("empty", 0)
		return nil, ErrEmptyText
	}
	if len(labels) == 0 {
		return nil, errors.New("no candidate labels")
	}

	start := time.Now()
	result, err := c.breaker.Execute(func() (interface{}, error) {
		return c.classifyWithRetry(ctx, text, labels)
	})
	elapsed := time.Since(start)

	if err != nil {
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			c.metrics.RecordClassifierRequest("circuit_open", elapsed)
			return nil, ErrCircuitOpen
		}
		c.metrics.RecordClassifierRequest("error", elapsed)
		return nil, err
	}

	c.metrics.RecordClassifierRequest("success", elapsed)
	return result.(*Prediction), nil
}

func (c *Client) classifyWithRetry(ctx context.Context, text string, labels []string) (*Prediction, error) {
	var lastErr error
	for attempt := 0; attempt <= c.cfg.MaxRetries; attempt++ {
		if attempt > 0 {
			backoff := c.cfg.RetryWait * time.Duration(1<<(attempt-1))
			var re *retryableError
			if errors.As(lastErr, &re) && re.wait > 0 {
				backoff = re.wait
			}

			logger.Ctx(ctx).Debug("retrying classifier request",
				logger.Int("attempt", attempt),
				logger.Duration("backoff", backoff),
				logger.Err(lastErr),
			)

			select {
			case <-time.After(backoff):
			case <-ctx.Done():
				return nil, ctx.Err()
			}
		}

		if err := c.limiter.Wait(ctx); err != nil {
			return nil, fmt.Errorf("rate limiter error: %w", err)
		}

		pred, err := c.doRequest(ctx, text, labels)
		if err == nil {
			return pred, nil
		}
		lastErr = err

		var re *retryableError
		if !errors.As(err, &re) {
			return nil, err
		}
	}

	return nil, fmt.Errorf("classifier request failed after %d attempts: %w", c.cfg.MaxRetries+1, lastErr)
}

func (c *Client) doRequest(ctx context.Context, text string, labels []string) (*Prediction, error) {
	body, err := json.Marshal(hfRequest{
		Inputs:     text,
		Parameters: hfParameters{CandidateLabels: labels},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.cfg.Token != "" {
		req.Header.Set("Authorization", "Bearer "+c.cfg.Token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, &retryableError{err: fmt.Errorf("API request failed: %w", err)}
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, &retryableError{err: fmt.Errorf("failed to read response: %w", err)}
	}

	switch {
	case resp.StatusCode == http.StatusServiceUnavailable:
		return nil, &retryableError{
			err:  fmt.Errorf("model is loading (503)"),
			wait: c.cfg.ModelLoadingWait,
		}
	case resp.StatusCode == http.StatusTooManyRequests:
		return nil, &retryableError{err: fmt.Errorf("rate limited (429)")}
	case resp.StatusCode >= 500:
		return nil, &retryableError{err: fmt.Errorf("server error (%d): %s", resp.StatusCode, string(respBody))}
	case resp.StatusCode != http.StatusOK:
		return nil, &APIError{StatusCode: resp.StatusCode, Body: string(respBody)}
	}

	var out hfResponse
	if err := json.Unmarshal(respBody, &out); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidResponse, err)
	}
	return predictionFrom(out)
}

// breakerSuccess decides which outcomes count against the service. Client
// errors and caller cancellations say nothing about its health; transport
// failures, exhausted retries on 429 and 5xx, and unusable bodies do.
func breakerSuccess(err error) bool {
	if err == nil {
		return true
	}
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.StatusCode < http.StatusInternalServerError
	}
	return errors.Is(err, context.Canceled)
}

func predictionFrom(out hfResponse) (*Prediction, error) {
	if len(out.Labels) == 0 || len(out.Labels) != len(out.Scores) {
		return nil, fmt.Errorf("%w: %d labels and %d scores", ErrInvalidResponse, len(out.Labels), len(out.Scores))
	}

	pred := &Prediction{AllPredictions: make(map[string]float64, len(out.Labels))}
	for i, label := range out.Labels {
		score := out.Scores[i]
		pred.AllPredictions[label] = score
		if i == 0 || score > pred.Score {
			pred.Label = label
			pred.Score = score
		}
	}
	return pred, nil
}
