package intake

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

	"github.com/Geniuskaa/quran_fest/internal/config"
	"github.com/Geniuskaa/quran_fest/pkg/metrics"
	"github.com/cenkalti/backoff/v4"
	"github.com/sony/gobreaker"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

const (
	MAX_ACK_SIZE = 64 << 10

	// Consecutive failed sends before the breaker opens.
	BREAKER_THRESHOLD = 5
	BREAKER_TIMEOUT   = 30 * time.Second
)

var (
	ErrRejected    = errors.New("intake rejected the registration")
	ErrUnavailable = errors.New("intake is unavailable")
)

// ack is what the intake script answers with, e.g. {"result":"success"}.
type ack struct {
	Result  string `json:"result"`
	Status  string `json:"status"`
	Error   string `json:"error"`
	Message string `json:"message"`
}

type Client struct {
	url             string
	http            *http.Client
	maxRetries      uint64
	requireAck      bool
	initialInterval time.Duration
	breaker         *gobreaker.CircuitBreaker
	logger          *zap.Logger
	metrics         *metrics.Metrics
	tracer          trace.Tracer
}

type Option func(*Client)

// WithHTTPClient replaces the default client built from the intake timeout.
func WithHTTPClient(c *http.Client) Option {
	return func(cl *Client) { cl.http = c }
}

func WithInitialInterval(d time.Duration) Option {
	return func(cl *Client) { cl.initialInterval = d }
}

func NewClient(conf config.Intake, logger *zap.Logger, m *metrics.Metrics, opts ...Option) *Client {
	c := &Client{
		url:             conf.URL,
		http:            &http.Client{Timeout: conf.Timeout()},
		maxRetries:      conf.MaxRetries,
		requireAck:      conf.RequireAck,
		initialInterval: 500 * time.Millisecond,
		logger:          logger,
		metrics:         m,
		tracer:          otel.Tracer("intake"),
	}
	for _, o := range opts {
		o(c)
	}

	c.breaker = gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:    "intake",
		Timeout: BREAKER_TIMEOUT,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= BREAKER_THRESHOLD
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Warn("circuit breaker state changed",
				zap.String("breaker", name),
				zap.String("from", from.String()),
				zap.String("to", to.String()))
		},
	})

	return c
}

// Send posts body to the intake and waits for an explicit acknowledgement.
// Transport errors and 5xx answers are retried, rejections are not.
func (c *Client) Send(ctx context.Context, body []byte) error {
	ctx, span := c.tracer.Start(ctx, "intake.Send", trace.WithAttributes(
		attribute.Int("body.size", len(body)),
	))
	defer span.End()

	_, err := c.breaker.Execute(func() (interface{}, error) {
		return nil, c.sendWithRetry(ctx, body)
	})
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		err = fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "intake send failed")
		return err
	}
	return nil
}

func (c *Client) sendWithRetry(ctx context.Context, body []byte) error {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = c.initialInterval

	attempt := 0
	op := func() error {
		attempt++
		start := time.Now()
		err := c.post(ctx, body)
		switch {
		case err == nil:
			c.metrics.Intake(metrics.OUTCOME_ACCEPTED, time.Since(start))
			return nil
		case errors.Is(err, ErrRejected):
			c.metrics.Intake(metrics.OUTCOME_REJECTED, time.Since(start))
			return backoff.Permanent(err)
		default:
			c.metrics.Intake("error", time.Since(start))
			return err
		}
	}
	notify := func(err error, wait time.Duration) {
		c.logger.Warn("intake attempt failed, retrying",
			zap.Int("attempt", attempt),
			zap.Duration("wait", wait),
			zap.Error(err))
	}

	err := backoff.RetryNotify(op, backoff.WithContext(backoff.WithMaxRetries(b, c.maxRetries), ctx), notify)
	if err != nil {
		return fmt.Errorf("intake.Send failed after %d attempt(s): %w", attempt, err)
	}
	return nil
}

func (c *Client) post(ctx context.Context, body []byte) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(body))
	if err != nil {
		return backoff.Permanent(fmt.Errorf("http.NewRequestWithContext failed: %w", err))
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("c.http.Do failed: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, MAX_ACK_SIZE))
	if err != nil {
		return fmt.Errorf("io.ReadAll failed: %w", err)
	}

	switch {
	case resp.StatusCode >= 500:
		return fmt.Errorf("intake answered %d", resp.StatusCode)
	case resp.StatusCode >= 300:
		return fmt.Errorf("%w: status %d", ErrRejected, resp.StatusCode)
	}

	return c.checkAck(raw)
}

func (c *Client) checkAck(raw []byte) error {
	raw = bytes.TrimSpace(raw)

	var a ack
	if len(raw) == 0 || json.Unmarshal(raw, &a) != nil {
		if c.requireAck {
			return fmt.Errorf("%w: no acknowledgement in response", ErrRejected)
		}
		return nil
	}

	verdict := strings.ToLower(strings.TrimSpace(a.Result))
	if verdict == "" {
		verdict = strings.ToLower(strings.TrimSpace(a.Status))
	}

	switch verdict {
	case "success", "ok":
		return nil
	case "":
		if c.requireAck {
			return fmt.Errorf("%w: no acknowledgement in response", ErrRejected)
		}
		return nil
	}

	reason := a.Error
	if reason == "" {
		reason = a.Message
	}
	if reason == "" {
		reason = verdict
	}
	return fmt.Errorf("%w: %s", ErrRejected, reason)
}
