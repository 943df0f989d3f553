package shipvendor

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/dmitrymomot/shipconnect/pkg/logger"
	"github.com/dmitrymomot/shipconnect/pkg/reqctx"
	"github.com/dmitrymomot/shipconnect/pkg/retry"
)

// Operation names, used as terminal messages, log and metric labels.
const (
	OpCreate   = "session.create"
	OpPull     = "session.pull"
	OpGet      = "session.get"
	OpUpdate   = "session.update"
	OpComplete = "session.complete"
)

const maxLoggedBody = 512

// AttemptObserver is told about every attempt of every operation.
type AttemptObserver func(operation string, a retry.Attempt)

// Client calls the shipping vendor's checkout session endpoints.
// Every call runs under the retry engine: statuses below 500 fail at once,
// 5xx and network errors are retried with backoff.
type Client struct {
	cfg      Config
	http     *resty.Client
	logger   *slog.Logger
	observer AttemptObserver
	sleep    func(ctx context.Context, d time.Duration) error
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient sets the underlying HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.http = newResty(hc, c.cfg)
		}
	}
}

func WithLogger(l *slog.Logger) Option {
	return func(c *Client) {
		if l != nil {
			c.logger = l
		}
	}
}

// WithAttemptObserver registers fn for attempt metrics.
func WithAttemptObserver(fn AttemptObserver) Option {
	return func(c *Client) {
		c.observer = fn
	}
}

// WithSleep replaces the backoff sleep, for tests.
func WithSleep(fn func(ctx context.Context, d time.Duration) error) Option {
	return func(c *Client) {
		c.sleep = fn
	}
}

// New creates a vendor client.
func New(cfg Config, opts ...Option) *Client {
	c := &Client{
		cfg:    cfg,
		http:   newResty(&http.Client{}, cfg),
		logger: logger.Discard(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// newResty wraps a copy of hc, since SetTimeout writes to the wrapped client.
func newResty(hc *http.Client, cfg Config) *resty.Client {
	clone := *hc
	return resty.NewWithClient(&clone).
		SetBaseURL(cfg.baseURL()).
		SetTimeout(cfg.timeout()).
		SetAuthToken(cfg.APIKey).
		SetHeader("Accept", "application/json")
}

// CreateCheckoutSession opens a checkout session for a cart.
func (c *Client) CreateCheckoutSession(ctx context.Context, in CreateSessionRequest) (*CheckoutSession, error) {
	return call(ctx, c, OpCreate, nil, func(r *resty.Request) (*resty.Response, error) {
		return r.SetBody(in).Post("/session.create")
	})
}

// PullCheckoutSession polls a session until the vendor has finished processing it.
// A session still in the processing state counts as an unsuccessful attempt.
func (c *Client) PullCheckoutSession(ctx context.Context, id string) (*CheckoutSession, error) {
	if id == "" {
		return nil, ErrMissingID
	}
	ready := func(s *CheckoutSession) bool { return s.Status != StatusProcessing }
	return call(ctx, c, OpPull, ready, func(r *resty.Request) (*resty.Response, error) {
		return r.SetQueryParam("checkout_session_id", id).Get("/session.pull")
	})
}

// GetCheckoutSession fetches the current state of a session.
func (c *Client) GetCheckoutSession(ctx context.Context, id string) (*CheckoutSession, error) {
	if id == "" {
		return nil, ErrMissingID
	}
	return call(ctx, c, OpGet, nil, func(r *resty.Request) (*resty.Response, error) {
		return r.SetQueryParam("checkout_session_id", id).Get("/session.get")
	})
}

// UpdateCheckoutSession replaces the cart data of an open session.
func (c *Client) UpdateCheckoutSession(ctx context.Context, in UpdateSessionRequest) (*CheckoutSession, error) {
	if in.CheckoutSessionID == "" {
		return nil, ErrMissingID
	}
	return call(ctx, c, OpUpdate, nil, func(r *resty.Request) (*resty.Response, error) {
		return r.SetBody(in).Post("/session.update")
	})
}

// CompleteCheckoutSession marks a session as completed.
func (c *Client) CompleteCheckoutSession(ctx context.Context, id string) (*CheckoutSession, error) {
	if id == "" {
		return nil, ErrMissingID
	}
	return call(ctx, c, OpComplete, nil, func(r *resty.Request) (*resty.Response, error) {
		return r.SetBody(completeSessionRequest{CheckoutSessionID: id}).Post("/session.complete")
	})
}

func call(
	ctx context.Context,
	c *Client,
	operation string,
	predicate func(*CheckoutSession) bool,
	send func(*resty.Request) (*resty.Response, error),
) (*CheckoutSession, error) {
	cfg := retryConfig[*CheckoutSession](c.cfg, operation)
	cfg.SuccessPredicate = predicate
	cfg.Sleep = c.sleep
	cfg.OnAttempt = func(a retry.Attempt) { c.onAttempt(ctx, operation, a) }

	return retry.Do(ctx, func(ctx context.Context) (*CheckoutSession, error) {
		req := c.http.R().SetContext(ctx)
		if id := reqctx.CorrelationID(ctx); id != "" {
			req.SetHeader(reqctx.CorrelationIDHeader, id)
		}

		resp, err := send(req)
		if err != nil {
			return nil, fmt.Errorf("shipping vendor %s: %w", operation, err)
		}
		if !resp.IsSuccess() {
			return nil, &APIError{Operation: operation, Status: resp.StatusCode(), Body: string(resp.Body())}
		}

		var out CheckoutSession
		if err := json.Unmarshal(resp.Body(), &out); err != nil {
			return nil, fmt.Errorf("shipping vendor %s: decode response: %w", operation, err)
		}
		return &out, nil
	}, cfg)
}

func (c *Client) onAttempt(ctx context.Context, operation string, a retry.Attempt) {
	if c.observer != nil {
		c.observer(operation, a)
	}

	attrs := []any{logger.Operation(operation), logger.Attempt(a.Number)}
	switch a.Outcome {
	case retry.OutcomeRetry:
		c.logger.WarnContext(ctx, "shipping vendor attempt failed, retrying",
			append(attrs, logger.Delay(a.Delay), logger.Error(a.Err))...)
	case retry.OutcomeExhausted:
		c.logger.ErrorContext(ctx, "shipping vendor retries exhausted",
			append(attrs, logger.Error(a.Err))...)
	case retry.OutcomeTerminal:
		attrs = append(attrs, logger.Error(a.Err))
		if apiErr, ok := a.Err.(*APIError); ok {
			attrs = append(attrs, logger.StatusCode(apiErr.Status), slog.String("body", truncate(apiErr.Body)))
		}
		c.logger.ErrorContext(ctx, "shipping vendor rejected request", attrs...)
	}
}

func truncate(s string) string {
	if len(s) > maxLoggedBody {
		return s[:maxLoggedBody] + "..."
	}
	return s
}
