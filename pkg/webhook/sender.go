package webhook

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/dmitrymomot/shipconnect/pkg/retry"
)

const (
	userAgent       = "shipconnect-webhook/1.0"
	maxErrorBodyLen = 200
)

// Sender delivers JSON webhooks over HTTP POST.
type Sender struct {
	client *resty.Client
}

// NewSender creates a sender with its own pooled HTTP client.
func NewSender() *Sender {
	return NewSenderWithClient(&http.Client{
		Transport: &http.Transport{
			Proxy:               http.ProxyFromEnvironment,
			MaxIdleConns:        100,
			MaxIdleConnsPerHost: 10,
			IdleConnTimeout:     90 * time.Second,
		},
	})
}

// NewSenderWithClient creates a sender on top of client.
func NewSenderWithClient(client *http.Client) *Sender {
	if client == nil {
		return NewSender()
	}
	return &Sender{
		client: resty.NewWithClient(client).
			SetHeader("User-Agent", userAgent).
			SetHeader("Content-Type", "application/json"),
	}
}

// Send posts data as JSON to webhookURL. []byte and json.RawMessage are sent as is.
//
// Network errors, timeouts, 5xx and 408/425/429 answers are retried with
// backoff. Any other 4xx stops immediately with ErrPermanentFailure. When all
// attempts fail the error wraps ErrDeliveryFailed and the *retry.TerminalError
// describing every attempt. The circuit breaker is consulted before every
// attempt; once it opens the remaining attempts are not sent and the error
// wraps ErrCircuitOpen.
func (s *Sender) Send(ctx context.Context, webhookURL string, data any, opts ...SendOption) error {
	payload, err := encodePayload(data)
	if err != nil {
		return err
	}
	u, err := validateURL(webhookURL)
	if err != nil {
		return err
	}

	o := defaultSendOptions()
	for _, opt := range opts {
		opt(o)
	}

	attempt := 0
	_, err = retry.Do(ctx, func(ctx context.Context) (DeliveryResult, error) {
		attempt++
		if o.breaker != nil && !o.breaker.Allow() {
			return DeliveryResult{Attempt: attempt}, errBreakerOpen
		}
		res, err := s.deliver(ctx, webhookURL, payload, o)
		res.Attempt = attempt

		if o.onDelivery != nil {
			o.onDelivery(res)
		}
		if o.breaker != nil {
			if err == nil {
				o.breaker.RecordSuccess()
			} else {
				o.breaker.RecordFailure()
			}
		}
		return res, err
	}, retry.Config[DeliveryResult]{
		MaxAttempts:     o.maxRetries + 1,
		Backoff:         o.backoff,
		TerminalMessage: "delivery to " + u.Host,
	})
	if err == nil {
		return nil
	}

	if errors.Is(err, ErrCircuitOpen) {
		if attempt == 1 {
			return ErrCircuitOpen
		}
		return fmt.Errorf("%w after %d attempts: %w", ErrDeliveryFailed, attempt-1, ErrCircuitOpen)
	}
	if retry.IsExhausted(err) {
		return fmt.Errorf("%w: %w", ErrDeliveryFailed, err)
	}
	return fmt.Errorf("%w: %w", ErrPermanentFailure, err)
}

func (s *Sender) deliver(ctx context.Context, webhookURL string, payload []byte, o *sendOptions) (DeliveryResult, error) {
	start := time.Now()
	var res DeliveryResult

	reqCtx, cancel := context.WithTimeout(ctx, o.timeout)
	defer cancel()

	req := s.client.R().
		SetContext(reqCtx).
		SetHeaders(o.headers).
		SetBody(payload)

	if o.secret != "" {
		sig, err := Sign(o.secret, payload, time.Now())
		if err != nil {
			res.Error = err
			return res, err
		}
		sig.Apply(req.Header)
	}

	resp, err := req.Post(webhookURL)
	res.Duration = time.Since(start)
	if err != nil {
		if errors.Is(reqCtx.Err(), context.DeadlineExceeded) {
			err = fmt.Errorf("%w: %w", ErrTimeout, err)
		} else {
			err = fmt.Errorf("%w: %w", ErrTemporaryFailure, err)
		}
		res.Error = err
		return res, err
	}

	res.StatusCode = resp.StatusCode()
	if resp.IsSuccess() {
		res.Success = true
		return res, nil
	}

	res.Error = &StatusError{Code: resp.StatusCode(), Body: truncateBody(resp.Body())}
	return res, res.Error
}

func encodePayload(data any) ([]byte, error) {
	var payload []byte
	switch v := data.(type) {
	case []byte:
		payload = v
	case json.RawMessage:
		payload = v
	default:
		b, err := json.Marshal(data)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrInvalidPayload, err)
		}
		payload = b
	}
	if len(payload) == 0 {
		return nil, fmt.Errorf("%w: payload cannot be empty", ErrInvalidPayload)
	}
	return payload, nil
}

func validateURL(raw string) (*url.URL, error) {
	if raw == "" {
		return nil, fmt.Errorf("%w: URL is required", ErrInvalidURL)
	}
	u, err := url.Parse(raw)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidURL, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("%w: only http and https schemes are supported", ErrInvalidURL)
	}
	if u.Host == "" {
		return nil, fmt.Errorf("%w: host is required", ErrInvalidURL)
	}
	return u, nil
}

func truncateBody(b []byte) string {
	s := strings.ReplaceAll(string(b), "\n", " ")
	if len(s) > maxErrorBodyLen {
		s = s[:maxErrorBodyLen] + "..."
	}
	return s
}
