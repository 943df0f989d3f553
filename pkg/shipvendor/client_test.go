package shipvendor_test

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/shipconnect/pkg/environment"
	"github.com/dmitrymomot/shipconnect/pkg/reqctx"
	"github.com/dmitrymomot/shipconnect/pkg/retry"
	"github.com/dmitrymomot/shipconnect/pkg/shipvendor"
)

type recordedSleep struct {
	mu     sync.Mutex
	delays []time.Duration
}

func (r *recordedSleep) sleep(ctx context.Context, d time.Duration) error {
	r.mu.Lock()
	r.delays = append(r.delays, d)
	r.mu.Unlock()
	return ctx.Err()
}

type vendorRequest struct {
	Method string
	Path   string
	Query  string
	Header http.Header
	Body   map[string]any
}

// fakeVendor answers each request with the next handler; the last one repeats.
type fakeVendor struct {
	server   *httptest.Server
	calls    atomic.Int32
	mu       sync.Mutex
	requests []vendorRequest
	replies  []func(w http.ResponseWriter)
}

func newFakeVendor(t *testing.T, replies ...func(w http.ResponseWriter)) *fakeVendor {
	t.Helper()
	fv := &fakeVendor{replies: replies}
	fv.server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		n := int(fv.calls.Add(1))

		req := vendorRequest{Method: r.Method, Path: r.URL.Path, Query: r.URL.RawQuery, Header: r.Header.Clone()}
		if b, _ := io.ReadAll(r.Body); len(b) > 0 {
			_ = json.Unmarshal(b, &req.Body)
		}
		fv.mu.Lock()
		fv.requests = append(fv.requests, req)
		fv.mu.Unlock()

		fv.replies[min(n, len(fv.replies))-1](w)
	}))
	t.Cleanup(fv.server.Close)
	return fv
}

func (fv *fakeVendor) lastRequest() vendorRequest {
	fv.mu.Lock()
	defer fv.mu.Unlock()
	return fv.requests[len(fv.requests)-1]
}

func status(code int) func(w http.ResponseWriter) {
	return func(w http.ResponseWriter) {
		w.WriteHeader(code)
		_, _ = w.Write([]byte(`{"error":"upstream says no"}`))
	}
}

func session(id string, st shipvendor.SessionStatus) func(w http.ResponseWriter) {
	return func(w http.ResponseWriter) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(shipvendor.CheckoutSession{ID: id, Status: st, CartID: "cart-1"})
	}
}

func newClient(fv *fakeVendor, sleep *recordedSleep, opts ...shipvendor.Option) *shipvendor.Client {
	cfg := shipvendor.Config{
		APIKey:  "vendor-key",
		BaseURL: fv.server.URL + "/",
	}
	return shipvendor.New(cfg, append([]shipvendor.Option{shipvendor.WithSleep(sleep.sleep)}, opts...)...)
}

func TestCreateCheckoutSession(t *testing.T) {
	t.Parallel()

	t.Run("success", func(t *testing.T) {
		t.Parallel()
		fv := newFakeVendor(t, session("cs_1", shipvendor.StatusOpen))
		c := newClient(fv, &recordedSleep{})

		got, err := c.CreateCheckoutSession(context.Background(), shipvendor.CreateSessionRequest{
			CartID:   "cart-1",
			Currency: "EUR",
			Items:    []shipvendor.LineItem{{SKU: "sku-1", Name: "Mug", Quantity: 2, UnitPrice: 1299}},
		})
		require.NoError(t, err)
		assert.Equal(t, "cs_1", got.ID)
		assert.Equal(t, shipvendor.StatusOpen, got.Status)

		req := fv.lastRequest()
		assert.Equal(t, http.MethodPost, req.Method)
		assert.Equal(t, "/session.create", req.Path)
		assert.Equal(t, "Bearer vendor-key", req.Header.Get("Authorization"))
		assert.Equal(t, "cart-1", req.Body["cart_id"])
	})

	t.Run("server errors exhaust the attempts", func(t *testing.T) {
		t.Parallel()
		fv := newFakeVendor(t, status(http.StatusInternalServerError))
		sleep := &recordedSleep{}
		c := newClient(fv, sleep)

		_, err := c.CreateCheckoutSession(context.Background(), shipvendor.CreateSessionRequest{CartID: "cart-1"})
		require.Error(t, err)
		assert.Equal(t, int32(5), fv.calls.Load())

		var te *retry.TerminalError
		require.ErrorAs(t, err, &te)
		assert.Equal(t, 5, te.Attempts)
		assert.Contains(t, err.Error(), "shipping vendor request failed: session.create")
		assert.Len(t, te.Chain(), 5)
		assert.Equal(t, []time.Duration{time.Second, 2 * time.Second, 4 * time.Second, 5 * time.Second}, sleep.delays)

		var apiErr *shipvendor.APIError
		require.ErrorAs(t, err, &apiErr)
		assert.Equal(t, http.StatusInternalServerError, apiErr.Status)
	})

	t.Run("client error is returned after one attempt", func(t *testing.T) {
		t.Parallel()
		fv := newFakeVendor(t, status(http.StatusUnauthorized))
		sleep := &recordedSleep{}
		c := newClient(fv, sleep)

		_, err := c.CreateCheckoutSession(context.Background(), shipvendor.CreateSessionRequest{CartID: "cart-1"})
		require.Error(t, err)
		assert.Equal(t, int32(1), fv.calls.Load())
		assert.Empty(t, sleep.delays)

		apiErr, ok := err.(*shipvendor.APIError)
		require.True(t, ok, "original error is returned unwrapped")
		assert.Equal(t, shipvendor.OpCreate, apiErr.Operation)
		assert.Equal(t, http.StatusUnauthorized, apiErr.Status)
		assert.False(t, retry.IsExhausted(err))
	})

	t.Run("recovers after a transient failure", func(t *testing.T) {
		t.Parallel()
		fv := newFakeVendor(t, status(http.StatusBadGateway), session("cs_2", shipvendor.StatusOpen))
		c := newClient(fv, &recordedSleep{})

		got, err := c.CreateCheckoutSession(context.Background(), shipvendor.CreateSessionRequest{CartID: "cart-1"})
		require.NoError(t, err)
		assert.Equal(t, "cs_2", got.ID)
		assert.Equal(t, int32(2), fv.calls.Load())
	})
}

func TestPullCheckoutSession(t *testing.T) {
	t.Parallel()

	t.Run("polls while processing", func(t *testing.T) {
		t.Parallel()
		fv := newFakeVendor(t,
			session("cs_1", shipvendor.StatusProcessing),
			session("cs_1", shipvendor.StatusProcessing),
			session("cs_1", shipvendor.StatusCompleted),
		)
		c := newClient(fv, &recordedSleep{})

		got, err := c.PullCheckoutSession(context.Background(), "cs_1")
		require.NoError(t, err)
		assert.Equal(t, shipvendor.StatusCompleted, got.Status)
		assert.Equal(t, int32(3), fv.calls.Load())

		req := fv.lastRequest()
		assert.Equal(t, http.MethodGet, req.Method)
		assert.Equal(t, "/session.pull", req.Path)
		assert.Equal(t, "checkout_session_id=cs_1", req.Query)
	})

	t.Run("never settles", func(t *testing.T) {
		t.Parallel()
		fv := newFakeVendor(t, session("cs_1", shipvendor.StatusProcessing))
		c := newClient(fv, &recordedSleep{})

		_, err := c.PullCheckoutSession(context.Background(), "cs_1")
		var te *retry.TerminalError
		require.ErrorAs(t, err, &te)
		assert.ErrorIs(t, err, retry.ErrUnsuccessfulResult)
		assert.Contains(t, err.Error(), "session.pull")
	})

	t.Run("requires id", func(t *testing.T) {
		t.Parallel()
		fv := newFakeVendor(t, session("cs_1", shipvendor.StatusOpen))
		_, err := newClient(fv, &recordedSleep{}).PullCheckoutSession(context.Background(), "")
		assert.ErrorIs(t, err, shipvendor.ErrMissingID)
		assert.Zero(t, fv.calls.Load())
	})
}

func TestGetUpdateComplete(t *testing.T) {
	t.Parallel()

	fv := newFakeVendor(t, session("cs_9", shipvendor.StatusOpen))
	c := newClient(fv, &recordedSleep{})
	ctx := context.Background()

	_, err := c.GetCheckoutSession(ctx, "cs_9")
	require.NoError(t, err)
	req := fv.lastRequest()
	assert.Equal(t, "/session.get", req.Path)
	assert.Equal(t, "checkout_session_id=cs_9", req.Query)

	_, err = c.UpdateCheckoutSession(ctx, shipvendor.UpdateSessionRequest{
		CheckoutSessionID: "cs_9",
		Items:             []shipvendor.LineItem{{SKU: "a", Quantity: 1}},
	})
	require.NoError(t, err)
	req = fv.lastRequest()
	assert.Equal(t, http.MethodPost, req.Method)
	assert.Equal(t, "/session.update", req.Path)
	assert.Equal(t, "cs_9", req.Body["checkout_session_id"])

	_, err = c.CompleteCheckoutSession(ctx, "cs_9")
	require.NoError(t, err)
	req = fv.lastRequest()
	assert.Equal(t, "/session.complete", req.Path)
	assert.Equal(t, map[string]any{"checkout_session_id": "cs_9"}, req.Body)

	_, err = c.UpdateCheckoutSession(ctx, shipvendor.UpdateSessionRequest{})
	assert.ErrorIs(t, err, shipvendor.ErrMissingID)
}

func TestClient_CorrelationID(t *testing.T) {
	t.Parallel()

	fv := newFakeVendor(t, session("cs_1", shipvendor.StatusOpen))
	c := newClient(fv, &recordedSleep{})

	ctx := reqctx.New(context.Background(), reqctx.Data{RequestID: "r-1", CorrelationID: "corr-1"})
	_, err := c.GetCheckoutSession(ctx, "cs_1")
	require.NoError(t, err)
	assert.Equal(t, "corr-1", fv.lastRequest().Header.Get(reqctx.CorrelationIDHeader))
}

func TestClient_AttemptObserver(t *testing.T) {
	t.Parallel()

	fv := newFakeVendor(t, status(http.StatusServiceUnavailable), session("cs_1", shipvendor.StatusOpen))

	var mu sync.Mutex
	var outcomes []retry.Outcome
	c := newClient(fv, &recordedSleep{}, shipvendor.WithAttemptObserver(func(op string, a retry.Attempt) {
		assert.Equal(t, shipvendor.OpGet, op)
		mu.Lock()
		outcomes = append(outcomes, a.Outcome)
		mu.Unlock()
	}))

	_, err := c.GetCheckoutSession(context.Background(), "cs_1")
	require.NoError(t, err)
	assert.Equal(t, []retry.Outcome{retry.OutcomeRetry, retry.OutcomeSuccess}, outcomes)
}

func TestClient_NetworkErrorIsTransient(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	c := shipvendor.New(
		shipvendor.Config{APIKey: "k", BaseURL: url, MaxAttempts: 2},
		shipvendor.WithSleep((&recordedSleep{}).sleep),
	)
	_, err := c.GetCheckoutSession(context.Background(), "cs_1")

	var te *retry.TerminalError
	require.ErrorAs(t, err, &te)
	assert.Equal(t, 2, te.Attempts)
	assert.ErrorIs(t, err, retry.ErrExecutionFailed)
}

func TestClient_ContextCancelledDuringBackoff(t *testing.T) {
	t.Parallel()

	fv := newFakeVendor(t, status(http.StatusInternalServerError))
	ctx, cancel := context.WithCancel(context.Background())
	c := shipvendor.New(shipvendor.Config{APIKey: "k", BaseURL: fv.server.URL},
		shipvendor.WithAttemptObserver(func(string, retry.Attempt) { cancel() }),
	)

	_, err := c.GetCheckoutSession(ctx, "cs_1")
	assert.True(t, errors.Is(err, context.Canceled))
	assert.Equal(t, int32(1), fv.calls.Load())
}

func TestClient_KeepsSharedClientTimeout(t *testing.T) {
	t.Parallel()

	fv := newFakeVendor(t, session("cs_1", shipvendor.StatusOpen))
	shared := &http.Client{Timeout: 42 * time.Second}
	c := shipvendor.New(shipvendor.Config{APIKey: "k", BaseURL: fv.server.URL, Timeout: 3 * time.Second},
		shipvendor.WithHTTPClient(shared),
	)

	_, err := c.GetCheckoutSession(context.Background(), "cs_1")
	require.NoError(t, err)
	assert.Equal(t, 42*time.Second, shared.Timeout)
}

func TestBaseURLFor(t *testing.T) {
	t.Parallel()

	assert.Equal(t, shipvendor.DefaultHost+"/production", shipvendor.BaseURLFor(environment.Production))
	assert.Equal(t, shipvendor.DefaultHost+"/staging", shipvendor.BaseURLFor(environment.Staging))
	assert.Equal(t, shipvendor.DefaultHost+"/staging", shipvendor.BaseURLFor(environment.Development))
}
