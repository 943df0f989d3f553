package retry_test

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/shipconnect/pkg/retry"
)

type statusError struct {
	code int
}

func (e *statusError) Error() string   { return fmt.Sprintf("upstream returned %d", e.code) }
func (e *statusError) StatusCode() int { return e.code }

// recordingSleep captures backoff delays without waiting.
type recordingSleep struct {
	mu     sync.Mutex
	delays []time.Duration
}

func (r *recordingSleep) sleep(ctx context.Context, d time.Duration) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.delays = append(r.delays, d)
	return ctx.Err()
}

func TestExecute_RetryBound(t *testing.T) {
	t.Parallel()

	errUpstream := errors.New("connection reset")

	for _, maxAttempts := range []int{1, 2, 5, 7} {
		t.Run(fmt.Sprintf("max attempts %d", maxAttempts), func(t *testing.T) {
			t.Parallel()

			var calls atomic.Int32
			rs := &recordingSleep{}

			_, err := retry.Do(context.Background(), func(context.Context) (string, error) {
				calls.Add(1)
				return "", errUpstream
			}, retry.Config[string]{
				MaxAttempts: maxAttempts,
				Sleep:       rs.sleep,
			})

			require.Error(t, err)
			assert.Equal(t, int32(maxAttempts), calls.Load())

			var terminal *retry.TerminalError
			require.ErrorAs(t, err, &terminal)
			assert.Equal(t, maxAttempts, terminal.Attempts)
			assert.Nil(t, terminal.Interrupted)

			links := 0
			for cur := terminal.Last; cur != nil; cur = cur.Previous() {
				links++
			}
			assert.Equal(t, maxAttempts, links)

			chain := terminal.Chain()
			require.Len(t, chain, maxAttempts)
			for i, attemptErr := range chain {
				assert.Equal(t, i+1, attemptErr.Attempt, "chain must be ordered oldest first")
				assert.ErrorIs(t, attemptErr, retry.ErrExecutionFailed)
				assert.ErrorIs(t, attemptErr, errUpstream)
			}
			assert.Nil(t, chain[0].Previous())

			assert.ErrorIs(t, err, errUpstream)
			assert.ErrorIs(t, err, retry.ErrExecutionFailed)
			assert.True(t, retry.IsExhausted(err))
			assert.Len(t, rs.delays, maxAttempts-1)
		})
	}
}

func TestExecute_TerminalShortCircuit(t *testing.T) {
	t.Parallel()

	for _, code := range []int{400, 401, 403, 404, 422, 499} {
		t.Run(fmt.Sprintf("status %d", code), func(t *testing.T) {
			t.Parallel()

			original := &statusError{code: code}
			var calls atomic.Int32

			_, err := retry.Do(context.Background(), func(context.Context) (int, error) {
				calls.Add(1)
				return 0, original
			}, retry.Config[int]{
				MaxAttempts: 5,
				Sleep:       (&recordingSleep{}).sleep,
			})

			assert.Equal(t, int32(1), calls.Load())
			assert.Same(t, original, err, "terminal errors must be returned unchanged")
			assert.False(t, retry.IsExhausted(err))
		})
	}
}

func TestExecute_TerminalAfterTransient(t *testing.T) {
	t.Parallel()

	original := &statusError{code: 409}
	var calls atomic.Int32

	_, err := retry.Do(context.Background(), func(context.Context) (int, error) {
		if calls.Add(1) < 3 {
			return 0, &statusError{code: 503}
		}
		return 0, original
	}, retry.Config[int]{
		MaxAttempts: 10,
		Sleep:       (&recordingSleep{}).sleep,
	})

	assert.Equal(t, int32(3), calls.Load())
	assert.Same(t, original, err)
}

func TestExecute_ServerErrorsAreTransient(t *testing.T) {
	t.Parallel()

	var calls atomic.Int32

	got, err := retry.Do(context.Background(), func(context.Context) (string, error) {
		if calls.Add(1) < 4 {
			return "", fmt.Errorf("wrapped: %w", &statusError{code: 500 + int(calls.Load())})
		}
		return "ok", nil
	}, retry.Config[string]{
		MaxAttempts: 5,
		Sleep:       (&recordingSleep{}).sleep,
	})

	require.NoError(t, err)
	assert.Equal(t, "ok", got)
	assert.Equal(t, int32(4), calls.Load())
}

func TestExecute_PredicateRetry(t *testing.T) {
	t.Parallel()

	for _, k := range []int{1, 2, 4, 5} {
		t.Run(fmt.Sprintf("passes on attempt %d", k), func(t *testing.T) {
			t.Parallel()

			var calls atomic.Int32

			got, err := retry.Do(context.Background(), func(context.Context) (int, error) {
				return int(calls.Add(1)), nil
			}, retry.Config[int]{
				SuccessPredicate: func(n int) bool { return n >= k },
				MaxAttempts:      5,
				Sleep:            (&recordingSleep{}).sleep,
			})

			require.NoError(t, err)
			assert.Equal(t, k, got)
			assert.Equal(t, int32(k), calls.Load())
		})
	}
}

func TestExecute_PredicateExhausted(t *testing.T) {
	t.Parallel()

	_, err := retry.Do(context.Background(), func(context.Context) (string, error) {
		return "processing", nil
	}, retry.Config[string]{
		SuccessPredicate: func(s string) bool { return s == "ready" },
		MaxAttempts:      3,
		TerminalMessage:  "session never became ready",
		Sleep:            (&recordingSleep{}).sleep,
	})

	var terminal *retry.TerminalError
	require.ErrorAs(t, err, &terminal)
	assert.Contains(t, err.Error(), "session never became ready")
	assert.ErrorIs(t, err, retry.ErrUnsuccessfulResult)
	assert.NotErrorIs(t, err, retry.ErrExecutionFailed)

	chain := terminal.Chain()
	require.Len(t, chain, 3)
	for _, attemptErr := range chain {
		assert.Nil(t, attemptErr.Err)
		assert.Equal(t, "processing", attemptErr.Result)
	}
}

func TestExecute_MixedChain(t *testing.T) {
	t.Parallel()

	var calls atomic.Int32
	errNetwork := errors.New("dial tcp: i/o timeout")

	_, err := retry.Do(context.Background(), func(context.Context) (bool, error) {
		if calls.Add(1)%2 == 1 {
			return false, errNetwork
		}
		return false, nil
	}, retry.Config[bool]{
		SuccessPredicate: func(ok bool) bool { return ok },
		MaxAttempts:      4,
		Sleep:            (&recordingSleep{}).sleep,
	})

	var terminal *retry.TerminalError
	require.ErrorAs(t, err, &terminal)

	chain := terminal.Chain()
	require.Len(t, chain, 4)
	assert.ErrorIs(t, chain[0], errNetwork)
	assert.ErrorIs(t, chain[1], retry.ErrUnsuccessfulResult)
	assert.ErrorIs(t, chain[2], errNetwork)
	assert.ErrorIs(t, chain[3], retry.ErrUnsuccessfulResult)
}

func TestExecute_BackoffDelays(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		cfg  retry.Config[int]
		want []time.Duration
	}{
		{
			name: "defaults",
			cfg:  retry.Config[int]{},
			want: []time.Duration{time.Second, 2 * time.Second, 4 * time.Second, 5 * time.Second},
		},
		{
			name: "custom factor and cap",
			cfg: retry.Config[int]{
				MaxAttempts:     6,
				InitialInterval: 100 * time.Millisecond,
				BackoffFactor:   3,
				MaxDelay:        time.Second,
			},
			want: []time.Duration{
				100 * time.Millisecond,
				300 * time.Millisecond,
				900 * time.Millisecond,
				time.Second,
				time.Second,
			},
		},
		{
			name: "initial interval above cap",
			cfg: retry.Config[int]{
				MaxAttempts:     3,
				InitialInterval: 10 * time.Second,
				MaxDelay:        2 * time.Second,
			},
			want: []time.Duration{2 * time.Second, 2 * time.Second},
		},
		{
			name: "factor one keeps delay constant",
			cfg: retry.Config[int]{
				MaxAttempts:     4,
				InitialInterval: 250 * time.Millisecond,
				BackoffFactor:   1,
			},
			want: []time.Duration{250 * time.Millisecond, 250 * time.Millisecond, 250 * time.Millisecond},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			rs := &recordingSleep{}
			cfg := tt.cfg
			cfg.Sleep = rs.sleep

			_, err := retry.Do(context.Background(), func(context.Context) (int, error) {
				return 0, errors.New("boom")
			}, cfg)

			require.Error(t, err)
			assert.Equal(t, tt.want, rs.delays)

			for i := 1; i < len(rs.delays); i++ {
				assert.GreaterOrEqual(t, rs.delays[i], rs.delays[i-1])
			}
		})
	}
}

func TestExecute_DefaultTerminalMessage(t *testing.T) {
	t.Parallel()

	_, err := retry.Do(context.Background(), func(context.Context) (int, error) {
		return 0, errors.New("boom")
	}, retry.Config[int]{MaxAttempts: 2, Sleep: (&recordingSleep{}).sleep})

	require.Error(t, err)
	assert.Contains(t, err.Error(), retry.DefaultTerminalMessage)
	assert.Contains(t, err.Error(), "after 2 attempts")
}

func TestExecute_ContextCancelledDuringBackoff(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	var calls atomic.Int32

	_, err := retry.Do(ctx, func(context.Context) (int, error) {
		if calls.Add(1) == 2 {
			cancel()
		}
		return 0, errors.New("boom")
	}, retry.Config[int]{
		MaxAttempts:     5,
		InitialInterval: time.Millisecond,
	})

	var terminal *retry.TerminalError
	require.ErrorAs(t, err, &terminal)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 2, terminal.Attempts)
	assert.Len(t, terminal.Chain(), 2)
	assert.Equal(t, int32(2), calls.Load())
}

func TestExecute_RealSleep(t *testing.T) {
	t.Parallel()

	var calls atomic.Int32
	start := time.Now()

	got, err := retry.Do(context.Background(), func(context.Context) (int, error) {
		if calls.Add(1) < 3 {
			return 0, errors.New("boom")
		}
		return 42, nil
	}, retry.Config[int]{
		InitialInterval: 5 * time.Millisecond,
		MaxDelay:        20 * time.Millisecond,
	})

	require.NoError(t, err)
	assert.Equal(t, 42, got)
	assert.GreaterOrEqual(t, time.Since(start), 15*time.Millisecond)
}

func TestExecute_OnAttempt(t *testing.T) {
	t.Parallel()

	var outcomes []retry.Outcome
	var calls atomic.Int32

	_, err := retry.Do(context.Background(), func(context.Context) (int, error) {
		if calls.Add(1) < 3 {
			return 0, errors.New("boom")
		}
		return 1, nil
	}, retry.Config[int]{
		Sleep: (&recordingSleep{}).sleep,
		OnAttempt: func(a retry.Attempt) {
			outcomes = append(outcomes, a.Outcome)
			if a.Outcome == retry.OutcomeRetry {
				assert.Positive(t, a.Delay)
				assert.Error(t, a.Err)
			}
		},
	})

	require.NoError(t, err)
	assert.Equal(t, []retry.Outcome{retry.OutcomeRetry, retry.OutcomeRetry, retry.OutcomeSuccess}, outcomes)
}

func TestExecute_ConcurrentCallsAreIndependent(t *testing.T) {
	t.Parallel()

	var calls atomic.Int32
	exec := retry.New(func(context.Context) (int, error) {
		return int(calls.Add(1)), errors.New("boom")
	}, retry.Config[int]{
		MaxAttempts: 3,
		Sleep:       func(context.Context, time.Duration) error { return nil },
	})

	var wg sync.WaitGroup
	errs := make([]error, 10)
	for i := range errs {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, errs[i] = exec.Execute(context.Background())
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(30), calls.Load())
	for _, err := range errs {
		var terminal *retry.TerminalError
		require.ErrorAs(t, err, &terminal)
		assert.Len(t, terminal.Chain(), 3)
	}
}

func TestIsTerminal(t *testing.T) {
	t.Parallel()

	assert.True(t, retry.IsTerminal(&statusError{code: 404}))
	assert.True(t, retry.IsTerminal(fmt.Errorf("ctx: %w", &statusError{code: 401})))
	assert.False(t, retry.IsTerminal(&statusError{code: 500}))
	assert.False(t, retry.IsTerminal(&statusError{code: 0}))
	assert.False(t, retry.IsTerminal(errors.New("plain")))
	assert.False(t, retry.IsTerminal(nil))
}
