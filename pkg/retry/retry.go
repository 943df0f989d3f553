package retry

import (
	"context"
	"time"
)

// Defaults applied to zero Config fields.
const (
	DefaultMaxAttempts     = 5
	DefaultInitialInterval = time.Second
	DefaultBackoffFactor   = 2.0
	DefaultMaxDelay        = 5 * time.Second
	DefaultTerminalMessage = "operation failed after retries"
)

// Operation is a unit of work against an unreliable upstream.
// It is borrowed by the executor for a single Execute call.
type Operation[T any] func(ctx context.Context) (T, error)

// Outcome describes what the executor decided about an attempt.
type Outcome string

const (
	OutcomeSuccess   Outcome = "success"
	OutcomeRetry     Outcome = "retry"
	OutcomeTerminal  Outcome = "terminal"
	OutcomeExhausted Outcome = "exhausted"
)

// Attempt is passed to the OnAttempt hook after every attempt.
type Attempt struct {
	Number  int
	Outcome Outcome
	// Err is the attempt error for retry/exhausted outcomes and the original
	// error for terminal ones. Nil on success.
	Err error
	// Delay is the backoff before the next attempt, set for OutcomeRetry only.
	Delay time.Duration
}

// Config controls an Executor. Zero fields take the package defaults.
type Config[T any] struct {
	// SuccessPredicate judges a result returned without error. Nil accepts everything.
	SuccessPredicate func(T) bool
	MaxAttempts      int
	InitialInterval  time.Duration
	BackoffFactor    float64
	MaxDelay         time.Duration
	TerminalMessage  string

	// Backoff overrides the exponential strategy built from the fields above.
	Backoff BackoffStrategy
	// OnAttempt observes attempts for logging and metrics.
	OnAttempt func(Attempt)
	// Sleep waits between attempts. It must return ctx.Err() when ctx ends first.
	Sleep func(ctx context.Context, d time.Duration) error
}

func (c Config[T]) withDefaults() Config[T] {
	if c.SuccessPredicate == nil {
		c.SuccessPredicate = func(T) bool { return true }
	}
	if c.MaxAttempts <= 0 {
		c.MaxAttempts = DefaultMaxAttempts
	}
	if c.InitialInterval <= 0 {
		c.InitialInterval = DefaultInitialInterval
	}
	if c.BackoffFactor == 0 {
		c.BackoffFactor = DefaultBackoffFactor
	}
	if c.MaxDelay <= 0 {
		c.MaxDelay = DefaultMaxDelay
	}
	if c.TerminalMessage == "" {
		c.TerminalMessage = DefaultTerminalMessage
	}
	if c.Backoff == nil {
		c.Backoff = ExponentialBackoff{
			InitialInterval: min(c.InitialInterval, c.MaxDelay),
			MaxInterval:     c.MaxDelay,
			Multiplier:      c.BackoffFactor,
		}
	}
	if c.Sleep == nil {
		c.Sleep = sleep
	}
	return c
}

// Executor runs an operation until it succeeds, fails terminally or runs out of attempts.
// It holds no state between Execute calls, so one Executor may be shared across goroutines.
type Executor[T any] struct {
	op  Operation[T]
	cfg Config[T]
}

// New creates an executor for op.
func New[T any](op Operation[T], cfg Config[T]) *Executor[T] {
	return &Executor[T]{op: op, cfg: cfg.withDefaults()}
}

// Do is a shortcut for New(op, cfg).Execute(ctx).
func Do[T any](ctx context.Context, op Operation[T], cfg Config[T]) (T, error) {
	return New(op, cfg).Execute(ctx)
}

// Execute runs the operation.
//
// A result accepted by the success predicate is returned immediately. An error
// carrying a status below 500 is returned unchanged without further attempts.
// Any other error, and any rejected result, is recorded as an AttemptError and
// retried after the backoff delay. When attempts run out a *TerminalError is
// returned whose Last error links every attempt, oldest innermost.
func (e *Executor[T]) Execute(ctx context.Context) (T, error) {
	var zero T
	var last *AttemptError

	for attempt := 1; attempt <= e.cfg.MaxAttempts; attempt++ {
		result, err := e.op(ctx)
		if err == nil && e.cfg.SuccessPredicate(result) {
			e.notify(Attempt{Number: attempt, Outcome: OutcomeSuccess})
			return result, nil
		}

		if err != nil {
			if IsTerminal(err) {
				e.notify(Attempt{Number: attempt, Outcome: OutcomeTerminal, Err: err})
				return zero, err
			}
			last = &AttemptError{Attempt: attempt, Err: err, prev: last}
		} else {
			last = &AttemptError{Attempt: attempt, Result: result, prev: last}
		}

		if attempt == e.cfg.MaxAttempts {
			e.notify(Attempt{Number: attempt, Outcome: OutcomeExhausted, Err: last})
			break
		}

		delay := e.cfg.Backoff.NextInterval(attempt)
		e.notify(Attempt{Number: attempt, Outcome: OutcomeRetry, Err: last, Delay: delay})

		if err := e.cfg.Sleep(ctx, delay); err != nil {
			return zero, &TerminalError{
				Message:     e.cfg.TerminalMessage,
				Attempts:    attempt,
				Last:        last,
				Interrupted: err,
			}
		}
	}

	return zero, &TerminalError{
		Message:  e.cfg.TerminalMessage,
		Attempts: e.cfg.MaxAttempts,
		Last:     last,
	}
}

func (e *Executor[T]) notify(a Attempt) {
	if e.cfg.OnAttempt != nil {
		e.cfg.OnAttempt(a)
	}
}

func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
