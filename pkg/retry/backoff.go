package retry

import (
	"math"
	"math/rand"
	"time"
)

// BackoffStrategy calculates the delay before a retry.
// Implementations should be safe for concurrent use.
type BackoffStrategy interface {
	// NextInterval returns the delay before the given retry.
	// Retry starts at 1 for the first retry.
	NextInterval(retry int) time.Duration
}

// ExponentialBackoff grows the delay by Multiplier after every retry and caps it at MaxInterval.
// With zero JitterFactor the produced sequence is non-decreasing.
type ExponentialBackoff struct {
	InitialInterval time.Duration
	MaxInterval     time.Duration
	Multiplier      float64
	JitterFactor    float64
}

// NextInterval returns min(InitialInterval * Multiplier^(retry-1) * (1 ± JitterFactor), MaxInterval).
func (e ExponentialBackoff) NextInterval(retry int) time.Duration {
	if retry <= 0 {
		return 0
	}

	initial := e.InitialInterval
	if initial <= 0 {
		initial = DefaultInitialInterval
	}

	maxInterval := e.MaxInterval
	if maxInterval <= 0 {
		maxInterval = DefaultMaxDelay
	}

	multiplier := e.Multiplier
	switch {
	case multiplier == 0:
		multiplier = DefaultBackoffFactor
	case multiplier < 1:
		// A shrinking delay makes no sense for retries against a struggling upstream.
		multiplier = 1
	}

	interval := float64(initial) * math.Pow(multiplier, float64(retry-1))

	if e.JitterFactor > 0 {
		randomJitter := (rand.Float64()*2 - 1) * e.JitterFactor
		interval = interval * (1 + randomJitter)
	}

	if interval > float64(maxInterval) || math.IsInf(interval, 1) || math.IsNaN(interval) {
		interval = float64(maxInterval)
	}

	return time.Duration(interval)
}

// FixedBackoff implements a constant delay between retries.
type FixedBackoff struct {
	Interval time.Duration
}

// NextInterval always returns the same interval regardless of the retry number.
func (f FixedBackoff) NextInterval(retry int) time.Duration {
	if retry <= 0 {
		return 0
	}
	return f.Interval
}
