package retry

import (
	"errors"
	"fmt"
)

var (
	// ErrExecutionFailed marks an attempt whose operation returned a retryable error.
	ErrExecutionFailed = errors.New("execution failed")
	// ErrUnsuccessfulResult marks an attempt whose result was rejected by the success predicate.
	ErrUnsuccessfulResult = errors.New("unsuccessful result")
)

// AttemptError is the transient failure of a single attempt.
// Every AttemptError points to the one produced by the attempt before it,
// so the last one of an exhausted run carries the whole history.
type AttemptError struct {
	// Attempt is the 1-based attempt number.
	Attempt int
	// Err is the error returned by the operation. Nil when the result was
	// rejected by the success predicate.
	Err error
	// Result holds the rejected result when Err is nil.
	Result any

	prev *AttemptError
}

func (e *AttemptError) marker() error {
	if e.Err != nil {
		return ErrExecutionFailed
	}
	return ErrUnsuccessfulResult
}

func (e *AttemptError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("attempt %d: %s: %v", e.Attempt, ErrExecutionFailed, e.Err)
	}
	return fmt.Sprintf("attempt %d: %s", e.Attempt, ErrUnsuccessfulResult)
}

// Previous returns the error of the preceding attempt or nil for the first one.
func (e *AttemptError) Previous() *AttemptError {
	return e.prev
}

// Unwrap exposes the attempt marker, the operation error and the previous attempt,
// so errors.Is and errors.As see the whole history.
func (e *AttemptError) Unwrap() []error {
	errs := []error{e.marker()}
	if e.Err != nil {
		errs = append(errs, e.Err)
	}
	if e.prev != nil {
		errs = append(errs, e.prev)
	}
	return errs
}

// TerminalError is returned when all attempts are exhausted or the run was interrupted.
type TerminalError struct {
	Message  string
	Attempts int
	// Last is the error of the final attempt; its Previous chain links every earlier attempt.
	Last *AttemptError
	// Interrupted is set when the context ended the run before MaxAttempts was reached.
	Interrupted error
}

func (e *TerminalError) Error() string {
	msg := fmt.Sprintf("%s after %d attempts", e.Message, e.Attempts)
	if e.Interrupted != nil {
		msg += fmt.Sprintf(" (interrupted: %v)", e.Interrupted)
	}
	if e.Last != nil {
		msg += ": " + e.Last.Error()
	}
	return msg
}

func (e *TerminalError) Unwrap() []error {
	errs := make([]error, 0, 2)
	if e.Interrupted != nil {
		errs = append(errs, e.Interrupted)
	}
	if e.Last != nil {
		errs = append(errs, e.Last)
	}
	return errs
}

// Chain returns the attempt errors oldest first.
func (e *TerminalError) Chain() []*AttemptError {
	var chain []*AttemptError
	for cur := e.Last; cur != nil; cur = cur.prev {
		chain = append(chain, cur)
	}
	for i, j := 0, len(chain)-1; i < j; i, j = i+1, j-1 {
		chain[i], chain[j] = chain[j], chain[i]
	}
	return chain
}

// IsExhausted reports whether err came out of a retry run that gave up.
func IsExhausted(err error) bool {
	var te *TerminalError
	return errors.As(err, &te)
}

// StatusCoder is implemented by errors that carry an HTTP-like status code.
type StatusCoder interface {
	StatusCode() int
}

// StatusCode extracts the status code from the first StatusCoder in err's chain.
func StatusCode(err error) (int, bool) {
	var sc StatusCoder
	if errors.As(err, &sc) {
		return sc.StatusCode(), true
	}
	return 0, false
}

// IsTerminal reports whether err must not be retried: it carries an explicit status below 500.
func IsTerminal(err error) bool {
	code, ok := StatusCode(err)
	return ok && code > 0 && code < 500
}
