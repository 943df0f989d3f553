// Package retry runs operations against unreliable upstream services with
// exponential backoff, success predicates and a linked history of failed attempts.
//
// # Classification
//
// Every attempt ends in one of three ways:
//
//   - Success: the operation returned without error and the success predicate
//     accepted the result. Execute returns it immediately.
//   - Terminal: the operation returned an error carrying a status code below
//     500 (see StatusCoder). Execute returns that error unchanged, no matter
//     how many attempts are left.
//   - Transient: any other error, or a result rejected by the predicate. The
//     attempt is recorded as an *AttemptError and retried after a backoff delay.
//
// When MaxAttempts transient failures happen in a row Execute returns a
// *TerminalError. Its Last field is the final *AttemptError and each attempt
// error points to the previous one through Previous, the oldest innermost.
//
// # Usage
//
//	exec := retry.New(func(ctx context.Context) (*Session, error) {
//		return client.fetch(ctx, id)
//	}, retry.Config[*Session]{
//		SuccessPredicate: func(s *Session) bool { return s.Status != "processing" },
//		MaxAttempts:      5,
//		InitialInterval:  time.Second,
//		BackoffFactor:    2,
//		MaxDelay:         5 * time.Second,
//		TerminalMessage:  "could not pull session",
//	})
//
//	session, err := exec.Execute(ctx)
//	if retry.IsExhausted(err) {
//		// every attempt failed transiently
//	}
//
// # Backoff
//
// The default strategy is ExponentialBackoff without jitter: the delay starts
// at InitialInterval, is multiplied by BackoffFactor after every retry and is
// capped at MaxDelay, so delays never decrease and never exceed the cap. Any
// BackoffStrategy may be supplied instead.
//
// # Cancellation
//
// The context is passed to the operation and observed while sleeping between
// attempts. A context that ends during the backoff stops the run with a
// *TerminalError whose Interrupted field holds ctx.Err().
package retry
