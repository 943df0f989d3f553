// Package apperror defines the error type shared by the session store client,
// the authentication manager and the HTTP layer.
//
// An *Error has two faces. Code and Message are public and end up in API
// responses. Fields attached with WithPrivate, and the cause attached with
// WithCause, are diagnostics for operators: they are emitted by LogValue when
// the error is logged with slog and are never serialized to the caller.
//
//	err := apperror.Auth("session_store.session_not_found", "session not found",
//		apperror.WithPrivate("status", 404),
//		apperror.WithPrivate("status_text", "Not Found"),
//	)
//
//	logger.WarnContext(ctx, "authentication failed", slog.Any("error", err))
//	status, detail := apperror.Resolve(err) // 401, {code, message}
//
// Resolve also classifies errors that are not *Error values, such as retry
// exhaustion or a rejected upstream call, into stable public codes.
package apperror
