// Package logger builds *slog.Logger values for the service and holds the
// attribute constructors used across packages so keys stay consistent.
//
// New takes functional options:
//
//	log := logger.New(
//	    logger.WithEnvironment(environment.Production, "shipconnect"),
//	    logger.WithLevelName(os.Getenv("LOG_LEVEL")),
//	    logger.WithContextExtractors(reqctx.LoggerExtractors()...),
//	)
//
// The handler (JSON or text) is wrapped by LogHandlerDecorator, which calls
// every registered ContextExtractor on each record. This is how request and
// correlation ids reach log lines without being passed around explicitly.
//
// Attribute helpers that take an id or an error return an empty slog.Attr for
// zero values, which slog drops, so call sites need no nil checks:
//
//	log.WarnContext(ctx, "attempt failed", logger.Operation("session.create"), logger.Error(err))
package logger
