package reqctx

import (
	"context"
	"log/slog"

	"github.com/dmitrymomot/shipconnect/pkg/logger"
)

// RequestIDExtractor returns a logger context extractor adding request_id.
func RequestIDExtractor() func(ctx context.Context) (slog.Attr, bool) {
	return func(ctx context.Context) (slog.Attr, bool) {
		if id := RequestID(ctx); id != "" {
			return slog.String("request_id", id), true
		}
		return slog.Attr{}, false
	}
}

// CorrelationIDExtractor returns a logger context extractor adding correlation_id.
func CorrelationIDExtractor() func(ctx context.Context) (slog.Attr, bool) {
	return func(ctx context.Context) (slog.Attr, bool) {
		if id := CorrelationID(ctx); id != "" {
			return slog.String("correlation_id", id), true
		}
		return slog.Attr{}, false
	}
}

// LoggerExtractors returns all request id extractors, ready for logger.WithContextExtractors.
func LoggerExtractors() []logger.ContextExtractor {
	return []logger.ContextExtractor{RequestIDExtractor(), CorrelationIDExtractor()}
}
