package logger

import (
	"log/slog"
	"strconv"
	"time"
)

// Group creates a slog group attribute from the provided attributes.
func Group(name string, attrs ...slog.Attr) slog.Attr {
	return slog.Attr{Key: name, Value: slog.GroupValue(attrs...)}
}

// Errors groups non-nil errors under "errors". All-nil input yields an empty Attr.
func Errors(errs ...error) slog.Attr {
	as := make([]slog.Attr, 0, len(errs))
	for i, err := range errs {
		if err != nil {
			as = append(as, slog.Any(strconv.Itoa(i), err))
		}
	}
	if len(as) == 0 {
		return slog.Attr{}
	}
	return slog.Attr{Key: "errors", Value: slog.GroupValue(as...)}
}

// Error records err under "error". A nil err yields an empty Attr.
// Values implementing slog.LogValuer (such as *apperror.Error) are expanded
// by the handler, private diagnostics included.
func Error(err error) slog.Attr {
	if err == nil {
		return slog.Attr{}
	}
	return slog.Any("error", err)
}

func RequestID(id string) slog.Attr     { return optionalString("request_id", id) }
func CorrelationID(id string) slog.Attr { return optionalString("correlation_id", id) }
func SessionID(id string) slog.Attr     { return optionalString("session_id", id) }
func CartID(id string) slog.Attr        { return optionalString("cart_id", id) }

// CheckoutSessionID records a shipping vendor checkout session id.
func CheckoutSessionID(id string) slog.Attr { return optionalString("checkout_session_id", id) }

// Operation records the name of an upstream operation.
func Operation(name string) slog.Attr {
	return slog.String("operation", name)
}

// Attempt records the attempt number of a retried operation.
func Attempt(n int) slog.Attr {
	return slog.Int("attempt", n)
}

// Delay records the backoff before the next attempt.
func Delay(d time.Duration) slog.Attr {
	return slog.Duration("delay", d)
}

func Duration(d time.Duration) slog.Attr {
	return slog.Duration("duration", d)
}

func StatusCode(code int) slog.Attr {
	return slog.Int("status", code)
}

func Component(name string) slog.Attr {
	return slog.String("component", name)
}

func URL(u string) slog.Attr {
	return slog.String("url", u)
}

func optionalString(key, v string) slog.Attr {
	if v == "" {
		return slog.Attr{}
	}
	return slog.String(key, v)
}
