package apperror

import (
	"errors"
	"log/slog"
	"maps"
	"net/http"
	"slices"
)

// Kind classifies a failure and picks its response status.
type Kind int

const (
	// KindGeneral is an unexpected failure talking to an upstream or a misconfiguration.
	KindGeneral Kind = iota
	// KindAuth means the caller's session is invalid, expired or unknown.
	KindAuth
	// KindInvalid is a malformed request.
	KindInvalid
	// KindNotFound is a resource the caller may not see or that does not exist.
	KindNotFound
)

func (k Kind) String() string {
	switch k {
	case KindAuth:
		return "auth"
	case KindInvalid:
		return "invalid"
	case KindNotFound:
		return "not_found"
	default:
		return "general"
	}
}

// Error is a classified failure with a public surface (Code, Message) and a
// private diagnostic payload that is only ever written to logs.
type Error struct {
	Kind    Kind
	Code    string
	Message string

	private map[string]any
	cause   error
}

// Option configures an Error.
type Option func(*Error)

// WithPrivate attaches a diagnostic field that is never rendered to the caller.
func WithPrivate(key string, value any) Option {
	return func(e *Error) {
		if key == "" {
			return
		}
		if e.private == nil {
			e.private = make(map[string]any)
		}
		e.private[key] = value
	}
}

// WithCause records the underlying error for logging and errors.Is/As.
func WithCause(err error) Option {
	return func(e *Error) {
		e.cause = err
	}
}

// New creates an error of the given kind.
func New(kind Kind, code, message string, opts ...Option) *Error {
	e := &Error{Kind: kind, Code: code, Message: message}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Auth creates an authentication failure.
func Auth(code, message string, opts ...Option) *Error {
	return New(KindAuth, code, message, opts...)
}

// General creates a non-authentication failure.
func General(code, message string, opts ...Option) *Error {
	return New(KindGeneral, code, message, opts...)
}

func Invalid(code, message string, opts ...Option) *Error {
	return New(KindInvalid, code, message, opts...)
}

func NotFound(code, message string, opts ...Option) *Error {
	return New(KindNotFound, code, message, opts...)
}

func (e *Error) Error() string {
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.cause
}

// Private returns a diagnostic field.
func (e *Error) Private(key string) (any, bool) {
	v, ok := e.private[key]
	return v, ok
}

// HTTPStatus maps the kind to a response status.
func (e *Error) HTTPStatus() int {
	switch e.Kind {
	case KindAuth:
		return http.StatusUnauthorized
	case KindInvalid:
		return http.StatusBadRequest
	case KindNotFound:
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

// Public returns the part of the error that may be shown to the caller.
func (e *Error) Public() Detail {
	return Detail{Code: e.Code, Message: e.Message}
}

// LogValue renders the full error, private fields and cause included.
func (e *Error) LogValue() slog.Value {
	attrs := []slog.Attr{
		slog.String("kind", e.Kind.String()),
		slog.String("code", e.Code),
		slog.String("message", e.Message),
	}
	if len(e.private) > 0 {
		fields := make([]slog.Attr, 0, len(e.private))
		for _, k := range slices.Sorted(maps.Keys(e.private)) {
			fields = append(fields, slog.Any(k, e.private[k]))
		}
		attrs = append(attrs, slog.Attr{Key: "private", Value: slog.GroupValue(fields...)})
	}
	if e.cause != nil {
		attrs = append(attrs, slog.String("cause", e.cause.Error()))
	}
	return slog.GroupValue(attrs...)
}

// Detail is the public, serializable description of an error.
type Detail struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// As returns the outermost *Error in err's chain.
func As(err error) (*Error, bool) {
	var e *Error
	if errors.As(err, &e) {
		return e, true
	}
	return nil, false
}

// IsAuth reports whether err is an authentication failure.
func IsAuth(err error) bool {
	e, ok := As(err)
	return ok && e.Kind == KindAuth
}
