package reqctx

import (
	"net/http"
	"regexp"

	"github.com/google/uuid"
)

const (
	RequestIDHeader     = "X-Request-ID"
	CorrelationIDHeader = "X-Correlation-ID"

	maxIDLength = 128
	idPattern   = "^[a-zA-Z0-9_-]+$"
)

var validIDRegex = regexp.MustCompile(idPattern)

// Middleware creates the request store. The request id is taken from
// X-Request-ID when valid, otherwise a UUIDv4 is generated. The correlation id
// is taken from X-Correlation-ID when valid and defaults to the request id.
// Both are echoed in the response headers.
func Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requestID := r.Header.Get(RequestIDHeader)
		if !isValidID(requestID) {
			requestID = uuid.New().String()
		}

		correlationID := r.Header.Get(CorrelationIDHeader)
		if !isValidID(correlationID) {
			correlationID = requestID
		}

		w.Header().Set(RequestIDHeader, requestID)
		w.Header().Set(CorrelationIDHeader, correlationID)

		ctx := New(r.Context(), Data{
			RequestID:     requestID,
			CorrelationID: correlationID,
		})
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func isValidID(id string) bool {
	if len(id) == 0 || len(id) > maxIDLength {
		return false
	}
	return validIDRegex.MatchString(id)
}
