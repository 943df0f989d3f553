package reqctx

import (
	"context"
	"sync"
)

// Authentication is the resolved authentication of the request.
// The concrete variants live in the auth package.
type Authentication interface {
	IsAuthenticated() bool
}

// Data is the request-scoped state shared with downstream code.
type Data struct {
	RequestID      string
	CorrelationID  string
	Authentication Authentication
}

// Patch is a partial update of Data. Nil fields are left untouched.
type Patch struct {
	RequestID      *string
	CorrelationID  *string
	Authentication Authentication
}

type store struct {
	mu   sync.RWMutex
	data Data
}

type contextKey struct{}

// New attaches a fresh store holding data to ctx. Call it once at the start of a request.
func New(ctx context.Context, data Data) context.Context {
	return context.WithValue(ctx, contextKey{}, &store{data: data})
}

func fromContext(ctx context.Context) *store {
	if ctx == nil {
		return nil
	}
	s, _ := ctx.Value(contextKey{}).(*store)
	return s
}

// Get returns a copy of the request data. Without a store it returns the zero Data.
func Get(ctx context.Context) Data {
	s := fromContext(ctx)
	if s == nil {
		return Data{}
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.data
}

// Update applies patch to the request data.
// It reports false when ctx carries no store.
func Update(ctx context.Context, patch Patch) bool {
	s := fromContext(ctx)
	if s == nil {
		return false
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if patch.RequestID != nil {
		s.data.RequestID = *patch.RequestID
	}
	if patch.CorrelationID != nil {
		s.data.CorrelationID = *patch.CorrelationID
	}
	if patch.Authentication != nil {
		s.data.Authentication = patch.Authentication
	}
	return true
}

// RequestID returns the request id or an empty string.
func RequestID(ctx context.Context) string {
	return Get(ctx).RequestID
}

// CorrelationID returns the correlation id or an empty string.
func CorrelationID(ctx context.Context) string {
	return Get(ctx).CorrelationID
}
