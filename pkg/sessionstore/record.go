package sessionstore

import "github.com/dmitrymomot/shipconnect/pkg/apperror"

// LifecycleState is the state of a session in the session store.
type LifecycleState string

const (
	StateActive  LifecycleState = "ACTIVE"
	StateExpired LifecycleState = "EXPIRED"
)

// Metadata keys read from a session record.
const (
	MetadataCallbackURL   = "callbackUrl"
	MetadataCorrelationID = "correlationId"
)

// Record is a session as returned by the session store.
type Record struct {
	ID             string         `json:"id"`
	Version        int            `json:"version"`
	LifecycleState LifecycleState `json:"state"`
	ActiveCart     *ActiveCart    `json:"activeCart,omitempty"`
	Metadata       map[string]any `json:"metadata,omitempty"`
}

// ActiveCart points at the cart the session was opened for.
type ActiveCart struct {
	CartRef Reference `json:"cartRef"`
}

// Reference identifies a resource in the commerce platform.
type Reference struct {
	ID string `json:"id"`
}

// IsActive reports whether the session may be used.
func (r *Record) IsActive() bool {
	return r.LifecycleState == StateActive
}

// CartID returns the id of the active cart.
func (r *Record) CartID() (string, error) {
	if r.ActiveCart == nil || r.ActiveCart.CartRef.ID == "" {
		return "", apperror.Auth(CodeCartMissing, "session has no active cart",
			apperror.WithPrivate("session_id", r.ID),
		)
	}
	return r.ActiveCart.CartRef.ID, nil
}

// CallbackURL returns the processor URL stored in the session metadata.
func (r *Record) CallbackURL() string {
	return r.metadataString(MetadataCallbackURL)
}

// CorrelationID returns the correlation id stored in the session metadata, if any.
func (r *Record) CorrelationID() string {
	return r.metadataString(MetadataCorrelationID)
}

func (r *Record) metadataString(key string) string {
	if r.Metadata == nil {
		return ""
	}
	s, _ := r.Metadata[key].(string)
	return s
}
