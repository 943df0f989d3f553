package shipvendor

import "time"

// SessionStatus is the lifecycle state of a vendor checkout session.
type SessionStatus string

const (
	StatusProcessing SessionStatus = "processing"
	StatusOpen       SessionStatus = "open"
	StatusCompleted  SessionStatus = "completed"
	StatusExpired    SessionStatus = "expired"
	StatusFailed     SessionStatus = "failed"
)

// CheckoutSession is the vendor's view of a shipping checkout.
type CheckoutSession struct {
	ID             string            `json:"id"`
	Status         SessionStatus     `json:"status"`
	CartID         string            `json:"cart_id"`
	URL            string            `json:"url,omitempty"`
	Items          []LineItem        `json:"items,omitempty"`
	ShippingOption *ShippingOption   `json:"shipping_option,omitempty"`
	Metadata       map[string]string `json:"metadata,omitempty"`
	ExpiresAt      *time.Time        `json:"expires_at,omitempty"`
}

// LineItem is a cart line forwarded to the vendor. Prices are in minor units.
type LineItem struct {
	SKU         string `json:"sku"`
	Name        string `json:"name"`
	Quantity    int    `json:"quantity"`
	UnitPrice   int64  `json:"unit_price"`
	WeightGrams int    `json:"weight_grams,omitempty"`
}

type Address struct {
	Name       string `json:"name,omitempty"`
	Line1      string `json:"line1"`
	Line2      string `json:"line2,omitempty"`
	City       string `json:"city"`
	PostalCode string `json:"postal_code"`
	Region     string `json:"region,omitempty"`
	Country    string `json:"country"`
}

// ShippingOption is the carrier rate chosen in the checkout.
type ShippingOption struct {
	ID       string `json:"id"`
	Carrier  string `json:"carrier"`
	Service  string `json:"service"`
	Amount   int64  `json:"amount"`
	Currency string `json:"currency"`
}

type CreateSessionRequest struct {
	CartID          string            `json:"cart_id"`
	Currency        string            `json:"currency"`
	Items           []LineItem        `json:"items"`
	ShippingAddress *Address          `json:"shipping_address,omitempty"`
	CallbackURL     string            `json:"callback_url,omitempty"`
	Metadata        map[string]string `json:"metadata,omitempty"`
}

type UpdateSessionRequest struct {
	CheckoutSessionID string            `json:"checkout_session_id"`
	Items             []LineItem        `json:"items,omitempty"`
	ShippingAddress   *Address          `json:"shipping_address,omitempty"`
	Metadata          map[string]string `json:"metadata,omitempty"`
}

type completeSessionRequest struct {
	CheckoutSessionID string `json:"checkout_session_id"`
}

// Event types delivered by the vendor webhook.
const (
	EventSessionCompleted = "checkout_session.completed"
	EventSessionExpired   = "checkout_session.expired"
	EventSessionUpdated   = "checkout_session.updated"
)

// MetadataCallbackURL is the session metadata key holding the shop callback.
const MetadataCallbackURL = "callback_url"

// Event is a signed webhook notification about a checkout session.
type Event struct {
	ID        string          `json:"id"`
	Type      string          `json:"type"`
	CreatedAt time.Time       `json:"created_at"`
	Session   CheckoutSession `json:"checkout_session"`
}

// CallbackURL returns where the event should be relayed, if anywhere.
func (e Event) CallbackURL() string {
	return e.Session.Metadata[MetadataCallbackURL]
}
