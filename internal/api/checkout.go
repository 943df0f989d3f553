package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"maps"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/dmitrymomot/shipconnect/pkg/apperror"
	"github.com/dmitrymomot/shipconnect/pkg/auth"
	"github.com/dmitrymomot/shipconnect/pkg/shipvendor"
)

const maxRequestBody = 1 << 20

type createSessionBody struct {
	Currency        string                `json:"currency"`
	Items           []shipvendor.LineItem `json:"items"`
	ShippingAddress *shipvendor.Address   `json:"shipping_address,omitempty"`
	Metadata        map[string]string     `json:"metadata,omitempty"`
}

func (b createSessionBody) validate() error {
	if len(b.Currency) != 3 {
		return invalidField("currency", "must be a three letter ISO 4217 code")
	}
	return validateItems(b.Items, true)
}

type updateSessionBody struct {
	Items           []shipvendor.LineItem `json:"items,omitempty"`
	ShippingAddress *shipvendor.Address   `json:"shipping_address,omitempty"`
	Metadata        map[string]string     `json:"metadata,omitempty"`
}

func validateItems(items []shipvendor.LineItem, required bool) error {
	if required && len(items) == 0 {
		return invalidField("items", "at least one item is required")
	}
	for i, it := range items {
		if strings.TrimSpace(it.SKU) == "" {
			return invalidField(fmt.Sprintf("items[%d].sku", i), "is required")
		}
		if it.Quantity <= 0 {
			return invalidField(fmt.Sprintf("items[%d].quantity", i), "must be positive")
		}
		if it.UnitPrice < 0 {
			return invalidField(fmt.Sprintf("items[%d].unit_price", i), "must not be negative")
		}
	}
	return nil
}

func invalidField(field, msg string) error {
	return apperror.Invalid(CodeInvalidField, field+" "+msg, apperror.WithPrivate("field", field))
}

type checkoutHandler struct {
	vendor Vendor
	errs   errorRenderer
}

// create opens a vendor checkout for the caller's active cart.
func (h *checkoutHandler) create(w http.ResponseWriter, r *http.Request) {
	p, _ := auth.PrincipalFromContext(r.Context())

	var body createSessionBody
	if err := decodeBody(r, &body); err != nil {
		h.errs.render(w, r, err)
		return
	}
	if err := body.validate(); err != nil {
		h.errs.render(w, r, err)
		return
	}

	metadata := maps.Clone(body.Metadata)
	if p.CallbackURL != "" {
		if metadata == nil {
			metadata = make(map[string]string, 1)
		}
		metadata[shipvendor.MetadataCallbackURL] = p.CallbackURL
	}

	s, err := h.vendor.CreateCheckoutSession(r.Context(), shipvendor.CreateSessionRequest{
		CartID:          p.CartID,
		Currency:        strings.ToUpper(body.Currency),
		Items:           body.Items,
		ShippingAddress: body.ShippingAddress,
		CallbackURL:     p.CallbackURL,
		Metadata:        metadata,
	})
	if err != nil {
		h.errs.render(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, s)
}

func (h *checkoutHandler) get(w http.ResponseWriter, r *http.Request) {
	s, err := h.owned(r)
	if err != nil {
		h.errs.render(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, s)
}

// pull waits for the vendor to finish processing the session.
func (h *checkoutHandler) pull(w http.ResponseWriter, r *http.Request) {
	p, _ := auth.PrincipalFromContext(r.Context())

	s, err := h.vendor.PullCheckoutSession(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.errs.render(w, r, vendorError(err))
		return
	}
	if s.CartID != p.CartID {
		h.errs.render(w, r, errSessionNotFound)
		return
	}
	writeJSON(w, http.StatusOK, s)
}

func (h *checkoutHandler) update(w http.ResponseWriter, r *http.Request) {
	var body updateSessionBody
	if err := decodeBody(r, &body); err != nil {
		h.errs.render(w, r, err)
		return
	}
	if err := validateItems(body.Items, false); err != nil {
		h.errs.render(w, r, err)
		return
	}

	current, err := h.owned(r)
	if err != nil {
		h.errs.render(w, r, err)
		return
	}

	s, err := h.vendor.UpdateCheckoutSession(r.Context(), shipvendor.UpdateSessionRequest{
		CheckoutSessionID: current.ID,
		Items:             body.Items,
		ShippingAddress:   body.ShippingAddress,
		Metadata:          body.Metadata,
	})
	if err != nil {
		h.errs.render(w, r, vendorError(err))
		return
	}
	writeJSON(w, http.StatusOK, s)
}

func (h *checkoutHandler) complete(w http.ResponseWriter, r *http.Request) {
	current, err := h.owned(r)
	if err != nil {
		h.errs.render(w, r, err)
		return
	}

	s, err := h.vendor.CompleteCheckoutSession(r.Context(), current.ID)
	if err != nil {
		h.errs.render(w, r, vendorError(err))
		return
	}
	writeJSON(w, http.StatusOK, s)
}

// owned fetches the session named in the path and hides it unless it belongs
// to the caller's cart.
func (h *checkoutHandler) owned(r *http.Request) (*shipvendor.CheckoutSession, error) {
	p, _ := auth.PrincipalFromContext(r.Context())

	s, err := h.vendor.GetCheckoutSession(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		return nil, vendorError(err)
	}
	if s.CartID != p.CartID {
		return nil, errSessionNotFound
	}
	return s, nil
}

// vendorError turns a vendor 404 into our own not found answer.
func vendorError(err error) error {
	var apiErr *shipvendor.APIError
	if errors.As(err, &apiErr) && apiErr.Status == http.StatusNotFound {
		return apperror.NotFound(CodeSessionNotFound, "checkout session not found", apperror.WithCause(err))
	}
	return err
}

func decodeBody(r *http.Request, v any) error {
	dec := json.NewDecoder(io.LimitReader(r.Body, maxRequestBody))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return apperror.Invalid(CodeInvalidBody, "request body is not valid JSON", apperror.WithCause(err))
	}
	return nil
}
