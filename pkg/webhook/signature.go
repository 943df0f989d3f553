package webhook

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"
)

const (
	SignatureHeader = "X-Webhook-Signature"
	TimestampHeader = "X-Webhook-Timestamp"
	IDHeader        = "X-Webhook-ID"
)

// MaxInboundPayload bounds the body read by VerifyRequest.
const MaxInboundPayload = 1 << 20

// Signature is the signing metadata sent with a webhook.
// The signature is hex(HMAC-SHA256(secret, "{timestamp}.{payload}")).
type Signature struct {
	Value     string
	Timestamp int64
	ID        string
}

// Apply sets the signature headers on h.
func (s Signature) Apply(h http.Header) {
	h.Set(SignatureHeader, s.Value)
	h.Set(TimestampHeader, strconv.FormatInt(s.Timestamp, 10))
	if s.ID != "" {
		h.Set(IDHeader, s.ID)
	}
}

// Sign signs payload with secret at time now.
func Sign(secret string, payload []byte, now time.Time) (Signature, error) {
	if secret == "" {
		return Signature{}, ErrMissingSecret
	}
	if len(payload) == 0 {
		return Signature{}, fmt.Errorf("%w: payload cannot be empty", ErrInvalidPayload)
	}

	ts := now.Unix()
	return Signature{
		Value:     computeSignature(secret, ts, payload),
		Timestamp: ts,
		ID:        uuid.NewString(),
	}, nil
}

// Verify checks sig against payload. With maxAge > 0 signatures older than
// maxAge, or more than a minute in the future, are rejected.
func Verify(secret string, payload []byte, sig Signature, maxAge time.Duration) error {
	if secret == "" {
		return ErrMissingSecret
	}
	if len(payload) == 0 {
		return fmt.Errorf("%w: payload cannot be empty", ErrInvalidPayload)
	}
	if sig.Value == "" {
		return fmt.Errorf("%w: signature is missing", ErrInvalidSignature)
	}

	if maxAge > 0 {
		age := time.Since(time.Unix(sig.Timestamp, 0))
		if age > maxAge || age < -time.Minute {
			return fmt.Errorf("%w: age %v", ErrSignatureExpired, age.Round(time.Second))
		}
	}

	expected := computeSignature(secret, sig.Timestamp, payload)
	if !hmac.Equal([]byte(expected), []byte(sig.Value)) {
		return fmt.Errorf("%w: signature mismatch", ErrInvalidSignature)
	}
	return nil
}

// SignatureFromHeaders reads the signature headers of an inbound request.
func SignatureFromHeaders(h http.Header) (Signature, error) {
	sig := Signature{
		Value: h.Get(SignatureHeader),
		ID:    h.Get(IDHeader),
	}
	raw := h.Get(TimestampHeader)
	if sig.Value == "" || raw == "" {
		return Signature{}, fmt.Errorf("%w: missing signature headers", ErrInvalidSignature)
	}

	ts, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || ts <= 0 {
		return Signature{}, fmt.Errorf("%w: invalid timestamp", ErrInvalidSignature)
	}
	sig.Timestamp = ts
	return sig, nil
}

// VerifyRequest reads the body of r (at most MaxInboundPayload bytes) and
// verifies its signature headers. It returns the body on success.
func VerifyRequest(secret string, r *http.Request, maxAge time.Duration) ([]byte, error) {
	sig, err := SignatureFromHeaders(r.Header)
	if err != nil {
		return nil, err
	}

	body, err := io.ReadAll(io.LimitReader(r.Body, MaxInboundPayload+1))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidPayload, err)
	}
	if len(body) > MaxInboundPayload {
		return nil, ErrPayloadTooLarge
	}

	if err := Verify(secret, body, sig, maxAge); err != nil {
		return nil, err
	}
	return body, nil
}

func computeSignature(secret string, ts int64, payload []byte) string {
	h := hmac.New(sha256.New, []byte(secret))
	h.Write([]byte(strconv.FormatInt(ts, 10)))
	h.Write([]byte{'.'})
	h.Write(payload)
	return hex.EncodeToString(h.Sum(nil))
}
