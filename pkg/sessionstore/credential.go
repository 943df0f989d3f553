package sessionstore

import "sync/atomic"

// AccessCredential is an access token issued by the session store's token endpoint.
type AccessCredential struct {
	Token     string
	TokenType string
	Scope     string
	ExpiresIn int // seconds, as reported by the token endpoint
}

// TokenCache is a single-slot holder for the current access credential.
// It has no expiry logic of its own; the verifier replaces the credential
// when the session store rejects it. The slot is swapped atomically, so
// readers never observe a partially written credential.
type TokenCache struct {
	slot atomic.Pointer[AccessCredential]
}

// NewTokenCache returns an empty cache.
func NewTokenCache() *TokenCache {
	return &TokenCache{}
}

// Get returns the cached credential if there is one.
func (c *TokenCache) Get() (AccessCredential, bool) {
	cred := c.slot.Load()
	if cred == nil {
		return AccessCredential{}, false
	}
	return *cred, true
}

// Set replaces the cached credential.
func (c *TokenCache) Set(cred AccessCredential) {
	c.slot.Store(&cred)
}

// Invalidate empties the cache.
func (c *TokenCache) Invalidate() {
	c.slot.Store(nil)
}
