package sessionstore_test

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/dmitrymomot/shipconnect/pkg/sessionstore"
)

const (
	testClientID     = "client-id"
	testClientSecret = "client-secret"
	testProjectKey   = "shop"
)

// fakeStore emulates the session store's token and session endpoints.
type fakeStore struct {
	t      *testing.T
	server *httptest.Server

	tokenCalls   atomic.Int32
	sessionCalls atomic.Int32

	mu sync.Mutex
	// tokenStatus is returned by the token endpoint when non-zero.
	tokenStatus int
	// sessionStatuses are returned by successive session fetches; the last one repeats.
	sessionStatuses []int
	sessions        map[string]map[string]any
	// validTokens lists the tokens the session endpoint accepts. Empty accepts any.
	validTokens map[string]bool
	lastAuth    string
}

func newFakeStore(t *testing.T) *fakeStore {
	t.Helper()

	fs := &fakeStore{
		t:           t,
		sessions:    make(map[string]map[string]any),
		validTokens: make(map[string]bool),
	}

	mux := http.NewServeMux()
	mux.HandleFunc("POST /oauth/token", fs.handleToken)
	mux.HandleFunc("GET /{project}/sessions/{id}", fs.handleSession)

	fs.server = httptest.NewServer(mux)
	t.Cleanup(fs.server.Close)

	return fs
}

func (fs *fakeStore) config() sessionstore.Config {
	return sessionstore.Config{
		ClientID:     testClientID,
		ClientSecret: testClientSecret,
		AuthURL:      fs.server.URL,
		APIURL:       fs.server.URL,
		ProjectKey:   testProjectKey,
	}
}

func (fs *fakeStore) addSession(id string, state string, cartID string, metadata map[string]any) {
	fs.mu.Lock()
	defer fs.mu.Unlock()

	rec := map[string]any{
		"id":      id,
		"version": 3,
		"state":   state,
	}
	if cartID != "" {
		rec["activeCart"] = map[string]any{"cartRef": map[string]any{"id": cartID}}
	}
	if metadata != nil {
		rec["metadata"] = metadata
	}
	fs.sessions[id] = rec
}

func (fs *fakeStore) setSessionStatuses(statuses ...int) {
	fs.mu.Lock()
	defer fs.mu.Unlock()
	fs.sessionStatuses = statuses
}

func (fs *fakeStore) setTokenStatus(status int) {
	fs.mu.Lock()
	defer fs.mu.Unlock()
	fs.tokenStatus = status
}

func (fs *fakeStore) acceptOnly(tokens ...string) {
	fs.mu.Lock()
	defer fs.mu.Unlock()
	for _, tok := range tokens {
		fs.validTokens[tok] = true
	}
}

func (fs *fakeStore) handleToken(w http.ResponseWriter, r *http.Request) {
	n := fs.tokenCalls.Add(1)

	user, pass, ok := r.BasicAuth()
	if !ok || user != testClientID || pass != testClientSecret {
		fs.t.Errorf("token request without expected basic auth: ok=%v user=%q", ok, user)
	}
	if err := r.ParseForm(); err != nil || r.PostForm.Get("grant_type") != "client_credentials" {
		fs.t.Errorf("unexpected grant_type %q", r.PostForm.Get("grant_type"))
	}

	fs.mu.Lock()
	status := fs.tokenStatus
	fs.mu.Unlock()

	if status != 0 {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = w.Write([]byte(`{"error":"invalid_client","message":"bad credentials"}`))
		return
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]any{
		"access_token": fmt.Sprintf("token-%d", n),
		"token_type":   "Bearer",
		"scope":        "manage_sessions:" + testProjectKey,
		"expires_in":   172800,
	})
}

func (fs *fakeStore) handleSession(w http.ResponseWriter, r *http.Request) {
	n := int(fs.sessionCalls.Add(1))

	if r.PathValue("project") != testProjectKey {
		fs.t.Errorf("unexpected project key %q", r.PathValue("project"))
	}

	fs.mu.Lock()
	fs.lastAuth = r.Header.Get("Authorization")
	statuses := fs.sessionStatuses
	valid := fs.validTokens
	rec, found := fs.sessions[r.PathValue("id")]
	fs.mu.Unlock()

	token := strings.TrimPrefix(r.Header.Get("Authorization"), "Bearer ")
	if len(valid) > 0 && !valid[token] {
		w.WriteHeader(http.StatusUnauthorized)
		return
	}

	if len(statuses) > 0 {
		status := statuses[min(n, len(statuses))-1]
		if status != http.StatusOK {
			w.WriteHeader(status)
			_, _ = w.Write([]byte(`{"message":"upstream said no"}`))
			return
		}
	}

	if !found {
		w.WriteHeader(http.StatusNotFound)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(rec)
}
