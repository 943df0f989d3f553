// Package sessionstore is the client of the commerce platform's session store.
//
// Three pieces work together:
//
//   - Authorizer obtains access tokens from {AuthURL}/oauth/token using the
//     client credentials grant with HTTP Basic authentication.
//   - TokenCache holds the single access credential shared by all requests.
//     It has no TTL; the credential is replaced when the store rejects it.
//   - Verifier fetches {APIURL}/{ProjectKey}/sessions/{id} with the cached
//     credential, refreshes the credential once on 401/403 and checks that
//     the session is ACTIVE.
//
// # Usage
//
//	authorizer := sessionstore.NewAuthorizer(cfg)
//	verifier := sessionstore.NewVerifier(cfg, authorizer)
//
//	rec, err := verifier.VerifySession(ctx, sessionID)
//	if err != nil {
//		// *apperror.Error: KindAuth for unknown or inactive sessions,
//		// KindGeneral for upstream failures.
//	}
//	cartID, err := rec.CartID()
//
// Upstream statuses and bodies are attached to errors as private fields and
// only reach the logs.
package sessionstore
