// Package auth resolves the opaque session header of an inbound request into a
// verified principal.
//
// An Authentication is either a HeaderAuth, the raw unverified header, or a
// SessionAuth, produced only by Manager.Authenticate after the session store
// confirmed the session is ACTIVE and carries an active cart. Every
// verification failure surfaces as a single apperror auth error
// ("session is not active"); the underlying cause is logged, never returned to
// the client.
//
// Middleware wires the manager into an HTTP stack:
//
//	mgr := auth.NewManager(verifier, auth.WithLogger(log))
//	r.Use(reqctx.Middleware)
//	r.Use(auth.Middleware(mgr))
//
//	func handler(w http.ResponseWriter, r *http.Request) {
//	    p, _ := auth.PrincipalFromContext(r.Context())
//	    _ = p.CartID
//	}
package auth
