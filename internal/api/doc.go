// Package api exposes the checkout endpoints of the service over HTTP.
//
// Every /v1/checkout route runs behind auth.Middleware: the session header is
// verified against the session store and the resulting principal decides
// which cart the request acts on. Sessions of other carts answer 404.
// The vendor webhook route verifies the HMAC signature and relays the event
// to the shop callback stored in the session metadata.
package api
