// Package shipvendor is the client of the shipping vendor's checkout session
// API (session.create, session.pull, session.get, session.update and
// session.complete).
//
// Each call is wrapped by the retry engine. A response with a status below 500
// is returned at once as an *APIError; 5xx answers, network failures and
// undecodable bodies are retried with exponential backoff. When the attempts
// run out the caller receives a *retry.TerminalError whose message names the
// operation, for example "shipping vendor request failed: session.create".
//
// PullCheckoutSession additionally treats a session that is still
// "processing" as an unsuccessful attempt and polls until the vendor settles.
//
// The request's correlation id, when present in the reqctx store, is sent as
// X-Correlation-ID on every attempt.
package shipvendor
