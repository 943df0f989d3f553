// Package reqctx carries request-scoped data (request id, correlation id and
// the resolved authentication) alongside an in-flight request, so code deep in
// the call stack can read it without threading extra parameters.
//
// Each request gets its own store, created by Middleware (or New) at the start
// of handling and dropped with the request context. The authentication hook
// fills in the Authentication with a single Update; everything after it only
// reads through Get.
//
// # Usage
//
//	r := chi.NewRouter()
//	r.Use(reqctx.Middleware)
//
//	func handle(w http.ResponseWriter, r *http.Request) {
//		data := reqctx.Get(r.Context())
//		log.InfoContext(r.Context(), "handling", slog.String("correlation_id", data.CorrelationID))
//	}
//
// # Logger integration
//
//	log := logger.New(logger.WithContextExtractors(
//		reqctx.RequestIDExtractor(),
//		reqctx.CorrelationIDExtractor(),
//	))
//
// Invalid or oversized ids supplied by clients are replaced: the request id by
// a fresh UUID, the correlation id by the request id.
package reqctx
