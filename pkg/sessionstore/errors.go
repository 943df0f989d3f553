package sessionstore

// Public error codes. The accompanying *apperror.Error values carry the
// upstream status and body as private fields.
const (
	CodeTokenFailed        = "session_store.token_failed"
	CodeSessionNotFound    = "session_store.session_not_found"
	CodeSessionFetchFailed = "session_store.session_fetch_failed"
	CodeSessionInactive    = "session_store.session_inactive"
	CodeSessionMalformed   = "session_store.session_malformed"
	CodeCartMissing        = "session_store.cart_missing"
)
