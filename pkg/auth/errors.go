package auth

// Public error codes.
const (
	CodeSessionInactive = "auth.session_inactive"
	CodeHeaderMissing   = "auth.header_missing"
)
