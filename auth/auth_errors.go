package auth

// User-facing messages recorded in Session.Error. The login form and the
// expired-session screen render these verbatim.
const (
	IdentityDecodeMessage = "failed to extract identity from the login response"
	SessionExpiredMessage = "your session has expired, please sign in again"
)
