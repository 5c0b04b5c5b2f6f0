package auth

import "github.com/jalsoochak/go-admin-console/users"

// Session is the authoritative authentication state. It is owned and mutated
// exclusively by the SessionManager; everything else reads snapshots of it.
type Session struct {
	AccessToken  string      // Short-lived bearer credential, empty when unauthenticated
	RefreshToken string      // Long-lived credential used to mint new access tokens
	User         *users.User // Decoded identity, nil when unauthenticated

	// IsBootstrapping is true only during the initial attempt to restore a
	// persisted session. The transition to false is one-way for the lifetime
	// of the process.
	IsBootstrapping bool

	// SessionExpired is set once a refresh attempt has definitively failed and
	// is cleared only by a fresh login.
	SessionExpired bool

	// Error is the last user-facing operation failure, empty when none.
	Error string
}

// IsAuthenticated is true iff both an access token and a decoded user are
// present.
func (s Session) IsAuthenticated() bool {
	return s.AccessToken != "" && s.User != nil
}
