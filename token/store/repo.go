package store

// TokenPair is the persisted credential pair. The two tokens are always
// written and removed together; no partial state is observable through Repo.
type TokenPair struct {
	AccessToken  string `json:"access_token"`  // Short-lived bearer credential
	RefreshToken string `json:"refresh_token"` // Long-lived credential, rotates on each refresh
}

// Repo persists the access/refresh token pair across process restarts.
// Implementations perform no network calls and no validation; they are pure
// storage shims for the session manager.
type Repo interface {
	Save(accessToken, refreshToken string) error
	Load() (*TokenPair, error) // nil pair (no error) when nothing is stored
	Clear() error
}
