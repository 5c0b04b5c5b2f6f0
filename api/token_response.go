package api

// TokenResponse is the payload returned by the authentication server from both
// the /auth/login and /auth/refresh endpoints.
type TokenResponse struct {
	// AccessToken is the JWT used to access protected resources.
	// Usage: attached by the authorization pipeline as "Authorization: Bearer <access_token>".
	// Lifespan: short-lived (typically 15 minutes - 1 hour).
	AccessToken string `json:"accessToken"`

	// RefreshToken is exchanged for a new token pair at /auth/refresh.
	// Security: rotates on each use; the previous refresh token is discarded.
	RefreshToken string `json:"refreshToken"`

	// IDToken carries the user's identity claims (sub, email, name,
	// preferred_username). The client decodes it without verification - it was
	// just received from the authentication server over TLS.
	IDToken string `json:"idToken"`

	// Role is the dashboard role asserted by the server for this user.
	// One of: "super-admin", "state-admin", "business-user".
	Role string `json:"role"`

	// TenantID identifies the state/UT tenant the user belongs to.
	TenantID string `json:"tenantId"`

	// PersonID is the upstream person registry identifier for the user.
	PersonID string `json:"personId"`
}

// LoginRequest is the credential payload submitted to /auth/login.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// RefreshRequest is the payload submitted to /auth/refresh.
type RefreshRequest struct {
	RefreshToken string `json:"refreshToken"`
}

// LogoutRequest is the payload submitted to /auth/logout.
type LogoutRequest struct {
	RefreshToken string `json:"refreshToken"`
}

// RegisterRequest is the admin onboarding payload submitted to /auth/register.
type RegisterRequest struct {
	Email       string `json:"email"`
	Name        string `json:"name"`
	PhoneNumber string `json:"phoneNumber,omitempty"`
	Role        string `json:"role"`
	TenantID    string `json:"tenantId,omitempty"`
	Password    string `json:"password"`
}
