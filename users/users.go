package users

// RoleType represents the dashboard role asserted by the authentication server.
type RoleType string

const (
	RoleSuperAdmin   RoleType = "super-admin"   // Manages all states/UTs and system configuration
	RoleStateAdmin   RoleType = "state-admin"   // Manages a single state/UT's data and rules
	RoleBusinessUser RoleType = "business-user" // Read-only dashboard access
)

// Role-dependent landing routes after a successful login.
const (
	SuperAdminHome = "/super-admin"
	StateAdminHome = "/state-admin"
	DefaultHome    = "/"
)

// HomeRoute returns the landing route for the role. Unknown roles land on the
// default dashboard.
func (r RoleType) HomeRoute() string {
	switch r {
	case RoleSuperAdmin:
		return SuperAdminHome
	case RoleStateAdmin:
		return StateAdminHome
	}
	return DefaultHome
}

// User is the identity decoded from an identity token plus the role and tenant
// asserted by the authentication server. It is rebuilt in full on every
// login/refresh/bootstrap and never mutated independently of those operations.
type User struct {
	ID          string   `json:"id,omitempty"`           // Subject claim - unique identifier for the user
	Name        string   `json:"name,omitempty"`         // Display name
	Email       string   `json:"email,omitempty"`        // User's email address
	PhoneNumber string   `json:"phone_number,omitempty"` // Preferred-username claim carries the phone number
	Role        RoleType `json:"role,omitempty"`         // Dashboard role
	TenantID    string   `json:"tenant_id,omitempty"`    // State/UT tenant the user administers
	PersonID    string   `json:"person_id,omitempty"`    // Upstream person registry identifier
}

// IsSuperAdmin returns true if the user holds the super admin role.
func (u *User) IsSuperAdmin() bool {
	return u.Role == RoleSuperAdmin
}

// IsStateAdmin returns true if the user holds the state admin role.
func (u *User) IsStateAdmin() bool {
	return u.Role == RoleStateAdmin
}
