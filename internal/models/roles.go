package models

// Role is the access level the backend assigns to a logged-in user.
type Role string

const (
	RoleAdmin  Role = "admin"
	RoleStaff  Role = "staff"
	RoleClient Role = "client"
)

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	switch r {
	case RoleAdmin, RoleStaff, RoleClient:
		return true
	}
	return false
}

// HomePath returns the dashboard screen a role lands on after login.
func (r Role) HomePath() string {
	switch r {
	case RoleAdmin:
		return "/admin/dashboard"
	case RoleStaff:
		return "/staff/dashboard"
	case RoleClient:
		return "/client/dashboard"
	}
	return "/login"
}
