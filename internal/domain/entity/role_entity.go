package entity

// Role is the authorization role carried by a user and by its access tokens
type Role string

const (
	RoleUser  Role = "user"
	RoleAdmin Role = "admin"
)

// Valid reports whether r is one of the known roles
func (r Role) Valid() bool {
	return r == RoleUser || r == RoleAdmin
}

// IsAdmin reports whether r grants the admin gate
func (r Role) IsAdmin() bool { return r == RoleAdmin }
