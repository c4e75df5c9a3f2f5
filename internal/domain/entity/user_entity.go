package entity

import (
	"strings"
	"time"
)

// User is the aggregate root for user domain
// Passwords are stored as bcrypt hashes in Password field
//
// RefreshToken holds the single outstanding refresh token; empty means none.
// Issuing a new one overwrites the previous value.
type User struct {
	ID           string
	Email        string
	Password     string
	Name         string
	AvatarURL    string
	Role         Role
	RefreshToken string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// UserPatch lists the fields an update may touch. Nil fields are left unchanged.
type UserPatch struct {
	Email     *string
	Password  *string // bcrypt hash, never plain text
	Name      *string
	AvatarURL *string
	Role      *Role
}

// Empty reports whether the patch changes nothing
func (p UserPatch) Empty() bool {
	return p.Email == nil && p.Password == nil && p.Name == nil && p.AvatarURL == nil && p.Role == nil
}

// Apply copies the set fields onto u
func (p UserPatch) Apply(u *User) {
	if p.Email != nil {
		u.Email = *p.Email
	}
	if p.Password != nil {
		u.Password = *p.Password
	}
	if p.Name != nil {
		u.Name = *p.Name
	}
	if p.AvatarURL != nil {
		u.AvatarURL = *p.AvatarURL
	}
	if p.Role != nil {
		u.Role = *p.Role
	}
}

// NormalizeEmail lower-cases and trims an email address for storage and lookup
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
