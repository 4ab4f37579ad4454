package domain

import (
	"slices"
	"time"
)

const (
	RoleUser  = "ROLE_USER"
	RoleAdmin = "ROLE_ADMIN"
)

// MaxPasswordBytes is the longest password bcrypt accepts.
const MaxPasswordBytes = 72

// adminRoleLiteral is the only requested role value that maps to RoleAdmin.
const adminRoleLiteral = "admin"

// User models an account known to the credential store.
type User struct {
	ID           int64     `json:"id"`
	Username     string    `json:"username"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	Roles        []string  `json:"roles"`
	Enabled      bool      `json:"enabled"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// HasRole reports whether the user carries role.
func (u *User) HasRole(role string) bool {
	return slices.Contains(u.Roles, role)
}

// ResolveRoles maps requested role labels onto the canonical role set.
// "admin" becomes RoleAdmin and every other label becomes RoleUser.
// An empty request yields {RoleUser}. The result is sorted and free of duplicates.
func ResolveRoles(requested []string) []string {
	if len(requested) == 0 {
		return []string{RoleUser}
	}

	roles := make([]string, 0, 2)
	for _, r := range requested {
		mapped := RoleUser
		if r == adminRoleLiteral {
			mapped = RoleAdmin
		}
		if !slices.Contains(roles, mapped) {
			roles = append(roles, mapped)
		}
	}
	slices.Sort(roles)
	return roles
}
