package domain

import (
	"fmt"
	"slices"
	"time"
)

// TokenType is the scheme clients must use when presenting a session token.
const TokenType = "Bearer"

// Credentials is the login input. It is never persisted and its String form
// hides the password so it can't leak through %v formatting.
type Credentials struct {
	Identifier string
	Password   string
}

func (c Credentials) String() string {
	return fmt.Sprintf("Credentials{Identifier:%s Password:[REDACTED]}", c.Identifier)
}

// TokenClaims is the content carried by a validated token.
type TokenClaims struct {
	Subject   string
	IssuedAt  time.Time
	ExpiresAt time.Time
}

// Token is a freshly issued, signed token.
type Token struct {
	Raw string
	TokenClaims
}

// Claims is a validated token enriched with the subject's current account data.
// Roles are read from the store at validation time, not from the token.
type Claims struct {
	TokenClaims
	UserID int64
	Email  string
	Roles  []string
}

// HasAnyRole reports whether the claims carry at least one of roles.
func (c *Claims) HasAnyRole(roles ...string) bool {
	for _, r := range roles {
		if slices.Contains(c.Roles, r) {
			return true
		}
	}
	return false
}

// Session is returned by a successful login.
type Session struct {
	Token     string    `json:"token"`
	Type      string    `json:"type"`
	ExpiresAt time.Time `json:"expires_at"`
	ID        int64     `json:"id"`
	Username  string    `json:"username"`
	Email     string    `json:"email"`
	Roles     []string  `json:"roles"`
}

// AuthorizationDecision is the outcome of a role check.
type AuthorizationDecision struct {
	Authenticated bool
	Granted       bool
	// Matched is the first required role the caller holds, if any.
	Matched string
	// Missing lists the required roles the caller does not hold.
	Missing []string
}
