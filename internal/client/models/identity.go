// Package models defines the client-side domain types of the storefront:
// identities, catalog products, carts and wishlists.
package models

import (
	"strings"
	"time"
)

// Role is the authorization class of an identity.
type Role string

const (
	RoleUser  Role = "user"
	RoleAdmin Role = "admin"
)

// Identity is an authenticated principal. Values are replaced, never mutated.
type Identity struct {
	ID        int64     `json:"id"`
	Email     string    `json:"email"`
	FirstName string    `json:"firstName"`
	LastName  string    `json:"lastName"`
	Role      Role      `json:"role"`
	CreatedAt time.Time `json:"createdAt"`
}

// DisplayName is "first last", falling back to the email when both are empty.
func (i Identity) DisplayName() string {
	name := strings.TrimSpace(i.FirstName + " " + i.LastName)
	if name == "" {
		return i.Email
	}
	return name
}

// IsAdmin reports whether the identity holds the administrator role.
func (i Identity) IsAdmin() bool {
	return i.Role == RoleAdmin
}

// Credentials are the sign-in inputs.
type Credentials struct {
	Email    string
	Password string
}

// Profile is the registration input.
type Profile struct {
	Email     string
	Password  string
	FirstName string
	LastName  string
}

// AuthResult is returned by a successful sign-in or registration.
type AuthResult struct {
	Identity Identity
	Token    string
}
