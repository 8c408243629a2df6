// Package common contains shared constants and sentinel errors used across
// storefront components.
package common

// Persisted key layout. Collection keys are "<prefix>.<identity id>".
const (
	SessionTokenKey    = "session.token"
	SessionIdentityKey = "session.identity"

	// TokenSecretKey holds the generated signing secret when none is
	// configured.
	TokenSecretKey = "app.token_secret"

	CartKeyPrefix     = "cart"
	WishlistKeyPrefix = "wishlist"
)

// TestPassword is the only password the simulated identity backend accepts.
const TestPassword = "password123"
