// Package services holds the storefront's stateful core: the identity
// context, the identity-scoped collection store and its cart and wishlist
// instantiations, plus the identity directory and session tokens they rely
// on.
//
// Every store is owned by the application root and driven by the identity
// context: whenever the current identity changes, each store swaps in the
// collection persisted for the new identity (or publishes none when signed
// out). Published collections are shared values and must be treated as
// read-only by subscribers.
package services
