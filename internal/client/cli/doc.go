// Package cli provides the interactive storefront command-line client.
//
// It drives a wired app.App through a REPL: browse and filter the catalog,
// sign in or register, and manage the cart and wishlist of the signed-in
// identity. The prompt badge follows the identity and the live cart and
// wishlist counts through store subscriptions.
//
// Key features:
//   - Register / Login / Logout / WhoAmI
//   - Products (sorted), Search, Filter (expressions), Categories
//   - Cart: show, add, update, remove, clear
//   - Wishlist: show, wish, unwish
//   - Admin only: newproduct, price, delproduct
//
// The REPL is started via App.Run(ctx), which blocks until the user exits.
// See App and runREPL for details.
package cli
