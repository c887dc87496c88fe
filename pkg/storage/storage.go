// Package storage is the device key-value store backing the client's local
// state: the auth token, the cart backup, and the wishlist. Keys are logical
// names, optionally scoped per user, with an unscoped fallback for guests.
package storage

import "context"

const (
	KeyAuthToken = "auth-token"
	KeyCart      = "cart"
	KeyWishlist  = "wishlist"
)

// UserCartKey returns the user-scoped cart key, or the guest key when the
// user id is unknown.
func UserCartKey(userID string) string {
	if userID == "" {
		return KeyCart
	}
	return KeyCart + "_" + userID
}

// UserWishlistKey returns the user-scoped wishlist key, or the guest key.
func UserWishlistKey(userID string) string {
	if userID == "" {
		return KeyWishlist
	}
	return KeyWishlist + "_" + userID
}

// Store exposes namespaced get/set/remove over device storage.
type Store interface {
	// Get returns the stored value and whether the key exists.
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, value []byte) error
	Remove(ctx context.Context, key string) error
	Close() error
}
