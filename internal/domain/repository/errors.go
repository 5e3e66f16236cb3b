package repository

import "errors"

var (
	// ErrObjectNotFound is returned when an asset does not exist at the origin.
	ErrObjectNotFound = errors.New("object not found")

	// ErrCartItemNotFound is returned when a cart item cannot be found.
	ErrCartItemNotFound = errors.New("cart item not found")

	// ErrDuplicateCartItem is returned when a user adds a clip already in their cart.
	ErrDuplicateCartItem = errors.New("cart item already exists")

	// ErrBucketNotFound is returned when the configured origin bucket does not exist.
	ErrBucketNotFound = errors.New("bucket not found")
)
