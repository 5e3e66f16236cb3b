package repository

import (
	"context"

	"github.com/google/uuid"

	"github.com/hszk-dev/clipstore/internal/domain/model"
)

// CartRepository defines the interface for cart persistence.
// Implementations should be provided by the infrastructure layer (PostgreSQL).
type CartRepository interface {
	// Add persists a new cart item.
	// Returns ErrDuplicateCartItem if the user already carted the clip.
	Add(ctx context.Context, item *model.CartItem) error

	// Remove deletes a cart item by ID.
	// Returns ErrCartItemNotFound if the item does not exist.
	Remove(ctx context.Context, id uuid.UUID) error

	// ListByUserID retrieves a user's cart items, newest first.
	ListByUserID(ctx context.Context, userID uuid.UUID) ([]*model.CartItem, error)

	// ListClipURLs retrieves the distinct clip URLs across all carts.
	// This is the membership source for the cache's protected set.
	ListClipURLs(ctx context.Context) ([]string, error)
}
