package model

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

// CartItem represents a clip a user has placed in their cart. Carted clips
// are the source of the cache's protected set: they must stay resolvable
// for the whole checkout flow.
type CartItem struct {
	ID      uuid.UUID
	UserID  uuid.UUID
	ClipURL string
	AddedAt time.Time
}

var (
	ErrInvalidCartUserID = errors.New("cart user ID cannot be nil")
	ErrEmptyClipURL      = errors.New("clip URL cannot be empty")
)

// NewCartItem creates a cart item. ClipURL is expected to already be in
// canonical form; the service layer normalizes before constructing.
func NewCartItem(userID uuid.UUID, clipURL string) (*CartItem, error) {
	if userID == uuid.Nil {
		return nil, ErrInvalidCartUserID
	}
	if clipURL == "" {
		return nil, ErrEmptyClipURL
	}

	return &CartItem{
		ID:      uuid.New(),
		UserID:  userID,
		ClipURL: clipURL,
		AddedAt: time.Now(),
	}, nil
}
