package usecase

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/hszk-dev/clipstore/internal/asseturl"
	"github.com/hszk-dev/clipstore/internal/domain/model"
	"github.com/hszk-dev/clipstore/internal/domain/repository"
)

// CartService defines the interface for cart business logic. The cart is
// the source of truth for the cache's protected set: a carted clip must not
// be evicted while the user is checking out.
type CartService interface {
	// AddItem places a clip in a user's cart, refreshes the cache's
	// protected set, and requests a cache warm-up for the clip.
	AddItem(ctx context.Context, userID uuid.UUID, clipURL string) (*model.CartItem, error)

	// RemoveItem takes a clip out of a cart and refreshes the protected set,
	// making the clip evictable again if no other cart holds it.
	RemoveItem(ctx context.Context, id uuid.UUID) error

	// ListItems retrieves a user's cart contents, newest first.
	ListItems(ctx context.Context, userID uuid.UUID) ([]*model.CartItem, error)
}

type cartService struct {
	repo  repository.CartRepository
	queue repository.MessageQueue
	cache AssetCache
}

// NewCartService creates a new CartService instance.
func NewCartService(
	repo repository.CartRepository,
	queue repository.MessageQueue,
	cache AssetCache,
) CartService {
	return &cartService{
		repo:  repo,
		queue: queue,
		cache: cache,
	}
}

// AddItem persists the cart item, re-derives the protected set and
// publishes a prefetch task. Warm-up publish failures are logged, not
// returned: the next on-demand resolve fetches the clip anyway.
func (s *cartService) AddItem(ctx context.Context, userID uuid.UUID, clipURL string) (*model.CartItem, error) {
	canonical := asseturl.Normalize(clipURL)

	item, err := model.NewCartItem(userID, canonical)
	if err != nil {
		return nil, err
	}

	if err := s.repo.Add(ctx, item); err != nil {
		return nil, fmt.Errorf("add cart item: %w", err)
	}

	s.reapplyProtection(ctx)

	if err := s.queue.PublishPrefetchTask(ctx, repository.PrefetchTask{ClipURL: canonical}); err != nil {
		slog.Warn("failed to publish prefetch task",
			"clip_url", canonical,
			"error", err,
		)
	}

	return item, nil
}

// RemoveItem deletes the cart item and re-derives the protected set.
func (s *cartService) RemoveItem(ctx context.Context, id uuid.UUID) error {
	if err := s.repo.Remove(ctx, id); err != nil {
		return err
	}

	s.reapplyProtection(ctx)
	return nil
}

// ListItems retrieves a user's cart contents.
func (s *cartService) ListItems(ctx context.Context, userID uuid.UUID) ([]*model.CartItem, error) {
	return s.repo.ListByUserID(ctx, userID)
}

// reapplyProtection replaces the cache's protected set with the clip URLs
// currently carted across all users. On enumeration failure the previous
// set stays in force; stale protection is the safe direction to fail in.
func (s *cartService) reapplyProtection(ctx context.Context) {
	urls, err := s.repo.ListClipURLs(ctx)
	if err != nil {
		slog.Warn("failed to list carted clip URLs, keeping previous protected set",
			"error", err,
		)
		return
	}
	s.cache.SetProtected(urls)
}
