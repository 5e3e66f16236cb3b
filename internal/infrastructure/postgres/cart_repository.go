package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/hszk-dev/clipstore/internal/domain/model"
	"github.com/hszk-dev/clipstore/internal/domain/repository"
)

// DBTX is an interface that abstracts pgxpool.Pool and pgx.Tx for testability.
type DBTX interface {
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// CartRepository implements repository.CartRepository using PostgreSQL.
// cart_items carries a unique (user_id, clip_url) constraint so a clip can
// be carted once per user.
type CartRepository struct {
	db DBTX
}

// Compile-time verification that CartRepository implements repository.CartRepository.
var _ repository.CartRepository = (*CartRepository)(nil)

// NewCartRepository creates a new CartRepository instance.
func NewCartRepository(db DBTX) *CartRepository {
	return &CartRepository{db: db}
}

// Add persists a new cart item.
func (r *CartRepository) Add(ctx context.Context, item *model.CartItem) error {
	const query = `
		INSERT INTO cart_items (id, user_id, clip_url, added_at)
		VALUES ($1, $2, $3, $4)
	`

	_, err := r.db.Exec(ctx, query,
		item.ID,
		item.UserID,
		item.ClipURL,
		item.AddedAt,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return repository.ErrDuplicateCartItem
		}
		return fmt.Errorf("failed to add cart item: %w", err)
	}

	return nil
}

// Remove deletes a cart item by ID.
func (r *CartRepository) Remove(ctx context.Context, id uuid.UUID) error {
	const query = `
		DELETE FROM cart_items
		WHERE id = $1
	`

	tag, err := r.db.Exec(ctx, query, id)
	if err != nil {
		return fmt.Errorf("failed to remove cart item: %w", err)
	}

	if tag.RowsAffected() == 0 {
		return repository.ErrCartItemNotFound
	}

	return nil
}

// ListByUserID retrieves a user's cart items, newest first.
func (r *CartRepository) ListByUserID(ctx context.Context, userID uuid.UUID) ([]*model.CartItem, error) {
	const query = `
		SELECT id, user_id, clip_url, added_at
		FROM cart_items
		WHERE user_id = $1
		ORDER BY added_at DESC
	`

	rows, err := r.db.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to query cart items: %w", err)
	}
	defer rows.Close()

	var items []*model.CartItem
	for rows.Next() {
		var item model.CartItem
		if err := rows.Scan(&item.ID, &item.UserID, &item.ClipURL, &item.AddedAt); err != nil {
			return nil, fmt.Errorf("failed to scan cart item: %w", err)
		}
		items = append(items, &item)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating cart items: %w", err)
	}

	return items, nil
}

// ListClipURLs retrieves the distinct clip URLs across all carts.
func (r *CartRepository) ListClipURLs(ctx context.Context) ([]string, error) {
	const query = `
		SELECT DISTINCT clip_url
		FROM cart_items
	`

	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query carted clip URLs: %w", err)
	}
	defer rows.Close()

	var urls []string
	for rows.Next() {
		var u string
		if err := rows.Scan(&u); err != nil {
			return nil, fmt.Errorf("failed to scan clip URL: %w", err)
		}
		urls = append(urls, u)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating clip URLs: %w", err)
	}

	return urls, nil
}
