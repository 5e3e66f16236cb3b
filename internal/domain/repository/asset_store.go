package repository

import "context"

// StoredAsset is a cached payload together with the byte length the origin
// declared at fetch time. DeclaredSize is the basis for budget accounting;
// it is never verified against len(Data).
type StoredAsset struct {
	Data         []byte
	DeclaredSize int64
}

// AssetEntry describes one stored entry for eviction bookkeeping.
type AssetEntry struct {
	// Key is the canonical asset URL.
	Key string
	// DeclaredSize is the origin-declared byte length recorded at insert.
	DeclaredSize int64
	// Seq is the insertion sequence number. Entries enumerate oldest first;
	// Seq makes the ordering explicit rather than an artifact of backend
	// iteration order.
	Seq uint64
}

// AssetStore defines the interface for the keyed binary asset store.
// Implementations should be provided by the infrastructure layer
// (in-memory or Redis).
type AssetStore interface {
	// Get retrieves a stored asset by canonical URL.
	// Returns nil, nil if the key is absent (cache miss).
	Get(ctx context.Context, key string) (*StoredAsset, error)

	// Put stores an asset under the canonical URL, overwriting any existing
	// entry. An overwrite re-ranks the entry as the newest insertion.
	Put(ctx context.Context, key string, data []byte, declaredSize int64) error

	// Delete removes an entry. Deleting an absent key is a no-op, so
	// concurrent eviction passes may safely race.
	Delete(ctx context.Context, key string) error

	// Entries enumerates all stored entries in insertion order, oldest first.
	Entries(ctx context.Context) ([]AssetEntry, error)
}
