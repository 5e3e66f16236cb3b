package repository

import "context"

// Origin defines the interface for fetching asset bytes from the storage
// provider. Implementations should be provided by the infrastructure layer
// (plain HTTPS or an S3-compatible client).
type Origin interface {
	// Fetch retrieves the full payload at the canonical URL.
	// declaredSize is the origin-declared byte length (Content-Length or
	// object stat), 0 when the origin did not declare one.
	// Returns ErrObjectNotFound when the origin reports the asset missing.
	Fetch(ctx context.Context, url string) (data []byte, declaredSize int64, err error)
}
