package usecase

import (
	"context"

	"github.com/google/uuid"

	"github.com/hszk-dev/clipstore/internal/domain/model"
	"github.com/hszk-dev/clipstore/internal/domain/repository"
)

// mockAssetStore provides a configurable mock for AssetStore.
type mockAssetStore struct {
	getFn     func(ctx context.Context, key string) (*repository.StoredAsset, error)
	putFn     func(ctx context.Context, key string, data []byte, declaredSize int64) error
	deleteFn  func(ctx context.Context, key string) error
	entriesFn func(ctx context.Context) ([]repository.AssetEntry, error)

	getCalls int
	putCalls int
}

func (m *mockAssetStore) Get(ctx context.Context, key string) (*repository.StoredAsset, error) {
	m.getCalls++
	if m.getFn != nil {
		return m.getFn(ctx, key)
	}
	return nil, nil
}

func (m *mockAssetStore) Put(ctx context.Context, key string, data []byte, declaredSize int64) error {
	m.putCalls++
	if m.putFn != nil {
		return m.putFn(ctx, key, data, declaredSize)
	}
	return nil
}

func (m *mockAssetStore) Delete(ctx context.Context, key string) error {
	if m.deleteFn != nil {
		return m.deleteFn(ctx, key)
	}
	return nil
}

func (m *mockAssetStore) Entries(ctx context.Context) ([]repository.AssetEntry, error) {
	if m.entriesFn != nil {
		return m.entriesFn(ctx)
	}
	return nil, nil
}

// mockOrigin provides a configurable mock for Origin.
type mockOrigin struct {
	fetchFn func(ctx context.Context, url string) ([]byte, int64, error)

	fetchCalls int
	fetchedURL string
}

func (m *mockOrigin) Fetch(ctx context.Context, url string) ([]byte, int64, error) {
	m.fetchCalls++
	m.fetchedURL = url
	if m.fetchFn != nil {
		return m.fetchFn(ctx, url)
	}
	return []byte("payload"), 7, nil
}

// mockCartRepository provides a configurable mock for CartRepository.
type mockCartRepository struct {
	addFn          func(ctx context.Context, item *model.CartItem) error
	removeFn       func(ctx context.Context, id uuid.UUID) error
	listByUserFn   func(ctx context.Context, userID uuid.UUID) ([]*model.CartItem, error)
	listClipURLsFn func(ctx context.Context) ([]string, error)
}

func (m *mockCartRepository) Add(ctx context.Context, item *model.CartItem) error {
	if m.addFn != nil {
		return m.addFn(ctx, item)
	}
	return nil
}

func (m *mockCartRepository) Remove(ctx context.Context, id uuid.UUID) error {
	if m.removeFn != nil {
		return m.removeFn(ctx, id)
	}
	return nil
}

func (m *mockCartRepository) ListByUserID(ctx context.Context, userID uuid.UUID) ([]*model.CartItem, error) {
	if m.listByUserFn != nil {
		return m.listByUserFn(ctx, userID)
	}
	return nil, nil
}

func (m *mockCartRepository) ListClipURLs(ctx context.Context) ([]string, error) {
	if m.listClipURLsFn != nil {
		return m.listClipURLsFn(ctx)
	}
	return nil, nil
}

// mockMessageQueue provides a configurable mock for MessageQueue.
type mockMessageQueue struct {
	publishFn func(ctx context.Context, task repository.PrefetchTask) error

	published []repository.PrefetchTask
}

func (m *mockMessageQueue) PublishPrefetchTask(ctx context.Context, task repository.PrefetchTask) error {
	m.published = append(m.published, task)
	if m.publishFn != nil {
		return m.publishFn(ctx, task)
	}
	return nil
}

func (m *mockMessageQueue) ConsumePrefetchTasks(ctx context.Context, handler func(task repository.PrefetchTask) error) error {
	return nil
}

func (m *mockMessageQueue) Close() error { return nil }

// mockAssetCache provides a configurable mock for AssetCache.
type mockAssetCache struct {
	resolveFn func(ctx context.Context, rawURL string) model.Handle

	protectedSets [][]string
}

func (m *mockAssetCache) Resolve(ctx context.Context, rawURL string) model.Handle {
	if m.resolveFn != nil {
		return m.resolveFn(ctx, rawURL)
	}
	return model.Handle{URL: rawURL, Source: model.SourceDirect}
}

func (m *mockAssetCache) SetProtected(urls []string) {
	m.protectedSets = append(m.protectedSets, urls)
}
