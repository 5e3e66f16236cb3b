package store

import (
	"container/list"
	"context"
	"sync"

	"github.com/hszk-dev/clipstore/internal/domain/repository"
)

// memoryEntry is the value stored in the order list elements. The key lives
// here because eviction enumeration starts from list nodes.
type memoryEntry struct {
	key          string
	data         []byte
	declaredSize int64
	seq          uint64
}

// Memory is an in-process AssetStore: a map for O(1) lookup and a
// doubly-linked list for insertion order (front = oldest). Suitable for
// single-instance deployments and tests; contents live for the process
// lifetime only.
type Memory struct {
	mu    sync.RWMutex
	items map[string]*list.Element
	order *list.List
	seq   uint64
}

// Compile-time verification that Memory implements repository.AssetStore.
var _ repository.AssetStore = (*Memory)(nil)

// NewMemory creates an empty in-memory asset store.
func NewMemory() *Memory {
	return &Memory{
		items: make(map[string]*list.Element),
		order: list.New(),
	}
}

// Get retrieves a stored asset. Returns nil, nil on miss.
func (s *Memory) Get(_ context.Context, key string) (*repository.StoredAsset, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	el, ok := s.items[key]
	if !ok {
		return nil, nil
	}
	e := el.Value.(*memoryEntry)
	return &repository.StoredAsset{
		Data:         cloneBytes(e.data),
		DeclaredSize: e.declaredSize,
	}, nil
}

// Put stores an asset, overwriting any existing entry. Overwrites re-rank
// the entry as the newest insertion.
func (s *Memory) Put(_ context.Context, key string, data []byte, declaredSize int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if el, ok := s.items[key]; ok {
		s.order.Remove(el)
		delete(s.items, key)
	}

	s.seq++
	e := &memoryEntry{
		key:          key,
		data:         cloneBytes(data),
		declaredSize: declaredSize,
		seq:          s.seq,
	}
	s.items[key] = s.order.PushBack(e)
	return nil
}

// Delete removes an entry. Absent keys are a no-op.
func (s *Memory) Delete(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if el, ok := s.items[key]; ok {
		s.order.Remove(el)
		delete(s.items, key)
	}
	return nil
}

// Entries enumerates stored entries oldest first.
func (s *Memory) Entries(_ context.Context) ([]repository.AssetEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	entries := make([]repository.AssetEntry, 0, s.order.Len())
	for el := s.order.Front(); el != nil; el = el.Next() {
		e := el.Value.(*memoryEntry)
		entries = append(entries, repository.AssetEntry{
			Key:          e.key,
			DeclaredSize: e.declaredSize,
			Seq:          e.seq,
		})
	}
	return entries, nil
}

// cloneBytes copies b so callers and the store never alias the same backing
// array.
func cloneBytes(b []byte) []byte {
	if b == nil {
		return nil
	}
	out := make([]byte, len(b))
	copy(out, b)
	return out
}
