package store

import (
	"bytes"
	"context"
	"testing"
)

func TestMemory_PutGet(t *testing.T) {
	s := NewMemory()
	ctx := context.Background()

	payload := []byte("clip bytes")
	if err := s.Put(ctx, "https://bucket.s3.us-west-000.backblazeb2.com/a.mp4", payload, 10); err != nil {
		t.Fatalf("Put failed: %v", err)
	}

	got, err := s.Get(ctx, "https://bucket.s3.us-west-000.backblazeb2.com/a.mp4")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if got == nil {
		t.Fatal("expected stored asset, got nil")
	}
	if !bytes.Equal(got.Data, payload) {
		t.Errorf("Data = %q, want %q", got.Data, payload)
	}
	if got.DeclaredSize != 10 {
		t.Errorf("DeclaredSize = %d, want 10", got.DeclaredSize)
	}
}

func TestMemory_Get_Miss(t *testing.T) {
	s := NewMemory()

	got, err := s.Get(context.Background(), "https://example.com/absent.mp4")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if got != nil {
		t.Errorf("expected nil for miss, got %v", got)
	}
}

func TestMemory_Get_ReturnsCopy(t *testing.T) {
	s := NewMemory()
	ctx := context.Background()

	if err := s.Put(ctx, "k", []byte("abc"), 3); err != nil {
		t.Fatalf("Put failed: %v", err)
	}

	first, _ := s.Get(ctx, "k")
	first.Data[0] = 'x'

	second, _ := s.Get(ctx, "k")
	if !bytes.Equal(second.Data, []byte("abc")) {
		t.Errorf("stored payload mutated through returned slice: %q", second.Data)
	}
}

func TestMemory_Entries_InsertionOrder(t *testing.T) {
	s := NewMemory()
	ctx := context.Background()

	keys := []string{"first", "second", "third"}
	for i, k := range keys {
		if err := s.Put(ctx, k, []byte(k), int64(i+1)); err != nil {
			t.Fatalf("Put(%s) failed: %v", k, err)
		}
	}

	entries, err := s.Entries(ctx)
	if err != nil {
		t.Fatalf("Entries failed: %v", err)
	}
	if len(entries) != 3 {
		t.Fatalf("len(entries) = %d, want 3", len(entries))
	}
	for i, k := range keys {
		if entries[i].Key != k {
			t.Errorf("entries[%d].Key = %s, want %s", i, entries[i].Key, k)
		}
		if entries[i].DeclaredSize != int64(i+1) {
			t.Errorf("entries[%d].DeclaredSize = %d, want %d", i, entries[i].DeclaredSize, i+1)
		}
	}
	if !(entries[0].Seq < entries[1].Seq && entries[1].Seq < entries[2].Seq) {
		t.Errorf("sequence numbers not increasing: %v", entries)
	}
}

func TestMemory_Put_OverwriteReranks(t *testing.T) {
	s := NewMemory()
	ctx := context.Background()

	for _, k := range []string{"a", "b", "c"} {
		if err := s.Put(ctx, k, []byte(k), 1); err != nil {
			t.Fatalf("Put(%s) failed: %v", k, err)
		}
	}

	// Overwriting the oldest entry makes it the newest.
	if err := s.Put(ctx, "a", []byte("a2"), 2); err != nil {
		t.Fatalf("overwrite failed: %v", err)
	}

	entries, err := s.Entries(ctx)
	if err != nil {
		t.Fatalf("Entries failed: %v", err)
	}
	wantOrder := []string{"b", "c", "a"}
	for i, want := range wantOrder {
		if entries[i].Key != want {
			t.Errorf("entries[%d].Key = %s, want %s", i, entries[i].Key, want)
		}
	}

	got, _ := s.Get(ctx, "a")
	if !bytes.Equal(got.Data, []byte("a2")) {
		t.Errorf("overwritten payload = %q, want %q", got.Data, "a2")
	}
	if got.DeclaredSize != 2 {
		t.Errorf("overwritten DeclaredSize = %d, want 2", got.DeclaredSize)
	}
}

func TestMemory_Delete(t *testing.T) {
	s := NewMemory()
	ctx := context.Background()

	if err := s.Put(ctx, "k", []byte("v"), 1); err != nil {
		t.Fatalf("Put failed: %v", err)
	}
	if err := s.Delete(ctx, "k"); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}

	got, err := s.Get(ctx, "k")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if got != nil {
		t.Errorf("expected nil after delete, got %v", got)
	}

	entries, _ := s.Entries(ctx)
	if len(entries) != 0 {
		t.Errorf("len(entries) = %d after delete, want 0", len(entries))
	}

	// Deleting again must be a no-op.
	if err := s.Delete(ctx, "k"); err != nil {
		t.Fatalf("Delete of absent key failed: %v", err)
	}
}
