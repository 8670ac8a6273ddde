package kvstore

import (
	"context"
	"testing"
)

func TestMemoryStore_SetGet(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	if err := s.Set(ctx, "key1", "value1"); err != nil {
		t.Fatalf("Set failed: %v", err)
	}

	value, err := s.Get(ctx, "key1")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if value != "value1" {
		t.Errorf("Expected value1, got %s", value)
	}
}

func TestMemoryStore_GetMissing(t *testing.T) {
	s := NewMemoryStore()

	_, err := s.Get(context.Background(), "missing")
	if err != ErrNotFound {
		t.Errorf("Expected ErrNotFound, got %v", err)
	}
}

func TestMemoryStore_Remove(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	s.Set(ctx, "key1", "value1")
	if err := s.Remove(ctx, "key1"); err != nil {
		t.Fatalf("Remove failed: %v", err)
	}

	if _, err := s.Get(ctx, "key1"); err != ErrNotFound {
		t.Errorf("Expected ErrNotFound after remove, got %v", err)
	}

	// Removing a missing key is not an error
	if err := s.Remove(ctx, "missing"); err != nil {
		t.Errorf("Remove of missing key failed: %v", err)
	}
}
