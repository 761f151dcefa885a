package memstore

import (
	"context"
	"errors"
	"testing"

	"pathsummarizer/internal/objectstore"
)

func TestStoreGetPut(t *testing.T) {
	store := New(2)
	ctx := context.Background()

	if _, err := store.Get(ctx, "missing"); !errors.Is(err, objectstore.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}

	if err := store.Put(ctx, "key", []byte("value")); err != nil {
		t.Fatalf("put: %v", err)
	}

	got, err := store.Get(ctx, "key")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if string(got) != "value" {
		t.Fatalf("unexpected value: %q", got)
	}
}

func TestStoreCopiesValues(t *testing.T) {
	store := New(0)
	ctx := context.Background()

	value := []byte("original")
	_ = store.Put(ctx, "key", value)
	value[0] = 'X'

	got, _ := store.Get(ctx, "key")
	got[1] = 'Y'

	again, _ := store.Get(ctx, "key")
	if string(again) != "original" {
		t.Fatalf("expected stored bytes to be isolated from callers, got %q", again)
	}
}

func TestStoreEvictsLeastRecentlyUsed(t *testing.T) {
	store := New(2)
	ctx := context.Background()

	_ = store.Put(ctx, "a", []byte("a"))
	_ = store.Put(ctx, "b", []byte("b"))

	if _, err := store.Get(ctx, "a"); err != nil {
		t.Fatalf("expected entry a to exist before eviction check")
	}

	_ = store.Put(ctx, "c", []byte("c"))

	if _, err := store.Get(ctx, "a"); err != nil {
		t.Fatalf("expected entry a to remain after evicting least recently used")
	}
	if _, err := store.Get(ctx, "b"); !errors.Is(err, objectstore.ErrNotFound) {
		t.Fatalf("expected entry b to be evicted")
	}
	if store.Len() != 2 {
		t.Fatalf("expected 2 entries, got %d", store.Len())
	}
}

func TestStoreOverwriteKeepsSingleEntry(t *testing.T) {
	store := New(0)
	ctx := context.Background()

	_ = store.Put(ctx, "key", []byte("one"))
	_ = store.Put(ctx, "key", []byte("two"))

	if store.Len() != 1 {
		t.Fatalf("expected overwrite to keep one entry, got %d", store.Len())
	}

	got, _ := store.Get(ctx, "key")
	if string(got) != "two" {
		t.Fatalf("expected last write to win, got %q", got)
	}
}
