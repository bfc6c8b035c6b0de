package cache

import (
	"context"
	"fmt"
	"sync"
	"testing"
)

// TestMemoryBasicOperations tests the get/set/delete/has contract.
func TestMemoryBasicOperations(t *testing.T) {
	t.Parallel()

	ctx := context.Background()

	t.Run("get on empty cache is a miss", func(t *testing.T) {
		t.Parallel()

		m := NewMemory()
		v, ok, err := m.Get(ctx, "absent")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if ok {
			t.Errorf("expected miss, got hit with %q", v)
		}
	})

	t.Run("set then get returns the value", func(t *testing.T) {
		t.Parallel()

		m := NewMemory()
		if err := m.Set(ctx, "k", "v"); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		v, ok, err := m.Get(ctx, "k")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !ok || v != "v" {
			t.Errorf("expected hit with v, got ok=%v value=%q", ok, v)
		}
	})

	t.Run("has reflects presence", func(t *testing.T) {
		t.Parallel()

		m := NewMemory()
		if ok, _ := m.Has(ctx, "k"); ok {
			t.Error("expected absent before set")
		}
		_ = m.Set(ctx, "k", "v")
		if ok, _ := m.Has(ctx, "k"); !ok {
			t.Error("expected present after set")
		}
	})

	t.Run("delete removes the key and is idempotent", func(t *testing.T) {
		t.Parallel()

		m := NewMemory()
		_ = m.Set(ctx, "k", "v")
		if err := m.Delete(ctx, "k"); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if ok, _ := m.Has(ctx, "k"); ok {
			t.Error("expected absent after delete")
		}
		// Deleting again must not fail.
		if err := m.Delete(ctx, "k"); err != nil {
			t.Fatalf("unexpected error on second delete: %v", err)
		}
	})

	t.Run("set overwrites", func(t *testing.T) {
		t.Parallel()

		m := NewMemory()
		_ = m.Set(ctx, "k", "old")
		_ = m.Set(ctx, "k", "new")
		v, _, _ := m.Get(ctx, "k")
		if v != "new" {
			t.Errorf("expected new, got %q", v)
		}
	})
}

// TestMemoryConcurrentAccess tests that concurrent writers and readers do
// not race. Last-write-wins on the same key is acceptable by contract.
func TestMemoryConcurrentAccess(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	m := NewMemory()

	var wg sync.WaitGroup
	for i := range 50 {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			key := fmt.Sprintf("key-%d", i%10)
			_ = m.Set(ctx, key, fmt.Sprintf("value-%d", i))
			_, _, _ = m.Get(ctx, key)
			_, _ = m.Has(ctx, key)
		}(i)
	}
	wg.Wait()

	if m.Len() != 10 {
		t.Errorf("expected 10 distinct keys, got %d", m.Len())
	}
}
