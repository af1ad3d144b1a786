package vector_store

import (
	"context"
	"errors"
	"sync"
	"testing"
)

func TestCollectionCache_GetOrCreate(t *testing.T) {
	cache := NewCollectionCache()
	creates := 0

	create := func(ctx context.Context, name string) (string, error) {
		creates++
		return "id-" + name, nil
	}

	id, err := cache.GetOrCreate(context.Background(), "course-1", create)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if id != "id-course-1" {
		t.Errorf("got id %q", id)
	}

	// Second lookup must reuse the first creation.
	id2, err := cache.GetOrCreate(context.Background(), "course-1", create)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if id2 != id {
		t.Errorf("expected cached id %q, got %q", id, id2)
	}
	if creates != 1 {
		t.Errorf("expected exactly 1 create call, got %d", creates)
	}
}

func TestCollectionCache_ErrorNotCached(t *testing.T) {
	cache := NewCollectionCache()
	calls := 0

	failing := func(ctx context.Context, name string) (string, error) {
		calls++
		if calls == 1 {
			return "", errors.New("store unreachable")
		}
		return "id-x", nil
	}

	if _, err := cache.GetOrCreate(context.Background(), "x", failing); err == nil {
		t.Fatal("expected error on first call")
	}
	id, err := cache.GetOrCreate(context.Background(), "x", failing)
	if err != nil {
		t.Fatalf("unexpected error after retry: %v", err)
	}
	if id != "id-x" {
		t.Errorf("got id %q", id)
	}
}

func TestCollectionCache_ConcurrentSingleCreate(t *testing.T) {
	cache := NewCollectionCache()
	creates := 0

	create := func(ctx context.Context, name string) (string, error) {
		creates++
		return "id", nil
	}

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := cache.GetOrCreate(context.Background(), "shared", create); err != nil {
				t.Errorf("unexpected error: %v", err)
			}
		}()
	}
	wg.Wait()

	if creates != 1 {
		t.Errorf("expected a single creation under concurrency, got %d", creates)
	}
}

func TestCollectionCache_Invalidate(t *testing.T) {
	cache := NewCollectionCache()
	creates := 0
	create := func(ctx context.Context, name string) (string, error) {
		creates++
		return "id", nil
	}

	cache.GetOrCreate(context.Background(), "a", create)
	cache.Invalidate("a")
	cache.GetOrCreate(context.Background(), "a", create)

	if creates != 2 {
		t.Errorf("expected re-creation after invalidate, got %d creates", creates)
	}
}
