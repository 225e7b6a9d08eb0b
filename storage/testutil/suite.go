package testutil

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/kbukum/authkit/storage"
)

// RunStrategySuite runs the storage.Strategy contract tests against strategies
// produced by newStrategy. Each subtest gets its own strategy.
func RunStrategySuite(t *testing.T, newStrategy func(t *testing.T) storage.Strategy) {
	t.Helper()
	ctx := context.Background()

	t.Run("missing key is not found", func(t *testing.T) {
		s := newStrategy(t)
		v, found, err := s.GetItem(ctx, "access_token")
		if err != nil {
			t.Fatalf("GetItem: %v", err)
		}
		if found || v != "" {
			t.Errorf("expected not found, got %q (found=%v)", v, found)
		}
	})

	t.Run("set then get", func(t *testing.T) {
		s := newStrategy(t)
		mustSet(t, s, "access_token", "eyJhbGciOi.payload.sig")
		assertValue(t, s, "access_token", "eyJhbGciOi.payload.sig")
	})

	t.Run("set overwrites", func(t *testing.T) {
		s := newStrategy(t)
		mustSet(t, s, "access_token", "old")
		mustSet(t, s, "access_token", "new")
		assertValue(t, s, "access_token", "new")
	})

	t.Run("empty value is stored", func(t *testing.T) {
		s := newStrategy(t)
		mustSet(t, s, "expires_at", "")
		_, found, err := s.GetItem(ctx, "expires_at")
		if err != nil || !found {
			t.Errorf("expected empty value to be found, found=%v err=%v", found, err)
		}
	})

	t.Run("remove", func(t *testing.T) {
		s := newStrategy(t)
		mustSet(t, s, "refresh_token", "r1")
		if err := s.RemoveItem(ctx, "refresh_token"); err != nil {
			t.Fatalf("RemoveItem: %v", err)
		}
		assertMissing(t, s, "refresh_token")
	})

	t.Run("remove missing is a no-op", func(t *testing.T) {
		s := newStrategy(t)
		if err := s.RemoveItem(ctx, "never-set"); err != nil {
			t.Errorf("RemoveItem on missing key: %v", err)
		}
	})

	t.Run("clear removes everything", func(t *testing.T) {
		s := newStrategy(t)
		mustSet(t, s, "access_token", "a")
		mustSet(t, s, "refresh_token", "r")
		mustSet(t, s, "staff_access", "s")
		if err := s.Clear(ctx); err != nil {
			t.Fatalf("Clear: %v", err)
		}
		for _, k := range []string{"access_token", "refresh_token", "staff_access"} {
			assertMissing(t, s, k)
		}
	})

	t.Run("clear on empty", func(t *testing.T) {
		s := newStrategy(t)
		if err := s.Clear(ctx); err != nil {
			t.Errorf("Clear on empty strategy: %v", err)
		}
	})

	t.Run("concurrent writers", func(t *testing.T) {
		s := newStrategy(t)
		var wg sync.WaitGroup
		for i := range 8 {
			wg.Add(1)
			go func() {
				defer wg.Done()
				key := fmt.Sprintf("key_%d", i)
				if err := s.SetItem(ctx, key, key); err != nil {
					t.Errorf("SetItem(%s): %v", key, err)
				}
			}()
		}
		wg.Wait()
		for i := range 8 {
			key := fmt.Sprintf("key_%d", i)
			assertValue(t, s, key, key)
		}
	})
}

func mustSet(t *testing.T, s storage.Strategy, key, value string) {
	t.Helper()
	if err := s.SetItem(context.Background(), key, value); err != nil {
		t.Fatalf("SetItem(%s): %v", key, err)
	}
}

func assertValue(t *testing.T, s storage.Strategy, key, want string) {
	t.Helper()
	got, found, err := s.GetItem(context.Background(), key)
	if err != nil {
		t.Fatalf("GetItem(%s): %v", key, err)
	}
	if !found || got != want {
		t.Errorf("GetItem(%s) = %q (found=%v), want %q", key, got, found, want)
	}
}

func assertMissing(t *testing.T, s storage.Strategy, key string) {
	t.Helper()
	_, found, err := s.GetItem(context.Background(), key)
	if err != nil {
		t.Fatalf("GetItem(%s): %v", key, err)
	}
	if found {
		t.Errorf("expected %s to be removed", key)
	}
}
