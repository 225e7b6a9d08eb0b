package redis

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"

	"github.com/kbukum/authkit/storage"
	"github.com/kbukum/authkit/storage/testutil"
)

// newTestClient creates a Client backed by miniredis for testing.
func newTestClient(t *testing.T) (*Client, *miniredis.Miniredis) {
	t.Helper()
	mini := miniredis.RunT(t)

	client, err := New(Config{Addr: mini.Addr()}, nil)
	if err != nil {
		t.Fatalf("failed to create redis client: %v", err)
	}
	t.Cleanup(func() { client.Close() })
	return client, mini
}

func TestStore_Contract(t *testing.T) {
	testutil.RunStrategySuite(t, func(t *testing.T) storage.Strategy {
		client, _ := newTestClient(t)
		return NewStore(client, "authkit")
	})
}

func TestStore_PrefixesKeys(t *testing.T) {
	client, mini := newTestClient(t)
	s := NewStore(client, "app")

	if err := s.SetItem(context.Background(), "access_token", "tok"); err != nil {
		t.Fatal(err)
	}
	got, err := mini.Get("app:access_token")
	if err != nil || got != "tok" {
		t.Errorf("expected app:access_token=tok, got %q err=%v", got, err)
	}
	if mini.TTL("app:access_token") != 0 {
		t.Error("tokens must be stored without expiry")
	}
}

func TestStore_ClearOnlyOwnPrefix(t *testing.T) {
	client, mini := newTestClient(t)
	client.cfg.ScanCount = 2
	ctx := context.Background()
	s := NewStore(client, "app")

	for _, k := range []string{"a", "b", "c", "d", "e"} {
		if err := s.SetItem(ctx, k, k); err != nil {
			t.Fatal(err)
		}
	}
	_ = mini.Set("other:a", "keep")

	if err := s.Clear(ctx); err != nil {
		t.Fatalf("Clear: %v", err)
	}
	if keys := mini.Keys(); len(keys) != 1 || keys[0] != "other:a" {
		t.Errorf("expected only other:a to remain, got %v", keys)
	}
}

func TestStore_ErrorsAreStorageErrors(t *testing.T) {
	client, mini := newTestClient(t)
	s := NewStore(client, "app")
	mini.SetError("boom")

	if _, _, err := s.GetItem(context.Background(), "k"); err == nil {
		t.Fatal("expected error when redis fails")
	}
}

func TestFactoryRegistration(t *testing.T) {
	mini := miniredis.RunT(t)
	st, err := storage.New(storage.Config{Provider: storage.ProviderRedis, KeyPrefix: "f"}, &Config{Addr: mini.Addr()}, nil)
	if err != nil {
		t.Fatalf("storage.New: %v", err)
	}
	t.Cleanup(func() { st.(storage.Closer).Close() })

	if err := st.SetItem(context.Background(), "k", "v"); err != nil {
		t.Fatal(err)
	}
	if v, _ := mini.Get("f:k"); v != "v" {
		t.Errorf("expected f:k=v, got %q", v)
	}
}

func TestFactoryRejectsWrongConfigType(t *testing.T) {
	_, err := storage.New(storage.Config{Provider: storage.ProviderRedis}, "localhost", nil)
	if err == nil {
		t.Fatal("expected error for wrong provider config type")
	}
}

func TestConfig(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		wantErr bool
	}{
		{"defaults", Config{}, false},
		{"bad timeout", Config{DialTimeout: "soon"}, true},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			tc.cfg.ApplyDefaults()
			if err := tc.cfg.Validate(); (err != nil) != tc.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tc.wantErr)
			}
		})
	}
}

func TestClientPing(t *testing.T) {
	client, _ := newTestClient(t)
	if err := client.Ping(context.Background()); err != nil {
		t.Errorf("Ping: %v", err)
	}
	if err := client.Close(); err != nil {
		t.Errorf("Close: %v", err)
	}
	if err := client.Close(); err != nil {
		t.Errorf("second Close: %v", err)
	}
}
