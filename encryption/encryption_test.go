package encryption

import (
	"strings"
	"testing"
)

func TestSealOpen(t *testing.T) {
	for _, alg := range []Algorithm{AlgorithmAESGCM, AlgorithmChaCha20} {
		t.Run(string(alg), func(t *testing.T) {
			enc, err := New("my-secret-key", WithAlgorithm(alg))
			if err != nil {
				t.Fatalf("New failed: %v", err)
			}

			sealed, err := enc.Seal("eyJhbGciOi.token", []byte("access_token"))
			if err != nil {
				t.Fatalf("Seal failed: %v", err)
			}
			if strings.Contains(sealed, "token") {
				t.Error("sealed value leaks plaintext")
			}

			got, err := enc.Open(sealed, []byte("access_token"))
			if err != nil {
				t.Fatalf("Open failed: %v", err)
			}
			if got != "eyJhbGciOi.token" {
				t.Errorf("expected round trip, got %q", got)
			}

			if _, err := enc.Open(sealed, []byte("refresh_token")); err == nil {
				t.Error("expected Open under different aad to fail")
			}
		})
	}
}

func TestSealUsesFreshNonces(t *testing.T) {
	enc, _ := New("k")
	a, _ := enc.Seal("same", nil)
	b, _ := enc.Seal("same", nil)
	if a == b {
		t.Error("expected different ciphertexts for the same plaintext")
	}
}

func TestOpenRejectsBadInput(t *testing.T) {
	enc, _ := New("k")
	other, _ := New("other")
	sealed, _ := other.Seal("x", nil)

	tests := []struct {
		name  string
		input string
	}{
		{"not base64", "%%%"},
		{"too short", "AAAA"},
		{"wrong key", sealed},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := enc.Open(tc.input, nil); err == nil {
				t.Error("expected error")
			}
		})
	}
}

func TestNewErrors(t *testing.T) {
	if _, err := New(""); err == nil {
		t.Error("expected empty key to fail")
	}
	if _, err := New("k", WithAlgorithm("rot13")); err == nil {
		t.Error("expected unknown algorithm to fail")
	}
}
