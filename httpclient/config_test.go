package httpclient

import (
	"testing"
	"time"

	"github.com/kbukum/authkit/version"
)

func TestConfig_ApplyDefaults(t *testing.T) {
	cfg := Config{}
	cfg.ApplyDefaults()
	if cfg.Timeout != 30*time.Second {
		t.Errorf("expected default timeout 30s, got %v", cfg.Timeout)
	}
	if cfg.UserAgent != version.UserAgent() {
		t.Errorf("expected default user agent, got %q", cfg.UserAgent)
	}

	kept := Config{Timeout: 10 * time.Second, UserAgent: "cli/1.0"}
	kept.ApplyDefaults()
	if kept.Timeout != 10*time.Second || kept.UserAgent != "cli/1.0" {
		t.Errorf("defaults overwrote explicit values: %+v", kept)
	}
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		wantErr bool
	}{
		{"valid", Config{Timeout: time.Second}, false},
		{"valid base url", Config{Timeout: time.Second, BaseURL: "https://api.github.com"}, false},
		{"negative timeout", Config{Timeout: -1}, true},
		{"relative base url", Config{Timeout: time.Second, BaseURL: "api.github.com"}, true},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if err := tc.cfg.Validate(); (err != nil) != tc.wantErr {
				t.Errorf("Validate() = %v, wantErr %v", err, tc.wantErr)
			}
		})
	}
}

func TestNew_RejectsInvalidConfig(t *testing.T) {
	if _, err := New(Config{Timeout: -time.Second}); err == nil {
		t.Fatal("expected error")
	}
}

func TestDefaultRetryConfig(t *testing.T) {
	cfg := DefaultRetryConfig()
	if cfg.MaxAttempts <= 0 || cfg.RetryIf == nil {
		t.Errorf("unexpected retry config %+v", cfg)
	}
}

func TestDefaultCircuitBreakerConfig(t *testing.T) {
	cfg := DefaultCircuitBreakerConfig("google")
	if cfg.Name != "google" || cfg.IsFailure == nil {
		t.Errorf("unexpected breaker config %+v", cfg)
	}
	if cfg.IsFailure(ClassifyStatusCode(400, nil)) {
		t.Error("4xx responses must not count against the circuit")
	}
}

func TestApplyDefaults_SetsRetryIf(t *testing.T) {
	cfg := Config{Retry: DefaultRetryConfig()}
	cfg.Retry.RetryIf = nil
	cfg.ApplyDefaults()
	if cfg.Retry.RetryIf == nil {
		t.Error("expected RetryIf defaulted to IsRetryable")
	}
}
