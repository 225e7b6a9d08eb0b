package storage

import (
	"fmt"
	"slices"
)

// Provider names of the built-in backends.
const (
	ProviderMemory  = "memory"
	ProviderRedis   = "redis"
	ProviderKeyring = "keyring"
)

// Default configuration values.
const (
	DefaultProvider  = ProviderMemory
	DefaultKeyPrefix = "authkit"
)

// Config selects and configures a storage backend.
type Config struct {
	// Provider selects the backend by its registered name.
	Provider string `mapstructure:"provider" json:"provider"`

	// KeyPrefix namespaces keys in shared backends: the Redis key prefix
	// and the keyring service name.
	KeyPrefix string `mapstructure:"key_prefix" json:"key_prefix"`

	// EncryptionKey, when set, seals values before they reach the backend
	// (see storage/encrypted).
	EncryptionKey string `mapstructure:"encryption_key" json:"-"`

	// EncryptionAlgorithm is "aes-256-gcm" (default) or "chacha20-poly1305".
	EncryptionAlgorithm string `mapstructure:"encryption_algorithm" json:"encryption_algorithm,omitempty" validate:"omitempty,oneof=aes-256-gcm chacha20-poly1305"`
}

// ApplyDefaults fills in zero-valued fields.
func (c *Config) ApplyDefaults() {
	if c.Provider == "" {
		c.Provider = DefaultProvider
	}
	if c.KeyPrefix == "" {
		c.KeyPrefix = DefaultKeyPrefix
	}
}

// Validate checks that the selected provider has been registered.
func (c *Config) Validate() error {
	if c.Provider == "" {
		return fmt.Errorf("storage: provider is required")
	}
	if !slices.Contains(Providers(), c.Provider) {
		return fmt.Errorf("storage: unsupported provider %q (registered: %v)", c.Provider, Providers())
	}
	return nil
}
