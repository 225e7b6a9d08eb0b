// Package storage defines the key/value contract authkit persists tokens
// through, and a registry of named backends.
//
// A Strategy owns a flat string namespace. Missing keys are reported with
// found=false rather than an error, removing a missing key is a no-op, and
// Clear removes every key the strategy owns.
//
// # Backends
//
//   - memory (this package): process-local map, the default
//   - storage/cookie: HTTP cookies scoped to one request/response pair
//   - redis: shared sessions in Redis, keys namespaced by prefix
//   - storage/keyring: the OS credential store, for CLIs
//
// # Configuration
//
//	storage:
//	  provider: keyring
//	  key_prefix: authkit
//
// Backends register themselves from an init function; import the package
// for its side effect before calling New:
//
//	import _ "github.com/kbukum/authkit/storage/keyring"
package storage
