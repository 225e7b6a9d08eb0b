// Package keyring stores tokens in the operating system keyring
// (macOS Keychain, Secret Service, Windows Credential Manager).
//
// Every entry lives under one service name. The keyring cannot enumerate
// entries, so the strategy keeps an index entry listing the keys it wrote;
// Clear removes exactly those and leaves foreign entries untouched.
package keyring

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"slices"
	"sync"

	gokeyring "github.com/zalando/go-keyring"

	"github.com/kbukum/authkit/errors"
	"github.com/kbukum/authkit/logger"
	"github.com/kbukum/authkit/storage"
)

// indexKey holds the JSON list of keys written through the strategy.
const indexKey = "__authkit_index__"

func init() {
	storage.RegisterFactory(storage.ProviderKeyring, func(cfg storage.Config, _ any, log *logger.Logger) (storage.Strategy, error) {
		return New(cfg.KeyPrefix, log), nil
	})
}

// keyStore is the keyring surface the strategy uses.
type keyStore interface {
	Set(service, key, value string) error
	Get(service, key string) (string, error)
	Delete(service, key string) error
}

// osBackend is the system keyring via go-keyring.
type osBackend struct{}

func (osBackend) Set(service, key, value string) error { return gokeyring.Set(service, key, value) }
func (osBackend) Get(service, key string) (string, error) { return gokeyring.Get(service, key) }
func (osBackend) Delete(service, key string) error { return gokeyring.Delete(service, key) }

// Strategy is a storage.Strategy backed by the OS keyring.
type Strategy struct {
	service string
	backend keyStore
	log     *logger.Logger

	// mu serializes index updates within the process.
	mu sync.Mutex
}

var _ storage.Strategy = (*Strategy)(nil)

// New creates a keyring strategy storing entries under service.
func New(service string, log *logger.Logger) *Strategy {
	if service == "" {
		service = storage.DefaultKeyPrefix
	}
	return &Strategy{
		service: service,
		backend: osBackend{},
		log:     logger.OrNop(log).WithComponent("storage.keyring"),
	}
}

func (s *Strategy) GetItem(_ context.Context, key string) (string, bool, error) {
	v, err := s.backend.Get(s.service, key)
	if stderrors.Is(err, gokeyring.ErrNotFound) {
		return "", false, nil
	}
	if err != nil {
		return "", false, errors.Storage("get", err)
	}
	return v, true, nil
}

func (s *Strategy) SetItem(_ context.Context, key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	// Index before value: an untracked entry would survive Clear.
	keys, err := s.readIndex()
	if err != nil {
		return err
	}
	if err := s.backend.Set(s.service, key, value); err != nil {
		return errors.Storage("set", err)
	}
	if slices.Contains(keys, key) {
		return nil
	}
	return s.writeIndex(append(keys, key))
}

func (s *Strategy) RemoveItem(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.delete(key); err != nil {
		return err
	}

	keys, err := s.readIndex()
	if err != nil {
		return err
	}
	idx := slices.Index(keys, key)
	if idx < 0 {
		return nil
	}
	return s.writeIndex(slices.Delete(keys, idx, idx+1))
}

func (s *Strategy) Clear(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	keys, err := s.readIndex()
	if err != nil {
		return err
	}
	for _, key := range keys {
		if err := s.delete(key); err != nil {
			return err
		}
	}
	s.log.Debug("cleared keyring entries", logger.Fields("service", s.service, "count", len(keys)))
	return s.delete(indexKey)
}

func (s *Strategy) delete(key string) error {
	err := s.backend.Delete(s.service, key)
	if err != nil && !stderrors.Is(err, gokeyring.ErrNotFound) {
		return errors.Storage("delete", err)
	}
	return nil
}

// readIndex returns the tracked keys. A missing index is empty; an
// unreadable one is treated as empty and overwritten on the next write.
func (s *Strategy) readIndex() ([]string, error) {
	raw, err := s.backend.Get(s.service, indexKey)
	if stderrors.Is(err, gokeyring.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, errors.Storage("read index", err)
	}

	var keys []string
	if err := json.Unmarshal([]byte(raw), &keys); err != nil {
		s.log.Warn("ignoring corrupt keyring index", logger.ErrorFields("read index", err))
		return nil, nil
	}
	return keys, nil
}

func (s *Strategy) writeIndex(keys []string) error {
	if len(keys) == 0 {
		return s.delete(indexKey)
	}
	raw, err := json.Marshal(keys)
	if err != nil {
		return errors.Storage("write index", err)
	}
	if err := s.backend.Set(s.service, indexKey, string(raw)); err != nil {
		return errors.Storage("write index", err)
	}
	return nil
}
