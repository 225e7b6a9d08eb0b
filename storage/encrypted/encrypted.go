// Package encrypted wraps a storage.Strategy so values are sealed before
// they reach the backend. Keys stay in plaintext; each value is bound to
// its key, so values moved between keys do not open.
package encrypted

import (
	"context"

	"github.com/kbukum/authkit/encryption"
	"github.com/kbukum/authkit/errors"
	"github.com/kbukum/authkit/logger"
	"github.com/kbukum/authkit/storage"
)

// Strategy is an encrypting storage.Strategy.
type Strategy struct {
	inner storage.Strategy
	enc   encryption.Encryptor
	log   *logger.Logger
}

var (
	_ storage.Strategy = (*Strategy)(nil)
	_ storage.Closer   = (*Strategy)(nil)
)

// New wraps inner with enc.
func New(inner storage.Strategy, enc encryption.Encryptor, log *logger.Logger) *Strategy {
	return &Strategy{
		inner: inner,
		enc:   enc,
		log:   logger.OrNop(log).WithComponent("storage.encrypted"),
	}
}

// Wrap builds the encryptor from key and algorithm and wraps inner.
func Wrap(inner storage.Strategy, key string, alg encryption.Algorithm, log *logger.Logger) (*Strategy, error) {
	enc, err := encryption.New(key, encryption.WithAlgorithm(alg))
	if err != nil {
		return nil, errors.InvalidInput("encryption_key", err.Error())
	}
	return New(inner, enc, log), nil
}

// GetItem opens the stored value. A value that does not open, e.g. one
// written under another key, is reported as not found.
func (s *Strategy) GetItem(ctx context.Context, key string) (string, bool, error) {
	sealed, found, err := s.inner.GetItem(ctx, key)
	if err != nil || !found {
		return "", false, err
	}
	value, err := s.enc.Open(sealed, []byte(key))
	if err != nil {
		s.log.Warn("discarding value that does not decrypt", logger.Fields("key", key, logger.FieldError, err.Error()))
		return "", false, nil
	}
	return value, true, nil
}

// SetItem seals value and stores it.
func (s *Strategy) SetItem(ctx context.Context, key, value string) error {
	sealed, err := s.enc.Seal(value, []byte(key))
	if err != nil {
		return errors.Storage("encrypt", err)
	}
	return s.inner.SetItem(ctx, key, sealed)
}

// RemoveItem removes key from the backend.
func (s *Strategy) RemoveItem(ctx context.Context, key string) error {
	return s.inner.RemoveItem(ctx, key)
}

// Clear clears the backend.
func (s *Strategy) Clear(ctx context.Context) error {
	return s.inner.Clear(ctx)
}

// Close closes the backend when it holds connections.
func (s *Strategy) Close() error {
	if c, ok := s.inner.(storage.Closer); ok {
		return c.Close()
	}
	return nil
}

// Unwrap returns the backend strategy.
func (s *Strategy) Unwrap() storage.Strategy {
	return s.inner
}
