package redis

import (
	"context"
	stderrors "errors"

	goredis "github.com/redis/go-redis/v9"

	"github.com/kbukum/authkit/errors"
	"github.com/kbukum/authkit/logger"
	"github.com/kbukum/authkit/storage"
)

func init() {
	storage.RegisterFactory(storage.ProviderRedis, func(cfg storage.Config, providerCfg any, log *logger.Logger) (storage.Strategy, error) {
		var rc Config
		switch v := providerCfg.(type) {
		case *Config:
			if v != nil {
				rc = *v
			}
		case Config:
			rc = v
		case nil:
		default:
			return nil, errors.InvalidInput("redis", "expected *redis.Config")
		}

		client, err := New(rc, log)
		if err != nil {
			return nil, errors.Validation(err.Error())
		}
		return NewStore(client, cfg.KeyPrefix), nil
	})
}

// Store is a storage.Strategy keeping tokens in Redis without expiry.
type Store struct {
	client *Client
	prefix string
}

var (
	_ storage.Strategy = (*Store)(nil)
	_ storage.Closer   = (*Store)(nil)
)

// NewStore creates a Store namespacing keys under prefix.
func NewStore(client *Client, prefix string) *Store {
	return &Store{client: client, prefix: prefix}
}

func (s *Store) key(k string) string {
	if s.prefix == "" {
		return k
	}
	return s.prefix + ":" + k
}

func (s *Store) GetItem(ctx context.Context, key string) (string, bool, error) {
	v, err := s.client.rdb.Get(ctx, s.key(key)).Result()
	if stderrors.Is(err, goredis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, errors.Storage("get", err)
	}
	return v, true, nil
}

func (s *Store) SetItem(ctx context.Context, key, value string) error {
	if err := s.client.rdb.Set(ctx, s.key(key), value, 0).Err(); err != nil {
		return errors.Storage("set", err)
	}
	return nil
}

func (s *Store) RemoveItem(ctx context.Context, key string) error {
	if err := s.client.rdb.Del(ctx, s.key(key)).Err(); err != nil {
		return errors.Storage("remove", err)
	}
	return nil
}

// Clear deletes every key under the store's prefix, one SCAN batch at a time.
func (s *Store) Clear(ctx context.Context) error {
	var cursor uint64
	deleted := 0
	for {
		keys, next, err := s.client.rdb.Scan(ctx, cursor, s.key("*"), s.client.cfg.ScanCount).Result()
		if err != nil {
			return errors.Storage("clear", err)
		}
		if len(keys) > 0 {
			if err := s.client.rdb.Del(ctx, keys...).Err(); err != nil {
				return errors.Storage("clear", err)
			}
			deleted += len(keys)
		}
		cursor = next
		if cursor == 0 {
			break
		}
	}
	s.client.log.Debug("cleared token keys", logger.Fields("prefix", s.prefix, "count", deleted))
	return nil
}

// Ping checks the connection.
func (s *Store) Ping(ctx context.Context) error {
	return s.client.Ping(ctx)
}

// Close releases the underlying client.
func (s *Store) Close() error {
	return s.client.Close()
}
