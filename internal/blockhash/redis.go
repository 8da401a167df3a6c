package blockhash

import (
	"context"
	"errors"

	"github.com/go-redis/redis/v8"
)

// RedisStore shares entries between processes through Redis.
// Keys carry no Redis TTL; stale entries are superseded on refresh.
type RedisStore struct {
	client    *redis.Client
	namespace string
}

func NewRedisStore(client *redis.Client, namespace string) *RedisStore {
	return &RedisStore{client: client, namespace: namespace}
}

func (s *RedisStore) key(key string) string {
	return s.namespace + ":" + key
}

func (s *RedisStore) Load(ctx context.Context, key string) (Entry, bool, error) {
	data, err := s.client.Get(ctx, s.key(key)).Bytes()
	if errors.Is(err, redis.Nil) {
		return Entry{}, false, nil
	}
	if err != nil {
		return Entry{}, false, err
	}
	entry, err := decodeEntry(data)
	if err != nil {
		return Entry{}, false, err
	}
	return entry, true, nil
}

func (s *RedisStore) Save(ctx context.Context, key string, entry Entry) error {
	data, err := encodeEntry(entry)
	if err != nil {
		return err
	}
	return s.client.Set(ctx, s.key(key), data, 0).Err()
}

func (s *RedisStore) Close() error {
	return s.client.Close()
}
