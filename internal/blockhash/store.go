package blockhash

import (
	"context"
	"fmt"
	"sync"

	"github.com/go-redis/redis/v8"
	"github.com/rovshanmuradov/txprep/internal/config"
)

// Store is the backing capability of the cache. Implementations are chosen once,
// at construction time.
type Store interface {
	// Load returns the entry stored under key. ok is false when nothing is stored.
	Load(ctx context.Context, key string) (entry Entry, ok bool, err error)
	// Save overwrites whatever is stored under key.
	Save(ctx context.Context, key string, entry Entry) error
}

// StoreCloser is a Store owning resources that must be released.
type StoreCloser interface {
	Store
	Close() error
}

// MemoryStore keeps entries in a process-local map.
type MemoryStore struct {
	mu      sync.RWMutex
	entries map[string]Entry
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{entries: make(map[string]Entry)}
}

func (s *MemoryStore) Load(_ context.Context, key string) (Entry, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	e, ok := s.entries[key]
	return e, ok, nil
}

func (s *MemoryStore) Save(_ context.Context, key string, entry Entry) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.entries[key] = entry
	return nil
}

func (s *MemoryStore) Close() error { return nil }

// NewStore builds the store selected in configuration.
func NewStore(cfg config.BlockhashConfig) (StoreCloser, error) {
	switch cfg.Store {
	case config.StoreMemory, "":
		return NewMemoryStore(), nil
	case config.StoreLevelDB:
		s, err := OpenLevelDBStore(cfg.LevelDBPath, cfg.Namespace)
		if err != nil {
			return nil, err
		}
		return s, nil
	case config.StoreRedis:
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		return NewRedisStore(client, cfg.Namespace), nil
	default:
		return nil, fmt.Errorf("unknown blockhash store %q", cfg.Store)
	}
}
