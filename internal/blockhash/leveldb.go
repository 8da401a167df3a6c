package blockhash

import (
	"context"
	"errors"
	"fmt"

	"github.com/syndtr/goleveldb/leveldb"
	"github.com/syndtr/goleveldb/leveldb/opt"
)

var (
	writeOpt = opt.WriteOptions{Sync: true}
	readOpt  = opt.ReadOptions{}
)

// LevelDBStore persists JSON-encoded entries on disk under a namespace prefix,
// so a restarted process can reuse a still-valid blockhash.
type LevelDBStore struct {
	db        *leveldb.DB
	namespace string
	owned     bool
}

// OpenLevelDBStore opens (or creates) the database at path.
func OpenLevelDBStore(path, namespace string) (*LevelDBStore, error) {
	db, err := leveldb.OpenFile(path, nil)
	if err != nil {
		return nil, fmt.Errorf("open leveldb at %s: %w", path, err)
	}
	return &LevelDBStore{db: db, namespace: namespace, owned: true}, nil
}

// NewLevelDBStore wraps an already opened database. The caller keeps ownership.
func NewLevelDBStore(db *leveldb.DB, namespace string) *LevelDBStore {
	return &LevelDBStore{db: db, namespace: namespace}
}

func (s *LevelDBStore) key(key string) []byte {
	return []byte(s.namespace + "/" + key)
}

func (s *LevelDBStore) Load(ctx context.Context, key string) (Entry, bool, error) {
	if err := ctx.Err(); err != nil {
		return Entry{}, false, err
	}
	data, err := s.db.Get(s.key(key), &readOpt)
	if errors.Is(err, leveldb.ErrNotFound) {
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

func (s *LevelDBStore) Save(ctx context.Context, key string, entry Entry) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	data, err := encodeEntry(entry)
	if err != nil {
		return err
	}
	return s.db.Put(s.key(key), data, &writeOpt)
}

func (s *LevelDBStore) Close() error {
	if !s.owned {
		return nil
	}
	return s.db.Close()
}
