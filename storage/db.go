package storage

import (
	"errors"
	"fmt"
	"sync"
)

// ErrNotFound is returned by Get when the key has no value.
var ErrNotFound = errors.New("storage: key not found")

// Database is a generic interface for a key-value store. Snapshots are written
// through it so the ledger can run on any backend (in-memory or persistent).
type Database interface {
	Put(key []byte, value []byte) error
	Get(key []byte) ([]byte, error)
	Delete(key []byte) error
	Close() error
}

// Open selects a backend by name. "memory" ignores path.
func Open(backend, path string) (Database, error) {
	switch backend {
	case "", BackendMemory:
		return NewMemDB(), nil
	case BackendLevelDB:
		return NewLevelDB(path)
	case BackendBolt:
		return NewBoltDB(path, nil)
	default:
		return nil, fmt.Errorf("storage: unknown backend %q", backend)
	}
}

const (
	BackendMemory  = "memory"
	BackendLevelDB = "leveldb"
	BackendBolt    = "bolt"
)

// --- In-Memory DB (for testing) ---

type MemDB struct {
	mu   sync.RWMutex
	data map[string][]byte
}

func NewMemDB() *MemDB {
	return &MemDB{
		data: make(map[string][]byte),
	}
}

func (db *MemDB) Put(key []byte, value []byte) error {
	db.mu.Lock()
	defer db.mu.Unlock()
	db.data[string(key)] = append([]byte(nil), value...)
	return nil
}

func (db *MemDB) Get(key []byte) ([]byte, error) {
	db.mu.RLock()
	defer db.mu.RUnlock()
	value, ok := db.data[string(key)]
	if !ok {
		return nil, ErrNotFound
	}
	return append([]byte(nil), value...), nil
}

func (db *MemDB) Delete(key []byte) error {
	db.mu.Lock()
	defer db.mu.Unlock()
	delete(db.data, string(key))
	return nil
}

// Close satisfies the Database interface for MemDB.
func (db *MemDB) Close() error {
	// Nothing to close for an in-memory database.
	return nil
}
