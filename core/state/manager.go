package state

import (
	"errors"
	"fmt"

	ethcrypto "github.com/ethereum/go-ethereum/crypto"
	"github.com/ethereum/go-ethereum/rlp"

	"tokenledger/storage"
)

// Manager reads and writes RLP-encoded ledger records in a key-value database.
type Manager struct {
	db storage.Database
}

// NewManager creates a state manager operating on the provided database.
func NewManager(db storage.Database) *Manager {
	return &Manager{db: db}
}

func kvKey(key []byte) []byte {
	return ethcrypto.Keccak256(key)
}

func (m *Manager) withDB() (storage.Database, error) {
	if m == nil || m.db == nil {
		return nil, fmt.Errorf("state: manager unavailable")
	}
	return m.db, nil
}

// KVPut stores the provided value under the supplied key using RLP encoding.
// The key is hashed with keccak256 before it reaches the database.
func (m *Manager) KVPut(key []byte, value interface{}) error {
	db, err := m.withDB()
	if err != nil {
		return err
	}
	if len(key) == 0 {
		return fmt.Errorf("kv: key must not be empty")
	}
	encoded, err := rlp.EncodeToBytes(value)
	if err != nil {
		return err
	}
	return db.Put(kvKey(key), encoded)
}

// KVGet retrieves the value stored under the supplied key and decodes it into
// out. The boolean reports whether the key existed.
func (m *Manager) KVGet(key []byte, out interface{}) (bool, error) {
	db, err := m.withDB()
	if err != nil {
		return false, err
	}
	if len(key) == 0 {
		return false, fmt.Errorf("kv: key must not be empty")
	}
	data, err := db.Get(kvKey(key))
	if errors.Is(err, storage.ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	if out == nil {
		return true, nil
	}
	if err := rlp.DecodeBytes(data, out); err != nil {
		return false, err
	}
	return true, nil
}

// KVDelete removes the value stored under key. Missing keys are ignored.
func (m *Manager) KVDelete(key []byte) error {
	db, err := m.withDB()
	if err != nil {
		return err
	}
	return db.Delete(kvKey(key))
}
