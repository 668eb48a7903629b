package state

import (
	"errors"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	ethcrypto "github.com/ethereum/go-ethereum/crypto"
	"github.com/ethereum/go-ethereum/rlp"
)

var snapshotKey = []byte("ledger/snapshot")

// ErrNoSnapshot is returned by LoadSnapshot when nothing has been saved.
var ErrNoSnapshot = errors.New("state: no snapshot stored")

// Link is one optional external link. Only links that are set are stored.
type Link struct {
	Name string
	URL  string
}

// Balance is one stored holding.
type Balance struct {
	Actor  []byte
	Amount *big.Int
}

// Allowance is one stored (owner, spender) allowance.
type Allowance struct {
	Owner   []byte
	Spender []byte
	Amount  *big.Int
}

// RoleGrant lists the role names held by an actor.
type RoleGrant struct {
	Actor []byte
	Roles []string
}

// Snapshot is the complete persisted ledger state. Actors are raw 32-byte ids
// and amounts are non-negative integers.
type Snapshot struct {
	Name               string
	Symbol             string
	Decimals           uint8
	Description        string
	Image              string
	Links              []Link
	MaxSupply          *big.Int
	TotalSupply        *big.Int
	SetBalanceEnabled  bool
	BalancesCapacity   uint64
	AllowancesCapacity uint64
	Balances           []Balance
	Allowances         []Allowance
	Roles              []RoleGrant
	Paused             bool
	Killed             bool
	Inheritor          []byte
}

// Digest is the keccak256 hash of the snapshot's RLP encoding.
func (s *Snapshot) Digest() (common.Hash, error) {
	encoded, err := rlp.EncodeToBytes(s)
	if err != nil {
		return common.Hash{}, err
	}
	return common.BytesToHash(ethcrypto.Keccak256(encoded)), nil
}

// SaveSnapshot overwrites the stored snapshot and stamps the schema version.
func (m *Manager) SaveSnapshot(s *Snapshot) error {
	if s == nil {
		return fmt.Errorf("state: snapshot must not be nil")
	}
	if err := m.KVPut(snapshotKey, s); err != nil {
		return fmt.Errorf("state: save snapshot: %w", err)
	}
	return m.SetStateVersion(StateVersion)
}

// LoadSnapshot returns the stored snapshot or ErrNoSnapshot.
func (m *Manager) LoadSnapshot() (*Snapshot, error) {
	if err := m.EnsureStateVersion(false); err != nil {
		return nil, err
	}
	s := new(Snapshot)
	ok, err := m.KVGet(snapshotKey, s)
	if err != nil {
		return nil, fmt.Errorf("state: load snapshot: %w", err)
	}
	if !ok {
		return nil, ErrNoSnapshot
	}
	return s, nil
}
