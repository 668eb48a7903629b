package state

import (
	"errors"
	"math/big"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"tokenledger/storage"
)

func sampleSnapshot() *Snapshot {
	alice := make([]byte, 32)
	alice[31] = 1
	bob := make([]byte, 32)
	bob[31] = 2
	return &Snapshot{
		Name:        "Vara Network",
		Symbol:      "VARA",
		Decimals:    12,
		Description: "Description",
		Image:       "image",
		Links:       []Link{{Name: "website", URL: "https://vara.network"}},
		MaxSupply:   big.NewInt(1000),
		TotalSupply: big.NewInt(100),
		Balances: []Balance{
			{Actor: alice, Amount: big.NewInt(60)},
			{Actor: bob, Amount: big.NewInt(40)},
		},
		Allowances:         []Allowance{{Owner: alice, Spender: bob, Amount: big.NewInt(5)}},
		Roles:              []RoleGrant{{Actor: alice, Roles: []string{"FungibleAdmin", "PauseAdmin"}}},
		BalancesCapacity:   16,
		AllowancesCapacity: 16,
		Paused:             true,
	}
}

func TestSnapshotRoundTripBackends(t *testing.T) {
	dir := t.TempDir()
	leveldb, err := storage.NewLevelDB(filepath.Join(dir, "level"))
	require.NoError(t, err)
	bolt, err := storage.NewBoltDB(filepath.Join(dir, "ledger.db"), nil)
	require.NoError(t, err)

	for name, db := range map[string]storage.Database{
		"memory":  storage.NewMemDB(),
		"leveldb": leveldb,
		"bolt":    bolt,
	} {
		t.Run(name, func(t *testing.T) {
			defer db.Close()
			manager := NewManager(db)

			_, err := manager.LoadSnapshot()
			require.ErrorIs(t, err, ErrNoSnapshot)

			want := sampleSnapshot()
			require.NoError(t, manager.SaveSnapshot(want))

			got, err := manager.LoadSnapshot()
			require.NoError(t, err)
			require.Equal(t, "VARA", got.Symbol)
			require.Equal(t, 0, got.TotalSupply.Cmp(big.NewInt(100)))
			require.Len(t, got.Balances, 2)
			require.True(t, got.Paused)
			require.False(t, got.Killed)

			wantDigest, err := want.Digest()
			require.NoError(t, err)
			gotDigest, err := got.Digest()
			require.NoError(t, err)
			require.Equal(t, wantDigest, gotDigest)

			version, ok, err := manager.StateVersion()
			require.NoError(t, err)
			require.True(t, ok)
			require.Equal(t, StateVersion, version)
		})
	}
}

func TestStateVersionMismatch(t *testing.T) {
	manager := NewManager(storage.NewMemDB())
	require.NoError(t, manager.SaveSnapshot(sampleSnapshot()))
	require.NoError(t, manager.SetStateVersion(StateVersion+1))

	_, err := manager.LoadSnapshot()
	require.True(t, errors.Is(err, ErrStateVersionMismatch))
	require.NoError(t, manager.EnsureStateVersion(true))
}

func TestManagerUnavailable(t *testing.T) {
	var manager *Manager
	_, err := manager.LoadSnapshot()
	require.Error(t, err)
	require.Error(t, NewManager(nil).KVPut([]byte("k"), uint64(1)))
	require.Error(t, NewManager(storage.NewMemDB()).KVPut(nil, uint64(1)))
}

func TestKVDelete(t *testing.T) {
	manager := NewManager(storage.NewMemDB())
	require.NoError(t, manager.KVPut([]byte("counter"), uint64(7)))
	var got uint64
	ok, err := manager.KVGet([]byte("counter"), &got)
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, uint64(7), got)

	require.NoError(t, manager.KVDelete([]byte("counter")))
	ok, err = manager.KVGet([]byte("counter"), &got)
	require.NoError(t, err)
	require.False(t, ok)
}
