package token

import (
	"testing"

	"github.com/holiman/uint256"
	"github.com/stretchr/testify/require"

	ledgererrors "tokenledger/core/errors"
	"tokenledger/crypto"
)

var (
	alice   = crypto.ActorIDFromUint64(1)
	bob     = crypto.ActorIDFromUint64(2)
	charlie = crypto.ActorIDFromUint64(3)
	dave    = crypto.ActorIDFromUint64(4)
)

func u(v uint64) *uint256.Int { return uint256.NewInt(v) }

func maxAmount() *uint256.Int { return new(uint256.Int).SetAllOne() }

func balancesMap(t *testing.T, content map[crypto.ActorID]*uint256.Int) *Balances {
	t.Helper()
	b := NewBalances(16)
	for id, v := range content {
		b.put(id, v)
	}
	return b
}

// requireConsistent asserts the conservation and zero-elision invariants.
func requireConsistent(t *testing.T, b *Balances, total *uint256.Int) {
	t.Helper()
	sum, overflow := b.Sum()
	require.False(t, overflow)
	require.Equal(t, total.Dec(), sum.Dec(), "total supply must equal balance sum")
	for id, v := range b.entries {
		require.False(t, v.IsZero(), "zero balance stored for %s", id)
	}
}

func TestApproveIsIdempotentAndElidesZero(t *testing.T) {
	a := NewAllowances(4)

	require.True(t, Approve(a, alice, bob, u(50)))
	require.False(t, Approve(a, alice, bob, u(50)))
	require.Equal(t, "50", AllowanceOf(a, alice, bob).Dec())

	require.True(t, Approve(a, alice, bob, u(10)))
	require.Equal(t, "10", AllowanceOf(a, alice, bob).Dec())

	require.True(t, Approve(a, alice, bob, u(0)))
	require.Equal(t, 0, a.Len())
	require.False(t, Approve(a, alice, bob, u(0)))
}

func TestTransfer(t *testing.T) {
	b := balancesMap(t, map[crypto.ActorID]*uint256.Int{alice: u(100)})
	total := u(100)

	mutated, err := Transfer(b, alice, bob, u(0))
	require.NoError(t, err)
	require.False(t, mutated)

	_, err = Transfer(b, alice, bob, u(101))
	require.ErrorIs(t, err, ledgererrors.ErrInsufficientBalance)
	require.Equal(t, "100", BalanceOf(b, alice).Dec())

	mutated, err = Transfer(b, alice, bob, u(100))
	require.NoError(t, err)
	require.True(t, mutated)
	require.True(t, BalanceOf(b, alice).IsZero())
	_, present := b.entries[alice]
	require.False(t, present, "emptied balance must be removed")
	require.Equal(t, "100", BalanceOf(b, bob).Dec())
	requireConsistent(t, b, total)

	mutated, err = Transfer(b, bob, bob, u(40))
	require.NoError(t, err)
	require.False(t, mutated)
	require.Equal(t, "100", BalanceOf(b, bob).Dec())
}

func TestTransferOverflow(t *testing.T) {
	b := balancesMap(t, map[crypto.ActorID]*uint256.Int{alice: u(1), bob: maxAmount()})

	_, err := Transfer(b, alice, bob, u(1))
	require.ErrorIs(t, err, ledgererrors.ErrNumericOverflow)
	require.Equal(t, "1", BalanceOf(b, alice).Dec())
	require.True(t, BalanceOf(b, bob).Eq(maxAmount()))
}

func TestTransferFrom(t *testing.T) {
	b := balancesMap(t, map[crypto.ActorID]*uint256.Int{alice: u(100)})
	a := NewAllowances(4)
	total := u(100)

	_, err := TransferFrom(a, b, bob, alice, charlie, u(10))
	require.ErrorIs(t, err, ledgererrors.ErrInsufficientAllowance)

	Approve(a, alice, bob, u(500))
	_, err = TransferFrom(a, b, bob, alice, charlie, u(200))
	require.ErrorIs(t, err, ledgererrors.ErrInsufficientBalance)
	require.Equal(t, "500", AllowanceOf(a, alice, bob).Dec(), "failed spend must not consume allowance")

	mutated, err := TransferFrom(a, b, bob, alice, charlie, u(60))
	require.NoError(t, err)
	require.True(t, mutated)
	require.Equal(t, "440", AllowanceOf(a, alice, bob).Dec())
	require.Equal(t, "40", BalanceOf(b, alice).Dec())
	require.Equal(t, "60", BalanceOf(b, charlie).Dec())
	requireConsistent(t, b, total)

	Approve(a, charlie, bob, u(60))
	mutated, err = TransferFrom(a, b, bob, charlie, dave, u(60))
	require.NoError(t, err)
	require.True(t, mutated)
	require.Equal(t, 1, a.Len(), "exhausted allowance must be removed")
	requireConsistent(t, b, total)
}

func TestMint(t *testing.T) {
	b := NewBalances(4)
	total := new(uint256.Int)
	maxSupply := u(1000)

	mutated, err := Mint(b, total, maxSupply, alice, u(100))
	require.NoError(t, err)
	require.True(t, mutated)
	require.Equal(t, "100", BalanceOf(b, alice).Dec())
	require.Equal(t, "100", total.Dec())

	mutated, err = Mint(b, total, maxSupply, alice, u(0))
	require.NoError(t, err)
	require.False(t, mutated)

	_, err = Mint(b, total, maxSupply, alice, u(950))
	require.ErrorIs(t, err, ledgererrors.ErrMaxSupplyReached)
	require.Equal(t, "100", total.Dec())
	require.Equal(t, "100", BalanceOf(b, alice).Dec())

	mutated, err = Mint(b, total, maxSupply, bob, u(900))
	require.NoError(t, err)
	require.True(t, mutated)
	requireConsistent(t, b, total)
}

func TestMintOverflow(t *testing.T) {
	b := balancesMap(t, map[crypto.ActorID]*uint256.Int{alice: maxAmount()})
	total := maxAmount()

	_, err := Mint(b, total, nil, bob, u(1))
	require.ErrorIs(t, err, ledgererrors.ErrNumericOverflow)
	require.Equal(t, 1, b.Len())
}

func TestBurn(t *testing.T) {
	b := balancesMap(t, map[crypto.ActorID]*uint256.Int{dave: u(300)})
	total := u(300)

	mutated, err := Burn(b, total, dave, u(100))
	require.NoError(t, err)
	require.True(t, mutated)
	require.Equal(t, "200", BalanceOf(b, dave).Dec())
	require.Equal(t, "200", total.Dec())

	mutated, err = Burn(b, total, dave, u(0))
	require.NoError(t, err)
	require.False(t, mutated)

	_, err = Burn(b, total, alice, u(500))
	require.ErrorIs(t, err, ledgererrors.ErrUnderflow)

	_, err = Burn(b, total, alice, u(100))
	require.ErrorIs(t, err, ledgererrors.ErrInsufficientBalance)
	require.Equal(t, "200", total.Dec())

	mutated, err = Burn(b, total, dave, u(200))
	require.NoError(t, err)
	require.True(t, mutated)
	require.Equal(t, 0, b.Len())
	requireConsistent(t, b, total)
}

func TestTransferToUsers(t *testing.T) {
	b := balancesMap(t, map[crypto.ActorID]*uint256.Int{dave: u(1000)})
	total := u(1000)
	to := []crypto.ActorID{alice, bob, charlie}

	mutated, err := TransferToUsers(b, dave, to, u(100))
	require.NoError(t, err)
	require.True(t, mutated)
	require.Equal(t, "700", BalanceOf(b, dave).Dec())
	for _, id := range to {
		require.Equal(t, "100", BalanceOf(b, id).Dec())
	}
	requireConsistent(t, b, total)

	mutated, err = TransferToUsers(b, dave, nil, u(100))
	require.NoError(t, err)
	require.False(t, mutated)
}

func TestTransferToUsersInsufficientBalanceChangesNothing(t *testing.T) {
	b := balancesMap(t, map[crypto.ActorID]*uint256.Int{dave: u(250)})

	_, err := TransferToUsers(b, dave, []crypto.ActorID{alice, bob, charlie}, u(100))
	require.ErrorIs(t, err, ledgererrors.ErrInsufficientBalance)
	require.Equal(t, "250", BalanceOf(b, dave).Dec())
	require.Equal(t, 1, b.Len())
}

func TestTransferToUsersOverflowIsAtomic(t *testing.T) {
	b := balancesMap(t, map[crypto.ActorID]*uint256.Int{dave: u(10), charlie: maxAmount()})

	_, err := TransferToUsers(b, dave, []crypto.ActorID{alice, charlie}, u(1))
	require.ErrorIs(t, err, ledgererrors.ErrNumericOverflow)
	require.True(t, BalanceOf(b, alice).IsZero(), "earlier recipient must not be credited")
	require.Equal(t, "10", BalanceOf(b, dave).Dec())

	_, err = TransferToUsers(b, dave, []crypto.ActorID{alice, bob}, maxAmount())
	require.ErrorIs(t, err, ledgererrors.ErrNumericOverflow)
}

func TestTransferToUsersSenderAndDuplicates(t *testing.T) {
	b := balancesMap(t, map[crypto.ActorID]*uint256.Int{dave: u(300)})
	total := u(300)

	mutated, err := TransferToUsers(b, dave, []crypto.ActorID{dave, alice, alice}, u(100))
	require.NoError(t, err)
	require.True(t, mutated)
	require.Equal(t, "100", BalanceOf(b, dave).Dec())
	require.Equal(t, "200", BalanceOf(b, alice).Dec())
	requireConsistent(t, b, total)
}

func TestSetBalanceSaturates(t *testing.T) {
	b := balancesMap(t, map[crypto.ActorID]*uint256.Int{alice: u(100)})
	total := u(100)

	require.False(t, SetBalance(b, total, alice, u(100)))

	require.True(t, SetBalance(b, total, alice, u(250)))
	require.Equal(t, "250", total.Dec())
	requireConsistent(t, b, total)

	require.True(t, SetBalance(b, total, alice, u(0)))
	require.Equal(t, 0, b.Len())
	require.True(t, total.IsZero())

	// Out-of-band supply drift: the counter saturates at zero instead of failing.
	b.put(bob, u(50))
	require.True(t, SetBalance(b, total, bob, u(0)))
	require.True(t, total.IsZero())

	total = maxAmount()
	require.True(t, SetBalance(b, total, charlie, u(5)))
	require.True(t, total.Eq(maxAmount()))
}

func TestMapsDataAndReserve(t *testing.T) {
	b := NewBalances(2)
	a := NewAllowances(0)
	b.put(alice, u(1))
	Approve(a, alice, bob, u(1))

	allowStats, balStats := MapsData(a, b)
	require.Equal(t, MapStats{Len: 1, Capacity: 1}, allowStats)
	require.Equal(t, MapStats{Len: 1, Capacity: 2}, balStats)

	require.NoError(t, b.Reserve(10))
	require.NoError(t, a.Reserve(5))
	allowStats, balStats = MapsData(a, b)
	require.Equal(t, 11, balStats.Capacity)
	require.Equal(t, 6, allowStats.Capacity)
	require.Equal(t, "1", BalanceOf(b, alice).Dec(), "reserve must not change contents")

	require.NoError(t, b.Reserve(1))
	_, balStats = MapsData(a, b)
	require.Equal(t, 11, balStats.Capacity, "reserve never shrinks")
}

func TestReserveIsBounded(t *testing.T) {
	b := NewBalances(0)
	a := NewAllowances(0)
	b.put(alice, u(1))

	require.ErrorIs(t, b.Reserve(1<<40), ledgererrors.ErrCapacityExceeded)
	require.ErrorIs(t, a.Reserve(MaxCapacity+1), ledgererrors.ErrCapacityExceeded)
	require.ErrorIs(t, b.Reserve(MaxCapacity), ledgererrors.ErrCapacityExceeded, "live entries count towards the limit")
	require.ErrorIs(t, b.Reserve(int(^uint(0)>>1)), ledgererrors.ErrCapacityExceeded)

	allowStats, balStats := MapsData(a, b)
	require.Equal(t, MapStats{Len: 0, Capacity: 0}, allowStats, "failed reserve records nothing")
	require.Equal(t, MapStats{Len: 1, Capacity: 1}, balStats)

	require.NoError(t, b.Reserve(MaxCapacity-1))
	_, balStats = MapsData(a, b)
	require.Equal(t, MaxCapacity, balStats.Capacity)
}

func TestConstructionClampsCapacity(t *testing.T) {
	require.Equal(t, MaxCapacity, NewBalances(1<<40).Capacity())
	require.Equal(t, 0, NewAllowances(-5).Capacity())

	store := NewStoreSized(Meta{}, MaxCapacity*4, 0)
	allowStats, balStats := MapsData(store.Allowances(), store.Balances())
	require.Equal(t, MaxCapacity, balStats.Capacity)
	require.Equal(t, DefaultCapacity, allowStats.Capacity)
}

func TestNilAmountsCountAsZero(t *testing.T) {
	b := balancesMap(t, map[crypto.ActorID]*uint256.Int{alice: u(10)})
	a := NewAllowances(4)
	total := u(10)

	require.False(t, Approve(a, alice, bob, nil))
	require.True(t, Approve(a, alice, bob, u(3)))
	require.True(t, Approve(a, alice, bob, nil), "nil clears the allowance")
	require.True(t, AllowanceOf(a, alice, bob).IsZero())

	for name, call := range map[string]func() (bool, error){
		"transfer":          func() (bool, error) { return Transfer(b, alice, bob, nil) },
		"transfer_from":     func() (bool, error) { return TransferFrom(a, b, bob, alice, charlie, nil) },
		"mint":              func() (bool, error) { return Mint(b, total, u(100), bob, nil) },
		"burn":              func() (bool, error) { return Burn(b, total, alice, nil) },
		"transfer_to_users": func() (bool, error) { return TransferToUsers(b, alice, []crypto.ActorID{bob}, nil) },
	} {
		mutated, err := call()
		require.NoError(t, err, name)
		require.False(t, mutated, name)
	}
	require.Equal(t, "10", total.Dec())

	require.True(t, SetBalance(b, total, alice, nil))
	require.True(t, total.IsZero())
	require.Zero(t, b.Len())
}

func TestPages(t *testing.T) {
	b := balancesMap(t, map[crypto.ActorID]*uint256.Int{charlie: u(3), alice: u(1), bob: u(2)})

	first := BalancesPage(b, 0, 2)
	require.Len(t, first, 2)
	require.Equal(t, alice, first[0].Actor)
	require.Equal(t, bob, first[1].Actor)

	rest := BalancesPage(b, 2, 10)
	require.Len(t, rest, 1)
	require.Equal(t, charlie, rest[0].Actor)
	require.Empty(t, BalancesPage(b, 5, 1))

	a := NewAllowances(4)
	Approve(a, bob, alice, u(1))
	Approve(a, alice, charlie, u(2))
	Approve(a, alice, bob, u(3))
	entries := AllowancesPage(a, 0, 3)
	require.Equal(t, []crypto.ActorID{alice, alice, bob}, []crypto.ActorID{entries[0].Owner, entries[1].Owner, entries[2].Owner})
	require.Equal(t, bob, entries[0].Spender)
}
