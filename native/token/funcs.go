package token

import (
	"github.com/holiman/uint256"

	ledgererrors "tokenledger/core/errors"
	"tokenledger/crypto"
)

// The functions in this file are the arithmetic core of the ledger. They do
// not authorise, emit events or consult the pause switch. A nil amount counts
// as zero. Each one validates
// every precondition before its first write, so an error return always means
// nothing changed.

// orZero lets callers pass a nil amount as zero.
func orZero(v *uint256.Int) *uint256.Int {
	if v == nil {
		return new(uint256.Int)
	}
	return v
}

// BalanceOf returns the balance held by account, zero when absent.
func BalanceOf(balances *Balances, account crypto.ActorID) *uint256.Int {
	return balances.get(account)
}

// AllowanceOf returns how much spender may still move out of owner's balance.
func AllowanceOf(allowances *Allowances, owner, spender crypto.ActorID) *uint256.Int {
	return allowances.get(AllowanceKey{Owner: owner, Spender: spender})
}

// Approve overwrites the allowance. Zero or nil removes the entry. The result
// reports whether the stored value changed.
func Approve(allowances *Allowances, owner, spender crypto.ActorID, value *uint256.Int) bool {
	value = orZero(value)
	key := AllowanceKey{Owner: owner, Spender: spender}
	if allowances.get(key).Eq(value) {
		return false
	}
	allowances.put(key, value)
	return true
}

// planTransfer computes post-transfer balances without writing them.
func planTransfer(balances *Balances, from, to crypto.ActorID, value *uint256.Int) (*uint256.Int, *uint256.Int, error) {
	newFrom, underflow := new(uint256.Int).SubOverflow(balances.get(from), value)
	if underflow {
		return nil, nil, ledgererrors.ErrInsufficientBalance
	}
	if from == to {
		return newFrom, nil, nil
	}
	newTo, overflow := new(uint256.Int).AddOverflow(balances.get(to), value)
	if overflow {
		return nil, nil, ledgererrors.ErrNumericOverflow
	}
	return newFrom, newTo, nil
}

// Transfer moves value from one holder to another. A self-transfer checks the
// balance but changes nothing and reports false.
func Transfer(balances *Balances, from, to crypto.ActorID, value *uint256.Int) (bool, error) {
	value = orZero(value)
	if value.IsZero() {
		return false, nil
	}
	newFrom, newTo, err := planTransfer(balances, from, to, value)
	if err != nil {
		return false, err
	}
	if from == to {
		return false, nil
	}
	balances.put(from, newFrom)
	balances.put(to, newTo)
	return true, nil
}

// TransferFrom moves value out of from's balance on behalf of spender and
// consumes the same amount of allowance. Allowance is checked first.
func TransferFrom(allowances *Allowances, balances *Balances, spender, from, to crypto.ActorID, value *uint256.Int) (bool, error) {
	value = orZero(value)
	if value.IsZero() {
		return false, nil
	}
	key := AllowanceKey{Owner: from, Spender: spender}
	newAllowance, underflow := new(uint256.Int).SubOverflow(allowances.get(key), value)
	if underflow {
		return false, ledgererrors.ErrInsufficientAllowance
	}
	newFrom, newTo, err := planTransfer(balances, from, to, value)
	if err != nil {
		return false, err
	}
	allowances.put(key, newAllowance)
	if from != to {
		balances.put(from, newFrom)
		balances.put(to, newTo)
	}
	return true, nil
}

// Mint credits value to to and raises the total supply. A nil maxSupply means
// the supply is only bounded by the width of the amount type.
func Mint(balances *Balances, totalSupply, maxSupply *uint256.Int, to crypto.ActorID, value *uint256.Int) (bool, error) {
	value = orZero(value)
	if value.IsZero() {
		return false, nil
	}
	newTotal, overflow := new(uint256.Int).AddOverflow(totalSupply, value)
	if overflow {
		return false, ledgererrors.ErrNumericOverflow
	}
	if maxSupply != nil && newTotal.Gt(maxSupply) {
		return false, ledgererrors.ErrMaxSupplyReached
	}
	newTo, overflow := new(uint256.Int).AddOverflow(balances.get(to), value)
	if overflow {
		return false, ledgererrors.ErrNumericOverflow
	}
	balances.put(to, newTo)
	totalSupply.Set(newTotal)
	return true, nil
}

// Burn removes value from from's balance and lowers the total supply.
func Burn(balances *Balances, totalSupply *uint256.Int, from crypto.ActorID, value *uint256.Int) (bool, error) {
	value = orZero(value)
	if value.IsZero() {
		return false, nil
	}
	newTotal, underflow := new(uint256.Int).SubOverflow(totalSupply, value)
	if underflow {
		return false, ledgererrors.ErrUnderflow
	}
	newFrom, underflow := new(uint256.Int).SubOverflow(balances.get(from), value)
	if underflow {
		return false, ledgererrors.ErrInsufficientBalance
	}
	balances.put(from, newFrom)
	totalSupply.Set(newTotal)
	return true, nil
}

// TransferToUsers credits value to every recipient and debits from once by
// the combined amount. Recipients listed twice are credited twice and from may
// appear among them. All credits are staged and checked before any write.
func TransferToUsers(balances *Balances, from crypto.ActorID, to []crypto.ActorID, value *uint256.Int) (bool, error) {
	value = orZero(value)
	if value.IsZero() || len(to) == 0 {
		return false, nil
	}
	required, overflow := new(uint256.Int).MulOverflow(value, uint256.NewInt(uint64(len(to))))
	if overflow {
		return false, ledgererrors.ErrNumericOverflow
	}
	newFrom, underflow := new(uint256.Int).SubOverflow(balances.get(from), required)
	if underflow {
		return false, ledgererrors.ErrInsufficientBalance
	}

	staged := make(map[crypto.ActorID]*uint256.Int, len(to)+1)
	staged[from] = newFrom
	for _, recipient := range to {
		current, ok := staged[recipient]
		if !ok {
			current = balances.get(recipient)
		}
		next, overflow := new(uint256.Int).AddOverflow(current, value)
		if overflow {
			return false, ledgererrors.ErrNumericOverflow
		}
		staged[recipient] = next
	}

	for id, amount := range staged {
		balances.put(id, amount)
	}
	return true, nil
}

// SetBalance overwrites owner's balance and shifts the total supply by the
// difference. It deliberately ignores the supply cap and saturates instead of
// failing, so it is weaker than Mint/Burn and meant for migrations and tests
// only.
func SetBalance(balances *Balances, totalSupply *uint256.Int, owner crypto.ActorID, newValue *uint256.Int) bool {
	newValue = orZero(newValue)
	current := balances.get(owner)
	newTotal := new(uint256.Int)
	switch current.Cmp(newValue) {
	case 0:
		return false
	case 1:
		delta := new(uint256.Int).Sub(current, newValue)
		if _, underflow := newTotal.SubOverflow(totalSupply, delta); underflow {
			newTotal.Clear()
		}
	default:
		delta := new(uint256.Int).Sub(newValue, current)
		if _, overflow := newTotal.AddOverflow(totalSupply, delta); overflow {
			newTotal.SetAllOne()
		}
	}
	balances.put(owner, newValue)
	totalSupply.Set(newTotal)
	return true
}

// MapsData reports size and reserved capacity of the allowances and balances
// maps, in that order.
func MapsData(allowances *Allowances, balances *Balances) (MapStats, MapStats) {
	return MapStats{Len: allowances.Len(), Capacity: allowances.Capacity()},
		MapStats{Len: balances.Len(), Capacity: balances.Capacity()}
}

// BalancesPage returns up to take holdings after skipping skip, in actor order.
func BalancesPage(balances *Balances, skip, take int) []Holding {
	return page(balances.Holdings(), skip, take)
}

// AllowancesPage returns up to take allowances after skipping skip, ordered by
// owner then spender.
func AllowancesPage(allowances *Allowances, skip, take int) []AllowanceEntry {
	return page(allowances.Entries(), skip, take)
}

func page[T any](all []T, skip, take int) []T {
	if skip < 0 {
		skip = 0
	}
	if skip >= len(all) || take <= 0 {
		return []T{}
	}
	end := len(all)
	if take < end-skip {
		end = skip + take
	}
	return all[skip:end]
}
