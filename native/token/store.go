package token

import (
	"fmt"
	"math"
	"sort"

	"github.com/holiman/uint256"

	ledgererrors "tokenledger/core/errors"
	"tokenledger/crypto"
)

// DefaultCapacity is the number of entries reserved in each map when a store
// is created without an explicit capacity.
const DefaultCapacity = math.MaxUint16

// MaxCapacity bounds the entries reserved in a single map, whether requested
// at construction, through Reserve or by a restored snapshot.
const MaxCapacity = 1 << 20

// ClampCapacity limits n to [0, MaxCapacity].
func ClampCapacity(n int) int {
	switch {
	case n < 0:
		return 0
	case n > MaxCapacity:
		return MaxCapacity
	}
	return n
}

// reservation returns the map size needed for additional more entries, or
// ErrCapacityExceeded when it would pass MaxCapacity.
func reservation(live, additional int) (int, error) {
	if additional > MaxCapacity-live {
		return 0, fmt.Errorf("token: reserve %d more entries on top of %d: %w", additional, live, ledgererrors.ErrCapacityExceeded)
	}
	return live + additional, nil
}

// Meta holds the immutable token descriptors.
type Meta struct {
	Name     string
	Symbol   string
	Decimals uint8
}

// MapStats reports the number of live entries in a map and the capacity
// reserved for it.
type MapStats struct {
	Len      int
	Capacity int
}

// Holding is a single non-zero balance.
type Holding struct {
	Actor  crypto.ActorID
	Amount *uint256.Int
}

// AllowanceKey identifies the allowance an owner granted to a spender.
type AllowanceKey struct {
	Owner   crypto.ActorID
	Spender crypto.ActorID
}

// AllowanceEntry is a single non-zero allowance.
type AllowanceEntry struct {
	Owner   crypto.ActorID
	Spender crypto.ActorID
	Amount  *uint256.Int
}

// Balances maps actors to non-zero amounts. A missing entry is a zero balance;
// zero is never stored.
type Balances struct {
	entries  map[crypto.ActorID]*uint256.Int
	reserved int
}

// NewBalances creates an empty balances map with room for capacity entries,
// clamped to MaxCapacity.
func NewBalances(capacity int) *Balances {
	capacity = ClampCapacity(capacity)
	return &Balances{entries: make(map[crypto.ActorID]*uint256.Int, capacity), reserved: capacity}
}

func (b *Balances) Len() int { return len(b.entries) }

// Capacity reports the reserved size. It never drops below Len.
func (b *Balances) Capacity() int {
	if b.reserved < len(b.entries) {
		return len(b.entries)
	}
	return b.reserved
}

// Reserve makes room for at least additional more entries than currently
// stored. Logical contents are unaffected. Requests that would pass
// MaxCapacity fail with ErrCapacityExceeded and change nothing.
func (b *Balances) Reserve(additional int) error {
	if additional <= 0 {
		return nil
	}
	want, err := reservation(len(b.entries), additional)
	if err != nil {
		return err
	}
	if want <= b.Capacity() {
		return nil
	}
	grown := make(map[crypto.ActorID]*uint256.Int, want)
	for id, amount := range b.entries {
		grown[id] = amount
	}
	b.entries = grown
	b.reserved = want
	return nil
}

func (b *Balances) get(id crypto.ActorID) *uint256.Int {
	if amount, ok := b.entries[id]; ok {
		return new(uint256.Int).Set(amount)
	}
	return new(uint256.Int)
}

func (b *Balances) put(id crypto.ActorID, amount *uint256.Int) {
	if amount == nil || amount.IsZero() {
		delete(b.entries, id)
		return
	}
	b.entries[id] = new(uint256.Int).Set(amount)
}

// Holdings returns all entries ordered by actor id.
func (b *Balances) Holdings() []Holding {
	out := make([]Holding, 0, len(b.entries))
	for id, amount := range b.entries {
		out = append(out, Holding{Actor: id, Amount: new(uint256.Int).Set(amount)})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Actor.Compare(out[j].Actor) < 0 })
	return out
}

// Sum adds every stored balance. The boolean reports overflow.
func (b *Balances) Sum() (*uint256.Int, bool) {
	total := new(uint256.Int)
	for _, amount := range b.entries {
		if _, overflow := total.AddOverflow(total, amount); overflow {
			return total, true
		}
	}
	return total, false
}

// Allowances maps (owner, spender) pairs to non-zero amounts with the same
// zero-elision rule as Balances.
type Allowances struct {
	entries  map[AllowanceKey]*uint256.Int
	reserved int
}

func NewAllowances(capacity int) *Allowances {
	capacity = ClampCapacity(capacity)
	return &Allowances{entries: make(map[AllowanceKey]*uint256.Int, capacity), reserved: capacity}
}

func (a *Allowances) Len() int { return len(a.entries) }

func (a *Allowances) Capacity() int {
	if a.reserved < len(a.entries) {
		return len(a.entries)
	}
	return a.reserved
}

func (a *Allowances) Reserve(additional int) error {
	if additional <= 0 {
		return nil
	}
	want, err := reservation(len(a.entries), additional)
	if err != nil {
		return err
	}
	if want <= a.Capacity() {
		return nil
	}
	grown := make(map[AllowanceKey]*uint256.Int, want)
	for key, amount := range a.entries {
		grown[key] = amount
	}
	a.entries = grown
	a.reserved = want
	return nil
}

func (a *Allowances) get(key AllowanceKey) *uint256.Int {
	if amount, ok := a.entries[key]; ok {
		return new(uint256.Int).Set(amount)
	}
	return new(uint256.Int)
}

func (a *Allowances) put(key AllowanceKey, amount *uint256.Int) {
	if amount == nil || amount.IsZero() {
		delete(a.entries, key)
		return
	}
	a.entries[key] = new(uint256.Int).Set(amount)
}

// Entries returns all allowances ordered by owner, then spender.
func (a *Allowances) Entries() []AllowanceEntry {
	out := make([]AllowanceEntry, 0, len(a.entries))
	for key, amount := range a.entries {
		out = append(out, AllowanceEntry{Owner: key.Owner, Spender: key.Spender, Amount: new(uint256.Int).Set(amount)})
	}
	sort.Slice(out, func(i, j int) bool {
		if c := out[i].Owner.Compare(out[j].Owner); c != 0 {
			return c < 0
		}
		return out[i].Spender.Compare(out[j].Spender) < 0
	})
	return out
}

// Store owns every piece of token state. It is constructed once by the
// program and handed to the services that operate on it.
type Store struct {
	meta              Meta
	balances          *Balances
	allowances        *Allowances
	totalSupply       *uint256.Int
	setBalanceEnabled bool
	seeded            bool
}

// NewStore creates an empty store. A non-positive capacity selects
// DefaultCapacity; anything above MaxCapacity is clamped.
func NewStore(meta Meta, capacity int) *Store {
	return NewStoreSized(meta, capacity, capacity)
}

// NewStoreSized is NewStore with separate capacities for the two maps.
func NewStoreSized(meta Meta, balances, allowances int) *Store {
	if balances <= 0 {
		balances = DefaultCapacity
	}
	if allowances <= 0 {
		allowances = DefaultCapacity
	}
	return &Store{
		meta:        meta,
		balances:    NewBalances(balances),
		allowances:  NewAllowances(allowances),
		totalSupply: new(uint256.Int),
	}
}

func (s *Store) Meta() Meta { return s.meta }

func (s *Store) Balances() *Balances { return s.balances }

func (s *Store) Allowances() *Allowances { return s.allowances }

// TotalSupply returns a copy of the issuance counter.
func (s *Store) TotalSupply() *uint256.Int { return new(uint256.Int).Set(s.totalSupply) }

// SupplyCounter exposes the live issuance counter to the ledger functions that
// update it together with the balances map.
func (s *Store) SupplyCounter() *uint256.Int { return s.totalSupply }

// EnableSetBalance toggles the self-service balance overwrite.
func (s *Store) EnableSetBalance(enabled bool) { s.setBalanceEnabled = enabled }

func (s *Store) SetBalanceEnabled() bool { return s.setBalanceEnabled }

// Seed credits the genesis allocation. It may run once per store.
func (s *Store) Seed(holder crypto.ActorID, amount *uint256.Int) error {
	if s.seeded {
		return ledgererrors.ErrAlreadyInitialized
	}
	s.seeded = true
	if amount == nil || amount.IsZero() {
		return nil
	}
	s.balances.put(holder, amount)
	s.totalSupply.Set(amount)
	return nil
}

// Import loads previously captured state into an empty store. The supplied
// entries must respect zero-elision and the total must equal the balance sum.
func (s *Store) Import(holdings []Holding, allowances []AllowanceEntry, total *uint256.Int) error {
	if s.seeded || s.balances.Len() > 0 || s.allowances.Len() > 0 {
		return ledgererrors.ErrAlreadyInitialized
	}
	balances := NewBalances(s.balances.Capacity())
	for _, h := range holdings {
		if h.Amount == nil || h.Amount.IsZero() {
			return fmt.Errorf("token: import: zero balance stored for %s", h.Actor)
		}
		if _, dup := balances.entries[h.Actor]; dup {
			return fmt.Errorf("token: import: duplicate balance for %s", h.Actor)
		}
		balances.put(h.Actor, h.Amount)
	}
	allowanceMap := NewAllowances(s.allowances.Capacity())
	for _, a := range allowances {
		if a.Amount == nil || a.Amount.IsZero() {
			return fmt.Errorf("token: import: zero allowance stored for %s/%s", a.Owner, a.Spender)
		}
		allowanceMap.put(AllowanceKey{Owner: a.Owner, Spender: a.Spender}, a.Amount)
	}
	sum, overflow := balances.Sum()
	if overflow {
		return fmt.Errorf("token: import: %w", ledgererrors.ErrNumericOverflow)
	}
	if total == nil {
		total = new(uint256.Int)
	}
	if !sum.Eq(total) {
		return fmt.Errorf("token: import: total supply %s does not match balance sum %s", total.Dec(), sum.Dec())
	}
	s.balances = balances
	s.allowances = allowanceMap
	s.totalSupply = new(uint256.Int).Set(total)
	s.seeded = true
	return nil
}
