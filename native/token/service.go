package token

import (
	"github.com/holiman/uint256"

	ledgererrors "tokenledger/core/errors"
	"tokenledger/core/events"
	"tokenledger/crypto"
	nativecommon "tokenledger/native/common"
)

// Service exposes the holder-facing token operations. Every method acts on
// behalf of an already attributed caller.
type Service struct {
	store   *Store
	pause   nativecommon.PauseView
	emitter events.Emitter
}

// NewService wires a service to its store. pause may be nil when no circuit
// breaker is configured; emitter may be nil to discard events.
func NewService(store *Store, pause nativecommon.PauseView, emitter events.Emitter) *Service {
	return &Service{store: store, pause: pause, emitter: events.OrNoop(emitter)}
}

func (s *Service) withStore() (*Store, error) {
	if s == nil || s.store == nil {
		return nil, ledgererrors.ErrNotInitialized
	}
	return s.store, nil
}

// mutable resolves the store and rejects the call while paused.
func (s *Service) mutable() (*Store, error) {
	store, err := s.withStore()
	if err != nil {
		return nil, err
	}
	if err := nativecommon.Guard(s.pause); err != nil {
		return nil, err
	}
	return store, nil
}

func amountOrZero(v *uint256.Int) *uint256.Int {
	if v == nil {
		return new(uint256.Int)
	}
	return v
}

func (s *Service) Approve(owner, spender crypto.ActorID, value *uint256.Int) (bool, error) {
	store, err := s.mutable()
	if err != nil {
		return false, err
	}
	value = amountOrZero(value)
	if !Approve(store.allowances, owner, spender, value) {
		return false, nil
	}
	s.emitter.Emit(events.NewApproval(owner, spender, value))
	return true, nil
}

func (s *Service) Transfer(from, to crypto.ActorID, value *uint256.Int) (bool, error) {
	store, err := s.mutable()
	if err != nil {
		return false, err
	}
	value = amountOrZero(value)
	mutated, err := Transfer(store.balances, from, to, value)
	if err != nil || !mutated {
		return false, err
	}
	s.emitter.Emit(events.NewTransfer(from, to, value))
	return true, nil
}

func (s *Service) TransferFrom(spender, from, to crypto.ActorID, value *uint256.Int) (bool, error) {
	store, err := s.mutable()
	if err != nil {
		return false, err
	}
	value = amountOrZero(value)
	mutated, err := TransferFrom(store.allowances, store.balances, spender, from, to, value)
	if err != nil || !mutated {
		return false, err
	}
	s.emitter.Emit(events.NewTransfer(from, to, value))
	return true, nil
}

// SetBalance lets owner overwrite its own balance. It is refused unless the
// store was configured to allow it; see the package-level SetBalance for the
// weakened supply semantics.
func (s *Service) SetBalance(owner crypto.ActorID, value *uint256.Int) (bool, error) {
	store, err := s.mutable()
	if err != nil {
		return false, err
	}
	if !store.setBalanceEnabled {
		return false, ledgererrors.ErrSetBalanceDisabled
	}
	value = amountOrZero(value)
	if !SetBalance(store.balances, store.totalSupply, owner, value) {
		return false, nil
	}
	s.emitter.Emit(events.NewBalanceSet(owner, value, store.totalSupply))
	return true, nil
}

func (s *Service) BalanceOf(owner crypto.ActorID) (*uint256.Int, error) {
	store, err := s.withStore()
	if err != nil {
		return nil, err
	}
	return BalanceOf(store.balances, owner), nil
}

func (s *Service) Allowance(owner, spender crypto.ActorID) (*uint256.Int, error) {
	store, err := s.withStore()
	if err != nil {
		return nil, err
	}
	return AllowanceOf(store.allowances, owner, spender), nil
}

func (s *Service) TotalSupply() (*uint256.Int, error) {
	store, err := s.withStore()
	if err != nil {
		return nil, err
	}
	return store.TotalSupply(), nil
}

func (s *Service) Meta() (Meta, error) {
	store, err := s.withStore()
	if err != nil {
		return Meta{}, err
	}
	return store.meta, nil
}
