package admin

import (
	"fmt"

	"github.com/holiman/uint256"

	ledgererrors "tokenledger/core/errors"
	"tokenledger/core/events"
	"tokenledger/crypto"
	"tokenledger/native/pausable"
	"tokenledger/native/roles"
	"tokenledger/native/token"
)

// Service implements the privileged entry points on top of the token store,
// the roles service and the breaker.
type Service struct {
	store   *token.Store
	roles   *roles.Service
	pause   *pausable.Service
	meta    *AdditionalMeta
	emitter events.Emitter
}

func NewService(store *token.Store, rolesService *roles.Service, pause *pausable.Service, emitter events.Emitter) *Service {
	return &Service{store: store, roles: rolesService, pause: pause, emitter: events.OrNoop(emitter)}
}

func (s *Service) registerRoles() error {
	for _, role := range []roles.Role{FungibleAdmin, FungibleBurner, FungibleMinter} {
		if err := s.roles.RegisterRole(role); err != nil {
			return err
		}
	}
	return nil
}

// Seed validates params, registers the admin roles, grants all of them to the
// admin and credits the initial supply. It runs once.
func (s *Service) Seed(params Init) error {
	if s.store == nil || s.roles == nil {
		return ledgererrors.ErrNotInitialized
	}
	if s.meta != nil {
		return ledgererrors.ErrAlreadyInitialized
	}
	if err := params.Validate(); err != nil {
		return err
	}
	if err := s.registerRoles(); err != nil {
		return err
	}
	for _, role := range []roles.Role{FungibleAdmin, FungibleBurner, FungibleMinter} {
		if _, err := s.roles.GrantRole(params.Admin, role); err != nil {
			return err
		}
	}
	if err := s.store.Seed(params.Admin, params.InitialSupply); err != nil {
		return err
	}
	s.store.EnableSetBalance(params.EnableSetBalance)
	s.meta = &AdditionalMeta{
		Description:   params.Description,
		ExternalLinks: params.ExternalLinks,
		MaxSupply:     new(uint256.Int).Set(params.MaxSupply),
	}
	return nil
}

// Restore installs previously captured metadata and registers the admin roles
// without granting them. Assignments are restored separately.
func (s *Service) Restore(meta AdditionalMeta) error {
	if s.meta != nil {
		return ledgererrors.ErrAlreadyInitialized
	}
	if meta.MaxSupply == nil {
		return fmt.Errorf("%w: max supply required", ledgererrors.ErrInvalidConfig)
	}
	if err := s.registerRoles(); err != nil {
		return err
	}
	meta.MaxSupply = new(uint256.Int).Set(meta.MaxSupply)
	s.meta = &meta
	return nil
}

func (s *Service) withMeta() (*AdditionalMeta, error) {
	if s == nil || s.meta == nil || s.store == nil {
		return nil, ledgererrors.ErrNotInitialized
	}
	return s.meta, nil
}

// authorize runs the pause check and then the role check for caller.
func (s *Service) authorize(caller crypto.ActorID, role roles.Role) (*AdditionalMeta, error) {
	meta, err := s.withMeta()
	if err != nil {
		return nil, err
	}
	if err := s.pause.EnsureUnpaused(); err != nil {
		return nil, err
	}
	if err := s.roles.EnsureHasRole(caller, role); err != nil {
		return nil, err
	}
	return meta, nil
}

func (s *Service) Mint(caller, to crypto.ActorID, value *uint256.Int) (bool, error) {
	meta, err := s.authorize(caller, FungibleMinter)
	if err != nil {
		return false, err
	}
	value = amountOrZero(value)
	mutated, err := token.Mint(s.store.Balances(), s.store.SupplyCounter(), meta.MaxSupply, to, value)
	if err != nil || !mutated {
		return false, err
	}
	s.emitter.Emit(events.NewMinted(to, value))
	return true, nil
}

func (s *Service) Burn(caller, from crypto.ActorID, value *uint256.Int) (bool, error) {
	if _, err := s.authorize(caller, FungibleBurner); err != nil {
		return false, err
	}
	value = amountOrZero(value)
	mutated, err := token.Burn(s.store.Balances(), s.store.SupplyCounter(), from, value)
	if err != nil || !mutated {
		return false, err
	}
	s.emitter.Emit(events.NewBurned(from, value))
	return true, nil
}

// TransferToUsers credits value to each recipient out of the caller's balance.
func (s *Service) TransferToUsers(caller crypto.ActorID, to []crypto.ActorID, value *uint256.Int) (bool, error) {
	if _, err := s.authorize(caller, FungibleAdmin); err != nil {
		return false, err
	}
	value = amountOrZero(value)
	mutated, err := token.TransferToUsers(s.store.Balances(), caller, to, value)
	if err != nil || !mutated {
		return false, err
	}
	s.emitter.Emit(events.NewTransferredToUsers(caller, to, value))
	return true, nil
}

func (s *Service) GrantRole(caller, to crypto.ActorID, name RoleName) (bool, error) {
	if _, err := s.authorize(caller, FungibleAdmin); err != nil {
		return false, err
	}
	role, err := name.role()
	if err != nil {
		return false, err
	}
	return s.roles.GrantRole(to, role)
}

func (s *Service) RemoveRole(caller, from crypto.ActorID, name RoleName) (bool, error) {
	if _, err := s.authorize(caller, FungibleAdmin); err != nil {
		return false, err
	}
	role, err := name.role()
	if err != nil {
		return false, err
	}
	return s.roles.RemoveRole(from, role)
}

// Kill checks that caller is an admin and announces termination in favour of
// inheritor. Making the termination stick is the caller's job.
func (s *Service) Kill(caller, inheritor crypto.ActorID) error {
	if _, err := s.withMeta(); err != nil {
		return err
	}
	if err := s.roles.EnsureHasRole(caller, FungibleAdmin); err != nil {
		return err
	}
	s.emitter.Emit(events.Killed{Inheritor: inheritor})
	return nil
}

func (s *Service) AllowancesReserve(additional int) error {
	if _, err := s.withMeta(); err != nil {
		return err
	}
	if err := s.pause.EnsureUnpaused(); err != nil {
		return err
	}
	return s.store.Allowances().Reserve(additional)
}

func (s *Service) BalancesReserve(additional int) error {
	if _, err := s.withMeta(); err != nil {
		return err
	}
	if err := s.pause.EnsureUnpaused(); err != nil {
		return err
	}
	return s.store.Balances().Reserve(additional)
}

// MapsData reports allowances and balances map statistics, in that order.
func (s *Service) MapsData() (token.MapStats, token.MapStats, error) {
	if _, err := s.withMeta(); err != nil {
		return token.MapStats{}, token.MapStats{}, err
	}
	allowances, balances := token.MapsData(s.store.Allowances(), s.store.Balances())
	return allowances, balances, nil
}

func (s *Service) Balances(skip, take int) ([]token.Holding, error) {
	if _, err := s.withMeta(); err != nil {
		return nil, err
	}
	return token.BalancesPage(s.store.Balances(), skip, take), nil
}

func (s *Service) Allowances(skip, take int) ([]token.AllowanceEntry, error) {
	if _, err := s.withMeta(); err != nil {
		return nil, err
	}
	return token.AllowancesPage(s.store.Allowances(), skip, take), nil
}

// Meta returns a copy of the additional metadata.
func (s *Service) Meta() (AdditionalMeta, error) {
	meta, err := s.withMeta()
	if err != nil {
		return AdditionalMeta{}, err
	}
	out := *meta
	out.MaxSupply = new(uint256.Int).Set(meta.MaxSupply)
	return out, nil
}

func amountOrZero(v *uint256.Int) *uint256.Int {
	if v == nil {
		return new(uint256.Int)
	}
	return v
}
