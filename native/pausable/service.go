package pausable

import (
	ledgererrors "tokenledger/core/errors"
	"tokenledger/core/events"
	"tokenledger/crypto"
	"tokenledger/native/roles"
)

// PauseAdmin may engage or release the breaker and hand the role on.
var PauseAdmin = roles.Declare("PauseAdmin")

// Service owns the breaker state. Transitions are authorised through the roles
// service.
type Service struct {
	roles   *roles.Service
	state   State
	emitter events.Emitter
}

// NewService creates an Active breaker. Call Seed to register the admin role.
func NewService(rolesService *roles.Service, emitter events.Emitter) *Service {
	return &Service{roles: rolesService, state: Active, emitter: events.OrNoop(emitter)}
}

// Seed registers PauseAdmin and grants it to admin.
func (s *Service) Seed(admin crypto.ActorID) error {
	if s.roles == nil {
		return ledgererrors.ErrNotInitialized
	}
	if err := s.roles.RegisterRole(PauseAdmin); err != nil {
		return err
	}
	if _, err := s.roles.GrantRole(admin, PauseAdmin); err != nil {
		return err
	}
	return nil
}

func (s *Service) State() State { return s.state }

// Restore overwrites the breaker state without authorisation or events. Only
// snapshot loading uses it.
func (s *Service) Restore(state State) { s.state = state }

func (s *Service) IsPaused() bool { return s.state.Paused() }

func (s *Service) EnsureUnpaused() error {
	if s.IsPaused() {
		return ledgererrors.ErrPaused
	}
	return nil
}

func (s *Service) Pause(caller crypto.ActorID) (bool, error) {
	if err := s.roles.EnsureHasRole(caller, PauseAdmin); err != nil {
		return false, err
	}
	if !pause(&s.state) {
		return false, nil
	}
	s.emitter.Emit(events.Paused{})
	return true, nil
}

func (s *Service) Unpause(caller crypto.ActorID) (bool, error) {
	if err := s.roles.EnsureHasRole(caller, PauseAdmin); err != nil {
		return false, err
	}
	if !unpause(&s.state) {
		return false, nil
	}
	s.emitter.Emit(events.Unpaused{})
	return true, nil
}

// DelegateAdmin hands the PauseAdmin role from caller to actor. It reports
// false without error when actor already is the caller.
func (s *Service) DelegateAdmin(caller, actor crypto.ActorID) (bool, error) {
	return s.roles.ReassignRole(caller, actor, PauseAdmin)
}
