package roles

import (
	ledgererrors "tokenledger/core/errors"
	"tokenledger/core/events"
	"tokenledger/crypto"
)

// Service is the authorisation gate consulted by every privileged operation.
type Service struct {
	registry    *Registry
	assignments *Assignments
	emitter     events.Emitter
}

// NewService creates a service with empty registry and assignment stores.
func NewService(emitter events.Emitter) *Service {
	return &Service{
		registry:    NewRegistry(),
		assignments: NewAssignments(),
		emitter:     events.OrNoop(emitter),
	}
}

func (s *Service) RegisterRole(role Role) error {
	return s.registry.Register(role)
}

func (s *Service) EnsureRoleRegistered(role Role) error {
	return s.registry.Ensure(role)
}

// EnsureHasRole fails with ErrBadOrigin unless actor holds role.
func (s *Service) EnsureHasRole(actor crypto.ActorID, role Role) error {
	if err := s.registry.Ensure(role); err != nil {
		return err
	}
	if !s.assignments.Has(actor, role) {
		return ledgererrors.ErrBadOrigin
	}
	return nil
}

// HasRoleByName is the unprivileged lookup used by queries.
func (s *Service) HasRoleByName(actor crypto.ActorID, name string) (bool, error) {
	role, ok := s.registry.Lookup(name)
	if !ok {
		return false, ledgererrors.ErrUnknownRole
	}
	return s.assignments.Has(actor, role), nil
}

// GrantRole adds role to actor and reports whether the holder set changed.
func (s *Service) GrantRole(actor crypto.ActorID, role Role) (bool, error) {
	if err := s.registry.Ensure(role); err != nil {
		return false, err
	}
	if !s.assignments.Grant(actor, role) {
		return false, nil
	}
	s.emitter.Emit(events.RoleGranted{Actor: actor, Role: role.name})
	return true, nil
}

// GrantRoleByName grants the registered role called name. Snapshot restore
// uses it since only names are persisted.
func (s *Service) GrantRoleByName(actor crypto.ActorID, name string) (bool, error) {
	role, ok := s.registry.Lookup(name)
	if !ok {
		return false, ledgererrors.ErrUnknownRole
	}
	return s.GrantRole(actor, role)
}

// RemoveRole drops role from actor and reports whether the holder set changed.
func (s *Service) RemoveRole(actor crypto.ActorID, role Role) (bool, error) {
	if err := s.registry.Ensure(role); err != nil {
		return false, err
	}
	if !s.assignments.Remove(actor, role) {
		return false, nil
	}
	s.emitter.Emit(events.RoleRemoved{Actor: actor, Role: role.name})
	return true, nil
}

// ReassignRole moves role from one holder to another in a single step. It
// requires from to hold the role and reports false when from == to.
func (s *Service) ReassignRole(from, to crypto.ActorID, role Role) (bool, error) {
	if err := s.EnsureHasRole(from, role); err != nil {
		return false, err
	}
	if from == to {
		return false, nil
	}
	s.assignments.Grant(to, role)
	s.assignments.Remove(from, role)
	s.emitter.Emit(events.RoleReassigned{From: from, To: to, Role: role.name})
	return true, nil
}

// Roles lists registered role names.
func (s *Service) Roles() []string {
	return s.registry.Names()
}

// RolesOf lists the role names actor holds.
func (s *Service) RolesOf(actor crypto.ActorID) []string {
	return s.assignments.Names(actor)
}

// Holders lists every actor that holds at least one role.
func (s *Service) Holders() []crypto.ActorID {
	return s.assignments.Actors()
}
