package events

import (
	"tokenledger/core/types"
	"tokenledger/crypto"
)

const (
	TypeRoleGranted    = "roles.granted"
	TypeRoleRemoved    = "roles.removed"
	TypeRoleReassigned = "roles.reassigned"
	TypePaused         = "pausable.paused"
	TypeUnpaused       = "pausable.unpaused"
)

type RoleGranted struct {
	Actor crypto.ActorID
	Role  string
}

func (RoleGranted) EventType() string { return TypeRoleGranted }

func (e RoleGranted) Event() *types.Event {
	return &types.Event{Type: TypeRoleGranted, Attributes: map[string]string{
		"actor": e.Actor.String(),
		"role":  e.Role,
	}}
}

type RoleRemoved struct {
	Actor crypto.ActorID
	Role  string
}

func (RoleRemoved) EventType() string { return TypeRoleRemoved }

func (e RoleRemoved) Event() *types.Event {
	return &types.Event{Type: TypeRoleRemoved, Attributes: map[string]string{
		"actor": e.Actor.String(),
		"role":  e.Role,
	}}
}

// RoleReassigned is emitted when a role moves from one holder to another in a
// single step.
type RoleReassigned struct {
	From crypto.ActorID
	To   crypto.ActorID
	Role string
}

func (RoleReassigned) EventType() string { return TypeRoleReassigned }

func (e RoleReassigned) Event() *types.Event {
	return &types.Event{Type: TypeRoleReassigned, Attributes: map[string]string{
		"from": e.From.String(),
		"to":   e.To.String(),
		"role": e.Role,
	}}
}

type Paused struct{}

func (Paused) EventType() string { return TypePaused }

func (Paused) Event() *types.Event {
	return &types.Event{Type: TypePaused, Attributes: map[string]string{}}
}

type Unpaused struct{}

func (Unpaused) EventType() string { return TypeUnpaused }

func (Unpaused) Event() *types.Event {
	return &types.Event{Type: TypeUnpaused, Attributes: map[string]string{}}
}
