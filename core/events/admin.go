package events

import (
	"strconv"

	"github.com/holiman/uint256"

	"tokenledger/core/types"
	"tokenledger/crypto"
)

const (
	TypeMinted             = "admin.minted"
	TypeBurned             = "admin.burned"
	TypeTransferredToUsers = "admin.transferred_to_users"
	TypeKilled             = "admin.killed"
)

type Minted struct {
	To    crypto.ActorID
	Value *uint256.Int
}

func (Minted) EventType() string { return TypeMinted }

func (e Minted) Event() *types.Event {
	return &types.Event{Type: TypeMinted, Attributes: map[string]string{
		"to":    e.To.String(),
		"value": formatAmount(e.Value),
	}}
}

type Burned struct {
	From  crypto.ActorID
	Value *uint256.Int
}

func (Burned) EventType() string { return TypeBurned }

func (e Burned) Event() *types.Event {
	return &types.Event{Type: TypeBurned, Attributes: map[string]string{
		"from":  e.From.String(),
		"value": formatAmount(e.Value),
	}}
}

// TransferredToUsers describes a batch credit of Value to every recipient.
type TransferredToUsers struct {
	From  crypto.ActorID
	To    []crypto.ActorID
	Value *uint256.Int
}

func (TransferredToUsers) EventType() string { return TypeTransferredToUsers }

func (e TransferredToUsers) Event() *types.Event {
	return &types.Event{Type: TypeTransferredToUsers, Attributes: map[string]string{
		"from":       e.From.String(),
		"to":         joinActors(e.To),
		"recipients": strconv.Itoa(len(e.To)),
		"value":      formatAmount(e.Value),
	}}
}

type Killed struct {
	Inheritor crypto.ActorID
}

func (Killed) EventType() string { return TypeKilled }

func (e Killed) Event() *types.Event {
	return &types.Event{Type: TypeKilled, Attributes: map[string]string{
		"inheritor": e.Inheritor.String(),
	}}
}

func NewMinted(to crypto.ActorID, value *uint256.Int) Minted {
	return Minted{To: to, Value: copyAmount(value)}
}

func NewBurned(from crypto.ActorID, value *uint256.Int) Burned {
	return Burned{From: from, Value: copyAmount(value)}
}

func NewTransferredToUsers(from crypto.ActorID, to []crypto.ActorID, value *uint256.Int) TransferredToUsers {
	return TransferredToUsers{From: from, To: append([]crypto.ActorID(nil), to...), Value: copyAmount(value)}
}
