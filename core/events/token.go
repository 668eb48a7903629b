package events

import (
	"github.com/holiman/uint256"

	"tokenledger/core/types"
	"tokenledger/crypto"
)

const (
	// TypeTransfer is emitted for balance movements between two actors.
	TypeTransfer = "token.transfer"
	// TypeApproval is emitted when an allowance is set or cleared.
	TypeApproval = "token.approval"
	// TypeBalanceSet is emitted when a holder overwrites its own balance.
	TypeBalanceSet = "token.balance_set"
)

type Transfer struct {
	From  crypto.ActorID
	To    crypto.ActorID
	Value *uint256.Int
}

func (Transfer) EventType() string { return TypeTransfer }

func (e Transfer) Event() *types.Event {
	return &types.Event{Type: TypeTransfer, Attributes: map[string]string{
		"from":  e.From.String(),
		"to":    e.To.String(),
		"value": formatAmount(e.Value),
	}}
}

type Approval struct {
	Owner   crypto.ActorID
	Spender crypto.ActorID
	Value   *uint256.Int
}

func (Approval) EventType() string { return TypeApproval }

func (e Approval) Event() *types.Event {
	return &types.Event{Type: TypeApproval, Attributes: map[string]string{
		"owner":   e.Owner.String(),
		"spender": e.Spender.String(),
		"value":   formatAmount(e.Value),
	}}
}

// BalanceSet records an administrative balance overwrite together with the
// resulting total supply.
type BalanceSet struct {
	Owner       crypto.ActorID
	Balance     *uint256.Int
	TotalSupply *uint256.Int
}

func (BalanceSet) EventType() string { return TypeBalanceSet }

func (e BalanceSet) Event() *types.Event {
	return &types.Event{Type: TypeBalanceSet, Attributes: map[string]string{
		"owner":       e.Owner.String(),
		"balance":     formatAmount(e.Balance),
		"totalSupply": formatAmount(e.TotalSupply),
	}}
}

// NewTransfer copies value so later mutations by the caller do not leak into
// the emitted event.
func NewTransfer(from, to crypto.ActorID, value *uint256.Int) Transfer {
	return Transfer{From: from, To: to, Value: copyAmount(value)}
}

func NewApproval(owner, spender crypto.ActorID, value *uint256.Int) Approval {
	return Approval{Owner: owner, Spender: spender, Value: copyAmount(value)}
}

func NewBalanceSet(owner crypto.ActorID, balance, total *uint256.Int) BalanceSet {
	return BalanceSet{Owner: owner, Balance: copyAmount(balance), TotalSupply: copyAmount(total)}
}
