package events

import (
	"strings"

	"github.com/holiman/uint256"

	"tokenledger/crypto"
)

func formatAmount(v *uint256.Int) string {
	if v == nil {
		return "0"
	}
	return v.Dec()
}

func copyAmount(v *uint256.Int) *uint256.Int {
	if v == nil {
		return new(uint256.Int)
	}
	return new(uint256.Int).Set(v)
}

func joinActors(ids []crypto.ActorID) string {
	parts := make([]string, len(ids))
	for i, id := range ids {
		parts[i] = id.String()
	}
	return strings.Join(parts, ",")
}
