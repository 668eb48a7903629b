package crypto

import (
	"bytes"
	"encoding/hex"
	"fmt"
	"strings"

	"github.com/btcsuite/btcutil/bech32"
)

// ActorPrefix is the human-readable part used when rendering actor ids.
const ActorPrefix = "actor"

// ActorIDLength is the width of an actor identifier in bytes.
const ActorIDLength = 32

// ActorID identifies an account holding balances, allowances or roles. The zero
// value is a valid identifier.
type ActorID [ActorIDLength]byte

// ActorIDFromBytes copies b into an ActorID. The slice must be exactly 32 bytes.
func ActorIDFromBytes(b []byte) (ActorID, error) {
	var id ActorID
	if len(b) != ActorIDLength {
		return id, fmt.Errorf("actor id must be %d bytes (got %d)", ActorIDLength, len(b))
	}
	copy(id[:], b)
	return id, nil
}

// ActorIDFromUint64 builds an identifier whose trailing eight bytes hold v in
// big-endian order. Handy for fixtures and deterministic test accounts.
func ActorIDFromUint64(v uint64) ActorID {
	var id ActorID
	for i := 0; i < 8; i++ {
		id[ActorIDLength-1-i] = byte(v >> (8 * i))
	}
	return id
}

// MustActorID parses s and panics on error.
func MustActorID(s string) ActorID {
	id, err := ParseActorID(s)
	if err != nil {
		panic(err)
	}
	return id
}

// ParseActorID accepts the bech32 form produced by String or a 0x-prefixed hex
// string.
func ParseActorID(s string) (ActorID, error) {
	trimmed := strings.TrimSpace(s)
	if trimmed == "" {
		return ActorID{}, fmt.Errorf("actor id required")
	}
	if strings.HasPrefix(trimmed, "0x") || strings.HasPrefix(trimmed, "0X") {
		decoded, err := hex.DecodeString(trimmed[2:])
		if err != nil {
			return ActorID{}, fmt.Errorf("decode actor id hex: %w", err)
		}
		return ActorIDFromBytes(decoded)
	}
	prefix, data, err := bech32.Decode(trimmed)
	if err != nil {
		return ActorID{}, fmt.Errorf("invalid bech32 string: %w", err)
	}
	if prefix != ActorPrefix {
		return ActorID{}, fmt.Errorf("unexpected actor id prefix %q", prefix)
	}
	conv, err := bech32.ConvertBits(data, 5, 8, false)
	if err != nil {
		return ActorID{}, fmt.Errorf("error converting bits: %w", err)
	}
	return ActorIDFromBytes(conv)
}

func (id ActorID) String() string {
	conv, err := bech32.ConvertBits(id[:], 8, 5, true)
	if err != nil {
		panic(err)
	}
	encoded, err := bech32.Encode(ActorPrefix, conv)
	if err != nil {
		panic(err)
	}
	return encoded
}

// Hex renders the identifier as 0x-prefixed lowercase hex.
func (id ActorID) Hex() string {
	return "0x" + hex.EncodeToString(id[:])
}

func (id ActorID) Bytes() []byte {
	return append([]byte(nil), id[:]...)
}

func (id ActorID) IsZero() bool {
	return id == ActorID{}
}

// Compare orders identifiers by their raw bytes.
func (id ActorID) Compare(other ActorID) int {
	return bytes.Compare(id[:], other[:])
}

func (id ActorID) MarshalText() ([]byte, error) {
	return []byte(id.String()), nil
}

func (id *ActorID) UnmarshalText(text []byte) error {
	parsed, err := ParseActorID(string(text))
	if err != nil {
		return err
	}
	*id = parsed
	return nil
}
