package crypto

import (
	"crypto/ecdsa"
	"crypto/rand"

	"github.com/ethereum/go-ethereum/crypto"
)

// PrivateKey is a secp256k1 signing key. The actor it controls is derived
// from its public half.
type PrivateKey struct {
	*ecdsa.PrivateKey
}

type PublicKey struct {
	*ecdsa.PublicKey
}

func GeneratePrivateKey() (*PrivateKey, error) {
	key, err := ecdsa.GenerateKey(crypto.S256(), rand.Reader)
	if err != nil {
		return nil, err
	}
	return &PrivateKey{key}, nil
}

func (k *PrivateKey) PubKey() *PublicKey {
	return &PublicKey{&k.PrivateKey.PublicKey}
}

// ActorID derives the account identifier controlled by the key: keccak256 of
// the uncompressed public key without its 0x04 prefix.
func (k *PublicKey) ActorID() ActorID {
	raw := crypto.FromECDSAPub(k.PublicKey)
	var id ActorID
	copy(id[:], crypto.Keccak256(raw[1:]))
	return id
}
