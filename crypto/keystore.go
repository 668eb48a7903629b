package crypto

import (
	"errors"
	"os"
	"path/filepath"

	"github.com/ethereum/go-ethereum/accounts/keystore"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/google/uuid"
)

// ScryptParams selects the key-derivation cost of a keystore file.
type ScryptParams struct {
	N int
	P int
}

var (
	StandardScrypt = ScryptParams{N: keystore.StandardScryptN, P: keystore.StandardScryptP}
	// LightScrypt is meant for tests and throwaway development keys.
	LightScrypt = ScryptParams{N: keystore.LightScryptN, P: keystore.LightScryptP}
)

// SaveToKeystore writes an actor signing key to a v3 keystore file at the given
// path so operators can keep the admin key encrypted at rest.
// If the parent directory does not exist it will be created with 0700 permissions.
func SaveToKeystore(path string, key *PrivateKey, passphrase string) error {
	return SaveToKeystoreWithParams(path, key, passphrase, StandardScrypt)
}

// SaveToKeystoreWithParams is SaveToKeystore with an explicit scrypt cost. The
// file is written next to path and renamed into place.
func SaveToKeystoreWithParams(path string, key *PrivateKey, passphrase string, params ScryptParams) error {
	if key == nil {
		return errors.New("crypto: nil private key")
	}
	if path == "" {
		return errors.New("crypto: empty keystore path")
	}
	id, err := uuid.NewRandom()
	if err != nil {
		return err
	}
	encrypted, err := keystore.EncryptKey(&keystore.Key{
		Id:         id,
		Address:    crypto.PubkeyToAddress(key.PublicKey),
		PrivateKey: key.PrivateKey,
	}, passphrase, params.N, params.P)
	if err != nil {
		return err
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return err
	}
	tmp, err := os.CreateTemp(dir, ".keystore-*")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())
	if _, err := tmp.Write(encrypted); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Chmod(0o600); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), path)
}

// LoadFromKeystore decrypts an Ethereum v3 keystore file using the supplied passphrase.
func LoadFromKeystore(path, passphrase string) (*PrivateKey, error) {
	if path == "" {
		return nil, errors.New("crypto: empty keystore path")
	}

	keyJSON, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	decrypted, err := keystore.DecryptKey(keyJSON, passphrase)
	if err != nil {
		return nil, err
	}

	return &PrivateKey{PrivateKey: decrypted.PrivateKey}, nil
}

// LoadActor decrypts the keystore at path and returns the actor its key
// controls.
func LoadActor(path, passphrase string) (ActorID, error) {
	key, err := LoadFromKeystore(path, passphrase)
	if err != nil {
		return ActorID{}, err
	}
	return key.PubKey().ActorID(), nil
}
