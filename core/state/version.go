package state

import (
	"errors"
	"fmt"
	"math"
)

// StateVersion identifies the expected on-disk snapshot layout. Increment it
// whenever the encoded Snapshot changes shape.
const StateVersion uint32 = 1

var (
	stateVersionKey = []byte("state/version")
	// ErrStateVersionMismatch indicates the stored schema version does not
	// match the version supported by the current binary.
	ErrStateVersionMismatch = errors.New("state: schema version mismatch")
)

// SetStateVersion records the provided schema version.
func (m *Manager) SetStateVersion(version uint32) error {
	return m.KVPut(stateVersionKey, uint64(version))
}

// StateVersion returns the stored schema version and whether one was present.
func (m *Manager) StateVersion() (uint32, bool, error) {
	var stored uint64
	ok, err := m.KVGet(stateVersionKey, &stored)
	if err != nil || !ok {
		return 0, ok, err
	}
	if stored > uint64(math.MaxUint32) {
		return 0, false, fmt.Errorf("state: schema version overflow: %d", stored)
	}
	return uint32(stored), true, nil
}

// EnsureStateVersion verifies that the stored version matches StateVersion. An
// empty database passes. When allowMigrate is true mismatches are tolerated so
// operators can migrate by hand.
func (m *Manager) EnsureStateVersion(allowMigrate bool) error {
	version, ok, err := m.StateVersion()
	if err != nil {
		return err
	}
	if !ok || version == StateVersion || allowMigrate {
		return nil
	}
	return fmt.Errorf("%w: on-disk=%d expected=%d", ErrStateVersionMismatch, version, StateVersion)
}
