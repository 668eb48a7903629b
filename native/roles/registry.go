package roles

import (
	"sort"

	ledgererrors "tokenledger/core/errors"
)

// Registry binds role names to kind tags. A name is bound at most once.
type Registry struct {
	byName map[string]*kind
}

func NewRegistry() *Registry {
	return &Registry{byName: make(map[string]*kind)}
}

// Register binds the role's name to its tag. Registering the same role again
// is a no-op; a different role under a taken name fails with ErrDuplicateRole.
func (r *Registry) Register(role Role) error {
	if !role.valid() {
		return ledgererrors.ErrUnknownRole
	}
	existing, ok := r.byName[role.name]
	if !ok {
		r.byName[role.name] = role.kind
		return nil
	}
	if existing != role.kind {
		return ledgererrors.ErrDuplicateRole
	}
	return nil
}

// Ensure fails with ErrUnknownRole when the name was never registered and with
// ErrDuplicateRole when it is bound to another tag.
func (r *Registry) Ensure(role Role) error {
	existing, ok := r.byName[role.name]
	if !ok {
		return ledgererrors.ErrUnknownRole
	}
	if existing != role.kind {
		return ledgererrors.ErrDuplicateRole
	}
	return nil
}

// Lookup resolves a registered name.
func (r *Registry) Lookup(name string) (Role, bool) {
	k, ok := r.byName[name]
	if !ok {
		return Role{}, false
	}
	return Role{name: name, kind: k}, true
}

// Names lists registered role names in lexical order.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.byName))
	for name := range r.byName {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
