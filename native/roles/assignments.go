package roles

import (
	"sort"

	"tokenledger/crypto"
)

// Assignments tracks which kind tags each actor holds. Actors without roles
// have no entry.
type Assignments struct {
	held map[crypto.ActorID]map[*kind]struct{}
}

func NewAssignments() *Assignments {
	return &Assignments{held: make(map[crypto.ActorID]map[*kind]struct{})}
}

func (a *Assignments) Grant(actor crypto.ActorID, role Role) bool {
	set, ok := a.held[actor]
	if !ok {
		set = make(map[*kind]struct{})
		a.held[actor] = set
	}
	if _, dup := set[role.kind]; dup {
		return false
	}
	set[role.kind] = struct{}{}
	return true
}

func (a *Assignments) Remove(actor crypto.ActorID, role Role) bool {
	set, ok := a.held[actor]
	if !ok {
		return false
	}
	if _, held := set[role.kind]; !held {
		return false
	}
	delete(set, role.kind)
	if len(set) == 0 {
		delete(a.held, actor)
	}
	return true
}

func (a *Assignments) Has(actor crypto.ActorID, role Role) bool {
	_, ok := a.held[actor][role.kind]
	return ok
}

// Names returns the names of the roles actor holds, sorted.
func (a *Assignments) Names(actor crypto.ActorID) []string {
	set := a.held[actor]
	names := make([]string, 0, len(set))
	for k := range set {
		names = append(names, k.name)
	}
	sort.Strings(names)
	return names
}

// Actors lists every actor holding at least one role, in id order.
func (a *Assignments) Actors() []crypto.ActorID {
	out := make([]crypto.ActorID, 0, len(a.held))
	for id := range a.held {
		out = append(out, id)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Compare(out[j]) < 0 })
	return out
}
