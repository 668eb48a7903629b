package roles

// kind is the opaque tag behind a role. Tags are compared by identity, so two
// declarations never share one even when they share a name.
type kind struct {
	name string
}

// Role pairs a registry name with its kind tag.
type Role struct {
	name string
	kind *kind
}

// Declare allocates a role with a fresh kind tag. Declare each role once,
// typically as a package-level variable, and reuse the value.
func Declare(name string) Role {
	return Role{name: name, kind: &kind{name: name}}
}

func (r Role) Name() string { return r.name }

// Same reports whether r and other carry the same kind tag.
func (r Role) Same(other Role) bool {
	return r.kind != nil && r.kind == other.kind
}

func (r Role) valid() bool { return r.kind != nil && r.name != "" }
