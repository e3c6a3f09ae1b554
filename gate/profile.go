package gate

// Profile is a named set of permissions.
type Profile interface {
	Name() string
	HasPermission(permission Permission) bool
	Permissions() []Permission
}

// StaticProfile is an in-memory profile. It is immutable once built.
type StaticProfile struct {
	name        string
	permissions []Permission
}

// NewStaticProfile creates a profile with the given permissions.
func NewStaticProfile(name string, permissions ...Permission) *StaticProfile {
	perms := make([]Permission, len(permissions))
	copy(perms, permissions)
	return &StaticProfile{name: name, permissions: perms}
}

func (p *StaticProfile) Name() string { return p.name }

// Permissions returns a copy of the profile's permissions in declaration order.
func (p *StaticProfile) Permissions() []Permission {
	out := make([]Permission, len(p.permissions))
	copy(out, p.permissions)
	return out
}

// HasPermission reports whether any permission of the profile matches requested.
func (p *StaticProfile) HasPermission(requested Permission) bool {
	for _, perm := range p.permissions {
		if perm.Matches(requested) {
			return true
		}
	}
	return false
}
