package domain

// Role identifies a caller's clinical function. Roles are opaque strings
// supplied by the transport layer; unknown values are tolerated and receive
// only the baseline field set.
type Role string

// Known roles, most privileged first.
const (
	RoleDoctor       Role = "doctor"
	RoleNurse        Role = "nurse"
	RoleReceptionist Role = "receptionist"
)

// Actor is the authenticated caller on whose behalf an operation runs.
type Actor struct {
	ID    string
	Roles []Role
}

// HasRole reports whether the actor holds the given role.
func (a Actor) HasRole(role Role) bool {
	for _, r := range a.Roles {
		if r == role {
			return true
		}
	}
	return false
}

// HasAnyRole reports whether the actor holds at least one of the given roles.
func (a Actor) HasAnyRole(roles ...Role) bool {
	for _, role := range roles {
		if a.HasRole(role) {
			return true
		}
	}
	return false
}
