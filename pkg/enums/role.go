package enums

import "fmt"

// Role is the platform-level role carried in the access token. Admin is the
// operational escape hatch that may force any order transition.
type Role string

const (
	RoleMember Role = "member"
	RoleAdmin  Role = "admin"
)

var validRoles = []Role{
	RoleMember,
	RoleAdmin,
}

// String implements fmt.Stringer.
func (r Role) String() string {
	return string(r)
}

// IsValid reports whether the value is a known Role.
func (r Role) IsValid() bool {
	for _, candidate := range validRoles {
		if candidate == r {
			return true
		}
	}
	return false
}

// ParseRole converts raw input into a Role.
func ParseRole(value string) (Role, error) {
	for _, candidate := range validRoles {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid role %q", value)
}
