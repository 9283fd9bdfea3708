package domain

import (
	"fmt"
	"strings"
)

// Role is the position of an identity in the management hierarchy. The
// numeric value is the level used for ordering.
type Role int

const (
	RoleUser       Role = 1
	RoleAdmin      Role = 2
	RoleSuperadmin Role = 3
)

// Roles lists every role from least to most senior.
func Roles() []Role {
	return []Role{RoleUser, RoleAdmin, RoleSuperadmin}
}

func (r Role) Level() int { return int(r) }

func (r Role) Valid() bool {
	return r >= RoleUser && r <= RoleSuperadmin
}

// CanManage reports whether r is strictly senior to target. Equal roles never
// manage each other.
func (r Role) CanManage(target Role) bool {
	return CanManage(r, target)
}

// CanManage reports whether actor may change the attributes or role of an
// identity holding target.
func CanManage(actor, target Role) bool {
	if !actor.Valid() || !target.Valid() {
		return false
	}
	return actor.Level() > target.Level()
}

func (r Role) String() string {
	switch r {
	case RoleUser:
		return "USER"
	case RoleAdmin:
		return "ADMIN"
	case RoleSuperadmin:
		return "SUPERADMIN"
	default:
		return fmt.Sprintf("Role(%d)", int(r))
	}
}

// DisplayName is the lower-case form shown to people.
func (r Role) DisplayName() string {
	return strings.ToLower(r.String())
}

// ParseRole accepts the enum names case-insensitively.
func ParseRole(s string) (Role, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "USER":
		return RoleUser, nil
	case "ADMIN":
		return RoleAdmin, nil
	case "SUPERADMIN":
		return RoleSuperadmin, nil
	}
	return 0, fmt.Errorf("%w: unknown role %q", ErrInvalidValue, s)
}
