package workflow

import "strings"

type Role uint8

const (
	RoleEducator Role = iota + 1
	RoleDepartmentHead
	RoleSchoolHead
	RoleHrStaff
	RoleHrHead
	RoleEducationDirector
	RoleSuperAdmin
)

var roleNames = map[Role]string{
	RoleEducator:          "educator",
	RoleDepartmentHead:    "department_head",
	RoleSchoolHead:        "school_head",
	RoleHrStaff:           "hr_staff",
	RoleHrHead:            "hr_head",
	RoleEducationDirector: "education_director",
	RoleSuperAdmin:        "super_admin",
}

// AllRoles lists every role in declaration order.
func AllRoles() []Role {
	return []Role{
		RoleEducator,
		RoleDepartmentHead,
		RoleSchoolHead,
		RoleHrStaff,
		RoleHrHead,
		RoleEducationDirector,
		RoleSuperAdmin,
	}
}

func (r Role) String() string {
	if name, ok := roleNames[r]; ok {
		return name
	}
	return "unknown"
}

// ParseRole accepts the wire name of a role, case-insensitively.
func ParseRole(s string) (Role, bool) {
	s = strings.ToLower(strings.TrimSpace(s))
	for role, name := range roleNames {
		if name == s {
			return role, true
		}
	}
	return 0, false
}

// RoleSet is an unordered set of roles held by one actor.
type RoleSet uint16

func NewRoleSet(roles ...Role) RoleSet {
	var s RoleSet
	for _, r := range roles {
		s = s.Add(r)
	}
	return s
}

// ParseRoleSet builds a set from wire names. Unknown names are skipped.
func ParseRoleSet(names []string) RoleSet {
	var s RoleSet
	for _, n := range names {
		if r, ok := ParseRole(n); ok {
			s = s.Add(r)
		}
	}
	return s
}

func (s RoleSet) Add(r Role) RoleSet {
	if _, ok := roleNames[r]; !ok {
		return s
	}
	return s | 1<<r
}

func (s RoleSet) Has(r Role) bool {
	return r != 0 && s&(1<<r) != 0
}

func (s RoleSet) HasAny(roles ...Role) bool {
	for _, r := range roles {
		if s.Has(r) {
			return true
		}
	}
	return false
}

func (s RoleSet) IsEmpty() bool {
	return s == 0
}

func (s RoleSet) Roles() []Role {
	out := make([]Role, 0, len(roleNames))
	for _, r := range AllRoles() {
		if s.Has(r) {
			out = append(out, r)
		}
	}
	return out
}

func (s RoleSet) Strings() []string {
	roles := s.Roles()
	out := make([]string, len(roles))
	for i, r := range roles {
		out[i] = r.String()
	}
	return out
}
