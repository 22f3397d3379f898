package authority

import (
	"strings"
)

// SystemAdmin is granted to every staff account.
const SystemAdmin = "system:admin"

type Permissions []string

func (c Permissions) HasRole(role string) bool {
	for _, v := range c {
		if strings.EqualFold(v, role) {
			return true
		}
	}
	return false
}

func (c Permissions) HasRolePrefix(prefix string) bool {
	for _, v := range c {
		if strings.HasPrefix(strings.ToLower(v), strings.ToLower(prefix)) {
			return true
		}
	}
	return false
}

func (c Permissions) IsAdmin() bool {
	return c.HasRole(SystemAdmin)
}
