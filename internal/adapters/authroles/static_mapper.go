package authroles

import (
	domainauth "github.com/fooddash/console-api/internal/domain/auth"
)

// StaticRoleMapper maps SSO provider groups onto console roles by
// simple string membership. Groups are checked in privilege order, so
// a member of both the owner and kitchen groups lands on owner.
type StaticRoleMapper struct {
	OwnerGroup   string
	ManagerGroup string
	KitchenGroup string
	RiderGroup   string

	// Default applies when no group matches. Zero value falls back to
	// rider, the least-privileged role.
	Default domainauth.Role
}

func (m StaticRoleMapper) Map(groups []string) domainauth.Role {
	rules := []struct {
		group string
		role  domainauth.Role
	}{
		{m.OwnerGroup, domainauth.RoleOwner},
		{m.ManagerGroup, domainauth.RoleManager},
		{m.KitchenGroup, domainauth.RoleKitchen},
		{m.RiderGroup, domainauth.RoleRider},
	}
	for _, rule := range rules {
		if rule.group == "" {
			continue
		}
		for _, g := range groups {
			if g == rule.group {
				return rule.role
			}
		}
	}
	if m.Default != "" {
		return m.Default
	}
	return domainauth.RoleRider
}
