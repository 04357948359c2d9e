// Package perms is the single source of truth for membership role ordering
// and the role-change authorization matrix. Nothing else in the codebase may
// compare role strings directly.
package perms

import (
	"github.com/commune-social/commune/pkg/internal/models"
)

var roleRanks = map[models.GroupRole]int{
	models.GroupRolePending: 0,
	models.GroupRoleUsual:   1,
	models.GroupRoleAdmin:   2,
	models.GroupRoleOwner:   3,
}

// RoleRank returns the total order of membership roles.
// Unknown roles rank below everything.
func RoleRank(role models.GroupRole) int {
	if rank, ok := roleRanks[role]; ok {
		return rank
	}
	return -1
}

func IsValidRole(role models.GroupRole) bool {
	_, ok := roleRanks[role]
	return ok
}

func RoleAtLeast(role, threshold models.GroupRole) bool {
	return RoleRank(role) >= RoleRank(threshold)
}

// IsRestricted reports whether a group type requires membership for
// visibility. Public groups are open; closed and hidden ones are not.
func IsRestricted(groupType models.GroupType) bool {
	switch groupType {
	case models.GroupTypeClosed, models.GroupTypeHidden:
		return true
	default:
		return false
	}
}

// CanChangeRole decides whether an actor holding actorRole may set a member
// whose current role is targetRole to the requested role. Self-service role
// changes are always rejected, an owner included, so a group can never strand
// itself without one.
//
// Owners may set anyone to anything. Admins may only manage pending and usual
// members, and may promote them no higher than admin. Everyone else manages
// nobody.
func CanChangeRole(actorRole, targetRole, requested models.GroupRole, self bool) bool {
	if self || !IsValidRole(requested) {
		return false
	}

	switch actorRole {
	case models.GroupRoleOwner:
		return true
	case models.GroupRoleAdmin:
		if RoleRank(targetRole) >= RoleRank(models.GroupRoleAdmin) {
			return false
		}
		return RoleRank(requested) < RoleRank(models.GroupRoleOwner)
	default:
		return false
	}
}
