package perms_test

import (
	"fmt"
	"testing"

	"github.com/commune-social/commune/pkg/internal/models"
	"github.com/commune-social/commune/pkg/internal/perms"
	"github.com/stretchr/testify/assert"
)

var allRoles = []models.GroupRole{
	models.GroupRolePending,
	models.GroupRoleUsual,
	models.GroupRoleAdmin,
	models.GroupRoleOwner,
}

func TestRoleRank(t *testing.T) {
	assert.Equal(t, 0, perms.RoleRank(models.GroupRolePending))
	assert.Equal(t, 1, perms.RoleRank(models.GroupRoleUsual))
	assert.Equal(t, 2, perms.RoleRank(models.GroupRoleAdmin))
	assert.Equal(t, 3, perms.RoleRank(models.GroupRoleOwner))
	assert.Equal(t, -1, perms.RoleRank("sudoer"))
	assert.Equal(t, -1, perms.RoleRank(""))
}

func TestRoleAtLeast(t *testing.T) {
	assert.True(t, perms.RoleAtLeast(models.GroupRoleOwner, models.GroupRoleUsual))
	assert.True(t, perms.RoleAtLeast(models.GroupRoleUsual, models.GroupRoleUsual))
	assert.False(t, perms.RoleAtLeast(models.GroupRolePending, models.GroupRoleUsual))
	assert.False(t, perms.RoleAtLeast("", models.GroupRolePending))
}

func TestIsRestricted(t *testing.T) {
	assert.False(t, perms.IsRestricted(models.GroupTypePublic))
	assert.True(t, perms.IsRestricted(models.GroupTypeClosed))
	assert.True(t, perms.IsRestricted(models.GroupTypeHidden))
}

// The expected outcome computed independently from the rules written out in
// prose, then compared against the implementation over the whole product
// space of (actor, target, requested, self).
func expectedCanChangeRole(actor, target, requested models.GroupRole, self bool) bool {
	if self {
		return false
	}
	switch actor {
	case models.GroupRoleOwner:
		return true
	case models.GroupRoleAdmin:
		targetManageable := target == models.GroupRolePending || target == models.GroupRoleUsual
		requestedAllowed := requested == models.GroupRolePending ||
			requested == models.GroupRoleUsual ||
			requested == models.GroupRoleAdmin
		return targetManageable && requestedAllowed
	default:
		return false
	}
}

func TestCanChangeRoleMatrix(t *testing.T) {
	for _, actor := range allRoles {
		for _, target := range allRoles {
			for _, requested := range allRoles {
				for _, self := range []bool{false, true} {
					name := fmt.Sprintf("%s->%s=%s self=%v", actor, target, requested, self)
					assert.Equal(
						t,
						expectedCanChangeRole(actor, target, requested, self),
						perms.CanChangeRole(actor, target, requested, self),
						name,
					)
				}
			}
		}
	}
}

func TestCanChangeRoleRejectsUnknownRequestedRole(t *testing.T) {
	assert.False(t, perms.CanChangeRole(models.GroupRoleOwner, models.GroupRoleUsual, "emperor", false))
	assert.False(t, perms.CanChangeRole(models.GroupRoleAdmin, models.GroupRoleUsual, "", false))
}
