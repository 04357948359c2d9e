package services

import (
	"fmt"

	"github.com/commune-social/commune/pkg/internal/database"
	"github.com/commune-social/commune/pkg/internal/models"
	"github.com/commune-social/commune/pkg/internal/perms"
	"github.com/samber/lo"
	"gorm.io/gorm"
)

var fullMemberRoles = []models.GroupRole{
	models.GroupRoleUsual,
	models.GroupRoleAdmin,
	models.GroupRoleOwner,
}

// FilterGroupWithViewer narrows a group query down to what the viewer may
// see in listings: open groups for everyone, restricted ones only for members
// of at least usual rank. Pending membership is not enough to surface a
// restricted group.
func FilterGroupWithViewer(tx *gorm.DB, viewer *models.Account) *gorm.DB {
	tx = tx.Where("deleted = ? AND disabled = ?", false, false)

	if viewer == nil {
		return tx.Where("type = ?", models.GroupTypePublic)
	}
	if viewer.IsPlatformAdmin() {
		return tx
	}

	memberOf := database.C.Model(&models.GroupMember{}).
		Select("group_id").
		Where("account_id = ? AND role IN ?", viewer.ID, fullMemberRoles)

	return tx.Where("type = ? OR id IN (?)", models.GroupTypePublic, memberOf)
}

// FilterGroupWithMembership narrows strictly to groups where the viewer's
// membership edge exists (any rank) or does not.
func FilterGroupWithMembership(tx *gorm.DB, viewer models.Account, isMember bool) *gorm.DB {
	memberOf := database.C.Model(&models.GroupMember{}).
		Select("group_id").
		Where("account_id = ?", viewer.ID)

	if isMember {
		return tx.Where("id IN (?)", memberOf)
	}
	return tx.Where("id NOT IN (?)", memberOf)
}

func FilterGroupWithCategory(tx *gorm.DB, slug string) *gorm.DB {
	return tx.Joins("JOIN group_categories ON groups.id = group_categories.group_id").
		Joins("JOIN categories ON categories.id = group_categories.category_id").
		Where("categories.slug = ?", slug).
		Distinct("groups.id")
}

// ListGroups runs the composed listing query and fills in the viewer's own
// role on every returned group.
func ListGroups(tx *gorm.DB, viewer *models.Account, take int, offset int) ([]models.Group, error) {
	if take <= 0 || take > 100 {
		take = 100
	}

	var groups []models.Group
	if err := tx.
		Preload("Categories").
		Limit(take).Offset(offset).
		Order("created_at DESC").
		Find(&groups).Error; err != nil {
		return groups, fmt.Errorf("unable to list groups: %v", err)
	}

	if viewer == nil || len(groups) == 0 {
		return groups, nil
	}

	groupIDs := lo.Map(groups, func(item models.Group, index int) uint {
		return item.ID
	})
	var memberships []models.GroupMember
	if err := database.C.
		Where("account_id = ? AND group_id IN ?", viewer.ID, groupIDs).
		Find(&memberships).Error; err != nil {
		return groups, fmt.Errorf("unable to list viewer memberships: %v", err)
	}

	roles := make(map[uint]models.GroupRole, len(memberships))
	for _, membership := range memberships {
		roles[membership.GroupID] = membership.Role
	}
	for idx, group := range groups {
		if role, ok := roles[group.ID]; ok {
			groups[idx].MyRole = &role
		}
	}

	return groups, nil
}

// ListGroupMembers returns every membership edge of a group. Anonymous
// viewers are rejected outright. Any authenticated account may list a public
// group's members; a restricted group requires the viewer to hold at least
// usual rank in it, so pending members stay locked out.
func ListGroupMembers(viewer *models.Account, groupID uint) ([]models.GroupMember, error) {
	if viewer == nil {
		return nil, ErrUnauthenticated
	}

	group, err := GetGroup(database.C, groupID)
	if err != nil {
		return nil, err
	}

	if perms.IsRestricted(group.Type) {
		role, err := GetMemberRole(*viewer, group.ID)
		if err != nil {
			return nil, err
		}
		if role == nil || !perms.RoleAtLeast(*role, models.GroupRoleUsual) {
			return nil, ErrUnauthorized
		}
	}

	var members []models.GroupMember
	if err := database.C.
		Where("group_id = ?", group.ID).
		Preload("Account").
		Order("created_at ASC").
		Find(&members).Error; err != nil {
		return nil, fmt.Errorf("unable to list group members: %v", err)
	}

	return members, nil
}
