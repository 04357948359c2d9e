package services

import (
	"errors"
	"fmt"

	"github.com/commune-social/commune/pkg/internal/database"
	"github.com/commune-social/commune/pkg/internal/models"
	"github.com/commune-social/commune/pkg/internal/perms"
	"github.com/rs/zerolog/log"
	"github.com/spf13/viper"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const tombstonePlaceholder = "UNAVAILABLE"

const minGroupDescriptionLength = 100

func GetGroup(tx *gorm.DB, id uint) (models.Group, error) {
	var group models.Group
	if err := tx.Where("id = ?", id).First(&group).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return group, ErrNotFound
		}
		return group, fmt.Errorf("unable to get group: %v", err)
	}
	if group.Deleted || group.Disabled {
		return group, ErrNotFound
	}
	return group, nil
}

func GetGroupBySlug(tx *gorm.DB, slug string) (models.Group, error) {
	var group models.Group
	if err := tx.Where("slug = ?", slug).First(&group).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return group, ErrNotFound
		}
		return group, fmt.Errorf("unable to get group: %v", err)
	}
	if group.Deleted || group.Disabled {
		return group, ErrNotFound
	}
	return group, nil
}

// GetMemberRole looks up the viewer's own role in a group. A pending member
// asking for their own status does get "pending" back even though pending
// rank unlocks nothing else.
func GetMemberRole(user models.Account, groupID uint) (*models.GroupRole, error) {
	var membership models.GroupMember
	if err := database.C.
		Where("group_id = ? AND account_id = ?", groupID, user.ID).
		First(&membership).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("unable to get membership: %v", err)
	}
	return &membership.Role, nil
}

// GetGroupForViewer fetches one group as seen by the viewer, filling in the
// viewer's own role. A hidden group reads exactly like a missing one unless
// the viewer holds a membership edge of any rank or is a platform admin.
func GetGroupForViewer(viewer *models.Account, id uint) (models.Group, error) {
	group, err := GetGroup(database.C, id)
	if err != nil {
		return group, err
	}

	if viewer == nil {
		if group.Type == models.GroupTypeHidden {
			return group, ErrNotFound
		}
		return group, nil
	}

	role, err := GetMemberRole(*viewer, group.ID)
	if err != nil {
		return group, err
	}
	group.MyRole = role

	if group.Type == models.GroupTypeHidden && role == nil && !viewer.IsPlatformAdmin() {
		return group, ErrNotFound
	}

	return group, nil
}

// NewGroup creates a group and makes the creator its sole owner, both in one
// transaction. Group type is fixed at creation; there is no migration path.
func NewGroup(user models.Account, group models.Group, categories []uint) (models.Group, error) {
	switch group.Type {
	case models.GroupTypePublic, models.GroupTypeClosed, models.GroupTypeHidden:
	default:
		return group, fmt.Errorf("%w: unknown group type %q", ErrConstraintViolation, group.Type)
	}

	if len(StripMarkup(group.Description)) < minGroupDescriptionLength {
		return group, fmt.Errorf("%w: description too short", ErrConstraintViolation)
	}

	if viper.GetBool("categories.enabled") {
		if len(categories) < viper.GetInt("categories.min") {
			return group, fmt.Errorf("%w: too few categories", ErrConstraintViolation)
		}
		if len(categories) > viper.GetInt("categories.max") {
			return group, fmt.Errorf("%w: too many categories", ErrConstraintViolation)
		}
	}

	group.Slug = MakeSlug(group.Name)
	group.Disabled = false
	group.Deleted = false

	err := database.C.Transaction(func(tx *gorm.DB) error {
		if len(categories) > 0 {
			var matched []models.Category
			if err := tx.Where("id IN ?", categories).Find(&matched).Error; err != nil {
				return fmt.Errorf("unable to load categories: %v", err)
			}
			if len(matched) != len(categories) {
				return fmt.Errorf("%w: unknown category", ErrNotFound)
			}
			group.Categories = matched
		}

		if err := tx.Create(&group).Error; err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return fmt.Errorf("%w: group with this slug already exists", ErrConstraintViolation)
			}
			return err
		}

		membership := models.GroupMember{
			GroupID:   group.ID,
			AccountID: user.ID,
			Role:      models.GroupRoleOwner,
		}
		return tx.Create(&membership).Error
	})
	if err != nil {
		return group, err
	}

	log.Info().Uint("group", group.ID).Uint("owner", user.ID).Msg("New group created...")
	return group, nil
}

// JoinGroup enters the acting user into a group. Calling it as an existing
// member of any role is a no-op that reports the current role back; an owner
// "joining" their own group stays owner. Newcomers get usual in public groups
// and pending in closed ones. A hidden group cannot be self-joined at all;
// someone inside has to pull you in via ChangeMemberRole, and outsiders get
// the same answer as for a group that does not exist.
func JoinGroup(user models.Account, groupID uint) (models.GroupMember, error) {
	var membership models.GroupMember
	err := database.C.Transaction(func(tx *gorm.DB) error {
		group, err := GetGroup(tx, groupID)
		if err != nil {
			return err
		}

		if err := tx.
			Where("group_id = ? AND account_id = ?", group.ID, user.ID).
			First(&membership).Error; err == nil {
			return nil
		} else if !errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("unable to get membership: %v", err)
		}

		if group.Type == models.GroupTypeHidden {
			return ErrNotFound
		}

		role := models.GroupRoleUsual
		if perms.IsRestricted(group.Type) {
			role = models.GroupRolePending
		}

		membership = models.GroupMember{
			GroupID:   group.ID,
			AccountID: user.ID,
			Role:      role,
		}
		if err := tx.
			Clauses(clause.OnConflict{DoNothing: true}).
			Create(&membership).Error; err != nil {
			return fmt.Errorf("unable to create membership: %v", err)
		}

		// A concurrent join may have won the conflict clause; the row in the
		// store is authoritative either way.
		return tx.
			Where("group_id = ? AND account_id = ?", group.ID, user.ID).
			First(&membership).Error
	})

	return membership, err
}

// ChangeMemberRole sets the target's role in a group, creating the membership
// edge when there is none. Authorization runs inside the same transaction as
// the write against the actor's and target's current roles; a target without
// an edge is judged as if it were pending, which is also how admins and
// owners seed members into hidden groups. Nobody may change their own role.
func ChangeMemberRole(user models.Account, groupID, targetID uint, role models.GroupRole) (models.GroupMember, error) {
	var membership models.GroupMember
	err := database.C.Transaction(func(tx *gorm.DB) error {
		group, err := GetGroup(tx, groupID)
		if err != nil {
			return err
		}

		var actor models.GroupMember
		if err := tx.
			Where("group_id = ? AND account_id = ?", group.ID, user.ID).
			First(&actor).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrUnauthorized
			}
			return fmt.Errorf("unable to get actor membership: %v", err)
		}

		targetRole := models.GroupRolePending
		var existing *models.GroupMember
		var target models.GroupMember
		if err := tx.
			Where("group_id = ? AND account_id = ?", group.ID, targetID).
			First(&target).Error; err == nil {
			targetRole = target.Role
			existing = &target
		} else if !errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("unable to get target membership: %v", err)
		}

		if !perms.CanChangeRole(actor.Role, targetRole, role, user.ID == targetID) {
			return ErrUnauthorized
		}

		if existing == nil {
			var account models.Account
			if err := tx.Where("id = ?", targetID).First(&account).Error; err != nil {
				return ErrNotFound
			}
			membership = models.GroupMember{
				GroupID:   group.ID,
				AccountID: targetID,
				Role:      role,
			}
			return tx.Create(&membership).Error
		}

		existing.Role = role
		if err := tx.Save(existing).Error; err != nil {
			return fmt.Errorf("unable to update membership: %v", err)
		}
		membership = *existing
		return nil
	})
	if err != nil {
		return membership, err
	}

	log.Info().
		Uint("group", groupID).
		Uint("actor", user.ID).
		Uint("target", targetID).
		Str("role", string(role)).
		Msg("Group member role changed...")
	return membership, nil
}

// LeaveGroup removes the actor's own membership edge. Owners cannot leave
// their group; ownership has to be handed over by another owner first.
func LeaveGroup(user models.Account, groupID uint) error {
	return database.C.Transaction(func(tx *gorm.DB) error {
		group, err := GetGroup(tx, groupID)
		if err != nil {
			return err
		}

		var membership models.GroupMember
		if err := tx.
			Where("group_id = ? AND account_id = ?", group.ID, user.ID).
			First(&membership).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrNotFound
			}
			return fmt.Errorf("unable to get membership: %v", err)
		}

		if membership.Role == models.GroupRoleOwner {
			return ErrUnauthorized
		}

		return tx.Delete(&membership).Error
	})
}

// DeleteGroup tombstones a group: the row stays in the store with its
// readable fields blanked, mirroring how posts are deleted.
func DeleteGroup(user models.Account, groupID uint) error {
	return database.C.Transaction(func(tx *gorm.DB) error {
		group, err := GetGroup(tx, groupID)
		if err != nil {
			return err
		}

		var membership models.GroupMember
		if err := tx.
			Where("group_id = ? AND account_id = ?", group.ID, user.ID).
			First(&membership).Error; err != nil || membership.Role != models.GroupRoleOwner {
			return ErrUnauthorized
		}

		updates := map[string]any{
			"deleted":     true,
			"name":        tombstonePlaceholder,
			"about":       tombstonePlaceholder,
			"description": tombstonePlaceholder,
		}
		if err := tx.Model(&group).Updates(updates).Error; err != nil {
			return fmt.Errorf("unable to delete group: %v", err)
		}

		return tx.Where("group_id = ?", group.ID).Delete(&models.GroupMember{}).Error
	})
}
