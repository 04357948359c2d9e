package services

import (
	"fmt"

	"github.com/commune-social/commune/pkg/internal/database"
	"github.com/commune-social/commune/pkg/internal/models"
	"github.com/commune-social/commune/pkg/internal/perms"
	"github.com/samber/lo"
	"gorm.io/gorm"
)

// ViewerContext carries everything needed to decide post visibility for one
// viewer without touching the store again: the viewer's group roles, the
// exclusion snapshot rows naming them, and their mute list. CanSee and Redact
// are pure so the rules stay testable without a database.
type ViewerContext struct {
	Viewer        *models.Account
	MemberRoles   map[uint]models.GroupRole
	ExcludedPosts map[uint]bool
	MutedAuthors  map[uint]bool
}

// BuildViewerContext batch-loads the viewer's side of the visibility rules
// for the given posts.
func BuildViewerContext(viewer *models.Account, posts []models.Post) (ViewerContext, error) {
	out := ViewerContext{
		Viewer:        viewer,
		MemberRoles:   make(map[uint]models.GroupRole),
		ExcludedPosts: make(map[uint]bool),
		MutedAuthors:  make(map[uint]bool),
	}
	if viewer == nil || len(posts) == 0 {
		return out, nil
	}

	groupIDs := lo.Uniq(lo.FilterMap(posts, func(item models.Post, index int) (uint, bool) {
		if item.GroupID == nil {
			return 0, false
		}
		return *item.GroupID, true
	}))
	if len(groupIDs) > 0 {
		var memberships []models.GroupMember
		if err := database.C.
			Where("account_id = ? AND group_id IN ?", viewer.ID, groupIDs).
			Find(&memberships).Error; err != nil {
			return out, fmt.Errorf("unable to load viewer memberships: %v", err)
		}
		for _, membership := range memberships {
			out.MemberRoles[membership.GroupID] = membership.Role
		}
	}

	postIDs := lo.Map(posts, func(item models.Post, index int) uint {
		return item.ID
	})
	var exclusions []models.PostExclusion
	if err := database.C.
		Where("account_id = ? AND post_id IN ?", viewer.ID, postIDs).
		Find(&exclusions).Error; err != nil {
		return out, fmt.Errorf("unable to load exclusions: %v", err)
	}
	for _, exclusion := range exclusions {
		out.ExcludedPosts[exclusion.PostID] = true
	}

	muted, err := ListMutedAuthors(*viewer)
	if err != nil {
		return out, err
	}
	for _, id := range muted {
		out.MutedAuthors[id] = true
	}

	return out, nil
}

func (v ViewerContext) isPrivileged(post models.Post) bool {
	if v.Viewer == nil {
		return false
	}
	return v.Viewer.IsPlatformAdmin() || v.Viewer.ID == post.AuthorID
}

// CanSee evaluates the visibility rules in order: the viewer's mute list,
// tombstoned or disabled posts and groups, private posts, then
// restricted-group membership together with the exclusion snapshot. A member
// below usual rank never sees restricted content, and an exclusion row bars
// even full members who joined after the post was written.
func (v ViewerContext) CanSee(post models.Post) bool {
	// Muting is personal and absolute, so it is checked ahead of the platform
	// admin bypass: an admin who muted the author stays unbothered too.
	if v.Viewer != nil && v.MutedAuthors[post.AuthorID] {
		return false
	}

	if v.Viewer != nil && v.Viewer.IsPlatformAdmin() {
		return true
	}

	if post.Deleted || post.Disabled {
		return false
	}

	if post.Group != nil && (post.Group.Deleted || post.Group.Disabled) {
		return false
	}

	if post.IsPrivate && !v.isPrivileged(post) {
		return false
	}

	if post.Group != nil && perms.IsRestricted(post.Group.Type) {
		if v.Viewer == nil {
			return false
		}
		role, ok := v.MemberRoles[post.Group.ID]
		if !ok || !perms.RoleAtLeast(role, models.GroupRoleUsual) {
			return false
		}
		if v.ExcludedPosts[post.ID] {
			return false
		}
	}

	return true
}

// Redact returns a view-level copy of the post with anonymous authorship
// hidden from everyone but the author and platform admins. The stored entity
// is never touched.
func (v ViewerContext) Redact(post models.Post) models.Post {
	if post.IsAnonymous && !v.isPrivileged(post) {
		post.Author = nil
		post.AuthorID = 0
	}
	return post
}

// FilterVisiblePosts applies CanSee and Redact per element.
func FilterVisiblePosts(v ViewerContext, posts []models.Post) []models.Post {
	return lo.FilterMap(posts, func(item models.Post, index int) (models.Post, bool) {
		if !v.CanSee(item) {
			return item, false
		}
		return v.Redact(item), true
	})
}

// FilterPostWithViewer is the store-side translation of the same rules, used
// to keep listings from paging through rows the viewer cannot see anyway.
func FilterPostWithViewer(tx *gorm.DB, viewer *models.Account) *gorm.DB {
	if viewer != nil && viewer.IsPlatformAdmin() {
		if muted, err := ListMutedAuthors(*viewer); err == nil && len(muted) > 0 {
			tx = tx.Where("author_id NOT IN ?", muted)
		}
		return tx
	}

	tx = tx.Where("posts.deleted = ? AND posts.disabled = ?", false, false)

	openGroups := database.C.Model(&models.Group{}).
		Select("id").
		Where("type = ? AND deleted = ? AND disabled = ?", models.GroupTypePublic, false, false)

	if viewer == nil {
		return tx.
			Where("is_private = ?", false).
			Where("group_id IS NULL OR group_id IN (?)", openGroups)
	}

	memberOf := database.C.Model(&models.GroupMember{}).
		Select("group_id").
		Where("account_id = ? AND role IN ?", viewer.ID, fullMemberRoles)
	excluded := database.C.Model(&models.PostExclusion{}).
		Select("post_id").
		Where("account_id = ?", viewer.ID)

	tx = tx.Where("is_private = ? OR author_id = ?", false, viewer.ID)
	tx = tx.Where("group_id IS NULL OR group_id IN (?) OR group_id IN (?)", openGroups, memberOf)
	tx = tx.Where("posts.id NOT IN (?)", excluded)

	if muted, err := ListMutedAuthors(*viewer); err == nil && len(muted) > 0 {
		tx = tx.Where("author_id NOT IN ?", muted)
	}

	return tx
}

func FilterPostWithType(tx *gorm.DB, t string) *gorm.DB {
	return tx.Where("type = ?", t)
}

func FilterPostWithGroup(tx *gorm.DB, groupID uint) *gorm.DB {
	return tx.Where("group_id = ?", groupID)
}

func FilterPostWithAuthor(tx *gorm.DB, authorID uint) *gorm.DB {
	return tx.Where("author_id = ?", authorID)
}

func FilterPostWithFuzzySearch(tx *gorm.DB, probe string) *gorm.DB {
	if len(probe) == 0 {
		return tx
	}

	probe = "%" + probe + "%"
	return tx.
		Where("title ILIKE ? OR content ILIKE ?", probe, probe)
}
