package services

import (
	"errors"
	"fmt"
	"time"

	"github.com/commune-social/commune/pkg/internal/database"
	"github.com/commune-social/commune/pkg/internal/models"
	"github.com/commune-social/commune/pkg/internal/perms"
	"github.com/rs/zerolog/log"
	"github.com/samber/lo"
	"gorm.io/gorm"
)

func PreloadPostGeneral(tx *gorm.DB) *gorm.DB {
	return tx.
		Preload("Author").
		Preload("Group")
}

// CreatePost writes the post and, for restricted groups, its exclusion
// snapshot in one transaction. Everyone who is not a full member of the group
// at this moment gets an exclusion row; the snapshot is never recomputed, so
// joining later does not unlock the post and leaving does not revoke it.
func CreatePost(user models.Account, post models.Post) (models.Post, error) {
	post.AuthorID = user.ID
	post.Author = nil
	post.Slug = MakeSlug(post.Title)
	post.Language = DetectLanguage(post.Content)
	post.Pinned = false
	post.Disabled = false
	post.Deleted = false
	if len(post.Type) == 0 {
		post.Type = models.PostTypeStory
	}

	err := database.C.Transaction(func(tx *gorm.DB) error {
		var group *models.Group
		if post.GroupID != nil {
			matched, err := GetGroup(tx, *post.GroupID)
			if err != nil {
				return err
			}
			group = &matched

			if perms.IsRestricted(group.Type) {
				var membership models.GroupMember
				if err := tx.
					Where("group_id = ? AND account_id = ?", group.ID, user.ID).
					First(&membership).Error; err != nil {
					if errors.Is(err, gorm.ErrRecordNotFound) {
						if group.Type == models.GroupTypeHidden {
							return ErrNotFound
						}
						return ErrUnauthorized
					}
					return fmt.Errorf("unable to get membership: %v", err)
				}
				if !perms.RoleAtLeast(membership.Role, models.GroupRoleUsual) {
					return ErrUnauthorized
				}
			}
		}

		if err := tx.Create(&post).Error; err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return fmt.Errorf("%w: post with this slug already exists", ErrConstraintViolation)
			}
			return fmt.Errorf("unable to create post: %v", err)
		}

		if group != nil && perms.IsRestricted(group.Type) {
			return snapshotPostExclusions(tx, post, *group)
		}
		return nil
	})
	if err != nil {
		return post, err
	}

	log.Info().Uint("post", post.ID).Uint("author", user.ID).Msg("New post created...")
	return post, nil
}

func snapshotPostExclusions(tx *gorm.DB, post models.Post, group models.Group) error {
	fullMembers := tx.Model(&models.GroupMember{}).
		Select("account_id").
		Where("group_id = ? AND role IN ?", group.ID, fullMemberRoles)

	var outsiders []models.Account
	if err := tx.Model(&models.Account{}).
		Where("id NOT IN (?)", fullMembers).
		Find(&outsiders).Error; err != nil {
		return fmt.Errorf("unable to snapshot exclusions: %v", err)
	}
	if len(outsiders) == 0 {
		return nil
	}

	now := time.Now()
	exclusions := lo.Map(outsiders, func(item models.Account, index int) models.PostExclusion {
		return models.PostExclusion{
			AccountID: item.ID,
			PostID:    post.ID,
			CreatedAt: now,
		}
	})

	return tx.CreateInBatches(&exclusions, 1000).Error
}

// GetPost fetches one post as seen by the viewer. An existing post the
// viewer is barred from reads exactly like a missing one.
func GetPost(viewer *models.Account, id uint) (models.Post, error) {
	var post models.Post
	if err := PreloadPostGeneral(database.C).
		Where("id = ?", id).
		First(&post).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return post, ErrNotFound
		}
		return post, fmt.Errorf("unable to get post: %v", err)
	}

	viewerCtx, err := BuildViewerContext(viewer, []models.Post{post})
	if err != nil {
		return post, err
	}
	if !viewerCtx.CanSee(post) {
		return post, ErrNotFound
	}

	return viewerCtx.Redact(post), nil
}

// ListPost pages through the pre-filtered query and applies the post-hoc
// redaction pass on the page.
func ListPost(tx *gorm.DB, viewer *models.Account, take int, offset int, order string) ([]models.Post, error) {
	if take <= 0 || take > 100 {
		take = 100
	}
	if len(order) == 0 {
		order = "created_at DESC"
	}

	var posts []models.Post
	if err := PreloadPostGeneral(tx).
		Limit(take).Offset(offset).
		Order(order).
		Find(&posts).Error; err != nil {
		return posts, fmt.Errorf("unable to list posts: %v", err)
	}

	viewerCtx, err := BuildViewerContext(viewer, posts)
	if err != nil {
		return posts, err
	}

	return FilterVisiblePosts(viewerCtx, posts), nil
}

func CountPost(tx *gorm.DB) (int64, error) {
	var count int64
	if err := tx.Model(&models.Post{}).Count(&count).Error; err != nil {
		return count, err
	}

	return count, nil
}

// DeletePost tombstones the post, keeping the row with its readable fields
// blanked so references stay resolvable.
func DeletePost(user models.Account, id uint) error {
	var post models.Post
	if err := database.C.Where("id = ?", id).First(&post).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNotFound
		}
		return fmt.Errorf("unable to get post: %v", err)
	}

	if post.AuthorID != user.ID && !user.IsPlatformAdmin() {
		return ErrUnauthorized
	}

	return database.C.Model(&post).Updates(map[string]any{
		"deleted": true,
		"title":   tombstonePlaceholder,
		"content": tombstonePlaceholder,
	}).Error
}

// PinPost toggles the pinned flag. Platform admins only, and only for posts
// on the public timeline; group posts cannot be pinned.
func PinPost(user models.Account, id uint, pinned bool) (models.Post, error) {
	var post models.Post
	if !user.IsPlatformAdmin() {
		return post, ErrUnauthorized
	}

	if err := database.C.Where("id = ?", id).First(&post).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return post, ErrNotFound
		}
		return post, fmt.Errorf("unable to get post: %v", err)
	}
	if post.GroupID != nil {
		return post, fmt.Errorf("%w: group posts cannot be pinned", ErrConstraintViolation)
	}

	updates := map[string]any{"pinned": pinned}
	if pinned {
		updates["pinned_at"] = time.Now()
	} else {
		updates["pinned_at"] = nil
	}
	if err := database.C.Model(&post).Updates(updates).Error; err != nil {
		return post, fmt.Errorf("unable to update post: %v", err)
	}

	return post, nil
}
