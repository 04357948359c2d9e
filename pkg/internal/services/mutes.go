package services

import (
	"context"
	"fmt"
	"time"

	localCache "github.com/commune-social/commune/pkg/internal/cache"
	"github.com/commune-social/commune/pkg/internal/database"
	"github.com/commune-social/commune/pkg/internal/models"
	"github.com/eko/gocache/lib/v4/cache"
	"github.com/eko/gocache/lib/v4/marshaler"
	"github.com/eko/gocache/lib/v4/store"
	"github.com/samber/lo"
)

func muteListCacheKey(userID uint) string {
	return fmt.Sprintf("mute-list#%d", userID)
}

// ListMutedAuthors returns the ids of every account the user has muted.
// Results are cached for a few minutes; mutations below invalidate by tag.
func ListMutedAuthors(user models.Account) ([]uint, error) {
	marshal := marshaler.New(cache.New[any](localCache.S))
	ctx := context.Background()

	if cached, err := marshal.Get(ctx, muteListCacheKey(user.ID), new([]uint)); err == nil {
		return *cached.(*[]uint), nil
	}

	var mutes []models.Mute
	if err := database.C.Where("account_id = ?", user.ID).Find(&mutes).Error; err != nil {
		return nil, fmt.Errorf("unable to list mutes: %v", err)
	}

	targets := lo.Map(mutes, func(item models.Mute, index int) uint {
		return item.TargetID
	})

	_ = marshal.Set(
		ctx,
		muteListCacheKey(user.ID),
		targets,
		store.WithExpiration(5*time.Minute),
		store.WithTags([]string{fmt.Sprintf("mute-list#%d", user.ID)}),
	)

	return targets, nil
}

func MuteUser(user models.Account, targetID uint) error {
	if user.ID == targetID {
		return fmt.Errorf("%w: unable to mute yourself", ErrConstraintViolation)
	}

	var target models.Account
	if err := database.C.Where("id = ?", targetID).First(&target).Error; err != nil {
		return ErrNotFound
	}

	mute := models.Mute{AccountID: user.ID, TargetID: targetID}
	if err := database.C.Save(&mute).Error; err != nil {
		return fmt.Errorf("unable to save mute: %v", err)
	}

	invalidateMuteListCache(user)
	return nil
}

func UnmuteUser(user models.Account, targetID uint) error {
	if err := database.C.
		Where("account_id = ? AND target_id = ?", user.ID, targetID).
		Delete(&models.Mute{}).Error; err != nil {
		return fmt.Errorf("unable to remove mute: %v", err)
	}

	invalidateMuteListCache(user)
	return nil
}

func invalidateMuteListCache(user models.Account) {
	marshal := marshaler.New(cache.New[any](localCache.S))
	_ = marshal.Invalidate(
		context.Background(),
		store.WithInvalidateTags([]string{fmt.Sprintf("mute-list#%d", user.ID)}),
	)
}
