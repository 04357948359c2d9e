package services

import (
	"github.com/commune-social/commune/pkg/internal/database"
	"github.com/commune-social/commune/pkg/internal/models"
	"github.com/rs/zerolog/log"
)

// DoAutoDatabaseCleanup drops relation rows whose endpoints are gone: the
// exclusion snapshot of tombstoned posts and the memberships, mutes and
// exclusions of deleted accounts. Tombstones themselves are kept forever.
func DoAutoDatabaseCleanup() {
	var count int64

	deletedPosts := database.C.Model(&models.Post{}).
		Select("id").
		Where("deleted = ?", true)
	if tx := database.C.
		Where("post_id IN (?)", deletedPosts).
		Delete(&models.PostExclusion{}); tx.Error == nil {
		count += tx.RowsAffected
	}

	deletedAccounts := database.C.Model(&models.Account{}).
		Select("id").
		Where("deleted = ?", true)
	if tx := database.C.
		Where("account_id IN (?)", deletedAccounts).
		Delete(&models.GroupMember{}); tx.Error == nil {
		count += tx.RowsAffected
	}
	if tx := database.C.
		Where("account_id IN (?)", deletedAccounts).
		Delete(&models.Mute{}); tx.Error == nil {
		count += tx.RowsAffected
	}
	if tx := database.C.
		Where("account_id IN (?)", deletedAccounts).
		Delete(&models.PostExclusion{}); tx.Error == nil {
		count += tx.RowsAffected
	}

	if count > 0 {
		log.Info().Int64("count", count).Msg("Cleaned up stale relation records...")
	}
}
