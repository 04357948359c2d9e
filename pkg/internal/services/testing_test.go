package services_test

import (
	"fmt"
	"strings"
	"testing"

	"github.com/commune-social/commune/pkg/internal/cache"
	"github.com/commune-social/commune/pkg/internal/database"
	"github.com/commune-social/commune/pkg/internal/models"
	"github.com/commune-social/commune/pkg/internal/services"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

var testDescription = strings.Repeat("A group about testing things. ", 5)

// setupTest points the package-level store at a fresh in-memory database and
// resets the cache so nothing bleeds between tests.
func setupTest(t *testing.T) {
	t.Helper()

	require.NoError(t, cache.NewStore())

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{TranslateError: true})
	require.NoError(t, err)
	require.NoError(t, database.RunMigration(db))
	database.C = db

	viper.Set("categories.enabled", false)
	viper.Set("categories.min", 1)
	viper.Set("categories.max", 3)
}

func makeAccount(t *testing.T, name string, role string) models.Account {
	t.Helper()

	account := models.Account{Name: name, Nick: name, Role: role}
	require.NoError(t, database.C.Create(&account).Error)
	return account
}

func makeGroup(t *testing.T, owner models.Account, name string, groupType models.GroupType) models.Group {
	t.Helper()

	group, err := services.NewGroup(owner, models.Group{
		Name:        name,
		About:       "A test group",
		Description: testDescription,
		Type:        groupType,
	}, nil)
	require.NoError(t, err)
	return group
}

func countMemberships(t *testing.T, groupID, accountID uint) int64 {
	t.Helper()

	var count int64
	require.NoError(t, database.C.Model(&models.GroupMember{}).
		Where("group_id = ? AND account_id = ?", groupID, accountID).
		Count(&count).Error)
	return count
}
