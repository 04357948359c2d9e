package database

import (
	"github.com/commune-social/commune/pkg/internal/models"
	"gorm.io/gorm"
)

var AutoMaintainRange = []any{
	&models.Account{},
	&models.Category{},
	&models.Group{},
	&models.GroupMember{},
	&models.Post{},
}

func RunMigration(source *gorm.DB) error {
	if err := source.AutoMigrate(
		append(
			AutoMaintainRange,
			&models.PostExclusion{},
			&models.Mute{},
		)...,
	); err != nil {
		return err
	}

	return nil
}
