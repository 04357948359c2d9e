package services

import (
	"errors"

	"github.com/commune-social/commune/pkg/internal/database"
	"github.com/commune-social/commune/pkg/internal/models"
	"gorm.io/gorm"
)

func ListCategory(take int, offset int) ([]models.Category, error) {
	if take <= 0 || take > 100 {
		take = 100
	}

	var categories []models.Category
	err := database.C.Offset(offset).Limit(take).Find(&categories).Error

	return categories, err
}

func GetCategory(slug string) (models.Category, error) {
	var category models.Category
	if err := database.C.Where("slug = ?", slug).First(&category).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return category, ErrNotFound
		}
		return category, err
	}
	return category, nil
}

func NewCategory(slug, name, icon, description string) (models.Category, error) {
	category := models.Category{
		Slug:        slug,
		Name:        name,
		Icon:        icon,
		Description: description,
	}

	err := database.C.Save(&category).Error

	return category, err
}
