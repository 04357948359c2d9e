package models

type Category struct {
	BaseModel

	Slug        string `json:"slug" gorm:"uniqueIndex" validate:"lowercase"`
	Name        string `json:"name"`
	Icon        string `json:"icon"`
	Description string `json:"description"`

	Groups []Group `json:"groups" gorm:"many2many:group_categories"`
}
