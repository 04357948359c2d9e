package models

const (
	AccountRoleUser      = "user"
	AccountRoleModerator = "moderator"
	AccountRoleAdmin     = "admin"
)

// Account is the authenticated identity this service authorizes against.
// Authentication itself happens upstream; handlers only ever read it.
type Account struct {
	BaseModel

	Name        string `json:"name" gorm:"uniqueIndex"`
	Nick        string `json:"nick"`
	Description string `json:"description"`
	Avatar      string `json:"avatar"`

	Role     string `json:"role"`
	Disabled bool   `json:"disabled"`
	Deleted  bool   `json:"deleted"`
}

func (v Account) IsPlatformAdmin() bool {
	return v.Role == AccountRoleAdmin
}
