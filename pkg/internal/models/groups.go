package models

import "time"

// GroupType and GroupRole are defined types rather than aliases so a raw
// string cannot pose as one; construction goes through the constants below.
type GroupType string

const (
	GroupTypePublic = GroupType("public")
	GroupTypeClosed = GroupType("closed")
	GroupTypeHidden = GroupType("hidden")
)

type GroupRole string

const (
	GroupRolePending = GroupRole("pending")
	GroupRoleUsual   = GroupRole("usual")
	GroupRoleAdmin   = GroupRole("admin")
	GroupRoleOwner   = GroupRole("owner")
)

type Group struct {
	BaseModel

	Name         string    `json:"name"`
	Slug         string    `json:"slug" gorm:"uniqueIndex"`
	About        string    `json:"about"`
	Description  string    `json:"description"`
	Type         GroupType `json:"type"`
	ActionRadius string    `json:"action_radius"`

	Disabled bool `json:"disabled"`
	Deleted  bool `json:"deleted"`

	Categories []Category    `json:"categories" gorm:"many2many:group_categories"`
	Members    []GroupMember `json:"members"`

	// The viewer's own role, filled per request, never persisted.
	MyRole *GroupRole `json:"my_role" gorm:"-"`
}

// GroupMember is the single edge between an account and a group.
// The unique index is what keeps concurrent joins from racing a duplicate in.
// The edge is removed for real when a member leaves, never soft deleted, so
// re-joining cannot trip over a dead row in the index.
type GroupMember struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	GroupID   uint      `json:"group_id" gorm:"uniqueIndex:idx_group_member"`
	AccountID uint      `json:"account_id" gorm:"uniqueIndex:idx_group_member"`
	Role      GroupRole `json:"role"`

	Group   Group   `json:"group"`
	Account Account `json:"account"`
}
