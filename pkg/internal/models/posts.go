package models

import (
	"time"

	"gorm.io/datatypes"
)

const (
	PostTypeStory   = "story"
	PostTypeArticle = "article"
)

type Post struct {
	BaseModel

	Type     string `json:"type"`
	Title    string `json:"title"`
	Content  string `json:"content"`
	Slug     string `json:"slug" gorm:"uniqueIndex"`
	Language string `json:"language"`

	Attachments datatypes.JSONSlice[string] `json:"attachments"`

	IsPrivate   bool `json:"is_private"`
	IsAnonymous bool `json:"is_ano"`

	Pinned   bool       `json:"pinned"`
	PinnedAt *time.Time `json:"pinned_at"`

	Disabled bool `json:"disabled"`
	Deleted  bool `json:"deleted"`

	GroupID *uint  `json:"group_id"`
	Group   *Group `json:"group"`

	AuthorID uint     `json:"author_id"`
	Author   *Account `json:"author"`
}

// PostExclusion bars an account from a restricted-group post. Rows are
// written once when the post is created and are never recomputed afterwards.
type PostExclusion struct {
	AccountID uint      `json:"account_id" gorm:"primaryKey"`
	PostID    uint      `json:"post_id" gorm:"primaryKey"`
	CreatedAt time.Time `json:"created_at"`
}
