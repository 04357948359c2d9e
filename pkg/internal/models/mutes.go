package models

import "time"

// Mute hides every post authored by Target from the muting account.
type Mute struct {
	AccountID uint      `json:"account_id" gorm:"primaryKey"`
	TargetID  uint      `json:"target_id" gorm:"primaryKey"`
	CreatedAt time.Time `json:"created_at"`
}
