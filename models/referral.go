package models

import (
	"time"
)

// Referral links a referred user to the referrer who invited them. Each user
// can be referred at most once (unique index on ReferredID). IsQualified
// flips false→true exactly once, when the referred user's first task
// completion lands; the flip is done with a conditional UPDATE so it can
// never re-trigger under concurrent postbacks.
type Referral struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	ReferrerID  uint      `gorm:"index;not null" json:"referrer_id"`
	ReferredID  uint      `gorm:"uniqueIndex;not null" json:"referred_id"`
	IsQualified bool      `gorm:"not null;default:false" json:"is_qualified"`
	CreatedAt   time.Time `gorm:"autoCreateTime" json:"created_at"`
}
