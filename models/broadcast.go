package models

import (
	"time"
)

// BroadcastStatus is the delivery lifecycle of an admin broadcast.
type BroadcastStatus string

const (
	BroadcastStatusScheduled BroadcastStatus = "scheduled"
	BroadcastStatusPending   BroadcastStatus = "pending"
	BroadcastStatusSent      BroadcastStatus = "sent"
	BroadcastStatusFailed    BroadcastStatus = "failed"
)

// Broadcast is a queued admin announcement delivered to every user through
// the Telegram Bot API by workers.BroadcastClient. Scheduled rows are
// promoted to pending by the gocron job once ScheduledAt passes.
type Broadcast struct {
	ID          string          `gorm:"primaryKey;type:uuid" json:"id"`
	Message     string          `gorm:"type:text;not null" json:"message"`
	Status      BroadcastStatus `gorm:"not null;default:'pending';index" json:"status"`
	ScheduledAt *time.Time      `json:"scheduled_at,omitempty"`
	SentCount   int64           `gorm:"not null;default:0" json:"sent_count"`
	FailedCount int64           `gorm:"not null;default:0" json:"failed_count"`
	CreatedAt   time.Time       `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt   time.Time       `gorm:"autoUpdateTime" json:"updated_at"`
}
