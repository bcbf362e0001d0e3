package models

import (
	"time"
)

// PrizeType tags what a wheel prize grants.
type PrizeType string

const (
	PrizeTypeSpins  PrizeType = "spins"
	PrizeTypePoints PrizeType = "points"
	PrizeTypeItem   PrizeType = "item" // physical good, fulfilled manually
)

// Reward is the append-only audit log of every prize granted by the wheel.
// Never updated or deleted; item prizes exist only here (no balance effect).
type Reward struct {
	ID         string    `gorm:"primaryKey;type:uuid" json:"id"`
	UserID     uint      `gorm:"index;not null" json:"user_id"`
	PrizeType  PrizeType `gorm:"not null" json:"prize_type"`
	PrizeValue string    `gorm:"not null" json:"prize_value"`
	CreatedAt  time.Time `gorm:"autoCreateTime" json:"created_at"`
}
