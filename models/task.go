package models

import (
	"time"
)

// Task is a catalog entry for an externally verified offer (CPA network).
// Read-only from the crediting pipeline's perspective: only the admin
// surface creates tasks or toggles IsActive.
type Task struct {
	ID           uint    `gorm:"primaryKey" json:"id"`
	Name         string  `gorm:"not null" json:"name"`
	Description  string  `json:"description,omitempty"`
	CPANetworkID string  `gorm:"index" json:"cpa_network_id"`
	TrackingCode string  `gorm:"uniqueIndex" json:"tracking_code"` // slug used in postback URLs
	IconURL      string  `gorm:"type:text" json:"icon_url,omitempty"`
	RewardSpins  int64   `gorm:"not null;default:1" json:"reward_spins"`
	CPAPayout    float64 `gorm:"not null;default:0" json:"cpa_payout"` // estimated revenue in USD
	IsActive     bool    `gorm:"not null;default:true" json:"is_active"`
}

// TaskCompletion records one credited external completion. TransactionID is
// the network's globally unique transaction key and carries the sole
// exactly-once guarantee: the unique index rejects replayed postbacks.
// Rows are append-only.
type TaskCompletion struct {
	ID            uint      `gorm:"primaryKey" json:"id"`
	UserID        uint      `gorm:"index;not null" json:"user_id"`
	TaskID        uint      `gorm:"index;not null" json:"task_id"`
	TransactionID string    `gorm:"uniqueIndex;not null" json:"transaction_id"`
	CreatedAt     time.Time `gorm:"autoCreateTime" json:"created_at"`
}
